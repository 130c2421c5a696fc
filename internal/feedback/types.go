// Package feedback records whether clinicians agreed with suggested stages.
// Resolvers never read it; it is an audit log for reviewing rule behaviour.
package feedback

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/lionsmanic/gyn-cancer-staging/internal/domain"
)

// ExportVersion is written into every export document.
const ExportVersion = "1.0"

// ErrInvalidRecord is returned when a record misses a required field.
var ErrInvalidRecord = errors.New("invalid feedback record")

// Record is one clinician decision on a suggested stage.
type Record struct {
	ID             int64           `json:"id,omitempty"`
	Protocol       domain.Protocol `json:"protocol"`
	FindingsDigest string          `json:"findings_digest"`
	TNM            string          `json:"tnm,omitempty"`
	SuggestedStage string          `json:"suggested_stage"`
	ClinicianStage string          `json:"clinician_stage"`
	Agreed         bool            `json:"agreed"`
	Notes          string          `json:"notes,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// Validate checks the fields every backend relies on.
func (r *Record) Validate() error {
	if r == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidRecord)
	}
	if !r.Protocol.IsValid() {
		return fmt.Errorf("%w: unknown protocol %q", ErrInvalidRecord, r.Protocol)
	}
	if r.FindingsDigest == "" {
		return fmt.Errorf("%w: findings digest is required", ErrInvalidRecord)
	}
	if r.SuggestedStage == "" || r.ClinicianStage == "" {
		return fmt.Errorf("%w: suggested and clinician stage are required", ErrInvalidRecord)
	}
	return nil
}

// Digest fingerprints a finding set. The set is reduced to its canonical form
// first, so a GTN factor given by code or by label yields the same digest.
func Digest(findings domain.FindingSet) (string, error) {
	if findings == nil {
		return "", fmt.Errorf("%w: findings are required", ErrInvalidRecord)
	}
	data, err := json.Marshal(domain.Canonical(findings))
	if err != nil {
		return "", fmt.Errorf("failed to encode findings: %w", err)
	}
	sum := sha256.Sum256(append([]byte(findings.Protocol().String()+"\x00"), data...))
	return hex.EncodeToString(sum[:]), nil
}

// NewRecord builds a record for result. An empty clinicianStage means the
// clinician accepted the suggestion.
func NewRecord(findings domain.FindingSet, result *domain.ClassificationResult, clinicianStage, notes string) (*Record, error) {
	if result == nil {
		return nil, fmt.Errorf("%w: classification result is required", ErrInvalidRecord)
	}
	digest, err := Digest(findings)
	if err != nil {
		return nil, err
	}

	suggested := result.FIGOStage
	if suggested == "" {
		suggested = result.Notes
	}
	clinicianStage = strings.TrimSpace(clinicianStage)
	if clinicianStage == "" {
		clinicianStage = suggested
	}

	return &Record{
		Protocol:       result.Protocol,
		FindingsDigest: digest,
		TNM:            result.TNMString(),
		SuggestedStage: suggested,
		ClinicianStage: clinicianStage,
		Agreed:         clinicianStage == suggested,
		Notes:          notes,
	}, nil
}

// Store defines the interface for feedback storage operations.
type Store interface {
	// Save stores the record, replacing any earlier record for the same
	// protocol and findings digest.
	Save(ctx context.Context, record *Record) error

	// Get returns the record for protocol and digest, or nil when none exists.
	Get(ctx context.Context, protocol domain.Protocol, digest string) (*Record, error)

	// List returns records newest first.
	List(ctx context.Context, limit, offset int) ([]*Record, error)

	Count(ctx context.Context) (int64, error)

	Delete(ctx context.Context, id int64) error

	// ExportJSON writes every record as an Export document.
	ExportJSON(ctx context.Context, writer io.Writer) error

	// ImportJSON loads an Export document, skipping records that already exist.
	ImportJSON(ctx context.Context, reader io.Reader) (imported int, skipped int, err error)

	Close() error
}

// Export is the JSON export format.
type Export struct {
	Version    string    `json:"version"`
	ExportedAt time.Time `json:"exported_at"`
	Count      int       `json:"count"`
	Records    []*Record `json:"records"`
}

// maxExportLimit is the maximum number of entries to export at once.
const maxExportLimit = 1000000

func exportAll(ctx context.Context, s Store, writer io.Writer) error {
	all, err := s.List(ctx, maxExportLimit, 0)
	if err != nil {
		return fmt.Errorf("failed to list feedback: %w", err)
	}
	if all == nil {
		all = []*Record{}
	}

	export := &Export{
		Version:    ExportVersion,
		ExportedAt: time.Now().UTC(),
		Count:      len(all),
		Records:    all,
	}

	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(export)
}

func importAll(ctx context.Context, s Store, reader io.Reader) (imported int, skipped int, err error) {
	var export Export
	if err := json.NewDecoder(reader).Decode(&export); err != nil {
		return 0, 0, fmt.Errorf("failed to decode JSON: %w", err)
	}

	for _, rec := range export.Records {
		if err := rec.Validate(); err != nil {
			skipped++
			continue
		}

		existing, err := s.Get(ctx, rec.Protocol, rec.FindingsDigest)
		if err != nil {
			return imported, skipped, fmt.Errorf("failed to check existing: %w", err)
		}
		if existing != nil {
			skipped++
			continue
		}

		rec.ID = 0
		if err := s.Save(ctx, rec); err != nil {
			return imported, skipped, fmt.Errorf("failed to save: %w", err)
		}
		imported++
	}

	return imported, skipped, nil
}
