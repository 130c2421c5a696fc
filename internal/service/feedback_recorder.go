package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/lionsmanic/gyn-cancer-staging/internal/domain"
	"github.com/lionsmanic/gyn-cancer-staging/internal/feedback"
)

// DefaultFeedbackPageSize bounds List when the caller passes no limit.
const DefaultFeedbackPageSize = 50

// FeedbackSubmission is a clinician's verdict on the stage suggested for a
// finding set. An empty ClinicianStage accepts the suggestion.
type FeedbackSubmission struct {
	Protocol       domain.Protocol `json:"protocol"`
	Findings       json.RawMessage `json:"findings"`
	ClinicianStage string          `json:"clinician_stage,omitempty"`
	Notes          string          `json:"notes,omitempty"`
}

// FeedbackRecorder stages the submitted findings itself, so a stored record
// always reflects what the resolvers actually suggested.
type FeedbackRecorder struct {
	staging *StagingService
	store   feedback.Store
	logger  *logrus.Logger
}

// NewFeedbackRecorder creates a recorder writing to store.
func NewFeedbackRecorder(staging *StagingService, store feedback.Store, logger *logrus.Logger) *FeedbackRecorder {
	if logger == nil {
		logger = logrus.New()
	}
	return &FeedbackRecorder{staging: staging, store: store, logger: logger}
}

// Submit classifies the findings and upserts the clinician's verdict.
func (r *FeedbackRecorder) Submit(ctx context.Context, sub FeedbackSubmission) (*feedback.Record, *domain.ClassificationResult, error) {
	findings, err := DecodeFindings(sub.Protocol, sub.Findings)
	if err != nil {
		return nil, nil, err
	}
	result, err := r.staging.Classify(ctx, sub.Protocol, findings)
	if err != nil {
		return nil, nil, err
	}

	record, err := feedback.NewRecord(findings, result, sub.ClinicianStage, sub.Notes)
	if err != nil {
		return nil, nil, err
	}
	if err := r.store.Save(ctx, record); err != nil {
		return nil, nil, fmt.Errorf("failed to save feedback: %w", err)
	}

	r.logger.WithFields(logrus.Fields{
		"feedback_id":     record.ID,
		"protocol":        string(record.Protocol),
		"suggested_stage": record.SuggestedStage,
		"clinician_stage": record.ClinicianStage,
		"agreed":          record.Agreed,
		"request_id":      RequestIDFromContext(ctx),
	}).Info("Clinician feedback recorded")

	return record, result, nil
}

// List returns a page of records and the total count.
func (r *FeedbackRecorder) List(ctx context.Context, limit, offset int) ([]*feedback.Record, int64, error) {
	if limit <= 0 {
		limit = DefaultFeedbackPageSize
	}
	if offset < 0 {
		offset = 0
	}
	records, err := r.store.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := r.store.Count(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count feedback: %w", err)
	}
	if records == nil {
		records = []*feedback.Record{}
	}
	return records, total, nil
}
