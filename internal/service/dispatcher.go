package service

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/lionsmanic/gyn-cancer-staging/internal/domain"
)

// Classify routes a finding set to its protocol's resolver. The findings must
// have been built for protocol; shape mismatches and values outside a field's
// enumeration are reported as *domain.InvalidInputError. An unmatched cascade
// is not an error: it returns a result with Staged=false.
func Classify(protocol domain.Protocol, findings domain.FindingSet) (*domain.ClassificationResult, error) {
	if !protocol.IsValid() {
		return nil, domain.NewInvalidInputError(protocol, "protocol", "unknown staging protocol", string(protocol))
	}
	if findings == nil {
		return nil, domain.NewInvalidInputError(protocol, "", "findings are required", nil)
	}
	if findings.Protocol() != protocol {
		return nil, domain.NewInvalidInputError(protocol, "",
			fmt.Sprintf("findings were built for %s", findings.Protocol()), nil)
	}
	if err := findings.Validate(); err != nil {
		return nil, err
	}

	switch f := findings.(type) {
	case *domain.EndometrialFindings:
		return ResolveEndometrial(f), nil
	case *domain.OvarianFindings:
		return ResolveOvarian(f), nil
	case *domain.CervicalFindings:
		return ResolveCervical(f), nil
	case *domain.SarcomaFindings:
		return ResolveSarcoma(f), nil
	case *domain.VulvarMelanomaFindings:
		return ResolveVulvarMelanoma(f), nil
	case *domain.VaginalFindings:
		return ResolveVaginal(f), nil
	case *domain.GTNFindings:
		return ResolveGTN(f), nil
	case *domain.VulvarFindings:
		return ResolveVulvar(f), nil
	default:
		return nil, domain.NewInvalidInputError(protocol, "", fmt.Sprintf("unsupported finding set %T", findings), nil)
	}
}

// NewFindings returns an empty finding set of the concrete type the protocol
// expects.
func NewFindings(protocol domain.Protocol) (domain.FindingSet, error) {
	switch protocol {
	case domain.ProtocolEndometrial:
		return &domain.EndometrialFindings{}, nil
	case domain.ProtocolOvarian:
		return &domain.OvarianFindings{}, nil
	case domain.ProtocolCervical:
		return &domain.CervicalFindings{}, nil
	case domain.ProtocolUterineSarcoma:
		return &domain.SarcomaFindings{}, nil
	case domain.ProtocolVulvarMelanoma:
		return &domain.VulvarMelanomaFindings{}, nil
	case domain.ProtocolVaginal:
		return &domain.VaginalFindings{}, nil
	case domain.ProtocolGTN:
		return &domain.GTNFindings{}, nil
	case domain.ProtocolVulvar:
		return &domain.VulvarFindings{}, nil
	default:
		return nil, domain.NewInvalidInputError(protocol, "protocol", "unknown staging protocol", string(protocol))
	}
}

// DecodeFindings parses a JSON object into the protocol's finding set.
// Unknown fields are rejected.
func DecodeFindings(protocol domain.Protocol, raw json.RawMessage) (domain.FindingSet, error) {
	findings, err := NewFindings(protocol)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, domain.NewInvalidInputError(protocol, "", "findings are required", nil)
	}

	if err := decodeStrict(protocol, raw, findings); err != nil {
		return nil, err
	}
	return findings, nil
}

// DecodeGTNRiskInput parses the eight GTN prognostic factors. Unknown fields
// are rejected, as for finding sets.
func DecodeGTNRiskInput(raw json.RawMessage) (*domain.GTNRiskInput, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, domain.NewInvalidInputError(domain.ProtocolGTN, "", "risk factors are required", nil)
	}
	var input domain.GTNRiskInput
	if err := decodeStrict(domain.ProtocolGTN, raw, &input); err != nil {
		return nil, err
	}
	return &input, nil
}

func decodeStrict(protocol domain.Protocol, raw json.RawMessage, v any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return decodeError(protocol, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return domain.NewInvalidInputError(protocol, "", "findings must be a single JSON object", nil)
	}
	return nil
}

func decodeError(protocol domain.Protocol, err error) *domain.InvalidInputError {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return domain.NewInvalidInputError(protocol, typeErr.Field,
			fmt.Sprintf("expected %s, got %s", typeErr.Type, typeErr.Value), nil)
	}
	return domain.NewInvalidInputError(protocol, "", fmt.Sprintf("malformed findings: %v", err), nil)
}

// ClassifyJSON decodes and classifies in one step.
func ClassifyJSON(protocol domain.Protocol, raw json.RawMessage) (*domain.ClassificationResult, error) {
	findings, err := DecodeFindings(protocol, raw)
	if err != nil {
		return nil, err
	}
	return Classify(protocol, findings)
}
