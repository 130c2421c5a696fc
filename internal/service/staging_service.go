package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lionsmanic/gyn-cancer-staging/internal/domain"
)

// StagingService is the entry point used by the MCP, HTTP and CLI surfaces.
// It adds structured audit logging around the pure resolvers and holds no
// other state.
type StagingService struct {
	logger *logrus.Logger
}

// NewStagingService creates a new staging service
func NewStagingService(logger *logrus.Logger) *StagingService {
	if logger == nil {
		logger = logrus.New()
	}
	return &StagingService{logger: logger}
}

// Classify stages one finding set.
func (s *StagingService) Classify(ctx context.Context, protocol domain.Protocol, findings domain.FindingSet) (*domain.ClassificationResult, error) {
	startTime := time.Now()
	s.logger.WithFields(protocol.LogFields()).Debug("Routing finding set to resolver")

	result, err := Classify(protocol, findings)
	if err != nil {
		s.logInvalid(ctx, protocol, err)
		return nil, err
	}

	entry := s.logger.WithFields(logrus.Fields(result.LogFields())).
		WithField("processing_time", time.Since(startTime))
	if id := RequestIDFromContext(ctx); id != "" {
		entry = entry.WithField("request_id", id)
	}
	if result.Staged {
		entry.Info("Stage classification completed")
	} else {
		entry.WithField("notes", result.Notes).Info("Stage classification returned no stage")
	}
	return result, nil
}

// ClassifyJSON decodes raw findings for protocol and stages them.
func (s *StagingService) ClassifyJSON(ctx context.Context, protocol domain.Protocol, raw json.RawMessage) (*domain.ClassificationResult, error) {
	findings, err := DecodeFindings(protocol, raw)
	if err != nil {
		s.logInvalid(ctx, protocol, err)
		return nil, err
	}
	return s.Classify(ctx, protocol, findings)
}

// AssessGTNRisk scores the GTN prognostic factors without staging.
func (s *StagingService) AssessGTNRisk(ctx context.Context, input *domain.GTNRiskInput) (*domain.RiskAssessment, error) {
	if input == nil {
		return nil, domain.NewInvalidInputError(domain.ProtocolGTN, "", "risk factors are required", nil)
	}
	if err := input.Validate(); err != nil {
		s.logInvalid(ctx, domain.ProtocolGTN, err)
		return nil, err
	}

	assessment := ScoreGTNRisk(input)
	s.logger.WithFields(logrus.Fields{
		"protocol":      string(domain.ProtocolGTN),
		"risk_score":    assessment.Score,
		"risk_category": string(assessment.Category),
		"request_id":    RequestIDFromContext(ctx),
	}).Info("GTN risk assessment completed")
	return assessment, nil
}

// Describe returns the field catalog of a protocol.
func (s *StagingService) Describe(protocol domain.Protocol) ([]domain.FieldCatalog, error) {
	return Describe(protocol)
}

func (s *StagingService) logInvalid(ctx context.Context, protocol domain.Protocol, err error) {
	fields := logrus.Fields{
		"protocol":   string(protocol),
		"request_id": RequestIDFromContext(ctx),
	}
	var inputErr *domain.InvalidInputError
	if errors.As(err, &inputErr) {
		fields["field"] = inputErr.Field
	}
	s.logger.WithFields(fields).WithError(err).Warn("Rejected invalid finding set")
}

type requestIDKey struct{}

// WithRequestID attaches a request ID for audit logging.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext returns the request ID set by WithRequestID, if any.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

var (
	_ domain.StageClassifier = (*StagingService)(nil)
	_ domain.ProtocolCatalog = (*StagingService)(nil)
)
