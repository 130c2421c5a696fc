package mcp

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"

	"github.com/lionsmanic/gyn-cancer-staging/internal/domain"
	"github.com/lionsmanic/gyn-cancer-staging/internal/feedback"
	"github.com/lionsmanic/gyn-cancer-staging/internal/service"
	"github.com/lionsmanic/gyn-cancer-staging/pkg/external"
)

// Tool names
const (
	toolClassifyStage       = "classify_stage"
	toolListProtocols       = "list_protocols"
	toolDescribeProtocol    = "describe_protocol"
	toolGTNRiskScore        = "gtn_risk_score"
	toolReadPathologyReport = "read_pathology_report"
	toolSubmitFeedback      = "submit_feedback"
	toolListFeedback        = "list_feedback"
)

const readingDisclaimer = "AI 判讀結果僅供輔助，需由醫師再次確認，且不影響系統計算之分期。"

// ClassifyStageInput is the classify_stage argument object.
type ClassifyStageInput struct {
	Protocol string         `json:"protocol" jsonschema:"staging protocol id such as endometrial, ovarian or cervical"`
	Findings map[string]any `json:"findings" jsonschema:"finding set fields for the protocol as listed by describe_protocol"`
}

// ListProtocolsInput takes no arguments.
type ListProtocolsInput struct{}

// DescribeProtocolInput is the describe_protocol argument object.
type DescribeProtocolInput struct {
	Protocol string `json:"protocol" jsonschema:"staging protocol id"`
}

// ArtifactInput is one report page. Data is base64 encoded.
type ArtifactInput struct {
	Name     string `json:"name" jsonschema:"file name; the extension selects the type (png, jpg, jpeg, txt)"`
	MIMEType string `json:"mime_type,omitempty"`
	Data     string `json:"data" jsonschema:"base64 encoded file content"`
}

// ReadPathologyReportInput is the read_pathology_report argument object.
type ReadPathologyReportInput struct {
	Artifacts     []ArtifactInput `json:"artifacts"`
	CancerContext string          `json:"cancer_context,omitempty" jsonschema:"cancer type hint; empty means auto-detect"`
	APIKey        string          `json:"api_key,omitempty" jsonschema:"Gemini API key; falls back to the server key"`
}

// SubmitFeedbackInput is the submit_feedback argument object.
type SubmitFeedbackInput struct {
	Protocol       string         `json:"protocol"`
	Findings       map[string]any `json:"findings"`
	ClinicianStage string         `json:"clinician_stage,omitempty" jsonschema:"stage the clinician assigned; empty accepts the suggestion"`
	Notes          string         `json:"notes,omitempty"`
}

// ListFeedbackInput is the list_feedback argument object.
type ListFeedbackInput struct {
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`
}

// ProtocolInfo names one protocol.
type ProtocolInfo struct {
	ID   domain.Protocol `json:"id"`
	Name string          `json:"name"`
}

type classifyOutput struct {
	*domain.ClassificationResult
	Summary string `json:"summary"`
}

type toolError struct {
	Error *domain.MCPError          `json:"error"`
	Input *domain.InvalidInputError `json:"input,omitempty"`
}

func (s *LiteServer) handleClassifyStage(ctx context.Context, _ *mcp.CallToolRequest, in ClassifyStageInput) (*mcp.CallToolResult, any, error) {
	ctx, cancel := s.toolContext(ctx, toolClassifyStage)
	defer cancel()

	protocol, err := domain.ParseProtocol(in.Protocol)
	if err != nil {
		return s.errorResult(ctx, toolClassifyStage, err)
	}
	raw, err := json.Marshal(in.Findings)
	if err != nil {
		return s.errorResult(ctx, toolClassifyStage, domain.NewInvalidInputError(protocol, "", "findings are not valid JSON", nil))
	}
	result, err := s.staging.ClassifyJSON(ctx, protocol, raw)
	if err != nil {
		return s.errorResult(ctx, toolClassifyStage, err)
	}
	return textResult(classifyOutput{ClassificationResult: result, Summary: result.Summary()})
}

func (s *LiteServer) handleListProtocols(ctx context.Context, _ *mcp.CallToolRequest, _ ListProtocolsInput) (*mcp.CallToolResult, any, error) {
	out := make([]ProtocolInfo, 0, len(domain.Protocols))
	for _, p := range domain.Protocols {
		out = append(out, ProtocolInfo{ID: p, Name: p.DisplayName()})
	}
	return textResult(map[string]any{"protocols": out})
}

func (s *LiteServer) handleDescribeProtocol(ctx context.Context, _ *mcp.CallToolRequest, in DescribeProtocolInput) (*mcp.CallToolResult, any, error) {
	protocol, err := domain.ParseProtocol(in.Protocol)
	if err != nil {
		return s.errorResult(ctx, toolDescribeProtocol, err)
	}
	fields, err := s.staging.Describe(protocol)
	if err != nil {
		return s.errorResult(ctx, toolDescribeProtocol, err)
	}
	return textResult(map[string]any{
		"protocol": protocol,
		"name":     protocol.DisplayName(),
		"fields":   fields,
	})
}

func (s *LiteServer) handleGTNRiskScore(ctx context.Context, _ *mcp.CallToolRequest, in domain.GTNRiskInput) (*mcp.CallToolResult, any, error) {
	ctx, cancel := s.toolContext(ctx, toolGTNRiskScore)
	defer cancel()

	assessment, err := s.staging.AssessGTNRisk(ctx, &in)
	if err != nil {
		return s.errorResult(ctx, toolGTNRiskScore, err)
	}
	return textResult(assessment)
}

func (s *LiteServer) handleReadPathologyReport(ctx context.Context, _ *mcp.CallToolRequest, in ReadPathologyReportInput) (*mcp.CallToolResult, any, error) {
	ctx, cancel := s.toolContext(ctx, toolReadPathologyReport)
	defer cancel()

	cancerContext, err := external.ParseCancerContext(in.CancerContext)
	if err != nil {
		return s.errorResult(ctx, toolReadPathologyReport, domain.NewInvalidInputError("", "cancer_context", err.Error(), in.CancerContext))
	}
	artifacts := make([]external.Artifact, 0, len(in.Artifacts))
	for _, a := range in.Artifacts {
		data, err := base64.StdEncoding.DecodeString(a.Data)
		if err != nil {
			return s.errorResult(ctx, toolReadPathologyReport, domain.NewInvalidInputError("", "data", fmt.Sprintf("artifact %q is not valid base64", a.Name), nil))
		}
		artifacts = append(artifacts, external.Artifact{Name: a.Name, MIMEType: a.MIMEType, Data: data})
	}

	result, err := s.reader.Read(ctx, external.ReadRequest{
		Artifacts: artifacts,
		Context:   cancerContext,
		APIKey:    in.APIKey,
	})
	if err != nil {
		return s.errorResult(ctx, toolReadPathologyReport, err)
	}
	return textResult(map[string]any{
		"reading":    result,
		"advisory":   true,
		"disclaimer": readingDisclaimer,
	})
}

func (s *LiteServer) handleSubmitFeedback(ctx context.Context, _ *mcp.CallToolRequest, in SubmitFeedbackInput) (*mcp.CallToolResult, any, error) {
	ctx, cancel := s.toolContext(ctx, toolSubmitFeedback)
	defer cancel()

	protocol, err := domain.ParseProtocol(in.Protocol)
	if err != nil {
		return s.errorResult(ctx, toolSubmitFeedback, err)
	}
	raw, err := json.Marshal(in.Findings)
	if err != nil {
		return s.errorResult(ctx, toolSubmitFeedback, domain.NewInvalidInputError(protocol, "", "findings are not valid JSON", nil))
	}

	record, result, err := s.feedback.Submit(ctx, service.FeedbackSubmission{
		Protocol:       protocol,
		Findings:       raw,
		ClinicianStage: in.ClinicianStage,
		Notes:          in.Notes,
	})
	if err != nil {
		return s.errorResult(ctx, toolSubmitFeedback, err)
	}
	return textResult(map[string]any{"record": record, "result": result})
}

func (s *LiteServer) handleListFeedback(ctx context.Context, _ *mcp.CallToolRequest, in ListFeedbackInput) (*mcp.CallToolResult, any, error) {
	ctx, cancel := s.toolContext(ctx, toolListFeedback)
	defer cancel()

	if in.Limit < 0 || in.Offset < 0 {
		return s.errorResult(ctx, toolListFeedback, domain.NewInvalidInputError("", "limit", "limit and offset must not be negative", nil))
	}
	records, total, err := s.feedback.List(ctx, in.Limit, in.Offset)
	if err != nil {
		return s.errorResult(ctx, toolListFeedback, err)
	}
	return textResult(map[string]any{"records": records, "total": total})
}

// toolContext tags the call with a request id and applies the request timeout.
func (s *LiteServer) toolContext(ctx context.Context, tool string) (context.Context, context.CancelFunc) {
	ctx = service.WithRequestID(ctx, uuid.NewString())
	s.logger.WithFields(logrus.Fields{
		"tool":       tool,
		"request_id": service.RequestIDFromContext(ctx),
	}).Debug("Tool invoked")

	if s.config.RequestTimeout > 0 {
		return context.WithTimeout(ctx, s.config.RequestTimeout)
	}
	return context.WithCancel(ctx)
}

func textResult(v any) (*mcp.CallToolResult, any, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode tool result: %w", err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
	}, nil, nil
}

// errorResult reports err as a tool-level error so the calling model can read
// and correct it. Only encoding failures surface as protocol errors.
func (s *LiteServer) errorResult(ctx context.Context, tool string, err error) (*mcp.CallToolResult, any, error) {
	requestID := service.RequestIDFromContext(ctx)
	payload := toolError{}

	var inputErr *domain.InvalidInputError
	var bridgeErr *external.BridgeError
	switch {
	case errors.As(err, &inputErr):
		payload.Error = domain.NewMCPError(domain.ErrInvalidInput, inputErr.Error(), "", requestID)
		payload.Input = inputErr
	case errors.Is(err, domain.ErrUnknownProtocol):
		payload.Error = domain.NewMCPError(domain.ErrNotFoundCode, err.Error(), "", requestID)
	case errors.Is(err, feedback.ErrInvalidRecord):
		payload.Error = domain.NewMCPError(domain.ErrInvalidInput, err.Error(), "", requestID)
	case errors.As(err, &bridgeErr):
		payload.Error = domain.NewMCPError(domain.ErrExternalAPI, bridgeErr.Advisory(), "", requestID)
	case tool == toolReadPathologyReport:
		// Missing key or unusable artifacts.
		payload.Error = domain.NewMCPError(domain.ErrInvalidInput, err.Error(), "", requestID)
	default:
		s.logger.WithError(err).WithFields(logrus.Fields{
			"tool":       tool,
			"request_id": requestID,
		}).Error("Tool failed")
		payload.Error = domain.NewMCPError(domain.ErrInternalServer, "internal error", "", requestID)
	}

	data, mErr := json.MarshalIndent(payload, "", "  ")
	if mErr != nil {
		return nil, nil, fmt.Errorf("failed to encode tool error: %w", mErr)
	}
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
	}, nil, nil
}
