package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lionsmanic/gyn-cancer-staging/internal/domain"
	"github.com/lionsmanic/gyn-cancer-staging/internal/feedback"
	"github.com/lionsmanic/gyn-cancer-staging/internal/middleware"
	"github.com/lionsmanic/gyn-cancer-staging/internal/service"
	"github.com/lionsmanic/gyn-cancer-staging/pkg/external"
)

// maxFindingsBody bounds classify and feedback bodies; report artifacts get more.
const (
	maxFindingsBody = 64 << 10
	maxReportBody   = 32 << 20
)

// ProtocolInfo is one entry of the protocol listing.
type ProtocolInfo struct {
	ID   domain.Protocol `json:"id"`
	Name string          `json:"name"`
}

// ClassifyResponse wraps a result with its one-line summary.
type ClassifyResponse struct {
	*domain.ClassificationResult
	Summary string `json:"summary"`
}

// ErrorResponse carries the error envelope and, for invalid input, the
// offending field.
type ErrorResponse struct {
	Error *domain.MCPError          `json:"error"`
	Input *domain.InvalidInputError `json:"input,omitempty"`
}

// ReportReadingRequest is the body of POST /api/v1/report-reading. The API
// key may also be sent in the X-API-Key header.
type ReportReadingRequest struct {
	Artifacts     []external.Artifact `json:"artifacts"`
	CancerContext string              `json:"cancer_context"`
	APIKey        string              `json:"api_key,omitempty"`
}

// ReportReadingResponse marks the reading as advisory.
type ReportReadingResponse struct {
	*external.ReadResult
	Advisory   bool   `json:"advisory"`
	Disclaimer string `json:"disclaimer"`
}

const readingDisclaimer = "AI 判讀結果僅供輔助，需由醫師再次確認，且不影響系統計算之分期。"

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"version":   Version,
		"protocols": len(domain.Protocols),
		"features": gin.H{
			"report_reading": s.reader != nil,
			"feedback":       s.feedback != nil,
		},
	})
}

func (s *Server) handleListProtocols(c *gin.Context) {
	out := make([]ProtocolInfo, 0, len(domain.Protocols))
	for _, p := range domain.Protocols {
		out = append(out, ProtocolInfo{ID: p, Name: p.DisplayName()})
	}
	c.JSON(http.StatusOK, gin.H{"protocols": out})
}

func (s *Server) handleDescribeProtocol(c *gin.Context) {
	protocol, ok := s.protocolParam(c)
	if !ok {
		return
	}
	fields, err := s.staging.Describe(protocol)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"protocol": protocol,
		"name":     protocol.DisplayName(),
		"fields":   fields,
	})
}

func (s *Server) handleClassify(c *gin.Context) {
	protocol, ok := s.protocolParam(c)
	if !ok {
		return
	}
	body, ok := s.readBody(c, maxFindingsBody)
	if !ok {
		return
	}

	result, err := s.staging.ClassifyJSON(c.Request.Context(), protocol, body)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ClassifyResponse{ClassificationResult: result, Summary: result.Summary()})
}

func (s *Server) handleGTNRisk(c *gin.Context) {
	body, ok := s.readBody(c, maxFindingsBody)
	if !ok {
		return
	}
	input, err := service.DecodeGTNRiskInput(body)
	if err != nil {
		s.fail(c, err)
		return
	}

	assessment, err := s.staging.AssessGTNRisk(c.Request.Context(), input)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, assessment)
}

func (s *Server) handleReportReading(c *gin.Context) {
	if s.reader == nil {
		s.abort(c, http.StatusServiceUnavailable, domain.ErrExternalAPI, "report reading is not enabled", "")
		return
	}
	body, ok := s.readBody(c, maxReportBody)
	if !ok {
		return
	}

	var req ReportReadingRequest
	if err := decodeStrict(body, &req); err != nil {
		s.abort(c, http.StatusBadRequest, domain.ErrInvalidInput, "malformed report reading request", err.Error())
		return
	}
	cancerContext, err := external.ParseCancerContext(req.CancerContext)
	if err != nil {
		s.abort(c, http.StatusBadRequest, domain.ErrInvalidInput, err.Error(), "")
		return
	}
	apiKey := req.APIKey
	if apiKey == "" {
		apiKey = c.GetHeader("X-API-Key")
	}

	result, err := s.reader.Read(c.Request.Context(), external.ReadRequest{
		Artifacts: req.Artifacts,
		Context:   cancerContext,
		APIKey:    apiKey,
	})
	if err != nil {
		s.failReading(c, err)
		return
	}

	c.JSON(http.StatusOK, ReportReadingResponse{
		ReadResult: result,
		Advisory:   true,
		Disclaimer: readingDisclaimer,
	})
}

func (s *Server) failReading(c *gin.Context, err error) {
	var bridgeErr *external.BridgeError
	if !errors.As(err, &bridgeErr) {
		// Missing key, bad artifacts or an exhausted request deadline.
		s.abort(c, http.StatusBadRequest, domain.ErrInvalidInput, err.Error(), "")
		return
	}
	status := http.StatusBadGateway
	if bridgeErr.StatusCode == http.StatusServiceUnavailable || bridgeErr.StatusCode == http.StatusGatewayTimeout {
		status = bridgeErr.StatusCode
	}
	s.abort(c, status, domain.ErrExternalAPI, bridgeErr.Advisory(), "")
}

func (s *Server) handleSubmitFeedback(c *gin.Context) {
	if s.feedback == nil {
		s.abort(c, http.StatusServiceUnavailable, domain.ErrDatabaseError, "feedback store is not enabled", "")
		return
	}
	body, ok := s.readBody(c, maxFindingsBody)
	if !ok {
		return
	}

	var sub service.FeedbackSubmission
	if err := decodeStrict(body, &sub); err != nil {
		s.abort(c, http.StatusBadRequest, domain.ErrInvalidInput, "malformed feedback request", err.Error())
		return
	}

	record, result, err := s.feedback.Submit(c.Request.Context(), sub)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"record": record, "result": result})
}

func (s *Server) handleListFeedback(c *gin.Context) {
	if s.feedback == nil {
		s.abort(c, http.StatusServiceUnavailable, domain.ErrDatabaseError, "feedback store is not enabled", "")
		return
	}
	limit, err1 := strconv.Atoi(c.DefaultQuery("limit", "0"))
	offset, err2 := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err1 != nil || err2 != nil {
		s.abort(c, http.StatusBadRequest, domain.ErrInvalidInput, "limit and offset must be integers", "")
		return
	}

	records, total, err := s.feedback.List(c.Request.Context(), limit, offset)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": records, "total": total})
}

func (s *Server) protocolParam(c *gin.Context) (domain.Protocol, bool) {
	protocol, err := domain.ParseProtocol(c.Param("protocol"))
	if err != nil {
		s.abort(c, http.StatusNotFound, domain.ErrNotFoundCode, err.Error(), "")
		return "", false
	}
	return protocol, true
}

func (s *Server) readBody(c *gin.Context, limit int64) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, limit))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.abort(c, http.StatusRequestEntityTooLarge, domain.ErrInvalidInput, "request body too large", "")
			return nil, false
		}
		s.abort(c, http.StatusBadRequest, domain.ErrInvalidInput, "failed to read request body", err.Error())
		return nil, false
	}
	return body, true
}

// decodeStrict decodes one JSON object and rejects fields v does not declare.
func decodeStrict(body []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return errors.New("body must be a single JSON object")
	}
	return nil
}

// fail maps service errors onto HTTP statuses.
func (s *Server) fail(c *gin.Context, err error) {
	var inputErr *domain.InvalidInputError
	if errors.As(err, &inputErr) {
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{
			Error: domain.NewMCPError(domain.ErrInvalidInput, inputErr.Error(), "", c.GetString(middleware.RequestIDKey)),
			Input: inputErr,
		})
		return
	}
	if errors.Is(err, domain.ErrUnknownProtocol) {
		s.abort(c, http.StatusNotFound, domain.ErrNotFoundCode, err.Error(), "")
		return
	}
	if errors.Is(err, feedback.ErrInvalidRecord) {
		s.abort(c, http.StatusBadRequest, domain.ErrInvalidInput, err.Error(), "")
		return
	}

	_ = c.Error(err)
	s.abort(c, http.StatusInternalServerError, domain.ErrInternalServer, "internal server error", "")
}

func (s *Server) abort(c *gin.Context, status int, code, message, details string) {
	c.AbortWithStatusJSON(status, ErrorResponse{
		Error: domain.NewMCPError(code, message, details, c.GetString(middleware.RequestIDKey)),
	})
}
