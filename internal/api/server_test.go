package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lionsmanic/gyn-cancer-staging/internal/domain"
	"github.com/lionsmanic/gyn-cancer-staging/internal/feedback"
	"github.com/lionsmanic/gyn-cancer-staging/internal/service"
	"github.com/lionsmanic/gyn-cancer-staging/pkg/external"
)

type stubConfig struct {
	cfg domain.Config
}

func newStubConfig() *stubConfig {
	return &stubConfig{cfg: domain.Config{
		Server:  domain.ServerConfig{Host: "127.0.0.1", Port: 8080, RateLimit: 1000, RateBurst: 1000},
		Logging: domain.LoggingConfig{Level: "info"},
		MCP:     domain.MCPConfig{RequestTimeout: 5 * time.Second},
	}}
}

func (s *stubConfig) GetConfig() *domain.Config                 { return &s.cfg }
func (s *stubConfig) GetServerConfig() *domain.ServerConfig     { return &s.cfg.Server }
func (s *stubConfig) GetFeedbackConfig() *domain.FeedbackConfig { return &s.cfg.Feedback }
func (s *stubConfig) GetAIBridgeConfig() *domain.AIBridgeConfig { return &s.cfg.AIBridge }
func (s *stubConfig) Reload() error                             { return nil }
func (s *stubConfig) Validate() error                           { return nil }
func (s *stubConfig) IsProduction() bool                        { return false }
func (s *stubConfig) IsDevelopment() bool                       { return true }

type stubReader struct {
	got external.ReadRequest
	res *external.ReadResult
	err error
}

func (r *stubReader) Read(_ context.Context, req external.ReadRequest) (*external.ReadResult, error) {
	r.got = req
	return r.res, r.err
}

func newTestServer(t *testing.T, opts ...Option) http.Handler {
	t.Helper()
	logger, _ := test.NewNullLogger()
	staging := service.NewStagingService(logger)

	store, err := feedback.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	base := []Option{
		WithLogger(logger),
		WithFeedbackRecorder(service.NewFeedbackRecorder(staging, store, logger)),
	}
	srv, err := NewServer(newStubConfig(), staging, append(base, opts...)...)
	require.NoError(t, err)
	return srv.Handler()
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealth(t *testing.T) {
	h := newTestServer(t)
	w := doJSON(t, h, http.MethodGet, "/health", "")

	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, float64(8), body["protocols"])
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestListProtocols(t *testing.T) {
	h := newTestServer(t)
	w := doJSON(t, h, http.MethodGet, "/api/v1/protocols", "")

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Protocols []ProtocolInfo `json:"protocols"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Protocols, 8)
	assert.Equal(t, domain.ProtocolEndometrial, body.Protocols[0].ID)
}

func TestDescribeProtocol(t *testing.T) {
	h := newTestServer(t)

	w := doJSON(t, h, http.MethodGet, "/api/v1/protocols/cervical", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"field":"t"`)

	w = doJSON(t, h, http.MethodGet, "/api/v1/protocols/breast", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), domain.ErrNotFoundCode)
}

func TestClassify(t *testing.T) {
	h := newTestServer(t)

	tests := []struct {
		name       string
		path       string
		body       string
		wantStatus int
		wantStage  string
		wantField  string
	}{
		{
			name:       "ovarian stage IA",
			path:       "/api/v1/classify/ovarian",
			body:       `{"t":"T1a","n":"N0","m":"M0"}`,
			wantStatus: http.StatusOK,
			wantStage:  "Stage IA",
		},
		{
			name:       "cervical T4 with M1",
			path:       "/api/v1/classify/cervical",
			body:       `{"t":"T4","n":"N0","m":"M1"}`,
			wantStatus: http.StatusOK,
			wantStage:  "Stage IVB",
		},
		{
			name:       "vulvar wildcard",
			path:       "/api/v1/classify/vulvar",
			body:       `{"t":"T3","n":"N1a","m":"M0"}`,
			wantStatus: http.StatusOK,
			wantStage:  "Stage IVA",
		},
		{
			name:       "unknown code",
			path:       "/api/v1/classify/ovarian",
			body:       `{"t":"T9","n":"N0","m":"M0"}`,
			wantStatus: http.StatusBadRequest,
			wantField:  "t",
		},
		{
			name:       "unknown field",
			path:       "/api/v1/classify/ovarian",
			body:       `{"t":"T1a","n":"N0","m":"M0","grade":"G3"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "malformed json",
			path:       "/api/v1/classify/ovarian",
			body:       `{"t":`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown protocol",
			path:       "/api/v1/classify/breast",
			body:       `{}`,
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, h, http.MethodPost, tt.path, tt.body)
			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())

			body := decode(t, w)
			if tt.wantStage != "" {
				assert.Equal(t, tt.wantStage, body["figo_stage"])
				assert.Equal(t, true, body["staged"])
				assert.NotEmpty(t, body["summary"])
			}
			if tt.wantField != "" {
				input, ok := body["input"].(map[string]any)
				require.True(t, ok)
				assert.Equal(t, tt.wantField, input["field"])
				assert.NotEmpty(t, input["allowed"])
			}
		})
	}
}

func TestClassify_SentinelIsNotAnError(t *testing.T) {
	h := newTestServer(t)
	w := doJSON(t, h, http.MethodPost, "/api/v1/classify/cervical", `{"t":"TX","n":"N0","m":"M0"}`)

	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, false, body["staged"])
	assert.NotEmpty(t, body["notes"])
}

func TestGTNRisk(t *testing.T) {
	h := newTestServer(t)
	w := doJSON(t, h, http.MethodPost, "/api/v1/gtn/risk", `{
		"age":"ge40","antecedent_pregnancy":"mole","interval_months":"7to12",
		"pretreatment_hcg":"ge1e5","tumor_size":"3to5cm","metastasis_site":"lung",
		"metastasis_count":"1to4","prior_chemotherapy":"single_drug"}`)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var risk domain.RiskAssessment
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &risk))
	assert.Equal(t, 11, risk.Score)
	assert.Equal(t, domain.RiskHigh, risk.Category)

	w = doJSON(t, h, http.MethodPost, "/api/v1/gtn/risk", `{"age":"ge40"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReportReading(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		h := newTestServer(t)
		w := doJSON(t, h, http.MethodPost, "/api/v1/report-reading", `{}`)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("success uses header key", func(t *testing.T) {
		reader := &stubReader{res: &external.ReadResult{ID: "r1", Text: "| T | N | M |"}}
		h := newTestServer(t, WithReportReader(reader))

		payload, err := json.Marshal(ReportReadingRequest{
			Artifacts:     []external.Artifact{{Name: "r.txt", Data: []byte("tumor 2 cm")}},
			CancerContext: "cervical",
		})
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/report-reading", bytes.NewReader(payload))
		req.Header.Set("X-API-Key", "header-key")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		body := decode(t, w)
		assert.Equal(t, true, body["advisory"])
		assert.Equal(t, "| T | N | M |", body["text"])
		assert.Equal(t, "header-key", reader.got.APIKey)
		assert.Equal(t, external.ContextCervical, reader.got.Context)
		assert.Equal(t, []byte("tumor 2 cm"), reader.got.Artifacts[0].Data)
	})

	t.Run("bridge failure is advisory", func(t *testing.T) {
		reader := &stubReader{err: &external.BridgeError{StatusCode: 401, Body: "bad key"}}
		h := newTestServer(t, WithReportReader(reader))

		w := doJSON(t, h, http.MethodPost, "/api/v1/report-reading", `{"artifacts":[],"api_key":"k"}`)
		assert.Equal(t, http.StatusBadGateway, w.Code)
		assert.Contains(t, w.Body.String(), domain.ErrExternalAPI)
	})

	t.Run("missing key", func(t *testing.T) {
		reader := &stubReader{err: external.ErrMissingAPIKey}
		h := newTestServer(t, WithReportReader(reader))

		w := doJSON(t, h, http.MethodPost, "/api/v1/report-reading", `{"artifacts":[]}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown context", func(t *testing.T) {
		h := newTestServer(t, WithReportReader(&stubReader{}))
		w := doJSON(t, h, http.MethodPost, "/api/v1/report-reading", `{"cancer_context":"breast"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestFeedbackEndpoints(t *testing.T) {
	h := newTestServer(t)

	w := doJSON(t, h, http.MethodPost, "/api/v1/feedback", `{
		"protocol":"cervical",
		"findings":{"t":"T1b1","n":"N0","m":"M0"},
		"clinician_stage":"Stage IB2",
		"notes":"MRI size 4.2 cm"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decode(t, w)
	record := body["record"].(map[string]any)
	assert.Equal(t, false, record["agreed"])
	assert.Equal(t, "Stage IB2", record["clinician_stage"])

	w = doJSON(t, h, http.MethodGet, "/api/v1/feedback?limit=10", "")
	require.Equal(t, http.StatusOK, w.Code)
	body = decode(t, w)
	assert.Equal(t, float64(1), body["total"])

	w = doJSON(t, h, http.MethodGet, "/api/v1/feedback?limit=ten", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, h, http.MethodPost, "/api/v1/feedback", `{"protocol":"cervical","findings":{"t":"T9","n":"N0","m":"M0"}}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUnknownBodyFieldsRejected(t *testing.T) {
	tests := []struct {
		name string
		path string
		body string
	}{
		{"gtn risk", "/api/v1/gtn/risk", `{"age":"ge40","antecedent_pregnancy":"mole","interval_months":"7to12",
			"pretreatment_hcg":"ge1e5","tumor_size":"3to5cm","metastasis_site":"lung",
			"metastasis_count":"1to4","prior_chemotherapy":"single_drug","stage":"III"}`},
		{"report reading", "/api/v1/report-reading", `{"artifacts":[],"cancer_context":"cervical","model":"other"}`},
		{"feedback", "/api/v1/feedback", `{"protocol":"cervical","findings":{"t":"T1b1","n":"N0","m":"M0"},"suggested_stage":"Stage I"}`},
		{"trailing data", "/api/v1/feedback", `{"protocol":"cervical","findings":{"t":"T1b1","n":"N0","m":"M0"}} {}`},
	}

	h := newTestServer(t, WithReportReader(&stubReader{res: &external.ReadResult{Text: "ok"}}))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, h, http.MethodPost, tt.path, tt.body)
			require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			require.NotNil(t, resp.Error)
			assert.Equal(t, domain.ErrInvalidInput, resp.Error.Code)
		})
	}
}

func TestRateLimitApplies(t *testing.T) {
	logger, _ := test.NewNullLogger()
	cfg := newStubConfig()
	cfg.cfg.Server.RateLimit = 0.001
	cfg.cfg.Server.RateBurst = 1

	srv, err := NewServer(cfg, service.NewStagingService(logger), WithLogger(logger))
	require.NoError(t, err)
	h := srv.Handler()

	assert.Equal(t, http.StatusOK, doJSON(t, h, http.MethodGet, "/health", "").Code)
	w := doJSON(t, h, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusTooManyRequests, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, domain.ErrRateLimit, resp.Error.Code)
}
