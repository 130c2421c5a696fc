package external

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/lionsmanic/gyn-cancer-staging/internal/cache"
)

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-1.5-flash"

var (
	// ErrMissingAPIKey is returned before any network call when neither the
	// request nor the configuration carries an API key.
	ErrMissingAPIKey = errors.New("請先提供 Google Gemini API Key 才能使用 AI 判讀功能")
	ErrNoArtifacts   = errors.New("at least one report artifact is required")
)

// CancerContext tells the model which staging system the report belongs to.
type CancerContext string

const (
	ContextEndometrial    CancerContext = "endometrial"
	ContextOvarian        CancerContext = "ovarian"
	ContextCervical       CancerContext = "cervical"
	ContextUterineSarcoma CancerContext = "uterine sarcoma"
	ContextVulvar         CancerContext = "vulvar"
	ContextVaginal        CancerContext = "vaginal"
	ContextGTN            CancerContext = "GTN"
	ContextAutoDetect     CancerContext = "auto-detect"
)

var contextLabels = map[CancerContext]string{
	ContextEndometrial:    "子宮內膜癌",
	ContextOvarian:        "卵巢癌",
	ContextCervical:       "子宮頸癌",
	ContextUterineSarcoma: "子宮惡性肉瘤",
	ContextVulvar:         "外陰癌",
	ContextVaginal:        "陰道癌",
	ContextGTN:            "GTN",
	ContextAutoDetect:     "自動判斷",
}

// CancerContexts lists the accepted contexts in presentation order.
var CancerContexts = []CancerContext{
	ContextEndometrial, ContextOvarian, ContextCervical, ContextUterineSarcoma,
	ContextVulvar, ContextVaginal, ContextGTN, ContextAutoDetect,
}

// Label returns the Traditional Chinese label placed in the prompt.
func (c CancerContext) Label() string {
	return contextLabels[c]
}

// ParseCancerContext accepts a context id or its Chinese label. Empty input
// means auto-detect.
func ParseCancerContext(s string) (CancerContext, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return ContextAutoDetect, nil
	}
	for _, c := range CancerContexts {
		if strings.EqualFold(s, string(c)) || s == c.Label() {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown cancer context %q", s)
}

// Artifact is one uploaded report page or text document.
type Artifact struct {
	Name     string `json:"name"`
	MIMEType string `json:"mime_type,omitempty"`
	Data     []byte `json:"data"`
}

var artifactTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".txt":  "text/plain",
}

// ResolveMIMEType returns the artifact's MIME type from its file extension.
// Only png, jpg, jpeg and txt are accepted.
func (a Artifact) ResolveMIMEType() (string, error) {
	mime, ok := artifactTypes[strings.ToLower(filepath.Ext(a.Name))]
	if !ok {
		return "", fmt.Errorf("unsupported artifact %q: accepted types are png, jpg, jpeg, txt", a.Name)
	}
	return mime, nil
}

// ReadRequest is a request to read pathology report artifacts. APIKey is
// request scoped and is never cached or logged.
type ReadRequest struct {
	Artifacts []Artifact    `json:"artifacts"`
	Context   CancerContext `json:"cancer_context"`
	APIKey    string        `json:"-"`
}

// ReadResult is the advisory narrative returned by the model.
type ReadResult struct {
	ID        string        `json:"id"`
	Context   CancerContext `json:"cancer_context"`
	Model     string        `json:"model"`
	Text      string        `json:"text"`
	Cached    bool          `json:"cached"`
	CreatedAt time.Time     `json:"created_at"`
}

// BridgeError reports a failed call to the inference service.
type BridgeError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *BridgeError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("report reading failed (status %d): %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("report reading failed (status %d)", e.StatusCode)
}

func (e *BridgeError) Unwrap() error { return e.Err }

// Advisory returns the message shown to users; the reading never affects
// computed stages.
func (e *BridgeError) Advisory() string {
	return "AI 判讀失敗，請確認 API Key 是否正確，或是圖片是否清晰。" + " (" + e.Error() + ")"
}

// Part is one piece of model input: either text or inline binary data.
type Part struct {
	Text     string
	Data     []byte
	MIMEType string
}

// ContentGenerator sends a prompt to a multimodal model and returns its text.
type ContentGenerator interface {
	Generate(ctx context.Context, apiKey, model string, parts []Part) (string, error)
}

// ReaderConfig configures a ReportReader.
type ReaderConfig struct {
	APIKey    string
	Model     string
	Timeout   time.Duration
	RateLimit float64
}

// ReportReader turns pathology report artifacts into advisory narrative text.
type ReportReader struct {
	generator ContentGenerator
	cache     cache.Cache
	breaker   *gobreaker.CircuitBreaker
	limiter   *rate.Limiter
	logger    *logrus.Logger
	apiKey    string
	model     string
	timeout   time.Duration
}

// NewReportReader creates a reader. A nil cache disables caching.
func NewReportReader(cfg ReaderConfig, generator ContentGenerator, c cache.Cache, logger *logrus.Logger) *ReportReader {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 1
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}

	return &ReportReader{
		generator: generator,
		cache:     c,
		breaker:   NewCircuitBreaker("gemini", logger),
		limiter:   rate.NewLimiter(rate.Limit(cfg.RateLimit), 1),
		logger:    logger,
		apiKey:    cfg.APIKey,
		model:     cfg.Model,
		timeout:   cfg.Timeout,
	}
}

// Model returns the configured model name.
func (r *ReportReader) Model() string {
	return r.model
}

// BreakerState returns the current circuit breaker state.
func (r *ReportReader) BreakerState() gobreaker.State {
	return r.breaker.State()
}

// Read sends the artifacts to the model. It is never retried.
func (r *ReportReader) Read(ctx context.Context, req ReadRequest) (*ReadResult, error) {
	apiKey := strings.TrimSpace(req.APIKey)
	if apiKey == "" {
		apiKey = r.apiKey
	}
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if len(req.Artifacts) == 0 {
		return nil, ErrNoArtifacts
	}
	if req.Context == "" {
		req.Context = ContextAutoDetect
	}
	if req.Context.Label() == "" {
		return nil, fmt.Errorf("unknown cancer context %q", req.Context)
	}

	parts, err := buildParts(req)
	if err != nil {
		return nil, err
	}

	key := r.cacheKey(req, parts)
	if cached := r.lookup(ctx, key); cached != nil {
		return cached, nil
	}

	if err := r.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait failed: %w", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	out, err := r.breaker.Execute(func() (interface{}, error) {
		return r.generator.Generate(callCtx, apiKey, r.model, parts)
	})
	if err != nil {
		bridgeErr := toBridgeError(err)
		r.logger.WithFields(logrus.Fields{
			"model":       r.model,
			"context":     string(req.Context),
			"artifacts":   len(req.Artifacts),
			"status_code": bridgeErr.StatusCode,
		}).WithError(err).Warn("Report reading failed")
		return nil, bridgeErr
	}

	result := &ReadResult{
		ID:        uuid.NewString(),
		Context:   req.Context,
		Model:     r.model,
		Text:      out.(string),
		CreatedAt: time.Now().UTC(),
	}

	r.logger.WithFields(logrus.Fields{
		"reading_id": result.ID,
		"model":      r.model,
		"context":    string(req.Context),
		"artifacts":  len(req.Artifacts),
		"duration":   time.Since(start).String(),
	}).Info("Report reading completed")

	r.store(ctx, key, result)
	return result, nil
}

func (r *ReportReader) cacheKey(req ReadRequest, parts []Part) string {
	chunks := make([][]byte, 0, 2*len(parts)+2)
	chunks = append(chunks, []byte(r.model), []byte(req.Context))
	for _, p := range parts {
		chunks = append(chunks, []byte(p.MIMEType))
		if p.Data != nil {
			chunks = append(chunks, p.Data)
		} else {
			chunks = append(chunks, []byte(p.Text))
		}
	}
	return cache.Key("reading", chunks...)
}

func (r *ReportReader) lookup(ctx context.Context, key string) *ReadResult {
	if r.cache == nil {
		return nil
	}
	data, ok, err := r.cache.Get(ctx, key)
	if err != nil {
		r.logger.WithError(err).Warn("Failed to read cached reading")
		return nil
	}
	if !ok {
		return nil
	}
	var result ReadResult
	if err := json.Unmarshal(data, &result); err != nil {
		r.logger.WithError(err).Warn("Discarding undecodable cached reading")
		return nil
	}
	result.Cached = true
	return &result
}

func (r *ReportReader) store(ctx context.Context, key string, result *ReadResult) {
	if r.cache == nil {
		return
	}
	data, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := r.cache.Set(ctx, key, data); err != nil {
		r.logger.WithError(err).Warn("Failed to cache reading")
	}
}

const instructionTemplate = `你是一位專業的婦科腫瘤科醫師。請分析以下上傳的病理報告資料。
目前的癌症類型上下文為：%s。

請執行以下任務：
1. **摘要關鍵發現**：提取腫瘤大小(Tumor size)、侵犯深度(Invasion depth)、淋巴結狀態(Lymph node status)、遠端轉移(Metastasis)、組織學型態(Histology)等關鍵資訊。
2. **判定分期**：根據 FIGO (最新版) 與 AJCC TNM 系統進行分期判定。請詳細解釋判定的理由。
3. **表格整理**：請以 Markdown 表格列出 T, N, M 的判定結果。

如果報告資訊不足以判定完整分期，請指出缺少哪些關鍵資訊。
請用繁體中文回答。`

// buildParts renders the instruction followed by every artifact in order.
func buildParts(req ReadRequest) ([]Part, error) {
	parts := make([]Part, 0, len(req.Artifacts)+1)
	parts = append(parts, Part{
		Text:     fmt.Sprintf(instructionTemplate, req.Context.Label()),
		MIMEType: "text/plain",
	})

	for _, a := range req.Artifacts {
		mime, err := a.ResolveMIMEType()
		if err != nil {
			return nil, err
		}
		if len(a.Data) == 0 {
			return nil, fmt.Errorf("artifact %q is empty", a.Name)
		}

		if mime == "text/plain" {
			if !utf8.Valid(a.Data) {
				return nil, fmt.Errorf("artifact %q is not valid UTF-8 text", a.Name)
			}
			parts = append(parts, Part{
				Text:     "病理報告文字內容：\n" + string(a.Data),
				MIMEType: mime,
			})
			continue
		}
		parts = append(parts, Part{Data: a.Data, MIMEType: mime})
	}
	return parts, nil
}

func toBridgeError(err error) *BridgeError {
	var bridgeErr *BridgeError
	if errors.As(err, &bridgeErr) {
		return bridgeErr
	}
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return &BridgeError{StatusCode: 503, Body: "inference service temporarily unavailable", Err: err}
	case errors.Is(err, context.DeadlineExceeded):
		return &BridgeError{StatusCode: 504, Body: "inference service timed out", Err: err}
	default:
		return &BridgeError{StatusCode: 502, Body: err.Error(), Err: err}
	}
}
