package external

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lionsmanic/gyn-cancer-staging/internal/cache"
)

type fakeGenerator struct {
	mu    sync.Mutex
	calls int
	keys  []string
	parts [][]Part
	text  string
	err   error
}

func (f *fakeGenerator) Generate(_ context.Context, apiKey, _ string, parts []Part) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.keys = append(f.keys, apiKey)
	f.parts = append(f.parts, parts)
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestReader(t *testing.T, gen ContentGenerator, cfg ReaderConfig) *ReportReader {
	t.Helper()
	if cfg.RateLimit == 0 {
		cfg.RateLimit = 1000
	}
	c, err := cache.NewMemoryCache(16, time.Minute)
	require.NoError(t, err)
	return NewReportReader(cfg, gen, c, quietLogger())
}

func textArtifact(body string) Artifact {
	return Artifact{Name: "report.txt", Data: []byte(body)}
}

func TestReportReader_MissingAPIKey(t *testing.T) {
	gen := &fakeGenerator{text: "ok"}
	reader := newTestReader(t, gen, ReaderConfig{})

	_, err := reader.Read(context.Background(), ReadRequest{
		Artifacts: []Artifact{textArtifact("Endometrioid carcinoma")},
		Context:   ContextEndometrial,
	})

	assert.ErrorIs(t, err, ErrMissingAPIKey)
	assert.Zero(t, gen.calls, "no network call without a key")
}

func TestReportReader_FallsBackToConfiguredKey(t *testing.T) {
	gen := &fakeGenerator{text: "| T | N | M |"}
	reader := newTestReader(t, gen, ReaderConfig{APIKey: "configured"})

	res, err := reader.Read(context.Background(), ReadRequest{
		Artifacts: []Artifact{textArtifact("tumor 3 cm")},
		Context:   ContextCervical,
	})
	require.NoError(t, err)
	assert.Equal(t, "| T | N | M |", res.Text)
	assert.Equal(t, DefaultModel, res.Model)
	assert.NotEmpty(t, res.ID)
	assert.Equal(t, []string{"configured"}, gen.keys)
}

func TestReportReader_RequestKeyWins(t *testing.T) {
	gen := &fakeGenerator{text: "ok"}
	reader := newTestReader(t, gen, ReaderConfig{APIKey: "configured"})

	_, err := reader.Read(context.Background(), ReadRequest{
		Artifacts: []Artifact{textArtifact("x")},
		APIKey:    "per-request",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"per-request"}, gen.keys)
}

func TestReportReader_ValidatesArtifacts(t *testing.T) {
	tests := []struct {
		name      string
		artifacts []Artifact
		wantErr   string
	}{
		{"no artifacts", nil, "at least one report artifact"},
		{"pdf rejected", []Artifact{{Name: "report.pdf", Data: []byte("%PDF")}}, "unsupported artifact"},
		{"empty file", []Artifact{{Name: "scan.png"}}, "is empty"},
		{"invalid utf8 text", []Artifact{{Name: "r.txt", Data: []byte{0xff, 0xfe}}}, "not valid UTF-8"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &fakeGenerator{text: "ok"}
			reader := newTestReader(t, gen, ReaderConfig{APIKey: "k"})

			_, err := reader.Read(context.Background(), ReadRequest{Artifacts: tt.artifacts})
			assert.ErrorContains(t, err, tt.wantErr)
			assert.Zero(t, gen.calls)
		})
	}
}

func TestReportReader_UnknownContext(t *testing.T) {
	reader := newTestReader(t, &fakeGenerator{}, ReaderConfig{APIKey: "k"})
	_, err := reader.Read(context.Background(), ReadRequest{
		Artifacts: []Artifact{textArtifact("x")},
		Context:   "breast",
	})
	assert.ErrorContains(t, err, "unknown cancer context")
}

func TestReportReader_BuildsPrompt(t *testing.T) {
	gen := &fakeGenerator{text: "ok"}
	reader := newTestReader(t, gen, ReaderConfig{APIKey: "k"})

	_, err := reader.Read(context.Background(), ReadRequest{
		Artifacts: []Artifact{
			{Name: "page1.JPG", Data: []byte{0xff, 0xd8, 0xff}},
			textArtifact("Myometrial invasion 60%"),
		},
		Context: ContextEndometrial,
	})
	require.NoError(t, err)
	require.Len(t, gen.parts, 1)

	parts := gen.parts[0]
	require.Len(t, parts, 3)
	assert.Contains(t, parts[0].Text, "子宮內膜癌")
	assert.Contains(t, parts[0].Text, "Markdown")
	assert.Contains(t, parts[0].Text, "繁體中文")
	assert.Equal(t, "image/jpeg", parts[1].MIMEType)
	assert.Equal(t, []byte{0xff, 0xd8, 0xff}, parts[1].Data)
	assert.True(t, strings.HasPrefix(parts[2].Text, "病理報告文字內容：\n"))
	assert.Contains(t, parts[2].Text, "Myometrial invasion 60%")
}

func TestReportReader_CachesByContent(t *testing.T) {
	gen := &fakeGenerator{text: "reading"}
	reader := newTestReader(t, gen, ReaderConfig{APIKey: "k"})
	ctx := context.Background()
	req := ReadRequest{Artifacts: []Artifact{textArtifact("same report")}, Context: ContextOvarian}

	first, err := reader.Read(ctx, req)
	require.NoError(t, err)
	assert.False(t, first.Cached)

	req.APIKey = "another-key"
	second, err := reader.Read(ctx, req)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, gen.calls)

	req.Context = ContextVaginal
	_, err = reader.Read(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, 2, gen.calls, "a different context is a different reading")
}

func TestReportReader_BridgeErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"api error passes through", &BridgeError{StatusCode: 400, Body: "API key not valid"}, 400},
		{"transport failure", errors.New("connection reset"), 502},
		{"deadline", context.DeadlineExceeded, 504},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader := newTestReader(t, &fakeGenerator{err: tt.err}, ReaderConfig{APIKey: "k"})

			_, err := reader.Read(context.Background(), ReadRequest{Artifacts: []Artifact{textArtifact("x")}})

			var bridgeErr *BridgeError
			require.ErrorAs(t, err, &bridgeErr)
			assert.Equal(t, tt.wantStatus, bridgeErr.StatusCode)
			assert.Contains(t, bridgeErr.Advisory(), "API Key")
		})
	}
}

func TestReportReader_BreakerOpensOnServerErrors(t *testing.T) {
	gen := &fakeGenerator{err: &BridgeError{StatusCode: 500, Body: "internal"}}
	reader := newTestReader(t, gen, ReaderConfig{APIKey: "k"})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := reader.Read(ctx, ReadRequest{Artifacts: []Artifact{textArtifact(strings.Repeat("x", i+1))}})
		require.Error(t, err)
	}
	assert.Equal(t, gobreaker.StateOpen, reader.BreakerState())

	_, err := reader.Read(ctx, ReadRequest{Artifacts: []Artifact{textArtifact("fresh")}})
	var bridgeErr *BridgeError
	require.ErrorAs(t, err, &bridgeErr)
	assert.Equal(t, 503, bridgeErr.StatusCode)
	assert.Equal(t, 3, gen.calls, "open breaker short-circuits the call")
}

func TestReportReader_ClientErrorsDoNotTripBreaker(t *testing.T) {
	gen := &fakeGenerator{err: &BridgeError{StatusCode: 403, Body: "permission denied"}}
	reader := newTestReader(t, gen, ReaderConfig{APIKey: "k"})

	for i := 0; i < 5; i++ {
		_, _ = reader.Read(context.Background(), ReadRequest{Artifacts: []Artifact{textArtifact("x")}})
	}
	assert.Equal(t, gobreaker.StateClosed, reader.BreakerState())
	assert.Equal(t, 5, gen.calls)
}

func TestReportReader_RateLimitHonoursContext(t *testing.T) {
	gen := &fakeGenerator{text: "ok"}
	reader := newTestReader(t, gen, ReaderConfig{APIKey: "k", RateLimit: 0.001})

	_, err := reader.Read(context.Background(), ReadRequest{Artifacts: []Artifact{textArtifact("a")}})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = reader.Read(ctx, ReadRequest{Artifacts: []Artifact{textArtifact("b")}})
	assert.ErrorContains(t, err, "rate limit")
	assert.Equal(t, 1, gen.calls)
}

func TestParseCancerContext(t *testing.T) {
	tests := []struct {
		in   string
		want CancerContext
		ok   bool
	}{
		{"", ContextAutoDetect, true},
		{"ovarian", ContextOvarian, true},
		{"Uterine Sarcoma", ContextUterineSarcoma, true},
		{"卵巢癌", ContextOvarian, true},
		{"gtn", ContextGTN, true},
		{"breast", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseCancerContext(tt.in)
			if !tt.ok {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGeminiGenerator_AgainstStubServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"candidates":[{"content":{"role":"model","parts":[{"text":"T1a N0 M0"}]}}]}`)
	}))
	defer srv.Close()

	gen := NewGeminiGenerator(WithBaseURL(srv.URL + "/"))
	text, err := gen.Generate(context.Background(), "secret", DefaultModel, []Part{{Text: "hello"}})
	require.NoError(t, err)
	assert.Equal(t, "T1a N0 M0", text)
}

func TestGeminiGenerator_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":{"code":400,"message":"API key not valid","status":"INVALID_ARGUMENT"}}`)
	}))
	defer srv.Close()

	gen := NewGeminiGenerator(WithBaseURL(srv.URL + "/"))
	_, err := gen.Generate(context.Background(), "bad", DefaultModel, []Part{{Text: "hello"}})

	var bridgeErr *BridgeError
	require.ErrorAs(t, err, &bridgeErr)
	assert.Equal(t, 400, bridgeErr.StatusCode)
	assert.Contains(t, bridgeErr.Body, "API key not valid")
}
