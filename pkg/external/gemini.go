package external

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

// GeminiGenerator calls the Gemini API. A client is built per call because
// the API key is request scoped.
type GeminiGenerator struct {
	baseURL string
}

// GeminiOption customizes a GeminiGenerator.
type GeminiOption func(*GeminiGenerator)

// WithBaseURL points the generator at another endpoint, such as a proxy.
func WithBaseURL(url string) GeminiOption {
	return func(g *GeminiGenerator) { g.baseURL = url }
}

// NewGeminiGenerator creates a Gemini-backed ContentGenerator.
func NewGeminiGenerator(opts ...GeminiOption) *GeminiGenerator {
	g := &GeminiGenerator{}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate sends parts as a single user turn and returns the response text.
func (g *GeminiGenerator) Generate(ctx context.Context, apiKey, model string, parts []Part) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: g.baseURL},
	})
	if err != nil {
		return "", fmt.Errorf("failed to create GenAI client: %w", err)
	}

	gparts := make([]*genai.Part, 0, len(parts))
	for _, p := range parts {
		if p.Data != nil {
			gparts = append(gparts, genai.NewPartFromBytes(p.Data, p.MIMEType))
			continue
		}
		gparts = append(gparts, genai.NewPartFromText(p.Text))
	}

	resp, err := client.Models.GenerateContent(ctx, model,
		[]*genai.Content{genai.NewContentFromParts(gparts, genai.RoleUser)},
		nil,
	)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			return "", &BridgeError{StatusCode: apiErr.Code, Body: apiErr.Message, Err: err}
		}
		return "", fmt.Errorf("GenAI generate failed: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", &BridgeError{StatusCode: 502, Body: "model returned no text"}
	}
	return text, nil
}

var _ ContentGenerator = (*GeminiGenerator)(nil)
