// internal/hint/gemini.go
//
// Generator backed by the Google Gemini API.
// A client is created per call because every session brings its own API key.

package hint

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-3-flash-preview"

// Gemini implements Generator with generative-ai-go.
type Gemini struct {
	Model string
	// Options are appended after option.WithAPIKey (endpoint overrides, HTTP client, ...).
	Options []option.ClientOption
}

// NewGemini returns a Gemini generator for model (DefaultModel if empty).
func NewGemini(model string, opts ...option.ClientOption) *Gemini {
	if model == "" {
		model = DefaultModel
	}
	return &Gemini{Model: model, Options: opts}
}

// Generate sends prompt as a single text part and returns the concatenated
// text of the first candidate.
func (g *Gemini) Generate(ctx context.Context, apiKey, prompt string) (string, error) {
	opts := append([]option.ClientOption{option.WithAPIKey(apiKey)}, g.Options...)
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return "", fmt.Errorf("gemini client: %w", err)
	}
	defer client.Close()

	resp, err := client.GenerativeModel(g.Model).GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	text := responseText(resp)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// responseText folds the text parts of the first candidate into one string.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}
	return b.String()
}
