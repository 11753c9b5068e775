package hint

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/gemini-guess/internal/game"
)

// stubGen returns canned output and records what it was sent.
type stubGen struct {
	text    string
	err     error
	keys    []string
	prompts []string
}

func (s *stubGen) Generate(_ context.Context, apiKey, prompt string) (string, error) {
	s.keys = append(s.keys, apiKey)
	s.prompts = append(s.prompts, prompt)
	return s.text, s.err
}

func TestHintUsesModelTextVerbatim(t *testing.T) {
	gen := &stubGen{text: "Colder than a penguin's toes, go higher!"}
	p := NewProvider(gen, "key-1")

	got := p.Hint(context.Background(), 60, 20, nil)
	assert.Equal(t, "Colder than a penguin's toes, go higher!", got)
	require.Len(t, gen.keys, 1)
	assert.Equal(t, "key-1", gen.keys[0])
}

func TestHintFallback(t *testing.T) {
	cases := []struct {
		name   string
		gen    *stubGen
		secret int
		guess  int
		want   string
	}{
		{"error and too high", &stubGen{err: errors.New("boom")}, 40, 80, FallbackHigh},
		{"error and too low", &stubGen{err: errors.New("boom")}, 40, 10, FallbackLow},
		{"empty text", &stubGen{text: ""}, 40, 41, FallbackHigh},
		{"whitespace text", &stubGen{text: " \n\t"}, 40, 39, FallbackLow},
		{"error on correct guess", &stubGen{err: errors.New("boom")}, 40, 40, FallbackLow},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := NewProvider(tc.gen, "k")
			assert.Equal(t, tc.want, p.Hint(context.Background(), tc.secret, tc.guess, nil))
		})
	}
}

func TestBuildPromptContents(t *testing.T) {
	history := []game.Entry{
		{Guess: 30, Hint: "Higher!"},
		{Guess: 70, Hint: "Lower!"},
	}
	prompt := BuildPrompt(50, 60, history)

	assert.Contains(t, prompt, "The secret number is 50.")
	assert.Contains(t, prompt, "The user just guessed: 60.")
	assert.Contains(t, prompt, "Previous history: Guess: 30, Hint: Higher! | Guess: 70, Hint: Lower!")
	assert.Contains(t, prompt, "congratulate them enthusiastically")
	assert.Contains(t, prompt, "under 2 sentences")
	assert.Contains(t, prompt, "Guess the Number (1-100)")
}

func TestFormatHistoryEmpty(t *testing.T) {
	assert.Equal(t, "", FormatHistory(nil))
}

func TestProviderSatisfiesHinter(t *testing.T) {
	var _ game.Hinter = NewProvider(&stubGen{}, "")
}

func TestTestCredential(t *testing.T) {
	cases := []struct {
		name string
		gen  *stubGen
		key  string
		want bool
	}{
		{"exact OK", &stubGen{text: "OK"}, "k", true},
		{"OK inside sentence", &stubGen{text: "Sure! OK."}, "k", true},
		{"lowercase ok", &stubGen{text: "ok"}, "k", false},
		{"other text", &stubGen{text: "Hello"}, "k", false},
		{"error", &stubGen{text: "OK", err: errors.New("401")}, "k", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, TestCredential(context.Background(), tc.gen, tc.key))
			require.Len(t, tc.gen.prompts, 1)
			assert.True(t, strings.Contains(tc.gen.prompts[0], `"OK"`))
		})
	}
}

func TestTestCredentialEmptyKeySkipsCall(t *testing.T) {
	gen := &stubGen{text: "OK"}
	assert.False(t, TestCredential(context.Background(), gen, "   "))
	assert.Empty(t, gen.prompts)
}

func TestResponseText(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{genai.Text("Getting "), genai.Text("warmer!")}},
		}},
	}
	assert.Equal(t, "Getting warmer!", responseText(resp))
	assert.Equal(t, "", responseText(nil))
	assert.Equal(t, "", responseText(&genai.GenerateContentResponse{}))
	assert.Equal(t, "", responseText(&genai.GenerateContentResponse{Candidates: []*genai.Candidate{{}}}))
}

func TestNewGeminiDefaultModel(t *testing.T) {
	assert.Equal(t, DefaultModel, NewGemini("").Model)
	assert.Equal(t, "gemini-2.5-pro", NewGemini("gemini-2.5-pro").Model)
}
