// internal/hint/hint.go
//
// Hint generation for guesses.
// Responsibilities:
//   - Render the game-master prompt from secret, guess and prior history.
//   - Delegate to a Generator (Gemini in production) exactly once per call.
//   - Absorb every failure into the deterministic "Too high!"/"Too low!" fallback.
//   - Probe a credential with a minimal round trip before a session may play.
//
// Notes:
//   - No timeout or retry is applied here; the caller's context bounds the call.
//   - The credential check is a plain substring match on "OK".

package hint

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/gemini-guess/internal/game"
	"github.com/robalobadob/gemini-guess/internal/metrics"
)

const (
	FallbackHigh = "Too high!"
	FallbackLow  = "Too low!"

	probePrompt = `Say "OK"`
	probeToken  = "OK"
)

// ErrEmptyResponse is returned by generators when the model produced no text.
var ErrEmptyResponse = errors.New("hint: empty model response")

// Generator sends one prompt to a text-generation backend using apiKey.
type Generator interface {
	Generate(ctx context.Context, apiKey, prompt string) (string, error)
}

// Provider produces hints for one credential. It implements game.Hinter.
type Provider struct {
	gen    Generator
	apiKey string
}

// NewProvider binds a generator to the session's credential.
func NewProvider(gen Generator, apiKey string) *Provider {
	return &Provider{gen: gen, apiKey: apiKey}
}

// Hint returns the model's hint text, or the numeric fallback when the call
// fails or comes back empty. It never returns an empty string.
func (p *Provider) Hint(ctx context.Context, secret, guess int, history []game.Entry) string {
	text, err := p.gen.Generate(ctx, p.apiKey, BuildPrompt(secret, guess, history))
	if err == nil && strings.TrimSpace(text) != "" {
		metrics.ObserveHint(false)
		return text
	}
	if err == nil {
		err = ErrEmptyResponse
	}
	log.Warn().Err(err).Int("guess", guess).Msg("hint generation failed; using fallback")
	metrics.ObserveHint(true)
	return Fallback(secret, guess)
}

// Fallback is the canned hint used when the model is unavailable.
func Fallback(secret, guess int) string {
	if guess > secret {
		return FallbackHigh
	}
	return FallbackLow
}

// TestCredential reports whether key can complete a minimal generation whose
// reply contains "OK". Any error counts as false.
func TestCredential(ctx context.Context, gen Generator, key string) bool {
	if strings.TrimSpace(key) == "" {
		metrics.ObserveCredential(false)
		return false
	}
	text, err := gen.Generate(ctx, key, probePrompt)
	if err != nil {
		log.Warn().Err(err).Msg("credential probe failed")
		metrics.ObserveCredential(false)
		return false
	}
	ok := strings.Contains(text, probeToken)
	metrics.ObserveCredential(ok)
	return ok
}

// BuildPrompt renders the game-master instruction for one guess.
func BuildPrompt(secret, guess int, history []game.Entry) string {
	return fmt.Sprintf(`You are a helpful and witty game master for a "Guess the Number (%d-%d)" game.
The secret number is %d.
The user just guessed: %d.
Previous history: %s

If the guess is correct, congratulate them enthusiastically.
If the guess is too high, give a creative hint that it's lower.
If the guess is too low, give a creative hint that it's higher.
Keep the hint short (under 2 sentences) and fun.`,
		game.MinGuess, game.MaxGuess, secret, guess, FormatHistory(history))
}

// FormatHistory renders prior entries as "Guess: g, Hint: h" joined by " | ".
func FormatHistory(history []game.Entry) string {
	parts := make([]string, 0, len(history))
	for _, e := range history {
		parts = append(parts, fmt.Sprintf("Guess: %d, Hint: %s", e.Guess, e.Hint))
	}
	return strings.Join(parts, " | ")
}
