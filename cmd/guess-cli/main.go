// Command guess-cli plays the number-guessing game in a terminal.
//
// It runs the same credential gate, round and hint provider as the HTTP
// server, in-process. The key comes from GEMINI_API_KEY or a prompt and is
// never written anywhere.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/gemini-guess/internal/game"
	"github.com/robalobadob/gemini-guess/internal/hint"
	"github.com/robalobadob/gemini-guess/internal/session"
)

func main() {
	_ = godotenv.Load()
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.WarnLevel)
	if lvl, err := zerolog.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil && lvl != zerolog.NoLevel {
		zerolog.SetGlobalLevel(lvl)
	}

	gen := hint.NewGemini(os.Getenv("GEMINI_MODEL"))
	sess := session.New("cli",
		func(ctx context.Context, key string) bool { return hint.TestCredential(ctx, gen, key) },
		func(key string) game.Hinter { return hint.NewProvider(gen, key) },
	)

	if err := run(context.Background(), sess, os.Getenv("GEMINI_API_KEY"), os.Stdin, os.Stdout); err != nil {
		log.Fatal().Err(err).Msg("guess-cli")
	}
}

// run drives one terminal session: unlock, then play rounds until quit or EOF.
func run(ctx context.Context, sess *session.Session, envKey string, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	readLine := func(prompt string) (string, bool) {
		fmt.Fprint(out, prompt)
		if !scanner.Scan() {
			return "", false
		}
		return strings.TrimSpace(scanner.Text()), true
	}

	key := envKey
	for {
		if key == "" {
			var ok bool
			if key, ok = readLine("Gemini API key: "); !ok {
				return scanner.Err()
			}
			if key == "quit" {
				return nil
			}
		}
		fmt.Fprintln(out, "Checking key...")
		err := sess.Unlock(ctx, key)
		if err == nil {
			break
		}
		switch {
		case errors.Is(err, session.ErrEmptyCredential):
			fmt.Fprintln(out, "Please enter an API key.")
		case errors.Is(err, session.ErrCredentialRejected):
			fmt.Fprintln(out, "The API key is invalid or the connection failed. Try again.")
		default:
			return err
		}
		key = ""
	}

	round, err := sess.Round()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "I'm thinking of a number between %d and %d. Type quit to leave.\n", game.MinGuess, game.MaxGuess)

	for {
		line, ok := readLine("> ")
		if !ok {
			return scanner.Err()
		}
		if line == "quit" {
			return nil
		}

		if round.Phase() == game.PhaseWon {
			if strings.EqualFold(line, "y") || strings.EqualFold(line, "yes") {
				round.Start()
				fmt.Fprintln(out, "New round. Guess away!")
			} else {
				fmt.Fprintln(out, "Type y for a new round or quit to leave.")
			}
			continue
		}

		fmt.Fprintln(out, "Thinking...")
		entry, err := round.SubmitGuess(ctx, line)
		switch {
		case errors.Is(err, game.ErrInvalidGuess):
			fmt.Fprintf(out, "Enter a whole number between %d and %d.\n", game.MinGuess, game.MaxGuess)
			continue
		case err != nil:
			return err
		}
		fmt.Fprintln(out, entry.Hint)

		if secret, won := round.Secret(); won {
			fmt.Fprintf(out, "You got it! The number was %d, found in %d guesses. Play again? (y/quit)\n",
				secret, len(round.History()))
		}
	}
}
