package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/fleezesd/krs/cmd/krs-chat/app/options"
	"github.com/fleezesd/krs/internal/krs-chat/llm"
)

const maxKeyAttempts = 3

var errNoAPIKey = errors.New("an Anthropic API key is required: set --llm.api-key or " + options.APIKeyEnv)

// ensureAPIKey makes sure opts carries a key the API accepts, prompting on a
// terminal when none is configured or the configured one is rejected.
func ensureAPIKey(ctx context.Context, opts *llm.Options, in *os.File, out io.Writer) error {
	interactive := term.IsTerminal(int(in.Fd()))

	for attempt := 1; ; attempt++ {
		if opts.APIKey == "" {
			if !interactive {
				return errNoAPIKey
			}
			key, err := promptKey(in, out)
			if err != nil {
				return err
			}
			if key == "" {
				fmt.Fprintln(out, "Anthropic API key cannot be empty. Please enter a valid key.")
				if attempt >= maxKeyAttempts {
					return errNoAPIKey
				}
				continue
			}
			opts.APIKey = key
		}

		if !opts.ValidateKey {
			return nil
		}
		err := llm.NewClient(opts).Ping(ctx)
		if err == nil {
			fmt.Fprintln(out, "Anthropic API key set successfully.")
			return nil
		}
		if !interactive || attempt >= maxKeyAttempts {
			return fmt.Errorf("invalid API key: %w", err)
		}
		fmt.Fprintf(out, "Invalid API key: %v. Please try again.\n", err)
		opts.APIKey = ""
	}
}

func promptKey(in *os.File, out io.Writer) (string, error) {
	fmt.Fprint(out, "Please enter your Anthropic API key: ")
	key, err := term.ReadPassword(int(in.Fd()))
	fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("read API key: %w", err)
	}
	return strings.TrimSpace(string(key)), nil
}
