package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// RequireQueriesDir validates that exactly one queries_dir argument is provided.
// Returns a helpful error message with usage and examples if missing or too many.
func RequireQueriesDir(cmd *cobra.Command, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf(`missing required argument: <queries_dir>

Usage: %s <queries_dir>

Example:
  %s ./queries --limit 1000`, cmd.UseLine(), cmd.CommandPath())
	}
	if len(args) > 1 {
		return fmt.Errorf("accepts 1 arg(s), received %d", len(args))
	}
	return nil
}

// parseParamFlags converts repeated --param TOKEN=VALUE flags into a
// substitution map. Tokens get a leading $ if not already present.
func parseParamFlags(raw []string) (map[string]string, error) {
	params := make(map[string]string, len(raw))
	for _, pair := range raw {
		token, value, ok := cutParam(pair)
		if !ok {
			return nil, fmt.Errorf("invalid --param %q: expected TOKEN=VALUE", pair)
		}
		params[token] = value
	}
	return params, nil
}

func cutParam(pair string) (token, value string, ok bool) {
	for i := 0; i < len(pair); i++ {
		if pair[i] == '=' {
			token = pair[:i]
			value = pair[i+1:]
			if token == "" {
				return "", "", false
			}
			if token[0] != '$' {
				token = "$" + token
			}
			return token, value, true
		}
	}
	return "", "", false
}
