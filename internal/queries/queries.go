// Package queries prepares SQL text for execution: placeholder token
// substitution, SQL literal list rendering, and loading named batches
// from directories of .sql files.
package queries

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/vvka-141/pgfetch/pkg/pgfetch"
)

// Placeholder tokens with built-in support. Any other $TOKEN works via
// Params; these two get single-quoted date literals from DateRange.
const (
	TokenStartDate = "$START_DATE"
	TokenEndDate   = "$END_DATE"
)

// Params maps placeholder tokens (including the leading $) to their
// replacement text. Replacements are spliced verbatim, so quoting is
// the caller's responsibility; see ListPrep and DateRange.
type Params map[string]string

// Merge returns a copy of p with the entries of others layered on top.
func (p Params) Merge(others ...Params) Params {
	merged := make(Params, len(p))
	for token, repl := range p {
		merged[token] = repl
	}
	for _, other := range others {
		for token, repl := range other {
			merged[token] = repl
		}
	}
	return merged
}

// DateRange builds substitutions for the start and end date tokens,
// wrapping each value in single quotes so it reads as a SQL date literal.
func DateRange(start, end string) Params {
	p := make(Params, 2)
	if start != "" {
		p[TokenStartDate] = "'" + start + "'"
	}
	if end != "" {
		p[TokenEndDate] = "'" + end + "'"
	}
	return p
}

// Clean substitutes every placeholder token in the query text. Longer
// tokens are replaced first so $USER_IDS never collides with $USER_ID.
func Clean(query string, params Params) string {
	tokens := make([]string, 0, len(params))
	for token := range params {
		tokens = append(tokens, token)
	}
	sort.Slice(tokens, func(i, j int) bool {
		if len(tokens[i]) != len(tokens[j]) {
			return len(tokens[i]) > len(tokens[j])
		}
		return tokens[i] < tokens[j]
	})

	for _, token := range tokens {
		query = strings.ReplaceAll(query, token, params[token])
	}
	return query
}

// CleanFile reads a SQL file and substitutes placeholder tokens.
func CleanFile(path string, params Params) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read query file %s: %w", path, err)
	}
	return Clean(string(data), params), nil
}

// ListPrep renders values as a SQL IN-list body. Strings are single
// quoted, numbers rendered bare, and a plain string or number passes
// through unchanged.
func ListPrep(values any) string {
	switch v := values.(type) {
	case []string:
		quoted := make([]string, len(v))
		for i, s := range v {
			quoted[i] = "'" + s + "'"
		}
		return strings.Join(quoted, ",")
	case []int:
		parts := make([]string, len(v))
		for i, n := range v {
			parts[i] = strconv.Itoa(n)
		}
		return strings.Join(parts, ",")
	case []int64:
		parts := make([]string, len(v))
		for i, n := range v {
			parts[i] = strconv.FormatInt(n, 10)
		}
		return strings.Join(parts, ",")
	case []float64:
		parts := make([]string, len(v))
		for i, n := range v {
			parts[i] = strconv.FormatFloat(n, 'f', -1, 64)
		}
		return strings.Join(parts, ",")
	case []any:
		parts := make([]string, len(v))
		for i, item := range v {
			if s, ok := item.(string); ok {
				parts[i] = "'" + s + "'"
			} else {
				parts[i] = fmt.Sprint(item)
			}
		}
		return strings.Join(parts, ",")
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// LoadDir builds a batch from every .sql file in dir, named after the
// file without its extension. Files are added in lexical order so batch
// iteration order is deterministic. Each file's text is cleaned with the
// given params before it enters the batch.
func LoadDir(dir string, params Params) (*pgfetch.QueryBatch, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read query directory %s: %w", dir, err)
	}

	batch := pgfetch.NewQueryBatch()
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".sql") {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		query, err := CleanFile(path, params)
		if err != nil {
			return nil, err
		}

		name := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		batch.Add(name, query)
	}

	if batch.Len() == 0 {
		return nil, fmt.Errorf("no .sql files in %s: %w", dir, pgfetch.ErrNoQueries)
	}
	return batch, nil
}
