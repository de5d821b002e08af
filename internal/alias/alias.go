// Package alias generates and validates the URL aliases of jobs.
package alias

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// ErrAliasNumeric is returned for aliases that could be mistaken for an ID
	ErrAliasNumeric = errors.New("alias must not be numeric")
	// ErrAliasExists is returned when another job already uses the alias
	ErrAliasExists = errors.New("alias already exists")
)

// fallback is used when a headline contains nothing to build a slug from
const fallback = "job"

var numericAlias = regexp.MustCompile(`^[1-9]\d*$`)

// ligatures NFD cannot decompose
var replacer = strings.NewReplacer("ß", "ss", "æ", "ae", "Æ", "ae", "ø", "o", "Ø", "o", "œ", "oe", "Œ", "oe", "ł", "l", "Ł", "l")

// ExistsFunc reports whether alias is already taken
type ExistsFunc func(alias string) (bool, error)

// Slug turns s into a lowercase ASCII slug made of letters, digits and single dashes
func Slug(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	decomposed, _, err := transform.String(t, replacer.Replace(s))
	if err != nil {
		decomposed = s
	}

	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(decomposed) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// Generate builds a unique alias from headline. Taken or numeric slugs get
// a -1, -2, ... suffix until exists reports a free one.
func Generate(headline string, exists ExistsFunc) (string, error) {
	base := Slug(headline)
	if base == "" {
		base = fallback
	}

	candidate := base
	for i := 1; ; i++ {
		if !numericAlias.MatchString(candidate) {
			taken, err := exists(candidate)
			if err != nil {
				return "", fmt.Errorf("failed to check alias %q: %w", candidate, err)
			}
			if !taken {
				return candidate, nil
			}
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}

// Validate rejects numeric aliases and aliases already in use
func Validate(alias string, exists ExistsFunc) error {
	if numericAlias.MatchString(alias) {
		return fmt.Errorf("%w: %s", ErrAliasNumeric, alias)
	}
	taken, err := exists(alias)
	if err != nil {
		return fmt.Errorf("failed to check alias %q: %w", alias, err)
	}
	if taken {
		return fmt.Errorf("%w: %s", ErrAliasExists, alias)
	}
	return nil
}

// Resolve generates an alias from headline when value is empty and
// validates value otherwise
func Resolve(value, headline string, exists ExistsFunc) (string, error) {
	if value == "" {
		return Generate(headline, exists)
	}
	if err := Validate(value, exists); err != nil {
		return "", err
	}
	return value, nil
}
