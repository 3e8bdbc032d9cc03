package html

import (
	"fmt"
	"sort"
	"strings"

	theme "github.com/goliatone/go-theme"
)

// StaticSelector resolves every request to a single manifest. Unknown variants
// fall back to the manifest's base tokens.
type StaticSelector struct {
	manifest *theme.Manifest
}

var _ theme.ThemeSelector = (*StaticSelector)(nil)

// NewStaticSelector validates the manifest against a go-theme registry and
// returns a selector serving it.
func NewStaticSelector(manifest *theme.Manifest) (*StaticSelector, error) {
	if manifest == nil {
		return nil, fmt.Errorf("html theme: manifest is nil")
	}
	registry := theme.NewRegistry()
	if err := registry.Register(manifest); err != nil {
		return nil, fmt.Errorf("html theme: register %q: %w", manifest.Name, err)
	}
	return &StaticSelector{manifest: manifest}, nil
}

func (s *StaticSelector) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	if name != "" && name != s.manifest.Name {
		return nil, fmt.Errorf("html theme: unknown theme %q", name)
	}
	return &theme.Selection{
		Theme:    s.manifest.Name,
		Variant:  variant,
		Manifest: s.manifest,
	}, nil
}

// SelectionTokens merges the manifest tokens with the selected variant's
// overrides.
func SelectionTokens(selection *theme.Selection) map[string]string {
	if selection == nil || selection.Manifest == nil {
		return nil
	}
	tokens := make(map[string]string, len(selection.Manifest.Tokens))
	for key, value := range selection.Manifest.Tokens {
		tokens[key] = value
	}
	if variant, ok := selection.Manifest.Variants[selection.Variant]; ok {
		for key, value := range variant.Tokens {
			tokens[key] = value
		}
	}
	return tokens
}

// CSSVars turns tokens into custom property declarations sorted by name.
// Tokens whose key or value could break out of the declaration are dropped.
func CSSVars(tokens map[string]string) string {
	if len(tokens) == 0 {
		return ""
	}
	keys := make([]string, 0, len(tokens))
	for key := range tokens {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, key := range keys {
		name, ok := cssVarName(key)
		if !ok {
			continue
		}
		value := strings.TrimSpace(tokens[key])
		if value == "" || strings.ContainsAny(value, ";{}<>\\\"'") {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(name)
		b.WriteString(": ")
		b.WriteString(value)
		b.WriteByte(';')
	}
	return b.String()
}

func cssVarName(key string) (string, bool) {
	key = strings.TrimPrefix(strings.TrimSpace(key), "--")
	if key == "" {
		return "", false
	}
	var b strings.Builder
	b.WriteString("--")
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r == '.':
			b.WriteByte('-')
		default:
			return "", false
		}
	}
	return b.String(), true
}
