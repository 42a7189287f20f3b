// Package placeholder resolves {token} placeholders in command templates
// against the values collected from the user.
//
// Tokens resolve first by input name, then by positional input id. A
// template that still contains any {token} after substitution fails as a
// whole; the command must not be executed with unresolved placeholders.
package placeholder

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/bpqx-io/bpqx/pkg/types"
)

var tokenRe = regexp.MustCompile(`\{[^{}]+\}`)

// Bindings maps placeholder keys to their textual values. Positional
// entries are keyed by the input id's decimal form, named entries by the
// input name; Bind sets both for a single input.
type Bindings map[string]string

// Bind records a collected value under the input's positional id and,
// when present, its name.
func (b Bindings) Bind(in types.Input, value string) {
	b[strconv.Itoa(in.ID)] = value
	if in.Name != "" {
		b[in.Name] = value
	}
}

// Has reports whether the input is already bound, by name or by id.
func (b Bindings) Has(in types.Input) bool {
	if in.Name != "" {
		if _, ok := b[in.Name]; ok {
			return true
		}
	}
	_, ok := b[strconv.Itoa(in.ID)]
	return ok
}

// Clone returns an independent copy of the bindings.
func (b Bindings) Clone() Bindings {
	c := make(Bindings, len(b))
	for k, v := range b {
		c[k] = v
	}
	return c
}

// UnresolvedError reports the tokens a template still contained after all
// known substitutions were applied.
type UnresolvedError struct {
	Tokens []string
}

func (e *UnresolvedError) Error() string {
	return fmt.Sprintf("unknown placeholder(s) in command: %s", strings.Join(e.Tokens, ", "))
}

// Substitute replaces every bound {token} in template and returns the
// resolved command string. If any {token} remains unresolved the whole
// operation fails with an UnresolvedError listing them.
func Substitute(template string, bindings Bindings) (string, error) {
	resolved := tokenRe.ReplaceAllStringFunc(template, func(match string) string {
		key := match[1 : len(match)-1]
		if value, ok := bindings[key]; ok {
			return value
		}
		return match
	})

	if unknown := tokenRe.FindAllString(resolved, -1); len(unknown) > 0 {
		return "", &UnresolvedError{Tokens: unknown}
	}
	return resolved, nil
}
