package shell

import (
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// Fields splits a user input line into shell-style words: quotes group
// and are removed, backslash escapes resolve, but nothing is expanded.
// An answer like "$100" is data, not a parameter reference, and stays
// verbatim. Lines the parser rejects (for example an unterminated quote)
// fall back to plain whitespace splitting rather than failing the prompt.
func Fields(line string) []string {
	var words []string
	err := syntax.NewParser().Words(strings.NewReader(line), func(w *syntax.Word) bool {
		words = append(words, wordText(line, w))
		return true
	})
	if err != nil {
		return strings.Fields(line)
	}
	return words
}

// wordText renders one word as the user typed it, minus the quoting.
func wordText(line string, w *syntax.Word) string {
	var sb strings.Builder
	for _, part := range w.Parts {
		appendPart(&sb, line, part, false)
	}
	return sb.String()
}

func appendPart(sb *strings.Builder, line string, part syntax.WordPart, quoted bool) {
	switch p := part.(type) {
	case *syntax.Lit:
		sb.WriteString(unescape(p.Value, quoted))
	case *syntax.SglQuoted:
		sb.WriteString(p.Value)
	case *syntax.DblQuoted:
		for _, inner := range p.Parts {
			appendPart(sb, line, inner, true)
		}
	default:
		// $-syntax (parameters, substitutions, arithmetic) is user data
		// here; keep its source text untouched.
		sb.WriteString(line[part.Pos().Offset():part.End().Offset()])
	}
}

// unescape resolves backslash escapes the way the lexer saw them: any
// escaped character is literal when unquoted, while inside double quotes
// the backslash only escapes the few characters the shell lets it.
func unescape(s string, quoted bool) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\\' && i+1 < len(s) {
			next := s[i+1]
			if !quoted || next == '$' || next == '"' || next == '\\' || next == '`' {
				sb.WriteByte(next)
				i++
				continue
			}
		}
		sb.WriteByte(c)
	}
	return sb.String()
}
