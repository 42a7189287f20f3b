package registry

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/bpqx-io/bpqx/pkg/types"
)

// MatchKind classifies a lookup result.
type MatchKind int

const (
	// Found means exactly one extension matched.
	Found MatchKind = iota
	// Ambiguous means the query prefixes two or more names.
	Ambiguous
	// NotFound means nothing matched.
	NotFound
)

// Match is the total result of a lookup: exactly one of the three kinds,
// with Candidates populated for Ambiguous and Suggestions for NotFound.
type Match struct {
	Kind        MatchKind
	Extension   *types.Extension
	Candidates  []string
	Suggestions []string
}

// Lookup resolves a user-typed extension name. Matching is
// case-insensitive; an exact full-name match always wins outright, even
// when other names share the query as a prefix. Otherwise a query that is
// a prefix of exactly one name resolves to it, of several names is
// Ambiguous with the candidates sorted, and of none is NotFound with
// near-miss suggestions.
func (r *Registry) Lookup(query string) Match {
	q := strings.ToLower(strings.TrimSpace(query))

	r.mu.RLock()
	defer r.mu.RUnlock()

	if ext, ok := r.extensions[q]; ok {
		return Match{Kind: Found, Extension: ext}
	}

	var prefixed []*types.Extension
	if q != "" {
		for key, ext := range r.extensions {
			if strings.HasPrefix(key, q) {
				prefixed = append(prefixed, ext)
			}
		}
	}

	switch len(prefixed) {
	case 0:
		return Match{Kind: NotFound, Suggestions: r.suggest(q)}
	case 1:
		return Match{Kind: Found, Extension: prefixed[0]}
	default:
		names := make([]string, len(prefixed))
		for i, ext := range prefixed {
			names[i] = ext.Name
		}
		sort.Slice(names, func(a, b int) bool {
			return strings.ToLower(names[a]) < strings.ToLower(names[b])
		})
		return Match{Kind: Ambiguous, Candidates: names}
	}
}

// suggest ranks loaded names by edit distance from the query and returns
// the nearest few. Callers hold at least a read lock.
func (r *Registry) suggest(query string) []string {
	if query == "" {
		return nil
	}

	type ranked struct {
		name     string
		distance int
	}
	var near []ranked
	for key, ext := range r.extensions {
		d := levenshtein.ComputeDistance(query, key)
		if d <= 2 || d*2 <= len(key) {
			near = append(near, ranked{name: ext.Name, distance: d})
		}
	}
	sort.Slice(near, func(a, b int) bool {
		if near[a].distance != near[b].distance {
			return near[a].distance < near[b].distance
		}
		return near[a].name < near[b].name
	})

	if len(near) > maxSuggestions {
		near = near[:maxSuggestions]
	}
	names := make([]string, len(near))
	for i, n := range near {
		names[i] = n.name
	}
	return names
}
