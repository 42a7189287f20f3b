// Package registry loads extension documents, retains the valid ones, and
// answers case-insensitive name and prefix lookups.
//
// Every document is validated independently: an invalid document is
// recorded and skipped, never aborting the batch. The registry is built
// once at startup and read by the single session loop; the lock only
// matters when the optional watcher rebuilds it between interactions.
package registry

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/bpqx-io/bpqx/internal/event"
	"github.com/bpqx-io/bpqx/internal/logging"
	"github.com/bpqx-io/bpqx/internal/schema"
	"github.com/bpqx-io/bpqx/pkg/types"
)

// documentGlob matches the extension document filenames within the
// extensions directory.
const documentGlob = "*.{yml,yaml}"

// maxSuggestions bounds the "did you mean" list on failed lookups.
const maxSuggestions = 3

// LoadFailure records why one document was rejected.
type LoadFailure struct {
	File   string
	Errors []schema.ValidationError
	Err    error // decode failure, when the document never reached validation
}

// Messages flattens the failure into printable one-liners.
func (f LoadFailure) Messages() []string {
	if f.Err != nil {
		return []string{fmt.Sprintf("%s: %v", f.File, f.Err)}
	}
	msgs := make([]string, 0, len(f.Errors))
	for _, e := range f.Errors {
		msgs = append(msgs, fmt.Sprintf("%s: %s", f.File, e.Error()))
	}
	return msgs
}

// Registry holds the loaded extensions indexed by lowercased name.
type Registry struct {
	fs  afero.Fs
	dir string

	mu         sync.RWMutex
	extensions map[string]*types.Extension
	failures   []LoadFailure
}

// New creates a registry over the OS filesystem.
func New(dir string) *Registry {
	return NewWithFs(afero.NewOsFs(), dir)
}

// NewWithFs creates a registry over an arbitrary filesystem; tests use an
// in-memory one.
func NewWithFs(fsys afero.Fs, dir string) *Registry {
	return &Registry{
		fs:         fsys,
		dir:        dir,
		extensions: make(map[string]*types.Extension),
	}
}

// Dir returns the extensions directory the registry reads from.
func (r *Registry) Dir() string {
	return r.dir
}

// Load reads every extension document, validates each independently, and
// atomically swaps in the result. Rejected documents are recorded as
// failures and published as events; only the directory being unreadable is
// an error.
func (r *Registry) Load() error {
	iofs := afero.NewIOFS(afero.NewBasePathFs(r.fs, r.dir))
	names, err := doublestar.Glob(iofs, documentGlob)
	if err != nil {
		return fmt.Errorf("reading extensions directory %s: %w", r.dir, err)
	}
	sort.Strings(names)

	extensions := make(map[string]*types.Extension, len(names))
	var failures []LoadFailure

	reject := func(f LoadFailure) {
		failures = append(failures, f)
		event.PublishSync(event.Event{
			Type: event.DocumentRejected,
			Data: event.DocumentRejectedData{File: f.File, Errors: f.Messages()},
		})
	}

	for _, name := range names {
		file := filepath.Join(r.dir, name)
		data, err := afero.ReadFile(r.fs, file)
		if err != nil {
			reject(LoadFailure{File: file, Err: err})
			continue
		}

		var doc map[string]any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			reject(LoadFailure{File: file, Err: err})
			continue
		}
		if doc == nil {
			reject(LoadFailure{File: file, Err: fmt.Errorf("file must contain a mapping")})
			continue
		}

		ext, errs := schema.Validate(doc)
		if len(errs) > 0 {
			reject(LoadFailure{File: file, Errors: errs})
			continue
		}

		key := strings.ToLower(ext.Name)
		if prev, dup := extensions[key]; dup {
			reject(LoadFailure{File: file, Errors: []schema.ValidationError{{
				Path:    "name",
				Message: fmt.Sprintf("duplicate extension name %q (already loaded from %s)", ext.Name, prev.File),
			}}})
			continue
		}

		ext.File = file
		extensions[key] = ext
	}

	r.mu.Lock()
	r.extensions = extensions
	r.failures = failures
	r.mu.Unlock()

	logging.Debug().
		Int("extensions", len(extensions)).
		Int("rejected", len(failures)).
		Str("dir", r.dir).
		Msg("registry loaded")
	return nil
}

// Len returns the number of loaded extensions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.extensions)
}

// Names returns the display names of all loaded extensions, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.extensions))
	for _, ext := range r.extensions {
		names = append(names, ext.Name)
	}
	sort.Strings(names)
	return names
}

// Extensions returns the loaded extensions sorted by name.
func (r *Registry) Extensions() []*types.Extension {
	r.mu.RLock()
	defer r.mu.RUnlock()

	exts := make([]*types.Extension, 0, len(r.extensions))
	for _, ext := range r.extensions {
		exts = append(exts, ext)
	}
	sort.Slice(exts, func(a, b int) bool {
		return strings.ToLower(exts[a].Name) < strings.ToLower(exts[b].Name)
	})
	return exts
}

// Failures returns the load failures from the most recent Load.
func (r *Registry) Failures() []LoadFailure {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.failures
}
