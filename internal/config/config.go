// Package config loads the application settings and runtime options.
//
// The application root directory holds an appsettings document and an
// extensions/ subdirectory of extension documents. Settings may be written
// as YAML (appsettings.yml, appsettings.yaml) or JSON with comments
// (appsettings.json, appsettings.jsonc); when several are present they are
// merged in that order, later non-empty fields winning. Environment
// variables override flags: BPQX_DIR, BPQX_EXTENSIONS, BPQX_LOG_LEVEL,
// BPQX_NO_COLOR (and the conventional NO_COLOR).
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/bpqx-io/bpqx/pkg/types"
)

// settingsFiles are probed in order; later files override earlier ones.
var settingsFiles = []string{
	"appsettings.yml",
	"appsettings.yaml",
	"appsettings.json",
	"appsettings.jsonc",
}

// Options are the resolved runtime options for one invocation.
type Options struct {
	// Dir is the application root directory.
	Dir string
	// ExtensionsDir is where extension documents live.
	ExtensionsDir string
	// LogLevel is the textual log level (parsed by internal/logging).
	LogLevel string
	// NoColor disables color output entirely.
	NoColor bool
	// Watch enables reloading the registry when documents change.
	Watch bool
}

// Resolve applies environment overrides on top of flag-provided options
// and fills in defaults. The extensions directory defaults to
// <dir>/extensions.
func Resolve(opts Options) Options {
	if v := os.Getenv("BPQX_DIR"); v != "" {
		opts.Dir = v
	}
	if opts.Dir == "" {
		opts.Dir = "."
	}
	if v := os.Getenv("BPQX_EXTENSIONS"); v != "" {
		opts.ExtensionsDir = v
	}
	if opts.ExtensionsDir == "" {
		opts.ExtensionsDir = filepath.Join(opts.Dir, "extensions")
	}
	if v := os.Getenv("BPQX_LOG_LEVEL"); v != "" {
		opts.LogLevel = v
	}
	if os.Getenv("BPQX_NO_COLOR") != "" || os.Getenv("NO_COLOR") != "" {
		opts.NoColor = true
	}
	return opts
}

// LoadSettings reads the application settings from dir. Missing files are
// not an error; the zero AppSettings is a valid configuration.
func LoadSettings(fsys afero.Fs, dir string) (types.AppSettings, error) {
	var settings types.AppSettings

	for _, name := range settingsFiles {
		path := filepath.Join(dir, name)
		data, err := afero.ReadFile(fsys, path)
		if err != nil {
			continue // File doesn't exist, skip
		}

		var loaded types.AppSettings
		switch filepath.Ext(name) {
		case ".json", ".jsonc":
			data = jsonc.ToJSON(data)
			err = json.Unmarshal(data, &loaded)
		default:
			err = yaml.Unmarshal(data, &loaded)
		}
		if err != nil {
			return settings, err
		}
		merge(&settings, loaded)
	}

	return settings, nil
}

func merge(dst *types.AppSettings, src types.AppSettings) {
	if src.Help != "" {
		dst.Help = src.Help
	}
	if src.About != "" {
		dst.About = src.About
	}
}
