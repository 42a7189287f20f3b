// Package session drives one interactive menu session over a line
// transport: the main-menu state machine, per-extension menu navigation,
// and sequential collection of typed inputs for terminal IO actions.
//
// The session is strictly single-threaded: it reads one line, fully
// processes it, prints results, and blocks for the next line. Navigation
// state is owned exclusively by the session's control loop.
package session

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"unicode"

	"github.com/oklog/ulid/v2"

	"github.com/bpqx-io/bpqx/internal/event"
	"github.com/bpqx-io/bpqx/internal/logging"
	"github.com/bpqx-io/bpqx/internal/registry"
	"github.com/bpqx-io/bpqx/pkg/types"
)

const appName = "BPQX"

// Default texts shown when an extension or menu defines none.
const (
	noHelpText  = "No help available."
	noAboutText = "No about information available."
)

// errExit signals an explicit X/Exit from any depth. It unwinds the whole
// session immediately; Run converts it into a normal return.
var errExit = errors.New("session exit")

// CommandRunner is the narrow contract the session requires from the
// execution collaborator: run a fully-resolved command string through a
// command interpreter and return its standard output.
type CommandRunner interface {
	Run(ctx context.Context, command string) (string, error)
}

// Config assembles a session's collaborators.
type Config struct {
	Registry *registry.Registry
	Settings types.AppSettings
	Runner   CommandRunner
	// Input and Output default to stdin and stdout.
	Input  io.Reader
	Output io.Writer
	// NoColor strips color codes from all output.
	NoColor bool
}

// Session is one interactive run of the menu loop.
type Session struct {
	id       string
	reg      *registry.Registry
	settings types.AppSettings
	runner   CommandRunner
	in       *bufio.Reader
	render   *Renderer
}

// New creates a session from the given configuration.
func New(cfg Config) *Session {
	if cfg.Input == nil {
		cfg.Input = os.Stdin
	}
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}
	return &Session{
		id:       ulid.Make().String(),
		reg:      cfg.Registry,
		settings: cfg.Settings,
		runner:   cfg.Runner,
		in:       bufio.NewReader(cfg.Input),
		render:   NewRenderer(cfg.Output, cfg.NoColor),
	}
}

// ID returns the session's identifier.
func (s *Session) ID() string {
	return s.id
}

// Run executes the main-menu loop until the user exits or the input
// stream ends. A transport failure is the only error it returns.
func (s *Session) Run(ctx context.Context) error {
	event.PublishSync(event.Event{
		Type: event.SessionStarted,
		Data: event.SessionStartedData{SessionID: s.id, Extensions: s.reg.Len()},
	})
	defer event.PublishSync(event.Event{
		Type: event.SessionEnded,
		Data: event.SessionEndedData{SessionID: s.id},
	})

	logging.Debug().Str("session", s.id).Msg("session started")

	for {
		s.render.Banner(appName)
		s.render.SelectExtension(s.reg.Names())

		line, err := s.readLine("> ")
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if line == "" {
			continue
		}

		if err := s.dispatchMain(ctx, line); err != nil {
			if errors.Is(err, errExit) {
				return nil
			}
			return err
		}
	}
}

// dispatchMain resolves one main-menu line: global commands first, then
// registry lookup.
func (s *Session) dispatchMain(ctx context.Context, line string) error {
	switch strings.ToLower(line) {
	case "x", "exit":
		return errExit
	case "b", "back":
		return nil // already at the root
	case "h", "help":
		s.render.Text(s.settings.Help, noHelpText)
		return nil
	case "a", "about":
		s.render.Text(s.settings.About, noAboutText)
		return nil
	}

	if base, arg, ok := splitCommand(line); ok {
		switch base {
		case "h", "help":
			s.showExtensionText(arg, func(ext *types.Extension) (string, string) {
				return ext.Help, noHelpText
			})
			return nil
		case "a", "about":
			s.showExtensionText(arg, func(ext *types.Extension) (string, string) {
				return ext.About, noAboutText
			})
			return nil
		}
	}

	match := s.reg.Lookup(line)
	switch match.Kind {
	case registry.Found:
		return s.runExtension(ctx, match.Extension)
	case registry.Ambiguous:
		s.render.Options(match.Candidates)
	default:
		s.render.Errorf("unknown extension: %s", line)
		s.render.Suggestions(match.Suggestions)
	}
	return nil
}

// showExtensionText resolves an extension name like selection does and
// prints one of its texts without entering it.
func (s *Session) showExtensionText(arg string, pick func(*types.Extension) (text, fallback string)) {
	match := s.reg.Lookup(arg)
	switch match.Kind {
	case registry.Found:
		s.render.Text(pick(match.Extension))
	case registry.Ambiguous:
		s.render.Options(match.Candidates)
	default:
		s.render.Errorf("unknown extension: %s", arg)
	}
}

// splitCommand splits a line at its first whitespace run into a lowercased
// leading token and the rest; ok is false for single-token lines.
func splitCommand(line string) (base, arg string, ok bool) {
	i := strings.IndexFunc(line, unicode.IsSpace)
	if i < 0 {
		return "", "", false
	}
	arg = strings.TrimSpace(line[i:])
	if arg == "" {
		return "", "", false
	}
	return strings.ToLower(line[:i]), arg, true
}

// readLine prints a prompt and reads one trimmed line.
func (s *Session) readLine(prompt string) (string, error) {
	s.render.Prompt(prompt)
	line, err := s.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && strings.TrimSpace(line) != "" {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}
