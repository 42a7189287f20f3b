package session

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bpqx-io/bpqx/internal/registry"
	"github.com/bpqx-io/bpqx/pkg/types"
)

const rpbookDoc = `
name: RPBOOK
description: Repeater book lookup
help: Query the repeater book by callsign or area
about: Repeater data for packet nodes
program:
  start_msg: Connected to RPBOOK
  menu:
    prompt: Select
    items:
      - id: 1
        key: "S {search}"
        text: Search
        help: Search repeaters by callsign
        io:
          help: Enter a callsign or area
          command: "rpbook-search {search}"
          prompts:
            - id: 1
              prompt: Search term
              inputs:
                - id: 1
                  type: string
                  required: true
                  name: search
      - id: 2
        key: L
        text: List
        help: List all repeaters
        io:
          command: "rpbook-list"
      - id: 3
        key: M
        text: More
        help: Extra functions
        menu:
          prompt: More
          help: The extra functions submenu
          items:
            - id: 1
              key: D
              text: Detail
              help: Show repeater detail
              io:
                command: "rpbook-detail"
`

const wxDoc = `
name: WX
description: Weather reports
program:
  start_msg: WX online
  menu:
    prompt: Select
    items:
      - id: 1
        key: R
        text: Report
        help: Current report
        io:
          command: "wx-report"
`

const calcDoc = `
name: CALC
description: Typed input checks
program:
  menu:
    prompt: Select
    items:
      - id: 1
        key: N
        text: Number
        help: Takes an integer
        io:
          command: "calc {1}"
          prompts:
            - prompt: Value
              inputs:
                - id: 1
                  type: int
                  required: true
      - id: 2
        key: F
        text: Flag
        help: Takes a boolean
        io:
          command: "flag {1}"
          prompts:
            - prompt: Flag
              inputs:
                - id: 1
                  type: bool
                  required: true
      - id: 3
        key: G
        text: Grep
        help: Optional pattern
        io:
          command: "grep {1} file"
          prompts:
            - prompt: Pattern
              inputs:
                - id: 1
                  type: string
      - id: 4
        key: P
        text: Pair
        help: Takes two values
        io:
          command: "pair {1} {2}"
          prompts:
            - prompt: Values
              inputs:
                - id: 1
                  type: string
                  required: true
                - id: 2
                  type: string
                  required: true
      - id: 5
        key: U
        text: Unbound
        help: Bad command template
        io:
          command: "cmd {2}"
          prompts:
            - prompt: Value
              inputs:
                - id: 1
                  type: string
                  required: true
`

type fakeRunner struct {
	commands []string
	output   string
	err      error
}

func (f *fakeRunner) Run(_ context.Context, command string) (string, error) {
	f.commands = append(f.commands, command)
	return f.output, f.err
}

func buildRegistry(t *testing.T, docs ...string) *registry.Registry {
	t.Helper()
	fsys := afero.NewMemMapFs()
	for i, doc := range docs {
		file := "extensions/" + string(rune('a'+i)) + ".yml"
		require.NoError(t, afero.WriteFile(fsys, file, []byte(doc), 0o644))
	}
	reg := registry.NewWithFs(fsys, "extensions")
	require.NoError(t, reg.Load())
	return reg
}

func runScript(t *testing.T, reg *registry.Registry, runner CommandRunner, lines ...string) string {
	t.Helper()
	script := ""
	if len(lines) > 0 {
		script = strings.Join(lines, "\n") + "\n"
	}
	var out bytes.Buffer
	sess := New(Config{
		Registry: reg,
		Settings: types.AppSettings{Help: "App help text", About: "App about text"},
		Runner:   runner,
		Input:    strings.NewReader(script),
		Output:   &out,
		NoColor:  true,
	})
	require.NoError(t, sess.Run(context.Background()))
	return out.String()
}

func TestRun_BannerAndExit(t *testing.T) {
	reg := buildRegistry(t, rpbookDoc, wxDoc)
	runner := &fakeRunner{}

	out := runScript(t, reg, runner, "x")
	assert.Contains(t, out, "- BPQX -")
	assert.Contains(t, out, "[A]About [H]Help [B]Back [X]Exit")
	assert.Contains(t, out, "Select Extension: RPBOOK, WX")
	assert.Empty(t, runner.commands)
}

func TestRun_EOFEndsSession(t *testing.T) {
	reg := buildRegistry(t, wxDoc)
	out := runScript(t, reg, &fakeRunner{})
	assert.Contains(t, out, "Select Extension: WX")
}

func TestRun_AppHelpAndAbout(t *testing.T) {
	reg := buildRegistry(t, wxDoc)

	out := runScript(t, reg, &fakeRunner{}, "h", "about", "x")
	assert.Contains(t, out, "App help text")
	assert.Contains(t, out, "App about text")
}

func TestRun_BackAtMainMenuIsNoop(t *testing.T) {
	reg := buildRegistry(t, wxDoc)

	out := runScript(t, reg, &fakeRunner{}, "b", "x")
	assert.Equal(t, 2, strings.Count(out, "Select Extension:"))
}

func TestRun_UnknownExtension(t *testing.T) {
	reg := buildRegistry(t, rpbookDoc, wxDoc)

	out := runScript(t, reg, &fakeRunner{}, "rpbok", "x")
	assert.Contains(t, out, "Error: unknown extension: rpbok")
	assert.Contains(t, out, "Did you mean: RPBOOK")
}

func TestRun_ExtensionHelpWithoutEntering(t *testing.T) {
	reg := buildRegistry(t, rpbookDoc)
	runner := &fakeRunner{}

	out := runScript(t, reg, runner, "h rpbook", "a rpbook", "x")
	assert.Contains(t, out, "Query the repeater book by callsign or area")
	assert.Contains(t, out, "Repeater data for packet nodes")
	assert.NotContains(t, out, "Connected to RPBOOK")
}

func TestRun_ScopedHelpSplitsOnAnyWhitespace(t *testing.T) {
	reg := buildRegistry(t, rpbookDoc)
	runner := &fakeRunner{}

	out := runScript(t, reg, runner, "h\trpbook", "x")
	assert.Contains(t, out, "Query the repeater book by callsign or area")
	assert.NotContains(t, out, "Error:")
}

func TestExtension_EnterByPrefixAndExecute(t *testing.T) {
	reg := buildRegistry(t, rpbookDoc, wxDoc)
	runner := &fakeRunner{output: "W1AW/R 146.520\n"}

	out := runScript(t, reg, runner, "rp", "l", "x")
	assert.Contains(t, out, "Connected to RPBOOK")
	assert.Contains(t, out, "Select: [S]Search (search) [L]List [M]More")
	assert.Contains(t, out, "W1AW/R 146.520")
	assert.Equal(t, []string{"rpbook-list"}, runner.commands)
}

func TestExtension_SelectItemByTextPrefix(t *testing.T) {
	reg := buildRegistry(t, rpbookDoc)
	runner := &fakeRunner{}

	runScript(t, reg, runner, "rpbook", "sea", "W1AW", "x")
	assert.Equal(t, []string{"rpbook-search W1AW"}, runner.commands)
}

func TestExtension_RequiredInputRejectsBlank(t *testing.T) {
	reg := buildRegistry(t, rpbookDoc)
	runner := &fakeRunner{}

	out := runScript(t, reg, runner, "rpbook", "s", "", "W1AW", "x")
	assert.Contains(t, out, "Error: input is required")
	assert.Equal(t, []string{"rpbook-search W1AW"}, runner.commands)
}

func TestExtension_DollarAnswerKeptVerbatim(t *testing.T) {
	reg := buildRegistry(t, rpbookDoc)
	runner := &fakeRunner{}

	out := runScript(t, reg, runner, "rpbook", "s", "$100", "x")
	assert.NotContains(t, out, "Error:")
	assert.Equal(t, []string{"rpbook-search $100"}, runner.commands)
}

func TestExtension_PromptHelpDoesNotConsumeAnswer(t *testing.T) {
	reg := buildRegistry(t, rpbookDoc)
	runner := &fakeRunner{}

	out := runScript(t, reg, runner, "rpbook", "s", "h", "W1AW", "x")
	assert.Contains(t, out, "Enter a callsign or area")
	assert.Equal(t, []string{"rpbook-search W1AW"}, runner.commands)
}

func TestExtension_InlineParameterSkipsPrompt(t *testing.T) {
	reg := buildRegistry(t, rpbookDoc)
	runner := &fakeRunner{}

	out := runScript(t, reg, runner, "rpbook", "s W1AW", "x")
	assert.NotContains(t, out, "Search term:")
	assert.Equal(t, []string{"rpbook-search W1AW"}, runner.commands)
}

func TestExtension_InlineParameterTabSeparated(t *testing.T) {
	reg := buildRegistry(t, rpbookDoc)
	runner := &fakeRunner{}

	runScript(t, reg, runner, "rpbook", "s\tW1AW", "x")
	assert.Equal(t, []string{"rpbook-search W1AW"}, runner.commands)
}

func TestExtension_InlineParameterQuoted(t *testing.T) {
	reg := buildRegistry(t, rpbookDoc)
	runner := &fakeRunner{}

	runScript(t, reg, runner, "rpbook", `s "New York"`, "x")
	assert.Equal(t, []string{"rpbook-search New York"}, runner.commands)
}

func TestExtension_SubmenuNavigation(t *testing.T) {
	reg := buildRegistry(t, rpbookDoc, wxDoc)
	runner := &fakeRunner{}

	out := runScript(t, reg, runner, "rpbook", "m", "d", "b", "b", "wx", "x")
	assert.Contains(t, out, "More: [D]Detail")
	assert.Contains(t, out, "WX online")
	assert.Equal(t, []string{"rpbook-detail"}, runner.commands)
}

func TestExtension_ScopedHelp(t *testing.T) {
	reg := buildRegistry(t, rpbookDoc)

	out := runScript(t, reg, &fakeRunner{}, "rpbook", "h", "h l", "m", "h", "x")
	// Extension help at the root, item help on request, submenu help inside.
	assert.Contains(t, out, "Query the repeater book by callsign or area")
	assert.Contains(t, out, "List all repeaters")
	assert.Contains(t, out, "The extra functions submenu")
}

func TestExtension_UnknownOption(t *testing.T) {
	reg := buildRegistry(t, rpbookDoc)

	out := runScript(t, reg, &fakeRunner{}, "rpbook", "zz", "x")
	assert.Contains(t, out, "Error: unknown option: zz")
}

func TestExtension_IntValidation(t *testing.T) {
	reg := buildRegistry(t, calcDoc)
	runner := &fakeRunner{}

	out := runScript(t, reg, runner, "calc", "n", "abc", "42", "x")
	assert.Contains(t, out, "Error: input 1 must be an integer")
	assert.Equal(t, []string{"calc 42"}, runner.commands)
}

func TestExtension_BoolValidation(t *testing.T) {
	reg := buildRegistry(t, calcDoc)
	runner := &fakeRunner{}

	out := runScript(t, reg, runner, "calc", "f", "yes", "TRUE", "x")
	assert.Contains(t, out, "Error: input 1 must be true or false")
	assert.Equal(t, []string{"flag TRUE"}, runner.commands)
}

func TestExtension_OptionalInputAcceptsBlank(t *testing.T) {
	reg := buildRegistry(t, calcDoc)
	runner := &fakeRunner{}

	runScript(t, reg, runner, "calc", "g", "", "x")
	assert.Equal(t, []string{"grep  file"}, runner.commands)
}

func TestExtension_ArityMismatch(t *testing.T) {
	reg := buildRegistry(t, calcDoc)
	runner := &fakeRunner{}

	out := runScript(t, reg, runner, "calc", "p", "one", "one two", "x")
	assert.Contains(t, out, "Error: expected 2 input(s), got 1")
	assert.Equal(t, []string{"pair one two"}, runner.commands)
}

func TestExtension_UnresolvedPlaceholderNotExecuted(t *testing.T) {
	reg := buildRegistry(t, calcDoc)
	runner := &fakeRunner{}

	out := runScript(t, reg, runner, "calc", "u", "value", "x")
	assert.Contains(t, out, "Error: unknown placeholder(s) in command: {2}")
	assert.Empty(t, runner.commands)
}

func TestExtension_RunnerFailureIsNotFatal(t *testing.T) {
	reg := buildRegistry(t, wxDoc)
	runner := &fakeRunner{err: errors.New("interpreter not found")}

	out := runScript(t, reg, runner, "wx", "r", "x")
	assert.Contains(t, out, "Error: running command: interpreter not found")
	// The session survives the failure and renders the menu again.
	assert.GreaterOrEqual(t, strings.Count(out, "Select: [R]Report"), 2)
}
