package session

import (
	"context"
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/bpqx-io/bpqx/internal/event"
	"github.com/bpqx-io/bpqx/internal/logging"
	"github.com/bpqx-io/bpqx/internal/placeholder"
	"github.com/bpqx-io/bpqx/internal/shell"
	"github.com/bpqx-io/bpqx/pkg/types"
)

// runIO executes one terminal action: collects and validates every prompt's
// inputs in order, builds the command from its template, runs it, and
// prints the command's standard output. All validation failures re-prompt
// without advancing; nothing here is fatal to the session.
func (s *Session) runIO(ctx context.Context, ext *types.Extension, ioBlock *types.IO, pre placeholder.Bindings) error {
	bindings := pre.Clone()

	for i := range ioBlock.Prompts {
		p := &ioBlock.Prompts[i]
		if len(p.Inputs) > 0 && allBound(p.Inputs, bindings) {
			continue
		}
		if err := s.collectPrompt(p, ioBlock.Help, bindings); err != nil {
			return err
		}
	}

	command, err := placeholder.Substitute(ioBlock.Command, bindings)
	if err != nil {
		s.render.Errorf("%v", err)
		return nil
	}

	output, err := s.runner.Run(ctx, command)
	if err != nil {
		s.render.Errorf("running command: %v", err)
		return nil
	}

	event.PublishSync(event.Event{
		Type: event.CommandExecuted,
		Data: event.CommandExecutedData{SessionID: s.id, Extension: ext.Name, Command: command},
	})
	logging.Debug().Str("session", s.id).Str("command", command).Msg("command executed")

	if output != "" {
		s.render.Output(output)
	}
	return nil
}

// collectPrompt loops on one prompt until its inputs validate. H/Help shows
// the IO block's help text and re-prompts without consuming the line as
// data.
func (s *Session) collectPrompt(p *types.Prompt, helpText string, bindings placeholder.Bindings) error {
	for {
		line, err := s.readLine(p.Prompt + ": ")
		if err != nil {
			if errors.Is(err, io.EOF) {
				return errExit
			}
			return err
		}

		switch strings.ToLower(line) {
		case "h", "help":
			s.render.Text(helpText, noHelpText)
			continue
		}

		if len(p.Inputs) == 0 {
			return nil
		}

		var values []string
		if line != "" {
			values = shell.Fields(line)
		}

		if len(values) != len(p.Inputs) {
			if len(values) == 0 {
				if !anyRequired(p.Inputs) {
					// A blank line is a valid answer when every input
					// is optional.
					for _, in := range p.Inputs {
						bindings.Bind(in, "")
					}
					return nil
				}
				s.render.Errorf("input is required")
			} else {
				s.render.Errorf("expected %d input(s), got %d", len(p.Inputs), len(values))
			}
			continue
		}

		if !s.validateValues(p.Inputs, values) {
			continue
		}

		for i, in := range p.Inputs {
			bindings.Bind(in, values[i])
		}
		return nil
	}
}

// validateValues type-checks one value per input, reporting every failure
// before re-prompting.
func (s *Session) validateValues(inputs []types.Input, values []string) bool {
	valid := true
	for i, in := range inputs {
		value := values[i]
		if in.Required && value == "" {
			s.render.Errorf("input %d is required", in.ID)
			valid = false
			continue
		}
		switch in.Type {
		case types.InputInt:
			if _, err := strconv.Atoi(value); err != nil {
				s.render.Errorf("input %d must be an integer", in.ID)
				valid = false
			}
		case types.InputBool:
			switch strings.ToLower(value) {
			case "true", "false":
			default:
				s.render.Errorf("input %d must be true or false", in.ID)
				valid = false
			}
		}
	}
	return valid
}

func allBound(inputs []types.Input, bindings placeholder.Bindings) bool {
	for _, in := range inputs {
		if !bindings.Has(in) {
			return false
		}
	}
	return true
}

func anyRequired(inputs []types.Input) bool {
	for _, in := range inputs {
		if in.Required {
			return true
		}
	}
	return false
}
