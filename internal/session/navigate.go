package session

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/bpqx-io/bpqx/internal/event"
	"github.com/bpqx-io/bpqx/internal/placeholder"
	"github.com/bpqx-io/bpqx/internal/schema"
	"github.com/bpqx-io/bpqx/internal/shell"
	"github.com/bpqx-io/bpqx/pkg/types"
)

// runExtension drives the menu loop inside one extension. The menu stack
// starts at the extension's root menu; Back pops one level, and popping
// past the root returns to the main menu.
func (s *Session) runExtension(ctx context.Context, ext *types.Extension) error {
	event.PublishSync(event.Event{
		Type: event.ExtensionEntered,
		Data: event.ExtensionEnteredData{SessionID: s.id, Name: ext.Name},
	})
	defer event.PublishSync(event.Event{
		Type: event.ExtensionLeft,
		Data: event.ExtensionLeftData{SessionID: s.id, Name: ext.Name},
	})

	if ext.Program.StartMsg != "" {
		s.render.Println(ext.Program.StartMsg)
	}

	stack := []*types.Menu{&ext.Program.Menu}

	for {
		current := stack[len(stack)-1]
		s.render.Menu(current)

		line, err := s.readLine("> ")
		if err != nil {
			if errors.Is(err, io.EOF) {
				return errExit
			}
			return err
		}
		if line == "" {
			continue
		}

		switch strings.ToLower(line) {
		case "x", "exit":
			return errExit
		case "b", "back":
			if len(stack) > 1 {
				stack = stack[:len(stack)-1]
			} else {
				return nil
			}
			continue
		case "h", "help":
			s.showMenuText(ext.Help, current.Help, len(stack), noHelpText)
			continue
		case "a", "about":
			s.showMenuText(ext.About, current.About, len(stack), noAboutText)
			continue
		}

		if base, arg, ok := splitCommand(line); ok {
			handled := true
			switch base {
			case "h", "help":
				s.showItemText(current, arg, func(item *types.MenuItem) (string, string) {
					return item.Help, noHelpText
				})
			case "a", "about":
				s.showItemText(current, arg, func(item *types.MenuItem) (string, string) {
					return item.About, noAboutText
				})
			default:
				handled = false
			}
			if handled {
				continue
			}
		}

		item, binding, candidates := matchItem(current.Items, line)
		switch {
		case len(candidates) > 1:
			s.render.Options(candidates)
		case item == nil:
			s.render.Errorf("unknown option: %s", line)
		case item.Submenu != nil:
			stack = append(stack, item.Submenu)
		default:
			pre := placeholder.Bindings{}
			if binding != nil {
				pre[binding.param] = binding.value
			}
			if err := s.runIO(ctx, ext, item.IO, pre); err != nil {
				return err
			}
		}
	}
}

// showMenuText prints the help/about text scoped to the current position:
// the extension's own text at the root, the current menu's text (falling
// back to the extension's) when nested.
func (s *Session) showMenuText(extText, menuText string, depth int, fallback string) {
	if depth > 1 && menuText != "" {
		s.render.Println(menuText)
		return
	}
	s.render.Text(extText, fallback)
}

// showItemText resolves an item name like selection does and prints one of
// its texts without selecting it.
func (s *Session) showItemText(menu *types.Menu, arg string, pick func(*types.MenuItem) (text, fallback string)) {
	item, _, candidates := matchItem(menu.Items, arg)
	switch {
	case len(candidates) > 1:
		s.render.Options(candidates)
	case item == nil:
		s.render.Errorf("unknown item: %s", arg)
	default:
		s.render.Text(pick(item))
	}
}

// inlineBinding carries the value of an inline parameter given with the
// selection itself, e.g. "s W1AW" for an item keyed "S {search}".
type inlineBinding struct {
	param string
	value string
}

// matchItem resolves user input against a menu's items: exact
// case-insensitive match on key, then on text; then an inline-parameter
// match on the leading token; then a unique case-insensitive prefix match
// on text. Two or more prefix matches return the candidate texts instead.
func matchItem(items []types.MenuItem, input string) (*types.MenuItem, *inlineBinding, []string) {
	lower := strings.ToLower(input)

	for i := range items {
		item := &items[i]
		if item.KeyBase != "" && item.KeyBase == lower {
			return item, nil, nil
		}
		if item.TextBase == lower {
			return item, nil, nil
		}
	}

	if base, rest, ok := splitCommand(input); ok {
		for i := range items {
			item := &items[i]
			if item.InlineParam == "" {
				continue
			}
			if item.KeyBase == base || item.TextBase == base {
				return item, &inlineBinding{param: item.InlineParam, value: inlineValue(rest)}, nil
			}
		}
	}

	var matches []*types.MenuItem
	for i := range items {
		item := &items[i]
		if strings.HasPrefix(item.TextBase, lower) {
			matches = append(matches, item)
		}
	}
	switch len(matches) {
	case 0:
		return nil, nil, nil
	case 1:
		return matches[0], nil, nil
	default:
		texts := make([]string, len(matches))
		for i, m := range matches {
			texts[i] = schema.StripInlineParam(m.Text)
		}
		return nil, nil, texts
	}
}

// inlineValue unwraps a quoted single-word argument; anything else is
// taken verbatim.
func inlineValue(rest string) string {
	fields := shell.Fields(rest)
	if len(fields) == 1 {
		return fields[0]
	}
	return rest
}
