// Package schema validates raw extension documents and turns them into
// strongly typed, invariant-checked Extension values.
//
// Validation is total and side-effect-free: the same document always yields
// the same result, and a failing document never affects any other. Every
// error carries the path of the offending node so extension authors can fix
// their documents without guessing.
package schema

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/bpqx-io/bpqx/pkg/types"
)

// Reserved navigation tokens extension authors may not reuse.
var (
	reservedKeys  = map[string]bool{"a": true, "b": true, "h": true, "x": true}
	reservedTexts = map[string]bool{"about": true, "back": true, "help": true, "exit": true}
)

var (
	inlineParamRe = regexp.MustCompile(`^(\S+)\s+\{(\w+)\}$`)
	inlineStripRe = regexp.MustCompile(`\s*\{\w+\}$`)
)

// ParseInlineParam splits "S {search}" into its lowercased base "s" and
// parameter name "search". Strings without an inline parameter return the
// whole string lowercased and an empty parameter.
func ParseInlineParam(s string) (base, param string) {
	if m := inlineParamRe.FindStringSubmatch(s); m != nil {
		return strings.ToLower(m[1]), m[2]
	}
	return strings.ToLower(s), ""
}

// StripInlineParam removes a trailing "{param}" suffix, keeping the
// author's casing for display.
func StripInlineParam(s string) string {
	return inlineStripRe.ReplaceAllString(s, "")
}

// Validate checks a decoded extension document against the schema and
// returns the typed Extension, or a non-empty list of errors. The two are
// mutually exclusive: a document with any error yields a nil Extension.
func Validate(doc map[string]any) (*types.Extension, []ValidationError) {
	errs := &errorList{}
	ext := &types.Extension{}

	ext.Name = requireString(doc, "name", errs)
	if ext.Name != "" && strings.ContainsAny(ext.Name, " \t") {
		errs.add("name", "must be a single word, got %q", ext.Name)
	}
	ext.Description = requireString(doc, "description", errs)
	ext.About = optionalString(doc, "about", errs)
	ext.Help = optionalString(doc, "help", errs)
	ext.Version = optionalString(doc, "version", errs)

	prog, ok := doc["program"]
	if !ok {
		errs.add("program", "is required")
	} else if progMap, isMap := prog.(map[string]any); !isMap {
		errs.add("program", "must be a mapping")
	} else {
		ext.Program.StartMsg = optionalString(progMap, "start_msg", errs.scoped("program"))
		menuRaw, ok := progMap["menu"]
		if !ok {
			errs.add("program.menu", "is required")
		} else {
			ext.Program.Menu = validateMenu(menuRaw, "program.menu", errs)
		}
	}

	if len(errs.errs) > 0 {
		return nil, errs.errs
	}
	return ext, nil
}

// scoped returns a helper that prefixes a path segment onto optionalString
// and friends; it shares the underlying error list.
func (l *errorList) scoped(prefix string) *scopedErrors {
	return &scopedErrors{list: l, prefix: prefix}
}

type scopedErrors struct {
	list   *errorList
	prefix string
}

func (s *scopedErrors) add(path, format string, args ...any) {
	if path == "" {
		path = s.prefix
	} else {
		path = s.prefix + "." + path
	}
	s.list.add(path, format, args...)
}

// fieldErrors is the narrow interface the coercion helpers need.
type fieldErrors interface {
	add(path, format string, args ...any)
}

func requireString(m map[string]any, field string, errs fieldErrors) string {
	v, ok := m[field]
	if !ok || v == nil {
		errs.add(field, "is required")
		return ""
	}
	s, ok := v.(string)
	if !ok {
		errs.add(field, "must be a string, got %T", v)
		return ""
	}
	return s
}

func optionalString(m map[string]any, field string, errs fieldErrors) string {
	v, ok := m[field]
	if !ok || v == nil {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		errs.add(field, "must be a string, got %T", v)
		return ""
	}
	return s
}

func requireInt(m map[string]any, field string, errs fieldErrors) int {
	v, ok := m[field]
	if !ok || v == nil {
		errs.add(field, "is required")
		return 0
	}
	n, ok := coerceInt(v)
	if !ok {
		errs.add(field, "must be an integer, got %v", v)
		return 0
	}
	return n
}

func optionalInt(m map[string]any, field string, errs fieldErrors) int {
	v, ok := m[field]
	if !ok || v == nil {
		return 0
	}
	n, ok := coerceInt(v)
	if !ok {
		errs.add(field, "must be an integer, got %v", v)
		return 0
	}
	return n
}

func optionalBool(m map[string]any, field string, errs fieldErrors) bool {
	v, ok := m[field]
	if !ok || v == nil {
		return false
	}
	b, ok := v.(bool)
	if !ok {
		errs.add(field, "must be a boolean, got %v", v)
		return false
	}
	return b
}

func coerceInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case uint64:
		return int(n), true
	case float64:
		if n == float64(int(n)) {
			return int(n), true
		}
	}
	return 0, false
}

func validateMenu(raw any, path string, errs *errorList) types.Menu {
	menu := types.Menu{}
	m, ok := raw.(map[string]any)
	if !ok {
		errs.add(path, "must be a mapping")
		return menu
	}

	sc := errs.scoped(path)
	menu.Prompt = requireString(m, "prompt", sc)
	menu.Help = optionalString(m, "help", sc)
	menu.About = optionalString(m, "about", sc)

	itemsRaw, ok := m["items"]
	itemsList, isList := itemsRaw.([]any)
	if !ok || !isList {
		errs.add(path+".items", "is required and must be a list")
		return menu
	}

	for i, itemRaw := range itemsList {
		itemPath := fmt.Sprintf("%s.items[%d]", path, i)
		menu.Items = append(menu.Items, validateItem(itemRaw, itemPath, errs))
	}

	sort.SliceStable(menu.Items, func(a, b int) bool {
		return menu.Items[a].ID < menu.Items[b].ID
	})
	return menu
}

func validateItem(raw any, path string, errs *errorList) types.MenuItem {
	item := types.MenuItem{}
	m, ok := raw.(map[string]any)
	if !ok {
		errs.add(path, "must be a mapping")
		return item
	}

	sc := errs.scoped(path)
	item.ID = requireInt(m, "id", sc)
	item.Key = optionalString(m, "key", sc)
	item.Text = requireString(m, "text", sc)
	item.Help = requireString(m, "help", sc)
	item.About = optionalString(m, "about", sc)

	var keyParam, textParam string
	if item.Key != "" {
		item.KeyBase, keyParam = ParseInlineParam(item.Key)
		if reservedKeys[item.KeyBase] {
			errs.add(path+".key", "%q is reserved", item.Key)
		}
		if base := StripInlineParam(item.Key); len([]rune(base)) != 1 {
			errs.add(path+".key", "must be a single character, got %q", base)
		}
	}
	if item.Text != "" {
		item.TextBase, textParam = ParseInlineParam(item.Text)
		if reservedTexts[strings.ToLower(StripInlineParam(item.Text))] {
			errs.add(path+".text", "%q is reserved", item.Text)
		}
	}
	item.InlineParam = keyParam
	if item.InlineParam == "" {
		item.InlineParam = textParam
	}

	_, hasIO := m["io"]
	_, hasMenu := m["menu"]
	if hasIO == hasMenu {
		errs.add(path, "must have exactly one of 'io' or 'menu'")
		return item
	}

	if hasMenu {
		if item.InlineParam != "" {
			errs.add(path, "inline parameter %q is only valid with 'io', not 'menu'", item.InlineParam)
		}
		sub := validateMenu(m["menu"], path+".menu", errs)
		item.Submenu = &sub
		return item
	}

	io := validateIO(m["io"], path, errs)
	item.IO = &io

	if item.InlineParam != "" {
		var all []types.Input
		for _, p := range io.Prompts {
			all = append(all, p.Inputs...)
		}
		if len(all) != 1 {
			errs.add(path, "inline parameter requires exactly 1 input, found %d", len(all))
		} else if all[0].Name != item.InlineParam {
			errs.add(path, "inline parameter %q does not match input name %q", item.InlineParam, all[0].Name)
		}
	}
	return item
}

func validateIO(raw any, itemPath string, errs *errorList) types.IO {
	path := itemPath + ".io"
	io := types.IO{}

	// A one-element list is accepted for authoring convenience.
	if list, isList := raw.([]any); isList {
		if len(list) == 0 {
			errs.add(path, "must not be empty")
			return io
		}
		raw = list[0]
	}
	m, ok := raw.(map[string]any)
	if !ok {
		errs.add(path, "must be a mapping")
		return io
	}

	sc := errs.scoped(path)
	io.Command = requireString(m, "command", sc)
	io.Help = optionalString(m, "help", sc)

	promptsRaw, ok := m["prompts"]
	if !ok || promptsRaw == nil {
		return io
	}
	promptsList, isList := promptsRaw.([]any)
	if !isList {
		errs.add(path+".prompts", "must be a list")
		return io
	}

	namesSeen := map[string]string{} // input name -> first declaring path
	for j, pRaw := range promptsList {
		pPath := fmt.Sprintf("%s.prompts[%d]", path, j)
		io.Prompts = append(io.Prompts, validatePrompt(pRaw, pPath, namesSeen, errs))
	}

	sort.SliceStable(io.Prompts, func(a, b int) bool {
		return io.Prompts[a].ID < io.Prompts[b].ID
	})
	return io
}

func validatePrompt(raw any, path string, namesSeen map[string]string, errs *errorList) types.Prompt {
	p := types.Prompt{}
	m, ok := raw.(map[string]any)
	if !ok {
		errs.add(path, "must be a mapping")
		return p
	}

	sc := errs.scoped(path)
	p.ID = optionalInt(m, "id", sc)
	p.Prompt = requireString(m, "prompt", sc)

	inputsRaw, ok := m["inputs"]
	if !ok || inputsRaw == nil {
		return p
	}
	inputsList, isList := inputsRaw.([]any)
	if !isList {
		errs.add(path+".inputs", "must be a list")
		return p
	}

	idsSeen := map[int]bool{}
	for k, inRaw := range inputsList {
		inPath := fmt.Sprintf("%s.inputs[%d]", path, k)
		in := validateInput(inRaw, inPath, errs)
		if idsSeen[in.ID] {
			errs.add(inPath+".id", "duplicate input id %d", in.ID)
		}
		idsSeen[in.ID] = true
		if in.Name != "" {
			if first, dup := namesSeen[in.Name]; dup {
				errs.add(inPath+".name", "duplicate input name %q (first declared at %s)", in.Name, first)
			} else {
				namesSeen[in.Name] = inPath
			}
		}
		p.Inputs = append(p.Inputs, in)
	}

	sort.SliceStable(p.Inputs, func(a, b int) bool {
		return p.Inputs[a].ID < p.Inputs[b].ID
	})
	return p
}

func validateInput(raw any, path string, errs *errorList) types.Input {
	in := types.Input{}
	m, ok := raw.(map[string]any)
	if !ok {
		errs.add(path, "must be a mapping")
		return in
	}

	sc := errs.scoped(path)
	in.ID = requireInt(m, "id", sc)
	in.Required = optionalBool(m, "required", sc)
	in.Name = optionalString(m, "name", sc)

	typ := requireString(m, "type", sc)
	if typ != "" {
		switch t := types.InputType(strings.ToLower(typ)); t {
		case types.InputString, types.InputInt, types.InputBool:
			in.Type = t
		default:
			errs.add(path+".type", "must be one of string, int, bool; got %q", typ)
		}
	}
	return in
}
