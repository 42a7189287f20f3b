// Package types provides the core data types for the BPQX menu runner.
package types

// InputType enumerates the value types an input can declare.
type InputType string

const (
	InputString InputType = "string"
	InputInt    InputType = "int"
	InputBool   InputType = "bool"
)

// Extension is one independently loaded unit: a named menu tree whose
// terminal items execute parameterized shell commands. Extensions are
// immutable once they leave the validator.
type Extension struct {
	Name        string  `json:"name" yaml:"name"`
	Description string  `json:"description" yaml:"description"`
	About       string  `json:"about,omitempty" yaml:"about,omitempty"`
	Help        string  `json:"help,omitempty" yaml:"help,omitempty"`
	Version     string  `json:"version,omitempty" yaml:"version,omitempty"`
	Program     Program `json:"program" yaml:"program"`

	// File is the document the extension was loaded from, kept for
	// diagnostics only.
	File string `json:"-" yaml:"-"`
}

// Program is the runnable part of an extension.
type Program struct {
	StartMsg string `json:"start_msg,omitempty" yaml:"start_msg,omitempty"`
	Menu     Menu   `json:"menu" yaml:"menu"`
}

// Menu is a prompt plus an ordered list of selectable items.
// Help and About refine the extension-level text for nested menus.
type Menu struct {
	Prompt string     `json:"prompt" yaml:"prompt"`
	Help   string     `json:"help,omitempty" yaml:"help,omitempty"`
	About  string     `json:"about,omitempty" yaml:"about,omitempty"`
	Items  []MenuItem `json:"items" yaml:"items"`
}

// MenuItem is a selectable entry. Exactly one of IO or Submenu is set;
// the validator rejects anything else.
type MenuItem struct {
	ID    int    `json:"id" yaml:"id"`
	Key   string `json:"key,omitempty" yaml:"key,omitempty"`
	Text  string `json:"text" yaml:"text"`
	Help  string `json:"help" yaml:"help"`
	About string `json:"about,omitempty" yaml:"about,omitempty"`

	IO      *IO   `json:"io,omitempty" yaml:"io,omitempty"`
	Submenu *Menu `json:"menu,omitempty" yaml:"menu,omitempty"`

	// Normalized matching fields, computed at validation time. KeyBase and
	// TextBase are lowercased with any inline parameter suffix stripped;
	// Key and Text keep the author's casing for display.
	KeyBase     string `json:"-" yaml:"-"`
	TextBase    string `json:"-" yaml:"-"`
	InlineParam string `json:"-" yaml:"-"`
}

// IO is a terminal action: optional sequential input prompts followed by
// execution of a templated shell command.
type IO struct {
	Prompts []Prompt `json:"prompts,omitempty" yaml:"prompts,omitempty"`
	Help    string   `json:"help,omitempty" yaml:"help,omitempty"`
	Command string   `json:"command" yaml:"command"`
}

// Prompt is one line-level request for zero or more typed input values.
type Prompt struct {
	ID     int     `json:"id,omitempty" yaml:"id,omitempty"`
	Prompt string  `json:"prompt" yaml:"prompt"`
	Inputs []Input `json:"inputs,omitempty" yaml:"inputs,omitempty"`
}

// Input declares one positional value collected by a prompt. ID doubles
// as the positional placeholder key; Name, when present, is an alternate
// placeholder key.
type Input struct {
	ID       int       `json:"id" yaml:"id"`
	Type     InputType `json:"type" yaml:"type"`
	Required bool      `json:"required,omitempty" yaml:"required,omitempty"`
	Name     string    `json:"name,omitempty" yaml:"name,omitempty"`
}
