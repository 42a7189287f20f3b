package schema

import "fmt"

// ValidationError is one schema violation, located by a document path such
// as "program.menu.items[2].io.prompts[0].inputs[1]".
type ValidationError struct {
	Path    string
	Message string
}

func (e ValidationError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// errorList accumulates validation errors during the recursive descent.
type errorList struct {
	errs []ValidationError
}

func (l *errorList) add(path, format string, args ...any) {
	l.errs = append(l.errs, ValidationError{Path: path, Message: fmt.Sprintf(format, args...)})
}
