package shell

import (
	"context"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFields(t *testing.T) {
	assert.Empty(t, Fields(""))
	assert.Empty(t, Fields("   "))

	tests := []struct {
		line string
		want []string
	}{
		{"W1AW", []string{"W1AW"}},
		{"W1AW 2m 30", []string{"W1AW", "2m", "30"}},
		{`"New York" 2m`, []string{"New York", "2m"}},
		{"'single quoted value'", []string{"single quoted value"}},
		{"  padded   out  ", []string{"padded", "out"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Fields(tt.line), "line %q", tt.line)
	}
}

func TestFields_UnterminatedQuoteFallsBack(t *testing.T) {
	assert.Equal(t, []string{`"New`, "York"}, Fields(`"New York`))
}

// Answers are data: $-syntax must survive splitting untouched instead of
// being expanded away.
func TestFields_DollarStaysLiteral(t *testing.T) {
	tests := []struct {
		line string
		want []string
	}{
		{"$100", []string{"$100"}},
		{"$HOME", []string{"$HOME"}},
		{"${name}", []string{"${name}"}},
		{`"rate is $5"`, []string{"rate is $5"}},
		{`'$literal'`, []string{"$literal"}},
		{"W1AW $100 2m", []string{"W1AW", "$100", "2m"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Fields(tt.line), "line %q", tt.line)
	}
}

func TestFields_BackslashEscapes(t *testing.T) {
	tests := []struct {
		line string
		want []string
	}{
		{`back\slash`, []string{"backslash"}},
		{`price\ list`, []string{"price list"}},
		{`\$100`, []string{"$100"}},
		{`"semi\colon"`, []string{`semi\colon`}},
		{`"escaped \" quote"`, []string{`escaped " quote`}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Fields(tt.line), "line %q", tt.line)
	}
}

func requirePOSIX(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
}

func TestRunner_CapturesStdout(t *testing.T) {
	requirePOSIX(t)
	r := NewRunner(WithShell("/bin/sh"))

	out, err := r.Run(context.Background(), "echo hello")
	require.NoError(t, err)
	assert.Equal(t, "hello\n", out)
}

func TestRunner_DiscardsStderr(t *testing.T) {
	requirePOSIX(t)
	r := NewRunner(WithShell("/bin/sh"))

	out, err := r.Run(context.Background(), "echo visible; echo hidden >&2")
	require.NoError(t, err)
	assert.Equal(t, "visible\n", out)
}

func TestRunner_NonZeroExitIsNotAnError(t *testing.T) {
	requirePOSIX(t)
	r := NewRunner(WithShell("/bin/sh"))

	out, err := r.Run(context.Background(), "echo partial; exit 3")
	require.NoError(t, err)
	assert.Equal(t, "partial\n", out)
}

func TestRunner_WorkDir(t *testing.T) {
	requirePOSIX(t)
	dir := t.TempDir()
	r := NewRunner(WithShell("/bin/sh"), WithWorkDir(dir))

	out, err := r.Run(context.Background(), "pwd")
	require.NoError(t, err)
	assert.Contains(t, out, dir)
}

func TestRunner_MissingInterpreter(t *testing.T) {
	r := NewRunner(WithShell("/nonexistent/shell"))

	_, err := r.Run(context.Background(), "echo hello")
	assert.Error(t, err)
}
