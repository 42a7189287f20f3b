// Package shell provides the process-execution collaborator and
// shell-style tokenization of user input lines.
package shell

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"runtime"
)

// Runner executes fully-resolved command strings through the system's
// command interpreter. It captures standard output as text and discards
// standard error; exit status is not inspected. There is no timeout: the
// call blocks until the command finishes.
type Runner struct {
	shell   string
	workDir string
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithWorkDir sets the working directory commands run in.
func WithWorkDir(dir string) RunnerOption {
	return func(r *Runner) {
		r.workDir = dir
	}
}

// WithShell overrides the detected command interpreter.
func WithShell(shell string) RunnerOption {
	return func(r *Runner) {
		r.shell = shell
	}
}

// NewRunner creates a runner using the detected shell.
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{shell: detectShell()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func detectShell() string {
	if s := os.Getenv("SHELL"); s != "" {
		// Exclude unsupported shells
		if s != "/bin/fish" && s != "/usr/bin/fish" &&
			s != "/bin/nu" && s != "/usr/bin/nu" {
			return s
		}
	}

	if runtime.GOOS == "darwin" {
		return "/bin/zsh"
	}
	if runtime.GOOS == "windows" {
		if comspec := os.Getenv("COMSPEC"); comspec != "" {
			return comspec
		}
		return "cmd.exe"
	}

	if bash, err := exec.LookPath("bash"); err == nil {
		return bash
	}

	return "/bin/sh"
}

// Run executes command through the interpreter and returns its standard
// output. A non-zero exit status is not an error; only failures to start
// the interpreter at all are reported.
func (r *Runner) Run(ctx context.Context, command string) (string, error) {
	var cmd *exec.Cmd
	if runtime.GOOS == "windows" {
		cmd = exec.CommandContext(ctx, r.shell, "/c", command)
	} else {
		cmd = exec.CommandContext(ctx, r.shell, "-c", command)
	}

	if r.workDir != "" {
		cmd.Dir = r.workDir
	}
	cmd.Env = os.Environ()

	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	// Stderr left nil: the interpreter writes it to the null device.

	err := cmd.Run()
	if err != nil {
		if _, exited := err.(*exec.ExitError); !exited {
			return "", err
		}
	}
	return stdout.String(), nil
}
