// Package executor runs the external commands vhostfrag depends on, such as
// apache2ctl and systemctl, behind an interface the driver can mock.
package executor

import (
	"context"
	"os/exec"
	"strings"
)

// CommandExecutor runs system commands.
type CommandExecutor interface {
	// Execute runs name with args and returns its combined output.
	// The command is killed when ctx is done.
	Execute(ctx context.Context, name string, args ...string) ([]byte, error)

	// LookPath resolves an executable through PATH.
	LookPath(file string) (string, error)
}

// SystemExecutor runs commands with os/exec.
type SystemExecutor struct{}

// NewSystemExecutor creates a SystemExecutor.
func NewSystemExecutor() *SystemExecutor {
	return &SystemExecutor{}
}

// Execute implements CommandExecutor.
func (e *SystemExecutor) Execute(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// LookPath implements CommandExecutor.
func (e *SystemExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

// CommandCall is one command seen by MockExecutor.
type CommandCall struct {
	Name string
	Args []string
}

// CommandLine returns the call as a single string, e.g. "apache2ctl configtest".
func (c CommandCall) CommandLine() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// MockExecutor records calls and answers them with the optional funcs.
// Without ExecuteFunc every command succeeds with no output; without
// LookPathFunc every executable resolves under /usr/bin.
type MockExecutor struct {
	ExecuteFunc  func(name string, args ...string) ([]byte, error)
	LookPathFunc func(file string) (string, error)
	Calls        []CommandCall
}

// Execute implements CommandExecutor. Calls on a done context are recorded
// and fail with the context's error.
func (m *MockExecutor) Execute(ctx context.Context, name string, args ...string) ([]byte, error) {
	m.Calls = append(m.Calls, CommandCall{Name: name, Args: args})
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.ExecuteFunc != nil {
		return m.ExecuteFunc(name, args...)
	}
	return []byte(""), nil
}

// LookPath implements CommandExecutor.
func (m *MockExecutor) LookPath(file string) (string, error) {
	if m.LookPathFunc != nil {
		return m.LookPathFunc(file)
	}
	return "/usr/bin/" + file, nil
}
