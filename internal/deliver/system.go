// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package deliver

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

// Command hands a document file to a system program (a viewer or a
// print spooler).
type Command interface {
	// Name returns the program name (e.g. "xdg-open" or "lp").
	Name() string

	// Available reports whether the program exists on PATH.
	Available() bool

	// Run invokes the program on path.
	Run(ctx context.Context, path string) error
}

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	Run(ctx context.Context, name string, args ...string) error
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) Run(ctx context.Context, name string, args ...string) error {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		if msg := strings.TrimSpace(string(out)); msg != "" {
			return fmt.Errorf("%w: %s", err, msg)
		}
		return err
	}
	return nil
}

// command implements Command for one program with fixed leading arguments.
type command struct {
	bin  string
	args []string
	exec executor
}

func (c *command) Name() string { return c.bin }

func (c *command) Available() bool {
	_, err := c.exec.LookPath(c.bin)
	return err == nil
}

func (c *command) Run(ctx context.Context, path string) error {
	args := make([]string, 0, len(c.args)+1)
	args = append(args, c.args...)
	args = append(args, path)
	if err := c.exec.Run(ctx, c.bin, args...); err != nil {
		return fmt.Errorf("running %s: %w", c.bin, err)
	}
	return nil
}

// parseCommand splits a configured command line like "lp -d office".
func parseCommand(line string, exec executor) *command {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	return &command{bin: fields[0], args: fields[1:], exec: exec}
}

// openerCandidates lists document viewers in preference order.
func openerCandidates(goos string) []string {
	switch goos {
	case "darwin":
		return []string{"open"}
	case "windows":
		return []string{"explorer"}
	default:
		return []string{"xdg-open", "gio open", "open"}
	}
}

// printerCandidates lists print spoolers in preference order.
func printerCandidates(goos string) []string {
	switch goos {
	case "windows":
		return []string{"print"}
	default:
		return []string{"lp", "lpr"}
	}
}

var defaultExec = &osExecutor{}

// DetectOpener returns the configured viewer, or the first available one.
func DetectOpener(override string) (Command, error) {
	return detect(defaultExec, "viewer", override, openerCandidates(runtime.GOOS))
}

// DetectPrinter returns the configured print command, or the first
// available one.
func DetectPrinter(override string) (Command, error) {
	return detect(defaultExec, "print command", override, printerCandidates(runtime.GOOS))
}

func detect(exec executor, kind, override string, candidates []string) (Command, error) {
	if c := parseCommand(override, exec); c != nil {
		if !c.Available() {
			return nil, fmt.Errorf("configured %s %q not found", kind, c.bin)
		}
		return c, nil
	}

	var tried []string
	for _, line := range candidates {
		c := parseCommand(line, exec)
		if c.Available() {
			return c, nil
		}
		tried = append(tried, c.bin)
	}
	return nil, fmt.Errorf("no %s available: tried %s", kind, strings.Join(tried, ", "))
}
