package lock

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// CommandLocker runs an external command such as `loginctl lock-session`.
type CommandLocker struct {
	Argv []string
}

// Name implements Locker.
func (c *CommandLocker) Name() string {
	return strings.Join(c.Argv, " ")
}

// Available reports whether the command is on PATH.
func (c *CommandLocker) Available() bool {
	if len(c.Argv) == 0 {
		return false
	}
	_, err := exec.LookPath(c.Argv[0])
	return err == nil
}

// Lock runs the command and waits for it to exit.
func (c *CommandLocker) Lock(ctx context.Context) error {
	if len(c.Argv) == 0 {
		return ErrNoLocker
	}
	out, err := exec.CommandContext(ctx, c.Argv[0], c.Argv[1:]...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s: %w: %s", c.Name(), err, strings.TrimSpace(string(out)))
	}
	return nil
}
