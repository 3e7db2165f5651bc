// Package process runs and stops external programs: the document converter
// and the platform viewer that opens rendered artifacts.
package process

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

// ErrOpen indicates the platform viewer could not be launched.
var ErrOpen = errors.New("failed to open file")

// waitDelay bounds how long Wait blocks on output pipes after the process
// group was killed.
const waitDelay = 2 * time.Second

// Command builds an *exec.Cmd bound to ctx that runs in its own process
// group, so canceling ctx stops the program and everything it spawned
// (pandoc launches a LaTeX engine, for instance).
func Command(ctx context.Context, name string, args ...string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, name, args...) // #nosec G204 -- program and arguments come from trusted config
	configureGroup(cmd)
	cmd.WaitDelay = waitDelay
	return cmd
}

// Open launches the default application for path and returns once the
// launcher exits. The viewer itself keeps running.
func Open(ctx context.Context, path string) error {
	name, args := openCommand(path)
	cmd := exec.CommandContext(ctx, name, args...) // #nosec G204 -- fixed launcher, path is a generated artifact
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%w: %s: %v %s", ErrOpen, path, err, out)
	}
	return nil
}

// OpenCommand returns the launcher and arguments used by Open for path.
func OpenCommand(path string) (string, []string) {
	return openCommand(path)
}
