// Package process runs external programs such as Ghostscript and makes
// sure a cancelled context takes their whole process tree down.
package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"
)

// ErrCommandFailed is returned when a command exits unsuccessfully.
var ErrCommandFailed = errors.New("command failed")

// waitDelay bounds how long Run waits for output pipes after a kill.
const waitDelay = 2 * time.Second

// maxStderr bounds the bytes of stderr kept for error messages.
const maxStderr = 4 << 10

// Runner executes a command, writing its standard output to stdout and
// returning its standard error. Tests substitute fakes for Run.
type Runner func(ctx context.Context, name string, args []string, stdout io.Writer) (stderr []byte, err error)

// Run starts name with args in its own process group and waits for it.
// Cancelling ctx kills the group. A non-zero exit is reported as
// ErrCommandFailed with the head of stderr.
func Run(ctx context.Context, name string, args []string, stdout io.Writer) ([]byte, error) {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...) // #nosec G204 -- command and arguments are built by the caller
	cmd.Stdout = stdout
	cmd.Stderr = &stderr
	setProcessGroup(cmd)
	cmd.Cancel = func() error {
		if cmd.Process != nil {
			KillProcessGroup(cmd.Process.Pid)
		}
		return nil
	}
	cmd.WaitDelay = waitDelay

	err := cmd.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return stderr.Bytes(), ctxErr
	}
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if len(msg) > maxStderr {
			msg = msg[:maxStderr] + "..."
		}
		if msg == "" {
			return stderr.Bytes(), fmt.Errorf("%w: %s: %v", ErrCommandFailed, name, err)
		}
		return stderr.Bytes(), fmt.Errorf("%w: %s: %v: %s", ErrCommandFailed, name, err, msg)
	}
	return stderr.Bytes(), nil
}

var _ Runner = Run
