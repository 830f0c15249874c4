//go:build !windows

package process

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// TestRun - Command Execution
// ---------------------------------------------------------------------------

func TestRun_CapturesOutput(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	stderr, err := Run(context.Background(), "sh", []string{"-c", "echo out; echo err >&2"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "out\n", out.String())
	assert.Equal(t, "err\n", string(stderr))
}

func TestRun_FailureIncludesStderr(t *testing.T) {
	t.Parallel()

	_, err := Run(context.Background(), "sh", []string{"-c", "echo oops >&2; exit 3"}, &bytes.Buffer{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCommandFailed))
	assert.Contains(t, err.Error(), "oops")
}

func TestRun_MissingBinary(t *testing.T) {
	t.Parallel()

	_, err := Run(context.Background(), "no-such-binary-dvisvg", nil, &bytes.Buffer{})
	assert.ErrorIs(t, err, ErrCommandFailed)
}

func TestRun_ContextCancelKillsCommand(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := Run(ctx, "sh", []string{"-c", "sleep 30 & sleep 30"}, &bytes.Buffer{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 10*time.Second)
}
