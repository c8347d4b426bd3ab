package scripting

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/0xcro3dile/boost-go/internal/domain/ports"
)

func TestExecRunner_TrimsStdout(t *testing.T) {
	r := NewExecRunner(time.Second, zaptest.NewLogger(t))
	out, err := r.Run(context.Background(), ports.Command{Name: "sh", Args: []string{"-c", "echo '  hello  '"}})
	require.NoError(t, err)
	assert.Equal(t, "hello", out)
}

func TestExecRunner_PassesStdin(t *testing.T) {
	r := NewExecRunner(time.Second, nil)
	out, err := r.Run(context.Background(), ports.Command{Name: "cat", Stdin: "from stdin\n"})
	require.NoError(t, err)
	assert.Equal(t, "from stdin", out)
}

func TestExecRunner_NonZeroExit(t *testing.T) {
	r := NewExecRunner(time.Second, nil)
	_, err := r.Run(context.Background(), ports.Command{Name: "sh", Args: []string{"-c", "echo nope >&2; exit 3"}})

	var bridgeErr *BridgeError
	require.True(t, errors.As(err, &bridgeErr))
	assert.Equal(t, "exit", bridgeErr.Op)
	assert.Equal(t, "nope", bridgeErr.Stderr)
}

func TestExecRunner_MissingBinary(t *testing.T) {
	r := NewExecRunner(time.Second, nil)
	_, err := r.Run(context.Background(), ports.Command{Name: "definitely-not-a-binary-boost"})

	var bridgeErr *BridgeError
	require.True(t, errors.As(err, &bridgeErr))
	assert.Equal(t, "start", bridgeErr.Op)
}

func TestExecRunner_Timeout(t *testing.T) {
	r := NewExecRunner(50*time.Millisecond, nil)
	_, err := r.Run(context.Background(), ports.Command{Name: "sleep", Args: []string{"5"}})

	var bridgeErr *BridgeError
	require.True(t, errors.As(err, &bridgeErr))
	assert.Equal(t, "timeout", bridgeErr.Op)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

type recordingRunner struct {
	got ports.Command
	out string
}

func (r *recordingRunner) Run(ctx context.Context, cmd ports.Command) (string, error) {
	r.got = cmd
	return r.out, nil
}

func TestOsaScriptRunner_BuildsCommand(t *testing.T) {
	rec := &recordingRunner{out: "https://go.dev"}
	r := NewOsaScriptRunner(rec)

	out, err := r.Run(context.Background(), ports.Script{Language: ports.JavaScript, Source: "1+1"})
	require.NoError(t, err)
	assert.Equal(t, "https://go.dev", out)
	assert.Equal(t, "osascript", rec.got.Name)
	assert.Equal(t, []string{"-l", "JavaScript", "-"}, rec.got.Args)
	assert.Equal(t, "1+1", rec.got.Stdin)
}

func TestOsaScriptRunner_DefaultsToAppleScript(t *testing.T) {
	rec := &recordingRunner{}
	r := NewOsaScriptRunner(rec)

	_, err := r.Run(context.Background(), ports.Script{Source: `return "x"`})
	require.NoError(t, err)
	assert.Equal(t, []string{"-l", "AppleScript", "-"}, rec.got.Args)
}
