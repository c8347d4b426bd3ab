package scripting

import (
	"context"

	"github.com/0xcro3dile/boost-go/internal/domain/ports"
)

// OsaScriptRunner implements ports.ScriptRunner by piping source into osascript.
type OsaScriptRunner struct {
	commands ports.CommandRunner
	binary   string
}

// NewOsaScriptRunner creates a runner on top of a command runner.
func NewOsaScriptRunner(commands ports.CommandRunner) *OsaScriptRunner {
	return &OsaScriptRunner{commands: commands, binary: "osascript"}
}

// Run executes script and returns its result string.
func (r *OsaScriptRunner) Run(ctx context.Context, script ports.Script) (string, error) {
	lang := script.Language
	if lang == "" {
		lang = ports.AppleScript
	}
	return r.commands.Run(ctx, ports.Command{
		Name:  r.binary,
		Args:  []string{"-l", string(lang), "-"},
		Stdin: script.Source,
	})
}
