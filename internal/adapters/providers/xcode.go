package providers

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/0xcro3dile/boost-go/internal/domain/ports"
)

const (
	xcodeNoWindow = "No active Xcode window found."
	// Xcode joins project and file in window titles with an em dash.
	xcodeTitleSeparator = " — "
)

const xcodeWindowScript = `tell application "Xcode"
	if exists (window 1) then
		return name of window 1
	else
		return "No active Xcode window found."
	end if
end tell`

const xcodeProjectPathScript = `tell application "Xcode"
	return path of document 1
end tell`

// Xcode derives the open file from the front window title and reads it from
// disk below the project directory.
type Xcode struct {
	bridge   bridge
	commands ports.CommandRunner
	logger   *zap.Logger
	readFile func(string) ([]byte, error)
}

// NewXcode creates the Xcode provider. commands runs the file search.
func NewXcode(scripts ports.ScriptRunner, commands ports.CommandRunner, logger *zap.Logger) *Xcode {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Xcode{
		bridge:   newBridge(scripts, logger, "xcode", xcodeNoWindow),
		commands: commands,
		logger:   logger.With(zap.String("provider", "xcode")),
		readFile: os.ReadFile,
	}
}

// ContextualText returns the first segment after the project name that
// looks like a file name.
func (x *Xcode) ContextualText(ctx context.Context) string {
	parts := strings.Split(x.bridge.run(ctx, ports.AppleScript, xcodeWindowScript), xcodeTitleSeparator)
	if len(parts) < 2 {
		return ""
	}
	for _, p := range parts[1:] {
		if strings.Contains(p, ".") {
			return p
		}
	}
	return ""
}

// DisplayText returns the project name from the window title.
func (x *Xcode) DisplayText(ctx context.Context) string {
	title := x.bridge.run(ctx, ports.AppleScript, xcodeWindowScript)
	project, _, _ := strings.Cut(title, xcodeTitleSeparator)
	return project
}

// ContextualContent finds hint under the project directory and returns the
// file's contents.
func (x *Xcode) ContextualContent(ctx context.Context, hint string) string {
	if hint == "" || x.commands == nil {
		return ""
	}
	projectPath := x.bridge.run(ctx, ports.AppleScript, xcodeProjectPathScript)
	if projectPath == "" {
		return ""
	}
	root := filepath.Dir(projectPath)

	out, err := x.commands.Run(ctx, ports.Command{Name: "find", Args: []string{root, "-iname", hint}})
	if err != nil {
		x.logger.Debug("File search failed", zap.String("root", root), zap.Error(err))
		return ""
	}
	path, _, _ := strings.Cut(out, "\n")
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}

	data, err := x.readFile(path)
	if err != nil {
		x.logger.Debug("Reading file failed", zap.String("path", path), zap.Error(err))
		return ""
	}
	return string(data)
}
