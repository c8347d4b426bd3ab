package macos

import (
	"context"
	"fmt"

	"github.com/0xcro3dile/boost-go/internal/domain/ports"
)

const selectedTextScript = `tell application "System Events"
	set frontProc to first application process whose frontmost is true
	try
		set focused to value of attribute "AXFocusedUIElement" of frontProc
		return value of attribute "AXSelectedText" of focused
	on error
		return ""
	end try
end tell`

// SelectionReader implements ports.SelectionReader through the accessibility API.
type SelectionReader struct {
	scripts ports.ScriptRunner
}

// NewSelectionReader creates a SelectionReader that runs its script through scripts.
func NewSelectionReader(scripts ports.ScriptRunner) *SelectionReader {
	return &SelectionReader{scripts: scripts}
}

// SelectedText returns the frontmost application's selection, "" when nothing is selected.
func (r *SelectionReader) SelectedText(ctx context.Context) (string, error) {
	out, err := r.scripts.Run(ctx, ports.Script{Language: ports.AppleScript, Source: selectedTextScript})
	if err != nil {
		return "", fmt.Errorf("reading selection: %w", err)
	}
	if out == "missing value" {
		return "", nil
	}
	return out, nil
}
