package providers

import (
	"context"

	"go.uber.org/zap"

	"github.com/0xcro3dile/boost-go/internal/domain/ports"
)

const chromeNoWindow = "No active Chrome window found."

const chromeURLScript = `tell application "Google Chrome"
	if (count of windows) is 0 then
		return "No active Chrome window found."
	end if
	return URL of active tab of front window
end tell`

const chromeTitleScript = `tell application "Google Chrome"
	if (count of windows) is 0 then
		return "No active Chrome window found."
	end if
	return title of active tab of front window
end tell`

const chromeTextScript = `tell application "Google Chrome"
	if (count of windows) is 0 then
		return "No active Chrome window found."
	end if
	return execute active tab of front window javascript "document.body.innerText"
end tell`

// Chrome extracts the active tab's URL, title and rendered text.
// Reading the text needs "Allow JavaScript from Apple Events" enabled.
type Chrome struct {
	bridge bridge
}

// NewChrome creates the Chrome provider.
func NewChrome(scripts ports.ScriptRunner, logger *zap.Logger) *Chrome {
	return &Chrome{bridge: newBridge(scripts, logger, "chrome", chromeNoWindow)}
}

// ContextualText returns the URL of the active tab.
func (c *Chrome) ContextualText(ctx context.Context) string {
	return c.bridge.run(ctx, ports.AppleScript, chromeURLScript)
}

// DisplayText returns the active tab's title.
func (c *Chrome) DisplayText(ctx context.Context) string {
	return c.bridge.run(ctx, ports.AppleScript, chromeTitleScript)
}

// ContextualContent returns the page's rendered text. hint is unused.
func (c *Chrome) ContextualContent(ctx context.Context, hint string) string {
	return c.bridge.run(ctx, ports.AppleScript, chromeTextScript)
}
