package providers

import (
	"context"

	"go.uber.org/zap"

	"github.com/0xcro3dile/boost-go/internal/domain/ports"
)

const safariNoDocument = "No active Safari document found."

const safariURLScript = `tell application "Safari"
	set currentURL to URL of current tab of front window
	return currentURL
end tell`

const safariTitleScript = `tell application "Safari"
	if not (exists document 1) then
		return ""
	end if
	return name of document 1
end tell`

const safariTextScript = `tell application "Safari"
	if not (exists document 1) then
		return "No active Safari document found."
	end if
	return text of document 1
end tell`

// Safari extracts the current tab's URL, title and page text.
type Safari struct {
	bridge bridge
}

// NewSafari creates the Safari provider.
func NewSafari(scripts ports.ScriptRunner, logger *zap.Logger) *Safari {
	return &Safari{bridge: newBridge(scripts, logger, "safari", safariNoDocument)}
}

// ContextualText returns the URL of the current tab.
func (s *Safari) ContextualText(ctx context.Context) string {
	return s.bridge.run(ctx, ports.AppleScript, safariURLScript)
}

// DisplayText returns the front document's title.
func (s *Safari) DisplayText(ctx context.Context) string {
	return s.bridge.run(ctx, ports.AppleScript, safariTitleScript)
}

// ContextualContent returns the front document's text. hint is unused.
func (s *Safari) ContextualContent(ctx context.Context, hint string) string {
	return s.bridge.run(ctx, ports.AppleScript, safariTextScript)
}
