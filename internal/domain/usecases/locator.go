// Package usecases contains the application rules: locating the window under
// the cursor, aggregating context from providers, the conversation state
// machine and the panel controller tying them together.
// They depend on ports only, never on macOS or HTTP directly.
package usecases

import (
	"github.com/0xcro3dile/boost-go/internal/domain/entities"
)

// DefaultDenylist names window owners that are never treated as context:
// OS chrome, screenshot tools and our own overlay.
var DefaultDenylist = []string{
	"Window Server",
	"Screenshot",
	"axAuditService",
	"CleanShot X",
	"Dock",
	"Control Center",
	"Notification Center",
	"Boost",
}

// Locator resolves the window and display under a pointer position.
type Locator struct {
	denied map[string]struct{}
}

// NewLocator creates a Locator using DefaultDenylist plus extra owner names.
func NewLocator(extra ...string) *Locator {
	denied := make(map[string]struct{}, len(DefaultDenylist)+len(extra))
	for _, name := range DefaultDenylist {
		denied[name] = struct{}{}
	}
	for _, name := range extra {
		if name != "" {
			denied[name] = struct{}{}
		}
	}
	return &Locator{denied: denied}
}

// Denied reports whether windows owned by name are filtered out.
func (l *Locator) Denied(name string) bool {
	_, ok := l.denied[name]
	return ok
}

// ResolveForegroundWindow returns the front-most visible, non-denied window
// containing cursor. windows must be ordered front-to-back.
func (l *Locator) ResolveForegroundWindow(windows []entities.WindowSnapshot, cursor entities.Point) (entities.WindowSnapshot, bool) {
	for _, w := range windows {
		if !w.Visible() || l.Denied(w.OwnerName) {
			continue
		}
		if w.Bounds.Contains(cursor) {
			return w, true
		}
	}
	return entities.WindowSnapshot{}, false
}

// ResolveDisplay returns the display whose frame contains cursor, falling back
// to the primary display, then to the first listed one.
func (l *Locator) ResolveDisplay(displays []entities.Display, cursor entities.Point) entities.Display {
	for _, d := range displays {
		if d.Frame.Contains(cursor) {
			return d
		}
	}
	for _, d := range displays {
		if d.Primary() {
			return d
		}
	}
	if len(displays) > 0 {
		return displays[0]
	}
	return entities.Display{}
}

// MatchApplication finds the running application owning the window.
func MatchApplication(apps []entities.RunningApplication, w entities.WindowSnapshot) (entities.RunningApplication, bool) {
	for _, app := range apps {
		if app.PID == w.OwnerPID {
			return app, true
		}
	}
	return entities.RunningApplication{}, false
}
