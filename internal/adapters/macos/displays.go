package macos

import (
	"context"
	"fmt"

	"github.com/0xcro3dile/boost-go/internal/domain/entities"
	"github.com/0xcro3dile/boost-go/internal/domain/ports"
)

// NSScreen frames are bottom-left based; they are flipped against the
// primary screen so they share CGWindow's top-left coordinates.
const displaysScript = `ObjC.import('AppKit');
var screens = $.NSScreen.screens;
var primary = screens.objectAtIndex(0).frame;
var out = [];
for (var i = 0; i < screens.count; i++) {
	var s = screens.objectAtIndex(i);
	var f = s.frame;
	out.push({
		id: ObjC.unwrap(s.deviceDescription.objectForKey('NSScreenNumber')),
		index: i,
		frame: {
			x: f.origin.x,
			y: primary.size.height - f.origin.y - f.size.height,
			width: f.size.width,
			height: f.size.height
		}
	});
}
JSON.stringify(out);`

const cursorScript = `ObjC.import('CoreGraphics');
var p = $.CGEventGetLocation($.CGEventCreate(null));
JSON.stringify({x: p.x, y: p.y});`

// DisplaySource implements ports.DisplaySource.
type DisplaySource struct {
	scripts ports.ScriptRunner
}

// NewDisplaySource creates a DisplaySource.
func NewDisplaySource(scripts ports.ScriptRunner) *DisplaySource {
	return &DisplaySource{scripts: scripts}
}

// Displays returns all screens, primary first.
func (s *DisplaySource) Displays(ctx context.Context) ([]entities.Display, error) {
	var displays []entities.Display
	if err := runJSON(ctx, s.scripts, displaysScript, &displays); err != nil {
		return nil, fmt.Errorf("listing displays: %w", err)
	}
	return displays, nil
}

// CursorPosition returns the mouse location in global top-left coordinates.
func (s *DisplaySource) CursorPosition(ctx context.Context) (entities.Point, error) {
	var p entities.Point
	if err := runJSON(ctx, s.scripts, cursorScript, &p); err != nil {
		return entities.Point{}, fmt.Errorf("reading cursor: %w", err)
	}
	return p, nil
}
