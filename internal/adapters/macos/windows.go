// Package macos implements the window, display, selection and screenshot
// ports on top of the scripting bridge.
package macos

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/0xcro3dile/boost-go/internal/domain/entities"
	"github.com/0xcro3dile/boost-go/internal/domain/ports"
)

// CGWindowListCopyWindowInfo returns windows front-to-back.
const windowListScript = `ObjC.import('CoreGraphics');
var opts = $.kCGWindowListOptionOnScreenOnly | $.kCGWindowListExcludeDesktopElements;
var list = ObjC.castRefToObject($.CGWindowListCopyWindowInfo(opts, $.kCGNullWindowID));
JSON.stringify(ObjC.deepUnwrap(list));`

const runningAppsScript = `ObjC.import('AppKit');
var apps = $.NSWorkspace.sharedWorkspace.runningApplications;
var out = [];
for (var i = 0; i < apps.count; i++) {
	var a = apps.objectAtIndex(i);
	out.push({
		pid: a.processIdentifier,
		localized_name: ObjC.unwrap(a.localizedName) || '',
		bundle_id: ObjC.unwrap(a.bundleIdentifier) || '',
		bundle_url: a.bundleURL.isNil() ? '' : ObjC.unwrap(a.bundleURL.path)
	});
}
JSON.stringify(out);`

// windowInfo mirrors one CGWindowList dictionary.
type windowInfo struct {
	Name      string  `json:"kCGWindowName"`
	OwnerName string  `json:"kCGWindowOwnerName"`
	OnScreen  bool    `json:"kCGWindowIsOnscreen"`
	Alpha     float64 `json:"kCGWindowAlpha"`
	OwnerPID  int     `json:"kCGWindowOwnerPID"`
	Bounds    struct {
		X      float64 `json:"X"`
		Y      float64 `json:"Y"`
		Width  float64 `json:"Width"`
		Height float64 `json:"Height"`
	} `json:"kCGWindowBounds"`
}

func (w windowInfo) snapshot() entities.WindowSnapshot {
	return entities.WindowSnapshot{
		OwnerName: w.OwnerName,
		OwnerPID:  w.OwnerPID,
		Title:     w.Name,
		OnScreen:  w.OnScreen,
		Alpha:     w.Alpha,
		Bounds: entities.Rect{
			X:      w.Bounds.X,
			Y:      w.Bounds.Y,
			Width:  w.Bounds.Width,
			Height: w.Bounds.Height,
		},
	}
}

// WindowSource implements ports.WindowSource.
type WindowSource struct {
	scripts ports.ScriptRunner
}

// NewWindowSource creates a WindowSource.
func NewWindowSource(scripts ports.ScriptRunner) *WindowSource {
	return &WindowSource{scripts: scripts}
}

// ListWindows returns on-screen windows in front-to-back order.
func (s *WindowSource) ListWindows(ctx context.Context) ([]entities.WindowSnapshot, error) {
	var infos []windowInfo
	if err := runJSON(ctx, s.scripts, windowListScript, &infos); err != nil {
		return nil, fmt.Errorf("listing windows: %w", err)
	}
	windows := make([]entities.WindowSnapshot, 0, len(infos))
	for _, info := range infos {
		windows = append(windows, info.snapshot())
	}
	return windows, nil
}

// RunningApplications returns the workspace's running applications.
func (s *WindowSource) RunningApplications(ctx context.Context) ([]entities.RunningApplication, error) {
	var apps []entities.RunningApplication
	if err := runJSON(ctx, s.scripts, runningAppsScript, &apps); err != nil {
		return nil, fmt.Errorf("listing applications: %w", err)
	}
	return apps, nil
}

func runJSON(ctx context.Context, scripts ports.ScriptRunner, source string, v any) error {
	out, err := scripts.Run(ctx, ports.Script{Language: ports.JavaScript, Source: source})
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(out), v); err != nil {
		return fmt.Errorf("decoding bridge output: %w", err)
	}
	return nil
}
