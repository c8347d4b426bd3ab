// Package entities contains core domain entities.
// These are plain data types with no knowledge of macOS, osascript or HTTP.
package entities

// Point is a position in global screen coordinates (origin top-left of the primary display).
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Rect is an axis-aligned rectangle in global screen coordinates.
type Rect struct {
	X      float64 `json:"x" yaml:"x"`
	Y      float64 `json:"y" yaml:"y"`
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// Contains reports whether p lies inside r. The min edges are inclusive and the
// max edges exclusive, so adjacent rectangles never both contain a point.
func (r Rect) Contains(p Point) bool {
	if r.Width <= 0 || r.Height <= 0 {
		return false
	}
	return p.X >= r.X && p.X < r.X+r.Width &&
		p.Y >= r.Y && p.Y < r.Y+r.Height
}

// WindowSnapshot is an immutable record of one on-screen window at capture time.
type WindowSnapshot struct {
	OwnerName string  `json:"owner_name" yaml:"owner_name"`
	OwnerPID  int     `json:"owner_pid" yaml:"owner_pid"`
	Title     string  `json:"title,omitempty" yaml:"title,omitempty"`
	OnScreen  bool    `json:"onscreen" yaml:"onscreen"`
	Alpha     float64 `json:"alpha" yaml:"alpha"`
	Bounds    Rect    `json:"bounds" yaml:"bounds"`
	// BundleURL is filled after the owning application has been matched.
	BundleURL string `json:"bundle_url,omitempty" yaml:"bundle_url,omitempty"`
}

// Visible reports whether the window can ever be selected as the window under the cursor.
func (w WindowSnapshot) Visible() bool {
	return w.OnScreen && w.Alpha > 0 && w.OwnerName != ""
}

// RunningApplication is a live process handle as reported by the workspace.
type RunningApplication struct {
	PID           int    `json:"pid" yaml:"pid"`
	LocalizedName string `json:"localized_name,omitempty" yaml:"localized_name,omitempty"`
	BundleID      string `json:"bundle_id,omitempty" yaml:"bundle_id,omitempty"`
	BundleURL     string `json:"bundle_url,omitempty" yaml:"bundle_url,omitempty"`
}

// Display is one physical screen.
type Display struct {
	ID    uint32 `json:"id" yaml:"id"`
	Index int    `json:"index" yaml:"index"` // 0 is the primary display
	Frame Rect   `json:"frame" yaml:"frame"`
}

// Primary reports whether d is the display carrying the menu bar.
func (d Display) Primary() bool {
	return d.Index == 0
}

// ContextualSnapshot is the captured context for one chat session.
// It is owned by exactly one capture at a time; Content is only final once
// Pending is false.
type ContextualSnapshot struct {
	Generation  uint64              `json:"generation" yaml:"generation"`
	App         *RunningApplication `json:"app,omitempty" yaml:"app,omitempty"`
	Window      *WindowSnapshot     `json:"window,omitempty" yaml:"window,omitempty"`
	Title       string              `json:"title,omitempty" yaml:"title,omitempty"`
	Subtitle    string              `json:"subtitle,omitempty" yaml:"subtitle,omitempty"`
	Content     string              `json:"content,omitempty" yaml:"content,omitempty"`
	Highlighted string              `json:"highlighted,omitempty" yaml:"highlighted,omitempty"`
	Pending     bool                `json:"pending" yaml:"pending"`
}

// Reset clears every captured field. The generation counter is kept.
func (s *ContextualSnapshot) Reset() {
	*s = ContextualSnapshot{Generation: s.Generation}
}

// Empty reports whether nothing has been captured.
func (s ContextualSnapshot) Empty() bool {
	return s.App == nil && s.Window == nil && s.Title == "" && s.Subtitle == "" &&
		s.Content == "" && s.Highlighted == "" && !s.Pending
}
