package macos

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"

	"github.com/0xcro3dile/boost-go/internal/domain/entities"
	"github.com/0xcro3dile/boost-go/internal/domain/ports"
)

// Screenshotter implements ports.Screenshotter with screencapture(1).
type Screenshotter struct {
	commands ports.CommandRunner
	dir      string
}

// NewScreenshotter writes images into dir, or the temp dir when dir is empty.
func NewScreenshotter(commands ports.CommandRunner, dir string) *Screenshotter {
	if dir == "" {
		dir = os.TempDir()
	}
	return &Screenshotter{commands: commands, dir: dir}
}

// Capture writes a PNG of display and returns its path.
func (s *Screenshotter) Capture(ctx context.Context, display entities.Display) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("creating screenshot dir: %w", err)
	}
	path := filepath.Join(s.dir, "boost-"+uuid.NewString()+".png")

	// screencapture numbers displays from 1 in NSScreen order.
	args := []string{"-x", "-D", strconv.Itoa(display.Index + 1), path}
	if _, err := s.commands.Run(ctx, ports.Command{Name: "screencapture", Args: args}); err != nil {
		return "", fmt.Errorf("capturing display %d: %w", display.ID, err)
	}
	return path, nil
}
