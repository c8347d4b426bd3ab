package usecases

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/0xcro3dile/boost-go/internal/domain/entities"
	"github.com/0xcro3dile/boost-go/internal/domain/ports"
)

// PanelUseCase is what the keyboard shortcut drives: it reads the selection,
// captures context and prepares the conversation.
type PanelUseCase struct {
	capture      *CaptureUseCase
	conversation *Conversation
	displays     ports.DisplaySource
	selection    ports.SelectionReader
	screenshots  ports.Screenshotter
	logger       *zap.Logger

	// mu orders Show against late content so an old capture never
	// updates the prompt after a newer Show.
	mu sync.Mutex
}

// NewPanelUseCase wires the panel and subscribes to capture results.
// screenshots may be nil when screenshots are not supported.
func NewPanelUseCase(
	capture *CaptureUseCase,
	conversation *Conversation,
	displays ports.DisplaySource,
	selection ports.SelectionReader,
	screenshots ports.Screenshotter,
	logger *zap.Logger,
) *PanelUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &PanelUseCase{
		capture:      capture,
		conversation: conversation,
		displays:     displays,
		selection:    selection,
		screenshots:  screenshots,
		logger:       logger,
	}
	capture.OnContentResolved(p.contentResolved)
	return p
}

// Show prepares a fresh chat session. With withContext the window under the
// cursor is captured; otherwise only the highlighted text is used.
func (p *PanelUseCase) Show(ctx context.Context, withContext bool) entities.ContextualSnapshot {
	p.mu.Lock()
	defer p.mu.Unlock()

	highlighted, err := p.selection.SelectedText(ctx)
	if err != nil {
		p.logger.Debug("Reading selected text failed", zap.Error(err))
		highlighted = ""
	}

	if !withContext {
		snap := p.capture.Clear(highlighted)
		p.conversation.Setup("", highlighted)
		return snap
	}

	cursor, err := p.displays.CursorPosition(ctx)
	if err != nil {
		p.logger.Debug("Reading cursor position failed", zap.Error(err))
		snap := p.capture.Clear(highlighted)
		p.conversation.Setup("", highlighted)
		return snap
	}

	snap := p.capture.Capture(ctx, cursor, highlighted)
	p.conversation.Setup(snap.Content, snap.Highlighted)
	p.logger.Info("Panel shown",
		zap.Uint64("generation", snap.Generation),
		zap.String("title", snap.Title),
		zap.Bool("pending", snap.Pending))
	return snap
}

func (p *PanelUseCase) contentResolved(snap entities.ContextualSnapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if snap.Generation != p.capture.Generation() {
		return
	}
	p.conversation.UpdateContext(snap.Content, snap.Highlighted)
}

// Screenshot captures the display under the cursor and returns the image path.
func (p *PanelUseCase) Screenshot(ctx context.Context) (string, error) {
	if p.screenshots == nil {
		return "", fmt.Errorf("screenshots not supported")
	}
	displays, err := p.displays.Displays(ctx)
	if err != nil {
		return "", fmt.Errorf("listing displays: %w", err)
	}
	cursor, err := p.displays.CursorPosition(ctx)
	if err != nil {
		p.logger.Debug("Reading cursor position failed, using primary display", zap.Error(err))
		cursor = entities.Point{X: -1, Y: -1}
	}
	display := p.capture.Locator().ResolveDisplay(displays, cursor)
	return p.screenshots.Capture(ctx, display)
}

// Conversation returns the chat state machine.
func (p *PanelUseCase) Conversation() *Conversation {
	return p.conversation
}

// Context returns the current contextual snapshot.
func (p *PanelUseCase) Context() entities.ContextualSnapshot {
	return p.capture.Snapshot()
}
