package usecases

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/0xcro3dile/boost-go/internal/domain/entities"
	"github.com/0xcro3dile/boost-go/internal/domain/ports"
)

const fallbackTitle = "Application"

// CaptureOptions tunes the context aggregator.
type CaptureOptions struct {
	// ContentTimeout bounds the asynchronous full-content extraction.
	ContentTimeout time.Duration
	// MaxContentChars clips captured content. Zero disables clipping.
	MaxContentChars int
	// Denylist adds window owner names to DefaultDenylist.
	Denylist []string
}

// CaptureUseCase aggregates locator, registry and provider calls into one
// ContextualSnapshot. Every capture bumps a generation counter; asynchronous
// results are applied only while their generation is still current.
type CaptureUseCase struct {
	windows  ports.WindowSource
	registry ports.ProviderRegistry
	locator  *Locator
	opts     CaptureOptions
	logger   *zap.Logger

	mu         sync.Mutex
	snapshot   entities.ContextualSnapshot
	cancelPrev context.CancelFunc
	onResolved func(entities.ContextualSnapshot)

	wg sync.WaitGroup
}

// NewCaptureUseCase creates a CaptureUseCase with injected dependencies.
func NewCaptureUseCase(windows ports.WindowSource, registry ports.ProviderRegistry, opts CaptureOptions, logger *zap.Logger) *CaptureUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.ContentTimeout <= 0 {
		opts.ContentTimeout = 10 * time.Second
	}
	return &CaptureUseCase{
		windows:  windows,
		registry: registry,
		locator:  NewLocator(opts.Denylist...),
		opts:     opts,
		logger:   logger,
	}
}

// Locator exposes the window/display locator used by captures.
func (uc *CaptureUseCase) Locator() *Locator {
	return uc.locator
}

// OnContentResolved registers fn to run when a capture's full content lands.
// fn is never called for superseded captures.
func (uc *CaptureUseCase) OnContentResolved(fn func(entities.ContextualSnapshot)) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	uc.onResolved = fn
}

// Capture resets the snapshot and fills it for the window under cursor.
// Title and subtitle are set before returning; content is fetched in the
// background and the returned snapshot has Pending set while it is.
// Capture never fails: each missing piece leaves its field empty.
func (uc *CaptureUseCase) Capture(ctx context.Context, cursor entities.Point, highlighted string) entities.ContextualSnapshot {
	uc.mu.Lock()
	if uc.cancelPrev != nil {
		uc.cancelPrev()
		uc.cancelPrev = nil
	}
	uc.snapshot.Reset()
	uc.snapshot.Generation++
	gen := uc.snapshot.Generation
	uc.snapshot.Highlighted = highlighted
	uc.mu.Unlock()

	log := uc.logger.With(zap.Uint64("generation", gen))

	windows, err := uc.windows.ListWindows(ctx)
	if err != nil {
		log.Debug("Window enumeration failed", zap.Error(err))
		return uc.Snapshot()
	}
	window, ok := uc.locator.ResolveForegroundWindow(windows, cursor)
	if !ok {
		log.Debug("No window under cursor", zap.Float64("x", cursor.X), zap.Float64("y", cursor.Y))
		return uc.Snapshot()
	}

	apps, err := uc.windows.RunningApplications(ctx)
	if err != nil {
		log.Debug("Listing running applications failed", zap.Error(err))
	}
	app, matched := MatchApplication(apps, window)
	if matched {
		window.BundleURL = app.BundleURL
	}

	var provider ports.ContentProvider
	if matched && app.BundleID != "" && uc.registry != nil {
		provider, _ = uc.registry.Lookup(app.BundleID)
	}

	if provider == nil {
		title := app.LocalizedName
		if title == "" {
			title = window.OwnerName
		}
		if title == "" {
			title = fallbackTitle
		}
		uc.update(gen, func(s *entities.ContextualSnapshot) {
			s.Window = &window
			if matched {
				s.App = &app
			}
			s.Title = title
		})
		log.Debug("Captured window without provider", zap.String("owner", window.OwnerName), zap.String("bundle_id", app.BundleID))
		return uc.Snapshot()
	}

	var text, display string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		text = provider.ContextualText(gctx)
		return nil
	})
	g.Go(func() error {
		display = provider.DisplayText(gctx)
		return nil
	})
	_ = g.Wait()

	title := display
	if title == "" {
		title = app.LocalizedName
	}

	contentCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), uc.opts.ContentTimeout)
	applied := uc.update(gen, func(s *entities.ContextualSnapshot) {
		s.Window = &window
		s.App = &app
		s.Title = title
		s.Subtitle = text
		s.Pending = true
		uc.cancelPrev = cancel
	})
	if !applied {
		cancel()
		log.Debug("Capture superseded before content fetch")
		return uc.Snapshot()
	}

	log.Debug("Fetching contextual content", zap.String("bundle_id", app.BundleID), zap.String("hint", text))

	uc.wg.Add(1)
	go func() {
		defer uc.wg.Done()
		defer cancel()

		content := clipText(provider.ContextualContent(contentCtx, text), uc.opts.MaxContentChars)

		var snap entities.ContextualSnapshot
		var notify func(entities.ContextualSnapshot)
		ok := uc.update(gen, func(s *entities.ContextualSnapshot) {
			s.Content = content
			s.Pending = false
			snap = *s
			notify = uc.onResolved
		})
		if !ok {
			log.Debug("Discarding stale capture result")
			return
		}
		log.Debug("Contextual content resolved", zap.Int("chars", len(content)))
		if notify != nil {
			notify(snap)
		}
	}()

	return uc.Snapshot()
}

// update applies fn only if gen is still the current generation.
func (uc *CaptureUseCase) update(gen uint64, fn func(*entities.ContextualSnapshot)) bool {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	if uc.snapshot.Generation != gen {
		return false
	}
	fn(&uc.snapshot)
	return true
}

// Clear resets the snapshot and supersedes any in-flight capture.
func (uc *CaptureUseCase) Clear(highlighted string) entities.ContextualSnapshot {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	if uc.cancelPrev != nil {
		uc.cancelPrev()
		uc.cancelPrev = nil
	}
	uc.snapshot.Reset()
	uc.snapshot.Generation++
	uc.snapshot.Highlighted = highlighted
	return uc.snapshot
}

// Snapshot returns a copy of the current snapshot.
func (uc *CaptureUseCase) Snapshot() entities.ContextualSnapshot {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.snapshot
}

// Generation returns the current capture generation.
func (uc *CaptureUseCase) Generation() uint64 {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.snapshot.Generation
}

// Wait blocks until every background content fetch has returned.
func (uc *CaptureUseCase) Wait() {
	uc.wg.Wait()
}
