// Package providers holds the per-application content extraction strategies
// and the registry that maps bundle identifiers to them.
package providers

import (
	"context"
	"maps"
	"slices"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/0xcro3dile/boost-go/internal/domain/ports"
)

// Bundle identifiers with built-in providers.
const (
	SafariBundleID = "com.apple.Safari"
	XcodeBundleID  = "com.apple.dt.Xcode"
	ChromeBundleID = "com.google.Chrome"
)

// Registry implements ports.ProviderRegistry.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]ports.ContentProvider
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]ports.ContentProvider)}
}

// NewDefaultRegistry creates a registry with the Safari, Xcode and Chrome providers.
func NewDefaultRegistry(scripts ports.ScriptRunner, commands ports.CommandRunner, logger *zap.Logger) *Registry {
	r := NewRegistry()
	r.Register(SafariBundleID, NewSafari(scripts, logger))
	r.Register(XcodeBundleID, NewXcode(scripts, commands, logger))
	r.Register(ChromeBundleID, NewChrome(scripts, logger))
	return r
}

// Register maps bundleID to p, replacing any previous entry.
func (r *Registry) Register(bundleID string, p ports.ContentProvider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[bundleID] = p
}

// Lookup returns the provider for bundleID.
func (r *Registry) Lookup(bundleID string) (ports.ContentProvider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[bundleID]
	return p, ok
}

// BundleIDs lists the registered identifiers in sorted order.
func (r *Registry) BundleIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.providers))
}

// bridge wraps a ScriptRunner so every failure and sentinel reply becomes "".
type bridge struct {
	scripts   ports.ScriptRunner
	logger    *zap.Logger
	sentinels []string
}

func newBridge(scripts ports.ScriptRunner, logger *zap.Logger, app string, sentinels ...string) bridge {
	if logger == nil {
		logger = zap.NewNop()
	}
	return bridge{scripts: scripts, logger: logger.With(zap.String("provider", app)), sentinels: sentinels}
}

func (b bridge) run(ctx context.Context, lang ports.ScriptLanguage, source string) string {
	out, err := b.scripts.Run(ctx, ports.Script{Language: lang, Source: source})
	if err != nil {
		b.logger.Debug("Bridge call failed", zap.Error(err))
		return ""
	}
	out = strings.TrimSpace(out)
	for _, s := range b.sentinels {
		if out == s {
			return ""
		}
	}
	// osascript prints "missing value" for AppleScript's null.
	if out == "missing value" {
		return ""
	}
	return out
}
