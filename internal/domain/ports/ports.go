// Package ports defines interfaces for external dependencies.
// Usecases depend on these abstractions; adapters implement them.
package ports

import (
	"context"

	"github.com/0xcro3dile/boost-go/internal/domain/entities"
)

// WindowSource enumerates on-screen windows and running applications.
type WindowSource interface {
	// ListWindows returns on-screen windows ordered front-to-back.
	ListWindows(ctx context.Context) ([]entities.WindowSnapshot, error)

	// RunningApplications returns the live process list.
	RunningApplications(ctx context.Context) ([]entities.RunningApplication, error)
}

// DisplaySource reports physical displays and the pointer position.
type DisplaySource interface {
	Displays(ctx context.Context) ([]entities.Display, error)
	CursorPosition(ctx context.Context) (entities.Point, error)
}

// SelectionReader returns the text highlighted in the frontmost application.
type SelectionReader interface {
	SelectedText(ctx context.Context) (string, error)
}

// Screenshotter captures a display into an image file and returns its path.
type Screenshotter interface {
	Capture(ctx context.Context, display entities.Display) (string, error)
}

// ScriptLanguage selects the automation language understood by the bridge.
type ScriptLanguage string

const (
	AppleScript ScriptLanguage = "AppleScript"
	JavaScript  ScriptLanguage = "JavaScript"
)

// Script is one unit of work for the scripting bridge.
type Script struct {
	Language ScriptLanguage
	Source   string
}

// ScriptRunner drives another application out-of-process.
// Calls are slow (hundreds of milliseconds) and may fail at any time.
type ScriptRunner interface {
	Run(ctx context.Context, script Script) (string, error)
}

// Command is a subprocess invocation. Args are passed verbatim, never through a shell.
type Command struct {
	Name  string
	Args  []string
	Stdin string
}

// CommandRunner executes subprocesses.
type CommandRunner interface {
	// Run returns trimmed stdout, or an error on start failure or non-zero exit.
	Run(ctx context.Context, cmd Command) (string, error)
}

// ContentProvider extracts context from one application.
// Implementations never return errors: every failure degrades to "".
type ContentProvider interface {
	// ContextualText is a short machine-usable token for what is open (URL, file name).
	ContextualText(ctx context.Context) string

	// DisplayText is a short human-readable label (page or project title).
	DisplayText(ctx context.Context) string

	// ContextualContent returns the full body of the open document.
	ContextualContent(ctx context.Context, hint string) string
}

// ProviderRegistry maps an application bundle identifier to its provider.
type ProviderRegistry interface {
	Lookup(bundleID string) (ContentProvider, bool)
}

// StreamToken is a single incremental delta in a streaming completion.
// A token with Done or Error set is the last one on its channel.
type StreamToken struct {
	Content string
	Done    bool
	Error   error
}

// ChatStreamer opens streaming chat completions.
type ChatStreamer interface {
	// StreamCompletion returns a channel of tokens in upstream emission order.
	// Cancelling ctx stops delivery.
	StreamCompletion(ctx context.Context, req entities.ChatRequest) (<-chan StreamToken, error)

	// Name identifies the backend for logs.
	Name() string
}

// SettingsStore is the flat key-value store behind user preferences.
type SettingsStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	All(ctx context.Context) (map[string]string, error)
	Delete(ctx context.Context, key string) error
	Close() error
}

// Well-known settings keys.
const (
	SettingAPIKey       = "open_ai_key"
	SettingSystemPrompt = "system_prompt"
	SettingShowMenuBar  = "show_menu_bar"
	SettingModel        = "model"
)

// FileWatcher monitors a directory for changes.
type FileWatcher interface {
	// Watch starts monitoring the directory and emits events.
	Watch(ctx context.Context, dir string) (<-chan FileEvent, error)

	// Stop stops the watcher.
	Stop() error
}

// FileEvent represents a file system change.
type FileEvent struct {
	Path      string
	Operation FileOperation
}

// FileOperation is the type of file change.
type FileOperation int

const (
	FileCreated FileOperation = iota
	FileModified
	FileDeleted
)
