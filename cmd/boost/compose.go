package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/0xcro3dile/boost-go/internal/adapters/llm"
	"github.com/0xcro3dile/boost-go/internal/adapters/macos"
	"github.com/0xcro3dile/boost-go/internal/adapters/providers"
	"github.com/0xcro3dile/boost-go/internal/adapters/scripting"
	"github.com/0xcro3dile/boost-go/internal/adapters/settings"
	"github.com/0xcro3dile/boost-go/internal/config"
	"github.com/0xcro3dile/boost-go/internal/domain/ports"
	"github.com/0xcro3dile/boost-go/internal/domain/usecases"
)

// app holds the composed object graph.
type app struct {
	settings     ports.SettingsStore
	streamer     ports.ChatStreamer
	openai       *llm.OpenAIStreamer // nil unless the openai backend is active
	registry     *providers.Registry
	displays     *macos.DisplaySource
	selection    *macos.SelectionReader
	capture      *usecases.CaptureUseCase
	conversation *usecases.Conversation
	panel        *usecases.PanelUseCase
	logger       *zap.Logger
}

func openSettings(c *config.Config, persist bool) (ports.SettingsStore, error) {
	if !persist {
		return settings.NewMemoryStore(nil), nil
	}
	store, err := settings.NewSQLiteStore(c.SettingsDB)
	if err != nil {
		return nil, fmt.Errorf("opening settings: %w", err)
	}
	return store, nil
}

// withSettings returns a copy of c with persisted settings applied on top.
func withSettings(ctx context.Context, c *config.Config, store ports.SettingsStore) (*config.Config, error) {
	out := *c
	all, err := store.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading settings: %w", err)
	}
	if v := all[ports.SettingAPIKey]; v != "" {
		out.LLM.APIKey = v
	}
	if v := all[ports.SettingSystemPrompt]; v != "" {
		out.SystemPrompt = v
	}
	if v := all[ports.SettingModel]; v != "" {
		out.LLM.Model = v
	}
	return &out, nil
}

func newStreamer(c *config.Config, logger *zap.Logger) (ports.ChatStreamer, *llm.OpenAIStreamer) {
	if c.LLM.Provider == config.ProviderOllama {
		return llm.NewOllamaStreamer(c.LLM.OllamaBaseURL, c.LLM.Model, logger), nil
	}
	oa := llm.NewOpenAIStreamer(c.LLM.OpenAIBaseURL, c.LLM.APIKey, c.LLM.Model, logger)
	return oa, oa
}

func newApp(c *config.Config, store ports.SettingsStore, logger *zap.Logger) *app {
	commands := scripting.NewExecRunner(c.ScriptTimeout(), logger)
	scripts := scripting.NewOsaScriptRunner(commands)
	streamer, oa := newStreamer(c, logger)

	displays := macos.NewDisplaySource(scripts)
	selection := macos.NewSelectionReader(scripts)
	registry := providers.NewDefaultRegistry(scripts, commands, logger)
	capture := usecases.NewCaptureUseCase(
		macos.NewWindowSource(scripts),
		registry,
		usecases.CaptureOptions{
			ContentTimeout:  c.ContentTimeout(),
			MaxContentChars: c.Capture.MaxContentChars,
			Denylist:        c.Capture.Denylist,
		},
		logger,
	)
	conversation := usecases.NewConversation(streamer, usecases.ConversationOptions{
		Model:         c.LLM.Model,
		Preamble:      c.SystemPrompt,
		StreamTimeout: c.StreamTimeout(),
	}, logger)
	panel := usecases.NewPanelUseCase(
		capture,
		conversation,
		displays,
		selection,
		macos.NewScreenshotter(commands, c.ScreenshotDir),
		logger,
	)

	return &app{
		settings:     store,
		streamer:     streamer,
		openai:       oa,
		registry:     registry,
		displays:     displays,
		selection:    selection,
		capture:      capture,
		conversation: conversation,
		panel:        panel,
		logger:       logger,
	}
}

// applySetting pushes one changed setting into the live object graph.
func (a *app) applySetting(key, value string) {
	switch key {
	case ports.SettingAPIKey:
		if a.openai != nil {
			a.openai.SetAPIKey(value)
		}
	case ports.SettingSystemPrompt:
		a.conversation.SetPreamble(value)
	case ports.SettingModel:
		a.conversation.SetModel(value)
	default:
		a.logger.Debug("Setting stored without live effect", zap.String("key", key))
		return
	}
	a.logger.Info("Setting applied", zap.String("key", key))
}

// applyConfig pushes a reloaded config into the live object graph.
func (a *app) applyConfig(c *config.Config) {
	a.conversation.SetModel(c.LLM.Model)
	a.conversation.SetPreamble(c.SystemPrompt)
	if a.openai != nil && c.LLM.APIKey != "" {
		a.openai.SetAPIKey(c.LLM.APIKey)
	}
	if a.streamer.Name() != c.LLM.Provider {
		a.logger.Warn("Changing the llm provider requires a restart",
			zap.String("active", a.streamer.Name()),
			zap.String("configured", c.LLM.Provider))
	}
}
