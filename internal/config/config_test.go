package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/0xcro3dile/boost-go/internal/domain/ports"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"OPENAI_API_KEY", "BOOST_MODEL", "BOOST_PROVIDER", "OLLAMA_HOST", "BOOST_LISTEN"} {
		t.Setenv(k, "")
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, DefaultConfig(), cfg)
	assert.Equal(t, 120*time.Second, cfg.StreamTimeout())
	assert.Equal(t, 5*time.Second, cfg.ScriptTimeout())
	assert.Equal(t, 10*time.Second, cfg.ContentTimeout())
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
listen: 127.0.0.1:9000
llm:
  provider: ollama
  model: llama3.2
capture:
  content_timeout: 3s
  denylist: [Raycast]
system_prompt: Answer like a pirate.
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.Listen)
	assert.Equal(t, ProviderOllama, cfg.LLM.Provider)
	assert.Equal(t, "llama3.2", cfg.LLM.Model)
	assert.Equal(t, 3*time.Second, cfg.ContentTimeout())
	assert.Equal(t, []string{"Raycast"}, cfg.Capture.Denylist)
	assert.Equal(t, "Answer like a pirate.", cfg.SystemPrompt)
	// Untouched fields keep defaults.
	assert.Equal(t, "http://localhost:11434", cfg.LLM.OllamaBaseURL)
	assert.Equal(t, 32000, cfg.Capture.MaxContentChars)
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("BOOST_MODEL", "gpt-4o-mini")
	t.Setenv("BOOST_LISTEN", "127.0.0.1:1234")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("llm:\n  api_key: sk-file\n  model: gpt-4o\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sk-env", cfg.LLM.APIKey)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, "127.0.0.1:1234", cfg.Listen)
}

func TestEnvOverrides_Provider(t *testing.T) {
	clearEnv(t)
	t.Setenv("BOOST_PROVIDER", "ollama")
	t.Setenv("OLLAMA_HOST", "http://gpu-box:11434")

	cfg := DefaultConfig()
	cfg.applyEnvOverrides()

	assert.Equal(t, ProviderOllama, cfg.LLM.Provider)
	assert.Equal(t, "http://gpu-box:11434", cfg.LLM.OllamaBaseURL)
}

func TestLoad_InvalidYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("llm: [unterminated"), 0644))

	_, err := Load(path)
	assert.ErrorContains(t, err, "failed to parse config")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"unknown provider", func(c *Config) { c.LLM.Provider = "anthropic" }, "unknown llm provider"},
		{"empty listen", func(c *Config) { c.Listen = "" }, "listen address"},
		{"negative clip", func(c *Config) { c.Capture.MaxContentChars = -1 }, "max_content_chars"},
		{"zero timeout", func(c *Config) { c.LLM.StreamTimeout = "0s" }, "llm.stream_timeout"},
		{"unparsable timeout", func(c *Config) { c.Capture.ScriptTimeout = "soon" }, "capture.script_timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.want)
		})
	}

	assert.NoError(t, DefaultConfig().Validate())
}

func TestSaveThenLoad(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.SystemPrompt = "Be brief."
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

type fakeWatcher struct {
	events chan ports.FileEvent
	dir    string
}

func (f *fakeWatcher) Watch(ctx context.Context, dir string) (<-chan ports.FileEvent, error) {
	f.dir = dir
	return f.events, nil
}

func (f *fakeWatcher) Stop() error { return nil }

func TestWatch_ReloadsOnChange(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("llm:\n  model: first\n"), 0644))

	watcher := &fakeWatcher{events: make(chan ports.FileEvent, 4)}
	applied := make(chan *Config, 4)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, watcher, zaptest.NewLogger(t), func(c *Config) { applied <- c })
	}()

	require.NoError(t, os.WriteFile(path, []byte("llm:\n  model: second\n"), 0644))
	watcher.events <- ports.FileEvent{Path: filepath.Join(dir, "other.yaml"), Operation: ports.FileModified}
	watcher.events <- ports.FileEvent{Path: path, Operation: ports.FileModified}
	watcher.events <- ports.FileEvent{Path: path, Operation: ports.FileModified}

	select {
	case cfg := <-applied:
		assert.Equal(t, "second", cfg.LLM.Model)
	case <-time.After(5 * time.Second):
		t.Fatal("config was not reloaded")
	}
	assert.Equal(t, dir, watcher.dir)

	// Invalid content is skipped.
	require.NoError(t, os.WriteFile(path, []byte("llm:\n  provider: nope\n"), 0644))
	watcher.events <- ports.FileEvent{Path: path, Operation: ports.FileModified}
	select {
	case cfg := <-applied:
		t.Fatalf("invalid config applied: %+v", cfg)
	case <-time.After(3 * reloadDelay):
	}

	cancel()
	require.NoError(t, <-done)
}
