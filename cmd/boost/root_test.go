package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes the root command with args and returns stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	err := rootCmd.Execute()
	return stdout.String(), err
}

func tempConfig(t *testing.T) string {
	t.Helper()
	for _, k := range []string{"OPENAI_API_KEY", "BOOST_MODEL", "BOOST_PROVIDER", "OLLAMA_HOST", "BOOST_LISTEN"} {
		t.Setenv(k, "")
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := "settings_db: " + filepath.Join(dir, "settings.db") + "\nlogging:\n  level: error\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestRootCommand(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{name: "version flag", args: []string{"--version"}},
		{name: "help flag", args: []string{"--help"}},
		{name: "unknown command", args: []string{"nope"}, wantErr: true},
		{name: "ask needs a question", args: []string{"ask"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSettingsCommands(t *testing.T) {
	path := tempConfig(t)

	_, err := run(t, "--config", path, "settings", "set", "open_ai_key", "sk-test-12345678")
	require.NoError(t, err)
	_, err = run(t, "--config", path, "settings", "set", "model", "gpt-4o-mini")
	require.NoError(t, err)

	out, err := run(t, "--config", path, "settings", "get", "model")
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini\n", out)

	out, err = run(t, "--config", path, "settings", "get", "open_ai_key")
	require.NoError(t, err)
	assert.Equal(t, "************5678\n", out)

	out, err = run(t, "--config", path, "settings", "list", "--show-secrets")
	require.NoError(t, err)
	assert.Contains(t, out, "open_ai_key: sk-test-12345678")
	assert.Contains(t, out, "model: gpt-4o-mini")
	showSecrets = false

	_, err = run(t, "--config", path, "settings", "get", "system_prompt")
	assert.ErrorContains(t, err, "not set")

	_, err = run(t, "--config", path, "settings", "delete", "model")
	require.NoError(t, err)
	_, err = run(t, "--config", path, "settings", "get", "model")
	assert.ErrorContains(t, err, "not set")
}

func TestProvidersCommand(t *testing.T) {
	path := tempConfig(t)

	out, err := run(t, "--config", path, "providers")
	require.NoError(t, err)
	assert.Equal(t, "com.apple.Safari\ncom.apple.dt.Xcode\ncom.google.Chrome\n", out)
}

func TestInvalidConfigFails(t *testing.T) {
	path := tempConfig(t)
	require.NoError(t, os.WriteFile(path, []byte("llm:\n  provider: nope\n"), 0644))

	_, err := run(t, "--config", path, "settings", "list")
	assert.ErrorContains(t, err, "unknown llm provider")
}
