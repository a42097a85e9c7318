package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/pyvm/internal/errors"
)

func configFile(h *harness) string {
	return filepath.Join(h.dir, "config", "pyvm", "config.yaml")
}

func TestConfigGet(t *testing.T) {
	h := setup(t)

	out, err := h.execute(t, "config", "get", "release.timeout")
	require.NoError(t, err)
	assert.Equal(t, "15s\n", out)

	t.Setenv("PYVM_DEBIAN_REPOSITORY", "ppa:example/python")
	out, err = h.execute(t, "config", "get", "debian.repository")
	require.NoError(t, err)
	assert.Equal(t, "ppa:example/python\n", out)
}

func TestConfigGet_UnknownKey(t *testing.T) {
	h := setup(t)

	_, err := h.execute(t, "config", "get", "python.path")

	require.Error(t, err)
	var exitErr *errors.ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, "Run: pyvm config list", exitErr.Suggestion)
}

func TestConfigSet(t *testing.T) {
	h := setup(t)

	out, err := h.execute(t, "config", "set", "release.timeout", "30s")
	require.NoError(t, err)
	assert.Equal(t, "Set release.timeout = 30s\n", out)

	data, err := os.ReadFile(configFile(h))
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(data, &doc))
	assert.Equal(t, map[string]any{"timeout": "30s"}, doc["release"])
	assert.Equal(t, 1, doc["version"])

	out, err = h.execute(t, "config", "get", "release.timeout")
	require.NoError(t, err)
	assert.Equal(t, "30s\n", out)
}

func TestConfigSet_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"unknown key", "python.path", "/usr/bin/python3"},
		{"bad duration", "release.timeout", "soon"},
		{"negative duration", "download.timeout", "-1s"},
		{"bad url", "release.index_url", "ftp://example.com/"},
		{"bad bool", "windows.unattended", "maybe"},
		{"bad minimum version", "policy.minimum_version", "three"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := setup(t)

			_, err := h.execute(t, "config", "set", "--", tt.key, tt.value)

			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrInvalidConfig))
			assert.Equal(t, errors.ExitFailure, errors.ExitCodeFor(err))
			assert.NoFileExists(t, configFile(h))
		})
	}
}

func TestConfigList(t *testing.T) {
	h := setup(t)

	for _, args := range [][]string{{"config"}, {"config", "list"}} {
		out, err := h.execute(t, args...)
		require.NoError(t, err)

		assert.Contains(t, out, "# "+configFile(h))
		var doc map[string]any
		require.NoError(t, yaml.Unmarshal([]byte(out), &doc))
		assert.Equal(t, "python3", doc["python"].(map[string]any)["command"])
		assert.Equal(t, "2m0s", doc["download"].(map[string]any)["timeout"])
		assert.Equal(t, false, doc["windows"].(map[string]any)["unattended"])
	}
}

func TestConfigEdit_CreatesDefaults(t *testing.T) {
	h := setup(t)
	t.Setenv("EDITOR", "code --wait")
	h.runner.EXPECT().Run(mock.Anything, "code", "--wait", configFile(h)).Return(nil).Once()

	out, err := h.execute(t, "config", "edit")
	require.NoError(t, err)
	assert.Equal(t, "Created "+configFile(h)+"\n", out)

	data, err := os.ReadFile(configFile(h))
	require.NoError(t, err)
	assert.Contains(t, string(data), "index_url: https://www.python.org/downloads/")
	assert.Contains(t, string(data), "repository: ppa:deadsnakes/ppa")
}

func TestConfigEdit_KeepsExistingFile(t *testing.T) {
	h := setup(t)
	t.Setenv("EDITOR", "vi")
	path := configFile(h)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("version: 1\npython:\n  command: python3.12\n"), 0o600))
	h.runner.EXPECT().Run(mock.Anything, "vi", path).Return(nil).Once()

	out, err := h.execute(t, "config", "edit")

	require.NoError(t, err)
	assert.Empty(t, out)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "version: 1\npython:\n  command: python3.12\n", string(data))
}

func TestConfigEdit_ToleratesInvalidConfig(t *testing.T) {
	h := setup(t)
	t.Setenv("EDITOR", "vi")
	path := configFile(h)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("release:\n  timeout: -5s\n"), 0o600))
	h.runner.EXPECT().Run(mock.Anything, "vi", path).Return(nil).Once()

	_, err := h.execute(t, "config", "edit")

	require.NoError(t, err)
}

func TestConfigEdit_EditorFailure(t *testing.T) {
	h := setup(t)
	t.Setenv("EDITOR", "vi")
	h.runner.EXPECT().Run(mock.Anything, "vi", configFile(h)).Return(errors.New("exit status 1")).Once()

	_, err := h.execute(t, "config", "edit")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "running editor vi")
}
