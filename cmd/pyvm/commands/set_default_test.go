package commands

import (
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/pyvm/internal/errors"
	"github.com/thoreinstein/pyvm/internal/platform"
	"github.com/thoreinstein/pyvm/internal/probe"
)

// sideBySide installs python3.12 (the default) and python3.13 on PATH.
func sideBySide(t *testing.T, h *harness) (py312, py313 string) {
	t.Helper()
	bin := h.binDir(t, "python3.12", "python3.13", "python3-config")
	py312 = filepath.Join(bin, "python3.12")
	py313 = filepath.Join(bin, "python3.13")
	h.expectPython(py312, "Python 3.12.3", py312, py312)
	h.expectPython(py313, "Python 3.13.1", py313, py312)
	return py312, py313
}

func TestSetDefault_List(t *testing.T) {
	h := setup(t)
	py312, py313 := sideBySide(t, h)

	out, err := h.execute(t, "set-default")

	require.NoError(t, err)
	assert.Contains(t, out, "Installed Python versions:")
	assert.Regexp(t, `\* 3\.12\.3 +python3\.12 +`+regexp.QuoteMeta(py312), out)
	assert.Regexp(t, `  3\.13\.1 +python3\.13 +`+regexp.QuoteMeta(py313), out)
	assert.NotContains(t, out, "python3-config")
}

func TestSetDefault_Version(t *testing.T) {
	h := setup(t)
	_, py313 := sideBySide(t, h)
	h.runner.EXPECT().Run(mock.Anything, "update-alternatives", "--install", platform.DefaultLink, "python3", py313, "313").Return(nil)
	h.runner.EXPECT().Run(mock.Anything, "update-alternatives", "--set", "python3", py313).Return(nil)

	out, err := h.execute(t, "set-default", "3.13", "--auto")

	require.NoError(t, err)
	assert.Contains(t, out, "python3 now runs Python 3.13.1")
}

func TestSetDefault_AlreadyDefault(t *testing.T) {
	h := setup(t)
	sideBySide(t, h)

	out, err := h.execute(t, "set-default", "3.12")

	require.NoError(t, err)
	assert.Contains(t, out, "is already the default")
}

func TestSetDefault_Declined(t *testing.T) {
	h := setup(t)
	sideBySide(t, h)
	h.stdin = "no\n"

	out, err := h.execute(t, "set-default", "3.13")

	assert.Equal(t, errors.ExitCancelled, errors.ExitCodeFor(err))
	assert.Contains(t, out, "Default interpreter left unchanged.")
}

func TestSetDefault_MissingTarget(t *testing.T) {
	h := setup(t)
	sideBySide(t, h)

	_, err := h.execute(t, "set-default", "3.11", "--auto")

	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
	assert.Equal(t, errors.ExitFailure, errors.ExitCodeFor(err))
}

func TestSetDefault_UnsupportedPlatform(t *testing.T) {
	for _, family := range []platform.Family{platform.MacOS, platform.Windows, platform.Unknown} {
		t.Run(string(family), func(t *testing.T) {
			h := setup(t)
			h.profile = platform.Profile{Family: family}

			_, err := h.execute(t, "set-default", "3.13", "--auto")

			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrUnsupportedPlatform))
			assert.Equal(t, errors.ExitFailure, errors.ExitCodeFor(err))
		})
	}
}

func TestSetDefault_Pick(t *testing.T) {
	h := setup(t)
	_, py313 := sideBySide(t, h)
	h.runner.EXPECT().Run(mock.Anything, "update-alternatives", "--install", platform.DefaultLink, "python3", py313, "313").Return(nil)
	h.runner.EXPECT().Run(mock.Anything, "update-alternatives", "--set", "python3", py313).Return(nil)

	var offered []string
	newFinder = func(runtimes []probe.Runtime) (int, error) {
		pick := -1
		for i, rt := range runtimes {
			offered = append(offered, rt.Command)
			if rt.Version.MajorMinor() == "3.13" {
				pick = i
			}
		}
		if pick < 0 {
			return -1, errors.New("3.13 not offered")
		}
		return pick, nil
	}

	out, err := h.execute(t, "set-default", "--pick", "--auto")

	require.NoError(t, err)
	assert.Equal(t, []string{"python3.13", "python3.12"}, offered, "newest first")
	assert.Contains(t, out, "python3 now runs Python 3.13.1")
}

func TestSetDefault_TooManyArgs(t *testing.T) {
	h := setup(t)

	_, err := h.execute(t, "set-default", "3.12", "3.13")

	require.Error(t, err)
}
