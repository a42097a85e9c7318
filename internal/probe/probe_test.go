package probe

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	pyerrors "github.com/thoreinstein/pyvm/internal/errors"
	"github.com/thoreinstein/pyvm/internal/logging"
	"github.com/thoreinstein/pyvm/internal/process/mocks"
)

// links maps symlink paths to their targets; anything else resolves to itself.
func links(m map[string]string) func(string) (string, error) {
	return func(p string) (string, error) {
		if t, ok := m[p]; ok {
			return t, nil
		}
		return p, nil
	}
}

func newTestProber(t *testing.T, r *mocks.MockRunner) *Prober {
	t.Helper()
	p := New(r, "python3", "", logging.ForTest(t))
	p.EvalSymlinks = links(map[string]string{"/usr/bin/python3": "/usr/bin/python3.12"})
	p.PathDirs = func() []string { return nil }
	return p
}

func expectInterpreter(r *mocks.MockRunner, cmd, banner, exe string) {
	r.EXPECT().Output(mock.Anything, cmd, "--version").Return([]byte(banner), nil)
	r.EXPECT().Output(mock.Anything, cmd, "-c", executableScript).Return([]byte(exe+"\n"), nil)
}

func TestProbe_Default(t *testing.T) {
	r := mocks.NewMockRunner(t)
	expectInterpreter(r, "python3", "Python 3.12.3\n", "/usr/bin/python3")
	r.EXPECT().LookPath("python3").Return("/usr/bin/python3", nil)

	rt, err := newTestProber(t, r).Probe(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "3.12.3", rt.Version.String())
	assert.Equal(t, "/usr/bin/python3.12", rt.ExecutablePath)
	assert.True(t, rt.IsDefault)
	assert.Equal(t, "python3", rt.Command)
}

func TestProbePath_NotDefault(t *testing.T) {
	r := mocks.NewMockRunner(t)
	expectInterpreter(r, "/usr/bin/python3.13", "Python 3.13.1", "/usr/bin/python3.13")
	r.EXPECT().LookPath("python3").Return("/usr/bin/python3", nil)

	rt, err := newTestProber(t, r).ProbePath(t.Context(), "/usr/bin/python3.13")
	require.NoError(t, err)
	assert.Equal(t, "3.13.1", rt.Version.String())
	assert.False(t, rt.IsDefault)
}

func TestProbe_DefaultUnresolvable(t *testing.T) {
	r := mocks.NewMockRunner(t)
	expectInterpreter(r, "python3", "Python 3.12.3", "/opt/py/bin/python3")
	r.EXPECT().LookPath("python3").Return("", errors.New("not found"))

	rt, err := newTestProber(t, r).Probe(t.Context())
	require.NoError(t, err)
	assert.False(t, rt.IsDefault)
}

func TestProbe_Failures(t *testing.T) {
	tests := []struct {
		name  string
		setup func(r *mocks.MockRunner)
	}{
		{
			name: "interpreter missing",
			setup: func(r *mocks.MockRunner) {
				r.EXPECT().Output(mock.Anything, "python3", "--version").
					Return(nil, pyerrors.Mark(errors.New("python3 not found"), pyerrors.ErrNotFound))
			},
		},
		{
			name: "unrecognizable banner",
			setup: func(r *mocks.MockRunner) {
				r.EXPECT().Output(mock.Anything, "python3", "--version").Return([]byte("command not found"), nil)
			},
		},
		{
			name: "executable query fails",
			setup: func(r *mocks.MockRunner) {
				r.EXPECT().Output(mock.Anything, "python3", "--version").Return([]byte("Python 3.12.3"), nil)
				r.EXPECT().Output(mock.Anything, "python3", "-c", executableScript).Return(nil, errors.New("exit status 1"))
			},
		},
		{
			name: "empty executable",
			setup: func(r *mocks.MockRunner) {
				r.EXPECT().Output(mock.Anything, "python3", "--version").Return([]byte("Python 3.12.3"), nil)
				r.EXPECT().Output(mock.Anything, "python3", "-c", executableScript).Return([]byte("\n"), nil)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := mocks.NewMockRunner(t)
			tt.setup(r)
			_, err := newTestProber(t, r).Probe(t.Context())
			require.Error(t, err)
			assert.Equal(t, "ProbeError", pyerrors.Kind(err))
		})
	}
}

func TestProbe_Cancelled(t *testing.T) {
	r := mocks.NewMockRunner(t)
	r.EXPECT().Output(mock.Anything, "python3", "--version").Return(nil, context.Canceled)

	_, err := newTestProber(t, r).Probe(t.Context())
	assert.True(t, pyerrors.IsCancelled(err))
	assert.False(t, pyerrors.Is(err, pyerrors.ErrProbe))
}

func touch(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, n := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), nil, 0o755))
	}
}

func TestInstalled(t *testing.T) {
	bin := t.TempDir()
	local := t.TempDir()
	touch(t, bin, "python3", "python3.11", "python3.12", "python3.13-config", "pip3.12")
	touch(t, local, "python3.13", "python3.12")

	r := mocks.NewMockRunner(t)
	p := newTestProber(t, r)
	p.PathDirs = func() []string { return []string{bin, "", filepath.Join(bin, "missing"), local} }
	// local/python3.12 is a link to the bin copy and must not be probed twice.
	p.EvalSymlinks = links(map[string]string{
		filepath.Join(local, "python3.12"): filepath.Join(bin, "python3.12"),
		"/usr/bin/python3":                 filepath.Join(bin, "python3.12"),
	})

	expectInterpreter(r, filepath.Join(bin, "python3.11"), "Python 3.11.9", filepath.Join(bin, "python3.11"))
	expectInterpreter(r, filepath.Join(bin, "python3.12"), "Python 3.12.3", filepath.Join(bin, "python3.12"))
	r.EXPECT().Output(mock.Anything, filepath.Join(local, "python3.13"), "--version").
		Return(nil, errors.New("exec format error"))
	r.EXPECT().LookPath("python3").Return("/usr/bin/python3", nil)

	got, err := p.Installed(t.Context())
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "3.12.3", got[0].Version.String())
	assert.Equal(t, "python3.12", got[0].Command)
	assert.True(t, got[0].IsDefault)
	assert.Equal(t, "3.11.9", got[1].Version.String())
	assert.False(t, got[1].IsDefault)
}

func TestFind(t *testing.T) {
	bin := t.TempDir()
	touch(t, bin, "python3.12", "python3.13")

	setup := func(t *testing.T) *Prober {
		r := mocks.NewMockRunner(t)
		p := newTestProber(t, r)
		p.PathDirs = func() []string { return []string{bin} }
		expectInterpreter(r, filepath.Join(bin, "python3.12"), "Python 3.12.8", filepath.Join(bin, "python3.12"))
		expectInterpreter(r, filepath.Join(bin, "python3.13"), "Python 3.13.1", filepath.Join(bin, "python3.13"))
		r.EXPECT().LookPath("python3").Return("/usr/bin/python3", nil)
		return p
	}

	t.Run("major.minor", func(t *testing.T) {
		rt, err := setup(t).Find(t.Context(), "3.13")
		require.NoError(t, err)
		assert.Equal(t, "3.13.1", rt.Version.String())
	})

	t.Run("exact patch", func(t *testing.T) {
		rt, err := setup(t).Find(t.Context(), "3.12.8")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(bin, "python3.12"), rt.ExecutablePath)
	})

	t.Run("patch mismatch", func(t *testing.T) {
		_, err := setup(t).Find(t.Context(), "3.12.2")
		assert.Equal(t, "NotFound", pyerrors.Kind(err))
	})

	t.Run("malformed", func(t *testing.T) {
		r := mocks.NewMockRunner(t)
		_, err := newTestProber(t, r).Find(t.Context(), "latest")
		assert.Equal(t, "MalformedVersion", pyerrors.Kind(err))
	})
}
