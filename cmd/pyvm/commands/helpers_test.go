package commands

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/adrg/xdg"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/mock"

	"github.com/thoreinstein/pyvm/internal/platform"
	"github.com/thoreinstein/pyvm/internal/process"
	"github.com/thoreinstein/pyvm/internal/process/mocks"
	"github.com/thoreinstein/pyvm/internal/update"
)

var debianProfile = platform.Profile{
	Family:         platform.DebianLike,
	OS:             "linux",
	Arch:           "amd64",
	Distro:         "ubuntu",
	DistroVersion:  "24.04",
	IsAdmin:        true,
	PackageManager: "apt-get",
}

type fixedDetector struct {
	profile *platform.Profile
}

func (d fixedDetector) Detect() platform.Profile { return *d.profile }

// harness runs commands against a mock runner and a fixed platform.
type harness struct {
	runner  *mocks.MockRunner
	profile platform.Profile
	stdin   string
	dir     string
}

// resetFlags restores every flag variable; cobra only assigns flags that
// appear on the command line.
func resetFlags() {
	verbosity = 0
	quiet = false
	logFormat = "text"
	logFile = ""
	configPath = ""
	updateAuto = false
	updateSetDefault = false
	updateVersion = ""
	setDefaultAuto = false
	setDefaultPick = false
	infoFormat = "text"
	genDocDir = ""
	genDocFormat = "markdown"
}

func setup(t *testing.T) *harness {
	t.Helper()

	dir := t.TempDir()
	viper.Reset()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	t.Setenv("PYVM_PYTHON_COMMAND", "python3")
	t.Setenv("PYVM_DEBUG", "0")
	xdg.Reload()
	t.Chdir(dir)
	resetFlags()

	h := &harness{
		runner:  mocks.NewMockRunner(t),
		profile: debianProfile,
		dir:     dir,
	}

	origRunner, origDetector, origFinder := newRunner, newDetector, newFinder
	origLogger := slog.Default()
	newRunner = func(*slog.Logger) process.Runner { return h.runner }
	newDetector = func(process.Runner) update.Detector { return fixedDetector{profile: &h.profile} }
	t.Cleanup(func() {
		newRunner, newDetector, newFinder = origRunner, origDetector, origFinder
		slog.SetDefault(origLogger)
		viper.Reset()
	})
	return h
}

// execute runs the root command with args and returns what it printed to
// stdout.
func (h *harness) execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetIn(strings.NewReader(h.stdin))
	resetCommands(rootCmd)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetIn(nil)
	})

	err := rootCmd.ExecuteContext(t.Context())
	if errOut.Len() > 0 {
		t.Logf("stderr:\n%s", errOut.String())
	}
	return out.String(), err
}

// resetCommands clears what an earlier execute left on the command tree:
// cobra only hands the execute context to commands without one, and
// pflag keeps parsed values such as --version between runs.
func resetCommands(c *cobra.Command) {
	c.SetContext(nil) //nolint:staticcheck // nil is what makes cobra propagate the next context
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetCommands(sub)
	}
}

// serveIndex points release.index_url at a downloads page announcing
// latest.
func serveIndex(t *testing.T, latest string) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintf(w, `<html><body>
<a class="button" href="/downloads/release/python-%[1]s/">Download Python %[2]s</a>
</body></html>`, strings.ReplaceAll(latest, ".", ""), latest)
	}))
	t.Cleanup(srv.Close)
	t.Setenv("PYVM_RELEASE_INDEX_URL", srv.URL+"/downloads/")
}

// expectPython makes cmd report banner and exe, and resolves the default
// python3 to def.
func (h *harness) expectPython(cmd, banner, exe, def string) {
	h.runner.EXPECT().Output(mock.Anything, cmd, "--version").Return([]byte(banner+"\n"), nil)
	h.runner.EXPECT().Output(mock.Anything, cmd, "-c", mock.Anything).Return([]byte(exe+"\n"), nil)
	h.runner.EXPECT().LookPath("python3").Return(def, nil).Maybe()
}

// binDir creates a PATH directory holding empty files with the given
// names and puts it first on PATH.
func (h *harness) binDir(t *testing.T, names ...string) string {
	t.Helper()
	bin := filepath.Join(h.dir, "bin")
	if err := os.MkdirAll(bin, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, n := range names {
		if err := os.WriteFile(filepath.Join(bin, n), nil, 0o755); err != nil {
			t.Fatal(err)
		}
	}
	resolved, err := filepath.EvalSymlinks(bin)
	if err != nil {
		t.Fatal(err)
	}
	t.Setenv("PATH", resolved)
	return resolved
}
