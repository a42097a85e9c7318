package paths

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/adrg/xdg"
)

func TestXDGHomes(t *testing.T) {
	for name, got := range map[string]string{
		"ConfigHome": ConfigHome(),
		"CacheHome":  CacheHome(),
	} {
		if got == "" {
			t.Errorf("%s() returned empty string", name)
		}
		if !filepath.IsAbs(got) {
			t.Errorf("%s() = %q, want absolute path", name, got)
		}
	}
}

func TestConfigFile(t *testing.T) {
	got := ConfigFile()
	if !strings.HasPrefix(got, ConfigHome()) {
		t.Errorf("ConfigFile() = %q, want path under %q", got, ConfigHome())
	}
	if want := filepath.Join("pyvm", "config.yaml"); !strings.HasSuffix(got, want) {
		t.Errorf("ConfigFile() = %q, want suffix %q", got, want)
	}
}

func TestDownloadsDir(t *testing.T) {
	got := DownloadsDir()
	if !strings.HasPrefix(got, CacheHome()) {
		t.Errorf("DownloadsDir() = %q, want path under CacheHome %q", got, CacheHome())
	}
	if want := filepath.Join("pyvm", "downloads"); !strings.HasSuffix(got, want) {
		t.Errorf("DownloadsDir() = %q, want suffix %q", got, want)
	}
}

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")

	if err := EnsureDir(dir, 0); err != nil {
		t.Fatalf("EnsureDir() error = %v", err)
	}
	info, err := os.Stat(dir)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if !info.IsDir() {
		t.Fatal("EnsureDir() did not create a directory")
	}

	// idempotent
	if err := EnsureDir(dir, 0o755); err != nil {
		t.Errorf("second EnsureDir() error = %v", err)
	}
}

func TestFollowsXDGEnvironment(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	xdg.Reload()

	if got, want := ConfigFile(), filepath.Join(dir, "config", "pyvm", "config.yaml"); got != want {
		t.Errorf("ConfigFile() = %q, want %q", got, want)
	}
	if got, want := DownloadsDir(), filepath.Join(dir, "cache", "pyvm", "downloads"); got != want {
		t.Errorf("DownloadsDir() = %q, want %q", got, want)
	}
}
