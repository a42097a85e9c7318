package platform

import (
	"bufio"
	"bytes"
	"runtime"
	"strings"

	"github.com/thoreinstein/pyvm/pkg/fileutil"
)

// DefaultOSReleasePath is where Linux distributions describe themselves.
const DefaultOSReleasePath = "/etc/os-release"

var (
	debianIDs = []string{"debian", "ubuntu", "linuxmint", "pop", "elementary", "raspbian", "kali", "zorin", "neon"}
	fedoraIDs = []string{"fedora", "rhel", "centos", "rocky", "almalinux", "ol", "amzn", "nobara"}
)

// packageManagers lists the executables probed per family, in preference
// order.
var packageManagers = map[Family][]string{
	DebianLike: {"apt-get", "apt"},
	FedoraLike: {"dnf", "yum"},
	MacOS:      {"brew"},
}

// Detector computes the host [Profile]. Its fields are injectable so tests
// can describe any host. GOARCH is the machine architecture, not the one
// pyvm was built for.
type Detector struct {
	GOOS          string
	GOARCH        string
	OSReleasePath string
	ReadFile      func(path string) ([]byte, error)
	LookPath      func(file string) (string, error)
	IsAdmin       func() bool
}

// NewDetector returns a detector for the running host. lookPath is
// typically the LookPath method of a process.Runner.
func NewDetector(lookPath func(string) (string, error)) *Detector {
	return &Detector{
		GOOS:          runtime.GOOS,
		GOARCH:        hostArch(),
		OSReleasePath: DefaultOSReleasePath,
		ReadFile:      fileutil.ReadFileWithLimit,
		LookPath:      lookPath,
		IsAdmin:       isAdmin,
	}
}

// Detect builds the profile. It never fails: anything unrecognized yields
// the Unknown family.
func (d *Detector) Detect() Profile {
	p := Profile{
		OS:   d.GOOS,
		Arch: d.GOARCH,
	}
	if d.IsAdmin != nil {
		p.IsAdmin = d.IsAdmin()
	}

	switch d.GOOS {
	case "windows":
		p.Family = Windows
	case "darwin":
		p.Family = MacOS
	case "linux":
		p.Family = Unknown
		if rel, ok := d.osRelease(); ok {
			p.Distro = strings.ToLower(rel["ID"])
			p.DistroVersion = rel["VERSION_ID"]
			p.Family = familyFromOSRelease(rel)
		}
		if p.Family == Unknown {
			p.Family = d.familyFromPackageManager()
		}
	default:
		p.Family = Unknown
	}

	p.PackageManager = d.findPackageManager(p.Family)
	return p
}

func (d *Detector) osRelease() (map[string]string, bool) {
	if d.ReadFile == nil || d.OSReleasePath == "" {
		return nil, false
	}
	data, err := d.ReadFile(d.OSReleasePath)
	if err != nil {
		return nil, false
	}
	return ParseOSRelease(data), true
}

func (d *Detector) findPackageManager(f Family) string {
	if d.LookPath == nil {
		return ""
	}
	for _, name := range packageManagers[f] {
		if _, err := d.LookPath(name); err == nil {
			return name
		}
	}
	return ""
}

// familyFromPackageManager classifies Linux hosts without os-release.
func (d *Detector) familyFromPackageManager() Family {
	for _, f := range []Family{DebianLike, FedoraLike} {
		if d.findPackageManager(f) != "" {
			return f
		}
	}
	return Unknown
}

func familyFromOSRelease(rel map[string]string) Family {
	ids := append([]string{rel["ID"]}, strings.Fields(rel["ID_LIKE"])...)
	for i := range ids {
		ids[i] = strings.ToLower(ids[i])
	}
	for _, id := range ids {
		switch {
		case contains(debianIDs, id):
			return DebianLike
		case contains(fedoraIDs, id):
			return FedoraLike
		}
	}
	return Unknown
}

// ParseOSRelease parses the KEY=value lines of an os-release file.
func ParseOSRelease(data []byte) map[string]string {
	out := make(map[string]string)
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, val, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		val = strings.TrimSpace(val)
		if len(val) >= 2 && (val[0] == '"' || val[0] == '\'') && val[len(val)-1] == val[0] {
			val = val[1 : len(val)-1]
		}
		out[strings.TrimSpace(key)] = val
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
