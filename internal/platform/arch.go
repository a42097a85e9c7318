package platform

import "strings"

// PE machine types reported by IsWow64Process2.
var machineArchs = map[uint16]string{
	0x014c: "386",
	0x01c4: "arm",
	0x8664: "amd64",
	0xaa64: "arm64",
}

// archFromMachine maps a Windows image machine type to a GOARCH name.
func archFromMachine(machine uint16) (string, bool) {
	arch, ok := machineArchs[machine]
	return arch, ok
}

// archFromEnv reads the processor architecture Windows exports to every
// process. PROCESSOR_ARCHITEW6432 is only set inside WOW64 and names the
// native architecture there.
func archFromEnv(getenv func(string) string) (string, bool) {
	v := getenv("PROCESSOR_ARCHITEW6432")
	if v == "" {
		v = getenv("PROCESSOR_ARCHITECTURE")
	}
	switch strings.ToUpper(v) {
	case "AMD64", "X64":
		return "amd64", true
	case "ARM64":
		return "arm64", true
	case "X86":
		return "386", true
	}
	return "", false
}
