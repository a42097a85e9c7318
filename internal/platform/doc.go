// Package platform detects the host and installs Python side by side on it.
//
// A [Detector] computes a [Profile] once per run: OS family, architecture,
// privilege level and package manager. The profile selects a [Strategy] from
// a [Registry]:
//
//	profile := platform.NewDetector(runner).Detect()
//	strategy := platform.DefaultRegistry(deps).For(profile)
//	outcome, err := strategy.Install(ctx, target, profile)
//
// Every strategy installs under a version-qualified name (python3.13,
// py -3.13, python@3.13) so that the bare interpreter command keeps
// resolving to whatever it resolved to before. Repointing it is a separate
// call to SetDefault, supported on Linux through the alternatives system.
//
// macOS without Homebrew ends in a [ManualStepError] carrying the installer
// URL. It is a guided stop rather than a failure.
package platform
