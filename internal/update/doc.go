// Package update decides whether the active Python needs updating and
// drives the install.
//
// [Decide] is a pure comparison of the current interpreter with the
// latest stable release. [Orchestrator] wires the probe, the release
// resolver and the platform strategies into the check, update and
// set-default operations. An update walks the [State] machine and reports
// the stage that failed as an errors.StageError.
package update
