package update

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/thoreinstein/pyvm/internal/errors"
	"github.com/thoreinstein/pyvm/internal/logging"
	"github.com/thoreinstein/pyvm/internal/platform"
	"github.com/thoreinstein/pyvm/internal/probe"
	"github.com/thoreinstein/pyvm/internal/release"
	"github.com/thoreinstein/pyvm/internal/version"
)

// Stage names carried by StageError.
const (
	StageProbe      = "probe"
	StageResolve    = "resolve"
	StageConfirm    = "confirm"
	StageInstall    = "install"
	StageVerify     = "verify"
	StageSetDefault = "set-default"
)

// Prober identifies installed interpreters.
type Prober interface {
	Probe(ctx context.Context) (probe.Runtime, error)
	DefaultPath() (string, error)
	Installed(ctx context.Context) ([]probe.Runtime, error)
	Find(ctx context.Context, want string) (probe.Runtime, error)
}

// Resolver finds the latest stable release.
type Resolver interface {
	FetchLatestStable(ctx context.Context) (release.Candidate, error)
	IndexURL() string
}

// Detector computes the platform profile.
type Detector interface {
	Detect() platform.Profile
}

// Strategies selects the install strategy for a profile.
type Strategies interface {
	For(profile platform.Profile) platform.Strategy
}

// Confirmer asks the user a yes/no question. It returns an error marked
// ErrUserCancelled, or the context's error, when the user aborts.
type Confirmer interface {
	Confirm(ctx context.Context, question string) (bool, error)
}

// Deps are the orchestrator's collaborators.
type Deps struct {
	Prober     Prober
	Resolver   Resolver
	Detector   Detector
	Strategies Strategies
	Confirmer  Confirmer
	Policy     Policy
	// Out receives the report and progress.
	Out    io.Writer
	Logger *slog.Logger
}

// Orchestrator drives check, update and set-default.
type Orchestrator struct {
	deps Deps
}

// New returns an Orchestrator. A nil Out discards output.
func New(deps Deps) *Orchestrator {
	if deps.Out == nil {
		deps.Out = io.Discard
	}
	if deps.Logger == nil {
		deps.Logger = logging.NewDiscard()
	}
	return &Orchestrator{deps: deps}
}

// Report is the result of Check.
type Report struct {
	Current probe.Runtime `json:"current" yaml:"current" toml:"current"`
	Plan    Plan          `json:"plan" yaml:"plan" toml:"plan"`
	Latest  string        `json:"latest_url" yaml:"latest_url" toml:"latest_url"`
}

// Check probes the current interpreter, resolves the latest stable release
// and prints the comparison.
func (o *Orchestrator) Check(ctx context.Context) (Report, error) {
	report, err := o.resolve(ctx)
	if err != nil {
		return Report{}, err
	}
	o.render(report)
	return report, nil
}

func (o *Orchestrator) resolve(ctx context.Context) (Report, error) {
	current, err := o.deps.Prober.Probe(ctx)
	if err != nil {
		return Report{}, errors.AtStage(StageProbe, err)
	}
	latest, err := o.deps.Resolver.FetchLatestStable(ctx)
	if err != nil {
		return Report{}, errors.AtStage(StageResolve, err)
	}
	plan := o.deps.Policy.Decide(current.Version, latest)
	o.deps.Logger.Debug("decided", "current", current.Version.String(), "latest", latest.Version.String(), "action", plan.Action.String())
	return Report{Current: current, Plan: plan, Latest: latest.URL}, nil
}

func (o *Orchestrator) render(r Report) {
	w := o.deps.Out
	fmt.Fprintf(w, "Current: Python %s (%s)\n", r.Current.Version, r.Current.ExecutablePath)
	fmt.Fprintf(w, "Latest:  Python %s (%s)\n", r.Plan.Latest, r.Latest)
	fmt.Fprintf(w, "Status:  %s\n", r.Plan.Action.Label())
	if r.Plan.NeedsUpdate() {
		fmt.Fprintf(w, "\nRun \"pyvm update\" to install Python %s side by side.\n", r.Plan.Target.Version)
	}
}

// UpdateOptions control Update.
type UpdateOptions struct {
	// Auto skips every confirmation.
	Auto bool
	// SetDefault repoints the default interpreter after a verified
	// install. It is confirmed separately unless Auto is set.
	SetDefault bool
	// Version installs this exact X.Y.Z instead of the latest release.
	Version string
}

// Result is the terminal state of an Update.
type Result struct {
	State   State            `json:"state" yaml:"state" toml:"state"`
	Plan    Plan             `json:"plan" yaml:"plan" toml:"plan"`
	Profile platform.Profile `json:"platform" yaml:"platform" toml:"platform"`
	Outcome platform.Outcome `json:"outcome" yaml:"outcome" toml:"outcome"`
}

// Update resolves, confirms, installs and verifies. The default
// interpreter only changes when opts.SetDefault is set.
func (o *Orchestrator) Update(ctx context.Context, opts UpdateOptions) (Result, error) {
	m := newMachine(o.deps.Logger)
	res := Result{}
	fail := func(state State, err error) (Result, error) {
		if errors.IsCancelled(err) {
			state = Cancelled
		}
		res.State = m.to(state)
		return res, err
	}

	m.to(Resolving)
	plan, err := o.plan(ctx, opts.Version)
	if err != nil {
		return fail(Failed, err)
	}
	res.Plan = plan

	if !plan.NeedsUpdate() {
		fmt.Fprintf(o.deps.Out, "Python %s is up to date.\n", plan.Current)
		res.State = m.to(StateUpToDate)
		return res, nil
	}
	target := *plan.Target

	m.to(AwaitingConfirmation)
	if !opts.Auto {
		question := fmt.Sprintf("Install Python %s alongside %s? Your default python is not changed.", target.Version, plan.Current)
		if err := o.confirm(ctx, question); err != nil {
			return fail(Cancelled, err)
		}
	}

	profile := o.deps.Detector.Detect()
	res.Profile = profile
	strategy := o.deps.Strategies.For(profile)
	o.deps.Logger.Info("installing", "version", target.Version.String(), "platform", profile.String(), "strategy", string(strategy.Family()))

	defaultBefore, _ := o.deps.Prober.DefaultPath()

	m.to(Installing)
	outcome, err := strategy.Install(ctx, target, profile)
	res.Outcome = outcome
	if err != nil {
		o.guide(err)
		return fail(InstallFailed, errors.AtStage(StageInstall, err))
	}

	m.to(Verifying)
	if err := strategy.VerifyInstalled(ctx, outcome.InstalledPath, target.Version); err != nil {
		res.Outcome = platform.Failed(err)
		res.Outcome.InstalledPath = outcome.InstalledPath
		return fail(Failed, errors.AtStage(StageVerify, err))
	}

	defaultAfter, _ := o.deps.Prober.DefaultPath()
	defaultChanged := defaultBefore != "" && defaultAfter != "" && !samePath(defaultBefore, defaultAfter)
	if defaultChanged {
		res.Outcome.BecameDefault = true
		o.deps.Logger.Warn("the default interpreter changed during install", "before", defaultBefore, "after", defaultAfter)
	}
	res.State = m.to(Succeeded)
	o.instructions(target.Version, plan.Current, res.Outcome, profile)
	if defaultChanged {
		fmt.Fprintf(o.deps.Out, "\nWarning: the installer changed your default Python from %s to %s.\n", defaultBefore, defaultAfter)
	}

	if opts.SetDefault {
		if err := o.setDefault(ctx, strategy, profile, outcome.InstalledPath, target.Version, opts.Auto); err != nil {
			return res, err
		}
		res.Outcome.BecameDefault = true
	}
	return res, nil
}

// plan resolves the target. An explicit version skips the upstream fetch
// and always yields a target.
func (o *Orchestrator) plan(ctx context.Context, explicit string) (Plan, error) {
	if explicit == "" {
		report, err := o.resolve(ctx)
		if err != nil {
			return Plan{}, err
		}
		return report.Plan, nil
	}

	v, err := version.ParseExact(explicit)
	if err != nil {
		return Plan{}, errors.AtStage(StageResolve, err)
	}
	current, err := o.deps.Prober.Probe(ctx)
	if err != nil {
		return Plan{}, errors.AtStage(StageProbe, err)
	}
	target := release.ForVersion(o.deps.Resolver.IndexURL(), v)
	plan := o.deps.Policy.Decide(current.Version, target)
	if !plan.NeedsUpdate() {
		plan.Action = UpdateAvailable
		plan.Target = &target
	}
	return plan, nil
}

func (o *Orchestrator) confirm(ctx context.Context, question string) error {
	if o.deps.Confirmer == nil {
		return errors.AtStage(StageConfirm, errors.Mark(
			errors.New("confirmation needed but no terminal is attached; re-run with --auto"),
			errors.ErrUserCancelled,
		))
	}
	ok, err := o.deps.Confirmer.Confirm(ctx, question)
	if err != nil {
		return errors.AtStage(StageConfirm, err)
	}
	if !ok {
		return errors.AtStage(StageConfirm, errors.Wrap(errors.ErrUserCancelled, "declined"))
	}
	return nil
}

// guide prints the manual steps of a guided stop.
func (o *Orchestrator) guide(err error) {
	var manual *platform.ManualStepError
	if !errors.As(err, &manual) {
		return
	}
	w := o.deps.Out
	fmt.Fprintf(w, "\nManual step required: %s\n", manual.Reason)
	if manual.URL != "" {
		fmt.Fprintf(w, "  Download: %s\n", manual.URL)
	}
	for _, step := range manual.Steps {
		fmt.Fprintf(w, "  - %s\n", step)
	}
}

func (o *Orchestrator) instructions(v, previous version.Semantic, out platform.Outcome, profile platform.Profile) {
	w := o.deps.Out
	cmd := out.Command
	if cmd == "" {
		cmd = "python" + v.MajorMinor()
	}
	fmt.Fprintf(w, "\nPython %s installed at %s\n\n", v, out.InstalledPath)
	fmt.Fprintln(w, "Use it with:")
	fmt.Fprintf(w, "  %s script.py\n", cmd)
	fmt.Fprintf(w, "  %s -m venv .venv\n", cmd)
	if out.BecameDefault {
		return
	}
	fmt.Fprintf(w, "\nYour default Python (%s) is unchanged.", previous)
	if platform.CanSetDefault(profile.Family) {
		fmt.Fprintf(w, " Run \"pyvm set-default %s\" to change it.", v.MajorMinor())
	}
	fmt.Fprintln(w)
}

// List returns the side-by-side interpreters on PATH and prints them.
func (o *Orchestrator) List(ctx context.Context) ([]probe.Runtime, error) {
	installed, err := o.deps.Prober.Installed(ctx)
	if err != nil {
		return nil, errors.AtStage(StageProbe, err)
	}
	w := o.deps.Out
	if len(installed) == 0 {
		fmt.Fprintln(w, "No versioned Python interpreters (pythonX.Y) found on PATH.")
		return nil, nil
	}
	fmt.Fprintln(w, "Installed Python versions:")
	for _, rt := range installed {
		marker := " "
		if rt.IsDefault {
			marker = "*"
		}
		fmt.Fprintf(w, "  %s %-10s %-12s %s\n", marker, rt.Version, rt.Command, rt.ExecutablePath)
	}
	fmt.Fprintln(w, "\n* is the current default")
	return installed, nil
}

// SetDefault repoints the default interpreter to the side-by-side
// installation of want ("3.13" or "3.13.1"). Only Linux families support
// it; elsewhere it fails with UnsupportedPlatform before probing.
func (o *Orchestrator) SetDefault(ctx context.Context, want string, auto bool) error {
	v, err := version.Parse(want)
	if err != nil {
		return errors.AtStage(StageSetDefault, err)
	}

	profile := o.deps.Detector.Detect()
	strategy := o.deps.Strategies.For(profile)
	if !platform.CanSetDefault(profile.Family) {
		return errors.AtStage(StageSetDefault, strategy.SetDefault(ctx, "", v, profile))
	}

	rt, err := o.deps.Prober.Find(ctx, want)
	if err != nil {
		return errors.AtStage(StageSetDefault, err)
	}
	if rt.IsDefault {
		fmt.Fprintf(o.deps.Out, "Python %s (%s) is already the default.\n", rt.Version, rt.ExecutablePath)
		return nil
	}
	return o.setDefault(ctx, strategy, profile, rt.ExecutablePath, rt.Version, auto)
}

func (o *Orchestrator) setDefault(ctx context.Context, strategy platform.Strategy, profile platform.Profile, path string, v version.Semantic, auto bool) error {
	if !auto {
		question := fmt.Sprintf("Make Python %s (%s) the system default python3? Scripts that use python3 will run it.", v, path)
		if err := o.confirm(ctx, question); err != nil {
			if errors.IsCancelled(err) && !errors.Is(err, context.Canceled) {
				fmt.Fprintln(o.deps.Out, "Default interpreter left unchanged.")
			}
			return err
		}
	}
	if err := strategy.SetDefault(ctx, path, v, profile); err != nil {
		return errors.AtStage(StageSetDefault, err)
	}
	fmt.Fprintf(o.deps.Out, "python3 now runs Python %s (%s).\n", v, path)
	return nil
}

func samePath(a, b string) bool {
	a, b = filepath.Clean(a), filepath.Clean(b)
	if filepath.Separator == '\\' {
		return strings.EqualFold(a, b)
	}
	return a == b
}
