package commands

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/pyvm/cmd"
	"github.com/thoreinstein/pyvm/internal/cli/prompt"
	"github.com/thoreinstein/pyvm/internal/download"
	"github.com/thoreinstein/pyvm/internal/logging"
	"github.com/thoreinstein/pyvm/internal/paths"
	"github.com/thoreinstein/pyvm/internal/platform"
	"github.com/thoreinstein/pyvm/internal/probe"
	"github.com/thoreinstein/pyvm/internal/process"
	"github.com/thoreinstein/pyvm/internal/release"
	"github.com/thoreinstein/pyvm/internal/update"
)

// Constructors for the collaborators that touch the host. Tests replace
// them.
var (
	newRunner = func(logger *slog.Logger) process.Runner {
		return process.NewExecRunner(logger)
	}
	newDetector = func(runner process.Runner) update.Detector {
		return platform.NewDetector(runner.LookPath)
	}
	newFinder prompt.Finder
)

// services are the collaborators of one command invocation.
type services struct {
	logger   *slog.Logger
	runner   process.Runner
	prober   *probe.Prober
	detector update.Detector
	out      io.Writer
}

func newServices(c *cobra.Command) *services {
	logger := logging.FromContext(c.Context())
	runner := newRunner(logger)
	return &services{
		logger:   logger,
		runner:   runner,
		prober:   probe.New(runner, cfg.Python.Command, cfg.Python.EffectiveDefaultCommand(), logger),
		detector: newDetector(runner),
		out:      c.OutOrStdout(),
	}
}

func (s *services) resolver() *release.Resolver {
	return release.NewResolver(
		release.WithIndexURL(cfg.Release.IndexURL),
		release.WithTimeout(cfg.Release.Timeout),
		release.WithUserAgent(cmd.UserAgent()),
		release.WithLogger(s.logger),
	)
}

func (s *services) registry() *platform.Registry {
	var progress io.Writer
	if logging.IsTTY(s.out) {
		progress = s.out
	}
	dl := download.New(progress, s.logger)
	dl.UserAgent = cmd.UserAgent()
	if cfg.Download.Timeout > 0 {
		dl.Timeout = cfg.Download.Timeout
	}

	return platform.DefaultRegistry(platform.Deps{
		Runner:  s.runner,
		Fetcher: dl,
		Options: platform.Options{
			FTPURL:           cfg.Release.FTPURL,
			DownloadDir:      paths.DownloadsDir(),
			DebianRepository: cfg.Debian.Repository,
			Unattended:       cfg.Windows.Unattended,
		},
		Out:    s.out,
		Logger: s.logger,
	})
}

// orchestrator wires the update engine for c. Prompts read c's input.
func (s *services) orchestrator(c *cobra.Command) *update.Orchestrator {
	return update.New(update.Deps{
		Prober:     s.prober,
		Resolver:   s.resolver(),
		Detector:   s.detector,
		Strategies: s.registry(),
		Confirmer:  prompt.NewConfirmerWithIO(c.InOrStdin(), s.out),
		Policy:     update.Policy{Minimum: cfg.MinimumVersion()},
		Out:        s.out,
		Logger:     s.logger,
	})
}
