// SPDX-License-Identifier: MPL-2.0

// Package cli is the launcher entry point: a linear pass from argument
// inspection through update application and version resolution to the
// final process handoff. There is no flag-parsing framework on purpose;
// apart from a handful of fixed launcher spellings, every argument belongs
// to the wrapped program and must reach it verbatim and in order.
package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"skiff-launcher/internal/config"
	"skiff-launcher/internal/issue"
	"skiff-launcher/internal/launch"
	"skiff-launcher/internal/locate"
	"skiff-launcher/internal/resolve"
	"skiff-launcher/internal/store"
	"skiff-launcher/internal/update"
)

// Version is the launcher's own version, stamped at build time via
// -ldflags "-X skiff-launcher/internal/cli.Version=...".
var Version = "dev"

// App wires the launcher's components for one invocation.
type App struct {
	cfg      config.Config
	store    *store.Store
	applier  *update.Applier
	resolver *resolve.Resolver
	logger   *log.Logger
	stdout   io.Writer
	stderr   io.Writer

	// execFn is the process handoff, replaceable in tests.
	execFn func(binary string, args []string, env []string) error
}

// Run is the top-level entry: loads configuration, wires the app, runs it.
func Run(args []string, stdout, stderr io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		issue.Fprint(stderr, err)
		return 1
	}
	return NewApp(cfg, stdout, stderr).Run(args)
}

func NewApp(cfg config.Config, stdout, stderr io.Writer) *App {
	logger := log.NewWithOptions(stderr, log.Options{
		ReportTimestamp: false,
		Prefix:          config.ProductName,
	})
	if cfg.Debug {
		logger.SetLevel(log.DebugLevel)
	} else {
		logger.SetLevel(log.WarnLevel)
	}

	st := store.New(cfg)
	return &App{
		cfg:      cfg,
		store:    st,
		applier:  update.NewApplier(cfg, st, update.SHA256Verifier{}, logger),
		resolver: resolve.New(cfg, st),
		logger:   logger,
		stdout:   stdout,
		stderr:   stderr,
		execFn:   launch.Exec,
	}
}

// Run executes one launcher invocation and returns the exit code. When the
// handoff succeeds on unix this never returns; the wrapped program has
// replaced the process.
func (a *App) Run(args []string) int {
	if len(args) > 0 {
		if cmd, value := parseAdmin(args[0]); cmd != adminNone {
			return a.runAdmin(cmd, value)
		}
	}

	// A queued update is applied before resolution so this same invocation
	// launches the fresh version. Failures are never fatal to the launch.
	switch res := a.applier.ApplyPending(); res.Outcome {
	case update.Applied:
		a.logger.Debug("applied pending update", "version", res.Version)
	case update.Failed:
		a.logger.Warn("pending update failed, launching existing version",
			"version", res.Version, "err", res.Err)
	}

	resolved, err := a.resolver.Resolve(args)
	if err != nil {
		a.fatalResolve(err)
		return 1
	}
	a.logger.Debug("resolved version",
		"version", resolved.Name, "source", resolved.Source.String(), "dir", resolved.Dir)

	loc, err := locate.Locate(resolved.Dir)
	if err != nil {
		a.fatal(issue.NewContext().
			WithOperation("locate the " + config.ProductName + " binary").
			WithResource(resolved.Dir).
			WithSuggestion("reinstall version " + resolved.Name).
			Wrap(err))
		return 1
	}
	a.logger.Debug("located binary", "path", loc.Path, "layout", loc.Layout.String())

	forward := resolve.StripUseVersion(args)
	if err := a.execFn(loc.Path, forward, launch.Environment(a.cfg)); err != nil {
		a.fatal(issue.NewContext().
			WithOperation("start " + config.ProductName).
			WithResource(loc.Path).
			Wrap(err))
		return 1
	}
	return 0
}

func (a *App) runAdmin(cmd adminCommand, value string) int {
	switch cmd {
	case adminShimVersion:
		return a.shimVersion()
	case adminListVersions:
		return a.listVersions()
	case adminSwitchVersion:
		return a.switchVersion(value)
	case adminUninstallVersion:
		return a.uninstallVersion(value)
	default:
		return 1
	}
}

func (a *App) fatalResolve(err error) {
	ctx := issue.NewContext().
		WithOperation("select a " + config.ProductName + " version").
		WithResource(a.cfg.DataRoot)

	if installed, listErr := a.store.List(); listErr == nil && len(installed) > 0 {
		ctx = ctx.WithSuggestion(fmt.Sprintf("installed versions: %v", installed)).
			WithSuggestion("pick one with " + flagSwitchVersion + "=<version>")
	} else {
		ctx = ctx.WithSuggestion("no versions are installed under " + a.cfg.VersionsDir())
	}
	a.fatal(ctx.Wrap(err))
}

func (a *App) fatal(err error) {
	issue.Fprint(a.stderr, err)
}
