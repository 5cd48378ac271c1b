package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/alnah/raven"
	"github.com/alnah/raven/internal/certs"
	"github.com/alnah/raven/internal/config"
	"github.com/alnah/raven/internal/hints"
	"github.com/alnah/raven/internal/metadata"
	"github.com/alnah/raven/internal/project"
	"github.com/alnah/raven/internal/server"
	"github.com/alnah/raven/internal/watch"
)

// command runs one subcommand with its raw arguments.
type command func(ctx context.Context, args []string, env *Environment) error

// commands maps subcommand names to their implementation. help, version
// and doctor are dispatched by runMain.
var commands = map[string]command{
	"publish":  runPublish,
	"metadata": runMetadata,
	"rebuild":  runRebuild,
	"serve":    runServe,
	"watch":    runWatch,
}

// app is what every pipeline command needs once flags are parsed.
type app struct {
	layout   project.Layout
	settings *config.Settings
	log      *logrus.Logger
}

// setup builds the logger, resolves the project root and loads settings.
func setup(common *commonFlags, env *Environment) (*app, error) {
	log, err := newLogger(env.Stderr, common)
	if err != nil {
		return nil, err
	}

	layout, err := project.Resolve(common.root)
	if err != nil {
		if errors.Is(err, project.ErrRootNotFound) {
			return nil, fmt.Errorf("%w%s", err, hints.ForRootNotFound(project.RootName))
		}
		return nil, err
	}

	settings, err := loadSettings(layout, common.config)
	if err != nil {
		return nil, err
	}

	log.WithField("root", layout.Root).Debug("project resolved")
	return &app{layout: layout, settings: settings, log: log}, nil
}

// loadSettings reads the explicit settings file, which must exist, or the
// optional Config/raven.yaml.
func loadSettings(layout project.Layout, explicit string) (*config.Settings, error) {
	if explicit != "" {
		settings, err := config.LoadSettings(explicit, true)
		if errors.Is(err, config.ErrConfigNotFound) {
			return nil, fmt.Errorf("%w%s", err, hints.ForConfigNotFound([]string{explicit}))
		}
		return settings, err
	}
	return config.LoadSettings(filepath.Join(layout.Config, config.SettingsFileName), false)
}

// site returns the pipeline for the resolved project.
func (a *app) site(env *Environment) (*raven.Site, error) {
	return raven.New(a.layout,
		raven.WithLogger(a.log),
		raven.WithClock(env.Now),
		raven.WithSettings(a.settings),
	)
}

// withHint appends an actionable hint to errors the user can fix.
func (a *app) withHint(err error) error {
	switch {
	case errors.Is(err, raven.ErrLocked):
		return fmt.Errorf("%w%s", err, hints.ForLockHeld(a.layout.LockFile()))
	case errors.Is(err, raven.ErrConfigDirMissing):
		return fmt.Errorf("%w%s", err, hints.ForConfigDirMissing(a.layout.Config))
	case errors.Is(err, raven.ErrUnknownField):
		return fmt.Errorf("%w%s", err, hints.ForUnknownField())
	}
	return err
}

// ---------------------------------------------------------------------------
// publish, metadata, rebuild
// ---------------------------------------------------------------------------

func runPublish(ctx context.Context, args []string, env *Environment) error {
	var common commonFlags
	positional, err := parseCommand(newFlagSet("publish", env), args, &common)
	if err != nil {
		return err
	}
	if err := requireArgs("publish", positional, 1, "<file.md>"); err != nil {
		return err
	}

	a, err := setup(&common, env)
	if err != nil {
		return err
	}
	site, err := a.site(env)
	if err != nil {
		return err
	}

	res, err := site.Publish(ctx, positional[0])
	if err != nil {
		return a.withHint(err)
	}
	if !common.quiet {
		fmt.Fprintf(env.Stdout, "published %s: %s\n", positional[0], describeOutcome(res.Record, res.Outcome))
		fmt.Fprintln(env.Stdout, res.Report)
	}
	return nil
}

func runMetadata(ctx context.Context, args []string, env *Environment) error {
	var common commonFlags
	positional, err := parseCommand(newFlagSet("metadata", env), args, &common)
	if err != nil {
		return err
	}
	if err := requireArgs("metadata", positional, 1, "<file.md>"); err != nil {
		return err
	}

	a, err := setup(&common, env)
	if err != nil {
		return err
	}
	site, err := a.site(env)
	if err != nil {
		return err
	}

	rec, outcome, err := site.GenerateMetadata(ctx, positional[0])
	if err != nil {
		return a.withHint(err)
	}
	if !common.quiet {
		fmt.Fprintf(env.Stdout, "%s: %s\n", positional[0], describeOutcome(rec, outcome))
	}
	return nil
}

func runRebuild(ctx context.Context, args []string, env *Environment) error {
	var common commonFlags
	positional, err := parseCommand(newFlagSet("rebuild", env), args, &common)
	if err != nil {
		return err
	}
	if err := requireArgs("rebuild", positional, 0, "no arguments"); err != nil {
		return err
	}

	a, err := setup(&common, env)
	if err != nil {
		return err
	}
	site, err := a.site(env)
	if err != nil {
		return err
	}

	rep, err := site.Rebuild(ctx)
	if err != nil {
		return a.withHint(err)
	}
	if !common.quiet {
		fmt.Fprintln(env.Stdout, rep)
	}
	return nil
}

// describeOutcome renders a metadata outcome for the terminal.
func describeOutcome(rec metadata.Record, outcome metadata.Outcome) string {
	switch outcome {
	case metadata.OutcomeCreated:
		return fmt.Sprintf("article %d created", rec.Number)
	case metadata.OutcomeExists:
		return fmt.Sprintf("article %d already recorded", rec.Number)
	case metadata.OutcomeNotArticle:
		return "not an article, no metadata"
	default:
		return outcome.String()
	}
}

// ---------------------------------------------------------------------------
// serve
// ---------------------------------------------------------------------------

func runServe(ctx context.Context, args []string, env *Environment) error {
	var common commonFlags
	positional, err := parseCommand(newFlagSet("serve", env), args, &common)
	if err != nil {
		return err
	}
	if err := requireArgs("serve", positional, 0, "no arguments"); err != nil {
		return err
	}

	a, err := setup(&common, env)
	if err != nil {
		return err
	}
	if err := a.layout.Require(a.layout.HTMLOut); err != nil {
		return fmt.Errorf("%w (run raven rebuild first)", err)
	}

	ss := a.settings.Server
	manager, err := certs.NewManager(
		certPath(a.layout, ss.CertFile),
		certs.Options{CommonName: ss.CertCommonName, Hosts: ss.CertHosts, ValidityDays: ss.CertValidityDays},
		ss.RenewBefore.Std(),
		a.log,
		env.Now,
	)
	if err != nil {
		return err
	}

	srv := server.New(serverConfig(a.layout, ss), manager, a.log)
	if err := srv.Run(ctx); err != nil {
		return withBindHint(err, ss)
	}
	return nil
}

// certPath resolves the certificate file against the project root.
func certPath(layout project.Layout, file string) string {
	if filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(layout.Root, file)
}

// serverConfig maps settings onto the server configuration.
func serverConfig(layout project.Layout, ss config.ServerSettings) server.Config {
	return server.Config{
		Host:               ss.Host,
		HTTPPort:           ss.HTTPPort,
		HTTPSPort:          ss.HTTPSPort,
		MetricsAddr:        ss.MetricsAddr,
		ReadHeaderTimeout:  ss.ReadHeaderTimeout.Std(),
		RenewCheckInterval: ss.RenewCheckInterval.Std(),
		Site: server.Site{
			HTMLDir:      layout.HTMLOut,
			MarkdownDir:  layout.MarkdownOut,
			TextSuffix:   ss.TextSuffix,
			NotFoundPage: ss.NotFoundPage,
			MainPage:     ss.MainPage,
		},
	}
}

// withBindHint adds the privileged port hint to permission errors from
// opening listeners.
func withBindHint(err error, ss config.ServerSettings) error {
	if !errors.Is(err, os.ErrPermission) {
		return err
	}
	for _, port := range []int{ss.HTTPPort, ss.HTTPSPort} {
		if hint := hints.ForPrivilegedPort(port); hint != "" {
			return fmt.Errorf("%w%s", err, hint)
		}
	}
	return err
}

// ---------------------------------------------------------------------------
// watch
// ---------------------------------------------------------------------------

func runWatch(ctx context.Context, args []string, env *Environment) error {
	var common commonFlags
	fs := newFlagSet("watch", env)
	debounce := fs.Duration("debounce", watch.DefaultDebounce, "Delay before a change triggers a rebuild")
	positional, err := parseCommand(fs, args, &common)
	if err != nil {
		return err
	}
	if err := requireArgs("watch", positional, 0, "no arguments"); err != nil {
		return err
	}

	a, err := setup(&common, env)
	if err != nil {
		return err
	}
	site, err := a.site(env)
	if err != nil {
		return err
	}

	rebuild := func(ctx context.Context) error {
		rep, err := site.Rebuild(ctx)
		if err != nil {
			return a.withHint(err)
		}
		a.log.WithField("report", rep.String()).Debug("rebuild report")
		return nil
	}

	if err := rebuild(ctx); err != nil {
		a.log.WithError(err).Warn("initial rebuild failed, watching for changes")
	}

	a.log.WithField("root", a.layout.Root).Info("watching for changes")
	return watch.Run(ctx, watch.Options{
		Dirs:     []string{a.layout.Drafts, a.layout.Config, a.layout.Images},
		Debounce: *debounce,
		Log:      a.log,
	}, rebuild)
}
