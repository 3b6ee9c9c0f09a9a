package sync_issues

import (
	"context"
	"strings"

	"github.com/thomas-vilte/issuesync/internal/commands/completion_helper"
	"github.com/thomas-vilte/issuesync/internal/commands/flags"
	"github.com/thomas-vilte/issuesync/internal/config"
	"github.com/thomas-vilte/issuesync/internal/discovery"
	"github.com/thomas-vilte/issuesync/internal/event"
	"github.com/thomas-vilte/issuesync/internal/i18n"
	"github.com/thomas-vilte/issuesync/internal/logger"
	"github.com/thomas-vilte/issuesync/internal/models"
	"github.com/thomas-vilte/issuesync/internal/report"
	"github.com/thomas-vilte/issuesync/internal/services"
	"github.com/thomas-vilte/issuesync/internal/ui"
	"github.com/thomas-vilte/issuesync/internal/vcs"
	"github.com/thomas-vilte/issuesync/internal/workspace"
	"github.com/urfave/cli/v3"
)

// TrackerProvider builds the issue tracker once the configuration is known.
type TrackerProvider func(cfg *config.Config) vcs.IssueTracker

// SyncCommandFactory is the factory to create the sync command.
type SyncCommandFactory struct {
	trackerProvider TrackerProvider
	store           workspace.FileStore
}

// NewSyncCommandFactory creates a new instance of the factory.
func NewSyncCommandFactory(trackerProvider TrackerProvider) *SyncCommandFactory {
	return &SyncCommandFactory{
		trackerProvider: trackerProvider,
		store:           workspace.NewOSFileStore(),
	}
}

// CreateCommand creates the sync command.
func (f *SyncCommandFactory) CreateCommand(t *i18n.Translations, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:          "sync",
		Aliases:       []string{"s"},
		Usage:         t.GetMessage("sync.command_usage", 0, nil),
		Flags:         append(flags.Connection(t), flags.Sync(t)...),
		ShellComplete: completion_helper.DefaultFlagComplete,
		Action:        f.createAction(t, cfg),
	}
}

func (f *SyncCommandFactory) createAction(t *i18n.Translations, base *config.Config) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		cfg, err := flags.Resolve(cmd, base)
		if err != nil {
			ui.HandleAppError(err, t)
			return cli.Exit("", 1)
		}
		if !cmd.IsSet(flags.Lang) {
			if err := t.SetLanguage(cfg.Language); err != nil {
				logger.Warn(ctx, "unsupported language in config file", "language", cfg.Language)
			}
		}

		repository := cfg.Owner + "/" + cfg.Repo
		ctx = logger.With(ctx, "repository", repository)

		ui.PrintSectionBanner(t.GetMessage("sync.banner", 0, nil))
		ui.PrintKeyValue(t.GetMessage("sync.repository", 0, nil), repository)
		ui.PrintKeyValue(t.GetMessage("sync.event", 0, nil), eventLabel(cfg.EventName))
		ui.PrintKeyValue(t.GetMessage("sync.issues_dir", 0, nil), cfg.IssuesDir)
		if cfg.DryRun {
			ui.PrintWarning(t.GetMessage("sync.dry_run", 0, nil))
		}

		ev, err := event.Load(cfg.EventName, cfg.EventPath)
		if err != nil {
			logger.Warn(ctx, "event payload unreadable, falling back to directory scan", "error", err)
			ui.PrintWarning(t.GetMessage("sync.event_fallback", 0, nil))
			ev = event.Context{}
		}

		svc := services.NewIssueSyncService(
			f.trackerProvider(cfg),
			f.store,
			discovery.NewDiscoverer(f.store, cfg.Workspace, cfg.IssuesDir),
			cfg,
			services.WithDiscoveryHandler(func(result *discovery.Result) {
				printDiscovery(t, result, cfg.IssuesDir)
			}),
			services.WithTitleScan(func(title string, scan func() error) error {
				return ui.WithSpinner(t.GetMessage("sync.searching_titles", 0, map[string]interface{}{
					"Title": title,
				}), scan)
			}),
			services.WithOutcomeHandler(func(o models.Outcome) {
				report.PrintOutcome(t, o)
			}),
		)

		summary, err := svc.Run(ctx, ev)
		if err != nil {
			ui.HandleAppError(err, t)
			return cli.Exit("", 1)
		}

		report.PrintSummary(t, summary, flags.IssuesURL(cmd.String(flags.ServerURL), cfg.Owner, cfg.Repo))

		if err := report.WriteStepSummary(cfg.StepSummary, summary, repository); err != nil {
			logger.Warn(ctx, "could not write step summary", "error", err)
		}

		if cfg.FailOnError && summary.Failed > 0 {
			return cli.Exit("", 1)
		}
		return nil
	}
}

func printDiscovery(t *i18n.Translations, result *discovery.Result, dir string) {
	ui.PrintKeyValue(t.GetMessage("sync.mode", 0, nil), string(result.Mode))

	if len(result.Missing) > 0 {
		ui.PrintWarning(t.GetMessage("sync.missing", 0, map[string]interface{}{
			"Files": strings.Join(result.Missing, ", "),
		}))
	}

	if len(result.Candidates) == 0 {
		ui.PrintWarning(t.GetMessage("sync.no_files", 0, nil))
		printEntries(t, result.Entries, dir)
		ui.PrintInfo(t.GetMessage("sync.naming_hint", 0, nil))
		return
	}

	ui.PrintInfo(t.GetMessage("sync.found_files", len(result.Candidates), map[string]interface{}{
		"Count": len(result.Candidates),
	}))
}

// printEntries lists what the issues directory actually holds, so a misnamed
// file is easy to spot.
func printEntries(t *i18n.Translations, entries []workspace.Entry, dir string) {
	ui.PrintInfo(t.GetMessage("sync.dir_contents", 0, map[string]interface{}{"Dir": dir}))
	if len(entries) == 0 {
		ui.PrintInfo("  " + t.GetMessage("sync.dir_empty", 0, nil))
		return
	}
	for _, entry := range entries {
		kind := t.GetMessage("sync.entry_file", 0, nil)
		if entry.IsDir {
			kind = t.GetMessage("sync.entry_dir", 0, nil)
		}
		ui.PrintKeyValue(kind, entry.Name)
	}
}

func eventLabel(name string) string {
	if name == "" {
		return "manual"
	}
	return name
}
