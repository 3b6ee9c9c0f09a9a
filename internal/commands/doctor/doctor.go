package doctor

import (
	"context"
	"fmt"

	"github.com/thomas-vilte/issuesync/internal/commands/completion_helper"
	"github.com/thomas-vilte/issuesync/internal/commands/flags"
	"github.com/thomas-vilte/issuesync/internal/config"
	"github.com/thomas-vilte/issuesync/internal/discovery"
	domainErrors "github.com/thomas-vilte/issuesync/internal/errors"
	"github.com/thomas-vilte/issuesync/internal/event"
	"github.com/thomas-vilte/issuesync/internal/i18n"
	"github.com/thomas-vilte/issuesync/internal/models"
	"github.com/thomas-vilte/issuesync/internal/ui"
	"github.com/thomas-vilte/issuesync/internal/vcs"
	"github.com/thomas-vilte/issuesync/internal/workspace"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
)

// InspectorProvider builds the read-only GitHub client once the configuration is known.
type InspectorProvider func(cfg *config.Config) vcs.RepositoryInspector

type DoctorCommandFactory struct {
	inspectorProvider InspectorProvider
	store             workspace.FileStore
}

func NewDoctorCommandFactory(inspectorProvider InspectorProvider) *DoctorCommandFactory {
	return &DoctorCommandFactory{
		inspectorProvider: inspectorProvider,
		store:             workspace.NewOSFileStore(),
	}
}

func (d *DoctorCommandFactory) CreateCommand(t *i18n.Translations, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:          "doctor",
		Aliases:       []string{"dr"},
		Usage:         t.GetMessage("doctor.command_usage", 0, nil),
		Flags:         flags.Connection(t),
		ShellComplete: completion_helper.DefaultFlagComplete,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			resolved, err := flags.Load(cmd, cfg)
			if err != nil {
				ui.HandleAppError(err, t)
				return cli.Exit("", 1)
			}
			if resolved.Owner == "" || resolved.Repo == "" {
				ui.HandleAppError(domainErrors.ErrRepositoryMissing, t)
				return cli.Exit("", 1)
			}
			return d.runHealthCheck(ctx, t, resolved)
		},
	}
}

type checkResult struct {
	name    string
	ok      bool
	message string
}

func (d *DoctorCommandFactory) runHealthCheck(ctx context.Context, t *i18n.Translations, cfg *config.Config) error {
	ui.PrintSectionBanner(t.GetMessage("doctor.banner", 0, nil))

	// token, user, repository, issues enabled, listing, directory
	results := make([]checkResult, 6)
	results[0] = d.checkToken(t, cfg)

	g, gctx := errgroup.WithContext(ctx)
	if results[0].ok {
		inspector := d.inspectorProvider(cfg)
		g.Go(func() error {
			results[1] = d.checkUser(gctx, t, inspector)
			return nil
		})
		g.Go(func() error {
			results[2], results[3] = d.checkRepository(gctx, t, inspector, cfg)
			return nil
		})
		g.Go(func() error {
			results[4] = d.checkListIssues(gctx, t, inspector)
			return nil
		})
	} else {
		reason := domainErrors.ErrTokenMissing.Message
		results[1] = checkResult{name: "doctor.user", message: reason}
		results[2] = checkResult{name: "doctor.repository", message: reason}
		results[3] = checkResult{name: "doctor.issues_enabled", message: reason}
		results[4] = checkResult{name: "doctor.list_issues", message: reason}
	}
	g.Go(func() error {
		results[5] = d.checkIssuesDir(gctx, t, cfg)
		return nil
	})

	spinner := ui.NewSmartSpinner(t.GetMessage("doctor.checking", 0, nil))
	spinner.Start()
	_ = g.Wait()
	spinner.Stop()

	failed := 0
	for _, result := range results {
		label := t.GetMessage(result.name, 0, nil)
		if result.ok {
			ui.PrintSuccess(ui.Output, label)
		} else {
			failed++
			ui.PrintError(ui.Output, label)
		}
		if result.message != "" {
			ui.PrintInfo("  " + result.message)
		}
	}

	_, _ = fmt.Fprintln(ui.Output)
	if failed > 0 {
		ui.PrintWarning(t.GetMessage("doctor.some_failed", failed, map[string]interface{}{
			"Count": failed,
		}))
		return cli.Exit("", 1)
	}
	ui.PrintSuccess(ui.Output, t.GetMessage("doctor.all_ok", 0, nil))
	return nil
}

func (d *DoctorCommandFactory) checkToken(_ *i18n.Translations, cfg *config.Config) checkResult {
	result := checkResult{name: "doctor.token"}
	if cfg.Token == "" {
		result.message = domainErrors.ErrTokenMissing.Suggestion
		return result
	}
	result.ok = true
	result.message = maskToken(cfg.Token)
	return result
}

func (d *DoctorCommandFactory) checkUser(ctx context.Context, t *i18n.Translations, inspector vcs.RepositoryInspector) checkResult {
	result := checkResult{name: "doctor.user"}
	login, err := inspector.GetAuthenticatedUser(ctx)
	if err != nil {
		result.message = err.Error()
		return result
	}
	result.ok = true
	result.message = t.GetMessage("doctor.user_value", 0, map[string]interface{}{"User": login})
	return result
}

func (d *DoctorCommandFactory) checkRepository(ctx context.Context, t *i18n.Translations, inspector vcs.RepositoryInspector, cfg *config.Config) (checkResult, checkResult) {
	repoResult := checkResult{name: "doctor.repository"}
	issuesResult := checkResult{name: "doctor.issues_enabled"}

	repo, err := inspector.GetRepository(ctx)
	if err != nil {
		repoResult.message = err.Error()
		issuesResult.message = err.Error()
		return repoResult, issuesResult
	}
	repoResult.ok = true
	repoResult.message = repo.URL

	if !repo.HasIssues {
		name := repo.FullName
		if name == "" {
			name = cfg.Owner + "/" + cfg.Repo
		}
		issuesResult.message = t.GetMessage("doctor.issues_disabled", 0, map[string]interface{}{"Repository": name})
		return repoResult, issuesResult
	}
	issuesResult.ok = true
	return repoResult, issuesResult
}

func (d *DoctorCommandFactory) checkListIssues(ctx context.Context, _ *i18n.Translations, inspector vcs.RepositoryInspector) checkResult {
	result := checkResult{name: "doctor.list_issues"}
	if _, err := inspector.ListIssues(ctx, models.StateOpen, 1, 1); err != nil {
		result.message = err.Error()
		return result
	}
	result.ok = true
	return result
}

func (d *DoctorCommandFactory) checkIssuesDir(ctx context.Context, t *i18n.Translations, cfg *config.Config) checkResult {
	result := checkResult{name: "doctor.issues_dir"}
	discoverer := discovery.NewDiscoverer(d.store, cfg.Workspace, cfg.IssuesDir)
	found, err := discoverer.Discover(ctx, event.Context{})
	if err != nil {
		result.message = err.Error()
		return result
	}
	result.ok = true
	result.message = t.GetMessage("doctor.dir_entries", len(found.Candidates), map[string]interface{}{
		"Count": len(found.Candidates),
	})
	return result
}

func maskToken(token string) string {
	if len(token) <= 8 {
		return "****"
	}
	return token[:4] + "****" + token[len(token)-4:]
}
