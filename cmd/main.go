package main

import (
	"context"
	"log"
	"os"
	"time"

	gogithub "github.com/google/go-github/v80/github"
	"github.com/thomas-vilte/issuesync/internal/cli/registry"
	"github.com/thomas-vilte/issuesync/internal/commands/doctor"
	"github.com/thomas-vilte/issuesync/internal/commands/flags"
	"github.com/thomas-vilte/issuesync/internal/commands/sync_issues"
	versioncmd "github.com/thomas-vilte/issuesync/internal/commands/version"
	"github.com/thomas-vilte/issuesync/internal/config"
	"github.com/thomas-vilte/issuesync/internal/i18n"
	"github.com/thomas-vilte/issuesync/internal/logger"
	"github.com/thomas-vilte/issuesync/internal/vcs"
	"github.com/thomas-vilte/issuesync/internal/vcs/github"
	"github.com/thomas-vilte/issuesync/internal/version"
	"github.com/urfave/cli/v3"
)

const retryInterval = 500 * time.Millisecond

func main() {
	app, err := initializeApp()
	if err != nil {
		log.Fatalf("error starting the cli: %v", err)
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func newClient(cfg *config.Config) *github.GitHubClient {
	return github.NewGitHubClient(cfg.Owner, cfg.Repo, cfg.Token, github.WithRetry(cfg.MaxRetries, retryInterval))
}

func initializeApp() (*cli.Command, error) {
	translations, err := i18n.NewTranslations(config.DefaultLanguage)
	if err != nil {
		return nil, err
	}
	base := config.Default()

	registerCommand := registry.NewRegistry(base, translations)

	trackerProvider := func(cfg *config.Config) vcs.IssueTracker { return newClient(cfg) }
	if err := registerCommand.Register("sync", sync_issues.NewSyncCommandFactory(trackerProvider)); err != nil {
		return nil, err
	}

	inspectorProvider := func(cfg *config.Config) vcs.RepositoryInspector { return newClient(cfg) }
	if err := registerCommand.Register("doctor", doctor.NewDoctorCommandFactory(inspectorProvider)); err != nil {
		return nil, err
	}

	releases := gogithub.NewClient(nil).Repositories
	if err := registerCommand.Register("version", versioncmd.NewVersionCommandFactory(releases)); err != nil {
		return nil, err
	}

	commands := registerCommand.CreateCommands()
	commands = append(commands, &cli.Command{
		Name:    "help",
		Aliases: []string{"h"},
		Usage:   translations.GetMessage("help_command_usage", 0, nil),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return cli.ShowAppHelp(cmd.Root())
		},
	})

	return &cli.Command{
		Name:                  "issuesync",
		Usage:                 translations.GetMessage("app_usage", 0, nil),
		Version:               version.Version,
		Description:           translations.GetMessage("app_description", 0, nil),
		Flags:                 flags.Global(translations),
		Commands:              commands,
		EnableShellCompletion: true,
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			logger.Initialize(os.Stderr, cmd.Bool(flags.Debug), cmd.Bool(flags.Verbose))
			if cmd.IsSet(flags.Lang) {
				if err := translations.SetLanguage(cmd.String(flags.Lang)); err != nil {
					return ctx, err
				}
			}
			return ctx, nil
		},
	}, nil
}
