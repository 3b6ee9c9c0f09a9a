package version

import (
	"context"
	"fmt"

	"github.com/thomas-vilte/issuesync/internal/config"
	"github.com/thomas-vilte/issuesync/internal/i18n"
	"github.com/thomas-vilte/issuesync/internal/services"
	"github.com/thomas-vilte/issuesync/internal/ui"
	appversion "github.com/thomas-vilte/issuesync/internal/version"
	"github.com/urfave/cli/v3"
)

type VersionCommandFactory struct {
	releases       services.ReleaseFetcher
	currentVersion string
}

func NewVersionCommandFactory(releases services.ReleaseFetcher) *VersionCommandFactory {
	return &VersionCommandFactory{
		releases:       releases,
		currentVersion: appversion.FullVersion(),
	}
}

func (f *VersionCommandFactory) CreateCommand(trans *i18n.Translations, _ *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: trans.GetMessage("version.command_usage", 0, nil),
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "check",
				Usage: trans.GetMessage("version.flag_check", 0, nil),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			_, _ = fmt.Fprintf(cmd.Root().Writer, "issuesync %s (%s)\n", f.currentVersion, appversion.Commit)
			if !cmd.Bool("check") {
				return nil
			}

			checker := services.NewVersionChecker(f.releases, f.currentVersion)
			latest, newer, err := checker.Latest(ctx)
			switch {
			case err != nil:
				ui.PrintWarning(trans.GetMessage("version.check_failed", 0, map[string]interface{}{
					"Error": err.Error(),
				}))
			case newer:
				ui.PrintInfo(trans.GetMessage("version.update_available", 0, map[string]interface{}{
					"Latest":  latest,
					"Current": f.currentVersion,
				}))
			default:
				ui.PrintSuccess(ui.Output, trans.GetMessage("version.up_to_date", 0, nil))
			}
			return nil
		},
	}
}
