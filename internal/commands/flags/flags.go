// Package flags declares the command-line flags shared by the commands and
// merges them with the config file into a config.Config.
package flags

import (
	"fmt"
	"strings"

	"github.com/thomas-vilte/issuesync/internal/config"
	"github.com/thomas-vilte/issuesync/internal/i18n"
	"github.com/urfave/cli/v3"
)

const (
	Token        = "token"
	Repo         = "repo"
	Workspace    = "workspace"
	Dir          = "dir"
	ConfigFile   = "config"
	ServerURL    = "server-url"
	EventName    = "event-name"
	EventPath    = "event-path"
	DryRun       = "dry-run"
	DriftPolicy  = "drift-policy"
	ReopenClosed = "reopen-closed"
	FailOnError  = "fail-on-error"
	StepSummary  = "step-summary"
	Verbose      = "verbose"
	Debug        = "debug"
	Lang         = "lang"
)

const defaultServerURL = "https://github.com"

// Global flags live on the root command.
func Global(t *i18n.Translations) []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:    Verbose,
			Aliases: []string{"v"},
			Usage:   t.GetMessage("flag_verbose", 0, nil),
			Sources: cli.EnvVars("ISSUESYNC_VERBOSE"),
		},
		&cli.BoolFlag{
			Name:    Debug,
			Usage:   t.GetMessage("flag_debug", 0, nil),
			Sources: cli.EnvVars("ISSUESYNC_DEBUG", "RUNNER_DEBUG"),
		},
		&cli.StringFlag{
			Name:    Lang,
			Usage:   t.GetMessage("flag_lang", 0, nil),
			Value:   config.DefaultLanguage,
			Sources: cli.EnvVars("ISSUESYNC_LANG", "INPUT_LANGUAGE"),
		},
	}
}

// Connection flags locate the repository and the checkout.
func Connection(t *i18n.Translations) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    Token,
			Usage:   t.GetMessage("sync.flag_token", 0, nil),
			Sources: cli.EnvVars("GITHUB_TOKEN", "INPUT_REPO-TOKEN"),
		},
		&cli.StringFlag{
			Name:    Repo,
			Aliases: []string{"r"},
			Usage:   t.GetMessage("sync.flag_repo", 0, nil),
			Sources: cli.EnvVars("GITHUB_REPOSITORY"),
		},
		&cli.StringFlag{
			Name:    Workspace,
			Aliases: []string{"w"},
			Usage:   t.GetMessage("sync.flag_workspace", 0, nil),
			Value:   ".",
			Sources: cli.EnvVars("GITHUB_WORKSPACE"),
		},
		&cli.StringFlag{
			Name:    Dir,
			Aliases: []string{"d"},
			Usage:   t.GetMessage("sync.flag_dir", 0, nil),
			Value:   config.DefaultIssuesDir,
			Sources: cli.EnvVars("INPUT_ISSUES-DIR"),
		},
		&cli.StringFlag{
			Name:    ConfigFile,
			Aliases: []string{"c"},
			Usage:   t.GetMessage("sync.flag_config", 0, nil),
			Value:   config.DefaultConfigFile,
		},
		&cli.StringFlag{
			Name:    ServerURL,
			Usage:   t.GetMessage("flag_server_url", 0, nil),
			Value:   defaultServerURL,
			Sources: cli.EnvVars("GITHUB_SERVER_URL"),
		},
	}
}

// Sync flags only make sense for a sync run.
func Sync(t *i18n.Translations) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    EventName,
			Usage:   t.GetMessage("sync.flag_event_name", 0, nil),
			Sources: cli.EnvVars("GITHUB_EVENT_NAME"),
		},
		&cli.StringFlag{
			Name:    EventPath,
			Usage:   t.GetMessage("sync.flag_event_path", 0, nil),
			Sources: cli.EnvVars("GITHUB_EVENT_PATH"),
		},
		&cli.BoolFlag{
			Name:    DryRun,
			Aliases: []string{"n"},
			Usage:   t.GetMessage("sync.flag_dry_run", 0, nil),
			Sources: cli.EnvVars("INPUT_DRY-RUN"),
		},
		&cli.StringFlag{
			Name:    DriftPolicy,
			Usage:   t.GetMessage("sync.flag_drift_policy", 0, nil),
			Value:   string(config.DriftFlag),
			Sources: cli.EnvVars("INPUT_DRIFT-POLICY"),
		},
		&cli.BoolFlag{
			Name:    ReopenClosed,
			Usage:   t.GetMessage("sync.flag_reopen_closed", 0, nil),
			Sources: cli.EnvVars("INPUT_REOPEN-CLOSED"),
		},
		&cli.BoolFlag{
			Name:    FailOnError,
			Usage:   t.GetMessage("sync.flag_fail_on_error", 0, nil),
			Sources: cli.EnvVars("INPUT_FAIL-ON-ERROR"),
		},
		&cli.StringFlag{
			Name:    StepSummary,
			Usage:   t.GetMessage("flag_step_summary", 0, nil),
			Sources: cli.EnvVars("GITHUB_STEP_SUMMARY"),
		},
	}
}

// Load builds the run configuration: defaults from base, then the TOML file,
// then every flag the user actually set. The result is not validated.
func Load(cmd *cli.Command, base *config.Config) (*config.Config, error) {
	cfg := *base
	cfg.Labels = append([]string(nil), base.Labels...)

	cfg.Workspace = cmd.String(Workspace)
	cfg.PathFile = cfg.ConfigPath(cmd.String(ConfigFile))

	file, err := config.LoadFile(cfg.PathFile)
	if err != nil {
		return nil, err
	}
	cfg.Apply(file)

	if cmd.IsSet(Dir) {
		cfg.IssuesDir = cmd.String(Dir)
	}
	if cmd.IsSet(DriftPolicy) {
		cfg.DriftPolicy = config.DriftPolicy(strings.ToLower(strings.TrimSpace(cmd.String(DriftPolicy))))
	}
	if cmd.IsSet(ReopenClosed) {
		cfg.ReopenClosed = cmd.Bool(ReopenClosed)
	}
	if cmd.IsSet(Lang) {
		cfg.Language = cmd.String(Lang)
	}

	cfg.Token = strings.TrimSpace(cmd.String(Token))
	cfg.EventName = cmd.String(EventName)
	cfg.EventPath = cmd.String(EventPath)
	cfg.DryRun = cmd.Bool(DryRun)
	cfg.FailOnError = cmd.Bool(FailOnError)
	cfg.StepSummary = cmd.String(StepSummary)

	if repo := cmd.String(Repo); repo != "" {
		if err := cfg.SetRepository(repo); err != nil {
			return nil, err
		}
	}

	return &cfg, nil
}

// Resolve is Load followed by Validate.
func Resolve(cmd *cli.Command, base *config.Config) (*config.Config, error) {
	cfg, err := Load(cmd, base)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// IssuesURL links to the repository's issue list on serverURL.
func IssuesURL(serverURL, owner, repo string) string {
	if serverURL == "" {
		serverURL = defaultServerURL
	}
	return fmt.Sprintf("%s/%s/%s/issues", strings.TrimRight(serverURL, "/"), owner, repo)
}
