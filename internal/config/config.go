package config

import (
	"errors"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	domainErrors "github.com/thomas-vilte/issuesync/internal/errors"
	"github.com/thomas-vilte/issuesync/internal/regex"
)

// DriftPolicy decides what happens to a file whose new issue got another number.
type DriftPolicy string

const (
	DriftFlag   DriftPolicy = "flag"
	DriftRename DriftPolicy = "rename"
)

type (
	// Config is built once per run and passed to every component.
	Config struct {
		Token     string
		Owner     string
		Repo      string
		Workspace string
		IssuesDir string
		EventName string
		EventPath string

		DryRun       bool
		ReopenClosed bool
		FailOnError  bool
		DriftPolicy  DriftPolicy
		Labels       []string
		PageSize     int
		MaxPages     int
		MaxRetries   int
		Language     string
		StepSummary  string
		PathFile     string
	}

	// FileConfig is the optional TOML file checked into the repository.
	FileConfig struct {
		IssuesDir    string   `toml:"issues_dir"`
		Labels       []string `toml:"labels"`
		DriftPolicy  string   `toml:"drift_policy"`
		ReopenClosed *bool    `toml:"reopen_closed"`
		PageSize     int      `toml:"page_size"`
		MaxPages     int      `toml:"max_pages"`
		MaxRetries   *int     `toml:"max_retries"`
		Language     string   `toml:"language"`
	}
)

const (
	DefaultIssuesDir  = "docs/issues"
	DefaultConfigFile = ".github/issuesync.toml"
	DefaultLanguage   = "en"
	defaultPageSize   = 100
	defaultMaxPages   = 0
	defaultMaxRetries = 3
	maxPageSize       = 100
)

// DefaultLabels mark an issue as created by this tool.
var DefaultLabels = []string{"auto-created", "from-markdown"}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		Workspace:   ".",
		IssuesDir:   DefaultIssuesDir,
		DriftPolicy: DriftFlag,
		Labels:      append([]string(nil), DefaultLabels...),
		PageSize:    defaultPageSize,
		MaxPages:    defaultMaxPages,
		MaxRetries:  defaultMaxRetries,
		Language:    DefaultLanguage,
	}
}

// LoadFile reads a TOML config file. A missing file is not an error and
// returns nil.
func LoadFile(path string) (*FileConfig, error) {
	if path == "" {
		return nil, nil
	}

	var file FileConfig
	if _, err := toml.DecodeFile(path, &file); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, domainErrors.ErrConfigFile.WithError(err).WithContext("path", path)
	}
	return &file, nil
}

// Apply copies the values set in the file onto the config.
func (c *Config) Apply(file *FileConfig) {
	if file == nil {
		return
	}
	if file.IssuesDir != "" {
		c.IssuesDir = file.IssuesDir
	}
	if len(file.Labels) > 0 {
		c.Labels = append([]string(nil), file.Labels...)
	}
	if file.DriftPolicy != "" {
		c.DriftPolicy = DriftPolicy(strings.ToLower(file.DriftPolicy))
	}
	if file.ReopenClosed != nil {
		c.ReopenClosed = *file.ReopenClosed
	}
	if file.PageSize != 0 {
		c.PageSize = file.PageSize
	}
	if file.MaxPages != 0 {
		c.MaxPages = file.MaxPages
	}
	if file.MaxRetries != nil {
		c.MaxRetries = *file.MaxRetries
	}
	if file.Language != "" {
		c.Language = file.Language
	}
}

// SetRepository splits an owner/name slug.
func (c *Config) SetRepository(slug string) error {
	m := regex.RepositorySlug.FindStringSubmatch(strings.TrimSpace(slug))
	if m == nil {
		return domainErrors.ErrRepositoryMissing.WithContext("repository", slug)
	}
	c.Owner, c.Repo = m[1], m[2]
	return nil
}

// ConfigPath resolves the config file location against the workspace.
func (c *Config) ConfigPath(path string) string {
	if path == "" {
		path = DefaultConfigFile
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.Workspace, path)
}


// Validate checks everything a sync run needs before touching the network.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Token) == "" {
		return domainErrors.ErrTokenMissing
	}
	if c.Owner == "" || c.Repo == "" {
		return domainErrors.ErrRepositoryMissing
	}
	switch c.DriftPolicy {
	case DriftFlag, DriftRename:
	default:
		return domainErrors.ErrInvalidDriftPolicy.WithContext("policy", string(c.DriftPolicy))
	}
	if c.PageSize < 1 || c.PageSize > maxPageSize {
		return domainErrors.ErrInvalidPageSize.WithContext("page_size", c.PageSize)
	}
	if c.MaxPages < 0 {
		return domainErrors.NewAppError(domainErrors.TypeConfiguration, "max_pages cannot be negative", nil)
	}
	if c.MaxRetries < 0 {
		return domainErrors.NewAppError(domainErrors.TypeConfiguration, "max_retries cannot be negative", nil)
	}
	if c.IssuesDir == "" {
		return domainErrors.NewAppError(domainErrors.TypeConfiguration, "issues directory cannot be empty", nil)
	}
	return nil
}

