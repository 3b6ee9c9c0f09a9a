// Package discovery selects the issue files a run should process.
package discovery

import (
	"context"
	"path"
	"path/filepath"
	"sort"
	"strings"

	domainErrors "github.com/thomas-vilte/issuesync/internal/errors"
	"github.com/thomas-vilte/issuesync/internal/event"
	"github.com/thomas-vilte/issuesync/internal/logger"
	"github.com/thomas-vilte/issuesync/internal/parser"
	"github.com/thomas-vilte/issuesync/internal/workspace"
)

type Mode string

const (
	ModeChangeList Mode = "change-list"
	ModeScan       Mode = "scan"
)

// Candidate is a file whose name matches the issue pattern.
type Candidate struct {
	Name   string
	Path   string
	Number int
}

// Result lists candidates in processing order plus the names that were rejected.
type Result struct {
	Mode       Mode
	Candidates []Candidate
	Rejected   []string
	Missing    []string
	Entries    []workspace.Entry
}

// Discoverer finds candidates under one issues directory.
type Discoverer struct {
	store      workspace.FileStore
	issuesDir  string
	issuesPath string
}

// NewDiscoverer builds a Discoverer. issuesDir is relative to the workspace root
// and uses forward slashes, the way paths appear in push payloads.
func NewDiscoverer(store workspace.FileStore, workspaceRoot, issuesDir string) *Discoverer {
	cleaned := path.Clean(filepath.ToSlash(issuesDir))
	return &Discoverer{
		store:      store,
		issuesDir:  strings.TrimPrefix(cleaned, "./"),
		issuesPath: filepath.Join(workspaceRoot, filepath.FromSlash(cleaned)),
	}
}

// Discover uses the trigger's change list when it has one and falls back to a
// full directory scan when that yields nothing.
func (d *Discoverer) Discover(ctx context.Context, ev event.Context) (*Result, error) {
	log := logger.FromContext(ctx)

	if ev.HasChangeList() {
		result := d.fromChangeList(ctx, ev.ChangedFiles)
		if len(result.Candidates) > 0 {
			log.Info("using changed files from push event",
				"changed", len(ev.ChangedFiles),
				"count", len(result.Candidates))
			return result, nil
		}
		log.Info("push event has no matching issue files, scanning directory",
			"changed", len(ev.ChangedFiles))
	}

	return d.scan(ctx)
}

func (d *Discoverer) fromChangeList(ctx context.Context, changed []string) *Result {
	log := logger.FromContext(ctx)
	result := &Result{Mode: ModeChangeList}
	seen := make(map[string]bool)

	for _, p := range changed {
		p = strings.TrimPrefix(path.Clean(filepath.ToSlash(p)), "./")
		if path.Dir(p) != d.issuesDir {
			continue
		}

		name := path.Base(p)
		if seen[name] {
			continue
		}
		seen[name] = true

		number, _, _, err := parser.ParseName(name)
		if err != nil {
			result.Rejected = append(result.Rejected, name)
			continue
		}

		full := filepath.Join(d.issuesPath, name)
		exists, err := d.store.Exists(full)
		if err != nil || !exists {
			log.Warn("changed file is no longer on disk", "file", name)
			result.Missing = append(result.Missing, name)
			continue
		}

		result.Candidates = append(result.Candidates, Candidate{Name: name, Path: full, Number: number})
	}

	sortCandidates(result.Candidates)
	return result
}

func (d *Discoverer) scan(ctx context.Context) (*Result, error) {
	log := logger.FromContext(ctx)

	entries, err := d.store.List(d.issuesPath)
	if err != nil {
		return nil, domainErrors.ErrIssuesDirUnreadable.WithError(err).WithContext("dir", d.issuesPath)
	}

	result := &Result{Mode: ModeScan, Entries: entries}
	for _, entry := range entries {
		if entry.IsDir {
			log.Debug("skipping subdirectory", "dir", entry.Name)
			continue
		}

		number, _, _, err := parser.ParseName(entry.Name)
		if err != nil {
			result.Rejected = append(result.Rejected, entry.Name)
			continue
		}

		result.Candidates = append(result.Candidates, Candidate{
			Name:   entry.Name,
			Path:   filepath.Join(d.issuesPath, entry.Name),
			Number: number,
		})
	}

	sortCandidates(result.Candidates)
	log.Info("scanned issues directory",
		"dir", d.issuesPath,
		"entries", len(entries),
		"count", len(result.Candidates))
	return result, nil
}

// sortCandidates orders by numeric prefix, so 10-x.md comes after 9-y.md.
func sortCandidates(c []Candidate) {
	sort.SliceStable(c, func(i, j int) bool {
		if c[i].Number != c[j].Number {
			return c[i].Number < c[j].Number
		}
		return c[i].Name < c[j].Name
	})
}
