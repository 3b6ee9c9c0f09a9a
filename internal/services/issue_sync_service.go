package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/thomas-vilte/issuesync/internal/config"
	"github.com/thomas-vilte/issuesync/internal/discovery"
	domainErrors "github.com/thomas-vilte/issuesync/internal/errors"
	"github.com/thomas-vilte/issuesync/internal/event"
	"github.com/thomas-vilte/issuesync/internal/logger"
	"github.com/thomas-vilte/issuesync/internal/models"
	"github.com/thomas-vilte/issuesync/internal/parser"
	"github.com/thomas-vilte/issuesync/internal/report"
	"github.com/thomas-vilte/issuesync/internal/vcs"
	"github.com/thomas-vilte/issuesync/internal/workspace"
)

// fileDiscoverer defines only the method needed by IssueSyncService.
type fileDiscoverer interface {
	Discover(ctx context.Context, ev event.Context) (*discovery.Result, error)
}

// IssueSyncService reconciles each issue file with the tracker, one file at a time.
type IssueSyncService struct {
	tracker    vcs.IssueTracker
	store      workspace.FileStore
	discoverer fileDiscoverer
	config     *config.Config
	onOutcome  func(models.Outcome)
	onDiscover func(*discovery.Result)
	titleScan  func(title string, scan func() error) error
}

type IssueSyncOption func(*IssueSyncService)

// WithOutcomeHandler registers a callback invoked after every file.
func WithOutcomeHandler(fn func(models.Outcome)) IssueSyncOption {
	return func(s *IssueSyncService) {
		s.onOutcome = fn
	}
}

// WithDiscoveryHandler registers a callback invoked once the candidate list is known.
func WithDiscoveryHandler(fn func(*discovery.Result)) IssueSyncOption {
	return func(s *IssueSyncService) {
		s.onDiscover = fn
	}
}

// WithTitleScan wraps the duplicate-title search, e.g. to show a spinner while
// the issue list is paged.
func WithTitleScan(fn func(title string, scan func() error) error) IssueSyncOption {
	return func(s *IssueSyncService) {
		s.titleScan = fn
	}
}

func NewIssueSyncService(
	tracker vcs.IssueTracker,
	store workspace.FileStore,
	discoverer fileDiscoverer,
	cfg *config.Config,
	opts ...IssueSyncOption,
) *IssueSyncService {
	s := &IssueSyncService{
		tracker:    tracker,
		store:      store,
		discoverer: discoverer,
		config:     cfg,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run discovers the candidate files for ev and syncs them in order. Per-file
// failures are recorded in the summary and never stop the batch; the returned
// error is reserved for discovery failures and cancellation.
func (s *IssueSyncService) Run(ctx context.Context, ev event.Context) (*models.Summary, error) {
	result, err := s.discoverer.Discover(ctx, ev)
	if err != nil {
		return nil, err
	}
	if s.onDiscover != nil {
		s.onDiscover(result)
	}

	summary := &models.Summary{
		Rejected: result.Rejected,
		DryRun:   s.config.DryRun,
	}
	for _, name := range result.Rejected {
		logger.Warn(ctx, "ignoring file with invalid name", "file", name)
	}

	visited := make(map[string]bool, len(result.Candidates))
	for _, candidate := range result.Candidates {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		var outcome models.Outcome
		if visited[candidate.Name] {
			outcome = skipped(candidate.Name, "", 0, models.SkipAlreadyHandled)
		} else {
			visited[candidate.Name] = true
			outcome = s.syncFile(ctx, candidate, visited)
		}

		summary.Add(outcome)
		if s.onOutcome != nil {
			s.onOutcome(outcome)
		}
	}

	logger.Info(ctx, "sync finished",
		"total", summary.Total,
		"succeeded", summary.Succeeded,
		"skipped", summary.Skipped,
		"failed", summary.Failed)
	return summary, nil
}

func (s *IssueSyncService) syncFile(ctx context.Context, c discovery.Candidate, visited map[string]bool) models.Outcome {
	start := time.Now()
	ctx = logger.With(ctx, "file", c.Name)

	outcome := s.reconcile(ctx, c, visited)

	args := []any{
		"outcome", string(outcome.Kind),
		"issue_number", outcome.Number,
		"duration_ms", time.Since(start).Milliseconds(),
	}
	switch outcome.Kind {
	case models.OutcomeFailed:
		logger.Error(ctx, "file sync failed", outcome.Err, args...)
	case models.OutcomeSkipped:
		logger.Info(ctx, "file skipped", append(args, "reason", string(outcome.Reason))...)
	default:
		logger.Info(ctx, "file synced", args...)
	}
	return outcome
}

func (s *IssueSyncService) reconcile(ctx context.Context, c discovery.Candidate, visited map[string]bool) models.Outcome {
	file, outcome, ok := s.load(ctx, c)
	if !ok {
		return outcome
	}

	target := file.TargetNumber()
	logger.Debug(ctx, "probing issue", "issue_number", target)

	probe := s.tracker.GetIssue(ctx, target)
	switch {
	case probe.Status == models.ProbeFound:
		issue := probe.Issue
		if issue.IsPullRequest {
			return skipped(file.Name, file.DerivedTitle, target, models.SkipPullRequest)
		}
		if issue.IsClosed() && !s.config.ReopenClosed {
			return skipped(file.Name, file.DerivedTitle, target, models.SkipClosedIssue)
		}
		return s.update(ctx, file, issue)

	case probe.Available():
		logger.Debug(ctx, "issue number is free", "issue_number", target, "status", probe.Status.String())
		return s.claim(ctx, file, visited)

	default:
		return failed(file.Name, file.DerivedTitle, target, probe.Err)
	}
}

// load reads and parses the candidate. ok is false when outcome is terminal.
func (s *IssueSyncService) load(ctx context.Context, c discovery.Candidate) (*models.IssueFile, models.Outcome, bool) {
	content, err := s.store.Read(c.Path)
	if err != nil {
		if exists, statErr := s.store.Exists(c.Path); statErr == nil && !exists {
			logger.Warn(ctx, "issue file disappeared before processing")
			return nil, skipped(c.Name, "", 0, models.SkipMissingFile), false
		}
		return nil, failed(c.Name, "", 0, domainErrors.ErrReadFile.WithError(err).WithContext("file", c.Name)), false
	}

	file, err := parser.Parse(c.Name, c.Path, content)
	switch {
	case errors.Is(err, parser.ErrEmptyContent):
		logger.Warn(ctx, "issue file is empty")
		return nil, skipped(c.Name, "", 0, models.SkipEmptyContent), false
	case errors.Is(err, parser.ErrInvalidName):
		logger.Warn(ctx, "issue file name is invalid")
		return nil, skipped(c.Name, "", 0, models.SkipInvalidName), false
	case err != nil:
		return nil, failed(c.Name, "", 0, err), false
	}

	if file.HasHeader() && *file.EmbeddedNumber != file.FileNumber {
		logger.Warn(ctx, "header number does not match filename",
			"header_number", *file.EmbeddedNumber,
			"issue_number", file.FileNumber)
	}
	return file, models.Outcome{}, true
}

// update overwrites the body of remote and forces it open.
func (s *IssueSyncService) update(ctx context.Context, file *models.IssueFile, remote *models.RemoteIssue) models.Outcome {
	title := remote.Title
	if title == "" {
		title = file.DerivedTitle
	}
	outcome := models.Outcome{
		File:   file.Name,
		Title:  title,
		Number: remote.Number,
		URL:    remote.URL,
	}

	if s.config.DryRun {
		outcome.Kind = models.OutcomeSkipped
		outcome.Reason = models.SkipDryRun
		outcome.Planned = models.OutcomeUpdated
		outcome.Diff = report.LineDiff(remote.Body, file.Body)
		return outcome
	}

	updated, err := s.tracker.UpdateIssue(ctx, remote.Number, file.Body, models.StateOpen)
	if err != nil {
		outcome.Kind = models.OutcomeFailed
		outcome.Err = err
		return outcome
	}

	outcome.Kind = models.OutcomeUpdated
	if updated.URL != "" {
		outcome.URL = updated.URL
	}

	if file.FlaggedNumber != nil && *file.FlaggedNumber == file.FileNumber {
		// The file was renamed to match its issue; the banner is obsolete.
		if err := s.store.Write(file.Path, file.Body); err != nil {
			outcome.Kind = models.OutcomeFailed
			outcome.Err = domainErrors.ErrWriteFile.WithError(err).WithContext("file", file.Name)
			return outcome
		}
		logger.Info(ctx, "removed obsolete drift banner", "issue_number", remote.Number)
	}
	return outcome
}

// claim handles a free issue number: reuse an issue with the same title, or
// create one and reconcile the number GitHub hands back.
func (s *IssueSyncService) claim(ctx context.Context, file *models.IssueFile, visited map[string]bool) models.Outcome {
	logger.Debug(ctx, "looking for existing issue with the same title", "title", file.DerivedTitle)

	var match *models.RemoteIssue
	scan := func() error {
		var err error
		match, err = s.findByTitle(ctx, file.DerivedTitle)
		return err
	}
	var err error
	if s.titleScan != nil {
		err = s.titleScan(file.DerivedTitle, scan)
	} else {
		err = scan()
	}
	if err != nil {
		return failed(file.Name, file.DerivedTitle, 0, err)
	}
	if match != nil {
		logger.Info(ctx, "found issue with matching title", "issue_number", match.Number, "state", match.State)
		return s.update(ctx, file, match)
	}

	if s.config.DryRun {
		return models.Outcome{
			File:    file.Name,
			Kind:    models.OutcomeSkipped,
			Title:   file.DerivedTitle,
			Reason:  models.SkipDryRun,
			Planned: models.OutcomeCreated,
		}
	}

	created, err := s.tracker.CreateIssue(ctx, file.DerivedTitle, file.Body, s.config.Labels)
	if err != nil {
		return failed(file.Name, file.DerivedTitle, 0, err)
	}

	if created.Number == file.FileNumber {
		outcome := models.Outcome{
			File:   file.Name,
			Kind:   models.OutcomeCreated,
			Title:  file.DerivedTitle,
			Number: created.Number,
			URL:    created.URL,
		}
		if file.FlaggedNumber != nil {
			// The banner pointed at an issue that no longer exists and the new
			// one lines up with the filename again.
			if err := s.store.Write(file.Path, file.Body); err != nil {
				outcome.Kind = models.OutcomeFailed
				outcome.Err = domainErrors.ErrWriteFile.WithError(err).WithContext("file", file.Name)
			}
		}
		return outcome
	}

	return s.reconcileDrift(ctx, file, created, visited)
}

// findByTitle pages through every issue, oldest first, and returns the first
// open issue titled exactly title, else the first closed one, else nil. The
// listing ends on a short page; MaxPages bounds it only when positive.
func (s *IssueSyncService) findByTitle(ctx context.Context, title string) (*models.RemoteIssue, error) {
	var closedMatch *models.RemoteIssue

	for page := 1; ; page++ {
		if s.config.MaxPages > 0 && page > s.config.MaxPages {
			if closedMatch != nil {
				return closedMatch, nil
			}
			return nil, domainErrors.ErrPageLimit.WithContext("max_pages", s.config.MaxPages)
		}

		issues, err := s.tracker.ListIssues(ctx, models.StateAll, page, s.config.PageSize)
		if err != nil {
			return nil, err
		}

		for i := range issues {
			issue := issues[i]
			if issue.IsPullRequest || issue.Title != title {
				continue
			}
			if !issue.IsClosed() {
				return &issue, nil
			}
			if closedMatch == nil {
				closedMatch = &issue
			}
		}

		if len(issues) < s.config.PageSize {
			return closedMatch, nil
		}
	}
}

// reconcileDrift runs when GitHub assigned a number other than the file's
// prefix. The issue already exists at this point, so a failure here is
// reported with the assigned number.
func (s *IssueSyncService) reconcileDrift(ctx context.Context, file *models.IssueFile, created *models.RemoteIssue, visited map[string]bool) models.Outcome {
	logger.Warn(ctx, "assigned issue number differs from filename",
		"issue_number", file.FileNumber,
		"assigned_number", created.Number)

	outcome := models.Outcome{
		File:      file.Name,
		Kind:      models.OutcomeRenamedAndFlagged,
		Title:     file.DerivedTitle,
		Number:    created.Number,
		OldNumber: file.FileNumber,
		URL:       created.URL,
	}

	if s.config.DriftPolicy == config.DriftRename {
		newName, err := s.rename(ctx, file, created.Number)
		if err == nil {
			visited[newName] = true
			outcome.NewFile = newName
			return outcome
		}
		logger.Warn(ctx, "rename not possible, flagging file instead", "error", err)
	}

	if err := s.store.Write(file.Path, parser.Flag(file, created.Number)); err != nil {
		outcome.Kind = models.OutcomeFailed
		outcome.Err = domainErrors.ErrWriteFile.WithError(err).WithContext("file", file.Name)
		return outcome
	}
	outcome.NewFile = file.Name
	return outcome
}

var errRenameTargetExists = errors.New("rename target already exists")

// rename moves file to the name matching number and returns that name. When
// the content needs changing the new file is written first and the old one
// removed after; a failed removal rolls the new file back.
func (s *IssueSyncService) rename(ctx context.Context, file *models.IssueFile, number int) (string, error) {
	newName := parser.FileName(number, file.NumberWidth, file.Slug)
	newPath := filepath.Join(filepath.Dir(file.Path), newName)

	exists, err := s.store.Exists(newPath)
	if err != nil {
		return "", fmt.Errorf("error checking %s: %w", newName, err)
	}
	if exists {
		return "", fmt.Errorf("%w: %s", errRenameTargetExists, newName)
	}

	content := parser.RewriteHeaderNumber(file.Body, number)
	if content == file.Content {
		if err := s.store.Rename(file.Path, newPath); err != nil {
			return "", domainErrors.ErrRenameFile.WithError(err).WithContext("file", file.Name)
		}
		logger.Info(ctx, "renamed issue file", "new_file", newName)
		return newName, nil
	}

	if err := s.store.Write(newPath, content); err != nil {
		return "", domainErrors.ErrWriteFile.WithError(err).WithContext("file", newName)
	}
	if err := s.store.Delete(file.Path); err != nil {
		_ = s.store.Delete(newPath)
		return "", domainErrors.ErrRenameFile.WithError(err).WithContext("file", file.Name)
	}

	logger.Info(ctx, "rewrote issue file under new name", "new_file", newName)
	return newName, nil
}

func skipped(file, title string, number int, reason models.SkipReason) models.Outcome {
	return models.Outcome{
		File:   file,
		Kind:   models.OutcomeSkipped,
		Title:  title,
		Number: number,
		Reason: reason,
	}
}

func failed(file, title string, number int, err error) models.Outcome {
	return models.Outcome{
		File:   file,
		Kind:   models.OutcomeFailed,
		Title:  title,
		Number: number,
		Err:    err,
	}
}
