package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/thomas-vilte/issuesync/internal/config"
	"github.com/thomas-vilte/issuesync/internal/discovery"
	domainErrors "github.com/thomas-vilte/issuesync/internal/errors"
	"github.com/thomas-vilte/issuesync/internal/event"
	"github.com/thomas-vilte/issuesync/internal/models"
	"github.com/thomas-vilte/issuesync/internal/workspace"
)

// fakeTracker is an in-memory issue tracker that numbers new issues sequentially.
type fakeTracker struct {
	issues   map[int]*models.RemoteIssue
	gone     map[int]bool
	probeErr map[int]error
	next     int

	creates int
	updates int
	lists   int
}

func newFakeTracker(next int, issues ...models.RemoteIssue) *fakeTracker {
	f := &fakeTracker{
		issues:   make(map[int]*models.RemoteIssue),
		gone:     make(map[int]bool),
		probeErr: make(map[int]error),
		next:     next,
	}
	for i := range issues {
		issue := issues[i]
		f.issues[issue.Number] = &issue
	}
	return f
}

func (f *fakeTracker) GetIssue(_ context.Context, number int) models.ProbeResult {
	if err, ok := f.probeErr[number]; ok {
		return models.TransportError(err)
	}
	if f.gone[number] {
		return models.Gone()
	}
	issue, ok := f.issues[number]
	if !ok {
		return models.NotFound()
	}
	copied := *issue
	return models.Found(&copied)
}

func (f *fakeTracker) UpdateIssue(_ context.Context, number int, body string, state string) (*models.RemoteIssue, error) {
	f.updates++
	issue, ok := f.issues[number]
	if !ok {
		return nil, domainErrors.ErrUpdateIssue.WithContext("status", 404)
	}
	issue.Body = body
	issue.State = state
	copied := *issue
	return &copied, nil
}

func (f *fakeTracker) CreateIssue(_ context.Context, title string, body string, labels []string) (*models.RemoteIssue, error) {
	f.creates++
	issue := &models.RemoteIssue{
		Number: f.next,
		State:  models.StateOpen,
		Title:  title,
		Body:   body,
		Labels: labels,
		URL:    "https://github.com/octo/repo/issues/" + strconv.Itoa(f.next),
	}
	f.issues[f.next] = issue
	f.next++
	copied := *issue
	return &copied, nil
}

func (f *fakeTracker) ListIssues(_ context.Context, _ string, page int, pageSize int) ([]models.RemoteIssue, error) {
	f.lists++
	numbers := make([]int, 0, len(f.issues))
	for n := range f.issues {
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)

	start := (page - 1) * pageSize
	if start >= len(numbers) {
		return []models.RemoteIssue{}, nil
	}
	end := start + pageSize
	if end > len(numbers) {
		end = len(numbers)
	}

	result := make([]models.RemoteIssue, 0, end-start)
	for _, n := range numbers[start:end] {
		result = append(result, *f.issues[n])
	}
	return result, nil
}

func (f *fakeTracker) mutations() int {
	return f.creates + f.updates
}

func newTestWorkspace(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	dir := filepath.Join(root, "docs", "issues")
	require.NoError(t, os.MkdirAll(dir, 0755))
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
	return root
}

func newTestConfig(root string) *config.Config {
	cfg := config.Default()
	cfg.Token = "ghp_test"
	cfg.Owner = "octo"
	cfg.Repo = "repo"
	cfg.Workspace = root
	return cfg
}

func newTestService(cfg *config.Config, tracker *fakeTracker, opts ...IssueSyncOption) *IssueSyncService {
	store := workspace.NewOSFileStore()
	discoverer := discovery.NewDiscoverer(store, cfg.Workspace, cfg.IssuesDir)
	return NewIssueSyncService(tracker, store, discoverer, cfg, opts...)
}

func readIssueFile(t *testing.T, root, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, "docs", "issues", name))
	require.NoError(t, err)
	return string(data)
}

func issueFileExists(root, name string) bool {
	_, err := os.Stat(filepath.Join(root, "docs", "issues", name))
	return err == nil
}

func outcomeFor(t *testing.T, summary *models.Summary, file string) models.Outcome {
	t.Helper()
	for _, o := range summary.Outcomes {
		if o.File == file {
			return o
		}
	}
	t.Fatalf("no outcome for %s", file)
	return models.Outcome{}
}

func TestIssueSyncService_Run(t *testing.T) {
	ctx := context.Background()

	t.Run("Success - Updates the open issue matching the prefix", func(t *testing.T) {
		root := newTestWorkspace(t, map[string]string{"001-a.md": "#1: First\nnew body\n"})
		tracker := newFakeTracker(2, models.RemoteIssue{Number: 1, State: models.StateOpen, Title: "First", Body: "old"})

		summary, err := newTestService(newTestConfig(root), tracker).Run(ctx, event.Context{})

		require.NoError(t, err)
		o := outcomeFor(t, summary, "001-a.md")
		assert.Equal(t, models.OutcomeUpdated, o.Kind)
		assert.Equal(t, 1, o.Number)
		assert.Equal(t, "First", o.Title)
		assert.Equal(t, 1, tracker.mutations())
		assert.Equal(t, "#1: First\nnew body\n", tracker.issues[1].Body)
		assert.Equal(t, 0, tracker.lists)
	})

	t.Run("Success - Creates an issue when the number is free", func(t *testing.T) {
		root := newTestWorkspace(t, map[string]string{"002-add-fireball-sfx.md": "Play a sound\n"})
		tracker := newFakeTracker(2)

		summary, err := newTestService(newTestConfig(root), tracker).Run(ctx, event.Context{})

		require.NoError(t, err)
		o := outcomeFor(t, summary, "002-add-fireball-sfx.md")
		assert.Equal(t, models.OutcomeCreated, o.Kind)
		assert.Equal(t, 2, o.Number)
		assert.Equal(t, "add fireball sfx", tracker.issues[2].Title)
		assert.Equal(t, config.DefaultLabels, tracker.issues[2].Labels)
		assert.Equal(t, "Play a sound\n", readIssueFile(t, root, "002-add-fireball-sfx.md"))
		assert.Equal(t, 1, summary.Created)
	})

	t.Run("Skip - Closed issue at the prefix is not reopened", func(t *testing.T) {
		root := newTestWorkspace(t, map[string]string{"003-bar.md": "bar\n"})
		tracker := newFakeTracker(4, models.RemoteIssue{Number: 3, State: models.StateClosed, Title: "bar", Body: "old"})

		summary, err := newTestService(newTestConfig(root), tracker).Run(ctx, event.Context{})

		require.NoError(t, err)
		o := outcomeFor(t, summary, "003-bar.md")
		assert.Equal(t, models.OutcomeSkipped, o.Kind)
		assert.Equal(t, models.SkipClosedIssue, o.Reason)
		assert.Equal(t, 0, tracker.mutations())
		assert.Equal(t, models.StateClosed, tracker.issues[3].State)
		assert.Equal(t, 1, summary.Skipped)
	})

	t.Run("Success - Closed issue is reopened when allowed", func(t *testing.T) {
		root := newTestWorkspace(t, map[string]string{"003-bar.md": "bar\n"})
		tracker := newFakeTracker(4, models.RemoteIssue{Number: 3, State: models.StateClosed, Title: "bar", Body: "old"})
		cfg := newTestConfig(root)
		cfg.ReopenClosed = true

		summary, err := newTestService(cfg, tracker).Run(ctx, event.Context{})

		require.NoError(t, err)
		assert.Equal(t, models.OutcomeUpdated, outcomeFor(t, summary, "003-bar.md").Kind)
		assert.Equal(t, models.StateOpen, tracker.issues[3].State)
	})

	t.Run("Skip - Number belongs to a pull request", func(t *testing.T) {
		root := newTestWorkspace(t, map[string]string{"004-pr.md": "pr\n"})
		tracker := newFakeTracker(5, models.RemoteIssue{Number: 4, State: models.StateOpen, IsPullRequest: true})

		summary, err := newTestService(newTestConfig(root), tracker).Run(ctx, event.Context{})

		require.NoError(t, err)
		o := outcomeFor(t, summary, "004-pr.md")
		assert.Equal(t, models.SkipPullRequest, o.Reason)
		assert.Equal(t, 0, tracker.mutations())
	})

	t.Run("Success - Reuses an issue with the same title", func(t *testing.T) {
		root := newTestWorkspace(t, map[string]string{"007-fix-jump-bug.md": "jump fix\n"})
		tracker := newFakeTracker(30,
			models.RemoteIssue{Number: 12, State: models.StateOpen, Title: "fix jump", IsPullRequest: false},
			models.RemoteIssue{Number: 15, State: models.StateOpen, Title: "fix jump bug", IsPullRequest: true},
			models.RemoteIssue{Number: 20, State: models.StateClosed, Title: "fix jump bug", Body: "old"},
		)

		summary, err := newTestService(newTestConfig(root), tracker).Run(ctx, event.Context{})

		require.NoError(t, err)
		o := outcomeFor(t, summary, "007-fix-jump-bug.md")
		assert.Equal(t, models.OutcomeUpdated, o.Kind)
		assert.Equal(t, 20, o.Number)
		assert.Equal(t, 0, tracker.creates)
		assert.Equal(t, models.StateOpen, tracker.issues[20].State)
		assert.Equal(t, "jump fix\n", tracker.issues[20].Body)
	})

	t.Run("Success - Gone issue number takes the availability path", func(t *testing.T) {
		root := newTestWorkspace(t, map[string]string{"006-deleted.md": "body\n"})
		tracker := newFakeTracker(6)
		tracker.gone[6] = true

		summary, err := newTestService(newTestConfig(root), tracker).Run(ctx, event.Context{})

		require.NoError(t, err)
		assert.Equal(t, models.OutcomeCreated, outcomeFor(t, summary, "006-deleted.md").Kind)
		assert.Equal(t, 1, tracker.lists)
	})

	t.Run("Error - Transport error is counted and the batch continues", func(t *testing.T) {
		root := newTestWorkspace(t, map[string]string{
			"001-a.md": "a\n",
			"002-b.md": "b\n",
		})
		tracker := newFakeTracker(3, models.RemoteIssue{Number: 2, State: models.StateOpen, Title: "b"})
		tracker.probeErr[1] = domainErrors.ErrGetIssue.WithContext("status", 502)

		var seen []string
		svc := newTestService(newTestConfig(root), tracker, WithOutcomeHandler(func(o models.Outcome) {
			seen = append(seen, o.File)
		}))
		summary, err := svc.Run(ctx, event.Context{})

		require.NoError(t, err)
		failedOutcome := outcomeFor(t, summary, "001-a.md")
		assert.Equal(t, models.OutcomeFailed, failedOutcome.Kind)
		assert.True(t, errors.Is(failedOutcome.Err, domainErrors.ErrGetIssue))
		assert.Equal(t, models.OutcomeUpdated, outcomeFor(t, summary, "002-b.md").Kind)
		assert.Equal(t, 1, summary.Failed)
		assert.Equal(t, 1, summary.Succeeded)
		assert.Equal(t, []string{"001-a.md", "002-b.md"}, seen)
	})

	t.Run("Skip - Empty file is not probed", func(t *testing.T) {
		root := newTestWorkspace(t, map[string]string{"008-empty.md": "  \n\t\n"})
		tracker := newFakeTracker(1)
		tracker.probeErr[8] = errors.New("must not be probed")

		summary, err := newTestService(newTestConfig(root), tracker).Run(ctx, event.Context{})

		require.NoError(t, err)
		assert.Equal(t, models.SkipEmptyContent, outcomeFor(t, summary, "008-empty.md").Reason)
	})

	t.Run("Skip - Reports rejected names without processing them", func(t *testing.T) {
		root := newTestWorkspace(t, map[string]string{
			"test.md":         "x",
			"001test.md":      "x",
			"001-my-issue.md": "mine\n",
		})
		tracker := newFakeTracker(1)

		summary, err := newTestService(newTestConfig(root), tracker).Run(ctx, event.Context{})

		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"test.md", "001test.md"}, summary.Rejected)
		assert.Equal(t, 1, summary.Total)
	})

	t.Run("Error - Unreadable issues directory is fatal", func(t *testing.T) {
		cfg := newTestConfig(t.TempDir())

		summary, err := newTestService(cfg, newFakeTracker(1)).Run(ctx, event.Context{})

		assert.Nil(t, summary)
		assert.True(t, errors.Is(err, domainErrors.ErrIssuesDirUnreadable))
	})

	t.Run("Success - Uses the push change list", func(t *testing.T) {
		root := newTestWorkspace(t, map[string]string{
			"001-a.md": "a\n",
			"002-b.md": "b\n",
		})
		tracker := newFakeTracker(3,
			models.RemoteIssue{Number: 1, State: models.StateOpen},
			models.RemoteIssue{Number: 2, State: models.StateOpen},
		)
		ev := event.Context{Name: event.EventPush, ChangedFiles: []string{"docs/issues/002-b.md", "README.md"}}

		summary, err := newTestService(newTestConfig(root), tracker).Run(ctx, ev)

		require.NoError(t, err)
		assert.Equal(t, 1, summary.Total)
		assert.Equal(t, "002-b.md", summary.Outcomes[0].File)
		assert.Equal(t, 1, tracker.updates)
	})
}

func TestIssueSyncService_Drift(t *testing.T) {
	ctx := context.Background()

	t.Run("Flag - Adds a banner and keeps the name", func(t *testing.T) {
		root := newTestWorkspace(t, map[string]string{"005-foo.md": "foo body\n"})
		tracker := newFakeTracker(9)

		summary, err := newTestService(newTestConfig(root), tracker).Run(ctx, event.Context{})

		require.NoError(t, err)
		o := outcomeFor(t, summary, "005-foo.md")
		assert.Equal(t, models.OutcomeRenamedAndFlagged, o.Kind)
		assert.Equal(t, 5, o.OldNumber)
		assert.Equal(t, 9, o.Number)
		assert.Equal(t, "005-foo.md", o.NewFile)

		content := readIssueFile(t, root, "005-foo.md")
		assert.True(t, strings.HasPrefix(content, "<!-- issuesync:drift file=#5 issue=#9 -->\n"))
		assert.True(t, strings.HasSuffix(content, "\n\nfoo body\n"))
		assert.Contains(t, content, "009-foo.md")
		assert.Equal(t, "foo body\n", tracker.issues[9].Body)
		assert.Equal(t, 1, summary.Drifted)
	})

	t.Run("Flag - Second run updates the assigned issue", func(t *testing.T) {
		root := newTestWorkspace(t, map[string]string{"005-foo.md": "foo body\n"})
		tracker := newFakeTracker(9)
		svc := newTestService(newTestConfig(root), tracker)

		_, err := svc.Run(ctx, event.Context{})
		require.NoError(t, err)
		flagged := readIssueFile(t, root, "005-foo.md")

		summary, err := svc.Run(ctx, event.Context{})

		require.NoError(t, err)
		o := outcomeFor(t, summary, "005-foo.md")
		assert.Equal(t, models.OutcomeUpdated, o.Kind)
		assert.Equal(t, 9, o.Number)
		assert.Equal(t, 1, tracker.creates)
		assert.Equal(t, "foo body\n", tracker.issues[9].Body)
		assert.Equal(t, flagged, readIssueFile(t, root, "005-foo.md"))
	})

	t.Run("Rename - Rewrites the header under the assigned number", func(t *testing.T) {
		root := newTestWorkspace(t, map[string]string{"005-foo.md": "#5: Foo\nfoo body\n"})
		tracker := newFakeTracker(9)
		cfg := newTestConfig(root)
		cfg.DriftPolicy = config.DriftRename

		summary, err := newTestService(cfg, tracker).Run(ctx, event.Context{})

		require.NoError(t, err)
		o := outcomeFor(t, summary, "005-foo.md")
		assert.Equal(t, models.OutcomeRenamedAndFlagged, o.Kind)
		assert.Equal(t, "009-foo.md", o.NewFile)
		assert.False(t, issueFileExists(root, "005-foo.md"))
		assert.Equal(t, "#9: Foo\nfoo body\n", readIssueFile(t, root, "009-foo.md"))
		assert.Equal(t, "Foo", tracker.issues[9].Title)
	})

	t.Run("Rename - Moves a file without header unchanged", func(t *testing.T) {
		root := newTestWorkspace(t, map[string]string{"05-foo.md": "plain body\n"})
		tracker := newFakeTracker(12)
		cfg := newTestConfig(root)
		cfg.DriftPolicy = config.DriftRename

		summary, err := newTestService(cfg, tracker).Run(ctx, event.Context{})

		require.NoError(t, err)
		assert.Equal(t, "12-foo.md", outcomeFor(t, summary, "05-foo.md").NewFile)
		assert.Equal(t, "plain body\n", readIssueFile(t, root, "12-foo.md"))
	})

	t.Run("Rename - Second run is idempotent", func(t *testing.T) {
		root := newTestWorkspace(t, map[string]string{"005-foo.md": "#5: Foo\nfoo body\n"})
		tracker := newFakeTracker(9)
		cfg := newTestConfig(root)
		cfg.DriftPolicy = config.DriftRename
		svc := newTestService(cfg, tracker)

		_, err := svc.Run(ctx, event.Context{})
		require.NoError(t, err)
		summary, err := svc.Run(ctx, event.Context{})

		require.NoError(t, err)
		o := outcomeFor(t, summary, "009-foo.md")
		assert.Equal(t, models.OutcomeUpdated, o.Kind)
		assert.Equal(t, 9, o.Number)
		assert.Equal(t, 1, tracker.creates)
	})

	t.Run("Rename - Falls back to flagging when the target exists", func(t *testing.T) {
		root := newTestWorkspace(t, map[string]string{
			"005-foo.md": "foo body\n",
			"009-foo.md": "someone else\n",
		})
		tracker := newFakeTracker(9)
		cfg := newTestConfig(root)
		cfg.DriftPolicy = config.DriftRename

		summary, err := newTestService(cfg, tracker).Run(ctx, event.Context{})

		require.NoError(t, err)
		o := outcomeFor(t, summary, "005-foo.md")
		assert.Equal(t, models.OutcomeRenamedAndFlagged, o.Kind)
		assert.Equal(t, "005-foo.md", o.NewFile)
		assert.True(t, strings.HasPrefix(readIssueFile(t, root, "005-foo.md"), "<!-- issuesync:drift file=#5 issue=#9 -->"))
	})

	t.Run("Flag - Stale banner is dropped when the numbers line up again", func(t *testing.T) {
		root := newTestWorkspace(t, map[string]string{
			"005-foo.md": "<!-- issuesync:drift file=#5 issue=#9 -->\n> warning\n> rename\n\nfoo body\n",
		})
		tracker := newFakeTracker(5)
		tracker.gone[9] = true

		summary, err := newTestService(newTestConfig(root), tracker).Run(ctx, event.Context{})

		require.NoError(t, err)
		assert.Equal(t, models.OutcomeCreated, outcomeFor(t, summary, "005-foo.md").Kind)
		assert.Equal(t, "foo body\n", readIssueFile(t, root, "005-foo.md"))
	})

	t.Run("Flag - Banner is dropped after a manual rename to the assigned number", func(t *testing.T) {
		root := newTestWorkspace(t, map[string]string{
			"009-foo.md": "<!-- issuesync:drift file=#5 issue=#9 -->\n> warning\n> rename\n\nfoo body\n",
		})
		tracker := newFakeTracker(10, models.RemoteIssue{Number: 9, Title: "foo", State: models.StateOpen})

		summary, err := newTestService(newTestConfig(root), tracker).Run(ctx, event.Context{})

		require.NoError(t, err)
		o := outcomeFor(t, summary, "009-foo.md")
		assert.Equal(t, models.OutcomeUpdated, o.Kind)
		assert.Equal(t, 9, o.Number)
		assert.Equal(t, "foo body\n", tracker.issues[9].Body)
		assert.Equal(t, "foo body\n", readIssueFile(t, root, "009-foo.md"))
	})

	t.Run("Flag - Banner is kept while the name still drifts", func(t *testing.T) {
		content := "<!-- issuesync:drift file=#5 issue=#9 -->\n> warning\n> rename\n\nfoo body\n"
		root := newTestWorkspace(t, map[string]string{"005-foo.md": content})
		tracker := newFakeTracker(10, models.RemoteIssue{Number: 9, Title: "foo", State: models.StateOpen})

		_, err := newTestService(newTestConfig(root), tracker).Run(ctx, event.Context{})

		require.NoError(t, err)
		assert.Equal(t, content, readIssueFile(t, root, "005-foo.md"))
	})
}

func TestIssueSyncService_Idempotence(t *testing.T) {
	ctx := context.Background()
	root := newTestWorkspace(t, map[string]string{
		"001-a.md":            "a\n",
		"002-fix-jump-bug.md": "jump\n",
		"003-bar.md":          "bar\n",
		"005-foo.md":          "foo\n",
	})
	tracker := newFakeTracker(9,
		models.RemoteIssue{Number: 1, State: models.StateOpen, Title: "a"},
		models.RemoteIssue{Number: 3, State: models.StateClosed, Title: "bar"},
		models.RemoteIssue{Number: 4, State: models.StateOpen, Title: "fix jump bug"},
	)
	svc := newTestService(newTestConfig(root), tracker)

	first, err := svc.Run(ctx, event.Context{})
	require.NoError(t, err)
	createsAfterFirst := tracker.creates

	second, err := svc.Run(ctx, event.Context{})
	require.NoError(t, err)

	assert.Equal(t, 1, createsAfterFirst)
	assert.Equal(t, createsAfterFirst, tracker.creates)
	assert.Equal(t, first.Total, second.Total)
	for _, o := range second.Outcomes {
		assert.Contains(t, []models.OutcomeKind{models.OutcomeUpdated, models.OutcomeSkipped}, o.Kind, o.File)
	}
	assert.Equal(t, 4, outcomeFor(t, second, "002-fix-jump-bug.md").Number)
	assert.Equal(t, 9, outcomeFor(t, second, "005-foo.md").Number)
}

func TestIssueSyncService_DryRun(t *testing.T) {
	ctx := context.Background()
	root := newTestWorkspace(t, map[string]string{
		"001-a.md":   "new a\n",
		"005-foo.md": "foo\n",
	})
	tracker := newFakeTracker(9, models.RemoteIssue{Number: 1, State: models.StateOpen, Title: "a", Body: "old a\n"})
	cfg := newTestConfig(root)
	cfg.DryRun = true

	summary, err := newTestService(cfg, tracker).Run(ctx, event.Context{})

	require.NoError(t, err)
	assert.True(t, summary.DryRun)
	assert.Equal(t, 0, tracker.mutations())

	update := outcomeFor(t, summary, "001-a.md")
	assert.Equal(t, models.SkipDryRun, update.Reason)
	assert.Equal(t, models.OutcomeUpdated, update.Planned)
	assert.Equal(t, "-old a\n+new a\n", update.Diff)

	create := outcomeFor(t, summary, "005-foo.md")
	assert.Equal(t, models.OutcomeCreated, create.Planned)
	assert.Equal(t, "foo\n", readIssueFile(t, root, "005-foo.md"))
}

func TestIssueSyncService_Pagination(t *testing.T) {
	ctx := context.Background()

	page := func(titles ...string) []models.RemoteIssue {
		issues := make([]models.RemoteIssue, 0, len(titles))
		for i, title := range titles {
			issues = append(issues, models.RemoteIssue{Number: 100 + i, Title: title, State: models.StateOpen})
		}
		return issues
	}

	newMockService := func(t *testing.T, tracker *MockIssueTracker, maxPages int) (*IssueSyncService, string) {
		root := newTestWorkspace(t, map[string]string{"007-fix-jump-bug.md": "jump\n"})
		cfg := newTestConfig(root)
		cfg.PageSize = 2
		cfg.MaxPages = maxPages
		store := workspace.NewOSFileStore()
		return NewIssueSyncService(tracker, store, discovery.NewDiscoverer(store, root, cfg.IssuesDir), cfg), root
	}

	t.Run("Success - N full pages and a short page take N+1 calls", func(t *testing.T) {
		tracker := new(MockIssueTracker)
		tracker.On("GetIssue", mock.Anything, 7).Return(models.NotFound())
		tracker.On("ListIssues", mock.Anything, models.StateAll, 1, 2).Return(page("x", "y"), nil).Once()
		tracker.On("ListIssues", mock.Anything, models.StateAll, 2, 2).Return(page("x", "y"), nil).Once()
		tracker.On("ListIssues", mock.Anything, models.StateAll, 3, 2).Return(page("x", "y"), nil).Once()
		tracker.On("ListIssues", mock.Anything, models.StateAll, 4, 2).Return(page("z"), nil).Once()
		tracker.On("CreateIssue", mock.Anything, "fix jump bug", "jump\n", config.DefaultLabels).
			Return(&models.RemoteIssue{Number: 7, State: models.StateOpen, Title: "fix jump bug"}, nil).Once()
		svc, _ := newMockService(t, tracker, 50)

		summary, err := svc.Run(ctx, event.Context{})

		require.NoError(t, err)
		assert.Equal(t, models.OutcomeCreated, summary.Outcomes[0].Kind)
		tracker.AssertNumberOfCalls(t, "ListIssues", 4)
		tracker.AssertExpectations(t)
	})

	t.Run("Error - Page limit is reported for the file", func(t *testing.T) {
		tracker := new(MockIssueTracker)
		tracker.On("GetIssue", mock.Anything, 7).Return(models.NotFound())
		tracker.On("ListIssues", mock.Anything, models.StateAll, mock.Anything, 2).Return(page("x", "y"), nil)
		svc, _ := newMockService(t, tracker, 2)

		summary, err := svc.Run(ctx, event.Context{})

		require.NoError(t, err)
		o := summary.Outcomes[0]
		assert.Equal(t, models.OutcomeFailed, o.Kind)
		assert.True(t, errors.Is(o.Err, domainErrors.ErrPageLimit))
		tracker.AssertNumberOfCalls(t, "ListIssues", 2)
		tracker.AssertNotCalled(t, "CreateIssue", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Success - Default config lists every page of a large repository", func(t *testing.T) {
		root := newTestWorkspace(t, map[string]string{"7000-new-thing.md": "new\n"})
		existing := make([]models.RemoteIssue, 0, 5010)
		for n := 1; n <= 5010; n++ {
			existing = append(existing, models.RemoteIssue{Number: n, Title: "other", State: models.StateOpen})
		}
		tracker := newFakeTracker(7000, existing...)

		summary, err := newTestService(newTestConfig(root), tracker).Run(ctx, event.Context{})

		require.NoError(t, err)
		assert.Equal(t, models.OutcomeCreated, outcomeFor(t, summary, "7000-new-thing.md").Kind)
		assert.Equal(t, 51, tracker.lists)
		assert.Equal(t, 1, tracker.creates)
	})

	t.Run("Success - Title scan runs inside the registered wrapper", func(t *testing.T) {
		root := newTestWorkspace(t, map[string]string{"005-foo.md": "foo\n"})
		tracker := newFakeTracker(5)
		var scanned []string
		wrap := WithTitleScan(func(title string, scan func() error) error {
			scanned = append(scanned, title)
			return scan()
		})

		summary, err := newTestService(newTestConfig(root), tracker, wrap).Run(ctx, event.Context{})

		require.NoError(t, err)
		assert.Equal(t, []string{"foo"}, scanned)
		assert.Equal(t, 1, tracker.lists)
		assert.Equal(t, models.OutcomeCreated, outcomeFor(t, summary, "005-foo.md").Kind)
	})

	t.Run("Error - Create failure is counted", func(t *testing.T) {
		tracker := new(MockIssueTracker)
		tracker.On("GetIssue", mock.Anything, 7).Return(models.NotFound())
		tracker.On("ListIssues", mock.Anything, models.StateAll, 1, 2).Return(page(), nil)
		tracker.On("CreateIssue", mock.Anything, "fix jump bug", "jump\n", config.DefaultLabels).
			Return(nil, domainErrors.ErrGitHubInsufficientPerms)
		svc, root := newMockService(t, tracker, 50)

		summary, err := svc.Run(ctx, event.Context{})

		require.NoError(t, err)
		assert.Equal(t, 1, summary.Failed)
		assert.True(t, errors.Is(summary.Outcomes[0].Err, domainErrors.ErrGitHubInsufficientPerms))
		assert.Equal(t, "jump\n", readIssueFile(t, root, "007-fix-jump-bug.md"))
	})
}
