package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/go-github/v80/github"
	domainErrors "github.com/thomas-vilte/issuesync/internal/errors"
	"github.com/thomas-vilte/issuesync/internal/logger"
	"github.com/thomas-vilte/issuesync/internal/models"
	"github.com/thomas-vilte/issuesync/internal/vcs"
	"golang.org/x/oauth2"
)

var (
	_ vcs.IssueTracker        = (*GitHubClient)(nil)
	_ vcs.RepositoryInspector = (*GitHubClient)(nil)
)

type IssuesService interface {
	Get(ctx context.Context, owner, repo string, number int) (*github.Issue, *github.Response, error)
	Edit(ctx context.Context, owner, repo string, number int, issue *github.IssueRequest) (*github.Issue, *github.Response, error)
	Create(ctx context.Context, owner, repo string, issue *github.IssueRequest) (*github.Issue, *github.Response, error)
	ListByRepo(ctx context.Context, owner, repo string, opts *github.IssueListByRepoOptions) ([]*github.Issue, *github.Response, error)
}

type RepositoriesService interface {
	Get(ctx context.Context, owner, repo string) (*github.Repository, *github.Response, error)
}

type UsersService interface {
	Get(ctx context.Context, user string) (*github.User, *github.Response, error)
}

const (
	defaultMaxRetries      = 3
	defaultInitialInterval = 500 * time.Millisecond
)

type GitHubClient struct {
	issuesService   IssuesService
	repoService     RepositoriesService
	usersService    UsersService
	owner           string
	repo            string
	maxRetries      uint64
	initialInterval time.Duration
}

// Option customises a GitHubClient.
type Option func(*GitHubClient)

// WithRetry bounds the retries of idempotent reads. Zero disables retrying.
func WithRetry(maxRetries int, initialInterval time.Duration) Option {
	return func(c *GitHubClient) {
		if maxRetries >= 0 {
			c.maxRetries = uint64(maxRetries)
		}
		if initialInterval > 0 {
			c.initialInterval = initialInterval
		}
	}
}

func NewGitHubClient(owner, repo, token string, opts ...Option) *GitHubClient {
	var httpClient *http.Client
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		httpClient = oauth2.NewClient(context.Background(), ts)
	}

	client := github.NewClient(httpClient)
	return NewGitHubClientWithServices(client.Issues, client.Repositories, client.Users, owner, repo, opts...)
}

func NewGitHubClientWithServices(
	issuesService IssuesService,
	repoService RepositoriesService,
	usersService UsersService,
	owner string,
	repo string,
	opts ...Option,
) *GitHubClient {
	c := &GitHubClient{
		issuesService:   issuesService,
		repoService:     repoService,
		usersService:    usersService,
		owner:           owner,
		repo:            repo,
		maxRetries:      defaultMaxRetries,
		initialInterval: defaultInitialInterval,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (ghc *GitHubClient) repoSlug() string {
	return fmt.Sprintf("%s/%s", ghc.owner, ghc.repo)
}

func (ghc *GitHubClient) GetIssue(ctx context.Context, number int) models.ProbeResult {
	log := logger.FromContext(ctx)

	log.Debug("probing github issue",
		"repo", ghc.repoSlug(),
		"issue_number", number)

	var (
		issue  *github.Issue
		status int
	)
	err := ghc.retry(ctx, "get issue", func() (*github.Response, error) {
		var resp *github.Response
		var err error
		issue, resp, err = ghc.issuesService.Get(ctx, ghc.owner, ghc.repo, number)
		status = statusCode(resp)
		return resp, err
	})

	switch {
	case err == nil:
		remote := toRemoteIssue(issue)
		log.Debug("github issue found",
			"issue_number", number,
			"state", remote.State,
			"pull_request", remote.IsPullRequest)
		return models.Found(remote)
	case status == http.StatusNotFound:
		return models.NotFound()
	case status == http.StatusGone:
		return models.Gone()
	default:
		log.Error("failed to probe github issue",
			"error", err,
			"repo", ghc.repoSlug(),
			"issue_number", number)
		return models.TransportError(mapError(err, status, domainErrors.ErrGetIssue, "get issue").
			WithContext("issue_number", number))
	}
}

func (ghc *GitHubClient) UpdateIssue(ctx context.Context, number int, body string, state string) (*models.RemoteIssue, error) {
	log := logger.FromContext(ctx)

	request := &github.IssueRequest{Body: github.Ptr(body)}
	if state != "" {
		request.State = github.Ptr(state)
	}

	ghIssue, resp, err := ghc.issuesService.Edit(ctx, ghc.owner, ghc.repo, number, request)
	if err != nil {
		log.Error("failed to update github issue",
			"error", err,
			"repo", ghc.repoSlug(),
			"issue_number", number)
		return nil, mapError(err, statusCode(resp), domainErrors.ErrUpdateIssue, "update issue").
			WithContext("issue_number", number)
	}

	log.Info("github issue updated",
		"issue_number", number,
		"state", ghIssue.GetState())
	return toRemoteIssue(ghIssue), nil
}

func (ghc *GitHubClient) CreateIssue(ctx context.Context, title string, body string, labels []string) (*models.RemoteIssue, error) {
	log := logger.FromContext(ctx)

	log.Info("creating github issue",
		"repo", ghc.repoSlug(),
		"title", title,
		"labels_count", len(labels))

	if labels == nil {
		labels = []string{}
	}

	request := &github.IssueRequest{
		Title:  github.Ptr(title),
		Body:   github.Ptr(body),
		Labels: &labels,
	}

	ghIssue, resp, err := ghc.issuesService.Create(ctx, ghc.owner, ghc.repo, request)
	if err != nil {
		log.Error("failed to create github issue",
			"error", err,
			"repo", ghc.repoSlug())
		return nil, mapError(err, statusCode(resp), domainErrors.ErrCreateIssue, "create issue")
	}

	issue := toRemoteIssue(ghIssue)
	log.Info("github issue created",
		"issue_number", issue.Number,
		"issue_url", issue.URL)
	return issue, nil
}

func (ghc *GitHubClient) ListIssues(ctx context.Context, state string, page int, pageSize int) ([]models.RemoteIssue, error) {
	opts := &github.IssueListByRepoOptions{
		State:     state,
		Sort:      "created",
		Direction: "asc",
		ListOptions: github.ListOptions{
			Page:    page,
			PerPage: pageSize,
		},
	}

	var (
		issues []*github.Issue
		status int
	)
	err := ghc.retry(ctx, "list issues", func() (*github.Response, error) {
		var resp *github.Response
		var err error
		issues, resp, err = ghc.issuesService.ListByRepo(ctx, ghc.owner, ghc.repo, opts)
		status = statusCode(resp)
		return resp, err
	})
	if err != nil {
		return nil, mapError(err, status, domainErrors.ErrListIssues, "list issues").
			WithContext("page", page)
	}

	result := make([]models.RemoteIssue, 0, len(issues))
	for _, issue := range issues {
		result = append(result, *toRemoteIssue(issue))
	}

	logger.FromContext(ctx).Debug("listed github issues",
		"page", page,
		"count", len(result))
	return result, nil
}

func (ghc *GitHubClient) GetRepository(ctx context.Context) (*models.Repository, error) {
	var (
		repo   *github.Repository
		status int
	)
	err := ghc.retry(ctx, "get repository", func() (*github.Response, error) {
		var resp *github.Response
		var err error
		repo, resp, err = ghc.repoService.Get(ctx, ghc.owner, ghc.repo)
		status = statusCode(resp)
		return resp, err
	})
	if err != nil {
		return nil, mapError(err, status, domainErrors.ErrRepositoryNotFound, "get repository").
			WithContext("repo", ghc.repoSlug())
	}

	return &models.Repository{
		FullName:  repo.GetFullName(),
		HasIssues: repo.GetHasIssues(),
		Private:   repo.GetPrivate(),
		URL:       repo.GetHTMLURL(),
	}, nil
}

func (ghc *GitHubClient) GetAuthenticatedUser(ctx context.Context) (string, error) {
	user, resp, err := ghc.usersService.Get(ctx, "")
	if err != nil {
		if statusCode(resp) == http.StatusUnauthorized {
			return "", domainErrors.ErrGitHubTokenInvalid.
				WithContext("operation", "get authenticated user")
		}
		return "", fmt.Errorf("error obtaining authenticated user: %w", err)
	}

	if user.Login == nil {
		return "", fmt.Errorf("authenticated user has no login")
	}

	return *user.Login, nil
}

// retry runs an idempotent call with bounded exponential backoff. Only network
// errors, 5xx and 429 are retried.
func (ghc *GitHubClient) retry(ctx context.Context, operation string, call func() (*github.Response, error)) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = ghc.initialInterval
	policy := backoff.WithContext(backoff.WithMaxRetries(bo, ghc.maxRetries), ctx)

	attempt := 0
	return backoff.Retry(func() error {
		attempt++
		resp, err := call()
		if err == nil {
			return nil
		}
		if !isRetryable(resp, err) {
			return backoff.Permanent(err)
		}
		logger.FromContext(ctx).Warn("retrying github request",
			"operation", operation,
			"attempt", attempt,
			"error", err)
		return err
	}, policy)
}

func isRetryable(resp *github.Response, err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		return false
	}
	status := statusCode(resp)
	if status == 0 {
		return true
	}
	return status >= http.StatusInternalServerError || status == http.StatusTooManyRequests
}

func mapError(err error, status int, fallback *domainErrors.AppError, operation string) *domainErrors.AppError {
	var rateErr *github.RateLimitError
	var abuseErr *github.AbuseRateLimitError
	switch {
	case errors.As(err, &rateErr), errors.As(err, &abuseErr), status == http.StatusTooManyRequests:
		return domainErrors.ErrGitHubRateLimit.WithError(err).WithContext("operation", operation)
	case status == http.StatusUnauthorized:
		return domainErrors.ErrGitHubTokenInvalid.WithError(err).WithContext("operation", operation)
	case status == http.StatusForbidden:
		return domainErrors.ErrGitHubInsufficientPerms.WithError(err).WithContext("operation", operation)
	default:
		return fallback.WithError(err).WithContext("operation", operation).WithContext("status", status)
	}
}

func statusCode(resp *github.Response) int {
	if resp == nil || resp.Response == nil {
		return 0
	}
	return resp.StatusCode
}

func toRemoteIssue(issue *github.Issue) *models.RemoteIssue {
	labels := make([]string, 0, len(issue.Labels))
	for _, label := range issue.Labels {
		if label.Name != nil {
			labels = append(labels, label.GetName())
		}
	}

	return &models.RemoteIssue{
		Number:        issue.GetNumber(),
		State:         issue.GetState(),
		IsPullRequest: issue.IsPullRequest(),
		Title:         issue.GetTitle(),
		Body:          issue.GetBody(),
		URL:           issue.GetHTMLURL(),
		Labels:        labels,
	}
}
