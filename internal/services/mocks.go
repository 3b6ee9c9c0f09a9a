package services

import (
	"context"

	"github.com/google/go-github/v80/github"
	"github.com/stretchr/testify/mock"
	"github.com/thomas-vilte/issuesync/internal/models"
)

type (
	MockIssueTracker struct {
		mock.Mock
	}

	MockReleaseFetcher struct {
		mock.Mock
	}
)

func (m *MockIssueTracker) GetIssue(ctx context.Context, number int) models.ProbeResult {
	args := m.Called(ctx, number)
	return args.Get(0).(models.ProbeResult)
}

func (m *MockIssueTracker) UpdateIssue(ctx context.Context, number int, body string, state string) (*models.RemoteIssue, error) {
	args := m.Called(ctx, number, body, state)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RemoteIssue), args.Error(1)
}

func (m *MockIssueTracker) CreateIssue(ctx context.Context, title string, body string, labels []string) (*models.RemoteIssue, error) {
	args := m.Called(ctx, title, body, labels)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RemoteIssue), args.Error(1)
}

func (m *MockIssueTracker) ListIssues(ctx context.Context, state string, page int, pageSize int) ([]models.RemoteIssue, error) {
	args := m.Called(ctx, state, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.RemoteIssue), args.Error(1)
}

func (m *MockReleaseFetcher) GetLatestRelease(ctx context.Context, owner, repo string) (*github.RepositoryRelease, *github.Response, error) {
	args := m.Called(ctx, owner, repo)
	var release *github.RepositoryRelease
	if r := args.Get(0); r != nil {
		release = r.(*github.RepositoryRelease)
	}
	var resp *github.Response
	if r := args.Get(1); r != nil {
		resp = r.(*github.Response)
	}
	return release, resp, args.Error(2)
}
