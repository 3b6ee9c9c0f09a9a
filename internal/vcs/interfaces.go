package vcs

import (
	"context"

	"github.com/thomas-vilte/issuesync/internal/models"
)

// IssueTracker is the remote side of a sync run. It carries no business logic.
type IssueTracker interface {
	// GetIssue probes a number. Missing and deleted issues are results, not errors.
	GetIssue(ctx context.Context, number int) models.ProbeResult
	// UpdateIssue overwrites the body and, when state is not empty, the state.
	UpdateIssue(ctx context.Context, number int, body string, state string) (*models.RemoteIssue, error)
	// CreateIssue opens a new issue; the tracker assigns the number.
	CreateIssue(ctx context.Context, title string, body string, labels []string) (*models.RemoteIssue, error)
	// ListIssues returns one page, pull requests included, in creation order.
	ListIssues(ctx context.Context, state string, page int, pageSize int) ([]models.RemoteIssue, error)
}

// RepositoryInspector exposes the read-only calls used for diagnostics.
type RepositoryInspector interface {
	GetRepository(ctx context.Context) (*models.Repository, error)
	GetAuthenticatedUser(ctx context.Context) (string, error)
	ListIssues(ctx context.Context, state string, page int, pageSize int) ([]models.RemoteIssue, error)
}
