package errors

import "fmt"

// ErrorType defines the category of the error
type ErrorType string

const (
	TypeConfiguration ErrorType = "CONFIGURATION"
	TypeVCS           ErrorType = "VCS"
	TypeFilesystem    ErrorType = "FILESYSTEM"
	TypeEvent         ErrorType = "EVENT"
	TypeInternal      ErrorType = "INTERNAL"
)

// AppError represents a domain-level error with a type and an underlying error
type AppError struct {
	Type       ErrorType
	Message    string
	Context    map[string]interface{}
	Err        error
	Suggestion string
}

func (e *AppError) Error() string {
	var msg string
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %s (%v)", e.Type, e.Message, e.Err)
	} else {
		msg = fmt.Sprintf("%s: %s", e.Type, e.Message)
	}

	if e.Context != nil {
		if status, ok := e.Context["status"].(int); ok && status != 0 {
			msg += fmt.Sprintf(" - HTTP %d", status)
		}
	}

	return msg
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is reports sentinel equality by type and message, so errors.Is keeps working
// after WithError/WithContext produced a copy.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type && e.Message == t.Message
}

// WithError creates a new AppError with an underlying error
func (e *AppError) WithError(err error) *AppError {
	return &AppError{
		Type:       e.Type,
		Message:    e.Message,
		Context:    e.Context,
		Err:        err,
		Suggestion: e.Suggestion,
	}
}

// WithContext creates a new AppError with additional context
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	ctx := make(map[string]interface{})
	for k, v := range e.Context {
		ctx[k] = v
	}
	ctx[key] = value
	return &AppError{
		Type:       e.Type,
		Message:    e.Message,
		Context:    ctx,
		Err:        e.Err,
		Suggestion: e.Suggestion,
	}
}

func (e *AppError) WithSuggestion(suggestion string) *AppError {
	return &AppError{
		Type:       e.Type,
		Message:    e.Message,
		Context:    e.Context,
		Err:        e.Err,
		Suggestion: suggestion,
	}
}

// NewAppError creates a new AppError
func NewAppError(t ErrorType, msg string, err error) *AppError {
	return &AppError{
		Type:    t,
		Message: msg,
		Err:     err,
	}
}

// Configuration errors
var (
	ErrTokenMissing = NewAppError(TypeConfiguration, "GitHub token is missing", nil).
			WithSuggestion("Set GITHUB_TOKEN, pass --token, or add `repo-token: ${{ secrets.GITHUB_TOKEN }}` to the workflow step")

	ErrRepositoryMissing = NewAppError(TypeConfiguration, "Repository is missing or malformed", nil).
				WithSuggestion("Set GITHUB_REPOSITORY or pass --repo owner/name")

	ErrInvalidDriftPolicy = NewAppError(TypeConfiguration, "Unknown drift policy", nil).
				WithSuggestion("Use one of: flag, rename")

	ErrInvalidPageSize = NewAppError(TypeConfiguration, "Page size must be between 1 and 100", nil)

	ErrConfigFile = NewAppError(TypeConfiguration, "Failed to read configuration file", nil).
			WithSuggestion("Check the TOML syntax of .github/issuesync.toml")
)

// Filesystem errors
var (
	ErrIssuesDirUnreadable = NewAppError(TypeFilesystem, "Issues directory is not readable", nil).
				WithSuggestion("Create the docs/issues/ directory and add files named like 001-my-issue.md")

	ErrReadFile = NewAppError(TypeFilesystem, "Failed to read issue file", nil)

	ErrWriteFile = NewAppError(TypeFilesystem, "Failed to write issue file", nil).
			WithSuggestion("Make sure the checkout is writable by the workflow")

	ErrRenameFile = NewAppError(TypeFilesystem, "Failed to rename issue file", nil)
)

// Event errors
var (
	ErrEventPayload = NewAppError(TypeEvent, "Failed to decode event payload", nil).
		WithSuggestion("Check GITHUB_EVENT_PATH points to the workflow event JSON")
)

// GitHub/VCS specific errors
var (
	ErrRepositoryNotFound = NewAppError(TypeVCS, "repository not found", nil).
				WithSuggestion("Check repository name and token access permissions")

	ErrGitHubTokenInvalid = NewAppError(TypeVCS, "GitHub token is invalid or expired", nil).
				WithSuggestion("Generate a new token at: https://github.com/settings/tokens")

	ErrGitHubInsufficientPerms = NewAppError(TypeVCS, "GitHub token has insufficient permissions", nil).
					WithSuggestion("Grant `issues: write` in the workflow permissions block")

	ErrGitHubRateLimit = NewAppError(TypeVCS, "GitHub API rate limit exceeded", nil).
				WithSuggestion("Wait a few minutes or use a token with a higher rate limit")

	ErrGetIssue = NewAppError(TypeVCS, "failed to get issue", nil)

	ErrCreateIssue = NewAppError(TypeVCS, "failed to create issue", nil)

	ErrUpdateIssue = NewAppError(TypeVCS, "failed to update issue", nil)

	ErrListIssues = NewAppError(TypeVCS, "failed to list issues", nil)

	ErrPageLimit = NewAppError(TypeVCS, "issue listing exceeded the page limit", nil).
			WithSuggestion("Raise max_pages in .github/issuesync.toml, or set it to 0 to list every page")
)
