// Package event reads the workflow trigger that started the run.
package event

import (
	"fmt"
	"os"

	"github.com/google/go-github/v80/github"
	domainErrors "github.com/thomas-vilte/issuesync/internal/errors"
)

const EventPush = "push"

// Context is the decoded trigger. ChangedFiles is only populated for push events.
type Context struct {
	Name         string
	ChangedFiles []string
}

// HasChangeList reports whether the trigger carries a file change list.
func (c Context) HasChangeList() bool {
	return c.Name == EventPush
}

// Load reads the payload at path for the named event. An empty path or a
// non-push event gives a Context without a change list.
func Load(name, path string) (Context, error) {
	ctx := Context{Name: name}
	if name != EventPush || path == "" {
		return ctx, nil
	}

	payload, err := os.ReadFile(path)
	if err != nil {
		return ctx, domainErrors.ErrEventPayload.WithError(err).WithContext("path", path)
	}

	files, err := ChangedFiles(name, payload)
	if err != nil {
		return ctx, domainErrors.ErrEventPayload.WithError(err).WithContext("path", path)
	}
	ctx.ChangedFiles = files
	return ctx, nil
}

// ChangedFiles collects the added and modified paths of every commit in a push
// payload, in commit order. Removed paths are ignored.
func ChangedFiles(name string, payload []byte) ([]string, error) {
	parsed, err := github.ParseWebHook(name, payload)
	if err != nil {
		return nil, fmt.Errorf("error parsing %s payload: %w", name, err)
	}

	push, ok := parsed.(*github.PushEvent)
	if !ok {
		return nil, fmt.Errorf("unexpected payload type %T for %s event", parsed, name)
	}

	var files []string
	for _, commit := range push.Commits {
		files = append(files, commit.Added...)
		files = append(files, commit.Modified...)
	}
	return files, nil
}
