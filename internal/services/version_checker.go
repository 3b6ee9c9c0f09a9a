package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/go-github/v80/github"
	"golang.org/x/mod/semver"
)

const (
	releaseOwner = "thomas-vilte"
	releaseRepo  = "issuesync"
)

// ReleaseFetcher is the subset of the go-github repositories service the checker needs.
type ReleaseFetcher interface {
	GetLatestRelease(ctx context.Context, owner, repo string) (*github.RepositoryRelease, *github.Response, error)
}

// VersionChecker compares the running build with the newest published release.
type VersionChecker struct {
	releases       ReleaseFetcher
	currentVersion string
	timeout        time.Duration
}

func NewVersionChecker(releases ReleaseFetcher, currentVersion string) *VersionChecker {
	return &VersionChecker{
		releases:       releases,
		currentVersion: currentVersion,
		timeout:        5 * time.Second,
	}
}

// Latest returns the newest release tag and whether it is ahead of the running build.
func (v *VersionChecker) Latest(ctx context.Context) (string, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	release, _, err := v.releases.GetLatestRelease(ctx, releaseOwner, releaseRepo)
	if err != nil {
		return "", false, fmt.Errorf("error fetching latest release: %w", err)
	}

	latest := release.GetTagName()
	return latest, IsUpdateAvailable(v.currentVersion, latest), nil
}

// IsUpdateAvailable reports whether latest is a newer semantic version than
// current. Tags that are not valid semver only count as newer when they differ.
func IsUpdateAvailable(current, latest string) bool {
	if latest == "" {
		return false
	}
	if !strings.HasPrefix(current, "v") {
		current = "v" + current
	}
	if !strings.HasPrefix(latest, "v") {
		latest = "v" + latest
	}

	if !semver.IsValid(current) || !semver.IsValid(latest) {
		return current != latest
	}

	return semver.Compare(latest, current) > 0
}
