package regex

import "regexp"

var (
	// Issue file naming: <digits>-<description>.md
	IssueFileName = regexp.MustCompile(`^(\d+)-(.+)\.md$`)

	// First content line carrying the issue number and title: #12: Add fireball sfx
	IssueHeader       = regexp.MustCompile(`^#(\d+):\s*(.+)$`)
	IssueHeaderNumber = regexp.MustCompile(`^#\d+:`)

	// Drift banner written by the flag-in-place policy
	DriftMarker = regexp.MustCompile(`^<!--\s*issuesync:drift\s+file=#(\d+)\s+issue=#(\d+)\s*-->$`)

	// Actions repository slug: owner/name
	RepositorySlug = regexp.MustCompile(`^([A-Za-z0-9_.-]+)/([A-Za-z0-9_.-]+)$`)
)
