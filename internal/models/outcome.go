package models

// OutcomeKind is the classification of one reconciled file.
type OutcomeKind string

const (
	OutcomeUpdated           OutcomeKind = "updated"
	OutcomeCreated           OutcomeKind = "created"
	OutcomeSkipped           OutcomeKind = "skipped"
	OutcomeRenamedAndFlagged OutcomeKind = "renamed_and_flagged"
	OutcomeFailed            OutcomeKind = "failed"
)

// SkipReason documents why no mutation happened.
type SkipReason string

const (
	SkipPullRequest    SkipReason = "number belongs to a pull request"
	SkipClosedIssue    SkipReason = "issue is closed"
	SkipInvalidName    SkipReason = "filename does not match <digits>-<slug>.md"
	SkipEmptyContent   SkipReason = "file content is empty"
	SkipMissingFile    SkipReason = "file no longer exists"
	SkipAlreadyHandled SkipReason = "file already processed in this run"
	SkipDryRun         SkipReason = "dry run"
)

// Outcome is the transient result of processing one IssueFile.
type Outcome struct {
	File   string
	Kind   OutcomeKind
	Title  string
	Number int
	// OldNumber is the filename number when the tracker assigned a different one.
	OldNumber int
	// NewFile is set when the drift policy renamed the file.
	NewFile string
	URL     string
	Reason  SkipReason
	// Planned is what a dry run would have done.
	Planned OutcomeKind
	Diff    string
	Err     error
}

// Succeeded reports whether the outcome counts as a successful sync.
func (o Outcome) Succeeded() bool {
	switch o.Kind {
	case OutcomeUpdated, OutcomeCreated, OutcomeRenamedAndFlagged:
		return true
	default:
		return false
	}
}

// Summary aggregates the outcomes of one batch run.
type Summary struct {
	Total     int
	Succeeded int
	Skipped   int
	Failed    int
	Created   int
	Updated   int
	Drifted   int
	Rejected  []string
	Outcomes  []Outcome
	DryRun    bool
}

// Add records an outcome and updates the counters.
func (s *Summary) Add(o Outcome) {
	s.Total++
	s.Outcomes = append(s.Outcomes, o)
	switch o.Kind {
	case OutcomeUpdated:
		s.Succeeded++
		s.Updated++
	case OutcomeCreated:
		s.Succeeded++
		s.Created++
	case OutcomeRenamedAndFlagged:
		s.Succeeded++
		s.Created++
		s.Drifted++
	case OutcomeSkipped:
		s.Skipped++
	case OutcomeFailed:
		s.Failed++
	}
}
