package models

const (
	StateOpen   = "open"
	StateClosed = "closed"
	StateAll    = "all"
)

// RemoteIssue is the tracker-side resource. Pull requests share the number space.
type RemoteIssue struct {
	Number        int
	State         string
	IsPullRequest bool
	Title         string
	Body          string
	URL           string
	Labels        []string
}

// IsClosed reports whether the issue is closed on the tracker.
func (i RemoteIssue) IsClosed() bool {
	return i.State == StateClosed
}

// ProbeStatus classifies the answer to a single-issue lookup.
type ProbeStatus int

const (
	ProbeFound ProbeStatus = iota
	ProbeNotFound
	ProbeGone
	ProbeError
)

func (s ProbeStatus) String() string {
	switch s {
	case ProbeFound:
		return "found"
	case ProbeNotFound:
		return "not_found"
	case ProbeGone:
		return "gone"
	default:
		return "error"
	}
}

// ProbeResult is Found(issue) | NotFound | Gone | TransportError(err).
type ProbeResult struct {
	Status ProbeStatus
	Issue  *RemoteIssue
	Err    error
}

func Found(issue *RemoteIssue) ProbeResult {
	return ProbeResult{Status: ProbeFound, Issue: issue}
}

func NotFound() ProbeResult {
	return ProbeResult{Status: ProbeNotFound}
}

func Gone() ProbeResult {
	return ProbeResult{Status: ProbeGone}
}

func TransportError(err error) ProbeResult {
	return ProbeResult{Status: ProbeError, Err: err}
}

// Available reports whether the number is free to host a new issue.
func (p ProbeResult) Available() bool {
	return p.Status == ProbeNotFound || p.Status == ProbeGone
}

// Repository is the subset of repository metadata the doctor command checks.
type Repository struct {
	FullName  string
	HasIssues bool
	Private   bool
	URL       string
}
