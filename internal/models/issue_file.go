package models

// IssueFile is one Markdown file under the issues directory.
type IssueFile struct {
	Name        string
	Path        string
	FileNumber  int
	NumberWidth int
	Slug        string
	// Content is the raw file body as read from disk.
	Content string
	// Body is Content without the drift banner; it is what gets published.
	Body           string
	EmbeddedNumber *int
	// FlaggedNumber is the Issue a previous run recorded in the drift banner.
	FlaggedNumber *int
	DerivedTitle  string
}

// HasHeader reports whether the title came from a `#<n>: <title>` line.
func (f *IssueFile) HasHeader() bool {
	return f.EmbeddedNumber != nil
}

// TargetNumber is the Issue number the file should be probed against.
func (f *IssueFile) TargetNumber() int {
	if f.FlaggedNumber != nil {
		return *f.FlaggedNumber
	}
	return f.FileNumber
}
