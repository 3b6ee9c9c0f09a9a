package parser

import (
	"fmt"
	"strings"

	"github.com/thomas-vilte/issuesync/internal/models"
	"github.com/thomas-vilte/issuesync/internal/regex"
)

// FileName renders <zero-padded number>-<slug>.md.
func FileName(number, width int, slug string) string {
	return fmt.Sprintf("%0*d-%s.md", width, number, slug)
}

// Banner is the warning block placed on top of a file whose number drifted.
func Banner(file *models.IssueFile, assigned int) string {
	suggested := FileName(assigned, file.NumberWidth, file.Slug)
	return fmt.Sprintf("<!-- issuesync:drift file=#%d issue=#%d -->\n"+
		"> **Numbering drift:** this file is named `%s` but GitHub assigned Issue #%d.\n"+
		"> Rename it to `%s` and update its header; until then it keeps syncing to #%d.\n\n",
		file.FileNumber, assigned, file.Name, assigned, suggested, assigned)
}

// Flag returns the file content with the drift banner prepended. Any banner
// from an earlier run is replaced rather than stacked.
func Flag(file *models.IssueFile, assigned int) string {
	return Banner(file, assigned) + file.Body
}

// RewriteHeaderNumber replaces the number in a leading `#<n>: <title>` line,
// keeping its line ending. Content without such a header is returned unchanged.
func RewriteHeaderNumber(body string, number int) string {
	firstLine, rest, found := strings.Cut(body, "\n")
	trimmed := strings.TrimSpace(firstLine)
	if !regex.IssueHeader.MatchString(trimmed) {
		return body
	}

	rewritten := regex.IssueHeaderNumber.ReplaceAllString(trimmed, fmt.Sprintf("#%d:", number))
	if strings.HasSuffix(firstLine, "\r") {
		rewritten += "\r"
	}
	if !found {
		return rewritten
	}
	return rewritten + "\n" + rest
}
