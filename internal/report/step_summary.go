package report

import (
	"fmt"
	"os"
	"strings"

	"github.com/thomas-vilte/issuesync/internal/models"
)

// WriteStepSummary appends the Markdown summary to the file named by
// GITHUB_STEP_SUMMARY. An empty path is a no-op.
func WriteStepSummary(path string, s *models.Summary, repository string) error {
	if path == "" {
		return nil
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("error opening step summary %s: %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	if _, err := f.WriteString(Markdown(s, repository)); err != nil {
		return fmt.Errorf("error writing step summary %s: %w", path, err)
	}
	return nil
}

// Markdown renders the run as a heading, a totals line and one table row per file.
func Markdown(s *models.Summary, repository string) string {
	var sb strings.Builder

	sb.WriteString("## issuesync")
	if repository != "" {
		fmt.Fprintf(&sb, " · %s", repository)
	}
	sb.WriteString("\n\n")

	if s.DryRun {
		sb.WriteString("> Dry run: no issue or file was changed.\n\n")
	}

	fmt.Fprintf(&sb, "**%d** files · **%d** succeeded · **%d** skipped · **%d** failed\n\n",
		s.Total, s.Succeeded, s.Skipped, s.Failed)

	if len(s.Outcomes) > 0 {
		sb.WriteString("| File | Result | Issue | Details |\n")
		sb.WriteString("|---|---|---|---|\n")
		for _, o := range s.Outcomes {
			fmt.Fprintf(&sb, "| `%s` | %s | %s | %s |\n",
				o.File, result(o), issueCell(o), cell(details(o)))
		}
		sb.WriteString("\n")
	}

	if len(s.Rejected) > 0 {
		sb.WriteString("Ignored because of their names: ")
		for i, name := range s.Rejected {
			if i > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "`%s`", name)
		}
		sb.WriteString("\n\n")
	}

	return sb.String()
}

func result(o models.Outcome) string {
	if o.Reason == models.SkipDryRun && o.Planned != "" {
		return "would be " + string(o.Planned)
	}
	return string(o.Kind)
}

func issueCell(o models.Outcome) string {
	if o.Number == 0 {
		return ""
	}
	if o.URL == "" {
		return fmt.Sprintf("#%d", o.Number)
	}
	return fmt.Sprintf("[#%d](%s)", o.Number, o.URL)
}

func details(o models.Outcome) string {
	switch o.Kind {
	case models.OutcomeRenamedAndFlagged:
		if o.NewFile != "" && o.NewFile != o.File {
			return fmt.Sprintf("expected #%d, renamed to `%s`", o.OldNumber, o.NewFile)
		}
		return fmt.Sprintf("expected #%d, drift banner added", o.OldNumber)
	case models.OutcomeSkipped:
		if o.Reason == models.SkipDryRun {
			return ""
		}
		return string(o.Reason)
	case models.OutcomeFailed:
		return errorText(o.Err)
	default:
		return o.Title
	}
}

// cell keeps a value on one table row.
func cell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
