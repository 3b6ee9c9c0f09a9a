// Package report renders a sync run for people: progress lines and totals on
// the console, and a Markdown table for the GitHub Actions step summary.
package report

import (
	"fmt"
	"strings"

	"github.com/thomas-vilte/issuesync/internal/i18n"
	"github.com/thomas-vilte/issuesync/internal/models"
	"github.com/thomas-vilte/issuesync/internal/ui"
)

// PrintOutcome prints the result line for one file.
func PrintOutcome(t *i18n.Translations, o models.Outcome) {
	switch o.Kind {
	case models.OutcomeUpdated:
		ui.PrintSuccess(ui.Output, t.GetMessage("sync.outcome_updated", 0, map[string]interface{}{
			"Number": o.Number,
			"Title":  o.Title,
		}))
	case models.OutcomeCreated:
		ui.PrintSuccess(ui.Output, t.GetMessage("sync.outcome_created", 0, map[string]interface{}{
			"Number": o.Number,
			"Title":  o.Title,
		}))
	case models.OutcomeRenamedAndFlagged:
		ui.PrintWarning(t.GetMessage("sync.outcome_drifted", 0, map[string]interface{}{
			"Number": o.Number,
			"Old":    o.OldNumber,
		}))
		if o.NewFile != "" && o.NewFile != o.File {
			ui.PrintInfo(t.GetMessage("sync.outcome_renamed", 0, map[string]interface{}{
				"Old": o.File,
				"New": o.NewFile,
			}))
		} else {
			ui.PrintInfo(t.GetMessage("sync.outcome_flagged", 0, map[string]interface{}{
				"File":   o.File,
				"Number": o.Number,
			}))
		}
	case models.OutcomeSkipped:
		if o.Reason == models.SkipDryRun {
			printPlanned(t, o)
			return
		}
		ui.PrintInfo(t.GetMessage("sync.outcome_skipped", 0, map[string]interface{}{
			"File":   o.File,
			"Reason": string(o.Reason),
		}))
	case models.OutcomeFailed:
		ui.PrintError(ui.Output, t.GetMessage("sync.outcome_failed", 0, map[string]interface{}{
			"File":  o.File,
			"Error": errorText(o.Err),
		}))
	}
}

func printPlanned(t *i18n.Translations, o models.Outcome) {
	if o.Planned == models.OutcomeUpdated {
		ui.PrintInfo(t.GetMessage("sync.planned_update", 0, map[string]interface{}{
			"Number": o.Number,
			"File":   o.File,
		}))
		ui.PrintDiff(o.Diff)
		return
	}
	ui.PrintInfo(t.GetMessage("sync.planned_create", 0, map[string]interface{}{
		"Title": o.Title,
		"File":  o.File,
	}))
}

// PrintSummary prints the totals block at the end of a run. issuesURL may be
// empty.
func PrintSummary(t *i18n.Translations, s *models.Summary, issuesURL string) {
	ui.PrintSectionBanner(t.GetMessage("sync.summary_title", 0, nil))
	ui.PrintKeyValue(t.GetMessage("sync.summary_total", 0, nil), fmt.Sprint(s.Total))
	ui.PrintKeyValue(t.GetMessage("sync.summary_succeeded", 0, nil), fmt.Sprint(s.Succeeded))
	ui.PrintKeyValue(t.GetMessage("sync.summary_skipped", 0, nil), fmt.Sprint(s.Skipped))
	ui.PrintKeyValue(t.GetMessage("sync.summary_failed", 0, nil), fmt.Sprint(s.Failed))

	if s.Created > 0 || s.Updated > 0 || s.Drifted > 0 {
		ui.PrintKeyValue(t.GetMessage("sync.summary_created", 0, nil), fmt.Sprint(s.Created))
		ui.PrintKeyValue(t.GetMessage("sync.summary_updated", 0, nil), fmt.Sprint(s.Updated))
		ui.PrintKeyValue(t.GetMessage("sync.summary_drifted", 0, nil), fmt.Sprint(s.Drifted))
	}

	if len(s.Rejected) > 0 {
		ui.PrintWarning(t.GetMessage("sync.rejected", len(s.Rejected), map[string]interface{}{
			"Count": len(s.Rejected),
			"Files": strings.Join(s.Rejected, ", "),
		}))
	}

	_, _ = fmt.Fprintln(ui.Output)
	if s.Failed > 0 {
		ui.PrintWarning(t.GetMessage("sync.done_with_errors", s.Failed, map[string]interface{}{
			"Count": s.Failed,
		}))
	} else {
		ui.PrintSuccess(ui.Output, t.GetMessage("sync.done", 0, nil))
	}

	if issuesURL != "" {
		ui.PrintKeyValue(t.GetMessage("sync.issues_link", 0, nil), issuesURL)
	}
}

func errorText(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}
