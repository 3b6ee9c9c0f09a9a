package ui

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	domainErrors "github.com/thomas-vilte/issuesync/internal/errors"
	"github.com/thomas-vilte/issuesync/internal/i18n"
)

var (
	// Colors for different message types
	Success = color.New(color.FgGreen, color.Bold)
	Error   = color.New(color.FgRed, color.Bold)
	Warning = color.New(color.FgYellow, color.Bold)
	Info    = color.New(color.FgCyan, color.Bold)
	Accent  = color.New(color.FgMagenta, color.Bold)
	Dim     = color.New(color.FgHiBlack)

	// Emojis with colors
	SyncEmoji    = "🔄"
	SuccessEmoji = Success.Sprint("✅")
	WarningEmoji = Warning.Sprint("⚠️")
	InfoEmoji    = Info.Sprint("ℹ️")
	RocketEmoji  = Accent.Sprint("🚀")
)

// Output is where every printer writes. Tests swap it for a buffer.
var Output io.Writer = os.Stdout

// SmartSpinner is a spinner with enhanced capabilities
type SmartSpinner struct {
	spinner *spinner.Spinner
}

// NewSmartSpinner creates a new spinner with an initial message
func NewSmartSpinner(initialMessage string) *SmartSpinner {
	s := spinner.New(
		spinner.CharSets[14],
		100*time.Millisecond,
		spinner.WithColor("cyan"),
		spinner.WithSuffix(" "+SyncEmoji+" "+initialMessage),
		spinner.WithWriter(Output),
	)
	return &SmartSpinner{spinner: s}
}

// Start starts the spinner. The spinner library stays silent when Output is
// not a terminal, which is the normal case on a CI runner.
func (s *SmartSpinner) Start() {
	s.spinner.Start()
}

func (s *SmartSpinner) Stop() {
	s.spinner.Stop()
}

func PrintSuccess(w io.Writer, msg string) {
	_, _ = fmt.Fprintf(w, "%s %s\n", SuccessEmoji, Success.Sprint(msg))
}

func PrintError(w io.Writer, msg string) {
	_, _ = fmt.Fprintf(w, "%s %s\n", Error.Sprint("❌"), Error.Sprint(msg))
}

func PrintWarning(msg string) {
	_, _ = fmt.Fprintf(Output, "%s %s\n", WarningEmoji, Warning.Sprint(msg))
}

func PrintInfo(msg string) {
	_, _ = fmt.Fprintf(Output, "%s %s\n", InfoEmoji, Info.Sprint(msg))
}

func PrintSectionBanner(title string) {
	separator := color.New(color.FgCyan).Sprint("━━━━━━━━━━━━━━━━━━━━━━━")
	_, _ = fmt.Fprintf(Output, "\n%s\n", separator)
	_, _ = fmt.Fprintf(Output, "%s %s\n", RocketEmoji, Accent.Sprint(title))
	_, _ = fmt.Fprintf(Output, "%s\n\n", separator)
}

// HandleAppError handles an application error and displays it in a friendly way.
// If translations is nil, it will use English defaults.
func HandleAppError(err error, translations ...*i18n.Translations) {
	if err == nil {
		return
	}

	var t *i18n.Translations
	if len(translations) > 0 && translations[0] != nil {
		t = translations[0]
	}

	var appErr *domainErrors.AppError
	if errors.As(err, &appErr) {
		errorColor := color.New(color.FgRed, color.Bold)
		suggestionColor := color.New(color.FgCyan)

		_, _ = fmt.Fprintln(Output)
		_, _ = errorColor.Fprintf(Output, "❌ %s: %s\n", appErr.Type, appErr.Message)

		if appErr.Err != nil {
			_, _ = Dim.Fprintf(Output, "   Details: %v\n", appErr.Err)
		}

		if appErr.Suggestion != "" {
			_, _ = fmt.Fprintln(Output)
			tryPrefix := "💡 Try: "
			if t != nil {
				tryPrefix = t.GetMessage("ui_error.try_suggestion", 0, nil)
			}
			_, _ = suggestionColor.Fprint(Output, tryPrefix)
			lines := strings.Split(appErr.Suggestion, "\n")
			for i, line := range lines {
				if i == 0 {
					_, _ = fmt.Fprintln(Output, line)
				} else {
					_, _ = fmt.Fprintf(Output, "       %s\n", line)
				}
			}
		}
		_, _ = fmt.Fprintln(Output)

		return
	}

	PrintError(Output, err.Error())
}

func PrintKeyValue(key, value string) {
	keyColored := Dim.Sprint(key + ":")
	valueColored := color.New(color.FgWhite, color.Bold).Sprint(value)
	_, _ = fmt.Fprintf(Output, "   %s %s\n", keyColored, valueColored)
}

// PrintDiff prints a unified-style line diff, colouring added and removed lines.
func PrintDiff(diff string) {
	if diff == "" {
		return
	}
	added := color.New(color.FgGreen)
	removed := color.New(color.FgRed)
	for _, line := range strings.Split(strings.TrimRight(diff, "\n"), "\n") {
		switch {
		case strings.HasPrefix(line, "+"):
			_, _ = added.Fprintf(Output, "      %s\n", line)
		case strings.HasPrefix(line, "-"):
			_, _ = removed.Fprintf(Output, "      %s\n", line)
		default:
			_, _ = Dim.Fprintf(Output, "      %s\n", line)
		}
	}
}

// WithSpinner runs fn behind a spinner. Errors are returned, not printed, so
// the caller decides how to report them.
func WithSpinner(message string, fn func() error) error {
	s := NewSmartSpinner(message)
	s.Start()
	defer s.Stop()

	return fn()
}
