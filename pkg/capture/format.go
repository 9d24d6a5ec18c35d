package capture

import (
	"strconv"
	"strings"
	"unicode"
)

// NoOutput is shown when a program printed nothing at all.
const NoOutput = "(no output)"

// RunCapture is the display form of one program run.
type RunCapture struct {
	// CommandDisplay is the command line shown to the reader.
	CommandDisplay string

	// FormattedOutput is the STDOUT/STDERR/exit code transcript.
	FormattedOutput string

	// ScreenshotText is the prompt line plus transcript that gets rasterized.
	ScreenshotText string
}

// NewRunCapture builds the display form of res under the given command line.
func NewRunCapture(display string, res *Result) *RunCapture {
	formatted := FormatOutput(res)
	return &RunCapture{
		CommandDisplay:  display,
		FormattedOutput: formatted,
		ScreenshotText:  "$ " + display + "\n\n" + formatted,
	}
}

// FormatOutput renders a process result as display text: a STDOUT block, a
// STDERR block, or "(no output)", followed by the exit code, separated by
// blank lines. Trailing whitespace of each stream is dropped and invalid
// UTF-8 is replaced.
func FormatOutput(res *Result) string {
	stdout := trimOutput(res.Stdout)
	stderr := trimOutput(res.Stderr)

	parts := make([]string, 0, 3)
	if stdout != "" {
		parts = append(parts, "STDOUT\n"+stdout)
	}
	if stderr != "" {
		parts = append(parts, "STDERR\n"+stderr)
	}
	if len(parts) == 0 {
		parts = append(parts, NoOutput)
	}

	exit := "killed"
	if !res.Killed {
		exit = strconv.Itoa(res.ExitCode)
	}
	parts = append(parts, "Exit code: "+exit)

	return strings.Join(parts, "\n\n")
}

func trimOutput(b []byte) string {
	s := strings.ToValidUTF8(string(b), "\uFFFD")
	return strings.TrimRightFunc(s, unicode.IsSpace)
}
