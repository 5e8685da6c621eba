package output

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"golang.org/x/term"
)

// Spinner shows progress for a long running step.
type Spinner interface {
	Stop()
}

type noopSpinner struct{}

func (noopSpinner) Stop() {}

// spinnerWriter is where spinners draw; stderr keeps stdout clean for --json.
var spinnerWriter io.Writer = os.Stderr

// isTerminal reports whether spinners can be drawn.
var isTerminal = func() bool {
	return term.IsTerminal(int(os.Stderr.Fd()))
}

// StartSpinner starts a spinner with the given message. When stderr is not a
// terminal it prints the message once and returns a no-op spinner.
func StartSpinner(format string, args ...interface{}) Spinner {
	msg := fmt.Sprintf(format, args...)
	if !isTerminal() {
		_, _ = infoColor.Fprintf(spinnerWriter, "→ %s\n", msg)
		return noopSpinner{}
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(spinnerWriter))
	s.Suffix = " " + msg
	s.Start()
	return s
}
