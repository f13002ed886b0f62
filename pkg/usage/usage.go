package usage

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
)

var exit = os.Exit

var out io.Writer = os.Stdout

var sentryEnabled = false

const sentryFlushTimeout = 2 * time.Second

// escapeData escapes a workflow command message the way the actions toolkit does.
func escapeData(message string) string {
	message = strings.ReplaceAll(message, "%", "%25")
	message = strings.ReplaceAll(message, "\r", "%0D")
	message = strings.ReplaceAll(message, "\n", "%0A")
	return message
}

// ReportErrorAndExit marks the step as failed with message and terminates the
// process with exitCode. An exitCode of 0 only logs message.
func ReportErrorAndExit(message string, exitCode int) {
	if exitCode == 0 {
		slog.Info(message)
	} else {
		slog.Error(message)
		fmt.Fprintf(out, "::error::%s\n", escapeData(message))
		if sentryEnabled {
			sentry.CaptureMessage(message)
			sentry.Flush(sentryFlushTimeout)
		}
	}
	exit(exitCode)
}
