package usage

import (
	"bufio"
	"bytes"
	"log/slog"
	"strings"

	"github.com/getsentry/sentry-go"
)

// SentrySlogWriter redirects Sentry's debug output to slog.
type SentrySlogWriter struct {
	logger *slog.Logger
}

func NewSentrySlogWriter(logger *slog.Logger) *SentrySlogWriter {
	return &SentrySlogWriter{logger: logger}
}

func (s *SentrySlogWriter) Write(p []byte) (n int, err error) {
	scanner := bufio.NewScanner(bytes.NewReader(p))
	for scanner.Scan() {
		line := scanner.Text()
		// [Sentry] 2024/01/01 10:00:00 message
		if strings.HasPrefix(line, "[Sentry]") {
			if parts := strings.SplitN(line, " ", 4); len(parts) == 4 {
				line = parts[3]
			}
		}
		s.logger.Debug(line)
	}
	return len(p), nil
}

// InitSentry enables error reporting to dsn. An empty dsn leaves it disabled.
func InitSentry(dsn string, release string) {
	if dsn == "" {
		slog.Debug("SENTRY_DSN not set, error reporting disabled")
		return
	}
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         dsn,
		Release:     "tasklink@" + release,
		Debug:       true,
		DebugWriter: NewSentrySlogWriter(slog.Default().WithGroup("sentry")),
	}); err != nil {
		slog.Error("Sentry initialization failed", "error", err)
		return
	}
	sentryEnabled = true
}
