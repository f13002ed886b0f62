package github

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
)

// StepOutputWriter appends step outputs to the file named by GITHUB_OUTPUT.
type StepOutputWriter struct {
	Path string
}

func (w StepOutputWriter) SetOutput(key string, value string) error {
	if w.Path == "" {
		return fmt.Errorf("GITHUB_OUTPUT not set, could not set output %v", key)
	}
	f, err := os.OpenFile(w.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("could not open output file %v: %v", w.Path, err)
	}
	defer f.Close()

	_, err = f.WriteString(formatOutput(key, value))
	if err != nil {
		return fmt.Errorf("could not write output %v: %v", key, err)
	}
	slog.Debug("step output set", "key", key, "value", value)
	return nil
}

// multi-line values use the heredoc form with a random delimiter
func formatOutput(key string, value string) string {
	if !strings.ContainsAny(value, "\r\n") {
		return fmt.Sprintf("%v=%v\n", key, value)
	}
	delimiter := "ghadelimiter_" + uuid.NewString()
	return fmt.Sprintf("%v<<%v\n%v\n%v\n", key, delimiter, value, delimiter)
}
