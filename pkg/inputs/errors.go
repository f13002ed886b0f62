package inputs

import (
	"errors"
	"fmt"
)

// ConfigurationError aborts a run: a required input is missing or invalid,
// the action is unknown, or the event cannot be used by the action.
type ConfigurationError struct {
	Input   string
	Message string
}

func (e *ConfigurationError) Error() string {
	return e.Message
}

func NewConfigurationError(format string, args ...interface{}) *ConfigurationError {
	return &ConfigurationError{Message: fmt.Sprintf(format, args...)}
}

func IsConfigurationError(err error) bool {
	var configErr *ConfigurationError
	return errors.As(err, &configErr)
}
