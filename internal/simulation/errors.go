package simulation

import "fmt"

// ValidationError reports a malformed or incomplete snapshot or settings
// struct. It is raised before the monthly loop ever starts; a run that fails
// validation never executes.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid input: %s: %s", e.Field, e.Reason)
}

func validationErrorf(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// ConfigurationInconsistencyError reports strategy settings that are
// individually well-formed but contradict each other, such as beneficiary
// shares that do not sum to one.
type ConfigurationInconsistencyError struct {
	Reason string
}

func (e *ConfigurationInconsistencyError) Error() string {
	return "inconsistent configuration: " + e.Reason
}
