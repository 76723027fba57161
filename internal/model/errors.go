package model

import (
	"errors"
	"fmt"
)

// ErrEmptySelection is returned when a run is started with no selected
// elements. Reported before any document mutation.
var ErrEmptySelection = errors.New("no elements selected")

// ConfigError reports an invalid run configuration. Configuration is
// validated before the first engine call, so a ConfigError guarantees
// the document was not touched.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

// ConsistencyError reports that an object expected to exist after an
// engine round-trip could not be resolved. The multi-phase protocol has
// no partial-completion semantics, so this error aborts the whole run;
// the document may be left in an intermediate state.
type ConsistencyError struct {
	Phase string // Protocol phase that noticed the inconsistency
	Ref   string // Correlation key or object id that failed to resolve
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("document inconsistent after %s: %q cannot be resolved", e.Phase, e.Ref)
}

// IsFatal reports whether err aborts a run with the document possibly
// mutated, as opposed to the pre-flight configuration errors.
func IsFatal(err error) bool {
	var ce *ConsistencyError
	return errors.As(err, &ce)
}
