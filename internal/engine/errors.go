package engine

import (
	"fmt"

	"github.com/Alias1177/signalengine/internal/model"
)

// ConfigError rejects a configuration. The engine keeps the previous
// configuration when Configure returns one.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

// InvariantError reports a broken internal invariant, such as an
// exposure cap breached after commit. It is fatal for the batch and
// carries the offending ledger snapshot for diagnosis.
type InvariantError struct {
	Reason string
	Ledger model.Exposure
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("internal invariant violation: %s (ledger: %v)", e.Reason, e.Ledger)
}
