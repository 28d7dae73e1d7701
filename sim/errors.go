// Implements the error taxonomy for the cycle engine: configuration errors
// are fatal at construction, timeouts are returned from Run with partial
// metrics still valid, and transient router warnings are logged and dropped
// rather than propagated.

package sim

import "fmt"

// ConfigError reports an invalid or inconsistent configuration detected at
// construction time (bad topology/node-count pairing, odd fat-tree k,
// unknown routing algorithm or traffic pattern). Construction aborts.
type ConfigError struct {
	Field string
	Msg   string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error: %s: %s", e.Field, e.Msg)
}

// TimeoutError reports that a workload-driven run exceeded
// SimulationTimeoutCycles before the workload reached completion.
type TimeoutError struct {
	Cycle int64
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("simulation timeout: workload incomplete after %d cycles", e.Cycle)
}
