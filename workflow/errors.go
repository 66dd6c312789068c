package workflow

import (
	"fmt"
	"strings"
)

// DuplicateNodeError reports a second registration under an existing name.
type DuplicateNodeError struct {
	Node string
}

func (e *DuplicateNodeError) Error() string {
	return fmt.Sprintf("node %q already registered", e.Node)
}

// GraphDefinitionError reports structural defects found at compile time.
// Compile collects every violation in one pass instead of stopping at the
// first, so iterative graph construction does not become a fix-one,
// recompile, fix-next cycle. Never raised at run time.
type GraphDefinitionError struct {
	Graph      string
	Violations []string
}

func (e *GraphDefinitionError) Error() string {
	return fmt.Sprintf("graph %q definition invalid (%d violations): %s",
		e.Graph, len(e.Violations), strings.Join(e.Violations, "; "))
}

// RoutingError reports a router returning a label with no configured
// target. Fatal to the run; never silently coerced to the terminal marker.
type RoutingError struct {
	Node  string
	Label string
}

func (e *RoutingError) Error() string {
	return fmt.Sprintf("router at node %q returned unmapped label %q", e.Node, e.Label)
}

// NodeExecutionError reports a failed node invocation. State holds the
// accumulated state at the point of failure for diagnostics; no partial
// merge from the failing invocation is applied and prior merges are not
// rolled back.
type NodeExecutionError struct {
	Node  string
	State State
	Err   error
}

func (e *NodeExecutionError) Error() string {
	return fmt.Sprintf("node %q failed: %v", e.Node, e.Err)
}

func (e *NodeExecutionError) Unwrap() error { return e.Err }

// StepLimitExceededError reports a run aborted by the caller-supplied step
// limit, the recommended safeguard against graphs that never reach the
// terminal marker. State holds the accumulated state when the limit hit.
type StepLimitExceededError struct {
	Limit int
	State State
}

func (e *StepLimitExceededError) Error() string {
	return fmt.Sprintf("step limit %d exceeded before reaching terminal marker", e.Limit)
}
