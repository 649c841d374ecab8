package traverse

import (
	"fmt"
	"strings"

	"github.com/aretw0/arbor/pkg/domain"
)

// CycleError is returned when RaiseOnCycle is set and a branch re-enters its own path.
type CycleError struct {
	Cycle []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("%v: %s", domain.ErrCycleDetected, strings.Join(e.Cycle, " -> "))
}

func (e *CycleError) Unwrap() error { return domain.ErrCycleDetected }

// AbortError is returned when a visit function answers with Fail.
type AbortError struct {
	NodeID string
	Reason string
}

func (e *AbortError) Error() string {
	return fmt.Sprintf("traversal aborted at node %q: %s", e.NodeID, e.Reason)
}
