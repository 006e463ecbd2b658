package phase

import (
	"fmt"
)

// Key is the canonical identifier of a lifecycle phase
type Key string

const (
	KeyLead       Key = "LEAD"
	KeyProspect   Key = "PROSPECT"
	KeyApproved   Key = "APPROVED"
	KeyExecution  Key = "EXECUTION"
	KeySupplement Key = "SUPPLEMENT"
	KeyCompletion Key = "COMPLETION"
)

// String returns the string representation
func (k Key) String() string {
	return string(k)
}

// TotalWeight is the sum every registry must add up to
const TotalWeight = 100

// Phase is a single stage of a project's lifecycle
type Phase struct {
	Key         Key
	DisplayName string
	Weight      int
	Color       string
}

// UnknownPhaseError is returned by registry lookups for keys that are not registered
type UnknownPhaseError struct {
	Key Key
}

func (e *UnknownPhaseError) Error() string {
	return fmt.Sprintf("unknown phase: %q", string(e.Key))
}

// defaultPhases is the lifecycle of a construction project, in order
var defaultPhases = []Phase{
	{Key: KeyLead, DisplayName: "Lead", Weight: 10, Color: "#3B82F6"},
	{Key: KeyProspect, DisplayName: "Prospect", Weight: 15, Color: "#8B5CF6"},
	{Key: KeyApproved, DisplayName: "Approved", Weight: 15, Color: "#10B981"},
	{Key: KeyExecution, DisplayName: "Execution", Weight: 40, Color: "#F59E0B"},
	{Key: KeySupplement, DisplayName: "2nd Supplement", Weight: 10, Color: "#EF4444"},
	{Key: KeyCompletion, DisplayName: "Completion", Weight: 10, Color: "#6B7280"},
}

// fallbackColor is used for keys outside the registry
const fallbackColor = "#9CA3AF"
