package area

import "fmt"

type DiagnosticKind string

const (
	DiagTransitionImage       DiagnosticKind = "transition_image_missing"
	DiagTransitionSize        DiagnosticKind = "transition_size_missing"
	DiagTransitionOutOfBounds DiagnosticKind = "transition_out_of_bounds"
	DiagUnmatchedTrigger      DiagnosticKind = "encounter_trigger_unmatched"
)

// Diagnostic is a non-fatal authoring problem. The offending entity is
// left out of the runtime view; the builder keeps it.
type Diagnostic struct {
	AreaID   string         `json:"area_id"`
	Kind     DiagnosticKind `json:"kind"`
	Index    int            `json:"index"`
	Location *Point         `json:"location,omitempty"`
	Message  string         `json:"message"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("area %s: %s", d.AreaID, d.Message)
}

// DiagnosticSink receives diagnostics as they are produced.
// Implemented in internal/persistence/log.
type DiagnosticSink interface {
	WriteDiagnostic(d Diagnostic) error
}
