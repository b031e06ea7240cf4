package domain

import "slices"

// StepType classifies an entry of the execution history.
type StepType string

const (
	StepCommand StepType = "command" // A menu or entry command was selected
	StepDatum   StepType = "datum"   // An entity was chosen for a datum
	StepAction  StepType = "action"  // An entity-list action was triggered
	StepQuery   StepType = "query"   // A remote search result was installed
	StepSync    StepType = "sync"    // A remote sync completed
)

// Step records one resolved command or datum.
type Step struct {
	Type StepType `json:"type"`

	// ID is the command id, datum id, query id or post id that was resolved.
	ID string `json:"id"`

	// Value is the concrete value chosen, e.g. the case id for a datum step.
	Value string `json:"value,omitempty"`
}

// Frame is the ordered execution history of a session.
// It only grows during forward navigation and is replaced wholesale on reset.
type Frame struct {
	Steps []Step `json:"steps"`
}

// Push appends a step.
func (f *Frame) Push(step Step) {
	f.Steps = append(f.Steps, step)
}

// Reset discards the whole history.
func (f *Frame) Reset() {
	f.Steps = nil
}

// Len returns the number of recorded steps.
func (f *Frame) Len() int {
	return len(f.Steps)
}

// Snapshot returns a read-only copy of the steps, detached from the frame.
func (f *Frame) Snapshot() []Step {
	return slices.Clone(f.Steps)
}

// Find returns the first step matching type and id.
func (f *Frame) Find(t StepType, id string) (Step, bool) {
	for _, s := range f.Steps {
		if s.Type == t && s.ID == id {
			return s, true
		}
	}
	return Step{}, false
}

// Last returns the most recent step of the given type.
func (f *Frame) Last(t StepType) (Step, bool) {
	for i := len(f.Steps) - 1; i >= 0; i-- {
		if f.Steps[i].Type == t {
			return f.Steps[i], true
		}
	}
	return Step{}, false
}

// Has reports whether a step with the given type and id exists.
func (f *Frame) Has(t StepType, id string) bool {
	_, ok := f.Find(t, id)
	return ok
}
