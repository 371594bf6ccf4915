// internal/app/groupflow/result.go
package groupflow

import (
	"errors"
	"fmt"
)

// Op names an engine operation in outcomes and logs.
type Op string

const (
	OpListSessions     Op = "list sessions"
	OpSelectSession    Op = "select session"
	OpReload           Op = "reload"
	OpCreateGroup      Op = "create group"
	OpBeginEdit        Op = "begin edit"
	OpAddMembers       Op = "add members"
	OpRemoveMember     Op = "remove member"
	OpDeleteGroup      Op = "delete group"
	OpSendNotification Op = "send notification"
	OpRefresh          Op = "refresh"
)

// Outcome is one user-visible result of an operation.
type Outcome struct {
	Op      Op
	OK      bool
	Message string
}

// Reporter receives outcomes as they happen. Handlers turn them into
// toasts; tests record them.
type Reporter interface {
	Report(Outcome)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(Outcome)

func (f ReporterFunc) Report(o Outcome) { f(o) }

// Recorder keeps every outcome it is given.
type Recorder struct {
	Outcomes []Outcome
}

func (r *Recorder) Report(o Outcome) { r.Outcomes = append(r.Outcomes, o) }

// Failures returns the failed outcomes in order.
func (r *Recorder) Failures() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if !o.OK {
			out = append(out, o)
		}
	}
	return out
}

// Last returns the most recent outcome, or the zero Outcome.
func (r *Recorder) Last() Outcome {
	if len(r.Outcomes) == 0 {
		return Outcome{}
	}
	return r.Outcomes[len(r.Outcomes)-1]
}

func report(rep Reporter, o Outcome) {
	if rep != nil {
		rep.Report(o)
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Validation                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

// Validation sentinels. Every ValidationError wraps exactly one.
var (
	ErrNoSession      = errors.New("no class session selected")
	ErrNoGroup        = errors.New("no group selected")
	ErrEmptySelection = errors.New("no students selected")
	ErrBadBounds      = errors.New("group size bounds must satisfy 1 <= min <= max")
	ErrBadMode        = errors.New("unknown grouping mode")
	ErrEmptyMessage   = errors.New("notification message is empty")
	ErrNotMember      = errors.New("student is not a member of the group")
)

// ValidationError is returned, and reported, when an operation is rejected
// before any backend call.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Message is the text shown to the admin.
func (e *ValidationError) Message() string {
	switch {
	case errors.Is(e.Err, ErrNoSession):
		return "Please select a class session first."
	case errors.Is(e.Err, ErrNoGroup):
		return "Please choose a group first."
	case errors.Is(e.Err, ErrEmptySelection):
		return "Please select at least one student."
	case errors.Is(e.Err, ErrBadBounds):
		return "Minimum and maximum members must be at least 1, and the minimum cannot exceed the maximum."
	case errors.Is(e.Err, ErrBadMode):
		return "Please choose a grouping mode."
	case errors.Is(e.Err, ErrEmptyMessage):
		return "Please enter a notification message."
	case errors.Is(e.Err, ErrNotMember):
		return "That student is not in this group."
	}
	return e.Error()
}

func invalid(field string, err error) *ValidationError {
	return &ValidationError{Field: field, Err: err}
}
