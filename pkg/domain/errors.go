package domain

import (
	"errors"
	"fmt"
)

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrSessionExists is returned when a new session would replace a stored one.
var ErrSessionExists = errors.New("session already exists")

// ErrFormSessionNotFound is returned when a form session ID cannot be found.
var ErrFormSessionNotFound = errors.New("form session not found")

// ErrAppNotFound is returned when no application is registered under an id.
var ErrAppNotFound = errors.New("app not found")

// ErrNotEntityScreen is returned by detail lookups when the path does not end on an entity list.
var ErrNotEntityScreen = errors.New("not on an entity list")

// InvalidSelectionError reports a selection the current screen cannot accept.
type InvalidSelectionError struct {
	Selection string
	Screen    ScreenType
	Reason    string
}

func (e *InvalidSelectionError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid selection %q on %s screen: %s", e.Selection, e.Screen, e.Reason)
	}
	return fmt.Sprintf("invalid selection %q on %s screen", e.Selection, e.Screen)
}

// SessionNavigationError wraps an evaluation fault raised while navigating.
type SessionNavigationError struct {
	SessionID string
	Op        string
	Err       error
}

func (e *SessionNavigationError) Error() string {
	return fmt.Sprintf("session %s: %s: %v", e.SessionID, e.Op, e.Err)
}

func (e *SessionNavigationError) Unwrap() error { return e.Err }

// UnknownScreenError is raised when a screen is none of the known variants.
type UnknownScreenError struct {
	Screen Screen
}

func (e *UnknownScreenError) Error() string {
	return fmt.Sprintf("unable to recognize next screen: %T", e.Screen)
}

// FrameInconsistencyError reports that a selection matched during replay
// could not be applied, meaning the recorded frame disagrees with the app.
type FrameInconsistencyError struct {
	Selection string
	Step      Step
	Err       error
}

func (e *FrameInconsistencyError) Error() string {
	return fmt.Sprintf("frame inconsistent at %s %q (selection %q): %v", e.Step.Type, e.Step.ID, e.Selection, e.Err)
}

func (e *FrameInconsistencyError) Unwrap() error { return e.Err }

// ErrEntityNotFound is returned when an entity id does not resolve on the current list.
var ErrEntityNotFound = errors.New("entity not found")

// ErrInvalidRequest marks a caller request that failed validation.
var ErrInvalidRequest = errors.New("invalid request")
