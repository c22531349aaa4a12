// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// State is a stage of one report generation run. Runs only move forward.
type State int

const (
	Idle State = iota
	Summarizing
	Rendering
	Capturing
	Assembling
	Ready
	Failed
)

var stateNames = [...]string{"idle", "summarizing", "rendering", "capturing", "assembling", "ready", "failed"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("state(%d)", int(s))
	}
	return stateNames[s]
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return s == Ready || s == Failed
}

// ErrInvalidTransition is returned when a session is asked to move backwards,
// skip a stage, or leave a terminal state.
var ErrInvalidTransition = errors.New("invalid state transition")

// Level classifies an event for display.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Event is a user-facing stage notification. The caller decides how to show it.
type Event struct {
	Stage  State
	Level  Level
	Title  string
	Detail string
	At     time.Time
}

// Session tracks one run: its identifier, current state, and emitted events.
// It is safe for concurrent reads while a run advances it.
type Session struct {
	ID string

	mu      sync.Mutex
	state   State
	events  []Event
	clock   func() time.Time
	onEvent func(Event)
}

// NewSession returns an idle session. onEvent, when set, is called
// synchronously for every emitted event.
func NewSession(clock func() time.Time, onEvent func(Event)) *Session {
	if clock == nil {
		clock = time.Now
	}
	return &Session{ID: uuid.NewString(), clock: clock, onEvent: onEvent}
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Events returns a copy of the events emitted so far.
func (s *Session) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Event(nil), s.events...)
}

// advance moves to the next stage. Only the immediate successor is allowed,
// except Failed, which is reachable from any non-terminal state.
func (s *Session) advance(to State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	from := s.state
	switch {
	case from.Terminal():
		return fmt.Errorf("%w: %s is terminal", ErrInvalidTransition, from)
	case to == Failed:
	case to == from+1:
	default:
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	s.state = to
	return nil
}

func (s *Session) emit(level Level, title, detail string) {
	s.mu.Lock()
	ev := Event{Stage: s.state, Level: level, Title: title, Detail: detail, At: s.clock()}
	s.events = append(s.events, ev)
	cb := s.onEvent
	s.mu.Unlock()

	if cb != nil {
		cb(ev)
	}
}
