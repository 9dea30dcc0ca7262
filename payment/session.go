package payment

import (
	"sync"
	"time"

	"cinepay/entity"
)

type State string

const (
	StateInitiating State = "initiating"
	StateWaiting    State = "waiting"
	StateVerifying  State = "verifying"
	StateSuccess    State = "success"
	StateError      State = "error"
)

func (s State) Terminal() bool {
	return s == StateSuccess || s == StateError
}

type Event string

const (
	EventGraceElapsed Event = "grace_elapsed"
	EventCheckStarted Event = "check_started"
	EventStillPending Event = "still_pending"
	EventCompleted    Event = "completed"
	EventFailed       Event = "failed"
	EventExpired      Event = "expired"
	EventAborted      Event = "aborted"
)

// Transition is the pure state machine behind a polling session. It returns
// the next state and whether the event caused a change. Terminal states
// absorb every event, so re-delivering "still pending" or a late terminal
// result can never produce a second transition.
func Transition(state State, event Event) (State, bool) {
	if state.Terminal() {
		return state, false
	}

	switch event {
	case EventGraceElapsed:
		if state == StateInitiating {
			return StateWaiting, true
		}
	case EventCheckStarted:
		if state == StateWaiting {
			return StateVerifying, true
		}
	case EventStillPending:
		if state == StateVerifying {
			return StateWaiting, true
		}
	case EventCompleted:
		if state == StateWaiting || state == StateVerifying {
			return StateSuccess, true
		}
	case EventFailed, EventExpired, EventAborted:
		return StateError, true
	}

	return state, false
}

// Snapshot is an immutable view of a polling session, safe to hand to
// presentation code.
type Snapshot struct {
	ID          string
	BookingID   int
	BillID      string
	Reference   string
	Method      entity.PaymentMethod
	MSISDN      string
	Amount      int
	State       State
	Attempt     int
	MaxAttempts int
	Interval    time.Duration
	Elapsed     time.Duration
	Message     string
}

type session struct {
	mu sync.Mutex

	snapshot     Snapshot
	waitingSince time.Time
	finishedAt   time.Time
}

func newSession(snapshot Snapshot) *session {
	snapshot.State = StateInitiating
	return &session{snapshot: snapshot}
}

func (s *session) apply(event Event, message string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, changed := Transition(s.snapshot.State, event)
	if !changed {
		return false
	}

	if s.snapshot.State == StateInitiating && next == StateWaiting {
		s.waitingSince = time.Now()
	}
	if next.Terminal() {
		s.finishedAt = time.Now()
	}

	s.snapshot.State = next
	if message != "" {
		s.snapshot.Message = message
	}

	return true
}

func (s *session) beginAttempt() bool {
	if !s.apply(EventCheckStarted, "") {
		return false
	}

	s.mu.Lock()
	s.snapshot.Attempt++
	s.mu.Unlock()

	return true
}

func (s *session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.snapshot
	switch {
	case s.waitingSince.IsZero():
		// still in the pre-poll grace period
	case !s.finishedAt.IsZero():
		snapshot.Elapsed = s.finishedAt.Sub(s.waitingSince)
	case !s.waitingSince.IsZero():
		snapshot.Elapsed = time.Since(s.waitingSince)
	}
	if snapshot.Elapsed < 0 {
		snapshot.Elapsed = 0
	}

	return snapshot
}
