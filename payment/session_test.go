package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransition(t *testing.T) {
	testCases := []struct {
		state   State
		event   Event
		next    State
		changed bool
	}{
		{StateInitiating, EventGraceElapsed, StateWaiting, true},
		{StateWaiting, EventCheckStarted, StateVerifying, true},
		{StateVerifying, EventStillPending, StateWaiting, true},
		{StateVerifying, EventCompleted, StateSuccess, true},
		{StateWaiting, EventCompleted, StateSuccess, true},
		{StateVerifying, EventFailed, StateError, true},
		{StateWaiting, EventExpired, StateError, true},
		{StateInitiating, EventAborted, StateError, true},

		// out-of-order events change nothing
		{StateInitiating, EventCheckStarted, StateInitiating, false},
		{StateWaiting, EventGraceElapsed, StateWaiting, false},
		{StateWaiting, EventStillPending, StateWaiting, false},
	}

	for _, tc := range testCases {
		t.Run(string(tc.state)+"/"+string(tc.event), func(t *testing.T) {
			next, changed := Transition(tc.state, tc.event)
			assert.Equal(t, tc.next, next)
			assert.Equal(t, tc.changed, changed)
		})
	}
}

func TestTransitionTerminalStatesAbsorbEverything(t *testing.T) {
	events := []Event{
		EventGraceElapsed, EventCheckStarted, EventStillPending,
		EventCompleted, EventFailed, EventExpired, EventAborted,
	}

	for _, terminal := range []State{StateSuccess, StateError} {
		for _, event := range events {
			next, changed := Transition(terminal, event)
			assert.Equal(t, terminal, next, "%s must absorb %s", terminal, event)
			assert.False(t, changed)
		}
	}
}

func TestSessionRepeatedPendingIsIdempotent(t *testing.T) {
	s := newSession(Snapshot{ID: "s1", BookingID: 1, MaxAttempts: 20})
	s.apply(EventGraceElapsed, "")

	s.beginAttempt()
	assert.True(t, s.apply(EventStillPending, ""))
	for i := 0; i < 5; i++ {
		assert.False(t, s.apply(EventStillPending, ""), "repeated pending must not transition")
	}

	snapshot := s.Snapshot()
	assert.Equal(t, StateWaiting, snapshot.State)
	assert.Equal(t, 1, snapshot.Attempt)
}

func TestSessionTerminalMessageIsKept(t *testing.T) {
	s := newSession(Snapshot{ID: "s1"})
	s.apply(EventGraceElapsed, "")
	s.beginAttempt()
	s.apply(EventFailed, "insufficient balance")

	// a late completion must not flip the outcome or the message
	assert.False(t, s.apply(EventCompleted, "done"))

	snapshot := s.Snapshot()
	assert.Equal(t, StateError, snapshot.State)
	assert.Equal(t, "insufficient balance", snapshot.Message)
}
