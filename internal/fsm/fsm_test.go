package fsm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTransitionHappyPath(t *testing.T) {
	s := StateIdle

	next, err := Transition(s, EventEdgeDown)
	require.NoError(t, err)
	require.Equal(t, StateStartInFlight, next)

	next, err = Transition(next, EventStartSucceeded)
	require.NoError(t, err)
	require.Equal(t, StateListening, next)

	next, err = Transition(next, EventEdgeUp)
	require.NoError(t, err)
	require.Equal(t, StateStopInFlight, next)

	next, err = Transition(next, EventStopFinished)
	require.NoError(t, err)
	require.Equal(t, StateIdle, next)
}

func TestTransitionStartFailedReturnsIdle(t *testing.T) {
	next, err := Transition(StateStartInFlight, EventStartFailed)
	require.NoError(t, err)
	require.Equal(t, StateIdle, next)
}

func TestTransitionEdgeUpDuringStartLatchesWithoutStateChange(t *testing.T) {
	next, err := Transition(StateStartInFlight, EventEdgeUp)
	require.NoError(t, err)
	require.Equal(t, StateStartInFlight, next)
}

func TestTransitionCancelledFromStartInFlightReturnsIdle(t *testing.T) {
	next, err := Transition(StateStartInFlight, EventCancelled)
	require.NoError(t, err)
	require.Equal(t, StateIdle, next)
}

func TestTransitionCancelledFromListeningReturnsIdle(t *testing.T) {
	next, err := Transition(StateListening, EventCancelled)
	require.NoError(t, err)
	require.Equal(t, StateIdle, next)
}

func TestTransitionEdgeDownDuringStopLatchesWithoutStateChange(t *testing.T) {
	next, err := Transition(StateStopInFlight, EventEdgeDown)
	require.NoError(t, err)
	require.Equal(t, StateStopInFlight, next)
}

func TestTransitionMatrixInvalidTransitions(t *testing.T) {
	tests := []struct {
		name  string
		state State
		event Event
		want  State
	}{
		{name: "idle edge-up invalid", state: StateIdle, event: EventEdgeUp, want: StateIdle},
		{name: "idle start-succeeded invalid", state: StateIdle, event: EventStartSucceeded, want: StateIdle},
		{name: "listening edge-down invalid", state: StateListening, event: EventEdgeDown, want: StateListening},
		{name: "listening stop-finished invalid", state: StateListening, event: EventStopFinished, want: StateListening},
		{name: "stop-in-flight edge-up invalid", state: StateStopInFlight, event: EventEdgeUp, want: StateStopInFlight},
		{name: "start-in-flight edge-down invalid", state: StateStartInFlight, event: EventEdgeDown, want: StateStartInFlight},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			next, err := Transition(tc.state, tc.event)
			require.Equal(t, tc.want, next)
			require.Error(t, err)
			require.Contains(t, err.Error(), "invalid transition")
		})
	}
}

func TestTransitionUnknownState(t *testing.T) {
	next, err := Transition(State("mystery"), EventEdgeDown)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown state")
	require.Equal(t, State("mystery"), next)
}
