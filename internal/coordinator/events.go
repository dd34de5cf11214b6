package coordinator

// DictationState is the coarse lifecycle state surfaced to the frontend via
// the dictation:state-changed event.
type DictationState string

const (
	StateIdle       DictationState = "idle"
	StateListening  DictationState = "listening"
	StateProcessing DictationState = "processing"
	StateError      DictationState = "error"
)

// PillState is the overlay pill's own (slightly finer) vocabulary.
type PillState string

const (
	PillIdle  PillState = "idle"
	PillWork  PillState = "working"
	PillLive  PillState = "live"
	PillOK    PillState = "ok"
	PillError PillState = "error"
)

// StateChangedEvent is the dictation:state-changed payload.
type StateChangedEvent struct {
	State      DictationState
	Error      string
	Transcript string
}

// PillStatusEvent is the overlay pill-status payload.
type PillStatusEvent struct {
	Message string
	State   PillState
	Visible bool
}

// Publisher is the coordinator's outbound event sink. Implementations adapt
// these calls onto whatever transport the host frontend uses (Wails runtime
// events, in this repo's case).
type Publisher interface {
	HotkeyTriggered()
	StateChanged(StateChangedEvent)
	PillStatus(PillStatusEvent)
}

// NoopPublisher discards every event; used as the zero-value default.
type NoopPublisher struct{}

func (NoopPublisher) HotkeyTriggered()               {}
func (NoopPublisher) StateChanged(StateChangedEvent) {}
func (NoopPublisher) PillStatus(PillStatusEvent)     {}
