package session

import "context"

type EventType string

const (
	EventEntryAppended EventType = "entry_appended"
	EventLogReset      EventType = "log_reset"
	EventThemeChanged  EventType = "theme_changed"
	EventSessionEnded  EventType = "session_ended"
)

// Event announces a change to a session's state. Presentation layers
// subscribe to these instead of polling.
type Event struct {
	Type      EventType   `json:"type"`
	SessionID string      `json:"session_id"`
	Payload   interface{} `json:"payload,omitempty"`
}

type Notifier interface {
	Notify(ctx context.Context, evt Event)
}

// NopNotifier discards events.
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, Event) {}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(ctx context.Context, evt Event)

func (f NotifierFunc) Notify(ctx context.Context, evt Event) { f(ctx, evt) }
