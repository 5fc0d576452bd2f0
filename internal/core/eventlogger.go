package core

// EventLogger receives task activity events. A nil EventLogger disables
// event emission; the task manager never reads events back.
type EventLogger interface {
	LogEvent(eventType string, data map[string]any) error
}
