package observability

import (
	"fmt"
	"time"
)

// Metrics summarises task activity recorded in the event log.
type Metrics struct {
	TasksCreated   int            `json:"tasks_created"`
	TasksClosed    int            `json:"tasks_closed"`
	TasksCancelled int            `json:"tasks_cancelled"`
	TasksReopened  int            `json:"tasks_reopened"`
	Transitions    map[string]int `json:"transitions"`
	Updates        int            `json:"updates"`
	LogEntries     int            `json:"log_entries"`
	CyclesReported int            `json:"cycles_reported"`
	EventCount     int            `json:"event_count"`
	OldestEvent    *time.Time     `json:"oldest_event,omitempty"`
	NewestEvent    *time.Time     `json:"newest_event,omitempty"`
}

// MetricsCalculator derives metrics from the event log.
type MetricsCalculator interface {
	Calculate(since time.Time) (*Metrics, error)
}

// EventReader is the read half of EventLog.
type EventReader interface {
	Read(filter EventFilter) ([]Event, error)
}

type metricsCalculator struct {
	events EventReader
}

// NewMetricsCalculator creates a MetricsCalculator over events.
func NewMetricsCalculator(events EventReader) MetricsCalculator {
	return &metricsCalculator{events: events}
}

// Calculate aggregates every event at or after since. Transitions are keyed
// "from->to".
func (mc *metricsCalculator) Calculate(since time.Time) (*Metrics, error) {
	events, err := mc.events.Read(EventFilter{Since: &since})
	if err != nil {
		return nil, fmt.Errorf("reading events for metrics: %w", err)
	}

	m := &Metrics{Transitions: make(map[string]int), EventCount: len(events)}
	for _, event := range events {
		t := event.Time
		if m.OldestEvent == nil || t.Before(*m.OldestEvent) {
			m.OldestEvent = &t
		}
		if m.NewestEvent == nil || t.After(*m.NewestEvent) {
			m.NewestEvent = &t
		}

		switch event.Type {
		case EventTaskCreated:
			m.TasksCreated++
		case EventTaskStatusChanged:
			from, _ := event.Data["from"].(string)
			to, _ := event.Data["to"].(string)
			m.Transitions[from+"->"+to]++
			switch {
			case to == "closed":
				m.TasksClosed++
			case to == "cancelled":
				m.TasksCancelled++
			case to == "open" && (from == "closed" || from == "cancelled"):
				m.TasksReopened++
			}
		case EventTaskUpdated:
			m.Updates++
		case EventTaskLogged:
			m.LogEntries++
		case EventCycleDetected:
			m.CyclesReported++
		}
	}
	return m, nil
}
