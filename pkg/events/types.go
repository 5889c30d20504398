package events

import "time"

// EventType identifies the kind of event emitted during a run.
type EventType string

const (
	EventRunStart        EventType = "run.start"
	EventRunEnd          EventType = "run.end"
	EventDomainStart     EventType = "domain.start"
	EventDomainSkipped   EventType = "domain.skipped"
	EventDomainEnd       EventType = "domain.end"
	EventSnapshotFetched EventType = "snapshot.fetched"
	EventCaseResult      EventType = "case.result"
	EventBaselineSaved   EventType = "baseline.saved"
	EventRPCRequest      EventType = "rpc.request"
)

// Event represents a single runtime event. Domain is set for events that
// belong to one verification domain.
type Event struct {
	Type      EventType     `json:"type"`
	Timestamp time.Time     `json:"timestamp"`
	Domain    string        `json:"domain,omitempty"`
	Data      any           `json:"data"`
	Duration  time.Duration `json:"duration,omitempty"`
}

// NewEvent creates a new Event with the current timestamp.
func NewEvent(typ EventType, data any) Event {
	return Event{
		Type:      typ,
		Timestamp: time.Now(),
		Data:      data,
	}
}

// NewDomainEvent creates an event scoped to a domain.
func NewDomainEvent(typ EventType, domain string, data any) Event {
	e := NewEvent(typ, data)
	e.Domain = domain
	return e
}
