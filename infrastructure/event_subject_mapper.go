package infrastructure

import (
	"fmt"

	"skinvault/domain/events"
)

// EventStreamName is the JetStream stream holding all domain events
const EventStreamName = "skinvault_events"

var eventSubjects = map[events.EventType]string{
	events.EventTypeTransactionRecorded: "ledger.transaction_recorded",
	events.EventTypeDrawRecorded:        "draws.recorded",
	events.EventTypeCaseOpened:          "cases.opened",
	events.EventTypeGamePlayed:          "games.played",
	events.EventTypeListingStateChanged: "market.listing_state_changed",
	events.EventTypeWithdrawalChanged:   "withdrawals.state_changed",
	events.EventTypeAccountCreated:      "accounts.created",
}

// EventSubjectMapper handles mapping between domain events and NATS subjects
type EventSubjectMapper struct{}

// NewEventSubjectMapper creates a new event subject mapper
func NewEventSubjectMapper() *EventSubjectMapper {
	return &EventSubjectMapper{}
}

// MapEventToSubject converts a domain event to its NATS subject
func (m *EventSubjectMapper) MapEventToSubject(event events.Event) string {
	if subject, ok := eventSubjects[event.Type()]; ok {
		return subject
	}
	return fmt.Sprintf("unknown.%s", event.Type())
}

// MapSubjectToEventType converts a NATS subject back to an event type
func (m *EventSubjectMapper) MapSubjectToEventType(subject string) events.EventType {
	for eventType, s := range eventSubjects {
		if s == subject {
			return eventType
		}
	}
	return events.EventType(subject)
}

// GetAllSubjects returns all subjects this service publishes to
func (m *EventSubjectMapper) GetAllSubjects() []string {
	subjects := make([]string, 0, len(eventSubjects))
	for _, s := range eventSubjects {
		subjects = append(subjects, s)
	}
	return subjects
}
