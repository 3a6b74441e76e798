package infrastructure

import (
	"testing"

	"skinvault/domain/events"

	"github.com/stretchr/testify/assert"
)

func TestEventSubjectMapper(t *testing.T) {
	t.Parallel()

	mapper := NewEventSubjectMapper()

	tests := []struct {
		event   events.Event
		subject string
	}{
		{events.TransactionRecordedEvent{}, "ledger.transaction_recorded"},
		{events.DrawRecordedEvent{}, "draws.recorded"},
		{events.CaseOpenedEvent{}, "cases.opened"},
		{events.GamePlayedEvent{}, "games.played"},
		{events.ListingStateChangedEvent{}, "market.listing_state_changed"},
		{events.WithdrawalStateChangedEvent{}, "withdrawals.state_changed"},
		{events.AccountCreatedEvent{}, "accounts.created"},
	}
	for _, tt := range tests {
		t.Run(string(tt.event.Type()), func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.subject, mapper.MapEventToSubject(tt.event))
			assert.Equal(t, tt.event.Type(), mapper.MapSubjectToEventType(tt.subject))
		})
	}

	assert.Len(t, mapper.GetAllSubjects(), len(tests))
}
