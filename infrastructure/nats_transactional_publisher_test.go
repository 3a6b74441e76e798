package infrastructure

import (
	"context"
	"errors"
	"testing"

	"skinvault/domain/events"
	"skinvault/domain/testhelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestTransactionalPublisher_HoldsEventsUntilFlush(t *testing.T) {
	t.Parallel()

	sink := new(testhelpers.MockEventPublisher)
	publisher := NewNATSTransactionalPublisher(sink)

	first := events.CaseOpenedEvent{AccountID: 1, CaseKey: "standard"}
	second := events.TransactionRecordedEvent{AccountID: 1, Delta: -100}
	require.NoError(t, publisher.Publish(first))
	require.NoError(t, publisher.Publish(second))
	sink.AssertNotCalled(t, "Publish", mock.Anything)

	var order []events.EventType
	sink.On("Publish", mock.Anything).Run(func(args mock.Arguments) {
		order = append(order, args.Get(0).(events.Event).Type())
	}).Return(nil)

	require.NoError(t, publisher.Flush(context.Background()))
	assert.Equal(t, []events.EventType{events.EventTypeCaseOpened, events.EventTypeTransactionRecorded}, order)

	// A second flush has nothing left to send
	require.NoError(t, publisher.Flush(context.Background()))
	sink.AssertNumberOfCalls(t, "Publish", 2)
}

func TestTransactionalPublisher_DiscardDropsEvents(t *testing.T) {
	t.Parallel()

	sink := new(testhelpers.MockEventPublisher)
	publisher := NewNATSTransactionalPublisher(sink)

	require.NoError(t, publisher.Publish(events.GamePlayedEvent{AccountID: 1, Stake: 10}))
	publisher.Discard()
	require.NoError(t, publisher.Flush(context.Background()))

	sink.AssertNotCalled(t, "Publish", mock.Anything)
}

func TestTransactionalPublisher_FlushContinuesAfterFailure(t *testing.T) {
	t.Parallel()

	sink := new(testhelpers.MockEventPublisher)
	publisher := NewNATSTransactionalPublisher(sink)

	failing := events.DrawRecordedEvent{DrawID: 1}
	following := events.CaseOpenedEvent{DrawID: 1}
	sink.On("Publish", failing).Return(errors.New("nats unavailable"))
	sink.On("Publish", following).Return(nil)

	require.NoError(t, publisher.Publish(failing))
	require.NoError(t, publisher.Publish(following))
	require.NoError(t, publisher.Flush(context.Background()))

	sink.AssertExpectations(t)
}
