package infrastructure

import (
	"context"
	"fmt"
	"strconv"
	"testing"
	"time"

	"skinvault/domain/entities"
	"skinvault/domain/events"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockCmdable struct {
	data map[string]string
	ttls map[string]time.Duration
}

func newMockCmdable() *mockCmdable {
	return &mockCmdable{
		data: make(map[string]string),
		ttls: make(map[string]time.Duration),
	}
}

func (m *mockCmdable) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (m *mockCmdable) set(key string, value any, ttlMillis any) {
	switch v := value.(type) {
	case []byte:
		m.data[key] = string(v)
	default:
		m.data[key] = fmt.Sprint(v)
	}
	m.ttls[key] = time.Duration(ttlMillis.(int64)) * time.Millisecond
}

func (m *mockCmdable) floor(key string) int64 {
	v, ok := m.data[key]
	if !ok {
		return -1
	}
	n, _ := strconv.ParseInt(v, 10, 64)
	return n
}

// Eval mirrors the two cache scripts against the in-memory map
func (m *mockCmdable) Eval(ctx context.Context, script string, keys []string, args ...any) *redis.Cmd {
	entryKey, floorKey := keys[0], keys[1]
	version := args[0].(int64)

	switch script {
	case setBalancesScript:
		if version < m.floor(floorKey) {
			return redis.NewCmdResult(int64(0), nil)
		}
		m.set(floorKey, version, args[2])
		m.set(entryKey, args[1], args[2])
		return redis.NewCmdResult(int64(1), nil)
	case invalidateBalancesScript:
		if version > m.floor(floorKey) {
			m.set(floorKey, version, args[1])
		}
		delete(m.data, entryKey)
		return redis.NewCmdResult(int64(1), nil)
	}
	return redis.NewCmdResult(nil, fmt.Errorf("unknown script"))
}

func (m *mockCmdable) Get(ctx context.Context, key string) *redis.StringCmd {
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func TestBalanceCache_SetGetInvalidate(t *testing.T) {
	ctx := context.Background()
	store := newMockCmdable()
	cache := &BalanceCache{store: store, ttl: 30 * time.Second}

	miss, err := cache.Get(ctx, 9)
	require.NoError(t, err)
	assert.Nil(t, miss)

	balances := &entities.Balances{AccountID: 9, Standard: 250, Premium: 4, Fragments: map[int64]int64{2: 7}, Version: 3}
	stored, err := cache.Set(ctx, balances)
	require.NoError(t, err)
	assert.True(t, stored)
	assert.Equal(t, 30*time.Second, store.ttls[BalanceKey(9)])

	hit, err := cache.Get(ctx, 9)
	require.NoError(t, err)
	assert.Equal(t, balances, hit)

	require.NoError(t, cache.Invalidate(ctx, 9, 4))
	gone, err := cache.Get(ctx, 9)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestBalanceCache_CorruptEntryIsAMiss(t *testing.T) {
	store := newMockCmdable()
	store.data[BalanceKey(3)] = "{not json"
	cache := &BalanceCache{store: store, ttl: time.Second}

	balances, err := cache.Get(context.Background(), 3)
	require.NoError(t, err)
	assert.Nil(t, balances)
}

func TestBalanceCache_InvalidatedByCommittedLedgerRow(t *testing.T) {
	ctx := context.Background()
	store := newMockCmdable()
	cache := &BalanceCache{store: store, ttl: time.Minute}
	_, err := cache.Set(ctx, &entities.Balances{AccountID: 5, Standard: 100, Version: 1})
	require.NoError(t, err)

	publisher := NewNATSEventPublisher(nil, NewEventSubjectMapper())
	publisher.RegisterLocalHandler(events.EventTypeTransactionRecorded, cache.HandleTransactionRecorded)

	require.NoError(t, publisher.Publish(events.TransactionRecordedEvent{AccountID: 5, Delta: -100, Version: 2}))

	_, cached := store.data[BalanceKey(5)]
	assert.False(t, cached)
}

func TestBalanceCache_StaleFillAfterInvalidationIsRefused(t *testing.T) {
	ctx := context.Background()
	store := newMockCmdable()
	cache := &BalanceCache{store: store, ttl: time.Minute}

	// A reader loads version 1, then a debit commits version 2 before the
	// reader writes back
	stale := &entities.Balances{AccountID: 6, Standard: 500, Version: 1}
	require.NoError(t, cache.Invalidate(ctx, 6, 2))

	stored, err := cache.Set(ctx, stale)
	require.NoError(t, err)
	assert.False(t, stored)

	miss, err := cache.Get(ctx, 6)
	require.NoError(t, err)
	assert.Nil(t, miss)

	fresh := &entities.Balances{AccountID: 6, Standard: 400, Version: 2}
	stored, err = cache.Set(ctx, fresh)
	require.NoError(t, err)
	assert.True(t, stored)

	// An older snapshot cannot replace a newer cached one either
	stored, err = cache.Set(ctx, stale)
	require.NoError(t, err)
	assert.False(t, stored)

	hit, err := cache.Get(ctx, 6)
	require.NoError(t, err)
	assert.Equal(t, int64(400), hit.Standard)
}

func TestBalanceKey(t *testing.T) {
	assert.Equal(t, "skinvault:balances:42", BalanceKey(42))
}
