package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"skinvault/domain/entities"
	"skinvault/domain/events"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const (
	balanceKeyPrefix      = "skinvault:balances:"
	balanceFloorKeyPrefix = "skinvault:balances:floor:"
)

// setBalancesScript stores a snapshot unless a newer version has already been
// committed. KEYS: entry, floor. ARGV: version, payload, ttl in ms.
const setBalancesScript = `
local floor = tonumber(redis.call('GET', KEYS[2]) or '-1')
local version = tonumber(ARGV[1])
if version < floor then
  return 0
end
redis.call('SET', KEYS[2], ARGV[1], 'PX', ARGV[3])
redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
return 1
`

// invalidateBalancesScript drops the entry and raises the floor to the
// committed version. KEYS: entry, floor. ARGV: version, ttl in ms.
const invalidateBalancesScript = `
local floor = tonumber(redis.call('GET', KEYS[2]) or '-1')
if tonumber(ARGV[1]) > floor then
  redis.call('SET', KEYS[2], ARGV[1], 'PX', ARGV[2])
end
redis.call('DEL', KEYS[1])
return 1
`

type cmdable interface {
	Ping(context.Context) *redis.StatusCmd
	Get(context.Context, string) *redis.StringCmd
	Eval(ctx context.Context, script string, keys []string, args ...any) *redis.Cmd
}

// BalanceCache keeps display copies of account balances in Redis. It is never
// consulted by operations that move funds.
//
// Every committed ledger row raises a per-account version floor. A snapshot
// read before that commit carries an older version and is refused by Set, so
// a slow cache fill cannot overwrite a newer balance.
type BalanceCache struct {
	store cmdable
	raw   *redis.Client
	ttl   time.Duration
}

// NewBalanceCache connects to Redis and verifies connectivity
func NewBalanceCache(ctx context.Context, url string, ttl time.Duration) (*BalanceCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	raw := redis.NewClient(opts)
	if err := raw.Ping(ctx).Err(); err != nil {
		_ = raw.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &BalanceCache{store: raw, raw: raw, ttl: ttl}, nil
}

// BalanceKey returns the cache key for an account
func BalanceKey(accountID int64) string {
	return fmt.Sprintf("%s%d", balanceKeyPrefix, accountID)
}

func balanceFloorKey(accountID int64) string {
	return fmt.Sprintf("%s%d", balanceFloorKeyPrefix, accountID)
}

// Get returns cached balances, or nil on a miss
func (c *BalanceCache) Get(ctx context.Context, accountID int64) (*entities.Balances, error) {
	data, err := c.store.Get(ctx, BalanceKey(accountID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cached balances: %w", err)
	}

	var balances entities.Balances
	if err := json.Unmarshal(data, &balances); err != nil {
		// Corrupt entries are treated as a miss and overwritten on the next Set
		log.WithFields(log.Fields{
			"account_id": accountID,
			"error":      err,
		}).Warn("Discarding unreadable cached balances")
		return nil, nil
	}
	return &balances, nil
}

// Set stores balances with the configured TTL. It reports false when the
// snapshot is older than a version already committed for the account.
func (c *BalanceCache) Set(ctx context.Context, balances *entities.Balances) (bool, error) {
	data, err := json.Marshal(balances)
	if err != nil {
		return false, fmt.Errorf("failed to marshal balances: %w", err)
	}
	stored, err := c.store.Eval(ctx, setBalancesScript,
		[]string{BalanceKey(balances.AccountID), balanceFloorKey(balances.AccountID)},
		balances.Version, data, c.ttl.Milliseconds(),
	).Int()
	if err != nil {
		return false, fmt.Errorf("failed to cache balances: %w", err)
	}
	return stored == 1, nil
}

// Invalidate drops the cached balances of an account and refuses later
// snapshots older than version
func (c *BalanceCache) Invalidate(ctx context.Context, accountID, version int64) error {
	err := c.store.Eval(ctx, invalidateBalancesScript,
		[]string{BalanceKey(accountID), balanceFloorKey(accountID)},
		version, c.ttl.Milliseconds(),
	).Err()
	if err != nil {
		return fmt.Errorf("failed to invalidate balances: %w", err)
	}
	return nil
}

// HandleTransactionRecorded invalidates the account touched by a committed ledger row
func (c *BalanceCache) HandleTransactionRecorded(ctx context.Context, event events.Event) error {
	recorded, ok := event.(events.TransactionRecordedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type %T", event)
	}
	return c.Invalidate(ctx, recorded.AccountID, recorded.Version)
}

// Close closes the Redis connection
func (c *BalanceCache) Close() error {
	if c.raw == nil {
		return nil
	}
	return c.raw.Close()
}
