package observability

// Metric name prefixes
const (
	MetricPrefix = "skinvault"
)

// Metric names
const (
	OperationsTotal   = MetricPrefix + ".operations.total"
	OperationDuration = MetricPrefix + ".operations.duration"
	OperationRetries  = MetricPrefix + ".operations.retries_total"

	IntegrityFailuresTotal = MetricPrefix + ".integrity.failures_total"

	LedgerRowsTotal = MetricPrefix + ".ledger.rows_total"

	EventsPublishedTotal = MetricPrefix + ".events.published_total"

	BalanceCacheLookupsTotal = MetricPrefix + ".balance_cache.lookups_total"

	ListingsExpiredTotal = MetricPrefix + ".market.listings_expired_total"
)

// Label keys
const (
	LabelOperation = "operation"
	LabelOutcome   = "outcome"
	LabelEventType = "event_type"
	LabelReason    = "reason"
	LabelCacheHit  = "hit"
	LabelErrorKind = "error_kind"
)

// Operation outcomes
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeConflict = "conflict"
	OutcomeFailed   = "failed"
	OutcomeReplayed = "replayed"
)
