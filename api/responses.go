package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"skinvault/domain/entities"

	log "github.com/sirupsen/logrus"
)

// Error codes returned to callers
const (
	CodeValidation        = "validation_error"
	CodeUnauthorized      = "unauthorized"
	CodeNotFound          = "not_found"
	CodeInsufficientFunds = "insufficient_funds"
	CodeInvalidBet        = "invalid_bet_size"
	CodeUnavailable       = "unavailable"
	CodeItemLocked        = "item_locked"
	CodeForbidden         = "forbidden"
	CodeListingNotActive  = "listing_not_active"
	CodeSelfPurchase      = "self_purchase"
	CodeIdempotency       = "idempotency_key_reused"
	CodeAccountDisabled   = "account_disabled"
	CodeWithdrawalState   = "withdrawal_state"
	CodeDailyNotReady     = "daily_reward_not_ready"
	CodeTryAgain          = "try_again"
	CodeTimeout           = "timeout"
	CodeInternal          = "internal_error"
)

// APIError is the error body of a failed request
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type successEnvelope struct {
	Data any `json:"data"`
}

type errorEnvelope struct {
	Error APIError `json:"error"`
}

// validationError is returned for malformed requests before the engine runs
type validationError struct {
	message string
	details map[string]string
}

func (e *validationError) Error() string {
	return e.message
}

func newValidationError(message string) *validationError {
	return &validationError{message: message}
}

type errorMapping struct {
	target error
	status int
	code   string
}

var errorMappings = []errorMapping{
	{entities.ErrInsufficientFunds, http.StatusUnprocessableEntity, CodeInsufficientFunds},
	{entities.ErrInvalidBetSize, http.StatusUnprocessableEntity, CodeInvalidBet},
	{entities.ErrInvalidAmount, http.StatusBadRequest, CodeValidation},
	{entities.ErrInvalidDuration, http.StatusBadRequest, CodeValidation},
	{entities.ErrInvalidTradeLink, http.StatusBadRequest, CodeValidation},
	{entities.ErrCaseUnavailable, http.StatusNotFound, CodeUnavailable},
	{entities.ErrGameUnavailable, http.StatusNotFound, CodeUnavailable},
	{entities.ErrNotFound, http.StatusNotFound, CodeNotFound},
	{entities.ErrAccountNotFound, http.StatusNotFound, CodeNotFound},
	{entities.ErrItemLocked, http.StatusConflict, CodeItemLocked},
	{entities.ErrListingNotActive, http.StatusConflict, CodeListingNotActive},
	{entities.ErrSelfPurchase, http.StatusConflict, CodeSelfPurchase},
	{entities.ErrItemNotOwned, http.StatusForbidden, CodeForbidden},
	{entities.ErrNotOwner, http.StatusForbidden, CodeForbidden},
	{entities.ErrAccountDisabled, http.StatusForbidden, CodeAccountDisabled},
	{entities.ErrIdempotencyKeyReused, http.StatusUnprocessableEntity, CodeIdempotency},
	{entities.ErrWithdrawalPending, http.StatusConflict, CodeWithdrawalState},
	{entities.ErrWithdrawalNotPending, http.StatusConflict, CodeWithdrawalState},
}

// mapError converts an engine error into an HTTP status and body. Internal
// details never leave the process.
func mapError(err error) (int, APIError) {
	var invalid *validationError
	if errors.As(err, &invalid) {
		body := APIError{Code: CodeValidation, Message: invalid.message}
		if len(invalid.details) > 0 {
			body.Details = invalid.details
		}
		return http.StatusBadRequest, body
	}

	var notReady *entities.DailyRewardNotReadyError
	if errors.As(err, &notReady) {
		return http.StatusConflict, APIError{
			Code:    CodeDailyNotReady,
			Message: "daily reward already claimed",
			Details: map[string]string{"next_available": notReady.NextAvailable.UTC().Format(time.RFC3339)},
		}
	}

	switch entities.Classify(err) {
	case entities.KindUserRecoverable:
		for _, m := range errorMappings {
			if errors.Is(err, m.target) {
				return m.status, APIError{Code: m.code, Message: m.target.Error()}
			}
		}
		return http.StatusUnprocessableEntity, APIError{Code: CodeValidation, Message: err.Error()}
	case entities.KindConflict:
		return http.StatusConflict, APIError{Code: CodeTryAgain, Message: entities.ErrTryAgain.Error()}
	}

	if entities.IsTimeout(err) {
		return http.StatusGatewayTimeout, APIError{Code: CodeTimeout, Message: "request timed out, retry with the same idempotency key"}
	}
	return http.StatusInternalServerError, APIError{Code: CodeInternal, Message: "internal error"}
}

func writeSuccess(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, successEnvelope{Data: data})
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := mapError(err)
	if status >= http.StatusInternalServerError {
		log.WithFields(log.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
			"status": status,
			"error":  err,
		}).Error("Request failed")
	}
	writeJSON(w, status, errorEnvelope{Error: body})
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusUnauthorized, errorEnvelope{Error: APIError{Code: CodeUnauthorized, Message: message}})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.WithError(err).Error("Failed to encode response")
	}
}
