// Package response writes JSON bodies for handlers that run outside the huma API,
// such as router middleware. Error bodies follow the same shapes as API errors:
// {"detail": "..."} or a map of field names to message lists.
package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/goccy/go-json"

	domainerrors "github.com/yamdb/yamdb-server/internal/errors"
	"github.com/yamdb/yamdb-server/internal/store"
)

// Detail is the body of every non-validation error.
type Detail struct {
	Detail string `json:"detail"`
}

// Default messages for statuses produced outside the services.
const (
	MsgNotFound         = "Not found."
	MsgMethodNotAllowed = "Method not allowed."
	MsgThrottled        = "Request was throttled."
	MsgInternal         = "A server error occurred."
)

// JSON writes data with the given status code.
func JSON(w http.ResponseWriter, status int, data any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil && logger != nil {
		logger.Error("failed to encode JSON response", "error", err)
	}
}

// Error writes a {"detail": message} body.
func Error(w http.ResponseWriter, status int, message string, logger *slog.Logger) {
	JSON(w, status, Detail{Detail: message}, logger)
}

// NotFound writes a 404 response.
func NotFound(w http.ResponseWriter, logger *slog.Logger) {
	Error(w, http.StatusNotFound, MsgNotFound, logger)
}

// MethodNotAllowed writes a 405 response.
func MethodNotAllowed(w http.ResponseWriter, logger *slog.Logger) {
	Error(w, http.StatusMethodNotAllowed, MsgMethodNotAllowed, logger)
}

// TooManyRequests writes a 429 response.
func TooManyRequests(w http.ResponseWriter, logger *slog.Logger) {
	Error(w, http.StatusTooManyRequests, MsgThrottled, logger)
}

// ErrorBody maps err to a status code and response body.
// Validation and conflict errors become field maps; everything else a detail body.
// Unknown errors become a 500 with a generic message.
func ErrorBody(err error) (int, any) {
	var domainErr *domainerrors.Error
	if errors.As(err, &domainErr) {
		status := domainErr.HTTPStatus()
		if len(domainErr.Fields) > 0 {
			return status, domainErr.Fields
		}
		if status == http.StatusInternalServerError {
			return status, Detail{Detail: MsgInternal}
		}
		return status, Detail{Detail: domainErr.Message}
	}

	if errors.Is(err, store.ErrNotFound) {
		return http.StatusNotFound, Detail{Detail: MsgNotFound}
	}
	var storeErr *store.Error
	if errors.As(err, &storeErr) {
		return storeErr.HTTPCode(), domainerrors.FieldErrors{domainerrors.NonFieldErrors: {storeErr.Message}}
	}

	return http.StatusInternalServerError, Detail{Detail: MsgInternal}
}

// HandleError writes the response ErrorBody chooses for err.
// Server errors are logged; client errors are not.
func HandleError(w http.ResponseWriter, err error, logger *slog.Logger) {
	status, body := ErrorBody(err)
	if status >= http.StatusInternalServerError && logger != nil {
		logger.Error("unhandled error", "error", err)
	}
	JSON(w, status, body, logger)
}
