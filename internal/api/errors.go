package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/goccy/go-json"

	domainerrors "github.com/yamdb/yamdb-server/internal/errors"
	"github.com/yamdb/yamdb-server/internal/http/response"
)

// APIError implements huma.StatusError. Its JSON form is the bare body:
// a field map for validation failures, {"detail": "..."} otherwise.
type APIError struct { //nolint:revive // API prefix is intentional for clarity
	status int
	body   any
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if d, ok := e.body.(response.Detail); ok {
		return d.Detail
	}
	return http.StatusText(e.status)
}

// GetStatus implements huma.StatusError.
func (e *APIError) GetStatus() int {
	return e.status
}

// ContentType returns the content type for the error response.
func (e *APIError) ContentType(_ string) string {
	return "application/json"
}

// MarshalJSON writes the body without a wrapper.
func (e *APIError) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.body)
}

// RegisterErrorHandler installs the huma error hook. Domain and store errors keep
// their own status; huma's request validation failures become 400 field maps.
// Call this before registering routes.
func RegisterErrorHandler(logger *slog.Logger) {
	huma.NewError = func(status int, message string, errs ...error) huma.StatusError {
		for _, err := range errs {
			var domainErr *domainerrors.Error
			if errors.As(err, &domainErr) {
				return newAPIError(err, logger)
			}
		}

		if fields := detailFields(errs); len(fields) > 0 {
			return &APIError{status: http.StatusBadRequest, body: fields}
		}

		for _, err := range errs {
			if status >= http.StatusInternalServerError && err != nil {
				return newAPIError(err, logger)
			}
		}

		if status == http.StatusUnprocessableEntity {
			status = http.StatusBadRequest
		}
		if status >= http.StatusInternalServerError {
			message = response.MsgInternal
		}
		return &APIError{status: status, body: response.Detail{Detail: message}}
	}
}

func newAPIError(err error, logger *slog.Logger) *APIError {
	status, body := response.ErrorBody(err)
	if status >= http.StatusInternalServerError && logger != nil {
		logger.Error("request failed", "error", err)
	}
	return &APIError{status: status, body: body}
}

// detailFields converts huma validation details into a field map.
// "body.score" reports under "score"; a whole-body problem under non_field_errors.
func detailFields(errs []error) domainerrors.FieldErrors {
	fields := domainerrors.FieldErrors{}
	for _, err := range errs {
		var detail *huma.ErrorDetail
		if !errors.As(err, &detail) {
			continue
		}
		fields.Add(fieldName(detail.Location), detail.Message)
	}
	return fields
}

func fieldName(location string) string {
	for _, prefix := range []string{"body", "query", "path", "header"} {
		if location == prefix {
			return domainerrors.NonFieldErrors
		}
		if rest, ok := strings.CutPrefix(location, prefix+"."); ok {
			return rest
		}
	}
	if location == "" {
		return domainerrors.NonFieldErrors
	}
	return location
}
