package endpoints

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"flex-design-backend/internal/api"
	"flex-design-backend/internal/api/middleware"
	"flex-design-backend/internal/policy"
)

type HTTPError = api.HTTPError

type ApiMessageResponse struct {
	Message string `json:"message"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) error {
	return api.WriteJSON(w, status, v)
}

func MethodHandler(
	w http.ResponseWriter,
	r *http.Request,
	allowed map[string]func(http.ResponseWriter, *http.Request) error,
) error {
	if handler, ok := allowed[r.Method]; ok {
		return handler(w, r)
	}
	return &HTTPError{
		StatusCode: http.StatusMethodNotAllowed,
		Message:    "Method not allowed.",
		ErrorLog:   fmt.Errorf("method %s not allowed on %s", r.Method, r.URL.Path),
	}
}

func decodeJSON(r *http.Request, v any, what string) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return &HTTPError{
			StatusCode: http.StatusBadRequest,
			Message:    "Invalid request payload",
			ErrorLog:   fmt.Errorf("decode %s: %w", what, err),
		}
	}
	return nil
}

// requireIdentity returns the caller attached by the auth middleware.
func requireIdentity(r *http.Request) (policy.Identity, error) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok || identity.UserID == "" {
		return policy.Identity{}, &HTTPError{
			StatusCode: http.StatusUnauthorized,
			Message:    "Unauthorized",
			ErrorLog:   fmt.Errorf("no identity on request to %s", r.URL.Path),
		}
	}
	return identity, nil
}

// optionalIdentity returns nil for anonymous callers.
func optionalIdentity(r *http.Request) *policy.Identity {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok || identity.UserID == "" {
		return nil
	}
	return &identity
}

func pathID(r *http.Request) (string, error) {
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		return "", &HTTPError{
			StatusCode: http.StatusBadRequest,
			Message:    "Missing id",
			ErrorLog:   fmt.Errorf("missing path id in %s", r.URL.Path),
		}
	}
	return id, nil
}

// statusError maps a service error code to the HTTP status clients see.
// Internal failures never leak their message.
func statusError(code, message string, errorLog error) *HTTPError {
	status := http.StatusInternalServerError
	switch code {
	case "validation_error", "weak_password":
		status = http.StatusBadRequest
	case "unauthorized", "invalid_credentials":
		status = http.StatusUnauthorized
	case "forbidden", "banned":
		status = http.StatusForbidden
	case "not_found":
		status = http.StatusNotFound
	case "conflict", "email_in_use":
		status = http.StatusConflict
	case "too_large":
		status = http.StatusRequestEntityTooLarge
	case "not_configured":
		status = http.StatusServiceUnavailable
	}

	if status == http.StatusInternalServerError {
		message = "Internal server error"
	}
	return &HTTPError{
		StatusCode: status,
		Message:    message,
		ErrorLog:   errorLog,
	}
}

func errorLogFor(message string, cause error, self error) error {
	if cause != nil {
		return fmt.Errorf("%s: %w", message, cause)
	}
	return self
}

func internalError(what string, err error) *HTTPError {
	return &HTTPError{
		StatusCode: http.StatusInternalServerError,
		Message:    "Internal server error",
		ErrorLog:   fmt.Errorf("%s: %w", what, err),
	}
}
