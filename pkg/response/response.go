package response

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	customError "github.com/segyhp/library-engine/pkg/errors"
)

type Response struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

type ErrorResponse struct {
	Success   bool              `json:"success"`
	Error     string            `json:"error"`
	Message   string            `json:"message,omitempty"`
	Fields    map[string]string `json:"fields,omitempty"`
	Data      interface{}       `json:"data,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// persistenceMessage is all a caller learns about a store failure
const persistenceMessage = "The operation could not be completed, please try again"

// JSON sends a JSON response
func JSON(w http.ResponseWriter, statusCode int, data interface{}) {
	write(w, statusCode, Response{
		Success:   statusCode >= 200 && statusCode < 300,
		Data:      data,
		Timestamp: time.Now(),
	})
}

// Success sends a successful JSON response
func Success(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusOK, data)
}

// Created sends a created JSON response
func Created(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusCreated, data)
}

// Message sends a successful response that carries only a message
func Message(w http.ResponseWriter, message string) {
	write(w, http.StatusOK, Response{
		Success:   true,
		Message:   message,
		Timestamp: time.Now(),
	})
}

// Error sends an error JSON response
func Error(w http.ResponseWriter, statusCode int, message string, err error) {
	resp := ErrorResponse{
		Success:   false,
		Error:     http.StatusText(statusCode),
		Message:   message,
		Timestamp: time.Now(),
	}
	if err != nil {
		resp.Error = err.Error()
	}
	write(w, statusCode, resp)
}

// StatusFor maps an error kind onto the HTTP status it is reported with
func StatusFor(kind customError.Kind) int {
	switch kind {
	case customError.KindValidation:
		return http.StatusBadRequest
	case customError.KindUnauthenticated:
		return http.StatusUnauthorized
	case customError.KindForbidden:
		return http.StatusForbidden
	case customError.KindNotFound:
		return http.StatusNotFound
	case customError.KindConflict:
		return http.StatusConflict
	case customError.KindMembershipExpired:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// FromError reports err according to its kind
func FromError(w http.ResponseWriter, r *http.Request, err error) {
	FromErrorWithData(w, r, err, nil)
}

// FromErrorWithData reports err and, for validation failures, echoes data
// back so the caller can correct and resubmit it.
func FromErrorWithData(w http.ResponseWriter, r *http.Request, err error, data interface{}) {
	kind := customError.KindOf(err)
	status := StatusFor(kind)
	resp := ErrorResponse{
		Success:   false,
		RequestID: RequestIDFrom(r.Context()),
		Timestamp: time.Now(),
	}

	var be *customError.BusinessError
	switch {
	case kind == customError.KindPersistence:
		slog.ErrorContext(r.Context(), "request failed",
			"method", r.Method, "path", r.URL.Path, "request_id", resp.RequestID, "error", err)
		resp.Error = customError.ErrCodeDatabaseError
		resp.Message = persistenceMessage
	case errors.As(err, &be):
		resp.Error = be.Code
		resp.Message = be.Message
		if kind == customError.KindValidation {
			resp.Fields = be.Fields
			resp.Data = data
		}
	}

	write(w, status, resp)
}

// BadRequest sends a 400 bad request response
func BadRequest(w http.ResponseWriter, message string, err error) {
	Error(w, http.StatusBadRequest, message, err)
}

// NotFound sends a 404 not found response
func NotFound(w http.ResponseWriter, message string) {
	Error(w, http.StatusNotFound, message, nil)
}

// Unauthorized sends a 401 unauthorized response
func Unauthorized(w http.ResponseWriter, message string) {
	Error(w, http.StatusUnauthorized, message, nil)
}

func write(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("encoding JSON response", "error", err)
	}
}
