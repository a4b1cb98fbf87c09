package respond

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/haruplan/haruplan/internal/model"
	"github.com/haruplan/haruplan/internal/nlp"
)

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    int    `json:"code"`
	Message string `json:"message,omitempty"`

	// Interpretation failures carry extra detail for the client prompt.
	FailureCode string   `json:"failureCode,omitempty"`
	Missing     []string `json:"missing,omitempty"`
	Candidates  []string `json:"candidates,omitempty"`
}

// WriteJSON writes a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// WriteError writes a standardized error response
func WriteError(w http.ResponseWriter, statusCode int, message string) {
	WriteJSON(w, statusCode, ErrorResponse{
		Error:   http.StatusText(statusCode),
		Code:    statusCode,
		Message: message,
	})
}

// WriteBadRequest writes a 400 Bad Request response
func WriteBadRequest(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, message)
}

// WriteUnauthorized writes a 401 Unauthorized response
func WriteUnauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, message)
}

// WriteNotFound writes a 404 Not Found response
func WriteNotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, message)
}

// WriteInternalError writes a 500 Internal Server Error response
func WriteInternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, message)
}

// WriteServiceError maps domain and interpretation errors onto HTTP
// statuses: validation 400, not found 404, conflict 409, parse failures
// 422 except model_unavailable which is 503.
func WriteServiceError(w http.ResponseWriter, err error) {
	if pe := nlp.AsParseError(err); pe != nil {
		status := http.StatusUnprocessableEntity
		if pe.Code == nlp.FailModelUnavailable {
			status = http.StatusServiceUnavailable
		}
		WriteJSON(w, status, ErrorResponse{
			Error:       http.StatusText(status),
			Code:        status,
			Message:     pe.Error(),
			FailureCode: string(pe.Code),
			Missing:     pe.Missing,
			Candidates:  pe.Candidates,
		})
		return
	}
	switch {
	case errors.Is(err, model.ErrValidation):
		WriteBadRequest(w, err.Error())
	case errors.Is(err, model.ErrNotFound):
		WriteNotFound(w, err.Error())
	case errors.Is(err, model.ErrConflict):
		WriteError(w, http.StatusConflict, err.Error())
	default:
		WriteInternalError(w, err.Error())
	}
}
