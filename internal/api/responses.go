package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/snarg/moodscribe/internal/apperr"
)

// Machine-readable error codes carried in ErrorResponse.Code.
const (
	ErrBadRequest     = "bad_request"
	ErrInvalidBody    = "invalid_body"
	ErrTooLarge       = "payload_too_large"
	ErrAudioIO        = string(apperr.KindIO)
	ErrAudioDecode    = string(apperr.KindDecode)
	ErrModelInference = string(apperr.KindModelInference)
	ErrInternal       = "internal_error"
)

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// ErrorResponse is the standard error response body.
type ErrorResponse struct {
	Error  string `json:"error"`
	Code   string `json:"code,omitempty"`
	Detail string `json:"detail,omitempty"`
}

// WriteError writes a JSON error response.
func WriteError(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, ErrorResponse{Error: msg})
}

// WriteErrorWithCode writes a JSON error response with a machine-readable code.
func WriteErrorWithCode(w http.ResponseWriter, status int, code, msg string) {
	WriteJSON(w, status, ErrorResponse{Error: msg, Code: code})
}

// StatusForError maps a pipeline error to an HTTP status and error code.
func StatusForError(err error) (int, string) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge, ErrTooLarge
	case errors.Is(err, apperr.ErrIO):
		return http.StatusBadRequest, ErrAudioIO
	case errors.Is(err, apperr.ErrDecode):
		return http.StatusUnprocessableEntity, ErrAudioDecode
	case errors.Is(err, apperr.ErrModelInference):
		return http.StatusBadGateway, ErrModelInference
	default:
		return http.StatusInternalServerError, ErrInternal
	}
}
