package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Tomlord1122/tasklists-backend/internal/domain"
)

// envelope is the body of every successful list and task response.
type envelope struct {
	Message string `json:"message"`
	Data    any    `json:"data"`
	Success bool   `json:"success"`
}

type errorEnvelope struct {
	Message string `json:"message"`
	Success bool   `json:"success"`
}

func respondWithData(w http.ResponseWriter, code int, message string, data any) {
	respondWithJSON(w, code, envelope{Message: message, Data: data, Success: true})
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, errorEnvelope{Message: message, Success: false})
}

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"message":"Internal server error preparing response","success":false}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

// respondWithDomainError maps an error kind to its status class. Anything
// that is not a domain error is reported as an internal error.
func (s *Server) respondWithDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var de *domain.Error
	if !errors.As(err, &de) {
		de = domain.Internal(err)
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(de, domain.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(de, domain.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(de, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(de, domain.ErrConflict):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	}
	respondWithError(w, status, de.Message())
}

// decodeJSON reads a single JSON object into dst. On failure it writes a 400
// response and returns false.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	err := decoder.Decode(dst)
	if err == nil {
		return true
	}

	var syntaxError *json.SyntaxError
	var unmarshalTypeError *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syntaxError):
		msg := fmt.Sprintf("Request body contains badly-formed JSON (at position %d)", syntaxError.Offset)
		s.respondWithDomainError(w, r, domain.Validationf(domain.CodeInvalidJSON, "%s", msg))
	case errors.Is(err, io.ErrUnexpectedEOF):
		s.respondWithDomainError(w, r, domain.Validationf(domain.CodeInvalidJSON, "Request body contains badly-formed JSON"))
	case errors.As(err, &unmarshalTypeError):
		msg := fmt.Sprintf("Request body contains an invalid value for the %q field (at position %d)", unmarshalTypeError.Field, unmarshalTypeError.Offset)
		s.respondWithDomainError(w, r, domain.Validationf(domain.CodeTypeMismatch, "%s", msg))
	case strings.HasPrefix(err.Error(), "json: unknown field "):
		fieldName := strings.TrimPrefix(err.Error(), "json: unknown field ")
		s.respondWithDomainError(w, r, domain.Validationf(domain.CodeBadRequest, "Request body contains unknown field %s", fieldName))
	case errors.Is(err, io.EOF):
		s.respondWithDomainError(w, r, domain.Validationf(domain.CodeBadRequest, "Request body must not be empty"))
	default:
		s.logger.Error("failed to decode request body", "path", r.URL.Path, "err", err)
		s.respondWithDomainError(w, r, domain.Validation(domain.CodeBadRequest))
	}
	return false
}
