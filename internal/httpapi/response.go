// Package httpapi holds the JSON plumbing shared by every HTTP handler.
package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/fekuna/blueice-inventory-service/internal/apperror"
	"github.com/fekuna/blueice-inventory-service/pkg/logger"
	"go.uber.org/zap"
)

type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func WriteJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// StatusOf maps the domain error taxonomy onto HTTP status codes.
func StatusOf(err error) int {
	switch {
	case errors.Is(err, apperror.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperror.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperror.ErrInsufficientStock):
		return http.StatusUnprocessableEntity
	case errors.Is(err, apperror.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, apperror.ErrForbidden):
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}

// WriteError answers with the mapped status. Internal errors are logged and
// their details kept out of the response.
func WriteError(w http.ResponseWriter, log logger.ZapLogger, r *http.Request, err error) {
	status := StatusOf(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		msg = "internal error"
	}
	WriteJSON(w, status, ErrorResponse{Success: false, Error: msg})
}

func DecodeJSON(r *http.Request, v interface{}) error {
	return decode(r, v, false)
}

// DecodeOptionalJSON is DecodeJSON for endpoints whose body may be left out.
func DecodeOptionalJSON(r *http.Request, v interface{}) error {
	return decode(r, v, true)
}

func decode(r *http.Request, v interface{}, optional bool) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if optional && errors.Is(err, io.EOF) {
			return nil
		}
		return apperror.Validation("invalid request body: %v", err)
	}
	return nil
}

// QueryInt reads an optional integer query parameter.
func QueryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperror.Validation("%s must be an integer", name)
	}
	return n, nil
}

type Page struct {
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
	Total    int `json:"total"`
}
