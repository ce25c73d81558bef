package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fekuna/blueice-inventory-service/internal/apperror"
	"github.com/fekuna/blueice-inventory-service/pkg/logger"
	"github.com/stretchr/testify/assert"
)

func TestStatusOf(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{apperror.Validation("bad"), http.StatusBadRequest},
		{apperror.NotFound("product", "p1"), http.StatusNotFound},
		{&apperror.InsufficientStockError{Counter: "filled", Have: 1, Need: 2}, http.StatusUnprocessableEntity},
		{fmt.Errorf("retry exhausted: %w", apperror.ErrConflict), http.StatusConflict},
		{apperror.Forbidden("stock adjustment"), http.StatusForbidden},
		{errors.New("connection refused"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusOf(tt.err), tt.err.Error())
	}
}

func TestWriteError_HidesInternalDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)

	WriteError(rec, logger.NewNop(), req, errors.New("pq: password authentication failed"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":"internal error"}`, rec.Body.String())
}

func TestDecode(t *testing.T) {
	var v struct {
		A int `json:"a"`
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"a":1,"b":2}`))
	assert.ErrorIs(t, DecodeJSON(req, &v), apperror.ErrValidation)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	assert.ErrorIs(t, DecodeJSON(req, &v), apperror.ErrValidation)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	assert.NoError(t, DecodeOptionalJSON(req, &v))
}
