package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fekuna/blueice-inventory-service/internal/auth"
	"github.com/fekuna/blueice-inventory-service/pkg/logger"
	"github.com/fekuna/blueice-inventory-service/pkg/metrics"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestIdentityAndRequestLogger(t *testing.T) {
	m := metrics.NewRegistry()
	var seen auth.UserContext

	r := mux.NewRouter()
	r.Use(Identity(), RequestLogger(logger.NewNop(), m))
	r.HandleFunc("/who", func(w http.ResponseWriter, r *http.Request) {
		seen, _ = auth.GetUser(r.Context())
		w.WriteHeader(http.StatusTeapot)
	})

	req := httptest.NewRequest(http.MethodGet, "/who", nil)
	req.Header.Set(HeaderUserID, "u1")
	req.Header.Set(HeaderUserRole, "ADMIN")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, auth.UserContext{UserID: "u1", Role: "ADMIN"}, seen)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues(http.MethodGet, "418")))
}

func TestIdentity_Anonymous(t *testing.T) {
	found := true
	h := Identity()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, found = auth.GetUser(r.Context())
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.False(t, found)
}
