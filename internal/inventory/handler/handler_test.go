package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fekuna/blueice-inventory-service/internal/auth"
	"github.com/fekuna/blueice-inventory-service/internal/inventory/usecase"
	"github.com/fekuna/blueice-inventory-service/internal/model"
	"github.com/fekuna/blueice-inventory-service/internal/store/memory"
	"github.com/fekuna/blueice-inventory-service/pkg/logger"
	"github.com/fekuna/blueice-inventory-service/pkg/metrics"
	"github.com/fekuna/blueice-inventory-service/pkg/middleware"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(t *testing.T) (*mux.Router, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	store.AddProduct(model.Product{
		BaseModel:    model.BaseModel{ID: "p1"},
		Name:         "19L Bottle",
		SKU:          "B19",
		IsReturnable: true,
		StockFilled:  65,
		StockEmpty:   5,
	})
	store.AddCustomer(model.RouteCustomer{ID: "c1", Name: "Ali"})
	store.SetWallet("c1", "p1", 12)

	uc := usecase.NewInventoryUseCase(
		store.Inventory(), nil, nil,
		auth.NewRoleAuthorizer([]string{"ADMIN"}),
		metrics.NewRegistry(), logger.NewNop(),
		usecase.Options{MaxRetries: 1, RetryBackoff: time.Millisecond},
	)
	r := mux.NewRouter()
	r.Use(middleware.Identity())
	NewInventoryHandler(uc, logger.NewNop()).Register(r)
	return r, store
}

func do(r http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestMutations(t *testing.T) {
	r, _ := newRouter(t)

	rec := do(r, http.MethodPost, "/api/v1/inventory/restock", `{"productId":"p1","filledQty":5,"emptyQty":10}`, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res MutationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.True(t, res.Success)
	assert.Equal(t, 70, res.Product.StockFilled)
	assert.Equal(t, 15, res.Product.StockEmpty)

	rec = do(r, http.MethodPost, "/api/v1/inventory/refill", `{"productId":"p1","quantity":15}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(r, http.MethodPost, "/api/v1/inventory/damage", `{"productId":"p1","quantity":500,"type":"DAMAGE","reason":"test"}`, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "insufficient filled stock: have 85, need 500")

	rec = do(r, http.MethodPost, "/api/v1/inventory/damage", `{"productId":"p1","quantity":1,"type":"DAMAGE"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(r, http.MethodPost, "/api/v1/inventory/refill", `{"productId":"zzz","quantity":1}`, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(r, http.MethodPost, "/api/v1/inventory/refill", `{"productId":"p1","qty":1}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "unknown fields are rejected")
}

func TestAdjustRequiresAdmin(t *testing.T) {
	r, _ := newRouter(t)
	body := `{"productId":"p1","stockFilled":1,"stockEmpty":2,"stockDamaged":3,"reason":"count"}`

	rec := do(r, http.MethodPost, "/api/v1/inventory/adjust", body, map[string]string{
		middleware.HeaderUserID:   "u1",
		middleware.HeaderUserRole: "DRIVER",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(r, http.MethodPost, "/api/v1/inventory/adjust", body, map[string]string{
		middleware.HeaderUserID:   "u2",
		middleware.HeaderUserRole: "admin",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"stockDamaged":3`)
}

func TestStatsAndHolders(t *testing.T) {
	r, _ := newRouter(t)

	rec := do(r, http.MethodGet, "/api/v1/inventory/stats", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var stats model.InventoryStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	require.Len(t, stats.Products, 1)
	assert.Equal(t, 12, stats.Products[0].BottlesWithCustomers)
	assert.Equal(t, 82, stats.Products[0].TotalBottles)
	assert.Equal(t, 82, stats.Totals.Total)

	rec = do(r, http.MethodGet, "/api/v1/inventory/bottles-with-customers?productId=p1", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var holders []model.BottleHolder
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &holders), rec.Body.String())
	require.NotEmpty(t, holders)
	assert.Equal(t, "Ali", holders[0].CustomerName)

	rec = do(r, http.MethodGet, "/api/v1/inventory/bottles-with-customers?productId=nobody-holds-this", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestListMovements(t *testing.T) {
	r, _ := newRouter(t)
	do(r, http.MethodPost, "/api/v1/inventory/refill", `{"productId":"p1","quantity":2}`, nil)

	rec := do(r, http.MethodGet, "/api/v1/inventory/movements?productId=p1&kind=REFILL", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var res MovementsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, 1, res.Total)
	assert.Equal(t, 20, res.PageSize)
	require.Len(t, res.Movements, 1)
	assert.Equal(t, 2, res.Movements[0].FilledChange)

	rec = do(r, http.MethodGet, "/api/v1/inventory/movements?page=two", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(r, http.MethodGet, "/api/v1/inventory/movements?startDate=yesterday", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
