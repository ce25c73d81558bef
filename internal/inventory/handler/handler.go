package handler

import (
	"net/http"
	"time"

	"github.com/fekuna/blueice-inventory-service/internal/apperror"
	"github.com/fekuna/blueice-inventory-service/internal/httpapi"
	"github.com/fekuna/blueice-inventory-service/internal/inventory"
	"github.com/fekuna/blueice-inventory-service/internal/inventory/dto"
	"github.com/fekuna/blueice-inventory-service/internal/model"
	"github.com/fekuna/blueice-inventory-service/pkg/logger"
	"github.com/gorilla/mux"
)

type InventoryHandler struct {
	uc     inventory.UseCase
	logger logger.ZapLogger
}

func NewInventoryHandler(uc inventory.UseCase, log logger.ZapLogger) *InventoryHandler {
	return &InventoryHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *InventoryHandler) Register(r *mux.Router) {
	s := r.PathPrefix("/api/v1/inventory").Subrouter()
	s.HandleFunc("/stats", h.GetInventoryStats).Methods(http.MethodGet)
	s.HandleFunc("/bottles-with-customers", h.GetBottlesWithCustomers).Methods(http.MethodGet)
	s.HandleFunc("/movements", h.ListMovements).Methods(http.MethodGet)
	s.HandleFunc("/restock", h.Restock).Methods(http.MethodPost)
	s.HandleFunc("/refill", h.Refill).Methods(http.MethodPost)
	s.HandleFunc("/damage", h.RecordDamageOrLoss).Methods(http.MethodPost)
	s.HandleFunc("/adjust", h.AdjustStock).Methods(http.MethodPost)
}

type MutationResponse struct {
	Success bool           `json:"success"`
	Product *model.Product `json:"product"`
}

func (h *InventoryHandler) Restock(w http.ResponseWriter, r *http.Request) {
	var in dto.RestockInput
	if err := httpapi.DecodeJSON(r, &in); err != nil {
		httpapi.WriteError(w, h.logger, r, err)
		return
	}
	p, err := h.uc.Restock(r.Context(), &in)
	h.respond(w, r, p, err)
}

func (h *InventoryHandler) Refill(w http.ResponseWriter, r *http.Request) {
	var in dto.RefillInput
	if err := httpapi.DecodeJSON(r, &in); err != nil {
		httpapi.WriteError(w, h.logger, r, err)
		return
	}
	p, err := h.uc.Refill(r.Context(), &in)
	h.respond(w, r, p, err)
}

func (h *InventoryHandler) RecordDamageOrLoss(w http.ResponseWriter, r *http.Request) {
	var in dto.DamageInput
	if err := httpapi.DecodeJSON(r, &in); err != nil {
		httpapi.WriteError(w, h.logger, r, err)
		return
	}
	p, err := h.uc.RecordDamageOrLoss(r.Context(), &in)
	h.respond(w, r, p, err)
}

func (h *InventoryHandler) AdjustStock(w http.ResponseWriter, r *http.Request) {
	var in dto.AdjustmentInput
	if err := httpapi.DecodeJSON(r, &in); err != nil {
		httpapi.WriteError(w, h.logger, r, err)
		return
	}
	p, err := h.uc.AdjustStock(r.Context(), &in)
	h.respond(w, r, p, err)
}

func (h *InventoryHandler) respond(w http.ResponseWriter, r *http.Request, p *model.Product, err error) {
	if err != nil {
		httpapi.WriteError(w, h.logger, r, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, MutationResponse{Success: true, Product: p})
}

func (h *InventoryHandler) GetInventoryStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.uc.GetInventoryStats(r.Context())
	if err != nil {
		httpapi.WriteError(w, h.logger, r, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, stats)
}

func (h *InventoryHandler) GetBottlesWithCustomers(w http.ResponseWriter, r *http.Request) {
	holders, err := h.uc.GetBottlesWithCustomers(r.Context(), r.URL.Query().Get("productId"))
	if err != nil {
		httpapi.WriteError(w, h.logger, r, err)
		return
	}
	if holders == nil {
		holders = []model.BottleHolder{}
	}
	httpapi.WriteJSON(w, http.StatusOK, holders)
}

type MovementsResponse struct {
	Movements []model.StockMovement `json:"movements"`
	httpapi.Page
}

func (h *InventoryHandler) ListMovements(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filters := &dto.MovementFilters{
		ProductID: q.Get("productId"),
		Kind:      model.MovementKind(q.Get("kind")),
	}

	var err error
	if filters.Page, err = httpapi.QueryInt(r, "page"); err != nil {
		httpapi.WriteError(w, h.logger, r, err)
		return
	}
	if filters.PageSize, err = httpapi.QueryInt(r, "pageSize"); err != nil {
		httpapi.WriteError(w, h.logger, r, err)
		return
	}
	if filters.StartDate, err = queryTime(r, "startDate"); err != nil {
		httpapi.WriteError(w, h.logger, r, err)
		return
	}
	if filters.EndDate, err = queryTime(r, "endDate"); err != nil {
		httpapi.WriteError(w, h.logger, r, err)
		return
	}

	items, total, err := h.uc.ListMovements(r.Context(), filters)
	if err != nil {
		httpapi.WriteError(w, h.logger, r, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, MovementsResponse{
		Movements: items,
		Page:      httpapi.Page{Page: filters.Page, PageSize: filters.PageSize, Total: total},
	})
}

func queryTime(r *http.Request, name string) (*time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, apperror.Validation("%s must be an RFC 3339 timestamp", name)
	}
	return &t, nil
}
