package handler

import (
	"net/http"
	"strconv"

	"github.com/fekuna/blueice-inventory-service/internal/apperror"
	"github.com/fekuna/blueice-inventory-service/internal/httpapi"
	"github.com/fekuna/blueice-inventory-service/internal/model"
	"github.com/fekuna/blueice-inventory-service/internal/product"
	"github.com/fekuna/blueice-inventory-service/internal/product/dto"
	"github.com/fekuna/blueice-inventory-service/pkg/logger"
	"github.com/gorilla/mux"
)

type ProductHandler struct {
	uc     product.UseCase
	logger logger.ZapLogger
}

func NewProductHandler(uc product.UseCase, log logger.ZapLogger) *ProductHandler {
	return &ProductHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *ProductHandler) Register(r *mux.Router) {
	s := r.PathPrefix("/api/v1/products").Subrouter()
	s.HandleFunc("", h.CreateProduct).Methods(http.MethodPost)
	s.HandleFunc("", h.ListProducts).Methods(http.MethodGet)
	s.HandleFunc("/{id}", h.GetProduct).Methods(http.MethodGet)
}

type ProductResponse struct {
	Success bool           `json:"success"`
	Product *model.Product `json:"product"`
}

func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var in dto.CreateProductInput
	if err := httpapi.DecodeJSON(r, &in); err != nil {
		httpapi.WriteError(w, h.logger, r, err)
		return
	}

	p, err := h.uc.CreateProduct(r.Context(), &in)
	if err != nil {
		httpapi.WriteError(w, h.logger, r, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusCreated, ProductResponse{Success: true, Product: p})
}

func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.uc.GetProduct(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		httpapi.WriteError(w, h.logger, r, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, ProductResponse{Success: true, Product: p})
}

type ListProductsResponse struct {
	Products []model.Product `json:"products"`
	httpapi.Page
}

func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filters := &dto.ProductFilters{
		SearchQuery: q.Get("search"),
		SortBy:      q.Get("sortBy"),
		SortOrder:   q.Get("sortOrder"),
	}
	if raw := q.Get("isReturnable"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			httpapi.WriteError(w, h.logger, r, apperror.Validation("isReturnable must be true or false"))
			return
		}
		filters.IsReturnable = &v
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

	items, total, err := h.uc.ListProducts(r.Context(), filters)
	if err != nil {
		httpapi.WriteError(w, h.logger, r, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, ListProductsResponse{
		Products: items,
		Page:     httpapi.Page{Page: filters.Page, PageSize: filters.PageSize, Total: total},
	})
}
