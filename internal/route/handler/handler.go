package handler

import (
	"net/http"

	"github.com/fekuna/blueice-inventory-service/internal/httpapi"
	"github.com/fekuna/blueice-inventory-service/internal/route"
	"github.com/fekuna/blueice-inventory-service/internal/route/dto"
	"github.com/fekuna/blueice-inventory-service/pkg/logger"
	"github.com/gorilla/mux"
)

type RouteHandler struct {
	uc     route.UseCase
	logger logger.ZapLogger
}

func NewRouteHandler(uc route.UseCase, log logger.ZapLogger) *RouteHandler {
	return &RouteHandler{uc: uc, logger: log}
}

func (h *RouteHandler) Register(r *mux.Router) {
	s := r.PathPrefix("/api/v1/routes/{id}").Subrouter()
	s.HandleFunc("/optimize", h.OptimizeRouteSequence).Methods(http.MethodPost)
	s.HandleFunc("/customers", h.GetRouteSequence).Methods(http.MethodGet)
}

type optimizeRequest struct {
	StartLat *float64 `json:"startLat"`
	StartLng *float64 `json:"startLng"`
}

func (h *RouteHandler) OptimizeRouteSequence(w http.ResponseWriter, r *http.Request) {
	var req optimizeRequest
	if err := httpapi.DecodeOptionalJSON(r, &req); err != nil {
		httpapi.WriteError(w, h.logger, r, err)
		return
	}

	res, err := h.uc.OptimizeRouteSequence(r.Context(), &dto.OptimizeInput{
		RouteID:  mux.Vars(r)["id"],
		StartLat: req.StartLat,
		StartLng: req.StartLng,
	})
	if err != nil {
		httpapi.WriteError(w, h.logger, r, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, res)
}

func (h *RouteHandler) GetRouteSequence(w http.ResponseWriter, r *http.Request) {
	seq, err := h.uc.GetRouteSequence(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		httpapi.WriteError(w, h.logger, r, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, seq)
}
