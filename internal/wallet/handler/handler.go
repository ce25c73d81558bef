package handler

import (
	"net/http"

	"github.com/fekuna/blueice-inventory-service/internal/httpapi"
	"github.com/fekuna/blueice-inventory-service/internal/wallet"
	"github.com/fekuna/blueice-inventory-service/pkg/logger"
	"github.com/gorilla/mux"
)

type WalletHandler struct {
	uc     wallet.UseCase
	logger logger.ZapLogger
}

func NewWalletHandler(uc wallet.UseCase, log logger.ZapLogger) *WalletHandler {
	return &WalletHandler{uc: uc, logger: log}
}

func (h *WalletHandler) Register(r *mux.Router) {
	r.HandleFunc("/api/v1/customers/{id}/wallets", h.ListCustomerWallets).Methods(http.MethodGet)
}

func (h *WalletHandler) ListCustomerWallets(w http.ResponseWriter, r *http.Request) {
	wallets, err := h.uc.ListCustomerWallets(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		httpapi.WriteError(w, h.logger, r, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, map[string]interface{}{"wallets": wallets})
}
