package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/ariefcatur/go-storefront-orders.git/internal/checkout"
	"github.com/ariefcatur/go-storefront-orders.git/internal/orders"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type CheckoutHandler struct {
	Guard *checkout.Guard
	Log   *zap.Logger
}

func (h *CheckoutHandler) Register(r *chi.Mux) {
	r.Post("/checkout", h.create)
}

func (h *CheckoutHandler) create(w http.ResponseWriter, r *http.Request) {
	var req checkout.CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, orders.Validationf("invalid json"))
		return
	}

	// timeout agak longgar, ada call keluar ke gateway
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	resp, err := h.Guard.Checkout(ctx, req)
	if err != nil {
		if orders.KindOf(err) == orders.KindInternal {
			h.Log.Error("checkout failed", zap.Error(err))
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}
