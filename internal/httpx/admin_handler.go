package httpx

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/ariefcatur/go-storefront-orders.git/internal/checkout"
	"github.com/ariefcatur/go-storefront-orders.git/internal/orders"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type AdminOrdersHandler struct {
	Lifecycle *checkout.Lifecycle
	Store     checkout.Store
	Token     string
	Log       *zap.Logger
}

func (h *AdminOrdersHandler) Register(r *chi.Mux) {
	r.Route("/orders", func(r chi.Router) {
		r.Use(RequireAdmin(h.Token))
		r.Get("/{id}", h.get)
		r.Post("/{id}/confirm", h.confirm)
		r.Post("/{id}/reject", h.reject)
	})
}

func orderID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, orders.Validationf("invalid order id")
	}
	return id, nil
}

func (h *AdminOrdersHandler) get(w http.ResponseWriter, r *http.Request) {
	id, err := orderID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	o, err := h.Store.Order(ctx, id)
	if err != nil {
		writeError(w, err)
		return
	}
	details, err := h.Store.DetailsByOrder(ctx, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"order": o, "details": details})
}

func (h *AdminOrdersHandler) confirm(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Lifecycle.Confirm)
}

func (h *AdminOrdersHandler) reject(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Lifecycle.Reject)
}

func (h *AdminOrdersHandler) transition(w http.ResponseWriter, r *http.Request, fn func(context.Context, int64) (*orders.Order, error)) {
	id, err := orderID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	// refund call bisa ikut di jalur ini
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	o, err := fn(ctx, id)
	if err != nil {
		if orders.KindOf(err) == orders.KindInternal {
			h.Log.Error("order transition failed", zap.Int64("order_id", id), zap.Error(err))
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}
