package httpx

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/ariefcatur/go-storefront-orders.git/internal/checkout"
	"github.com/ariefcatur/go-storefront-orders.git/internal/orders"
	"github.com/ariefcatur/go-storefront-orders.git/internal/payments"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type WebhookHandler struct {
	Materializer *checkout.Materializer
	Secret       string
	Log          *zap.Logger
}

func (h *WebhookHandler) Register(r *chi.Mux) {
	r.Post("/webhooks/payments", h.handle)
}

func (h *WebhookHandler) handle(w http.ResponseWriter, r *http.Request) {
	// raw body dibutuhkan verifikasi signature, jangan diparse duluan
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		writeError(w, orders.Validationf("unreadable body"))
		return
	}

	sig := r.Header.Get(payments.SignatureHeader)
	if err := payments.VerifySignature(body, sig, h.Secret, time.Now()); err != nil {
		// zero side effects; payload tidak di-log
		h.Log.Warn("webhook signature rejected")
		writeError(w, err)
		return
	}

	ev, err := payments.ParseEvent(body)
	if err != nil {
		writeError(w, err)
		return
	}
	if ev.Type != payments.EventCheckoutCompleted {
		writeJSON(w, http.StatusOK, map[string]string{"event": "received"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	res, err := h.Materializer.HandleSessionCompleted(ctx, ev.Data.Object)
	switch {
	case err != nil && orders.KindOf(err) == orders.KindValidation:
		writeError(w, err)
	case err != nil:
		// DB/gateway lagi bermasalah: ack tanpa order supaya provider
		// redeliver nanti. Tetap ribut di log buat follow-up operasional.
		h.Log.Error("materialization failed, acking for redelivery",
			zap.String("session_id", ev.Data.Object.ID), zap.Error(err))
		writeJSON(w, http.StatusOK, map[string]string{"event": "received"})
	case res.Created:
		writeJSON(w, http.StatusCreated, map[string]any{
			"event": "order created", "order": res.Order, "details": res.Details,
		})
	default:
		writeJSON(w, http.StatusOK, map[string]any{
			"event": "order exists", "order": res.Order,
		})
	}
}
