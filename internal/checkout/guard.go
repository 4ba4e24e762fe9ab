package checkout

import (
	"context"
	"fmt"
	"strings"

	"github.com/ariefcatur/go-storefront-orders.git/internal/metrics"
	"github.com/ariefcatur/go-storefront-orders.git/internal/orders"
	"github.com/ariefcatur/go-storefront-orders.git/internal/payments"
	"go.uber.org/zap"
)

type LineItemInput struct {
	PriceRef string `json:"price_ref"`
	Qty      int    `json:"qty"`
}

type CheckoutRequest struct {
	UserID  string          `json:"user_id"`
	Email   string          `json:"email"`
	Address string          `json:"address"`
	Country string          `json:"country"`
	Items   []LineItemInput `json:"items"`
}

type CheckoutResponse struct {
	SessionID   string `json:"session_id"`
	RedirectURL string `json:"redirect_url"`
}

// Guard: pre-flight check stok + buka payment session.
// Check-nya advisory: tidak ada lock/reservasi, jadi ada race window
// antara approval di sini dan settlement. Keputusan final tetap di
// decrement saat materialisasi.
type Guard struct {
	Store      Store
	Gateway    payments.Gateway
	Metrics    Counters
	Log        *zap.Logger
	SuccessURL string
	CancelURL  string
}

func (g *Guard) Checkout(ctx context.Context, req CheckoutRequest) (*CheckoutResponse, error) {
	if req.UserID == "" || req.Email == "" || len(req.Items) == 0 {
		return nil, orders.Validationf("user_id, email and items are required")
	}

	var shortfalls []string
	sessionItems := make([]payments.SessionItem, 0, len(req.Items))
	for _, it := range req.Items {
		if it.Qty <= 0 {
			return nil, orders.Validationf("invalid qty for price %s", it.PriceRef)
		}
		p, err := g.Store.ProductByPriceRef(ctx, it.PriceRef)
		if err != nil {
			return nil, err
		}
		if p.Status != orders.ProductActive {
			return nil, orders.Conflictf("product %s is not available", p.Name)
		}
		if p.Stock < it.Qty {
			shortfalls = append(shortfalls, fmt.Sprintf("%s (requested %d, available %d)", p.Name, it.Qty, p.Stock))
			continue
		}
		sessionItems = append(sessionItems, payments.SessionItem{PriceRef: it.PriceRef, Quantity: it.Qty})
	}
	// satu item kurang -> seluruh request gagal, tidak ada partial checkout
	if len(shortfalls) > 0 {
		return nil, orders.Conflictf("Insufficient stock: %s", strings.Join(shortfalls, "; "))
	}

	// Metadata dibawa sampai settlement; webhook cuma mengantar session
	// object provider, bukan konteks aplikasi.
	ses, err := g.Gateway.CreateCheckoutSession(ctx, payments.CreateSessionParams{
		Items:         sessionItems,
		CustomerEmail: req.Email,
		SuccessURL:    g.SuccessURL,
		CancelURL:     g.CancelURL,
		Metadata: map[string]string{
			payments.MetaUserID:  req.UserID,
			payments.MetaAddress: req.Address,
			payments.MetaCountry: req.Country,
		},
	})
	if err != nil {
		// fatal untuk checkout; tidak ada retry otomatis
		g.Metrics.Inc(ctx, metrics.GatewayErrors)
		g.Log.Error("create checkout session failed", zap.String("user_id", req.UserID), zap.Error(err))
		return nil, err
	}

	return &CheckoutResponse{SessionID: ses.ID, RedirectURL: ses.URL}, nil
}
