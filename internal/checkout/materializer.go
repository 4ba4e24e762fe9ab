package checkout

import (
	"context"
	"errors"

	kafkax "github.com/ariefcatur/go-storefront-orders.git/internal/kafka"
	"github.com/ariefcatur/go-storefront-orders.git/internal/metrics"
	"github.com/ariefcatur/go-storefront-orders.git/internal/orders"
	"github.com/ariefcatur/go-storefront-orders.git/internal/payments"
	"go.uber.org/zap"
)

// Materializer mengubah notifikasi "payment completed" jadi order durable
// + decrement stok, aman di bawah at-least-once delivery. Idempotency
// key-nya session_id: existence check duluan sebagai optimasi, unique
// constraint di DB sebagai batas correctness.
type Materializer struct {
	Store   Store
	Gateway payments.Gateway
	Carts   CartStore
	Metrics Counters
	Events  Publisher
	Log     *zap.Logger
	Service string
}

type MaterializeResult struct {
	Order   *orders.Order        `json:"order"`
	Details []orders.OrderDetail `json:"details"`
	Created bool                 `json:"created"`
}

func (m *Materializer) HandleSessionCompleted(ctx context.Context, ses payments.CheckoutSession) (*MaterializeResult, error) {
	if ses.ID == "" {
		return nil, orders.Validationf("webhook session has no id")
	}
	userID := ses.Metadata[payments.MetaUserID]
	if userID == "" {
		return nil, orders.Validationf("session %s has no user_id metadata", ses.ID)
	}

	// retry? balikin yang sudah ada tanpa proses ulang
	if existing, err := m.Store.OrderBySession(ctx, ses.ID); err == nil {
		m.Metrics.Inc(ctx, metrics.WebhookReplays)
		details, _ := m.Store.DetailsByOrder(ctx, existing.ID)
		return &MaterializeResult{Order: existing, Details: details, Created: false}, nil
	} else if orders.KindOf(err) != orders.KindNotFound {
		return nil, err
	}

	// Line items authoritative diambil balik dari provider,
	// bukan dipercaya dari body notifikasi.
	items, err := m.Gateway.ListLineItems(ctx, ses.ID)
	if err != nil {
		m.Metrics.Inc(ctx, metrics.GatewayErrors)
		return nil, err
	}
	if len(items) == 0 {
		return nil, orders.Validationf("session %s settled with no line items", ses.ID)
	}

	amount := ses.AmountTotal
	if amount == 0 {
		for _, it := range items {
			amount += it.AmountSubtotal
		}
	}

	o := &orders.Order{
		SessionID:   ses.ID,
		UserID:      userID,
		AmountCents: amount,
		Status:      orders.StatusPending,
		Address:     ses.Metadata[payments.MetaAddress],
		Country:     ses.Metadata[payments.MetaCountry],
	}

	var details []orders.OrderDetail
	err = m.Store.WithTx(ctx, func(tx orders.Tx) error {
		if err := tx.InsertOrder(ctx, o); err != nil {
			return err
		}
		for _, it := range items {
			p, err := tx.ProductByPriceRef(ctx, it.PriceRef)
			if err != nil {
				return err
			}
			ok, err := tx.DecrementIfAvailable(ctx, p.ID, it.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				// Pembayaran sudah settle; order tetap dibuat full qty,
				// sisa stok di-clamp ke nol. Oversell kelihatan di metrics,
				// tidak disembunyikan.
				if _, err := tx.ClampToZero(ctx, p.ID); err != nil {
					return err
				}
				m.Metrics.Inc(ctx, metrics.OversellClamps)
				m.Log.Warn("stock clamped to zero at settlement",
					zap.String("session_id", ses.ID),
					zap.String("product_id", p.ID),
					zap.Int("requested", it.Quantity))
			}
			d := orders.OrderDetail{
				OrderID:         o.ID,
				ProductID:       p.ID,
				TotalQuantity:   it.Quantity,
				TotalPriceCents: it.AmountSubtotal, // harga settled, bukan harga produk sekarang
			}
			if err := tx.InsertDetail(ctx, &d); err != nil {
				return err
			}
			details = append(details, d)
		}
		return nil
	})
	if errors.Is(err, orders.ErrDuplicateSession) {
		// dua delivery lolos existence check barengan; constraint menang
		m.Metrics.Inc(ctx, metrics.WebhookReplays)
		existing, gerr := m.Store.OrderBySession(ctx, ses.ID)
		if gerr != nil {
			return nil, gerr
		}
		dts, _ := m.Store.DetailsByOrder(ctx, existing.ID)
		return &MaterializeResult{Order: existing, Details: dts, Created: false}, nil
	}
	if err != nil {
		return nil, orders.Internalf(err, "materialize order for session %s", ses.ID)
	}

	// Post-commit, dua-duanya best-effort: gagal di sini tidak boleh
	// membatalkan order yang sudah durable.
	m.clearCart(ctx, userID, ses.ID)
	m.publishCreated(o, details)

	return &MaterializeResult{Order: o, Details: details, Created: true}, nil
}

func (m *Materializer) clearCart(ctx context.Context, userID, sessionID string) {
	c, err := m.Carts.ByUser(ctx, userID)
	if err != nil {
		m.Log.Warn("cart fetch failed after order", zap.String("session_id", sessionID), zap.Error(err))
		return
	}
	if err := m.Carts.Clear(ctx, c.ID); err != nil {
		m.Log.Warn("cart clear failed after order", zap.String("session_id", sessionID), zap.Error(err))
	}
}

func (m *Materializer) publishCreated(o *orders.Order, details []orders.OrderDetail) {
	if m.Events == nil {
		return
	}
	items := make([]orders.ItemQty, 0, len(details))
	for _, d := range details {
		items = append(items, orders.ItemQty{ProductID: d.ProductID, Qty: d.TotalQuantity})
	}
	ev := newEnvelope(orders.EventOrderCreated, m.Service, o.SessionID, kafkax.MustMarshal(orders.OrderCreatedPayload{
		OrderID:     o.ID,
		SessionID:   o.SessionID,
		UserID:      o.UserID,
		AmountCents: o.AmountCents,
		Items:       items,
	}))
	m.Events.Publish(orders.TopicOrderCreated, orders.PartitionKey(o.SessionID), kafkax.MustMarshal(ev),
		eventHeaders(orders.EventOrderCreated)...)
}
