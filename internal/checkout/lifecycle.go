package checkout

import (
	"context"

	kafkax "github.com/ariefcatur/go-storefront-orders.git/internal/kafka"
	"github.com/ariefcatur/go-storefront-orders.git/internal/metrics"
	"github.com/ariefcatur/go-storefront-orders.git/internal/orders"
	"github.com/ariefcatur/go-storefront-orders.git/internal/payments"
	"go.uber.org/zap"
)

// Lifecycle: transisi admin PENDING -> CONFIRMED | REJECTED, dua-duanya
// terminal. Reject berusaha refund dulu; refund gagal dicatat tapi tidak
// menahan transisi (rekonsiliasi manual lewat events + metrics).
type Lifecycle struct {
	Store   Store
	Gateway payments.Gateway
	Metrics Counters
	Events  Publisher
	Log     *zap.Logger
	Service string
}

func (l *Lifecycle) Confirm(ctx context.Context, id int64) (*orders.Order, error) {
	o, err := l.Store.Order(ctx, id)
	if err != nil {
		return nil, err
	}
	switch o.Status {
	case orders.StatusRejected:
		return nil, orders.Conflictf("cannot confirm a rejected order")
	case orders.StatusConfirmed:
		return o, nil // no-op, counter tidak naik lagi
	}

	updated, err := l.Store.UpdateStatus(ctx, id, orders.StatusConfirmed)
	if err != nil {
		return nil, err
	}
	l.Metrics.Inc(ctx, metrics.OrdersConfirmed)
	l.publish(orders.TopicOrderConfirmed, orders.EventOrderConfirmed, updated.SessionID,
		kafkax.MustMarshal(orders.OrderConfirmedPayload{OrderID: updated.ID}))
	return updated, nil
}

func (l *Lifecycle) Reject(ctx context.Context, id int64) (*orders.Order, error) {
	o, err := l.Store.Order(ctx, id)
	if err != nil {
		return nil, err
	}
	switch o.Status {
	case orders.StatusConfirmed:
		return nil, orders.Conflictf("cannot reject a confirmed order")
	case orders.StatusRejected:
		return o, nil
	}

	intentID, refunded := l.tryRefund(ctx, o)

	updated, err := l.Store.UpdateStatus(ctx, id, orders.StatusRejected)
	if err != nil {
		return nil, err
	}
	l.Metrics.Inc(ctx, metrics.OrdersRejected)
	l.publish(orders.TopicOrderRejected, orders.EventOrderRejected, updated.SessionID,
		kafkax.MustMarshal(orders.OrderRejectedPayload{
			OrderID:         updated.ID,
			PaymentIntentID: intentID,
			Refunded:        refunded,
		}))
	return updated, nil
}

// tryRefund cari payment intent dari session lalu minta refund.
// Semua kegagalan di sini non-fatal.
func (l *Lifecycle) tryRefund(ctx context.Context, o *orders.Order) (intentID string, refunded bool) {
	ses, err := l.Gateway.GetCheckoutSession(ctx, o.SessionID)
	if err != nil {
		l.refundFailed(ctx, o, "", "session lookup failed: "+err.Error())
		return "", false
	}
	if ses.PaymentIntentID == "" {
		l.Log.Warn("no payment intent on session, skipping refund",
			zap.Int64("order_id", o.ID), zap.String("session_id", o.SessionID))
		return "", false
	}
	if _, err := l.Gateway.CreateRefund(ctx, ses.PaymentIntentID); err != nil {
		l.refundFailed(ctx, o, ses.PaymentIntentID, err.Error())
		return ses.PaymentIntentID, false
	}
	return ses.PaymentIntentID, true
}

func (l *Lifecycle) refundFailed(ctx context.Context, o *orders.Order, intentID, reason string) {
	l.Metrics.Inc(ctx, metrics.GatewayErrors)
	l.Log.Error("refund failed, order will be rejected anyway",
		zap.Int64("order_id", o.ID),
		zap.String("payment_intent_id", intentID),
		zap.String("reason", reason))
	l.publish(orders.TopicRefundFailed, orders.EventRefundFailed, o.SessionID,
		kafkax.MustMarshal(orders.RefundFailedPayload{
			OrderID:         o.ID,
			PaymentIntentID: intentID,
			Reason:          reason,
		}))
}

func (l *Lifecycle) publish(topic, eventType, sessionID string, payload []byte) {
	if l.Events == nil {
		return
	}
	ev := newEnvelope(eventType, l.Service, sessionID, payload)
	l.Events.Publish(topic, orders.PartitionKey(sessionID), kafkax.MustMarshal(ev), eventHeaders(eventType)...)
}
