package reconcile

import (
	"context"
	"encoding/json"
	"fmt"

	kafkax "github.com/ariefcatur/go-storefront-orders.git/internal/kafka"
	"github.com/ariefcatur/go-storefront-orders.git/internal/orders"
	"github.com/ariefcatur/go-storefront-orders.git/internal/redisx"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Service mendengar event rejection/refund dan menyuarakan order yang
// butuh rekonsiliasi refund manual. Refund gagal tidak memblokir
// transisi di API, jadi follow-up-nya lewat sini.
type Service struct {
	Redis       *redis.Client
	Log         *zap.Logger
	ServiceName string
}

// HandleOrderEvent dipasang sebagai handler consumer.
func (s *Service) HandleOrderEvent(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}

	// dedup via redis (event_id), consumer at-least-once
	dkey := fmt.Sprintf(redisx.KeyDedup, s.ServiceName, env.EventID)
	exists, _ := redisx.Exists(ctx, s.Redis, dkey)
	if exists {
		return nil
	}
	_ = s.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()

	switch env.EventType {
	case orders.EventRefundFailed:
		p, err := kafkax.UnwrapPayload[orders.RefundFailedPayload](env.Payload)
		if err != nil {
			return err
		}
		s.Log.Error("order needs manual refund reconciliation",
			zap.Int64("order_id", p.OrderID),
			zap.String("payment_intent_id", p.PaymentIntentID),
			zap.String("reason", p.Reason))
	case orders.EventOrderRejected:
		p, err := kafkax.UnwrapPayload[orders.OrderRejectedPayload](env.Payload)
		if err != nil {
			return err
		}
		if p.Refunded {
			s.Log.Info("order rejected and refunded",
				zap.Int64("order_id", p.OrderID),
				zap.String("payment_intent_id", p.PaymentIntentID))
		} else {
			s.Log.Warn("order rejected without refund",
				zap.Int64("order_id", p.OrderID),
				zap.String("payment_intent_id", p.PaymentIntentID))
		}
	}
	return nil
}
