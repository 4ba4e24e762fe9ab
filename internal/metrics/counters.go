package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/ariefcatur/go-storefront-orders.git/internal/redisx"
	"github.com/redis/go-redis/v9"
)

const (
	OrdersConfirmed = "orders_confirmed"
	OrdersRejected  = "orders_rejected"
	GatewayErrors   = "gateway_errors"
	OversellClamps  = "oversell_clamps"
	WebhookReplays  = "webhook_replays"
)

// Counters: INCR fire-and-forget. Error diabaikan dan timeout pendek
// sendiri, jadi tidak pernah menahan operasi utama.
type Counters struct {
	Redis *redis.Client
}

func (c *Counters) Inc(ctx context.Context, name string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 500*time.Millisecond)
	defer cancel()
	_ = c.Redis.Incr(ctx, fmt.Sprintf(redisx.KeyCounter, name)).Err()
}
