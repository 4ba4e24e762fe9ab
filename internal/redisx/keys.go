package redisx

import "time"

const (
	// Cart buyer: cart:{user_id} -> hash product_id -> qty
	KeyCart = "cart:%s"

	// Counter operasional: metrics:{name}
	KeyCounter = "metrics:%s"

	// Dedup event processing di reconciler: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var TTLDedup = 48 * time.Hour
