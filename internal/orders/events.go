package orders

import (
	"encoding/json"
	"time"
)

const (
	EventOrderCreated   = "OrderCreated"
	EventOrderConfirmed = "OrderConfirmed"
	EventOrderRejected  = "OrderRejected"
	EventRefundFailed   = "RefundFailed"
)

type Envelope struct {
	EventID       string          `json:"event_id"` // uuid
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"` // 1
	OccurredAt    time.Time       `json:"occurred_at"`   // RFC3339
	Producer      string          `json:"producer"`      // e.g., "storefront-api"
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // session_id
	Payload       json.RawMessage `json:"payload"`
}

// ---- Payload tipe per event ----

type ItemQty struct {
	ProductID string `json:"product_id"`
	Qty       int    `json:"qty"`
}

type OrderCreatedPayload struct {
	OrderID     int64     `json:"order_id"`
	SessionID   string    `json:"session_id"`
	UserID      string    `json:"user_id"`
	AmountCents int64     `json:"amount_cents"`
	Items       []ItemQty `json:"items"`
}

type OrderConfirmedPayload struct {
	OrderID int64 `json:"order_id"`
}

type OrderRejectedPayload struct {
	OrderID         int64  `json:"order_id"`
	PaymentIntentID string `json:"payment_intent_id,omitempty"`
	Refunded        bool   `json:"refunded"`
}

type RefundFailedPayload struct {
	OrderID         int64  `json:"order_id"`
	PaymentIntentID string `json:"payment_intent_id,omitempty"`
	Reason          string `json:"reason"`
}
