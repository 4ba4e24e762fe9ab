package orders

import "time"

type ProductStatus string

const (
	ProductActive ProductStatus = "ACTIVE"
	ProductHidden ProductStatus = "HIDDEN"
)

type Product struct {
	ID         string        `json:"id"`        // external id, sama dengan katalog provider
	PriceRef   string        `json:"price_ref"` // price id di sisi provider
	Name       string        `json:"name"`
	Stock      int           `json:"stock"` // invariant: >= 0, dijaga oleh ledger
	PriceCents int64         `json:"price_cents"`
	Status     ProductStatus `json:"status"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

type Order struct {
	ID          int64     `json:"id"`
	SessionID   string    `json:"session_id"` // unique; idempotency key untuk webhook
	UserID      string    `json:"user_id"`
	AmountCents int64     `json:"amount_cents"`
	Status      Status    `json:"status"` // lihat status.go
	Address     string    `json:"address"`
	Country     string    `json:"country"`
	CreatedAt   time.Time `json:"created_at"`
}

// OrderDetail adalah snapshot harga settled; immutable setelah dibuat.
type OrderDetail struct {
	ID              int64  `json:"id"`
	OrderID         int64  `json:"order_id"`
	ProductID       string `json:"product_id"`
	TotalQuantity   int    `json:"total_quantity"`
	TotalPriceCents int64  `json:"total_price_cents"`
}
