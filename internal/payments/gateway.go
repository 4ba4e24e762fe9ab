package payments

import "context"

// Gateway adalah provider pembayaran hosted, dipakai lewat empat operasi
// ini saja. Protokol selengkapnya bukan urusan kita.
type Gateway interface {
	CreateCheckoutSession(ctx context.Context, p CreateSessionParams) (*CheckoutSession, error)
	GetCheckoutSession(ctx context.Context, sessionID string) (*CheckoutSession, error)
	ListLineItems(ctx context.Context, sessionID string) ([]LineItem, error)
	CreateRefund(ctx context.Context, paymentIntentID string) (*Refund, error)
}

type SessionItem struct {
	PriceRef string
	Quantity int
}

type CreateSessionParams struct {
	Items         []SessionItem
	CustomerEmail string
	SuccessURL    string
	CancelURL     string
	// Metadata ikut balik di webhook; satu-satunya cara bawa konteks
	// aplikasi (user, alamat) sampai ke settlement.
	Metadata map[string]string
}

type CheckoutSession struct {
	ID              string            `json:"id"`
	URL             string            `json:"url"`
	PaymentIntentID string            `json:"payment_intent"`
	PaymentStatus   string            `json:"payment_status"`
	AmountTotal     int64             `json:"amount_total"`
	Metadata        map[string]string `json:"metadata"`
}

type LineItem struct {
	PriceRef       string `json:"price_ref"`
	Quantity       int    `json:"quantity"`
	AmountSubtotal int64  `json:"amount_subtotal"` // qty * harga settled
}

type Refund struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// Metadata keys yang kita embed saat buka session.
const (
	MetaUserID  = "user_id"
	MetaAddress = "address"
	MetaCountry = "country"
)
