package checkout

import (
	"context"
	"time"

	"github.com/ariefcatur/go-storefront-orders.git/internal/cart"
	"github.com/ariefcatur/go-storefront-orders.git/internal/orders"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
)

// Kolaborator di-inject sebagai interface kecil; *orders.Store,
// *payments.Client, *cart.Store, *metrics.Counters, *kafkax.Producer
// semuanya memenuhi. Test pakai fake in-memory.

type Store interface {
	ProductByPriceRef(ctx context.Context, priceRef string) (*orders.Product, error)
	Order(ctx context.Context, id int64) (*orders.Order, error)
	OrderBySession(ctx context.Context, sessionID string) (*orders.Order, error)
	DetailsByOrder(ctx context.Context, orderID int64) ([]orders.OrderDetail, error)
	UpdateStatus(ctx context.Context, id int64, status orders.Status) (*orders.Order, error)
	WithTx(ctx context.Context, fn func(orders.Tx) error) error
}

type CartStore interface {
	ByUser(ctx context.Context, userID string) (*cart.Cart, error)
	Clear(ctx context.Context, cartID string) error
}

type Counters interface {
	Inc(ctx context.Context, name string)
}

type Publisher interface {
	Publish(topic string, key, value []byte, headers ...kafkago.Header)
}

func newEnvelope(eventType, producer, sessionID string, payload []byte) orders.Envelope {
	return orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      producer,
		CorrelationID: sessionID,
		Payload:       payload,
	}
}

func eventHeaders(eventType string) []kafkago.Header {
	return []kafkago.Header{
		{Key: "x-event-type", Value: []byte(eventType)},
		{Key: "x-event-version", Value: []byte("1")},
	}
}
