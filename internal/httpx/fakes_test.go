package httpx

import (
	"context"
	"sync"
	"time"

	"github.com/ariefcatur/go-storefront-orders.git/internal/cart"
	"github.com/ariefcatur/go-storefront-orders.git/internal/orders"
	"github.com/ariefcatur/go-storefront-orders.git/internal/payments"
)

// memStore: Store + Tx sekaligus, tanpa emulasi rollback; skenario
// transaksi gagal diuji di package checkout, di sini cukup happy/dup path.
type memStore struct {
	mu        sync.Mutex
	products  map[string]*orders.Product // key: price_ref
	orders    map[int64]*orders.Order
	bySession map[string]int64
	details   map[int64][]orders.OrderDetail
	nextID    int64
}

func newMemStore(products ...*orders.Product) *memStore {
	s := &memStore{
		products:  map[string]*orders.Product{},
		orders:    map[int64]*orders.Order{},
		bySession: map[string]int64{},
		details:   map[int64][]orders.OrderDetail{},
	}
	for _, p := range products {
		if p.Status == "" {
			p.Status = orders.ProductActive
		}
		s.products[p.PriceRef] = p
	}
	return s
}

func (s *memStore) ProductByPriceRef(ctx context.Context, priceRef string) (*orders.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[priceRef]
	if !ok {
		return nil, orders.NotFoundf("product not found for price %s", priceRef)
	}
	cp := *p
	return &cp, nil
}

func (s *memStore) Order(ctx context.Context, id int64) (*orders.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, orders.NotFoundf("order %d not found", id)
	}
	cp := *o
	return &cp, nil
}

func (s *memStore) OrderBySession(ctx context.Context, sessionID string) (*orders.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.bySession[sessionID]
	if !ok {
		return nil, orders.NotFoundf("no order for session %s", sessionID)
	}
	cp := *s.orders[id]
	return &cp, nil
}

func (s *memStore) DetailsByOrder(ctx context.Context, orderID int64) ([]orders.OrderDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]orders.OrderDetail(nil), s.details[orderID]...), nil
}

func (s *memStore) UpdateStatus(ctx context.Context, id int64, status orders.Status) (*orders.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, orders.NotFoundf("order %d not found", id)
	}
	o.Status = status
	cp := *o
	return &cp, nil
}

func (s *memStore) WithTx(ctx context.Context, fn func(orders.Tx) error) error {
	return fn(s)
}

func (s *memStore) InsertOrder(ctx context.Context, o *orders.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bySession[o.SessionID]; ok {
		return orders.ErrDuplicateSession
	}
	s.nextID++
	o.ID = s.nextID
	o.CreatedAt = time.Now()
	cp := *o
	s.orders[o.ID] = &cp
	s.bySession[o.SessionID] = o.ID
	return nil
}

func (s *memStore) InsertDetail(ctx context.Context, d *orders.OrderDetail) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d.ID = int64(len(s.details[d.OrderID]) + 1)
	s.details[d.OrderID] = append(s.details[d.OrderID], *d)
	return nil
}

func (s *memStore) DecrementIfAvailable(ctx context.Context, productID string, qty int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.products {
		if p.ID == productID && p.Stock >= qty {
			p.Stock -= qty
			return true, nil
		}
	}
	return false, nil
}

func (s *memStore) ClampToZero(ctx context.Context, productID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.products {
		if p.ID == productID && p.Stock > 0 {
			p.Stock = 0
			return true, nil
		}
	}
	return false, nil
}

func (s *memStore) seedOrder(o *orders.Order) *orders.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	o.ID = s.nextID
	o.CreatedAt = time.Now()
	cp := *o
	s.orders[o.ID] = &cp
	if o.SessionID != "" {
		s.bySession[o.SessionID] = o.ID
	}
	return o
}

func (s *memStore) orderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

type memGateway struct {
	sessions  map[string]*payments.CheckoutSession
	lineItems map[string][]payments.LineItem
	refunds   []string
	listErr   error
}

func newMemGateway() *memGateway {
	return &memGateway{
		sessions:  map[string]*payments.CheckoutSession{},
		lineItems: map[string][]payments.LineItem{},
	}
}

func (g *memGateway) CreateCheckoutSession(ctx context.Context, p payments.CreateSessionParams) (*payments.CheckoutSession, error) {
	ses := &payments.CheckoutSession{ID: "cs_test_1", URL: "https://pay.example.com/cs_test_1", Metadata: p.Metadata}
	g.sessions[ses.ID] = ses
	return ses, nil
}

func (g *memGateway) GetCheckoutSession(ctx context.Context, sessionID string) (*payments.CheckoutSession, error) {
	ses, ok := g.sessions[sessionID]
	if !ok {
		return nil, orders.NotFoundf("session %s not found", sessionID)
	}
	return ses, nil
}

func (g *memGateway) ListLineItems(ctx context.Context, sessionID string) ([]payments.LineItem, error) {
	if g.listErr != nil {
		return nil, g.listErr
	}
	return g.lineItems[sessionID], nil
}

func (g *memGateway) CreateRefund(ctx context.Context, paymentIntentID string) (*payments.Refund, error) {
	g.refunds = append(g.refunds, paymentIntentID)
	return &payments.Refund{ID: "re_1", Status: "succeeded"}, nil
}

type memCarts struct{ cleared []string }

func (c *memCarts) ByUser(ctx context.Context, userID string) (*cart.Cart, error) {
	return &cart.Cart{ID: "cart:" + userID, UserID: userID}, nil
}

func (c *memCarts) Clear(ctx context.Context, cartID string) error {
	c.cleared = append(c.cleared, cartID)
	return nil
}

type memCounters struct{}

func (memCounters) Inc(ctx context.Context, name string) {}
