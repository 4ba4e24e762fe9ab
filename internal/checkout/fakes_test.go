package checkout

import (
	"context"
	"sync"
	"time"

	"github.com/ariefcatur/go-storefront-orders.git/internal/cart"
	"github.com/ariefcatur/go-storefront-orders.git/internal/orders"
	"github.com/ariefcatur/go-storefront-orders.git/internal/payments"
	kafkago "github.com/segmentio/kafka-go"
)

// fakeStore: in-memory Store + Tx. Unique constraint session_id dan
// rollback transaksi diemulasikan supaya skenario duplicate-webhook dan
// partial-failure bisa diuji tanpa database.
type fakeStore struct {
	mu        sync.Mutex
	products  map[string]*orders.Product // key: price_ref
	orders    map[int64]*orders.Order
	bySession map[string]int64
	details   map[int64][]orders.OrderDetail
	nextID    int64

	commitErr  error                  // dipaksa gagal saat commit
	insertHook func(*fakeStore) error // dipanggil sebelum insert order
}

func newFakeStore(products ...*orders.Product) *fakeStore {
	s := &fakeStore{
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

func (s *fakeStore) productByID(id string) *orders.Product {
	for _, p := range s.products {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (s *fakeStore) ProductByPriceRef(ctx context.Context, priceRef string) (*orders.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[priceRef]
	if !ok {
		return nil, orders.NotFoundf("product not found for price %s", priceRef)
	}
	cp := *p
	return &cp, nil
}

func (s *fakeStore) Order(ctx context.Context, id int64) (*orders.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, orders.NotFoundf("order %d not found", id)
	}
	cp := *o
	return &cp, nil
}

func (s *fakeStore) OrderBySession(ctx context.Context, sessionID string) (*orders.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.bySession[sessionID]
	if !ok {
		return nil, orders.NotFoundf("no order for session %s", sessionID)
	}
	cp := *s.orders[id]
	return &cp, nil
}

func (s *fakeStore) DetailsByOrder(ctx context.Context, orderID int64) ([]orders.OrderDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]orders.OrderDetail(nil), s.details[orderID]...), nil
}

func (s *fakeStore) UpdateStatus(ctx context.Context, id int64, status orders.Status) (*orders.Order, error) {
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

func (s *fakeStore) WithTx(ctx context.Context, fn func(orders.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// snapshot buat rollback
	stocks := map[string]int{}
	for ref, p := range s.products {
		stocks[ref] = p.Stock
	}

	tx := &fakeTx{st: s}
	err := fn(tx)
	if err == nil {
		err = s.commitErr
	}
	if err != nil {
		for ref, st := range stocks {
			s.products[ref].Stock = st
		}
		// rollback hanya row yang masuk lewat tx ini
		for _, id := range tx.inserted {
			if o, ok := s.orders[id]; ok {
				delete(s.bySession, o.SessionID)
			}
			delete(s.orders, id)
			delete(s.details, id)
		}
		return err
	}
	return nil
}

type fakeTx struct {
	st       *fakeStore
	inserted []int64
}

func (t *fakeTx) InsertOrder(ctx context.Context, o *orders.Order) error {
	if t.st.insertHook != nil {
		hook := t.st.insertHook
		t.st.insertHook = nil
		if err := hook(t.st); err != nil {
			return err
		}
	}
	if _, ok := t.st.bySession[o.SessionID]; ok {
		return orders.ErrDuplicateSession
	}
	t.st.nextID++
	o.ID = t.st.nextID
	o.CreatedAt = time.Now()
	cp := *o
	t.st.orders[o.ID] = &cp
	t.st.bySession[o.SessionID] = o.ID
	t.inserted = append(t.inserted, o.ID)
	return nil
}

func (t *fakeTx) InsertDetail(ctx context.Context, d *orders.OrderDetail) error {
	d.ID = int64(len(t.st.details[d.OrderID]) + 1)
	t.st.details[d.OrderID] = append(t.st.details[d.OrderID], *d)
	return nil
}

func (t *fakeTx) ProductByPriceRef(ctx context.Context, priceRef string) (*orders.Product, error) {
	p, ok := t.st.products[priceRef]
	if !ok {
		return nil, orders.NotFoundf("product not found for price %s", priceRef)
	}
	cp := *p
	return &cp, nil
}

func (t *fakeTx) DecrementIfAvailable(ctx context.Context, productID string, qty int) (bool, error) {
	p := t.st.productByID(productID)
	if p == nil || p.Stock < qty {
		return false, nil
	}
	p.Stock -= qty
	return true, nil
}

func (t *fakeTx) ClampToZero(ctx context.Context, productID string) (bool, error) {
	p := t.st.productByID(productID)
	if p == nil || p.Stock <= 0 {
		return false, nil
	}
	p.Stock = 0
	return true, nil
}

// seedOrder naruh order langsung di store, bypass materializer.
func (s *fakeStore) seedOrder(o *orders.Order) *orders.Order {
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

type fakeGateway struct {
	mu        sync.Mutex
	sessions  map[string]*payments.CheckoutSession
	lineItems map[string][]payments.LineItem

	created []payments.CreateSessionParams
	refunds []string

	createErr error
	getErr    error
	listErr   error
	refundErr error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		sessions:  map[string]*payments.CheckoutSession{},
		lineItems: map[string][]payments.LineItem{},
	}
}

func (g *fakeGateway) CreateCheckoutSession(ctx context.Context, p payments.CreateSessionParams) (*payments.CheckoutSession, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.createErr != nil {
		return nil, g.createErr
	}
	g.created = append(g.created, p)
	ses := &payments.CheckoutSession{
		ID:       "cs_test_1",
		URL:      "https://pay.example.com/cs_test_1",
		Metadata: p.Metadata,
	}
	g.sessions[ses.ID] = ses
	return ses, nil
}

func (g *fakeGateway) GetCheckoutSession(ctx context.Context, sessionID string) (*payments.CheckoutSession, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.getErr != nil {
		return nil, g.getErr
	}
	ses, ok := g.sessions[sessionID]
	if !ok {
		return nil, orders.NotFoundf("session %s not found", sessionID)
	}
	return ses, nil
}

func (g *fakeGateway) ListLineItems(ctx context.Context, sessionID string) ([]payments.LineItem, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.listErr != nil {
		return nil, g.listErr
	}
	return g.lineItems[sessionID], nil
}

func (g *fakeGateway) CreateRefund(ctx context.Context, paymentIntentID string) (*payments.Refund, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.refundErr != nil {
		return nil, g.refundErr
	}
	g.refunds = append(g.refunds, paymentIntentID)
	return &payments.Refund{ID: "re_1", Status: "succeeded"}, nil
}

type fakeCarts struct {
	mu        sync.Mutex
	carts     map[string]*cart.Cart
	cleared   []string
	byUserErr error
	clearErr  error
}

func newFakeCarts() *fakeCarts {
	return &fakeCarts{carts: map[string]*cart.Cart{}}
}

func (c *fakeCarts) ByUser(ctx context.Context, userID string) (*cart.Cart, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.byUserErr != nil {
		return nil, c.byUserErr
	}
	if got, ok := c.carts[userID]; ok {
		return got, nil
	}
	return &cart.Cart{ID: "cart:" + userID, UserID: userID}, nil
}

func (c *fakeCarts) Clear(ctx context.Context, cartID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.clearErr != nil {
		return c.clearErr
	}
	c.cleared = append(c.cleared, cartID)
	return nil
}

type fakeCounters struct {
	mu     sync.Mutex
	counts map[string]int
}

func newFakeCounters() *fakeCounters { return &fakeCounters{counts: map[string]int{}} }

func (c *fakeCounters) Inc(ctx context.Context, name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[name]++
}

func (c *fakeCounters) get(name string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[name]
}

type published struct {
	topic string
	key   []byte
	value []byte
}

type fakePublisher struct {
	mu     sync.Mutex
	events []published
}

func (p *fakePublisher) Publish(topic string, key, value []byte, headers ...kafkago.Header) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, published{topic: topic, key: key, value: value})
}

func (p *fakePublisher) byTopic(topic string) []published {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []published
	for _, e := range p.events {
		if e.topic == topic {
			out = append(out, e)
		}
	}
	return out
}
