package orders

import (
	"context"
	"errors"

	"github.com/ariefcatur/go-storefront-orders.git/internal/inventory"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Tx adalah unit-of-work materialisasi order: insert order + detail
// dan mutasi stok commit bareng atau rollback bareng.
type Tx interface {
	InsertOrder(ctx context.Context, o *Order) error
	InsertDetail(ctx context.Context, d *OrderDetail) error
	ProductByPriceRef(ctx context.Context, priceRef string) (*Product, error)
	DecrementIfAvailable(ctx context.Context, productID string, qty int) (bool, error)
	ClampToZero(ctx context.Context, productID string) (bool, error)
}

type Store struct {
	DB     *pgxpool.Pool
	Ledger inventory.Ledger
}

const productCols = `id, price_ref, name, stock, price_cents, status, created_at, updated_at`

func scanProduct(row pgx.Row) (*Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.PriceRef, &p.Name, &p.Stock, &p.PriceCents, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

const orderCols = `id, session_id, user_id, amount_cents, status, address, country, created_at`

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.SessionID, &o.UserID, &o.AmountCents, &o.Status, &o.Address, &o.Country, &o.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (s *Store) ProductByPriceRef(ctx context.Context, priceRef string) (*Product, error) {
	p, err := scanProduct(s.DB.QueryRow(ctx, `SELECT `+productCols+` FROM products WHERE price_ref=$1`, priceRef))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, NotFoundf("product not found for price %s", priceRef)
	}
	if err != nil {
		return nil, Internalf(err, "query product")
	}
	return p, nil
}

func (s *Store) Order(ctx context.Context, id int64) (*Order, error) {
	o, err := scanOrder(s.DB.QueryRow(ctx, `SELECT `+orderCols+` FROM orders WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, NotFoundf("order %d not found", id)
	}
	if err != nil {
		return nil, Internalf(err, "query order")
	}
	return o, nil
}

func (s *Store) OrderBySession(ctx context.Context, sessionID string) (*Order, error) {
	o, err := scanOrder(s.DB.QueryRow(ctx, `SELECT `+orderCols+` FROM orders WHERE session_id=$1`, sessionID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, NotFoundf("no order for session %s", sessionID)
	}
	if err != nil {
		return nil, Internalf(err, "query order by session")
	}
	return o, nil
}

func (s *Store) DetailsByOrder(ctx context.Context, orderID int64) ([]OrderDetail, error) {
	rows, err := s.DB.Query(ctx, `
		SELECT id, order_id, product_id, total_quantity, total_price_cents
		FROM order_details WHERE order_id=$1 ORDER BY id`, orderID)
	if err != nil {
		return nil, Internalf(err, "query order details")
	}
	defer rows.Close()

	var out []OrderDetail
	for rows.Next() {
		var d OrderDetail
		if err := rows.Scan(&d.ID, &d.OrderID, &d.ProductID, &d.TotalQuantity, &d.TotalPriceCents); err != nil {
			return nil, Internalf(err, "scan order detail")
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, Internalf(err, "read order details")
	}
	return out, nil
}

// UpdateStatus tidak memvalidasi transisi; itu urusan lifecycle service.
func (s *Store) UpdateStatus(ctx context.Context, id int64, status Status) (*Order, error) {
	o, err := scanOrder(s.DB.QueryRow(ctx, `
		UPDATE orders SET status=$2 WHERE id=$1
		RETURNING `+orderCols, id, status))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, NotFoundf("order %d not found", id)
	}
	if err != nil {
		return nil, Internalf(err, "update order status")
	}
	return o, nil
}

// WithTx menjalankan fn dalam satu transaksi database.
// Error dari fn -> rollback, batas atomicity jadi kelihatan di signature.
func (s *Store) WithTx(ctx context.Context, fn func(Tx) error) error {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(&storeTx{tx: tx, ledger: s.Ledger}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

type storeTx struct {
	tx     pgx.Tx
	ledger inventory.Ledger
}

func (t *storeTx) InsertOrder(ctx context.Context, o *Order) error {
	err := t.tx.QueryRow(ctx, `
		INSERT INTO orders(session_id, user_id, amount_cents, status, address, country)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING id, created_at`,
		o.SessionID, o.UserID, o.AmountCents, o.Status, o.Address, o.Country,
	).Scan(&o.ID, &o.CreatedAt)
	if err != nil {
		// 23505 = unique violation; dua delivery lolos existence check barengan.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateSession
		}
		return err
	}
	return nil
}

func (t *storeTx) InsertDetail(ctx context.Context, d *OrderDetail) error {
	return t.tx.QueryRow(ctx, `
		INSERT INTO order_details(order_id, product_id, total_quantity, total_price_cents)
		VALUES ($1,$2,$3,$4)
		RETURNING id`,
		d.OrderID, d.ProductID, d.TotalQuantity, d.TotalPriceCents,
	).Scan(&d.ID)
}

func (t *storeTx) ProductByPriceRef(ctx context.Context, priceRef string) (*Product, error) {
	p, err := scanProduct(t.tx.QueryRow(ctx, `SELECT `+productCols+` FROM products WHERE price_ref=$1`, priceRef))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, NotFoundf("product not found for price %s", priceRef)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (t *storeTx) DecrementIfAvailable(ctx context.Context, productID string, qty int) (bool, error) {
	return t.ledger.DecrementIfAvailable(ctx, t.tx, productID, qty)
}

func (t *storeTx) ClampToZero(ctx context.Context, productID string) (bool, error) {
	return t.ledger.ClampToZero(ctx, t.tx, productID)
}
