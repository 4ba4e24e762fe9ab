package inventory

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// Ledger adalah satu-satunya penulis stok selain edit admin.
// Semua mutasi single statement atomik, tidak ada read-modify-write
// di application layer, jadi decrement konkuren antar order aman
// tanpa lock aplikasi.
type Ledger struct{}

// DecrementIfAvailable: conditional decrement dengan floor nol.
// Return false kalau stok tidak cukup (tidak ada row kena).
func (Ledger) DecrementIfAvailable(ctx context.Context, tx pgx.Tx, productID string, qty int) (bool, error) {
	ct, err := tx.Exec(ctx, `
		UPDATE products SET stock = stock - $2, updated_at = now()
		WHERE id = $1 AND stock >= $2`, productID, qty)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() == 1, nil
}

// ClampToZero: set stok ke nol kalau masih positif. Idempotent.
// Ini akomodasi oversell saat settlement, bukan mekanisme correctness.
func (Ledger) ClampToZero(ctx context.Context, tx pgx.Tx, productID string) (bool, error) {
	ct, err := tx.Exec(ctx, `
		UPDATE products SET stock = 0, updated_at = now()
		WHERE id = $1 AND stock > 0`, productID)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() == 1, nil
}
