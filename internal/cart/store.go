package cart

import (
	"context"
	"fmt"
	"strconv"

	"github.com/ariefcatur/go-storefront-orders.git/internal/redisx"
	"github.com/redis/go-redis/v9"
)

// Cart store eksternal: hash redis per buyer. Bukan sumber kebenaran harga
// saat settlement (itu line items provider); dipakai cuma untuk clearing
// best-effort setelah order terbentuk.
type Item struct {
	ProductID string `json:"product_id"`
	Qty       int    `json:"qty"`
}

type Cart struct {
	ID     string `json:"id"` // key redis, sekaligus target Clear
	UserID string `json:"user_id"`
	Items  []Item `json:"items"`
}

type Store struct {
	Redis *redis.Client
}

func (s *Store) ByUser(ctx context.Context, userID string) (*Cart, error) {
	key := fmt.Sprintf(redisx.KeyCart, userID)
	vals, err := s.Redis.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, err
	}
	c := &Cart{ID: key, UserID: userID}
	for pid, q := range vals {
		qty, err := strconv.Atoi(q)
		if err != nil || qty <= 0 {
			continue // entry korup, skip saja
		}
		c.Items = append(c.Items, Item{ProductID: pid, Qty: qty})
	}
	return c, nil
}

// Clear menghapus isi cart, bukan mengarsipkan.
func (s *Store) Clear(ctx context.Context, cartID string) error {
	return s.Redis.Del(ctx, cartID).Err()
}
