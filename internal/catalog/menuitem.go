package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrMenuItemNotFound is returned when the referenced item does not exist.
var ErrMenuItemNotFound = errors.New("menu item not found")

// MenuItem is the read-only projection the offer and checkout engines need
// from the menu domain. Offers validate against Price at write time and
// recompute display values from it at read time.
type MenuItem struct {
	ID         string  `json:"id"`
	BusinessID string  `json:"businessId"`
	Name       string  `json:"name"`
	Category   string  `json:"category"`
	Price      float64 `json:"totalPrice"`
}

// Resolver fetches the current state of a menu item. Implementations must
// return a live read, not a cached price: offer validation depends on it.
type Resolver interface {
	GetMenuItem(ctx context.Context, itemID string) (MenuItem, error)
}

// PGStore resolves menu items from Postgres.
type PGStore struct {
	Pool *pgxpool.Pool
}

// GetMenuItem returns the item or ErrMenuItemNotFound.
func (s *PGStore) GetMenuItem(ctx context.Context, itemID string) (MenuItem, error) {
	uid, err := uuid.Parse(itemID)
	if err != nil {
		return MenuItem{}, ErrMenuItemNotFound
	}
	var (
		out MenuItem
		id  uuid.UUID
		bid uuid.UUID
	)
	row := s.Pool.QueryRow(ctx,
		`SELECT id, business_id, name, category, total_price
		 FROM menu_items WHERE id = $1`, uid)
	if err := row.Scan(&id, &bid, &out.Name, &out.Category, &out.Price); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return MenuItem{}, ErrMenuItemNotFound
		}
		return MenuItem{}, err
	}
	out.ID = id.String()
	out.BusinessID = bid.String()
	return out, nil
}
