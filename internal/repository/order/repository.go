package order

import (
	"context"

	"storefront/internal/domain"
)

// PlaceLine is one reserved line of a new order. Title and price are the
// frozen snapshot captured during pricing, never re-read from the catalog.
type PlaceLine struct {
	ProductID          string
	Quantity           int
	TitleSnapshot      string
	PriceCentsSnapshot int64
}

type PlaceInput struct {
	Lines       []PlaceLine
	PaymentMode string
	Currency    string
	Shipping    *domain.Address
	Billing     *domain.Address
}

type Repository interface {
	// Place atomically reserves stock for every line and persists the order,
	// its line items and its addresses. Either everything commits or nothing
	// does. Insufficient stock surfaces as *domain.StockConflictError; a
	// transient store conflict wraps domain.ErrTxConflict.
	Place(ctx context.Context, in PlaceInput) (*domain.Order, error)
	List(ctx context.Context, limit int) ([]domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
}
