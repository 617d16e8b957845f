package product

import (
	"context"

	"storefront/internal/domain"
)

// Sort orders accepted by List.
const (
	SortNewest    = "newest"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
)

type ListFilter struct {
	Query    string
	Category string
	InStock  *bool
	Sort     string
	Page     int
	PageSize int
}

type CreateInput struct {
	Title       string
	Slug        string
	Description string
	PriceCents  int64
	Currency    string
	Categories  []CategoryRef
	ImageURLs   []string
	Quantity    int
}

// CategoryRef names a category to attach; it is upserted by slug.
type CategoryRef struct {
	Name string
	Slug string
}

type PatchInput struct {
	Quantity *int
	Active   *bool
}

type Repository interface {
	List(ctx context.Context, f ListFilter) ([]domain.Product, int, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	// GetSnapshots prices a set of products for checkout. Unknown ids are
	// simply absent from the result.
	GetSnapshots(ctx context.Context, ids []string) (map[string]domain.ProductSnapshot, error)
	Create(ctx context.Context, in CreateInput) (*domain.Product, error)
	Patch(ctx context.Context, id string, in PatchInput) (*domain.Product, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
	Upsert(ctx context.Context, in CreateInput) (*domain.Product, error)
}
