package domain

import "time"

type Product struct {
	ID          string         `json:"id"`
	Slug        string         `json:"slug"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	PriceCents  int64          `json:"priceCents"`
	Currency    string         `json:"currency"`
	Active      bool           `json:"active"`
	Quantity    int            `json:"quantity"`
	Categories  []Category     `json:"categories,omitempty"`
	Images      []ProductImage `json:"images,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
}

type ProductImage struct {
	ID        string `json:"id"`
	ProductID string `json:"-"`
	URL       string `json:"url"`
	SortOrder int    `json:"sortOrder"`
}

// ProductSnapshot is the pricing view of a product captured right before a
// checkout transaction opens. Quantity is informational only; the reservation
// re-checks stock atomically at decrement time.
type ProductSnapshot struct {
	ProductID  string
	Title      string
	PriceCents int64
	Currency   string
	Active     bool
	Quantity   int
}
