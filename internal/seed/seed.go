package seed

import (
	"context"
	"fmt"
	"log"

	productrepo "storefront/internal/repository/product"
	"storefront/internal/service/catalog"

	"github.com/jackc/pgx/v5/pgxpool"
)

type productSeed struct {
	Title       string
	Description string
	PriceCents  int64
	Currency    string
	Categories  []string
	Quantity    int
	Images      []string
}

// Apply inserts demo catalog data for manual testing. Idempotent via upserts.
func Apply(ctx context.Context, pool *pgxpool.Pool, logger *log.Logger) error {
	repo := productrepo.NewPostgres(pool, logger)

	products := []productSeed{
		{
			Title:       "Classic Cotton Tee",
			Description: "Soft, breathable tee",
			PriceCents:  79900,
			Currency:    "INR",
			Categories:  []string{"T-Shirts"},
			Quantity:    25,
			Images:      []string{"https://picsum.photos/seed/tee/800/800"},
		},
		{
			Title:       "Running Shoes",
			Description: "Lightweight daily runners",
			PriceCents:  349900,
			Currency:    "INR",
			Categories:  []string{"Shoes"},
			Quantity:    12,
			Images:      []string{"https://picsum.photos/seed/shoes/800/800"},
		},
		{
			Title:       "Leather Belt",
			Description: "Full-grain leather",
			PriceCents:  149900,
			Currency:    "INR",
			Categories:  []string{"Accessories"},
			Quantity:    5,
			Images:      []string{"https://picsum.photos/seed/belt/800/800"},
		},
	}

	for _, p := range products {
		refs := make([]productrepo.CategoryRef, 0, len(p.Categories))
		for _, name := range p.Categories {
			refs = append(refs, productrepo.CategoryRef{Name: name, Slug: catalog.Slugify(name)})
		}
		if _, err := repo.Upsert(ctx, productrepo.CreateInput{
			Title:       p.Title,
			Slug:        catalog.Slugify(p.Title),
			Description: p.Description,
			PriceCents:  p.PriceCents,
			Currency:    p.Currency,
			Categories:  refs,
			ImageURLs:   p.Images,
			Quantity:    p.Quantity,
		}); err != nil {
			return fmt.Errorf("upsert product %s: %w", p.Title, err)
		}
	}

	return nil
}
