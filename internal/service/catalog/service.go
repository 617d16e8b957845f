package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/cache"
	"storefront/internal/domain"
	productrepo "storefront/internal/repository/product"
)

const productCacheTTL = 60 * time.Second

// Service serves catalog reads and admin catalog writes. The checkout path
// does not go through it; pricing snapshots are read by the checkout service
// directly so stock is never trusted from a cache.
type Service struct {
	repo  productrepo.Repository
	cache *cache.Cache
}

func New(repo productrepo.Repository, c *cache.Cache) *Service {
	return &Service{repo: repo, cache: c}
}

type ListResult struct {
	Page     int              `json:"page"`
	PageSize int              `json:"pageSize"`
	Total    int              `json:"total"`
	Items    []domain.Product `json:"items"`
}

func (s *Service) List(ctx context.Context, f productrepo.ListFilter) (*ListResult, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = 20
	}
	if f.PageSize > 100 {
		f.PageSize = 100
	}
	items, total, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.Product{}
	}
	return &ListResult{Page: f.Page, PageSize: f.PageSize, Total: total, Items: items}, nil
}

func (s *Service) GetBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	key := productCacheKey(slug)
	var cached domain.Product
	if s.cache.GetJSON(ctx, key, &cached) {
		return &cached, nil
	}
	p, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	s.cache.SetJSON(ctx, key, p, productCacheTTL)
	return p, nil
}

func (s *Service) Categories(ctx context.Context) ([]domain.Category, error) {
	cats, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	if cats == nil {
		cats = []domain.Category{}
	}
	return cats, nil
}

type CreateProductInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	PriceCents  int64    `json:"priceCents"`
	Currency    string   `json:"currency"`
	Categories  []string `json:"categories"`
	Images      []string `json:"images"`
	Quantity    int      `json:"quantity"`
}

func (s *Service) CreateProduct(ctx context.Context, in CreateProductInput) (*domain.Product, error) {
	if in.Title == "" || in.Description == "" || in.PriceCents < 0 {
		return nil, errors.New("invalid input")
	}
	currency := in.Currency
	if currency == "" {
		currency = "INR"
	}
	quantity := in.Quantity
	if quantity < 0 {
		quantity = 0
	}

	refs := make([]productrepo.CategoryRef, 0, len(in.Categories))
	for _, name := range in.Categories {
		refs = append(refs, productrepo.CategoryRef{Name: name, Slug: Slugify(name)})
	}

	return s.repo.Create(ctx, productrepo.CreateInput{
		Title:       in.Title,
		Slug:        Slugify(in.Title),
		Description: in.Description,
		PriceCents:  in.PriceCents,
		Currency:    currency,
		Categories:  refs,
		ImageURLs:   in.Images,
		Quantity:    quantity,
	})
}

type PatchProductInput struct {
	Quantity *int  `json:"quantity"`
	Active   *bool `json:"active"`
}

func (s *Service) PatchProduct(ctx context.Context, id string, in PatchProductInput) (*domain.Product, error) {
	if in.Quantity == nil && in.Active == nil {
		return nil, errors.New("no fields to update")
	}
	if in.Quantity != nil && *in.Quantity < 0 {
		return nil, errors.New("quantity must not be negative")
	}
	p, err := s.repo.Patch(ctx, id, productrepo.PatchInput{Quantity: in.Quantity, Active: in.Active})
	if err != nil {
		return nil, err
	}
	s.cache.Delete(ctx, productCacheKey(p.Slug))
	return p, nil
}

func productCacheKey(slug string) string {
	return fmt.Sprintf("product:slug:%s", slug)
}
