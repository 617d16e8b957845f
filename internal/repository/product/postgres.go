package product

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"storefront/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

const productColumns = `
p.id::text, p.slug, p.title, COALESCE(p.description, ''), p.price_cents, p.currency, p.active,
COALESCE(i.quantity, 0), p.created_at`

func (r *postgresRepo) List(ctx context.Context, f ListFilter) ([]domain.Product, int, error) {
	conds := []string{"p.active = true"}
	args := []interface{}{}

	if q := strings.TrimSpace(f.Query); q != "" {
		args = append(args, "%"+q+"%")
		conds = append(conds, fmt.Sprintf("(p.title ILIKE $%d OR p.description ILIKE $%d)", len(args), len(args)))
	}
	if f.Category != "" {
		args = append(args, f.Category)
		conds = append(conds, fmt.Sprintf(`EXISTS (
SELECT 1 FROM product_categories pc
JOIN categories c ON c.id = pc.category_id
WHERE pc.product_id = p.id AND c.slug = $%d)`, len(args)))
	}
	if f.InStock != nil {
		if *f.InStock {
			conds = append(conds, "COALESCE(i.quantity, 0) > 0")
		} else {
			conds = append(conds, "COALESCE(i.quantity, 0) = 0")
		}
	}

	where := "WHERE " + strings.Join(conds, " AND ")
	orderBy := "p.created_at DESC"
	switch f.Sort {
	case SortPriceAsc:
		orderBy = "p.price_cents ASC"
	case SortPriceDesc:
		orderBy = "p.price_cents DESC"
	}

	countQuery := `
SELECT COUNT(*)
FROM products p
LEFT JOIN inventory i ON i.product_id = p.id
` + where

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		r.logger.Printf("product repo: count error=%v", err)
		return nil, 0, err
	}

	page := f.Page
	if page < 1 {
		page = 1
	}
	pageSize := f.PageSize
	if pageSize < 1 {
		pageSize = 20
	}
	args = append(args, pageSize, (page-1)*pageSize)

	listQuery := fmt.Sprintf(`
SELECT %s
FROM products p
LEFT JOIN inventory i ON i.product_id = p.id
%s
ORDER BY %s
LIMIT $%d OFFSET $%d
`, productColumns, where, orderBy, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, listQuery, args...)
	if err != nil {
		r.logger.Printf("product repo: list error=%v", err)
		return nil, 0, err
	}
	defer rows.Close()

	var result []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Slug, &p.Title, &p.Description, &p.PriceCents, &p.Currency, &p.Active, &p.Quantity, &p.CreatedAt); err != nil {
			return nil, 0, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		r.logger.Printf("product repo: list rows error=%v", err)
		return nil, 0, err
	}

	if err := r.attachRelations(ctx, result); err != nil {
		return nil, 0, err
	}
	r.logger.Printf("product repo: list page=%d count=%d total=%d", page, len(result), total)
	return result, total, nil
}

func (r *postgresRepo) GetBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	return r.getOne(ctx, "p.slug = $1", slug)
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	return r.getOne(ctx, "p.id::text = $1", id)
}

func (r *postgresRepo) getOne(ctx context.Context, cond string, arg string) (*domain.Product, error) {
	q := fmt.Sprintf(`
SELECT %s
FROM products p
LEFT JOIN inventory i ON i.product_id = p.id
WHERE %s
`, productColumns, cond)

	var p domain.Product
	err := r.pool.QueryRow(ctx, q, arg).Scan(&p.ID, &p.Slug, &p.Title, &p.Description, &p.PriceCents, &p.Currency, &p.Active, &p.Quantity, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("product repo: get %s error=%v", arg, err)
		return nil, err
	}
	products := []domain.Product{p}
	if err := r.attachRelations(ctx, products); err != nil {
		return nil, err
	}
	return &products[0], nil
}

func (r *postgresRepo) GetSnapshots(ctx context.Context, ids []string) (map[string]domain.ProductSnapshot, error) {
	if len(ids) == 0 {
		return map[string]domain.ProductSnapshot{}, nil
	}
	const q = `
SELECT p.id::text, p.title, p.price_cents, p.currency, p.active, COALESCE(i.quantity, 0)
FROM products p
LEFT JOIN inventory i ON i.product_id = p.id
WHERE p.id::text = ANY($1)
`
	rows, err := r.pool.Query(ctx, q, ids)
	if err != nil {
		r.logger.Printf("product repo: snapshots error=%v", err)
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]domain.ProductSnapshot, len(ids))
	for rows.Next() {
		var s domain.ProductSnapshot
		if err := rows.Scan(&s.ProductID, &s.Title, &s.PriceCents, &s.Currency, &s.Active, &s.Quantity); err != nil {
			return nil, err
		}
		out[s.ProductID] = s
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	r.logger.Printf("product repo: snapshots requested=%d found=%d", len(ids), len(out))
	return out, nil
}

func (r *postgresRepo) Create(ctx context.Context, in CreateInput) (*domain.Product, error) {
	return r.write(ctx, in, false)
}

// Upsert inserts or updates a product by slug. Used by the seeder and the
// CSV importer.
func (r *postgresRepo) Upsert(ctx context.Context, in CreateInput) (*domain.Product, error) {
	return r.write(ctx, in, true)
}

func (r *postgresRepo) write(ctx context.Context, in CreateInput, upsert bool) (*domain.Product, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	insert := `
INSERT INTO products (slug, title, description, price_cents, currency)
VALUES ($1, $2, NULLIF($3, ''), $4, $5)
`
	if upsert {
		insert += `
ON CONFLICT (slug) DO UPDATE SET
    title = EXCLUDED.title,
    description = EXCLUDED.description,
    price_cents = EXCLUDED.price_cents,
    currency = EXCLUDED.currency
`
	}
	insert += "RETURNING id::text, created_at"

	var p domain.Product
	if err := tx.QueryRow(ctx, insert, in.Slug, in.Title, in.Description, in.PriceCents, in.Currency).Scan(&p.ID, &p.CreatedAt); err != nil {
		r.logger.Printf("product repo: insert slug=%s error=%v", in.Slug, err)
		return nil, err
	}
	p.Slug = in.Slug
	p.Title = in.Title
	p.Description = in.Description
	p.PriceCents = in.PriceCents
	p.Currency = in.Currency
	p.Active = true
	p.Quantity = in.Quantity

	for _, c := range in.Categories {
		var catID string
		err := tx.QueryRow(ctx, `
INSERT INTO categories (name, slug)
VALUES ($1, $2)
ON CONFLICT (slug) DO UPDATE SET name = EXCLUDED.name
RETURNING id::text
`, c.Name, c.Slug).Scan(&catID)
		if err != nil {
			return nil, err
		}
		if _, err := tx.Exec(ctx, `
INSERT INTO product_categories (product_id, category_id)
VALUES ($1, $2)
ON CONFLICT DO NOTHING
`, p.ID, catID); err != nil {
			return nil, err
		}
		p.Categories = append(p.Categories, domain.Category{ID: catID, Name: c.Name, Slug: c.Slug})
	}

	if upsert && len(in.ImageURLs) > 0 {
		// Re-running the seeder or importer replaces images instead of
		// stacking duplicates.
		if _, err := tx.Exec(ctx, `DELETE FROM product_images WHERE product_id::text = $1`, p.ID); err != nil {
			return nil, err
		}
	}
	for i, url := range in.ImageURLs {
		if _, err := tx.Exec(ctx, `
INSERT INTO product_images (product_id, url, sort_order)
VALUES ($1, $2, $3)
`, p.ID, url, i); err != nil {
			return nil, err
		}
		p.Images = append(p.Images, domain.ProductImage{ProductID: p.ID, URL: url, SortOrder: i})
	}

	if _, err := tx.Exec(ctx, `
INSERT INTO inventory (product_id, quantity)
VALUES ($1, $2)
ON CONFLICT (product_id) DO UPDATE SET quantity = EXCLUDED.quantity
`, p.ID, in.Quantity); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	r.logger.Printf("product repo: wrote slug=%s id=%s", p.Slug, p.ID)
	return &p, nil
}

func (r *postgresRepo) Patch(ctx context.Context, id string, in PatchInput) (*domain.Product, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if in.Active != nil {
		cmd, err := tx.Exec(ctx, `UPDATE products SET active = $1 WHERE id::text = $2`, *in.Active, id)
		if err != nil {
			return nil, err
		}
		if cmd.RowsAffected() == 0 {
			return nil, domain.ErrNotFound
		}
	}
	if in.Quantity != nil {
		if _, err := tx.Exec(ctx, `
INSERT INTO inventory (product_id, quantity)
VALUES ($1::uuid, $2)
ON CONFLICT (product_id) DO UPDATE SET quantity = EXCLUDED.quantity
`, id, *in.Quantity); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	r.logger.Printf("product repo: patched id=%s", id)
	return r.GetByID(ctx, id)
}

func (r *postgresRepo) ListCategories(ctx context.Context) ([]domain.Category, error) {
	const q = `
SELECT id::text, name, slug, created_at
FROM categories
ORDER BY name ASC
`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

// attachRelations loads categories and images for the given products in two
// batched queries.
func (r *postgresRepo) attachRelations(ctx context.Context, products []domain.Product) error {
	if len(products) == 0 {
		return nil
	}
	ids := make([]string, 0, len(products))
	index := make(map[string]*domain.Product, len(products))
	for i := range products {
		ids = append(ids, products[i].ID)
		index[products[i].ID] = &products[i]
	}

	catRows, err := r.pool.Query(ctx, `
SELECT pc.product_id::text, c.id::text, c.name, c.slug, c.created_at
FROM product_categories pc
JOIN categories c ON c.id = pc.category_id
WHERE pc.product_id::text = ANY($1)
ORDER BY c.name ASC
`, ids)
	if err != nil {
		return err
	}
	defer catRows.Close()
	for catRows.Next() {
		var pid string
		var c domain.Category
		if err := catRows.Scan(&pid, &c.ID, &c.Name, &c.Slug, &c.CreatedAt); err != nil {
			return err
		}
		if p, ok := index[pid]; ok {
			p.Categories = append(p.Categories, c)
		}
	}
	if err := catRows.Err(); err != nil {
		return err
	}

	imgRows, err := r.pool.Query(ctx, `
SELECT id::text, product_id::text, url, sort_order
FROM product_images
WHERE product_id::text = ANY($1)
ORDER BY sort_order ASC
`, ids)
	if err != nil {
		return err
	}
	defer imgRows.Close()
	for imgRows.Next() {
		var img domain.ProductImage
		if err := imgRows.Scan(&img.ID, &img.ProductID, &img.URL, &img.SortOrder); err != nil {
			return err
		}
		if p, ok := index[img.ProductID]; ok {
			p.Images = append(p.Images, img)
		}
	}
	return imgRows.Err()
}
