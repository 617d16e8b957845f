package order

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sort"

	"storefront/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
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

func (r *postgresRepo) Place(ctx context.Context, in PlaceInput) (*domain.Order, error) {
	lines := make([]PlaceLine, len(in.Lines))
	copy(lines, in.Lines)
	// Fixed decrement order across concurrent transactions touching
	// overlapping product sets; prevents circular lock waits.
	sort.Slice(lines, func(i, j int) bool { return lines[i].ProductID < lines[j].ProductID })

	var total int64
	for _, l := range lines {
		total += l.PriceCentsSnapshot * int64(l.Quantity)
	}

	status := domain.OrderStatusPending
	if in.PaymentMode == domain.PaymentCard {
		status = domain.OrderStatusPaid
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, translateTxErr(err)
	}
	defer tx.Rollback(ctx)

	for _, l := range lines {
		// The stock check and the write are one statement evaluated by the
		// store against latest committed state; no read-then-write window.
		cmd, err := tx.Exec(ctx, `
UPDATE inventory
SET quantity = quantity - $2
WHERE product_id::text = $1 AND quantity >= $2
`, l.ProductID, l.Quantity)
		if err != nil {
			r.logger.Printf("order repo: decrement product_id=%s error=%v", l.ProductID, err)
			return nil, translateTxErr(err)
		}
		if cmd.RowsAffected() == 0 {
			r.logger.Printf("order repo: stock conflict product_id=%s qty=%d", l.ProductID, l.Quantity)
			return nil, &domain.StockConflictError{ProductID: l.ProductID}
		}
	}

	ord := domain.Order{
		Status:          status,
		PaymentProvider: in.PaymentMode,
		Currency:        in.Currency,
		TotalCents:      total,
	}
	err = tx.QueryRow(ctx, `
INSERT INTO orders (status, payment_provider, currency, total_cents)
VALUES ($1, $2, $3, $4)
RETURNING id::text, created_at
`, ord.Status, ord.PaymentProvider, ord.Currency, ord.TotalCents).Scan(&ord.ID, &ord.CreatedAt)
	if err != nil {
		r.logger.Printf("order repo: insert order error=%v", err)
		return nil, translateTxErr(err)
	}

	for _, l := range lines {
		var item domain.OrderItem
		err := tx.QueryRow(ctx, `
INSERT INTO order_items (order_id, product_id, title_snapshot, price_cents_snapshot, quantity)
VALUES ($1, $2, $3, $4, $5)
RETURNING id::text
`, ord.ID, l.ProductID, l.TitleSnapshot, l.PriceCentsSnapshot, l.Quantity).Scan(&item.ID)
		if err != nil {
			r.logger.Printf("order repo: insert item product_id=%s error=%v", l.ProductID, err)
			return nil, translateTxErr(err)
		}
		item.OrderID = ord.ID
		item.ProductID = l.ProductID
		item.TitleSnapshot = l.TitleSnapshot
		item.PriceCentsSnapshot = l.PriceCentsSnapshot
		item.Quantity = l.Quantity
		ord.Items = append(ord.Items, item)
	}

	for _, addr := range []*domain.Address{in.Shipping, in.Billing} {
		if addr == nil {
			continue
		}
		saved, err := insertAddress(ctx, tx, ord.ID, *addr)
		if err != nil {
			r.logger.Printf("order repo: insert address kind=%s error=%v", addr.Kind, err)
			return nil, translateTxErr(err)
		}
		ord.Addresses = append(ord.Addresses, *saved)
	}

	if err := tx.Commit(ctx); err != nil {
		r.logger.Printf("order repo: commit error=%v", err)
		return nil, translateTxErr(err)
	}
	r.logger.Printf("order repo: placed id=%s status=%s total_cents=%d lines=%d", ord.ID, ord.Status, ord.TotalCents, len(ord.Items))
	return &ord, nil
}

func insertAddress(ctx context.Context, tx pgx.Tx, orderID string, a domain.Address) (*domain.Address, error) {
	a.OrderID = orderID
	err := tx.QueryRow(ctx, `
INSERT INTO addresses (order_id, kind, line1, line2, city, state, postal_code, country, phone)
VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, $8, NULLIF($9, ''))
RETURNING id::text
`, orderID, a.Kind, a.Line1, a.Line2, a.City, a.State, a.PostalCode, a.Country, a.Phone).Scan(&a.ID)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *postgresRepo) List(ctx context.Context, limit int) ([]domain.Order, error) {
	if limit < 1 || limit > 500 {
		limit = 100
	}
	const q = `
SELECT id::text, status, payment_provider, currency, total_cents, created_at
FROM orders
ORDER BY created_at DESC
LIMIT $1
`
	rows, err := r.pool.Query(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Order
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(&o.ID, &o.Status, &o.PaymentProvider, &o.Currency, &o.TotalCents, &o.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, o)
	}
	return result, rows.Err()
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	const q = `
SELECT id::text, status, payment_provider, currency, total_cents, created_at
FROM orders
WHERE id::text = $1
`
	var o domain.Order
	err := r.pool.QueryRow(ctx, q, id).Scan(&o.ID, &o.Status, &o.PaymentProvider, &o.Currency, &o.TotalCents, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	itemRows, err := r.pool.Query(ctx, `
SELECT id::text, order_id::text, product_id::text, title_snapshot, price_cents_snapshot, quantity
FROM order_items
WHERE order_id::text = $1
`, id)
	if err != nil {
		return nil, err
	}
	defer itemRows.Close()
	for itemRows.Next() {
		var it domain.OrderItem
		if err := itemRows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.TitleSnapshot, &it.PriceCentsSnapshot, &it.Quantity); err != nil {
			return nil, err
		}
		o.Items = append(o.Items, it)
	}
	if err := itemRows.Err(); err != nil {
		return nil, err
	}

	addrRows, err := r.pool.Query(ctx, `
SELECT id::text, order_id::text, kind, line1, COALESCE(line2, ''), city, state, postal_code, country, COALESCE(phone, '')
FROM addresses
WHERE order_id::text = $1
ORDER BY kind DESC
`, id)
	if err != nil {
		return nil, err
	}
	defer addrRows.Close()
	for addrRows.Next() {
		var a domain.Address
		if err := addrRows.Scan(&a.ID, &a.OrderID, &a.Kind, &a.Line1, &a.Line2, &a.City, &a.State, &a.PostalCode, &a.Country, &a.Phone); err != nil {
			return nil, err
		}
		o.Addresses = append(o.Addresses, a)
	}
	return &o, addrRows.Err()
}

// translateTxErr maps retriable store-level conflicts onto ErrTxConflict so
// the checkout service can retry with fresh snapshots.
func translateTxErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01": // serialization_failure, deadlock_detected
			return fmt.Errorf("%w: %v", domain.ErrTxConflict, err)
		}
	}
	return err
}
