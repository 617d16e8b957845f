package contact

import (
	"context"
	"errors"
	"io"
	"log"

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

func (r *postgresRepo) Create(ctx context.Context, name, email, message string) (*domain.ContactMessage, error) {
	const q = `
INSERT INTO contact_messages (name, email, message)
VALUES ($1, $2, $3)
RETURNING id::text, name, email, message, handled, created_at
`
	var m domain.ContactMessage
	err := r.pool.QueryRow(ctx, q, name, email, message).Scan(&m.ID, &m.Name, &m.Email, &m.Message, &m.Handled, &m.CreatedAt)
	if err != nil {
		r.logger.Printf("contact repo: create error=%v", err)
		return nil, err
	}
	r.logger.Printf("contact repo: saved id=%s", m.ID)
	return &m, nil
}

func (r *postgresRepo) SetHandled(ctx context.Context, id string, handled bool) (*domain.ContactMessage, error) {
	const q = `
UPDATE contact_messages
SET handled = $2
WHERE id::text = $1
RETURNING id::text, name, email, message, handled, created_at
`
	var m domain.ContactMessage
	err := r.pool.QueryRow(ctx, q, id, handled).Scan(&m.ID, &m.Name, &m.Email, &m.Message, &m.Handled, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *postgresRepo) List(ctx context.Context) ([]domain.ContactMessage, error) {
	const q = `
SELECT id::text, name, email, message, handled, created_at
FROM contact_messages
ORDER BY created_at DESC
`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ContactMessage
	for rows.Next() {
		var m domain.ContactMessage
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Message, &m.Handled, &m.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	return result, rows.Err()
}
