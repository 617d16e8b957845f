package contact

import (
	"context"

	"storefront/internal/domain"
)

type Repository interface {
	Create(ctx context.Context, name, email, message string) (*domain.ContactMessage, error)
	SetHandled(ctx context.Context, id string, handled bool) (*domain.ContactMessage, error)
	List(ctx context.Context) ([]domain.ContactMessage, error)
}
