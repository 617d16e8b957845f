package contact

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"storefront/internal/domain"
	contactrepo "storefront/internal/repository/contact"
)

const supportAddress = "support@example.com"

// Service stores contact-form messages. Delivery is a mailto link the client
// may open; wiring a real mail provider is left to deployment.
type Service struct {
	repo contactrepo.Repository
}

func New(repo contactrepo.Repository) *Service {
	return &Service{repo: repo}
}

type SubmitInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

type SubmitResult struct {
	ID     string `json:"id"`
	Mailto string `json:"mailto"`
}

func (s *Service) Submit(ctx context.Context, in SubmitInput) (*SubmitResult, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.TrimSpace(in.Email)
	message := strings.TrimSpace(in.Message)
	if name == "" || email == "" || message == "" {
		return nil, errors.New("missing fields")
	}
	saved, err := s.repo.Create(ctx, name, email, message)
	if err != nil {
		return nil, err
	}
	return &SubmitResult{ID: saved.ID, Mailto: buildMailto(name, email, message)}, nil
}

func (s *Service) SetHandled(ctx context.Context, id string, handled bool) (*domain.ContactMessage, error) {
	if strings.TrimSpace(id) == "" {
		return nil, errors.New("missing id")
	}
	return s.repo.SetHandled(ctx, id, handled)
}

func (s *Service) List(ctx context.Context) ([]domain.ContactMessage, error) {
	msgs, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if msgs == nil {
		msgs = []domain.ContactMessage{}
	}
	return msgs, nil
}

func buildMailto(name, email, message string) string {
	subject := escapeMailto(fmt.Sprintf("[Contact] %s", name))
	body := escapeMailto(fmt.Sprintf("From: %s <%s>\n\n%s", name, email, message))
	return fmt.Sprintf("mailto:%s?subject=%s&body=%s", supportAddress, subject, body)
}

// escapeMailto percent-encodes for the mailto scheme, where spaces must be
// %20 rather than '+'.
func escapeMailto(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
