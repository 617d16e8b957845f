package contact

import (
	"context"
	"strings"
	"testing"

	"storefront/internal/domain"
)

type stubContactRepo struct {
	messages []domain.ContactMessage
	created  int
}

func (s *stubContactRepo) Create(_ context.Context, name, email, message string) (*domain.ContactMessage, error) {
	s.created++
	msg := domain.ContactMessage{ID: "m1", Name: name, Email: email, Message: message}
	s.messages = append(s.messages, msg)
	return &msg, nil
}

func (s *stubContactRepo) SetHandled(_ context.Context, id string, handled bool) (*domain.ContactMessage, error) {
	for i := range s.messages {
		if s.messages[i].ID == id {
			s.messages[i].Handled = handled
			return &s.messages[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *stubContactRepo) List(_ context.Context) ([]domain.ContactMessage, error) {
	return s.messages, nil
}

func TestSubmitRequiresAllFields(t *testing.T) {
	repo := &stubContactRepo{}
	svc := New(repo)

	cases := []SubmitInput{
		{},
		{Name: "Asha", Email: "asha@example.com"},
		{Name: "  ", Email: "asha@example.com", Message: "hi"},
	}
	for _, in := range cases {
		if _, err := svc.Submit(context.Background(), in); err == nil {
			t.Fatalf("expected error for %+v", in)
		}
	}
	if repo.created != 0 {
		t.Fatalf("invalid submissions must not be stored")
	}
}

func TestSubmitStoresAndBuildsMailto(t *testing.T) {
	repo := &stubContactRepo{}
	svc := New(repo)

	res, err := svc.Submit(context.Background(), SubmitInput{
		Name:    "Asha Rao",
		Email:   "asha@example.com",
		Message: "Where is my order?",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.ID != "m1" {
		t.Fatalf("unexpected id %q", res.ID)
	}
	if !strings.HasPrefix(res.Mailto, "mailto:"+supportAddress+"?subject=") {
		t.Fatalf("unexpected mailto %q", res.Mailto)
	}
	if strings.Contains(res.Mailto, "+") || strings.Contains(res.Mailto, " ") {
		t.Fatalf("mailto must use %%20 for spaces, got %q", res.Mailto)
	}
	if !strings.Contains(res.Mailto, "%5BContact%5D%20Asha%20Rao") {
		t.Fatalf("subject missing from %q", res.Mailto)
	}
}

func TestSetHandled(t *testing.T) {
	repo := &stubContactRepo{messages: []domain.ContactMessage{{ID: "m1"}}}
	svc := New(repo)

	if _, err := svc.SetHandled(context.Background(), "  ", true); err == nil {
		t.Fatalf("expected error for missing id")
	}
	msg, err := svc.SetHandled(context.Background(), "m1", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !msg.Handled {
		t.Fatalf("expected message marked handled")
	}
}

func TestListNeverReturnsNil(t *testing.T) {
	svc := New(&stubContactRepo{})
	msgs, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msgs == nil {
		t.Fatalf("expected empty slice, got nil")
	}
}
