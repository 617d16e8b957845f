package checkout

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"

	"storefront/internal/domain"
	orderrepo "storefront/internal/repository/order"
	productrepo "storefront/internal/repository/product"
)

// maxAttempts bounds transparent retries of transient store conflicts.
// Business-rule failures are never retried.
const maxAttempts = 3

type productRepo interface {
	GetSnapshots(ctx context.Context, ids []string) (map[string]domain.ProductSnapshot, error)
}

type orderRepo interface {
	Place(ctx context.Context, in orderrepo.PlaceInput) (*domain.Order, error)
}

// EventPublisher receives a best-effort notification after an order commits.
// Implementations must not block the checkout path.
type EventPublisher interface {
	OrderPlaced(o *domain.Order)
}

// Service validates checkout payloads and drives the reservation-plus-write
// transaction. It holds no in-process locks; mutual exclusion between
// concurrent checkouts is entirely the store's.
type Service struct {
	products productRepo
	orders   orderRepo
	events   EventPublisher
	logger   *log.Logger
}

func New(products productrepo.Repository, orders orderrepo.Repository, events EventPublisher, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{products: products, orders: orders, events: events, logger: logger}
}

type ItemInput struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type AddressInput struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
	Phone      string `json:"phone"`
}

type PlaceOrderInput struct {
	Items           []ItemInput   `json:"items"`
	PaymentProvider string        `json:"paymentProvider"`
	ShippingAddress *AddressInput `json:"shippingAddress"`
	BillingAddress  *AddressInput `json:"billingAddress"`
}

// PlaceOrder runs validate -> price -> reserve+write and maps the outcome.
// It returns success only if the whole transaction committed; no partial
// state survives any failure path.
func (s *Service) PlaceOrder(ctx context.Context, in PlaceOrderInput) (*domain.Order, error) {
	intent, err := validate(in)
	if err != nil {
		return nil, err
	}

	var ord *domain.Order
	for attempt := 1; ; attempt++ {
		ord, err = s.placeOnce(ctx, intent)
		if err == nil {
			break
		}
		if errors.Is(err, domain.ErrTxConflict) && attempt < maxAttempts {
			s.logger.Printf("checkout: tx conflict, retrying attempt=%d err=%v", attempt+1, err)
			continue
		}
		return nil, err
	}

	if s.events != nil {
		s.events.OrderPlaced(ord)
	}
	s.logger.Printf("checkout: placed order_id=%s total_cents=%d", ord.ID, ord.TotalCents)
	return ord, nil
}

// placeOnce prices the intent from fresh snapshots and runs one reservation
// attempt. Re-reading snapshots per attempt keeps retries from reusing stale
// quantities or prices.
func (s *Service) placeOnce(ctx context.Context, intent *domain.OrderIntent) (*domain.Order, error) {
	ids := make([]string, 0, len(intent.Lines))
	for _, l := range intent.Lines {
		ids = append(ids, l.ProductID)
	}

	snaps, err := s.products.GetSnapshots(ctx, ids)
	if err != nil {
		return nil, err
	}

	currency := "INR"
	lines := make([]orderrepo.PlaceLine, 0, len(intent.Lines))
	for _, l := range intent.Lines {
		snap, ok := snaps[l.ProductID]
		if !ok {
			return nil, &domain.ProductNotFoundError{ProductID: l.ProductID}
		}
		if snap.Currency != "" {
			currency = snap.Currency
		}
		lines = append(lines, orderrepo.PlaceLine{
			ProductID:          l.ProductID,
			Quantity:           l.Quantity,
			TitleSnapshot:      snap.Title,
			PriceCentsSnapshot: snap.PriceCents,
		})
	}

	return s.orders.Place(ctx, orderrepo.PlaceInput{
		Lines:       lines,
		PaymentMode: intent.PaymentMode,
		Currency:    currency,
		Shipping:    intent.Shipping,
		Billing:     intent.Billing,
	})
}

// validate normalizes a raw payload into an OrderIntent. It consults neither
// stock nor price; both are read fresh by the reservation.
func validate(in PlaceOrderInput) (*domain.OrderIntent, error) {
	if len(in.Items) == 0 {
		return nil, &domain.ValidationError{Reason: "no items"}
	}

	merged := make(map[string]int, len(in.Items))
	order := make([]string, 0, len(in.Items))
	for _, it := range in.Items {
		id := strings.TrimSpace(it.ProductID)
		if id == "" {
			return nil, &domain.ValidationError{Reason: "missing productId"}
		}
		if it.Quantity <= 0 {
			return nil, &domain.ValidationError{Reason: "quantity must be positive for product " + id}
		}
		if _, seen := merged[id]; !seen {
			order = append(order, id)
		}
		merged[id] += it.Quantity
	}

	lines := make([]domain.IntentLine, 0, len(order))
	for _, id := range order {
		lines = append(lines, domain.IntentLine{ProductID: id, Quantity: merged[id]})
	}

	return &domain.OrderIntent{
		Lines:       lines,
		PaymentMode: normalizePayment(in.PaymentProvider),
		Shipping:    toAddress(in.ShippingAddress, domain.AddressShipping),
		Billing:     toAddress(in.BillingAddress, domain.AddressBilling),
	}, nil
}

// normalizePayment recognizes CARD; everything else, including missing or
// unknown labels, falls back to cash on delivery.
func normalizePayment(raw string) string {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case domain.PaymentCard:
		return domain.PaymentCard
	default:
		return domain.PaymentCashOnDelivery
	}
}

func toAddress(in *AddressInput, kind string) *domain.Address {
	if in == nil {
		return nil
	}
	country := strings.TrimSpace(in.Country)
	if country == "" {
		country = "IN"
	}
	return &domain.Address{
		Kind:       kind,
		Line1:      in.Line1,
		Line2:      in.Line2,
		City:       in.City,
		State:      in.State,
		PostalCode: in.PostalCode,
		Country:    country,
		Phone:      in.Phone,
	}
}
