package checkout

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"testing"

	"storefront/internal/domain"
	orderrepo "storefront/internal/repository/order"
)

type stubProducts struct {
	snaps map[string]domain.ProductSnapshot
	err   error
	calls int
}

func (s *stubProducts) GetSnapshots(_ context.Context, ids []string) (map[string]domain.ProductSnapshot, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	out := make(map[string]domain.ProductSnapshot, len(ids))
	for _, id := range ids {
		if snap, ok := s.snaps[id]; ok {
			out[id] = snap
		}
	}
	return out, nil
}

type stubOrders struct {
	errs      []error
	calls     int
	lastInput orderrepo.PlaceInput
}

func (s *stubOrders) Place(_ context.Context, in orderrepo.PlaceInput) (*domain.Order, error) {
	s.calls++
	s.lastInput = in
	if len(s.errs) > 0 {
		err := s.errs[0]
		s.errs = s.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	var total int64
	for _, l := range in.Lines {
		total += l.PriceCentsSnapshot * int64(l.Quantity)
	}
	status := domain.OrderStatusPending
	if in.PaymentMode == domain.PaymentCard {
		status = domain.OrderStatusPaid
	}
	return &domain.Order{ID: "o1", Status: status, PaymentProvider: in.PaymentMode, Currency: in.Currency, TotalCents: total}, nil
}

func newTestService(products *stubProducts, orders *stubOrders) *Service {
	return &Service{
		products: products,
		orders:   orders,
		logger:   log.New(io.Discard, "", 0),
	}
}

func snapshotFixture() map[string]domain.ProductSnapshot {
	return map[string]domain.ProductSnapshot{
		"a": {ProductID: "a", Title: "Classic Cotton Tee", PriceCents: 79900, Currency: "INR", Active: true, Quantity: 25},
		"b": {ProductID: "b", Title: "Running Shoes", PriceCents: 349900, Currency: "INR", Active: true, Quantity: 12},
	}
}

func TestPlaceOrderRejectsEmptyCart(t *testing.T) {
	svc := newTestService(&stubProducts{}, &stubOrders{})
	_, err := svc.PlaceOrder(context.Background(), PlaceOrderInput{})
	var vErr *domain.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestPlaceOrderRejectsNonPositiveQuantity(t *testing.T) {
	svc := newTestService(&stubProducts{}, &stubOrders{})
	for _, qty := range []int{0, -1} {
		_, err := svc.PlaceOrder(context.Background(), PlaceOrderInput{
			Items: []ItemInput{{ProductID: "a", Quantity: qty}},
		})
		var vErr *domain.ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("quantity %d: expected validation error, got %v", qty, err)
		}
	}
}

func TestPlaceOrderRejectsMissingProductID(t *testing.T) {
	svc := newTestService(&stubProducts{}, &stubOrders{})
	_, err := svc.PlaceOrder(context.Background(), PlaceOrderInput{
		Items: []ItemInput{{ProductID: "  ", Quantity: 1}},
	})
	var vErr *domain.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestPlaceOrderMergesDuplicateLines(t *testing.T) {
	orders := &stubOrders{}
	svc := newTestService(&stubProducts{snaps: snapshotFixture()}, orders)

	dup, err := svc.PlaceOrder(context.Background(), PlaceOrderInput{
		Items: []ItemInput{{ProductID: "a", Quantity: 2}, {ProductID: "a", Quantity: 3}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(orders.lastInput.Lines) != 1 || orders.lastInput.Lines[0].Quantity != 5 {
		t.Fatalf("expected one merged line qty=5, got %+v", orders.lastInput.Lines)
	}

	single, err := svc.PlaceOrder(context.Background(), PlaceOrderInput{
		Items: []ItemInput{{ProductID: "a", Quantity: 5}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dup.TotalCents != single.TotalCents {
		t.Fatalf("merged cart total %d differs from single-line total %d", dup.TotalCents, single.TotalCents)
	}
}

func TestPlaceOrderNormalizesPaymentMode(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"CARD", domain.PaymentCard},
		{"card", domain.PaymentCard},
		{"COD", domain.PaymentCashOnDelivery},
		{"CASH_ON_DELIVERY", domain.PaymentCashOnDelivery},
		{"", domain.PaymentCashOnDelivery},
		{"UPI", domain.PaymentCashOnDelivery},
	}
	for _, tc := range cases {
		orders := &stubOrders{}
		svc := newTestService(&stubProducts{snaps: snapshotFixture()}, orders)
		ord, err := svc.PlaceOrder(context.Background(), PlaceOrderInput{
			Items:           []ItemInput{{ProductID: "a", Quantity: 1}},
			PaymentProvider: tc.raw,
		})
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", tc.raw, err)
		}
		if orders.lastInput.PaymentMode != tc.want {
			t.Fatalf("%q: expected payment mode %s, got %s", tc.raw, tc.want, orders.lastInput.PaymentMode)
		}
		wantStatus := domain.OrderStatusPending
		if tc.want == domain.PaymentCard {
			wantStatus = domain.OrderStatusPaid
		}
		if ord.Status != wantStatus {
			t.Fatalf("%q: expected status %s, got %s", tc.raw, wantStatus, ord.Status)
		}
	}
}

func TestPlaceOrderProductNotFound(t *testing.T) {
	orders := &stubOrders{}
	svc := newTestService(&stubProducts{snaps: snapshotFixture()}, orders)
	_, err := svc.PlaceOrder(context.Background(), PlaceOrderInput{
		Items: []ItemInput{{ProductID: "a", Quantity: 1}, {ProductID: "missing", Quantity: 1}},
	})
	var pnf *domain.ProductNotFoundError
	if !errors.As(err, &pnf) {
		t.Fatalf("expected product not found, got %v", err)
	}
	if pnf.ProductID != "missing" {
		t.Fatalf("expected offending id 'missing', got %q", pnf.ProductID)
	}
	if orders.calls != 0 {
		t.Fatalf("expected no reservation attempt, got %d", orders.calls)
	}
}

func TestPlaceOrderStockConflictNotRetried(t *testing.T) {
	orders := &stubOrders{errs: []error{
		&domain.StockConflictError{ProductID: "a"},
		&domain.StockConflictError{ProductID: "a"},
	}}
	svc := newTestService(&stubProducts{snaps: snapshotFixture()}, orders)
	_, err := svc.PlaceOrder(context.Background(), PlaceOrderInput{
		Items: []ItemInput{{ProductID: "a", Quantity: 1}},
	})
	var stock *domain.StockConflictError
	if !errors.As(err, &stock) {
		t.Fatalf("expected stock conflict, got %v", err)
	}
	if stock.ProductID != "a" {
		t.Fatalf("expected offending id 'a', got %q", stock.ProductID)
	}
	if orders.calls != 1 {
		t.Fatalf("business-rule failure must not retry, got %d attempts", orders.calls)
	}
}

func TestPlaceOrderRetriesTxConflictWithFreshSnapshots(t *testing.T) {
	products := &stubProducts{snaps: snapshotFixture()}
	orders := &stubOrders{errs: []error{
		fmt.Errorf("%w: serialization failure", domain.ErrTxConflict),
		nil,
	}}
	svc := newTestService(products, orders)
	ord, err := svc.PlaceOrder(context.Background(), PlaceOrderInput{
		Items: []ItemInput{{ProductID: "a", Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if orders.calls != 2 {
		t.Fatalf("expected 2 reservation attempts, got %d", orders.calls)
	}
	if products.calls != 2 {
		t.Fatalf("retry must re-read snapshots, got %d snapshot fetches", products.calls)
	}
	if ord.TotalCents != 2*79900 {
		t.Fatalf("unexpected total %d", ord.TotalCents)
	}
}

func TestPlaceOrderRetriesAreBounded(t *testing.T) {
	conflict := fmt.Errorf("%w: deadlock", domain.ErrTxConflict)
	orders := &stubOrders{errs: []error{conflict, conflict, conflict, conflict}}
	svc := newTestService(&stubProducts{snaps: snapshotFixture()}, orders)
	_, err := svc.PlaceOrder(context.Background(), PlaceOrderInput{
		Items: []ItemInput{{ProductID: "a", Quantity: 1}},
	})
	if !errors.Is(err, domain.ErrTxConflict) {
		t.Fatalf("expected tx conflict after exhausted retries, got %v", err)
	}
	if orders.calls != maxAttempts {
		t.Fatalf("expected %d attempts, got %d", maxAttempts, orders.calls)
	}
}

func TestPlaceOrderPricesFromSnapshot(t *testing.T) {
	orders := &stubOrders{}
	svc := newTestService(&stubProducts{snaps: snapshotFixture()}, orders)
	ord, err := svc.PlaceOrder(context.Background(), PlaceOrderInput{
		Items: []ItemInput{{ProductID: "a", Quantity: 3}, {ProductID: "b", Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ord.TotalCents != 3*79900+349900 {
		t.Fatalf("unexpected total %d", ord.TotalCents)
	}
	for _, l := range orders.lastInput.Lines {
		if l.TitleSnapshot == "" || l.PriceCentsSnapshot == 0 {
			t.Fatalf("line missing snapshot data: %+v", l)
		}
	}
	if orders.lastInput.Currency != "INR" {
		t.Fatalf("expected INR currency, got %s", orders.lastInput.Currency)
	}
}

func TestPlaceOrderAddressDefaults(t *testing.T) {
	orders := &stubOrders{}
	svc := newTestService(&stubProducts{snaps: snapshotFixture()}, orders)
	_, err := svc.PlaceOrder(context.Background(), PlaceOrderInput{
		Items:           []ItemInput{{ProductID: "a", Quantity: 1}},
		ShippingAddress: &AddressInput{Line1: "1 Main St", City: "Pune", State: "MH", PostalCode: "411001"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ship := orders.lastInput.Shipping
	if ship == nil {
		t.Fatalf("expected shipping address")
	}
	if ship.Kind != domain.AddressShipping {
		t.Fatalf("expected kind SHIPPING, got %s", ship.Kind)
	}
	if ship.Country != "IN" {
		t.Fatalf("expected country default IN, got %q", ship.Country)
	}
	if orders.lastInput.Billing != nil {
		t.Fatalf("billing should be absent when not supplied")
	}
}

func TestPlaceOrderSnapshotFetchFailure(t *testing.T) {
	orders := &stubOrders{}
	svc := newTestService(&stubProducts{err: errors.New("db down")}, orders)
	_, err := svc.PlaceOrder(context.Background(), PlaceOrderInput{
		Items: []ItemInput{{ProductID: "a", Quantity: 1}},
	})
	if err == nil || err.Error() != "db down" {
		t.Fatalf("expected snapshot error, got %v", err)
	}
	if orders.calls != 0 {
		t.Fatalf("expected no reservation attempt, got %d", orders.calls)
	}
}
