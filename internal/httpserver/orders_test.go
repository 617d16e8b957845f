package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"storefront/internal/domain"
	"storefront/internal/service/checkout"
)

type stubCheckout struct {
	order *domain.Order
	err   error
	last  checkout.PlaceOrderInput
}

func (s *stubCheckout) PlaceOrder(_ context.Context, in checkout.PlaceOrderInput) (*domain.Order, error) {
	s.last = in
	return s.order, s.err
}

type stubOrderReader struct {
	orders []domain.Order
	err    error
}

func (s *stubOrderReader) List(_ context.Context, _ int) ([]domain.Order, error) {
	return s.orders, s.err
}

func (s *stubOrderReader) GetByID(_ context.Context, id string) (*domain.Order, error) {
	if s.err != nil {
		return nil, s.err
	}
	for i := range s.orders {
		if s.orders[i].ID == id {
			return &s.orders[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func testRouter(deps Deps) http.Handler {
	return buildRouter(log.New(io.Discard, "", 0), nil, deps)
}

func TestPlaceOrderHandlerStatusMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"validation", &domain.ValidationError{Reason: "no items"}, http.StatusBadRequest, codeValidation},
		{"product not found", &domain.ProductNotFoundError{ProductID: "p1"}, http.StatusConflict, codeProductNotFound},
		{"stock conflict", &domain.StockConflictError{ProductID: "p1"}, http.StatusConflict, codeStockConflict},
		{"internal", errors.New("connection refused"), http.StatusInternalServerError, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := testRouter(Deps{Checkout: &stubCheckout{err: tc.err}})
			req := httptest.NewRequest(http.MethodPost, "/api/orders",
				strings.NewReader(`{"items":[{"productId":"p1","quantity":1}]}`))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tc.wantStatus {
				t.Fatalf("expected status %d, got %d body=%s", tc.wantStatus, rec.Code, rec.Body.String())
			}
			var body map[string]any
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid json response: %v", err)
			}
			if tc.wantCode != "" && body["code"] != tc.wantCode {
				t.Fatalf("expected code %q, got %v", tc.wantCode, body["code"])
			}
			if tc.wantStatus == http.StatusInternalServerError {
				if msg, _ := body["error"].(string); strings.Contains(msg, "connection") {
					t.Fatalf("internal detail leaked to client: %q", msg)
				}
			}
		})
	}
}

func TestPlaceOrderHandlerSuccess(t *testing.T) {
	svc := &stubCheckout{order: &domain.Order{ID: "ord-1", Status: domain.OrderStatusPending, TotalCents: 159800}}
	router := testRouter(Deps{Checkout: svc})

	req := httptest.NewRequest(http.MethodPost, "/api/orders",
		strings.NewReader(`{"items":[{"productId":"p1","quantity":2}],"paymentProvider":"cod"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rec.Code, rec.Body.String())
	}
	var body struct {
		OK         bool   `json:"ok"`
		OrderID    string `json:"orderId"`
		TotalCents int64  `json:"totalCents"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json response: %v", err)
	}
	if !body.OK || body.OrderID != "ord-1" || body.TotalCents != 159800 {
		t.Fatalf("unexpected body: %+v", body)
	}
	if len(svc.last.Items) != 1 || svc.last.Items[0].Quantity != 2 {
		t.Fatalf("payload not forwarded: %+v", svc.last)
	}
}

func TestPlaceOrderHandlerRejectsMalformedJSON(t *testing.T) {
	router := testRouter(Deps{Checkout: &stubCheckout{}})
	req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(`{"items":`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestGetOrderHandlerNotFound(t *testing.T) {
	router := testRouter(Deps{Orders: &stubOrderReader{}})
	req := httptest.NewRequest(http.MethodGet, "/api/admin/orders/nope", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestListOrdersHandlerEmpty(t *testing.T) {
	router := testRouter(Deps{Orders: &stubOrderReader{}})
	req := httptest.NewRequest(http.MethodGet, "/api/admin/orders", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		Items []domain.Order `json:"items"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json response: %v", err)
	}
	if body.Items == nil {
		t.Fatalf("items must marshal as [], not null")
	}
}
