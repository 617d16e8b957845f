package domain

import "time"

// Order statuses. Card payment is simulated, it settles immediately.
const (
	OrderStatusPending = "PENDING"
	OrderStatusPaid    = "PAID"
)

// Payment modes accepted at checkout.
const (
	PaymentCashOnDelivery = "COD"
	PaymentCard           = "CARD"
)

// Address kinds attached to an order.
const (
	AddressShipping = "SHIPPING"
	AddressBilling  = "BILLING"
)

type Order struct {
	ID              string      `json:"id"`
	Status          string      `json:"status"`
	PaymentProvider string      `json:"paymentProvider"`
	Currency        string      `json:"currency"`
	TotalCents      int64       `json:"totalCents"`
	Items           []OrderItem `json:"items,omitempty"`
	Addresses       []Address   `json:"addresses,omitempty"`
	CreatedAt       time.Time   `json:"createdAt"`
}

// OrderItem freezes title and unit price at order-creation time. The snapshot
// is the audit record of what the buyer was charged; later catalog edits never
// touch it.
type OrderItem struct {
	ID                 string `json:"id"`
	OrderID            string `json:"orderId"`
	ProductID          string `json:"productId"`
	TitleSnapshot      string `json:"titleSnapshot"`
	PriceCentsSnapshot int64  `json:"priceCentsSnapshot"`
	Quantity           int    `json:"quantity"`
}

type Address struct {
	ID         string `json:"id"`
	OrderID    string `json:"orderId"`
	Kind       string `json:"kind"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
	Phone      string `json:"phone,omitempty"`
}

// OrderIntent is a validated, normalized checkout request. Lines carry no
// duplicate product ids; quantities are positive. It lives only for the
// duration of one PlaceOrder call.
type OrderIntent struct {
	Lines       []IntentLine
	PaymentMode string
	Shipping    *Address
	Billing     *Address
}

type IntentLine struct {
	ProductID string
	Quantity  int
}
