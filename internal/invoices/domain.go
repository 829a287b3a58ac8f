package invoices

import "time"

// PaymentMethod is how the customer settled the sale.
type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "cash"
	PaymentCard   PaymentMethod = "card"
	PaymentMobile PaymentMethod = "mobile"
)

// Valid reports whether the method is one of the accepted values.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentMobile:
		return true
	}
	return false
}

// Status is the invoice lifecycle state. The only transition is paid to
// refunded; line items and totals never change after checkout.
type Status string

const (
	StatusPaid     Status = "paid"
	StatusRefunded Status = "refunded"
)

// LineItem is a sold product line. UnitPrice is captured at sale time so
// later catalog price changes do not rewrite history.
type LineItem struct {
	ID          int64   `json:"id"`
	InvoiceID   string  `json:"invoice_id"`
	ProductID   int64   `json:"product_id"`
	ProductName string  `json:"product_name,omitempty"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	LineTotal   float64 `json:"line_total"`
}

// Invoice is a finalized sale. The id is human readable, INV-YYMMDD-NNNN,
// with NNNN a per-day sequence.
type Invoice struct {
	ID            string        `json:"id"`
	CreatedAt     time.Time     `json:"created_at"`
	CustomerID    *int64        `json:"customer_id"`
	CustomerName  *string       `json:"customer_name,omitempty"`
	CashierID     *int64        `json:"cashier_id"`
	Subtotal      float64       `json:"subtotal"`
	Discount      float64       `json:"discount"`
	Total         float64       `json:"total"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	Status        Status        `json:"status"`
	Items         []LineItem    `json:"items,omitempty"`
}

// CartLine is one entry of a checkout request.
type CartLine struct {
	ProductID int64   `json:"product_id" validate:"required"`
	Quantity  int     `json:"quantity" validate:"required"`
	UnitPrice float64 `json:"unit_price"`
}

// CheckoutRequest is the payload for creating an invoice. ID is optional;
// when empty a number is generated inside the transaction.
type CheckoutRequest struct {
	ID             string        `json:"id"`
	CustomerID     *int64        `json:"customer_id"`
	CashierID      *int64        `json:"cashier_id"`
	Items          []CartLine    `json:"items"`
	Discount       float64       `json:"discount"`
	Total          float64       `json:"total"`
	PaymentMethod  PaymentMethod `json:"payment_method"`
	IdempotencyKey string        `json:"idempotency_key"`
}
