package paymentgateway

type OrderState string

const (
	OrderStateCreated   OrderState = "created"
	OrderStatePaid      OrderState = "paid"
	OrderStateCancelled OrderState = "cancelled"
	OrderStateExpired   OrderState = "expired"
)

// Order is the provider-side object a wallet top-up is settled against.
// Amounts are in the currency's smallest unit (paise).
type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

type orderPayment struct {
	ID string `json:"payment_id"`
}

type orderStatusResponse struct {
	ID         string         `json:"id"`
	Status     OrderState     `json:"status"`
	AmountPaid int64          `json:"amount_paid"`
	Payments   []orderPayment `json:"payments"`
}

// PaymentStatus is the polled view of an order used by the
// verification worker.
type PaymentStatus struct {
	OrderID    string
	State      OrderState
	AmountPaid int64
	PaymentID  string
}
