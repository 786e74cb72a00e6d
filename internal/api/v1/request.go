package v1

type AddMoneyRequest struct {
	Amount string `json:"amount"`
}

type VerifyPaymentRequest struct {
	OrderID   string `json:"order_id"`
	PaymentID string `json:"payment_id"`
	Signature string `json:"signature"`
}

type WebhookPayload struct {
	Event   string `json:"event"`
	OrderID string `json:"order_id"`
	Payment struct {
		ID     string `json:"id"`
		Amount int64  `json:"amount"`
	} `json:"payment"`
}

type DebitFeeRequest struct {
	Amount      string `json:"amount"`
	QuantityKg  string `json:"quantity_kg"`
	Description string `json:"description"`
}
