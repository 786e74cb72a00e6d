package v1

type WalletResponse struct {
	UserID  string `json:"user_id"`
	Balance string `json:"balance"`
	Active  bool   `json:"active"`
}

type AddMoneyResponse struct {
	OrderID     string `json:"order_id"`
	Amount      string `json:"amount"`
	BonusAmount string `json:"bonus_amount"`
	Currency    string `json:"currency"`
	KeyID       string `json:"key_id"`
}

type VerifyPaymentResponse struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
}

type TransactionResponse struct {
	ID          int64  `json:"id"`
	Amount      string `json:"amount"`
	Kind        string `json:"kind"`
	Status      string `json:"status"`
	OrderID     string `json:"order_id,omitempty"`
	Description string `json:"description"`
	CreatedAt   string `json:"created_at"`
}

type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	Total        int                   `json:"total"`
}

type DebitFeeResponse struct {
	TransactionID int64  `json:"transaction_id"`
	Amount        string `json:"amount"`
	Status        string `json:"status"`
}
