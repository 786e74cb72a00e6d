package v1

import (
	"errors"

	"github.com/adi-0903/wallet-service/internal/config"
	"github.com/adi-0903/wallet-service/internal/constants"
	"github.com/adi-0903/wallet-service/internal/model"
	"github.com/adi-0903/wallet-service/internal/service"
	"github.com/adi-0903/wallet-service/pkg/paymentgateway"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	userIDHeader    = "X-User-ID"
	signatureHeader = "X-Webhook-Signature"

	webhookEventCaptured = "payment.captured"
	webhookEventFailed   = "payment.failed"
)

type Handler struct {
	logger  *zap.Logger
	wallets service.WalletService
	topups  service.TopupService
	ledger  service.LedgerService
	gwCfg   config.Gateway
}

func NewHandler(logger *zap.Logger, wallets service.WalletService, topups service.TopupService,
	ledger service.LedgerService, cfg *config.Config) *Handler {
	return &Handler{logger: logger, wallets: wallets, topups: topups, ledger: ledger, gwCfg: cfg.Gateway}
}

func (h *Handler) Pong(c *fiber.Ctx) error {
	return c.SendString("pong")
}

func (h *Handler) ProvisionWallet(c *fiber.Ctx) error {
	ctx := c.UserContext()

	userID := c.Get(userIDHeader)
	if userID == "" {
		return badRequest(c, constants.ErrCodeInvalidRequestBody)
	}

	created, err := h.wallets.ProvisionWallet(ctx, service.ProvisionWalletCommand{UserID: userID})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(walletResponse(created))
}

func (h *Handler) GetWallet(c *fiber.Ctx) error {
	userID := c.Get(userIDHeader)
	if userID == "" {
		return badRequest(c, constants.ErrCodeInvalidRequestBody)
	}

	found, err := h.wallets.GetWallet(userID)
	if err != nil {
		return err
	}

	return c.JSON(walletResponse(found))
}

func (h *Handler) ListTransactions(c *fiber.Ctx) error {
	userID := c.Get(userIDHeader)
	if userID == "" {
		return badRequest(c, constants.ErrCodeInvalidRequestBody)
	}

	query := service.ListTransactionsQuery{
		UserID: userID,
		Limit:  c.QueryInt("limit"),
		Offset: c.QueryInt("offset"),
	}

	txns, err := h.wallets.ListTransactions(query)
	if err != nil {
		return err
	}

	resp := ListTransactionsResponse{
		Transactions: make([]TransactionResponse, 0, len(txns)),
		Total:        len(txns),
	}

	for _, txn := range txns {
		resp.Transactions = append(resp.Transactions, transactionResponse(&txn))
	}

	return c.JSON(resp)
}

func (h *Handler) AddMoney(c *fiber.Ctx) error {
	ctx := c.UserContext()

	userID := c.Get(userIDHeader)
	if userID == "" {
		return badRequest(c, constants.ErrCodeInvalidRequestBody)
	}

	var request AddMoneyRequest
	if err := c.BodyParser(&request); err != nil {
		h.logger.Warn("Failed to parse body",
			zap.Error(err),
			zap.String("body", string(c.Body())))
		return badRequest(c, constants.ErrCodeInvalidRequestBody)
	}

	amount, err := decimal.NewFromString(request.Amount)
	if err != nil {
		return badRequest(c, constants.ErrCodeInvalidAmount)
	}

	result, err := h.topups.CreateOrder(ctx, service.CreateOrderCommand{UserID: userID, Amount: amount})
	if err != nil {
		h.logger.Error("Failed to create top-up order",
			zap.Error(err),
			zap.String("userID", userID))
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(AddMoneyResponse{
		OrderID:     result.OrderID,
		Amount:      result.Amount.StringFixed(2),
		BonusAmount: result.BonusAmount.StringFixed(2),
		Currency:    result.Currency,
		KeyID:       result.KeyID,
	})
}

// VerifyPayment is the checkout callback: the client posts the
// provider's signature over "<order_id>|<payment_id>". A bad signature
// fails the order immediately since the callback cannot be trusted.
func (h *Handler) VerifyPayment(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var request VerifyPaymentRequest
	if err := c.BodyParser(&request); err != nil {
		return badRequest(c, constants.ErrCodeInvalidRequestBody)
	}

	if request.OrderID == "" || request.PaymentID == "" {
		return badRequest(c, constants.ErrCodeInvalidRequestBody)
	}

	payload := []byte(request.OrderID + "|" + request.PaymentID)
	if !paymentgateway.VerifySignature(h.gwCfg.KeySecret, payload, request.Signature) {
		h.logger.Warn("Checkout callback signature mismatch",
			zap.String("orderID", request.OrderID))

		if _, err := h.ledger.MarkFailed(ctx, service.MarkFailedCommand{
			OrderID: request.OrderID,
			Reason:  "signature verification failed",
		}); err != nil && !errors.Is(err, service.ErrTransactionNotFound) && !errors.Is(err, service.ErrAlreadyTerminal) {
			return err
		}

		return badRequest(c, constants.ErrCodeInvalidSignature)
	}

	settled, err := h.ledger.CompleteSuccess(ctx, service.CompleteSuccessCommand{
		OrderID:   request.OrderID,
		PaymentID: request.PaymentID,
	})
	if err != nil {
		if errors.Is(err, service.ErrTransactionNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"code":    constants.ErrCodeTransactionNotFound,
				"message": constants.GetErrorMessage(constants.ErrCodeTransactionNotFound),
			})
		}
		// The order was already failed, typically by the staleness
		// sweep before the customer finished checkout.
		if errors.Is(err, service.ErrAlreadyTerminal) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"code":    constants.ErrCodeAlreadyTerminal,
				"message": constants.GetErrorMessage(constants.ErrCodeAlreadyTerminal),
			})
		}
		return err
	}

	return c.JSON(VerifyPaymentResponse{OrderID: request.OrderID, Status: string(settled.Status)})
}

// Webhook receives provider push notifications, authenticated by an
// HMAC over the raw body. Valid deliveries always get a 200 so the
// provider stops redelivering, even when the order is unknown.
func (h *Handler) Webhook(c *fiber.Ctx) error {
	ctx := c.UserContext()

	raw := c.Body()
	signature := c.Get(signatureHeader)

	if !paymentgateway.VerifySignature(h.gwCfg.WebhookSecret, raw, signature) {
		h.logger.Warn("Webhook signature mismatch")
		return badRequest(c, constants.ErrCodeInvalidSignature)
	}

	var payload WebhookPayload
	if err := c.BodyParser(&payload); err != nil {
		return badRequest(c, constants.ErrCodeInvalidRequestBody)
	}

	switch payload.Event {
	case webhookEventCaptured:
		observed := decimal.NewFromInt(payload.Payment.Amount).Div(decimal.NewFromInt(100))
		_, err := h.ledger.CompleteSuccess(ctx, service.CompleteSuccessCommand{
			OrderID:        payload.OrderID,
			PaymentID:      payload.Payment.ID,
			ObservedAmount: &observed,
		})
		if err != nil && !errors.Is(err, service.ErrTransactionNotFound) && !errors.Is(err, service.ErrAlreadyTerminal) {
			return err
		}

	case webhookEventFailed:
		_, err := h.ledger.MarkFailed(ctx, service.MarkFailedCommand{
			OrderID: payload.OrderID,
			Reason:  "provider webhook reported failure",
		})
		if err != nil && !errors.Is(err, service.ErrTransactionNotFound) && !errors.Is(err, service.ErrAlreadyTerminal) {
			return err
		}

	default:
		h.logger.Info("Ignoring webhook event", zap.String("event", payload.Event))
	}

	return c.SendStatus(fiber.StatusOK)
}

func (h *Handler) DebitFee(c *fiber.Ctx) error {
	ctx := c.UserContext()

	userID := c.Get(userIDHeader)
	if userID == "" {
		return badRequest(c, constants.ErrCodeInvalidRequestBody)
	}

	var request DebitFeeRequest
	if err := c.BodyParser(&request); err != nil {
		return badRequest(c, constants.ErrCodeInvalidRequestBody)
	}

	cmd := service.DebitForFeeCommand{UserID: userID, Description: request.Description}

	if request.Amount != "" {
		amount, err := decimal.NewFromString(request.Amount)
		if err != nil {
			return badRequest(c, constants.ErrCodeInvalidAmount)
		}
		cmd.Amount = amount
	}

	if request.QuantityKg != "" {
		quantity, err := decimal.NewFromString(request.QuantityKg)
		if err != nil {
			return badRequest(c, constants.ErrCodeInvalidAmount)
		}
		cmd.QuantityKg = quantity
	}

	txn, err := h.wallets.DebitForFee(ctx, cmd)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(DebitFeeResponse{
		TransactionID: txn.ID,
		Amount:        txn.Amount.StringFixed(2),
		Status:        string(txn.Status),
	})
}

func badRequest(c *fiber.Ctx, code string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"code":    code,
		"message": constants.GetErrorMessage(code),
	})
}

func walletResponse(w *model.Wallet) WalletResponse {
	return WalletResponse{
		UserID:  w.UserID,
		Balance: w.Balance.StringFixed(2),
		Active:  w.Active,
	}
}

func transactionResponse(t *model.WalletTransaction) TransactionResponse {
	resp := TransactionResponse{
		ID:          t.ID,
		Amount:      t.Amount.StringFixed(2),
		Kind:        string(t.Kind),
		Status:      string(t.Status),
		Description: t.Description,
		CreatedAt:   t.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if t.OrderID != nil {
		resp.OrderID = *t.OrderID
	}
	return resp
}
