package api

import (
	v1 "github.com/adi-0903/wallet-service/internal/api/v1"
	"github.com/gofiber/fiber/v2"
)

func SetupRoutes(app *fiber.App, handler *v1.Handler) {
	app.Get("/ping", handler.Pong)

	app.Post("/v1/wallet/provision", handler.ProvisionWallet)
	app.Get("/v1/wallet", handler.GetWallet)
	app.Get("/v1/wallet/transactions", handler.ListTransactions)
	app.Post("/v1/wallet/add-money", handler.AddMoney)
	app.Post("/v1/wallet/verify-payment", handler.VerifyPayment)
	app.Post("/v1/wallet/debit-fee", handler.DebitFee)

	app.Post("/v1/webhook/payment", handler.Webhook)
}
