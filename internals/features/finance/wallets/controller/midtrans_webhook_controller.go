// file: internals/features/finance/wallets/controller/midtrans_webhook_controller.go
package controller

import (
	"github.com/gofiber/fiber/v2"

	database "schoolku_backend/internals/databases"
	"schoolku_backend/internals/features/finance/wallets/dto"
	"schoolku_backend/internals/features/finance/wallets/service"
	helper "schoolku_backend/internals/helpers"
)

type WebhookController struct {
	Recharges *service.RechargeService
}

func NewWebhookController(recharges *service.RechargeService) *WebhookController {
	return &WebhookController{Recharges: recharges}
}

// POST /api/webhooks/midtrans
func (h *WebhookController) Midtrans(c *fiber.Ctx) error {
	var notif dto.MidtransNotification
	if err := c.BodyParser(&notif); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid payload: "+err.Error())
	}

	res, err := h.Recharges.HandleNotification(database.WithoutTenantScope(c.UserContext()), notif)
	if err != nil {
		// order tidak dikenal: balas 200 supaya Midtrans tidak retry terus
		if helper.IsKind(err, helper.KindNotFound) {
			return c.JSON(fiber.Map{"status": "ignored", "reason": "recharge not found"})
		}
		return helper.JsonFromError(c, err)
	}
	return c.JSON(fiber.Map{
		"status":                  "ok",
		"order_id":                res.OrderID,
		"recharge_status":         res.RechargeStatus,
		"already_applied":         res.AlreadyApplied,
		"transaction_status":      res.TransactionStatus,
		"wallet_transaction_code": res.WalletTxCode,
	})
}
