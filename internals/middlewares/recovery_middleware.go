package middlewares

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"schoolku_backend/internals/configs"
)

// RecoveryMiddleware menangkap panic; stack trace hanya ke log, response tetap envelope 500
func RecoveryMiddleware() fiber.Handler {
	return recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c *fiber.Ctx, e any) {
			reqID, _ := c.Locals("reqid").(string)
			configs.LogError(configs.GetLogger(), "http", "recover", reqID, c.Path(), fmt.Errorf("panic: %v", e))
		},
	})
}
