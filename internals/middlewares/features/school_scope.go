package middleware

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"

	helperAuth "schoolku_backend/internals/helpers/auth"
)

/* ==========================
   SCOPE CHECK
========================== */

// RequirePathScopeMatch: :school_id di path wajib sama dengan school_id di token.
// Menebak UUID school lain selalu 403, tidak ada pengecualian role.
func RequirePathScopeMatch() fiber.Handler {
	return func(c *fiber.Ctx) error {
		pathID := strings.TrimSpace(c.Params("school_id"))
		if pathID == "" {
			return c.Next()
		}

		ac, err := helperAuth.FromFiber(c)
		if err != nil {
			return err
		}
		if !strings.EqualFold(pathID, ac.SchoolID.String()) {
			log.Printf("[SCOPE] tolak user=%s token_school=%s path_school=%s", ac.UserID, ac.SchoolID, pathID)
			return fiber.NewError(fiber.StatusForbidden, "Scope school tidak cocok dengan path")
		}
		return c.Next()
	}
}

/* ==========================
   ROLE CHECK
========================== */

// RequireRoles: role di AuthContext harus salah satu dari roles.
// errorMessage opsional; default pesan generik.
func RequireRoles(roles []string, errorMessage ...string) fiber.Handler {
	msg := "Akses ditolak untuk role ini"
	if len(errorMessage) > 0 && strings.TrimSpace(errorMessage[0]) != "" {
		msg = errorMessage[0]
	}
	return func(c *fiber.Ctx) error {
		ac, err := helperAuth.FromFiber(c)
		if err != nil {
			return err
		}
		if !ac.HasRole(roles...) {
			return fiber.NewError(fiber.StatusForbidden, msg)
		}
		return c.Next()
	}
}
