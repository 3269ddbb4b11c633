// file: internals/route/index.go
package routes

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"schoolku_backend/internals/configs"
	"schoolku_backend/internals/constants"
	authMiddleware "schoolku_backend/internals/middlewares/auth"
	featuresMiddleware "schoolku_backend/internals/middlewares/features"
	routeDetails "schoolku_backend/internals/route/details"
)

var startTime time.Time

func SetupRoutes(app *fiber.App, db *gorm.DB) {
	startTime = time.Now()

	BaseRoutes(app, db)

	log.Println("[INFO] Building services...")
	svc := routeDetails.NewServices(db)

	jwt := authMiddleware.AuthJWT(authMiddleware.AuthJWTOpts{
		Secret:              configs.JWTSecret,
		BlacklistChecker:    configs.IsTokenBlacklisted,
		AllowCookieFallback: true,
	})

	// ===================== PUBLIC (webhook gateway) =====================
	log.Println("[INFO] Setting up WEBHOOK group...")
	webhooks := app.Group("/api/webhooks")

	// ===================== USER (per school) =====================
	log.Println("[INFO] Setting up USER group (Auth + Scope + RoleCheck)...")
	user := app.Group("/api/u/:school_id",
		jwt,
		featuresMiddleware.RequirePathScopeMatch(),
		featuresMiddleware.RequireRoles(constants.MemberRoles, "Akses khusus anggota sekolah"),
	)

	// ===================== ADMIN (per school) =====================
	log.Println("[INFO] Setting up ADMIN group (Auth + Scope + RoleCheck)...")
	admin := app.Group("/api/a/:school_id",
		jwt,
		featuresMiddleware.RequirePathScopeMatch(),
		featuresMiddleware.RequireRoles(constants.StaffRoles, "Akses khusus staf sekolah"),
	)

	// ===================== MOUNT ROUTES =====================
	log.Println("[INFO] Mounting Finance routes...")
	routeDetails.FinanceWebhookRoutes(webhooks, svc)
	routeDetails.FinanceUserRoutes(user, svc)
	routeDetails.FinanceAdminRoutes(admin, svc)

	log.Println("[INFO] Mounting Operations routes...")
	routeDetails.OperationsUserRoutes(user, svc)
	routeDetails.OperationsAdminRoutes(admin, svc)
}
