package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schoolku_backend/internals/constants"
	helper "schoolku_backend/internals/helpers"
	helperAuth "schoolku_backend/internals/helpers/auth"
	featuresMiddleware "schoolku_backend/internals/middlewares/features"
)

const testSecret = "rahasia-test"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return raw
}

func claimsFor(userID, schoolID uuid.UUID, role string) jwt.MapClaims {
	return jwt.MapClaims{
		"id":        userID.String(),
		"school_id": schoolID.String(),
		"role":      role,
		"exp":       time.Now().Add(time.Hour).Unix(),
	}
}

func newTestApp(blacklist func(string) (bool, error)) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: helper.ErrorHandler})
	admin := app.Group("/api/a/:school_id",
		AuthJWT(AuthJWTOpts{Secret: testSecret, BlacklistChecker: blacklist, AllowCookieFallback: true}),
		featuresMiddleware.RequirePathScopeMatch(),
		featuresMiddleware.RequireRoles(constants.StaffRoles),
	)
	admin.Get("/whoami", func(c *fiber.Ctx) error {
		ac, err := helperAuth.FromFiber(c)
		if err != nil {
			return err
		}
		return c.SendString(ac.Role + ":" + ac.SchoolID.String())
	})
	return app
}

func call(t *testing.T, app *fiber.App, path, token string) int {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestAuthJWTAndScope(t *testing.T) {
	app := newTestApp(nil)
	userID, schoolA, schoolB := uuid.New(), uuid.New(), uuid.New()
	pathA := "/api/a/" + schoolA.String() + "/whoami"

	t.Run("tanpa token", func(t *testing.T) {
		assert.Equal(t, fiber.StatusUnauthorized, call(t, app, pathA, ""))
	})

	t.Run("secret salah", func(t *testing.T) {
		tok := signToken(t, "lain", claimsFor(userID, schoolA, constants.RoleAdmin))
		assert.Equal(t, fiber.StatusUnauthorized, call(t, app, pathA, tok))
	})

	t.Run("kedaluwarsa", func(t *testing.T) {
		claims := claimsFor(userID, schoolA, constants.RoleAdmin)
		claims["exp"] = time.Now().Add(-time.Minute).Unix()
		assert.Equal(t, fiber.StatusUnauthorized, call(t, app, pathA, signToken(t, testSecret, claims)))
	})

	t.Run("school_id tidak valid di token", func(t *testing.T) {
		claims := claimsFor(userID, schoolA, constants.RoleAdmin)
		claims["school_id"] = "bukan-uuid"
		assert.Equal(t, fiber.StatusUnauthorized, call(t, app, pathA, signToken(t, testSecret, claims)))
	})

	t.Run("school lain di path", func(t *testing.T) {
		tok := signToken(t, testSecret, claimsFor(userID, schoolA, constants.RoleAdmin))
		assert.Equal(t, fiber.StatusForbidden, call(t, app, "/api/a/"+schoolB.String()+"/whoami", tok))
	})

	t.Run("role bukan staf", func(t *testing.T) {
		tok := signToken(t, testSecret, claimsFor(userID, schoolA, constants.RoleStudent))
		assert.Equal(t, fiber.StatusForbidden, call(t, app, pathA, tok))
	})

	t.Run("roles array token lama", func(t *testing.T) {
		claims := claimsFor(userID, schoolA, "")
		delete(claims, "role")
		claims["roles"] = []string{"Accountant"}
		assert.Equal(t, fiber.StatusOK, call(t, app, pathA, signToken(t, testSecret, claims)))
	})

	t.Run("ok", func(t *testing.T) {
		tok := signToken(t, testSecret, claimsFor(userID, schoolA, constants.RoleAdmin))
		assert.Equal(t, fiber.StatusOK, call(t, app, pathA, tok))
	})
}

func TestAuthJWTBlacklist(t *testing.T) {
	userID, school := uuid.New(), uuid.New()
	tok := signToken(t, testSecret, claimsFor(userID, school, constants.RoleAdmin))
	app := newTestApp(func(raw string) (bool, error) { return raw == tok, nil })

	assert.Equal(t, fiber.StatusUnauthorized, call(t, app, "/api/a/"+school.String()+"/whoami", tok))
}

func TestAuthJWTCookieFallback(t *testing.T) {
	userID, school := uuid.New(), uuid.New()
	tok := signToken(t, testSecret, claimsFor(userID, school, constants.RoleStaff))
	app := newTestApp(nil)

	req := httptest.NewRequest("GET", "/api/a/"+school.String()+"/whoami", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: tok})
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
