package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	helperAuth "schoolku_backend/internals/helpers/auth"
	"schoolku_backend/internals/helpers/dbtime"
)

type AuthJWTOpts struct {
	Secret              string
	BlacklistChecker    func(rawToken string) (bool, error) // return true if blacklisted
	AllowCookieFallback bool                                // pakai cookie access_token jika tidak ada Bearer
}

func AuthJWT(o AuthJWTOpts) fiber.Handler {
	secret := strings.TrimSpace(o.Secret)
	if secret == "" {
		panic("AuthJWT: Secret wajib diisi")
	}

	return func(c *fiber.Ctx) error {
		// 1) Ambil token: Authorization: Bearer xxx (atau cookie jika diizinkan)
		raw := ""
		if authz := strings.TrimSpace(c.Get(fiber.HeaderAuthorization)); strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			raw = strings.TrimSpace(authz[7:])
		} else if o.AllowCookieFallback {
			raw = strings.TrimSpace(c.Cookies("access_token"))
		}
		if raw == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
		}

		// 2) Cek blacklist (opsional)
		if o.BlacklistChecker != nil {
			if black, err := o.BlacklistChecker(raw); err == nil && black {
				return fiber.NewError(fiber.StatusUnauthorized, "Token revoked")
			}
		}

		// 3) Parse + verifikasi algoritma (exp dicek oleh MapClaims.Valid)
		tok, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
			}
			return []byte(secret), nil
		})
		if err != nil || !tok.Valid {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid token")
		}

		claims, ok := tok.Claims.(jwt.MapClaims)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid token claims")
		}

		ac, err := authContextFromClaims(claims)
		if err != nil {
			return err
		}

		c.Locals("jwt_claims", claims)
		if tz := strClaim(claims, "school_timezone"); tz != "" {
			c.Locals(dbtime.LocSchoolTimezone, tz)
		}
		helperAuth.SetAuthContext(c, ac)

		return c.Next()
	}
}

func authContextFromClaims(claims jwt.MapClaims) (helperAuth.AuthContext, error) {
	// user_id: ambil id/sub/user_id dalam urutan preferensi
	rawUser := ""
	switch {
	case strClaim(claims, "id") != "":
		rawUser = strClaim(claims, "id")
	case strClaim(claims, "sub") != "":
		rawUser = strClaim(claims, "sub")
	case strClaim(claims, "user_id") != "":
		rawUser = strClaim(claims, "user_id")
	}
	userID, err := uuid.Parse(rawUser)
	if err != nil {
		return helperAuth.AuthContext{}, fiber.NewError(fiber.StatusUnauthorized, "user_id pada token tidak valid")
	}

	schoolID, err := uuid.Parse(strClaim(claims, "school_id"))
	if err != nil {
		return helperAuth.AuthContext{}, fiber.NewError(fiber.StatusUnauthorized, "school_id pada token tidak valid")
	}

	role := strings.ToLower(strClaim(claims, "role"))
	if role == "" {
		// token lama kirim roles: ["admin", ...]; ambil yang pertama
		if roles := readStringSlice(claims["roles"]); len(roles) > 0 {
			role = strings.ToLower(roles[0])
		}
	}
	if role == "" {
		return helperAuth.AuthContext{}, fiber.NewError(fiber.StatusUnauthorized, "Role not found")
	}

	return helperAuth.AuthContext{
		UserID:   userID,
		SchoolID: schoolID,
		Role:     role,
		Email:    strClaim(claims, "email"),
	}, nil
}

// util kecil untuk ambil string claim
func strClaim(m jwt.MapClaims, key string) string {
	if v, ok := m[key]; ok {
		if s, ok := v.(string); ok {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

// util: ubah nilai interface{} → []string (robust untuk []string atau []any)
func readStringSlice(v any) []string {
	out := make([]string, 0)
	switch t := v.(type) {
	case []string:
		for _, s := range t {
			s = strings.TrimSpace(s)
			if s != "" {
				out = append(out, s)
			}
		}
	case []any:
		for _, it := range t {
			if s, ok := it.(string); ok {
				s = strings.TrimSpace(s)
				if s != "" {
					out = append(out, s)
				}
			}
		}
	}
	return out
}
