// file: internals/helpers/auth/auth_context.go
package helper

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Nama locals yang diisi middleware AuthJWT
const (
	LocAuthContext = "auth_context" // AuthContext
	LocUserID      = "user_id"      // string
	LocSchoolID    = "school_id"    // string
	LocRole        = "role"         // string
)

// AuthContext identitas caller yang sudah diverifikasi. Diteruskan eksplisit
// ke setiap service; tidak ada state global per request.
type AuthContext struct {
	UserID   uuid.UUID `json:"user_id"`
	SchoolID uuid.UUID `json:"school_id"`
	Role     string    `json:"role"`
	Email    string    `json:"email,omitempty"`
}

func (a AuthContext) HasRole(roles ...string) bool {
	r := strings.ToLower(strings.TrimSpace(a.Role))
	for _, want := range roles {
		if r == strings.ToLower(want) {
			return true
		}
	}
	return false
}

func (a AuthContext) Valid() bool {
	return a.UserID != uuid.Nil && a.SchoolID != uuid.Nil && strings.TrimSpace(a.Role) != ""
}

// ActorID dipakai untuk kolom performed_by / collected_by.
func (a AuthContext) ActorID() *uuid.UUID {
	if a.UserID == uuid.Nil {
		return nil
	}
	id := a.UserID
	return &id
}

/* ===============================
   fiber.Ctx <-> AuthContext
=================================*/

func SetAuthContext(c *fiber.Ctx, ac AuthContext) {
	c.Locals(LocAuthContext, ac)
	c.Locals(LocUserID, ac.UserID.String())
	c.Locals(LocSchoolID, ac.SchoolID.String())
	c.Locals(LocRole, ac.Role)
	c.SetUserContext(WithAuthContext(c.UserContext(), ac))
}

// FromFiber mengambil AuthContext yang di-hydrate AuthJWT; 401 kalau belum ada.
func FromFiber(c *fiber.Ctx) (AuthContext, error) {
	if v, ok := c.Locals(LocAuthContext).(AuthContext); ok && v.Valid() {
		return v, nil
	}
	return AuthContext{}, fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
}

// SchoolIDFromPath parse :school_id; selalu sama dengan token karena RequirePathScopeMatch.
func SchoolIDFromPath(c *fiber.Ctx) (uuid.UUID, error) {
	raw := strings.TrimSpace(c.Params("school_id"))
	if raw == "" {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "school_id missing in path")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "school_id tidak valid")
	}
	return id, nil
}

/* ===============================
   context.Context
=================================*/

type ctxKey struct{}

func WithAuthContext(ctx context.Context, ac AuthContext) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxKey{}, ac)
}

func FromContext(ctx context.Context) (AuthContext, bool) {
	if ctx == nil {
		return AuthContext{}, false
	}
	ac, ok := ctx.Value(ctxKey{}).(AuthContext)
	return ac, ok
}

// SchoolIDFromContext dipakai tenant guard di layer GORM.
func SchoolIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	ac, ok := FromContext(ctx)
	if !ok || ac.SchoolID == uuid.Nil {
		return uuid.Nil, false
	}
	return ac.SchoolID, true
}
