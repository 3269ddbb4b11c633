package helper

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// ParseUUIDParam parse path param wajib (400 kalau kosong / bukan UUID).
func ParseUUIDParam(c *fiber.Ctx, name string) (uuid.UUID, error) {
	raw := strings.TrimSpace(c.Params(name))
	if raw == "" {
		return uuid.Nil, Validation("%s wajib diisi", name)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, Validation("%s tidak valid", name)
	}
	return id, nil
}

// ParseOptionalUUIDQuery: query kosong = nil, format salah = 400.
func ParseOptionalUUIDQuery(c *fiber.Ctx, name string) (*uuid.UUID, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, Validation("%s tidak valid", name)
	}
	return &id, nil
}
