// file: internals/helpers/dbtime/time_helper.go
package dbtime

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Nama locals mengikuti yg di-set di middleware AuthJWT
const (
	LocSchoolTimezone = "school_timezone" // string, misal "Asia/Jakarta"
	LocSchoolLoc      = "school_loc"      // *time.Location
)

const DefaultTimezone = "Asia/Jakarta"

// Ambil *time.Location berdasarkan token:
// 1) Prioritas: c.Locals("school_loc") yang diisi middleware
// 2) Kalau belum ada: coba baca "school_timezone" (string) lalu LoadLocation
// 3) Fallback: Asia/Jakarta
// 4) Fallback terakhir: time.UTC
func GetSchoolLocation(c *fiber.Ctx) *time.Location {
	if c == nil {
		return DefaultLocation()
	}

	if v := c.Locals(LocSchoolLoc); v != nil {
		if loc, ok := v.(*time.Location); ok && loc != nil {
			return loc
		}
	}

	if v := c.Locals(LocSchoolTimezone); v != nil {
		if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
			if loc, err := time.LoadLocation(strings.TrimSpace(s)); err == nil {
				// cache ke locals biar next call lebih murah
				c.Locals(LocSchoolLoc, loc)
				return loc
			}
		}
	}

	loc := DefaultLocation()
	c.Locals(LocSchoolLoc, loc)
	return loc
}

func DefaultLocation() *time.Location {
	if loc, err := time.LoadLocation(DefaultTimezone); err == nil {
		return loc
	}
	return time.UTC
}

// StartOfDay / StartOfMonth dipakai dashboard untuk window "hari ini" & "bulan ini".
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func StartOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
}

// DaysBetween menghitung jumlah hari kalender penuh dari a ke b (0 kalau b <= a).
func DaysBetween(a, b time.Time) int {
	if !b.After(a) {
		return 0
	}
	a, b = StartOfDay(a), StartOfDay(b.In(a.Location()))
	return int(b.Sub(a).Hours() / 24)
}
