// file: internals/helpers/date_range.go
package helper

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"schoolku_backend/internals/helpers/dbtime"
)

// DateRange: From inclusive, Until exclusive (sudah digeser ke awal hari berikutnya
// kalau input berupa tanggal saja).
type DateRange struct {
	From  *time.Time
	Until *time.Time
}

func (r DateRange) IsZero() bool { return r.From == nil && r.Until == nil }

// Contains cek t ada di dalam range.
func (r DateRange) Contains(t time.Time) bool {
	if r.From != nil && t.Before(*r.From) {
		return false
	}
	if r.Until != nil && !t.Before(*r.Until) {
		return false
	}
	return true
}

// ParseDateRange membaca ?startDate=&endDate= atau alias ?dateFrom=&dateTo=.
// Dua-duanya harus diterima, frontend lama masih pakai nama campuran.
func ParseDateRange(c *fiber.Ctx) (DateRange, error) {
	start := firstNonEmpty(c.Query("startDate"), c.Query("dateFrom"))
	end := firstNonEmpty(c.Query("endDate"), c.Query("dateTo"))
	return ParseDateRangeValues(start, end, dbtime.GetSchoolLocation(c))
}

func ParseDateRangeValues(start, end string, loc *time.Location) (DateRange, error) {
	if loc == nil {
		loc = time.UTC
	}
	var out DateRange

	if s := strings.TrimSpace(start); s != "" {
		t, _, err := parseDateOrTime(s, loc)
		if err != nil {
			return DateRange{}, Validation("startDate/dateFrom tidak valid (pakai YYYY-MM-DD atau RFC3339)")
		}
		out.From = &t
	}
	if s := strings.TrimSpace(end); s != "" {
		t, dateOnly, err := parseDateOrTime(s, loc)
		if err != nil {
			return DateRange{}, Validation("endDate/dateTo tidak valid (pakai YYYY-MM-DD atau RFC3339)")
		}
		// tanggal saja → inklusif sampai akhir hari
		if dateOnly {
			t = t.AddDate(0, 0, 1)
		}
		out.Until = &t
	}
	if out.From != nil && out.Until != nil && !out.From.Before(*out.Until) {
		return DateRange{}, Validation("startDate harus sebelum endDate")
	}
	return out, nil
}

func parseDateOrTime(s string, loc *time.Location) (time.Time, bool, error) {
	if t, err := time.ParseInLocation("2006-01-02", s, loc); err == nil {
		return t, true, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false, err
	}
	return t, false, nil
}
