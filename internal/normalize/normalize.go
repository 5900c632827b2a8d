// Package normalize holds the pure functions that turn raw user input into
// the canonical values stored for events and bookings.
package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"devevent/internal/domain"
)

var (
	nonSlugRun = regexp.MustCompile(`[^a-z0-9]+`)
	slugRegex  = regexp.MustCompile(`^[a-z0-9-]+$`)

	strictDateRegex  = regexp.MustCompile(`^(\d{4})-(0[1-9]|1[0-2])-(0[1-9]|[12]\d|3[01])$`)
	lenientDateRegex = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})$`)

	strictTimeRegex = regexp.MustCompile(`^([01]?\d|2[0-3]):([0-5]\d)$`)
	// An optional am/pm marker directly after the clock switches to 12-hour rules.
	lenientTimeRegex = regexp.MustCompile(`(\d{1,2}):(\d{1,2})(?:\s*([AaPp])\.?[Mm]\.?)?`)

	emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// DeriveSlug lowercases title, collapses every run of characters outside [a-z0-9]
// into a single hyphen and trims hyphens at both ends. A title without any
// alphanumeric character yields "".
func DeriveSlug(title string) string {
	slug := nonSlugRun.ReplaceAllString(strings.ToLower(title), "-")
	return strings.Trim(slug, "-")
}

// SanitizeSlug trims and lowercases raw and reports whether the result only
// contains [a-z0-9-].
func SanitizeSlug(raw string) (string, bool) {
	slug := strings.ToLower(strings.TrimSpace(raw))
	if !slugRegex.MatchString(slug) {
		return "", false
	}
	return slug, true
}

// NormalizeDate returns raw as a canonical YYYY-MM-DD date. Single-digit month
// and day are accepted and zero-padded. Dates that do not exist on the
// calendar (2026-02-30) are rejected with domain.ErrInvalidDate.
func NormalizeDate(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	m := strictDateRegex.FindStringSubmatch(raw)
	if m == nil {
		m = lenientDateRegex.FindStringSubmatch(raw)
	}
	if m == nil {
		return "", domain.ErrInvalidDate
	}
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return "", domain.ErrInvalidDate
	}

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return "", domain.ErrInvalidDate
	}
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day), nil
}

// NormalizeTime returns raw as a canonical 24-hour HH:MM time.
//
// Strict H:MM / HH:MM input is accepted directly. Otherwise the first
// H:M-shaped substring is used; when it is followed by an am/pm marker the
// hour is read on a 12-hour clock and must be in 1..12. Anything else fails
// with domain.ErrInvalidTime.
func NormalizeTime(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if m := strictTimeRegex.FindStringSubmatch(raw); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		return formatClock(hour, minute), nil
	}

	m := lenientTimeRegex.FindStringSubmatch(raw)
	if m == nil {
		return "", domain.ErrInvalidTime
	}
	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])

	switch strings.ToLower(m[3]) {
	case "a":
		if hour < 1 || hour > 12 {
			return "", domain.ErrInvalidTime
		}
		if hour == 12 {
			hour = 0
		}
	case "p":
		if hour < 1 || hour > 12 {
			return "", domain.ErrInvalidTime
		}
		if hour != 12 {
			hour += 12
		}
	}

	if hour < 0 || hour >= 24 || minute < 0 || minute >= 60 {
		return "", domain.ErrInvalidTime
	}
	return formatClock(hour, minute), nil
}

func formatClock(hour, minute int) string {
	return fmt.Sprintf("%02d:%02d", hour, minute)
}

// NormalizeEmail trims and lowercases raw.
func NormalizeEmail(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// ValidEmail reports whether email has the local@domain.tld shape.
func ValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}
