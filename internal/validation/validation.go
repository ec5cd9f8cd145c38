package validation

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Result is the outcome of validating one user-supplied field. Sanitization
// always precedes persistence: callers store Sanitized (or Value for numeric
// fields), never the raw input. Validators never panic or return Go errors;
// a failed check sets IsValid=false and a user-facing message in Err.
type Result struct {
	IsValid   bool
	Sanitized string
	Value     int
	Time      time.Time
	Err       string
}

func invalid(msg string) Result {
	return Result{IsValid: false, Err: msg}
}

var (
	flightNumberRe = regexp.MustCompile(`^[A-Z]{2,3}[0-9]{1,4}$`)
	emailRe        = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneCharsRe   = regexp.MustCompile(`^[0-9\s\+\-\(\)\.]+$`)
	digitsRe       = regexp.MustCompile(`[0-9]`)
	controlRe      = regexp.MustCompile(`[\x00-\x1f\x7f]`)
	spaceRe        = regexp.MustCompile(`\s+`)
)

// sanitize strips control characters and angle brackets and collapses runs of
// whitespace, then trims. Validating a sanitized value again always succeeds
// for inputs that validated once.
func sanitize(raw string) string {
	s := controlRe.ReplaceAllString(raw, "")
	s = strings.ReplaceAll(s, "<", "")
	s = strings.ReplaceAll(s, ">", "")
	s = spaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Sanitize exposes the field sanitizer for free-text values that have no
// dedicated validator, such as notes and reviews.
func Sanitize(raw string) string {
	return sanitize(raw)
}

// FlightNumber validates an airline flight number such as "AA123" or "BAW12".
func FlightNumber(raw string) Result {
	s := strings.TrimSpace(raw)
	if len(s) < 3 || len(s) > 10 {
		return invalid("flight number must be 3-10 characters")
	}
	s = strings.ToUpper(s)
	if !flightNumberRe.MatchString(s) {
		return invalid("flight number must be an airline code followed by 1-4 digits")
	}
	return Result{IsValid: true, Sanitized: s}
}

// Email validates an optional email address. Empty input is valid and
// sanitizes to the empty string.
func Email(raw string) Result {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return Result{IsValid: true, Sanitized: ""}
	}
	if len(s) > 255 {
		return invalid("email must be at most 255 characters")
	}
	if !emailRe.MatchString(s) {
		return invalid("invalid email format")
	}
	return Result{IsValid: true, Sanitized: s}
}

// Phone validates an optional phone number: 10-15 digits, allowing common
// formatting characters.
func Phone(raw string) Result {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Result{IsValid: true, Sanitized: ""}
	}
	if len(s) > 20 {
		return invalid("phone number must be at most 20 characters")
	}
	if !phoneCharsRe.MatchString(s) {
		return invalid("phone number contains invalid characters")
	}
	digits := len(digitsRe.FindAllString(s, -1))
	if digits < 10 || digits > 15 {
		return invalid("phone number must contain 10-15 digits")
	}
	return Result{IsValid: true, Sanitized: s}
}

// Name validates a required person or organization name.
func Name(raw string) Result {
	s := sanitize(raw)
	if len(s) < 2 {
		return invalid("name must be at least 2 characters")
	}
	if len(s) > 100 {
		return invalid("name must be at most 100 characters")
	}
	return Result{IsValid: true, Sanitized: s}
}

// LocationText validates a required free-text pickup or dropoff location.
func LocationText(raw string) Result {
	s := sanitize(raw)
	if len(s) < 3 {
		return invalid("location must be at least 3 characters")
	}
	if len(s) > 200 {
		return invalid("location must be at most 200 characters")
	}
	return Result{IsValid: true, Sanitized: s}
}

// Passengers validates a passenger count in [1,100]. On any failure the
// Result carries the fallback value 1 so forms can recover.
func Passengers(raw interface{}) Result {
	n, ok := toInt(raw)
	if !ok {
		return Result{IsValid: false, Value: 1, Err: "passenger count must be a number"}
	}
	if n < 1 || n > 100 {
		return Result{IsValid: false, Value: 1, Err: "passenger count must be between 1 and 100"}
	}
	return Result{IsValid: true, Value: n, Sanitized: strconv.Itoa(n)}
}

func toInt(raw interface{}) (int, bool) {
	switch v := raw.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		if v != float64(int(v)) {
			return 0, false
		}
		return int(v), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// PickupDate validates a pickup date: parseable, not before today (date-only
// comparison), at most two years out. now is injectable for tests.
func PickupDate(raw string, now time.Time) Result {
	s := strings.TrimSpace(raw)
	d, err := parseDate(s)
	if err != nil {
		return invalid("invalid pickup date")
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	if day.Before(today) {
		return invalid("pickup date cannot be in the past")
	}
	if day.After(today.AddDate(2, 0, 0)) {
		return invalid("pickup date cannot be more than 2 years in the future")
	}
	return Result{IsValid: true, Sanitized: s, Time: d}
}

// RecurringEndDate validates a recurrence end date: parseable, strictly after
// the pickup date, at most five years out from it.
func RecurringEndDate(raw string, pickup time.Time) Result {
	s := strings.TrimSpace(raw)
	d, err := parseDate(s)
	if err != nil {
		return invalid("invalid end date")
	}
	pickupDay := time.Date(pickup.Year(), pickup.Month(), pickup.Day(), 0, 0, 0, 0, time.UTC)
	endDay := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	if !endDay.After(pickupDay) {
		return invalid("end date must be after the pickup date")
	}
	if endDay.After(pickupDay.AddDate(5, 0, 0)) {
		return invalid("end date cannot be more than 5 years out")
	}
	return Result{IsValid: true, Sanitized: s, Time: d}
}

// URL validates an optional http(s) URL and rejects script-scheme payloads.
func URL(raw string) Result {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Result{IsValid: true, Sanitized: ""}
	}
	lower := strings.ToLower(s)
	for _, bad := range []string{"javascript:", "data:", "vbscript:"} {
		if strings.Contains(lower, bad) {
			return invalid("URL contains a disallowed scheme")
		}
	}
	u, err := url.Parse(s)
	if err != nil {
		return invalid("invalid URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return invalid("URL must use http or https")
	}
	if u.Host == "" {
		return invalid("invalid URL")
	}
	return Result{IsValid: true, Sanitized: s}
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02"} {
		if d, err := time.Parse(layout, s); err == nil {
			return d, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}
