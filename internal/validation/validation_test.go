package validation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFlightNumber(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		valid     bool
		sanitized string
	}{
		{"two letter code", "AA123", true, "AA123"},
		{"three letter code", "BAW12", true, "BAW12"},
		{"lowercase input uppercased", "ba1234", true, "BA1234"},
		{"surrounding whitespace", "  dl404  ", true, "DL404"},
		{"single digit", "UA1", true, "UA1"},
		{"too short", "A1", false, ""},
		{"too long", "ABCD1234567", false, ""},
		{"no digits", "ABCD", false, ""},
		{"digits first", "123AA", false, ""},
		{"five digits", "AA12345", false, ""},
		{"empty", "", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := FlightNumber(tt.raw)
			assert.Equal(t, tt.valid, res.IsValid)
			if tt.valid {
				assert.Equal(t, tt.sanitized, res.Sanitized)
				assert.Empty(t, res.Err)
			} else {
				assert.NotEmpty(t, res.Err)
			}
		})
	}
}

func TestEmail(t *testing.T) {
	res := Email("  User@Example.COM ")
	assert.True(t, res.IsValid)
	assert.Equal(t, "user@example.com", res.Sanitized)

	// optional field: empty is valid
	assert.True(t, Email("").IsValid)

	assert.False(t, Email("not-an-email").IsValid)
	assert.False(t, Email("missing@tld").IsValid)
	assert.False(t, Email("two words@example.com").IsValid)

	long := "a"
	for len(long) < 250 {
		long += "a"
	}
	assert.False(t, Email(long+"@example.com").IsValid)
}

func TestPhone(t *testing.T) {
	assert.True(t, Phone("+1 (555) 123-4567").IsValid)
	assert.True(t, Phone("5551234567").IsValid)
	assert.True(t, Phone("").IsValid) // optional

	assert.False(t, Phone("555-1234").IsValid, "too few digits")
	assert.False(t, Phone("1234567890123456").IsValid, "too many digits")
	assert.False(t, Phone("555-CALL-NOW").IsValid, "letters not allowed")
	assert.False(t, Phone("+1 (555) 123-4567 ext 9999").IsValid, "over 20 chars")
}

func TestName(t *testing.T) {
	res := Name("  Jamie   Rivera ")
	assert.True(t, res.IsValid)
	assert.Equal(t, "Jamie Rivera", res.Sanitized)

	assert.False(t, Name("J").IsValid)
	assert.False(t, Name("").IsValid)

	long := ""
	for len(long) < 101 {
		long += "x"
	}
	assert.False(t, Name(long).IsValid)

	// angle brackets stripped before the length check
	res = Name("<b>Al</b>")
	assert.True(t, res.IsValid)
	assert.Equal(t, "bAl/b", res.Sanitized)
}

func TestLocationText(t *testing.T) {
	res := LocationText("  Terminal 4,  JFK ")
	assert.True(t, res.IsValid)
	assert.Equal(t, "Terminal 4, JFK", res.Sanitized)

	assert.False(t, LocationText("JK").IsValid)
	assert.False(t, LocationText("").IsValid)
}

func TestPassengers(t *testing.T) {
	for _, raw := range []interface{}{0, 101, "abc", "", nil, 2.5} {
		res := Passengers(raw)
		assert.False(t, res.IsValid, "expected %v to be invalid", raw)
		assert.Equal(t, 1, res.Value, "fallback value for %v", raw)
	}

	for _, raw := range []interface{}{1, 100, "42", float64(7)} {
		res := Passengers(raw)
		assert.True(t, res.IsValid, "expected %v to be valid", raw)
	}
	assert.Equal(t, 42, Passengers("42").Value)
}

func TestPickupDate(t *testing.T) {
	now := time.Date(2025, 1, 6, 15, 30, 0, 0, time.UTC)

	assert.True(t, PickupDate("2025-01-06", now).IsValid, "today is allowed")
	assert.True(t, PickupDate("2025-06-15", now).IsValid)
	assert.True(t, PickupDate("2027-01-06", now).IsValid, "exactly two years out")

	assert.False(t, PickupDate("2025-01-05", now).IsValid, "yesterday")
	assert.False(t, PickupDate("2027-01-07", now).IsValid, "past two years")
	assert.False(t, PickupDate("not-a-date", now).IsValid)
}

func TestRecurringEndDate(t *testing.T) {
	pickup := time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)

	assert.True(t, RecurringEndDate("2025-01-27", pickup).IsValid)
	assert.True(t, RecurringEndDate("2030-01-06", pickup).IsValid, "exactly five years out")

	assert.False(t, RecurringEndDate("2025-01-06", pickup).IsValid, "must be strictly after pickup")
	assert.False(t, RecurringEndDate("2025-01-05", pickup).IsValid)
	assert.False(t, RecurringEndDate("2030-01-07", pickup).IsValid, "past five years")
	assert.False(t, RecurringEndDate("", pickup).IsValid)
}

func TestURL(t *testing.T) {
	assert.True(t, URL("https://example.com/receipt").IsValid)
	assert.True(t, URL("http://example.com").IsValid)
	assert.True(t, URL("").IsValid) // optional

	assert.False(t, URL("ftp://example.com").IsValid)
	assert.False(t, URL("javascript:alert(1)").IsValid)
	assert.False(t, URL("https://example.com/?q=javascript:alert(1)").IsValid)
	assert.False(t, URL("data:text/html;base64,xx").IsValid)
	assert.False(t, URL("vbscript:msgbox").IsValid)
}

// Re-validating a sanitized output must report valid again.
func TestSanitizedOutputIdempotent(t *testing.T) {
	now := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	pickup := now

	cases := []struct {
		name     string
		validate func(string) Result
		input    string
	}{
		{"flight number", FlightNumber, " ba123 "},
		{"email", Email, " User@Example.com "},
		{"phone", Phone, " +1 555 123 4567 "},
		{"name", Name, "  Sam   Okafor  "},
		{"location", LocationText, "  Gate  B,   LAX  "},
		{"url", URL, " https://example.com/a "},
		{"pickup date", func(s string) Result { return PickupDate(s, now) }, " 2025-02-01 "},
		{"end date", func(s string) Result { return RecurringEndDate(s, pickup) }, " 2025-03-01 "},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			first := tc.validate(tc.input)
			assert.True(t, first.IsValid)
			second := tc.validate(first.Sanitized)
			assert.True(t, second.IsValid)
			assert.Equal(t, first.Sanitized, second.Sanitized)
		})
	}
}
