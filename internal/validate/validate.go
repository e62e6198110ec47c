package validate

import (
	"regexp"
	"strings"

	"albumshop/internal/domain"
	"albumshop/internal/pricing"
)

var (
	reEmail  = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	reQ      = regexp.MustCompile(`^[A-Za-z0-9 _'\\-]{1,50}$`)
	reID     = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
	rePostal = regexp.MustCompile(`^[A-Za-z0-9 -]{3,10}$`)
)

const (
	MinQuantity = 1
	MaxQuantity = 99
)

func Email(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) == 0 || len(s) > 50 {
		return "", false
	}
	return s, reEmail.MatchString(s)
}

// Q validates a search query: trims, enforces allowed characters and max length
func Q(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	if len(s) > 50 {
		s = s[:50]
	}
	return s, reQ.MatchString(s)
}

// Quantity reports whether n is an acceptable cart line quantity.
func Quantity(n int) bool {
	return n >= MinQuantity && n <= MaxQuantity
}

// ID validates a simple resource identifier (uuid or seeded slug).
func ID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reID.MatchString(s)
}

// Category validates artist category enums.
func Category(s string) (string, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, c := range domain.ArtistCategories {
		if s == c {
			return s, true
		}
	}
	return "", false
}

func PostalCode(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, rePostal.MatchString(s)
}

// Date validates a YYYY-MM-DD calendar date.
func Date(s string) bool {
	_, err := pricing.ParseDate(strings.TrimSpace(s))
	return err == nil
}

// Name validates a displayable name with a reasonable max length.
func Name(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 20 {
		return "", false
	}
	return s, true
}

// Password enforces length and character classes.
func Password(s string) bool {
	l := len(s)
	if l < 8 || l > 20 {
		return false
	}
	var hasLower, hasUpper, hasDigit, hasSymbol bool
	for _, r := range s {
		switch {
		case 'a' <= r && r <= 'z':
			hasLower = true
		case 'A' <= r && r <= 'Z':
			hasUpper = true
		case '0' <= r && r <= '9':
			hasDigit = true
		default:
			hasSymbol = true
		}
	}
	return hasLower && hasUpper && hasDigit && hasSymbol
}
