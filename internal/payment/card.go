// Package payment validates the simulated card form and derives the digest
// stored in place of the card number.
package payment

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"
)

// Payment card numbers are 12 to 19 digits long (ISO/IEC 7812).
const (
	minCardDigits = 12
	maxCardDigits = 19
)

// IsValidCardNumber strips every non-digit and runs the Luhn checksum over
// what is left. Input with fewer than minCardDigits digits is rejected before
// the checksum, since an empty digit string would otherwise sum to zero.
func IsValidCardNumber(raw string) bool {
	digits := Digits(raw)
	if len(digits) < minCardDigits || len(digits) > maxCardDigits {
		return false
	}

	sum := 0
	for i := 0; i < len(digits); i++ {
		n := int(digits[len(digits)-1-i] - '0')
		if i%2 == 1 {
			n *= 2
			if n > 9 {
				n -= 9
			}
		}
		sum += n
	}
	return sum%10 == 0
}

// IsValidExpiry accepts "MM/YY" and reports whether the card is still valid
// in now's month. The current month itself is valid.
func IsValidExpiry(mmYY string, now time.Time) bool {
	month, year, ok := parseExpiry(mmYY)
	if !ok {
		return false
	}

	currentYear := now.Year() % 100
	currentMonth := int(now.Month())
	if year < currentYear {
		return false
	}
	if year == currentYear && month < currentMonth {
		return false
	}
	return true
}

func parseExpiry(mmYY string) (month, year int, ok bool) {
	parts := strings.Split(strings.TrimSpace(mmYY), "/")
	if len(parts) != 2 {
		return 0, 0, false
	}
	mm, yy := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	if len(mm) == 0 || len(mm) > 2 || len(yy) != 2 || !allDigits(mm) || !allDigits(yy) {
		return 0, 0, false
	}

	month, err := strconv.Atoi(mm)
	if err != nil || month < 1 || month > 12 {
		return 0, 0, false
	}
	year, err = strconv.Atoi(yy)
	if err != nil {
		return 0, 0, false
	}
	return month, year, true
}

// IsValidCVC reports whether value is exactly three decimal digits.
func IsValidCVC(value string) bool {
	return len(value) == 3 && allDigits(value)
}

// Digest returns the hex SHA-256 of the card's digits. Spacing and dashes do
// not change the digest.
func Digest(cardNumber string) string {
	sum := sha256.Sum256([]byte(Digits(cardNumber)))
	return hex.EncodeToString(sum[:])
}

// Digits returns only the decimal digits of s.
func Digits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
