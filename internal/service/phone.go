package service

import "strings"

const DefaultCountryCode = "55"

// nationalMinDigits is the shortest national number, area code included, for
// country codes whose local numbers can begin with the country code digits.
// Brazil's area code 55 is the common case: "(55) 99123-4567".
var nationalMinDigits = map[string]int{
	"1":  10,
	"55": 10,
	"91": 10,
}

// NormalizePhone reduces raw to digits in international format without a
// leading plus: "(11) 98765-4321" becomes "5511987654321" for country code 55.
// A leading "+" or "00" marks the number as international and it is kept as
// dialed; so are numbers already carrying the country code.
func NormalizePhone(raw, countryCode string) string {
	if countryCode == "" {
		countryCode = DefaultCountryCode
	}

	raw = strings.TrimSpace(raw)
	digits := onlyDigits(raw)
	if strings.HasPrefix(raw, "+") {
		return digits
	}
	digits = strings.TrimPrefix(digits, "00")
	if digits == "" {
		return ""
	}
	if strings.HasPrefix(digits, countryCode) && len(digits)-len(countryCode) >= nationalMinDigits[countryCode] {
		return digits
	}

	digits = strings.TrimLeft(digits, "0")
	if digits == "" {
		return ""
	}
	return countryCode + digits
}

// ContactPhone returns the number a saved contact is dialed on. Contact
// phones are stored normalized, so a bare digit string is used as is; any
// other value is normalized.
func ContactPhone(stored, countryCode string) string {
	if stored != "" && onlyDigits(stored) == stored {
		return stored
	}
	return NormalizePhone(stored, countryCode)
}

func onlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
