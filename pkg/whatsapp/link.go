// Package whatsapp builds wa.me click-to-chat links.
package whatsapp

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	baseURL = "https://wa.me/"
	// Indian mobile numbers have ten digits without the country code.
	localDigits = 10
)

// Digits strips everything but 0-9 from a free-text phone number.
func Digits(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// International returns phone in wa.me form: digits only, led by countryCode. A local
// number gains the prefix; one that already carries it (longer than a local number) is
// kept as is, and a leading trunk 0 is dropped.
func International(countryCode, phone string) string {
	cc, digits := Digits(countryCode), Digits(phone)
	switch {
	case len(digits) > localDigits && cc != "" && strings.HasPrefix(digits, cc):
		return digits
	case len(digits) == localDigits+1 && digits[0] == '0':
		digits = digits[1:]
	}
	return cc + digits
}

// Link returns https://wa.me/<international number>?text=<message>.
func Link(countryCode, phone, message string) string {
	u := baseURL + International(countryCode, phone)
	if message == "" {
		return u
	}
	// encodeURIComponent style: spaces as %20
	return u + "?text=" + strings.ReplaceAll(url.QueryEscape(message), "+", "%20")
}

// JobEnquiry is the prefilled message a worker sends about a listing.
func JobEnquiry(siteName, jobTitle string) string {
	return fmt.Sprintf("Hello! I saw your job on %s - \"%s\". Is this still available?", siteName, jobTitle)
}
