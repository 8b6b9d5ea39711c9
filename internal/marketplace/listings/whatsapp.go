package listings

import (
	"fmt"
	"net/url"
	"strings"

	"car-mzansi-connect/internal/models"
)

// WhatsAppLink builds a wa.me link for a South African number. Non-digits are
// dropped, a leading 0 becomes 27 and 27 is prepended when missing.
func WhatsAppLink(phone, message string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)

	switch {
	case strings.HasPrefix(digits, "0"):
		digits = "27" + digits[1:]
	case strings.HasPrefix(digits, "27"):
	default:
		digits = "27" + digits
	}

	link := "https://wa.me/" + digits
	if message != "" {
		link += "?text=" + strings.ReplaceAll(url.QueryEscape(message), "+", "%20")
	}
	return link
}

// InquiryMessage is the pre-filled WhatsApp text for a listing.
func InquiryMessage(car models.Car, dealer models.Dealership) string {
	return fmt.Sprintf("Hi %s, I'm interested in the %s listed for %s. Could you please provide more information?",
		dealer.Name, car.Title(), FormatRand(car.Price))
}

// FormatRand renders whole rands as "R 599 000".
func FormatRand(amount int64) string {
	sign := ""
	if amount < 0 {
		sign, amount = "-", -amount
	}
	s := fmt.Sprintf("%d", amount)
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return sign + "R " + b.String()
}
