package entity

import "strings"

const paymentPhoneLength = 9

// NormalizeMSISDN strips whitespace and a leading "+" so the number matches
// what the payment API expects (local format, e.g. "074694721").
func NormalizeMSISDN(phone string) string {
	phone = strings.ReplaceAll(phone, " ", "")
	return strings.TrimPrefix(phone, "+")
}

// ValidPaymentPhone reports whether phone is a well-formed payer number for
// the given method: exactly 9 digits, starting with the operator prefix.
func ValidPaymentPhone(method PaymentMethod, phone string) bool {
	if !method.Valid() {
		return false
	}

	phone = NormalizeMSISDN(phone)
	if len(phone) != paymentPhoneLength {
		return false
	}
	for _, r := range phone {
		if r < '0' || r > '9' {
			return false
		}
	}

	return strings.HasPrefix(phone, method.PhonePrefix())
}
