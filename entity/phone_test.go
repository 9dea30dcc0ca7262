package entity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"cinepay/entity"
)

func TestNormalizeMSISDN(t *testing.T) {
	assert.Equal(t, "074694721", entity.NormalizeMSISDN("+074 694 721"))
	assert.Equal(t, "062648538", entity.NormalizeMSISDN("062648538"))
}

func TestValidPaymentPhone(t *testing.T) {
	testCases := []struct {
		name   string
		method entity.PaymentMethod
		phone  string
		valid  bool
	}{
		{name: "airtel ok", method: entity.MethodAirtelMoney, phone: "071234567", valid: true},
		{name: "moov ok", method: entity.MethodMoovMoney, phone: "061234567", valid: true},
		{name: "too short", method: entity.MethodAirtelMoney, phone: "0712345", valid: false},
		{name: "too long", method: entity.MethodAirtelMoney, phone: "0712345678", valid: false},
		{name: "wrong prefix for airtel", method: entity.MethodAirtelMoney, phone: "061234567", valid: false},
		{name: "wrong prefix for moov", method: entity.MethodMoovMoney, phone: "071234567", valid: false},
		{name: "non digits", method: entity.MethodAirtelMoney, phone: "0712a4567", valid: false},
		{name: "normalized before checking", method: entity.MethodAirtelMoney, phone: "+07 123 45 67", valid: true},
		{name: "unknown method", method: entity.PaymentMethod("orange_money"), phone: "071234567", valid: false},
		{name: "empty", method: entity.MethodMoovMoney, phone: "", valid: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.valid, entity.ValidPaymentPhone(tc.method, tc.phone))
		})
	}
}

func TestBookingRetryable(t *testing.T) {
	booking := entity.Booking{PaymentStatus: entity.PaymentStatusPending, Status: entity.BookingPending}
	assert.True(t, booking.Retryable())

	booking.PaymentStatus = entity.PaymentStatusCompleted
	assert.False(t, booking.Retryable())

	booking = entity.Booking{PaymentStatus: entity.PaymentStatusPending, Status: entity.BookingCancelled}
	assert.False(t, booking.Retryable())
}
