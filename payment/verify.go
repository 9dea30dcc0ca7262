package payment

import (
	"context"

	"cinepay/entity"
	"cinepay/gateway"
)

// Outcome is the result of a single verification attempt.
type Outcome struct {
	Status  entity.VerifyStatus
	Message string
}

// Verifier checks the status of one in-flight payment. Both strategies
// (bill-based and booking-status fallback) hide behind this interface so the
// poll loop treats them identically, including per-attempt error tolerance.
type Verifier interface {
	Name() string
	Verify(ctx context.Context) (Outcome, error)
}

type PaymentsService interface {
	Verify(ctx context.Context, billID string) (gateway.VerifyPaymentResponse, error)
}

type BookingsService interface {
	Get(ctx context.Context, bookingID int) (entity.Booking, error)
}

type billVerifier struct {
	payments PaymentsService
	billID   string
}

// NewBillVerifier polls the payment status by bill id.
func NewBillVerifier(payments PaymentsService, billID string) Verifier {
	return billVerifier{payments: payments, billID: billID}
}

func (v billVerifier) Name() string { return "bill" }

func (v billVerifier) Verify(ctx context.Context) (Outcome, error) {
	resp, err := v.payments.Verify(ctx, v.billID)
	if err != nil {
		return Outcome{}, err
	}

	return Outcome{Status: resp.Status, Message: resp.Message}, nil
}

type bookingVerifier struct {
	bookings  BookingsService
	bookingID int
}

// NewBookingVerifier polls the booking itself and inspects its payment
// status. Used when initiation succeeded without returning a pollable bill.
func NewBookingVerifier(bookings BookingsService, bookingID int) Verifier {
	return bookingVerifier{bookings: bookings, bookingID: bookingID}
}

func (v bookingVerifier) Name() string { return "booking" }

func (v bookingVerifier) Verify(ctx context.Context) (Outcome, error) {
	booking, err := v.bookings.Get(ctx, v.bookingID)
	if err != nil {
		return Outcome{}, err
	}

	switch booking.PaymentStatus {
	case entity.PaymentStatusCompleted:
		return Outcome{Status: entity.VerifyCompleted}, nil
	case entity.PaymentStatusFailed:
		return Outcome{Status: entity.VerifyFailed, Message: "payment was declined"}, nil
	default:
		return Outcome{Status: entity.VerifyPending}, nil
	}
}
