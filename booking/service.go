package booking

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"cinepay/auth"
	"cinepay/entity"
	"cinepay/gateway"
	"cinepay/payment"
)

type BookingsGateway interface {
	Create(ctx context.Context, request gateway.CreateBookingRequest) (entity.Booking, *gateway.AutoInitiatedPayment, error)
	Get(ctx context.Context, bookingID int) (entity.Booking, error)
}

type PaymentsGateway interface {
	Initiate(ctx context.Context, request gateway.InitiatePaymentRequest) (gateway.InitiatePaymentResponse, error)
	Verify(ctx context.Context, billID string) (gateway.VerifyPaymentResponse, error)
	CancelTransaction(ctx context.Context, reference string) error
}

// InitiationDeclinedError means the backend refused to start the charge; no
// polling session exists and the backend's message should be shown verbatim.
type InitiationDeclinedError struct {
	Message string
}

func (e InitiationDeclinedError) Error() string {
	return e.Message
}

// Service orchestrates the booking payment flow: creating bookings,
// triggering mobile-money charges and running confirmation polling sessions.
type Service struct {
	bookings BookingsGateway
	payments PaymentsGateway
	sessions *payment.Coordinator
	tokens   auth.TokenProvider
	bus      payment.EventBus
	validate *checkoutValidator
}

func NewService(
	bookings BookingsGateway,
	payments PaymentsGateway,
	sessions *payment.Coordinator,
	tokens auth.TokenProvider,
	bus payment.EventBus,
) *Service {
	return &Service{
		bookings: bookings,
		payments: payments,
		sessions: sessions,
		tokens:   tokens,
		bus:      bus,
		validate: newCheckoutValidator(),
	}
}

type CheckoutResult struct {
	Booking entity.Booking
	Session payment.Snapshot
}

// Checkout creates a booking for the selected seats and starts the payment
// confirmation session. The auth token is checked before any network call.
func (s *Service) Checkout(ctx context.Context, request CheckoutRequest) (CheckoutResult, error) {
	if err := s.validate.Validate(request); err != nil {
		return CheckoutResult{}, err
	}
	if _, err := auth.Check(ctx, s.tokens); err != nil {
		return CheckoutResult{}, err
	}

	phone := entity.NormalizeMSISDN(request.PaymentPhone)

	booking, autoPayment, err := s.bookings.Create(ctx, gateway.CreateBookingRequest{
		MovieSessionID: request.MovieSessionID,
		SeatIDs:        request.SeatIDs,
		BuffetItems:    request.BuffetItems,
		PaymentMethod:  request.PaymentMethod,
		PaymentPhone:   phone,
	})
	if err != nil {
		return CheckoutResult{}, fmt.Errorf("could not create booking: %w", err)
	}

	s.publish(ctx, entity.BookingCreated{
		Header:        entity.NewEventHeader(),
		BookingID:     booking.ID,
		BookingNumber: booking.BookingNumber,
		SeatIDs: lo.Map(booking.Seats, func(seat entity.Seat, _ int) int {
			return seat.ID
		}),
		TotalAmount: booking.TotalAmount,
		Method:      booking.PaymentMethod,
	})

	var bill entity.PaymentBill
	if autoPayment != nil && autoPayment.BillID != "" {
		bill = entity.PaymentBill{
			BillID:    autoPayment.BillID,
			Reference: autoPayment.Reference,
			BookingID: booking.ID,
			Amount:    booking.TotalAmount,
			MSISDN:    phone,
		}
		// announced just like a charge we initiated ourselves, so the
		// payment journal records the attempt either way
		s.publish(ctx, entity.PaymentInitiated{
			Header:    entity.NewEventHeaderWithIdempotencyKey(bill.BillID),
			BookingID: booking.ID,
			BillID:    bill.BillID,
			Reference: bill.Reference,
			Amount:    bill.Amount,
			Method:    booking.PaymentMethod,
			MSISDN:    phone,
		})
	} else {
		bill, err = s.initiate(ctx, booking, phone)
		if err != nil {
			return CheckoutResult{Booking: booking}, err
		}
	}

	snapshot, err := s.startSession(booking, bill)
	if err != nil {
		return CheckoutResult{Booking: booking}, err
	}

	return CheckoutResult{Booking: booking, Session: snapshot}, nil
}

// ResumePayment restarts the payment of an abandoned booking. It never
// creates a second booking: the seats, amount, method and phone all come
// from the stored booking, and only the payment is re-initiated.
func (s *Service) ResumePayment(ctx context.Context, bookingID int) (CheckoutResult, error) {
	if _, err := auth.Check(ctx, s.tokens); err != nil {
		return CheckoutResult{}, err
	}

	booking, err := s.bookings.Get(ctx, bookingID)
	if err != nil {
		return CheckoutResult{}, err
	}

	// the bookings list only surfaces eligible entries, but the state may
	// have changed since it was rendered
	if !booking.Retryable() {
		return CheckoutResult{}, fmt.Errorf("booking %d: %w", bookingID, entity.ErrBookingNotRetryable)
	}

	bill, err := s.initiate(ctx, booking, entity.NormalizeMSISDN(booking.PaymentPhone))
	if err != nil {
		return CheckoutResult{Booking: booking}, err
	}

	snapshot, err := s.startSession(booking, bill)
	if err != nil {
		return CheckoutResult{Booking: booking}, err
	}

	return CheckoutResult{Booking: booking, Session: snapshot}, nil
}

// CancelPayment aborts an in-flight session and, when the transaction
// reference is known, asks the backend to drop the pending charge.
func (s *Service) CancelPayment(ctx context.Context, sessionID string) error {
	snapshot, ok := s.sessions.Session(sessionID)
	if !ok {
		return entity.ErrNotFound
	}

	s.sessions.Abort(sessionID)

	if snapshot.Reference != "" {
		if err := s.payments.CancelTransaction(ctx, snapshot.Reference); err != nil {
			logrus.WithError(err).WithField("session_id", sessionID).Warn("could not cancel transaction server-side")
		}
	}

	return nil
}

// Session exposes the current snapshot of a polling session.
func (s *Service) Session(sessionID string) (payment.Snapshot, bool) {
	return s.sessions.Session(sessionID)
}

func (s *Service) initiate(ctx context.Context, booking entity.Booking, phone string) (entity.PaymentBill, error) {
	resp, err := s.payments.Initiate(ctx, gateway.InitiatePaymentRequest{
		BookingID:     booking.ID,
		PaymentMethod: booking.PaymentMethod,
		MSISDN:        phone,
	})
	if err != nil {
		return entity.PaymentBill{}, fmt.Errorf("could not initiate payment: %w", err)
	}
	if !resp.Success {
		return entity.PaymentBill{}, InitiationDeclinedError{Message: resp.Message}
	}

	bill := entity.PaymentBill{
		BillID:    resp.BillID,
		Reference: resp.Reference,
		BookingID: booking.ID,
		Amount:    booking.TotalAmount,
		MSISDN:    phone,
	}

	s.publish(ctx, entity.PaymentInitiated{
		Header:    entity.NewEventHeaderWithIdempotencyKey(bill.BillID),
		BookingID: booking.ID,
		BillID:    bill.BillID,
		Reference: bill.Reference,
		Amount:    bill.Amount,
		Method:    booking.PaymentMethod,
		MSISDN:    phone,
	})

	return bill, nil
}

func (s *Service) startSession(booking entity.Booking, bill entity.PaymentBill) (payment.Snapshot, error) {
	var verifier payment.Verifier
	if bill.BillID != "" {
		verifier = payment.NewBillVerifier(s.payments, bill.BillID)
	} else {
		// initiation succeeded without a pollable bill: track the booking itself
		verifier = payment.NewBookingVerifier(s.bookings, booking.ID)
	}

	return s.sessions.Start(payment.StartParams{
		BookingID: booking.ID,
		BillID:    bill.BillID,
		Reference: bill.Reference,
		Method:    booking.PaymentMethod,
		MSISDN:    bill.MSISDN,
		Amount:    booking.TotalAmount,
		Verifier:  verifier,
	})
}

func (s *Service) publish(ctx context.Context, event any) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(ctx, event); err != nil {
		logrus.WithError(err).Error("could not publish booking event")
	}
}
