package gateway

import (
	"context"
	"sync"

	"cinepay/entity"
)

type BookingsMock struct {
	lock sync.Mutex

	Bookings map[int]entity.Booking
	// Payment is attached to the next Create response when set, mimicking a
	// backend that auto-initiates the charge during booking creation.
	Payment *AutoInitiatedPayment

	CreateCalls int
	GetCalls    int
	CancelCalls int

	CreateErr error
	GetErr    error
}

func (m *BookingsMock) Create(ctx context.Context, request CreateBookingRequest) (entity.Booking, *AutoInitiatedPayment, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.CreateCalls++
	if m.CreateErr != nil {
		return entity.Booking{}, nil, m.CreateErr
	}
	if m.Bookings == nil {
		m.Bookings = map[int]entity.Booking{}
	}

	seats := make([]entity.Seat, len(request.SeatIDs))
	for i, id := range request.SeatIDs {
		seats[i] = entity.Seat{ID: id}
	}

	booking := entity.Booking{
		ID:             len(m.Bookings) + 1,
		BookingNumber:  "BK-MOCK",
		MovieSessionID: request.MovieSessionID,
		Seats:          seats,
		PaymentStatus:  entity.PaymentStatusPending,
		PaymentMethod:  request.PaymentMethod,
		PaymentPhone:   request.PaymentPhone,
		Status:         entity.BookingPending,
	}
	m.Bookings[booking.ID] = booking

	return booking, m.Payment, nil
}

func (m *BookingsMock) Get(ctx context.Context, bookingID int) (entity.Booking, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.GetCalls++
	if m.GetErr != nil {
		return entity.Booking{}, m.GetErr
	}

	booking, ok := m.Bookings[bookingID]
	if !ok {
		return entity.Booking{}, entity.ErrNotFound
	}

	return booking, nil
}

func (m *BookingsMock) Cancel(ctx context.Context, bookingID int) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.CancelCalls++

	booking, ok := m.Bookings[bookingID]
	if !ok {
		return entity.ErrNotFound
	}
	booking.Status = entity.BookingCancelled
	m.Bookings[bookingID] = booking

	return nil
}

func (m *BookingsMock) Calls() int {
	m.lock.Lock()
	defer m.lock.Unlock()

	return m.GetCalls
}

func (m *BookingsMock) ClearGetErr() {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.GetErr = nil
}

// SetBooking seeds the mock with a booking, for retry-flow tests.
func (m *BookingsMock) SetBooking(booking entity.Booking) {
	m.lock.Lock()
	defer m.lock.Unlock()

	if m.Bookings == nil {
		m.Bookings = map[int]entity.Booking{}
	}
	m.Bookings[booking.ID] = booking
}
