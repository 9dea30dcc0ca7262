package entity

import "time"

type PaymentMethod string

const (
	MethodAirtelMoney PaymentMethod = "airtel_money"
	MethodMoovMoney   PaymentMethod = "moov_money"
)

func (m PaymentMethod) Valid() bool {
	return m == MethodAirtelMoney || m == MethodMoovMoney
}

// PhonePrefix returns the two leading digits mandated by the operator.
func (m PaymentMethod) PhonePrefix() string {
	if m == MethodAirtelMoney {
		return "07"
	}
	return "06"
}

func (m PaymentMethod) Label() string {
	if m == MethodAirtelMoney {
		return "Airtel Money"
	}
	return "Moov Money"
}

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
)

type Seat struct {
	ID      int    `json:"id"`
	Row     string `json:"row"`
	Number  int    `json:"number"`
	Section string `json:"section"`
}

type BuffetItem struct {
	ID       int `json:"buffet_item_id"`
	Quantity int `json:"quantity"`
}

// Booking is a reservation as reported by the backend. Payment-authoritative
// fields (PaymentStatus, Status) are never mutated locally; they only change
// when a fresh backend response replaces the value.
type Booking struct {
	ID             int           `json:"id"`
	BookingNumber  string        `json:"booking_number"`
	MovieSessionID int           `json:"movie_session_id"`
	Seats          []Seat        `json:"seats"`
	TotalAmount    int           `json:"total_amount"`
	PaymentStatus  PaymentStatus `json:"payment_status"`
	PaymentMethod  PaymentMethod `json:"payment_method"`
	PaymentPhone   string        `json:"payment_phone"`
	BillID         string        `json:"bill_id,omitempty"`
	Status         BookingStatus `json:"status"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// ParticipantCount is derived from the seats held by the booking; seat ids are
// immutable history once the booking exists.
func (b Booking) ParticipantCount() int {
	return len(b.Seats)
}

// Retryable reports whether an abandoned payment may be resumed for this
// booking without creating a new one.
func (b Booking) Retryable() bool {
	return b.PaymentStatus == PaymentStatusPending && b.Status == BookingPending
}
