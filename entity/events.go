package entity

import (
	"time"

	"github.com/google/uuid"
)

type EventHeader struct {
	ID             string    `json:"id"`
	PublishedAt    time.Time `json:"published_at"`
	IdempotencyKey string    `json:"idempotency_key"`
}

func NewEventHeader() EventHeader {
	return EventHeader{
		ID:          uuid.NewString(),
		PublishedAt: time.Now().UTC(),
	}
}

func NewEventHeaderWithIdempotencyKey(idempotencyKey string) EventHeader {
	return EventHeader{
		ID:             uuid.NewString(),
		PublishedAt:    time.Now().UTC(),
		IdempotencyKey: idempotencyKey,
	}
}

type BookingCreated struct {
	Header        EventHeader   `json:"header"`
	BookingID     int           `json:"booking_id"`
	BookingNumber string        `json:"booking_number"`
	SeatIDs       []int         `json:"seat_ids"`
	TotalAmount   int           `json:"total_amount"`
	Method        PaymentMethod `json:"payment_method"`
}

type PaymentInitiated struct {
	Header    EventHeader   `json:"header"`
	BookingID int           `json:"booking_id"`
	BillID    string        `json:"bill_id"`
	Reference string        `json:"transaction_reference"`
	Amount    int           `json:"amount"`
	Method    PaymentMethod `json:"payment_method"`
	MSISDN    string        `json:"msisdn"`
}

type PaymentCompleted struct {
	Header    EventHeader `json:"header"`
	BookingID int         `json:"booking_id"`
	BillID    string      `json:"bill_id"`
	Amount    int         `json:"amount"`
}

type PaymentFailed struct {
	Header    EventHeader `json:"header"`
	BookingID int         `json:"booking_id"`
	BillID    string      `json:"bill_id"`
	Reason    string      `json:"reason"`
}

// PaymentExpired means the confirmation window closed without a terminal
// status. The booking stays pending server-side and can be resumed later.
type PaymentExpired struct {
	Header    EventHeader `json:"header"`
	BookingID int         `json:"booking_id"`
	BillID    string      `json:"bill_id"`
	Attempts  int         `json:"attempts"`
}
