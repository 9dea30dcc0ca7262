package gateway

import (
	"context"
	"fmt"
	"net/http"

	"cinepay/entity"
)

type BookingsClient struct {
	client *Client
}

func NewBookingsClient(client *Client) BookingsClient {
	return BookingsClient{client: client}
}

type CreateBookingRequest struct {
	MovieSessionID int                  `json:"movie_session_id"`
	SeatIDs        []int                `json:"seat_ids"`
	BuffetItems    []entity.BuffetItem  `json:"buffet_items,omitempty"`
	PaymentMethod  entity.PaymentMethod `json:"payment_method"`
	PaymentPhone   string               `json:"payment_phone"`
}

// AutoInitiatedPayment is the payment metadata the backend may embed in the
// booking creation response when it charged the payer as part of creation.
type AutoInitiatedPayment struct {
	BillID    string `json:"bill_id"`
	Reference string `json:"reference"`
	Status    string `json:"status"`
	Message   string `json:"message"`
}

type createBookingResponse struct {
	Message string                `json:"message"`
	Data    entity.Booking        `json:"data"`
	Payment *AutoInitiatedPayment `json:"payment"`
}

// Create books the given seats. The backend holds the seats server-side; a
// conflict surfaces as entity.ErrSeatsUnavailable and requires the user to
// restart seat selection.
func (c BookingsClient) Create(ctx context.Context, request CreateBookingRequest) (entity.Booking, *AutoInitiatedPayment, error) {
	var resp createBookingResponse
	err := c.client.do(ctx, http.MethodPost, "/bookings", request, &resp)
	if err != nil {
		return entity.Booking{}, nil, err
	}

	return resp.Data, resp.Payment, nil
}

type bookingResponse struct {
	Data entity.Booking `json:"data"`
}

func (c BookingsClient) Get(ctx context.Context, bookingID int) (entity.Booking, error) {
	var resp bookingResponse
	err := c.client.do(ctx, http.MethodGet, fmt.Sprintf("/bookings/%d", bookingID), nil, &resp)
	if err != nil {
		return entity.Booking{}, fmt.Errorf("could not get booking %d: %w", bookingID, err)
	}

	return resp.Data, nil
}

type BookingsPage struct {
	Data []entity.Booking `json:"data"`
	Meta struct {
		CurrentPage int `json:"current_page"`
		LastPage    int `json:"last_page"`
		PerPage     int `json:"per_page"`
		Total       int `json:"total"`
	} `json:"meta"`
}

func (c BookingsClient) List(ctx context.Context, page int) (BookingsPage, error) {
	var resp BookingsPage
	err := c.client.do(ctx, http.MethodGet, fmt.Sprintf("/bookings?page=%d", page), nil, &resp)
	if err != nil {
		return BookingsPage{}, fmt.Errorf("could not list bookings: %w", err)
	}

	return resp, nil
}

// Cancel marks the booking cancelled server-side. Cancellation is a status
// transition, never a removal.
func (c BookingsClient) Cancel(ctx context.Context, bookingID int) error {
	err := c.client.do(ctx, http.MethodPost, fmt.Sprintf("/bookings/%d/cancel", bookingID), nil, nil)
	if err != nil {
		return fmt.Errorf("could not cancel booking %d: %w", bookingID, err)
	}

	return nil
}
