package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"cinepay/booking"
	"cinepay/entity"
	"cinepay/gateway"
	"cinepay/presenter"
)

type checkoutRequest struct {
	MovieSessionID   int                  `json:"movie_session_id"`
	SeatIDs          []int                `json:"seat_ids"`
	ParticipantCount int                  `json:"participant_count"`
	BuffetItems      []entity.BuffetItem  `json:"buffet_items"`
	PaymentMethod    entity.PaymentMethod `json:"payment_method"`
	PaymentPhone     string               `json:"payment_phone"`
}

type checkoutResponse struct {
	Booking   entity.Booking `json:"booking"`
	SessionID string         `json:"session_id,omitempty"`
	View      presenter.View `json:"view,omitempty"`
}

func (s *Server) PostCheckout(c echo.Context) error {
	var request checkoutRequest
	if err := c.Bind(&request); err != nil {
		return err
	}

	result, err := s.service.Checkout(c.Request().Context(), booking.CheckoutRequest{
		MovieSessionID:   request.MovieSessionID,
		SeatIDs:          request.SeatIDs,
		ParticipantCount: request.ParticipantCount,
		BuffetItems:      request.BuffetItems,
		PaymentMethod:    request.PaymentMethod,
		PaymentPhone:     request.PaymentPhone,
	})
	if err != nil {
		return mapError(err)
	}

	return c.JSON(http.StatusCreated, checkoutResponse{
		Booking:   result.Booking,
		SessionID: result.Session.ID,
		View:      presenter.Render(result.Session),
	})
}

func (s *Server) PostPaymentRetry(c echo.Context) error {
	bookingID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid booking id")
	}

	result, err := s.service.ResumePayment(c.Request().Context(), bookingID)
	if err != nil {
		return mapError(err)
	}

	return c.JSON(http.StatusCreated, checkoutResponse{
		Booking:   result.Booking,
		SessionID: result.Session.ID,
		View:      presenter.Render(result.Session),
	})
}

func mapError(err error) error {
	var validationErr booking.ValidationError
	var gatewayValidationErr gateway.ValidationError
	var declinedErr booking.InitiationDeclinedError

	switch {
	case errors.Is(err, entity.ErrUnauthenticated):
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	case errors.Is(err, entity.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "not found")
	case errors.Is(err, entity.ErrSeatsUnavailable):
		return echo.NewHTTPError(http.StatusConflict, "selected seats are no longer available")
	case errors.Is(err, entity.ErrBookingNotRetryable):
		return echo.NewHTTPError(http.StatusConflict, "booking can no longer be paid")
	case errors.As(err, &validationErr):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, validationErr.Message)
	case errors.As(err, &gatewayValidationErr):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, gatewayValidationErr.Message)
	case errors.As(err, &declinedErr):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, declinedErr.Message)
	default:
		return err
	}
}
