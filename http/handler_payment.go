package http

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"cinepay/presenter"
)

type paymentSessionResponse struct {
	SessionID string         `json:"session_id"`
	BookingID int            `json:"booking_id"`
	State     string         `json:"state"`
	Attempt   int            `json:"attempt"`
	View      presenter.View `json:"view"`
}

func (s *Server) GetPaymentSession(c echo.Context) error {
	snapshot, ok := s.service.Session(c.Param("id"))
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "unknown payment session")
	}

	return c.JSON(http.StatusOK, paymentSessionResponse{
		SessionID: snapshot.ID,
		BookingID: snapshot.BookingID,
		State:     string(snapshot.State),
		Attempt:   snapshot.Attempt,
		View:      presenter.Render(snapshot),
	})
}

func (s *Server) DeletePaymentSession(c echo.Context) error {
	if err := s.service.CancelPayment(c.Request().Context(), c.Param("id")); err != nil {
		return mapError(err)
	}

	return c.NoContent(http.StatusNoContent)
}

func (s *Server) GetPaymentHistory(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(c.QueryParam("per_page"))
	if perPage < 1 {
		perPage = 15
	}

	history, err := s.payments.History(c.Request().Context(), page, perPage)
	if err != nil {
		return mapError(err)
	}

	return c.JSON(http.StatusOK, history)
}
