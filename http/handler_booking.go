package http

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

func (s *Server) GetBookings(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}

	bookings, err := s.bookings.List(c.Request().Context(), page)
	if err != nil {
		return mapError(err)
	}

	return c.JSON(http.StatusOK, bookings)
}

func (s *Server) CancelBooking(c echo.Context) error {
	bookingID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid booking id")
	}

	if err := s.bookings.Cancel(c.Request().Context(), bookingID); err != nil {
		return mapError(err)
	}

	return c.NoContent(http.StatusNoContent)
}

func (s *Server) GetBookingPayments(c echo.Context) error {
	bookingID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid booking id")
	}

	transactions, err := s.journal.FindByBooking(c.Request().Context(), bookingID)
	if err != nil {
		return mapError(err)
	}

	return c.JSON(http.StatusOK, map[string]any{"data": transactions})
}
