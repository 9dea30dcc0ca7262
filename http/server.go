package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"cinepay/booking"
	"cinepay/entity"
	"cinepay/gateway"
	"cinepay/payment"
)

type BookingService interface {
	Checkout(ctx context.Context, request booking.CheckoutRequest) (booking.CheckoutResult, error)
	ResumePayment(ctx context.Context, bookingID int) (booking.CheckoutResult, error)
	CancelPayment(ctx context.Context, sessionID string) error
	Session(sessionID string) (payment.Snapshot, bool)
}

type BookingsGateway interface {
	List(ctx context.Context, page int) (gateway.BookingsPage, error)
	Cancel(ctx context.Context, bookingID int) error
}

type PaymentsGateway interface {
	History(ctx context.Context, page, perPage int) (gateway.PaymentHistoryPage, error)
}

type PaymentJournal interface {
	FindByBooking(ctx context.Context, bookingID int) ([]entity.PaymentTransaction, error)
}

type Server struct {
	addr     string
	e        *echo.Echo
	service  BookingService
	bookings BookingsGateway
	payments PaymentsGateway
	journal  PaymentJournal
}

func NewServer(
	addr string,
	service BookingService,
	bookings BookingsGateway,
	payments PaymentsGateway,
	journal PaymentJournal,
) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(echomiddleware.Recover())
	e.Use(otelecho.Middleware("cinepay"))

	server := &Server{
		addr:     addr,
		e:        e,
		service:  service,
		bookings: bookings,
		payments: payments,
		journal:  journal,
	}

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	e.POST("/checkout", server.PostCheckout)
	e.GET("/bookings", server.GetBookings)
	e.DELETE("/bookings/:id", server.CancelBooking)
	e.GET("/bookings/:id/payments", server.GetBookingPayments)
	e.POST("/bookings/:id/payment/retry", server.PostPaymentRetry)

	e.GET("/payment-sessions/:id", server.GetPaymentSession)
	e.DELETE("/payment-sessions/:id", server.DeletePaymentSession)
	e.GET("/payments/history", server.GetPaymentHistory)

	return server
}

func (s *Server) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		if err := s.e.Shutdown(context.Background()); err != nil {
			logrus.WithError(err).Error("failed to shutdown HTTP server")
		}
	}()

	logrus.WithField("addr", s.addr).Info("[HTTP] server listening")
	if err := s.e.Start(s.addr); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
