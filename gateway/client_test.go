package gateway_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cinepay/auth"
	"cinepay/entity"
	"cinepay/gateway"
)

func TestBookingsClientCreate(t *testing.T) {
	var gotAuth string
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/bookings", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")

		var req gateway.CreateBookingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, []int{11, 12, 13}, req.SeatIDs)

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"message": "booking created",
			"data": map[string]any{
				"id":             42,
				"booking_number": "BK-2024-0042",
				"payment_status": "pending",
				"status":         "pending",
			},
			"payment": map[string]any{
				"bill_id":   "bill-42",
				"reference": "tx-42",
				"status":    "pending",
			},
		})
	}))
	defer backend.Close()

	client := gateway.NewBookingsClient(gateway.NewClient(backend.URL, auth.StaticTokenProvider("token-1")))

	booking, payment, err := client.Create(context.Background(), gateway.CreateBookingRequest{
		MovieSessionID: 7,
		SeatIDs:        []int{11, 12, 13},
		PaymentMethod:  entity.MethodAirtelMoney,
		PaymentPhone:   "071234567",
	})
	require.NoError(t, err)

	assert.Equal(t, "Bearer token-1", gotAuth)
	assert.Equal(t, 42, booking.ID)
	assert.Equal(t, "BK-2024-0042", booking.BookingNumber)
	require.NotNil(t, payment)
	assert.Equal(t, "bill-42", payment.BillID)
}

func TestClientErrorMapping(t *testing.T) {
	// the scenario is a base-URL prefix; the clients append the real endpoint
	// path after it
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/unauthorized/"):
			w.WriteHeader(http.StatusUnauthorized)
		case strings.HasPrefix(r.URL.Path, "/conflict/"):
			w.WriteHeader(http.StatusConflict)
			_ = json.NewEncoder(w).Encode(map[string]any{"message": "seats already taken"})
		case strings.HasPrefix(r.URL.Path, "/validation/"):
			w.WriteHeader(http.StatusUnprocessableEntity)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"message": "validation failed",
				"errors": map[string][]string{
					"msisdn":         {"msisdn must be 9 digits"},
					"payment_method": {"payment method is required"},
				},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer backend.Close()

	bookings := gateway.NewBookingsClient(gateway.NewClient(backend.URL, auth.StaticTokenProvider("token-1")))

	t.Run("401 maps to ErrUnauthenticated", func(t *testing.T) {
		unauthorized := gateway.NewClient(backend.URL+"/unauthorized", auth.StaticTokenProvider("stale"))
		_, err := gateway.NewPaymentsClient(unauthorized).Verify(context.Background(), "bill-1")
		assert.ErrorIs(t, err, entity.ErrUnauthenticated)
	})

	t.Run("409 maps to ErrSeatsUnavailable", func(t *testing.T) {
		conflicted := gateway.NewClient(backend.URL+"/conflict", auth.StaticTokenProvider("token-1"))
		_, _, err := gateway.NewBookingsClient(conflicted).Create(context.Background(), gateway.CreateBookingRequest{})
		assert.ErrorIs(t, err, entity.ErrSeatsUnavailable)
	})

	t.Run("422 field errors are concatenated", func(t *testing.T) {
		invalid := gateway.NewClient(backend.URL+"/validation", auth.StaticTokenProvider("token-1"))
		_, err := gateway.NewPaymentsClient(invalid).Initiate(context.Background(), gateway.InitiatePaymentRequest{})

		var validationErr gateway.ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Equal(t, "msisdn must be 9 digits, payment method is required", validationErr.Message)
	})

	t.Run("404 maps to ErrNotFound", func(t *testing.T) {
		_, err := bookings.Get(context.Background(), 999)
		assert.ErrorIs(t, err, entity.ErrNotFound)
	})
}

func TestClientShortCircuitsWithoutToken(t *testing.T) {
	var hits atomic.Int32
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer backend.Close()

	client := gateway.NewPaymentsClient(gateway.NewClient(backend.URL, auth.StaticTokenProvider("")))

	_, err := client.Verify(context.Background(), "bill-1")
	assert.ErrorIs(t, err, entity.ErrUnauthenticated)
	assert.Zero(t, hits.Load(), "no network call should be made without a token")
}

func TestPaymentsClientVerify(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/payments/verify", r.URL.Path)

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "bill-42", req["bill_id"])

		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"status":  "processing",
			"message": "awaiting confirmation",
		})
	}))
	defer backend.Close()

	client := gateway.NewPaymentsClient(gateway.NewClient(backend.URL, auth.StaticTokenProvider("token-1")))

	resp, err := client.Verify(context.Background(), "bill-42")
	require.NoError(t, err)
	assert.Equal(t, entity.VerifyProcessing, resp.Status)
	assert.False(t, resp.Status.Terminal())
}
