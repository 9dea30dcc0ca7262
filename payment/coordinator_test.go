package payment_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"cinepay/entity"
	"cinepay/gateway"
	"cinepay/payment"
)

type eventBusMock struct {
	lock   sync.Mutex
	events []any
}

func (b *eventBusMock) Publish(ctx context.Context, event any) error {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.events = append(b.events, event)
	return nil
}

func (b *eventBusMock) Events() []any {
	b.lock.Lock()
	defer b.lock.Unlock()
	return append([]any(nil), b.events...)
}

func testConfig(maxAttempts int) payment.Config {
	return payment.Config{
		Interval:    time.Millisecond,
		MaxAttempts: maxAttempts,
		InitGrace:   0,
	}
}

func waitTerminal(t *testing.T, c *payment.Coordinator, sessionID string) payment.Snapshot {
	t.Helper()

	var snapshot payment.Snapshot
	require.Eventually(t, func() bool {
		var ok bool
		snapshot, ok = c.Session(sessionID)
		return ok && snapshot.State.Terminal()
	}, 5*time.Second, time.Millisecond)

	return snapshot
}

func TestPollingCompletesAfterSixAttempts(t *testing.T) {
	defer goleak.VerifyNone(t)

	payments := &gateway.PaymentsMock{
		VerifyResponses: []gateway.VerifyPaymentResponse{
			{Success: true, Status: entity.VerifyProcessing},
			{Success: true, Status: entity.VerifyProcessing},
			{Success: true, Status: entity.VerifyProcessing},
			{Success: true, Status: entity.VerifyProcessing},
			{Success: true, Status: entity.VerifyProcessing},
			{Success: true, Status: entity.VerifyCompleted, Message: "payment confirmed"},
		},
	}
	bus := &eventBusMock{}
	c := payment.NewCoordinator(testConfig(20), bus)
	defer c.Shutdown()

	snapshot, err := c.Start(payment.StartParams{
		BookingID: 1,
		BillID:    "bill-1",
		Amount:    15000,
		Verifier:  payment.NewBillVerifier(payments, "bill-1"),
	})
	require.NoError(t, err)

	snapshot = waitTerminal(t, c, snapshot.ID)

	assert.Equal(t, payment.StateSuccess, snapshot.State)
	assert.Equal(t, 6, snapshot.Attempt)
	_, verifyCalls := payments.Calls()
	assert.Equal(t, 6, verifyCalls)

	require.Eventually(t, func() bool { return len(bus.Events()) == 1 }, 5*time.Second, time.Millisecond)
	completed, ok := bus.Events()[0].(entity.PaymentCompleted)
	require.True(t, ok)
	assert.Equal(t, "bill-1", completed.BillID)
	assert.Equal(t, 15000, completed.Amount)
}

func TestPollingExpiresAfterBudget(t *testing.T) {
	defer goleak.VerifyNone(t)

	// empty script: the backend never reports a terminal status
	payments := &gateway.PaymentsMock{}
	bus := &eventBusMock{}
	c := payment.NewCoordinator(testConfig(20), bus)
	defer c.Shutdown()

	snapshot, err := c.Start(payment.StartParams{
		BookingID: 1,
		BillID:    "bill-1",
		Verifier:  payment.NewBillVerifier(payments, "bill-1"),
	})
	require.NoError(t, err)

	snapshot = waitTerminal(t, c, snapshot.ID)

	assert.Equal(t, payment.StateError, snapshot.State)
	assert.Equal(t, payment.ExpiredMessage, snapshot.Message)
	assert.Equal(t, 20, snapshot.Attempt, "must stop after exactly maxAttempts checks")
	_, verifyCalls := payments.Calls()
	assert.Equal(t, 20, verifyCalls)

	require.Eventually(t, func() bool { return len(bus.Events()) == 1 }, 5*time.Second, time.Millisecond)
	expired, ok := bus.Events()[0].(entity.PaymentExpired)
	require.True(t, ok)
	assert.Equal(t, 20, expired.Attempts)
}

func TestPollingStopsOnConfirmedFailure(t *testing.T) {
	defer goleak.VerifyNone(t)

	payments := &gateway.PaymentsMock{
		VerifyResponses: []gateway.VerifyPaymentResponse{
			{Success: true, Status: entity.VerifyPending},
			{Success: false, Status: entity.VerifyFailed, Message: "insufficient balance"},
		},
	}
	bus := &eventBusMock{}
	c := payment.NewCoordinator(testConfig(20), bus)
	defer c.Shutdown()

	snapshot, err := c.Start(payment.StartParams{
		BookingID: 1,
		BillID:    "bill-1",
		Verifier:  payment.NewBillVerifier(payments, "bill-1"),
	})
	require.NoError(t, err)

	snapshot = waitTerminal(t, c, snapshot.ID)

	assert.Equal(t, payment.StateError, snapshot.State)
	assert.Equal(t, "insufficient balance", snapshot.Message)
	_, verifyCalls := payments.Calls()
	assert.Equal(t, 2, verifyCalls)

	require.Eventually(t, func() bool { return len(bus.Events()) == 1 }, 5*time.Second, time.Millisecond)
	failed, ok := bus.Events()[0].(entity.PaymentFailed)
	require.True(t, ok)
	assert.Equal(t, "insufficient balance", failed.Reason)
}

func TestFlakyVerificationConsumesAttemptAndContinues(t *testing.T) {
	defer goleak.VerifyNone(t)

	payments := &gateway.PaymentsMock{
		VerifyErrs: []error{nil, errors.New("connection reset"), errors.New("connection reset")},
		VerifyResponses: []gateway.VerifyPaymentResponse{
			{Success: true, Status: entity.VerifyPending},
			{}, // swallowed by the scripted error
			{}, // swallowed by the scripted error
			{Success: true, Status: entity.VerifyCompleted},
		},
	}
	c := payment.NewCoordinator(testConfig(20), &eventBusMock{})
	defer c.Shutdown()

	snapshot, err := c.Start(payment.StartParams{
		BookingID: 1,
		BillID:    "bill-1",
		Verifier:  payment.NewBillVerifier(payments, "bill-1"),
	})
	require.NoError(t, err)

	snapshot = waitTerminal(t, c, snapshot.ID)

	assert.Equal(t, payment.StateSuccess, snapshot.State)
	assert.Equal(t, 4, snapshot.Attempt)
}

func TestBookingFallbackVerification(t *testing.T) {
	defer goleak.VerifyNone(t)

	bookings := &gateway.BookingsMock{}
	bookings.SetBooking(entity.Booking{
		ID:            7,
		PaymentStatus: entity.PaymentStatusPending,
		Status:        entity.BookingPending,
	})

	// the fallback verifier tolerates fetch errors the same way the
	// bill-based one does
	bookings.GetErr = errors.New("temporarily unreachable")

	c := payment.NewCoordinator(testConfig(5), &eventBusMock{})
	defer c.Shutdown()

	snapshot, err := c.Start(payment.StartParams{
		BookingID: 7,
		Verifier:  payment.NewBookingVerifier(bookings, 7),
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return bookings.Calls() >= 2
	}, 5*time.Second, time.Millisecond)

	bookings.ClearGetErr()
	booking := entity.Booking{ID: 7, PaymentStatus: entity.PaymentStatusCompleted, Status: entity.BookingConfirmed}
	bookings.SetBooking(booking)

	snapshot = waitTerminal(t, c, snapshot.ID)
	assert.Equal(t, payment.StateSuccess, snapshot.State)
}

func TestAbortStopsInFlightPolling(t *testing.T) {
	defer goleak.VerifyNone(t)

	payments := &gateway.PaymentsMock{}
	bus := &eventBusMock{}
	c := payment.NewCoordinator(payment.Config{
		Interval:    100 * time.Millisecond,
		MaxAttempts: 20,
		InitGrace:   0,
	}, bus)
	defer c.Shutdown()

	snapshot, err := c.Start(payment.StartParams{
		BookingID: 1,
		BillID:    "bill-1",
		Verifier:  payment.NewBillVerifier(payments, "bill-1"),
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		_, verifyCalls := payments.Calls()
		return verifyCalls >= 1
	}, 5*time.Second, time.Millisecond)

	require.True(t, c.Abort(snapshot.ID))

	snapshot = waitTerminal(t, c, snapshot.ID)
	assert.Equal(t, payment.StateError, snapshot.State)
	assert.Equal(t, "payment cancelled", snapshot.Message)
	assert.Empty(t, bus.Events(), "aborts are local, nothing is announced")
}

func TestRetrySupersedesOlderSession(t *testing.T) {
	defer goleak.VerifyNone(t)

	slow := &gateway.PaymentsMock{} // pending forever
	fast := &gateway.PaymentsMock{
		VerifyResponses: []gateway.VerifyPaymentResponse{
			{Success: true, Status: entity.VerifyCompleted},
		},
	}

	bus := &eventBusMock{}
	c := payment.NewCoordinator(testConfig(50), bus)
	defer c.Shutdown()

	first, err := c.Start(payment.StartParams{
		BookingID: 1,
		BillID:    "bill-old",
		Verifier:  payment.NewBillVerifier(slow, "bill-old"),
	})
	require.NoError(t, err)

	second, err := c.Start(payment.StartParams{
		BookingID: 1,
		BillID:    "bill-new",
		Verifier:  payment.NewBillVerifier(fast, "bill-new"),
	})
	require.NoError(t, err)

	terminal := waitTerminal(t, c, second.ID)
	assert.Equal(t, payment.StateSuccess, terminal.State)

	superseded := waitTerminal(t, c, first.ID)
	assert.Equal(t, payment.StateError, superseded.State)

	active, ok := c.ActiveForBooking(1)
	assert.False(t, ok, "no session should stay active after conclusion, got %+v", active)

	require.Eventually(t, func() bool {
		return len(bus.Events()) == 1
	}, 5*time.Second, time.Millisecond)
	completed, ok := bus.Events()[0].(entity.PaymentCompleted)
	require.True(t, ok, "only the new bill's result may reach the bus")
	assert.Equal(t, "bill-new", completed.BillID)
}

func TestConcludedSessionsAreEvictedAfterRetention(t *testing.T) {
	defer goleak.VerifyNone(t)

	payments := &gateway.PaymentsMock{
		VerifyResponses: []gateway.VerifyPaymentResponse{
			{Success: true, Status: entity.VerifyCompleted},
		},
	}
	c := payment.NewCoordinator(payment.Config{
		Interval:       time.Millisecond,
		MaxAttempts:    5,
		InitGrace:      0,
		RetainTerminal: 50 * time.Millisecond,
	}, &eventBusMock{})
	defer c.Shutdown()

	snapshot, err := c.Start(payment.StartParams{
		BookingID: 1,
		BillID:    "bill-1",
		Verifier:  payment.NewBillVerifier(payments, "bill-1"),
	})
	require.NoError(t, err)

	// the result stays readable for late status checks
	snapshot = waitTerminal(t, c, snapshot.ID)
	assert.Equal(t, payment.StateSuccess, snapshot.State)

	require.Eventually(t, func() bool {
		_, ok := c.Session(snapshot.ID)
		return !ok
	}, 5*time.Second, time.Millisecond, "terminal sessions must not pile up forever")
}

func TestShutdownRejectsNewSessions(t *testing.T) {
	c := payment.NewCoordinator(testConfig(5), nil)
	c.Shutdown()

	_, err := c.Start(payment.StartParams{BookingID: 1})
	assert.ErrorIs(t, err, payment.ErrShuttingDown)
}
