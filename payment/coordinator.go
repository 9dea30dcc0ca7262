package payment

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/lithammer/shortuuid/v3"
	"github.com/sirupsen/logrus"

	"cinepay/entity"
	"cinepay/metrics"
)

// ExpiredMessage is shown when the confirmation window closes without a
// terminal status. Distinct from a confirmed failure: the booking stays
// pending server-side and can be resumed later.
const ExpiredMessage = "payment window expired, please try again"

const abortedMessage = "payment cancelled"

var ErrShuttingDown = errors.New("payment coordinator is shutting down")

type EventBus interface {
	Publish(ctx context.Context, event any) error
}

// Coordinator owns every polling session. It guarantees that at most one
// session is active per booking: starting a new attempt supersedes and
// cancels the previous one, and a superseded session's late result can never
// reach the bus or overwrite the new attempt's state.
type Coordinator struct {
	cfg Config
	bus EventBus

	mu       sync.Mutex
	sessions map[string]*session
	active   map[int]string
	cancels  map[string]context.CancelFunc
	closed   bool

	wg sync.WaitGroup
}

func NewCoordinator(cfg Config, bus EventBus) *Coordinator {
	return &Coordinator{
		cfg:      cfg.withDefaults(),
		bus:      bus,
		sessions: map[string]*session{},
		active:   map[int]string{},
		cancels:  map[string]context.CancelFunc{},
	}
}

type StartParams struct {
	BookingID int
	BillID    string
	Reference string
	Method    entity.PaymentMethod
	MSISDN    string
	Amount    int
	Verifier  Verifier
}

// Start spawns a polling session for the given bill (or booking fallback).
// Any session already active for the same booking is cancelled and its
// eventual result discarded.
func (c *Coordinator) Start(params StartParams) (Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return Snapshot{}, ErrShuttingDown
	}

	if previousID, ok := c.active[params.BookingID]; ok {
		if cancel, ok := c.cancels[previousID]; ok {
			cancel()
		}
		metrics.SessionsConcluded.WithLabelValues("superseded").Inc()
	}

	s := newSession(Snapshot{
		ID:          shortuuid.New(),
		BookingID:   params.BookingID,
		BillID:      params.BillID,
		Reference:   params.Reference,
		Method:      params.Method,
		MSISDN:      params.MSISDN,
		Amount:      params.Amount,
		MaxAttempts: c.cfg.MaxAttempts,
		Interval:    c.cfg.Interval,
	})

	snapshot := s.Snapshot()
	c.sessions[snapshot.ID] = s
	c.active[params.BookingID] = snapshot.ID

	ctx, cancel := context.WithCancel(context.Background())
	c.cancels[snapshot.ID] = cancel

	c.wg.Add(1)
	go c.run(ctx, s, params.Verifier)

	return snapshot, nil
}

// Session returns the current snapshot of a session by id.
func (c *Coordinator) Session(id string) (Snapshot, bool) {
	c.mu.Lock()
	s, ok := c.sessions[id]
	c.mu.Unlock()
	if !ok {
		return Snapshot{}, false
	}

	return s.Snapshot(), true
}

// ActiveForBooking returns the snapshot of the session currently driving the
// booking's payment, if any.
func (c *Coordinator) ActiveForBooking(bookingID int) (Snapshot, bool) {
	c.mu.Lock()
	id, ok := c.active[bookingID]
	c.mu.Unlock()
	if !ok {
		return Snapshot{}, false
	}

	return c.Session(id)
}

// Abort cancels an in-flight session, e.g. when the user closes the payment
// screen. Terminal sessions are left untouched.
func (c *Coordinator) Abort(id string) bool {
	c.mu.Lock()
	cancel, ok := c.cancels[id]
	c.mu.Unlock()
	if !ok {
		return false
	}

	cancel()
	return true
}

// Shutdown cancels every in-flight session and waits for the loops to stop.
func (c *Coordinator) Shutdown() {
	c.mu.Lock()
	c.closed = true
	for _, cancel := range c.cancels {
		cancel()
	}
	c.mu.Unlock()

	c.wg.Wait()
}

func (c *Coordinator) run(ctx context.Context, s *session, verifier Verifier) {
	defer c.wg.Done()

	snapshot := s.Snapshot()
	logger := logrus.WithFields(logrus.Fields{
		"session_id": snapshot.ID,
		"booking_id": snapshot.BookingID,
		"bill_id":    snapshot.BillID,
		"strategy":   verifier.Name(),
	})

	if !sleepContext(ctx, c.cfg.InitGrace) {
		c.conclude(logger, s, EventAborted, abortedMessage)
		return
	}
	s.apply(EventGraceElapsed, "")
	logger.Info("payment confirmation polling started")

	for attempt := 0; attempt < c.cfg.MaxAttempts; attempt++ {
		s.beginAttempt()

		metrics.VerifyAttempts.WithLabelValues(verifier.Name()).Inc()
		start := time.Now()
		outcome, err := verifier.Verify(ctx)
		metrics.VerifyDuration.WithLabelValues(verifier.Name()).Observe(time.Since(start).Seconds())

		if ctx.Err() != nil {
			c.conclude(logger, s, EventAborted, abortedMessage)
			return
		}
		if err != nil {
			// a flaky check consumes the attempt but must not end the session
			metrics.VerifyAttemptsFailed.WithLabelValues(verifier.Name()).Inc()
			logger.WithError(err).WithField("attempt", attempt+1).Warn("verification attempt failed")
			outcome = Outcome{Status: entity.VerifyPending}
		}

		switch outcome.Status {
		case entity.VerifyCompleted:
			c.conclude(logger, s, EventCompleted, outcome.Message)
			return
		case entity.VerifyFailed:
			message := outcome.Message
			if message == "" {
				message = "payment failed"
			}
			c.conclude(logger, s, EventFailed, message)
			return
		default:
			s.apply(EventStillPending, "")
		}

		if attempt < c.cfg.MaxAttempts-1 {
			if !sleepContext(ctx, c.cfg.Interval) {
				c.conclude(logger, s, EventAborted, abortedMessage)
				return
			}
		}
	}

	c.conclude(logger, s, EventExpired, ExpiredMessage)
}

// conclude commits a terminal result, unless the session has been superseded
// by a newer attempt for the same booking, in which case the result is
// discarded.
func (c *Coordinator) conclude(logger *logrus.Entry, s *session, event Event, message string) {
	snapshot := s.Snapshot()

	c.mu.Lock()
	stale := c.active[snapshot.BookingID] != snapshot.ID
	if !stale {
		delete(c.active, snapshot.BookingID)
	}
	delete(c.cancels, snapshot.ID)
	c.mu.Unlock()

	defer c.evictAfterRetention(snapshot.ID)

	if stale {
		logger.WithField("event", event).Debug("discarding result of superseded session")
		s.apply(EventAborted, "superseded by a new payment attempt")
		return
	}

	s.apply(event, message)
	snapshot = s.Snapshot()
	logger.WithFields(logrus.Fields{
		"event":    event,
		"attempts": snapshot.Attempt,
		"elapsed":  snapshot.Elapsed,
	}).Info("polling session concluded")
	metrics.SessionsConcluded.WithLabelValues(string(event)).Inc()

	c.publish(event, snapshot)
}

// evictAfterRetention drops a concluded session once its snapshot is no
// longer worth serving, so the sessions map does not grow without bound.
func (c *Coordinator) evictAfterRetention(id string) {
	time.AfterFunc(c.cfg.RetainTerminal, func() {
		c.mu.Lock()
		delete(c.sessions, id)
		c.mu.Unlock()
	})
}

func (c *Coordinator) publish(event Event, snapshot Snapshot) {
	if c.bus == nil {
		return
	}

	var payload any
	switch event {
	case EventCompleted:
		payload = entity.PaymentCompleted{
			Header:    entity.NewEventHeaderWithIdempotencyKey(snapshot.BillID),
			BookingID: snapshot.BookingID,
			BillID:    snapshot.BillID,
			Amount:    snapshot.Amount,
		}
	case EventFailed:
		payload = entity.PaymentFailed{
			Header:    entity.NewEventHeaderWithIdempotencyKey(snapshot.BillID),
			BookingID: snapshot.BookingID,
			BillID:    snapshot.BillID,
			Reason:    snapshot.Message,
		}
	case EventExpired:
		payload = entity.PaymentExpired{
			Header:    entity.NewEventHeaderWithIdempotencyKey(snapshot.BillID),
			BookingID: snapshot.BookingID,
			BillID:    snapshot.BillID,
			Attempts:  snapshot.Attempt,
		}
	default:
		// aborts are local, nothing to announce
		return
	}

	if err := c.bus.Publish(context.Background(), payload); err != nil {
		logrus.WithError(err).WithField("session_id", snapshot.ID).Error("could not publish payment event")
	}
}

func sleepContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
