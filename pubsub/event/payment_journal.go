package event

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/components/cqrs"
	"github.com/sirupsen/logrus"

	"cinepay/entity"
)

func (h Handler) RecordPaymentInitiatedHandler() cqrs.EventHandler {
	return cqrs.NewEventHandler(
		"RecordPaymentInitiatedHandler",
		func(ctx context.Context, event *entity.PaymentInitiated) error {
			logrus.WithField("bill_id", event.BillID).Info("Recording initiated payment")

			err := h.journal.RecordInitiated(ctx, entity.PaymentTransaction{
				Reference:   event.Reference,
				BillID:      event.BillID,
				BookingID:   event.BookingID,
				Amount:      event.Amount,
				Method:      event.Method,
				PayerMSISDN: event.MSISDN,
				Status:      entity.VerifyPending,
			})
			if err != nil {
				return fmt.Errorf("could not record initiated payment: %w", err)
			}

			return nil
		},
	)
}

func (h Handler) RecordPaymentCompletedHandler() cqrs.EventHandler {
	return cqrs.NewEventHandler(
		"RecordPaymentCompletedHandler",
		func(ctx context.Context, event *entity.PaymentCompleted) error {
			return h.journal.Conclude(ctx, event.BookingID, event.BillID, entity.VerifyCompleted, "")
		},
	)
}

func (h Handler) RecordPaymentFailedHandler() cqrs.EventHandler {
	return cqrs.NewEventHandler(
		"RecordPaymentFailedHandler",
		func(ctx context.Context, event *entity.PaymentFailed) error {
			return h.journal.Conclude(ctx, event.BookingID, event.BillID, entity.VerifyFailed, event.Reason)
		},
	)
}

func (h Handler) RecordPaymentExpiredHandler() cqrs.EventHandler {
	return cqrs.NewEventHandler(
		"RecordPaymentExpiredHandler",
		func(ctx context.Context, event *entity.PaymentExpired) error {
			message := fmt.Sprintf("confirmation window closed after %d attempts", event.Attempts)

			return h.journal.Conclude(ctx, event.BookingID, event.BillID, entity.VerifyFailed, message)
		},
	)
}
