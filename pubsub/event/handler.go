package event

import (
	"context"

	"cinepay/entity"
)

// PaymentJournal is the local projection of payment lifecycle events.
type PaymentJournal interface {
	RecordInitiated(ctx context.Context, transaction entity.PaymentTransaction) error
	Conclude(ctx context.Context, bookingID int, billID string, status entity.VerifyStatus, message string) error
}

type Handler struct {
	journal PaymentJournal
}

func NewHandler(journal PaymentJournal) Handler {
	if journal == nil {
		panic("missing journal")
	}

	return Handler{journal: journal}
}
