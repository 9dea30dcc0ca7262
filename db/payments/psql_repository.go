package payments

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"cinepay/entity"
)

// PostgresRepository is the local journal of payment transactions, projected
// from lifecycle events. The backend stays authoritative; the journal only
// mirrors what this service observed.
type PostgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	if db == nil {
		panic("db is nil")
	}

	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) RecordInitiated(ctx context.Context, transaction entity.PaymentTransaction) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO payment_transactions
			(reference, bill_id, booking_id, amount, payment_method, payer_msisdn, status, message)
		VALUES
			(:reference, :bill_id, :booking_id, :amount, :payment_method, :payer_msisdn, :status, :message)
		ON CONFLICT (bill_id) WHERE bill_id <> '' DO NOTHING
	`, transaction)
	if err != nil {
		return fmt.Errorf("could not record transaction for bill %s: %w", transaction.BillID, err)
	}

	return nil
}

// Conclude marks the journaled transaction terminal. When the bill id is
// empty the charge had no pollable bill, so the open transactions of the
// booking are concluded instead.
func (r *PostgresRepository) Conclude(ctx context.Context, bookingID int, billID string, status entity.VerifyStatus, message string) error {
	var err error
	if billID != "" {
		_, err = r.db.ExecContext(ctx, `
			UPDATE payment_transactions
			SET status = $2,
				message = $3,
				completed_at = CASE WHEN $2 = 'completed' THEN NOW() ELSE completed_at END
			WHERE bill_id = $1
		`, billID, status, message)
	} else {
		_, err = r.db.ExecContext(ctx, `
			UPDATE payment_transactions
			SET status = $2,
				message = $3,
				completed_at = CASE WHEN $2 = 'completed' THEN NOW() ELSE completed_at END
			WHERE booking_id = $1 AND status IN ('pending', 'processing')
		`, bookingID, status, message)
	}
	if err != nil {
		return fmt.Errorf("could not conclude transaction for booking %d: %w", bookingID, err)
	}

	return nil
}

func (r *PostgresRepository) FindByBooking(ctx context.Context, bookingID int) ([]entity.PaymentTransaction, error) {
	var transactions []entity.PaymentTransaction
	err := r.db.SelectContext(ctx, &transactions, `
		SELECT id, reference, bill_id, booking_id, amount, payment_method, payer_msisdn, status, message, completed_at, created_at
		FROM payment_transactions
		WHERE booking_id = $1
		ORDER BY created_at DESC
	`, bookingID)
	if err != nil {
		return nil, fmt.Errorf("could not load transactions for booking %d: %w", bookingID, err)
	}

	return transactions, nil
}
