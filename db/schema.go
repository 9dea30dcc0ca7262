package db

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

const schema = `
	CREATE TABLE IF NOT EXISTS payment_transactions (
		id SERIAL PRIMARY KEY,
		reference VARCHAR(255) NOT NULL DEFAULT '',
		bill_id VARCHAR(255) NOT NULL DEFAULT '',
		booking_id INT NOT NULL,
		amount INT NOT NULL,
		payment_method VARCHAR(32) NOT NULL,
		payer_msisdn VARCHAR(20) NOT NULL DEFAULT '',
		status VARCHAR(32) NOT NULL,
		message TEXT NOT NULL DEFAULT '',
		completed_at TIMESTAMP NULL,
		created_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	-- a bill id identifies one charge attempt; charges without a pollable
	-- bill keep an empty string and are matched by booking instead
	CREATE UNIQUE INDEX IF NOT EXISTS payment_transactions_bill_id_idx
		ON payment_transactions (bill_id) WHERE bill_id <> '';
`

func InitializeDatabaseSchema(db *sqlx.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("could not initialize database schema: %w", err)
	}

	return nil
}
