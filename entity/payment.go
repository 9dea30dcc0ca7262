package entity

import "time"

// VerifyStatus is the per-attempt status reported by the backend while a
// mobile-money charge is in flight. Only Completed and Failed are terminal.
type VerifyStatus string

const (
	VerifyPending    VerifyStatus = "pending"
	VerifyProcessing VerifyStatus = "processing"
	VerifyCompleted  VerifyStatus = "completed"
	VerifyFailed     VerifyStatus = "failed"
)

func (s VerifyStatus) Terminal() bool {
	return s == VerifyCompleted || s == VerifyFailed
}

// PaymentBill is an ephemeral token for one payment attempt. A new initiation
// for the same booking supersedes any older bill.
type PaymentBill struct {
	BillID    string `json:"bill_id"`
	Reference string `json:"transaction_reference,omitempty"`
	BookingID int    `json:"booking_id"`
	Amount    int    `json:"amount"`
	MSISDN    string `json:"msisdn"`
}

type PaymentTransaction struct {
	ID          int           `json:"id" db:"id"`
	Reference   string        `json:"reference" db:"reference"`
	BillID      string        `json:"bill_id" db:"bill_id"`
	BookingID   int           `json:"booking_id" db:"booking_id"`
	Amount      int           `json:"amount" db:"amount"`
	Method      PaymentMethod `json:"payment_method" db:"payment_method"`
	PayerMSISDN string        `json:"payer_msisdn" db:"payer_msisdn"`
	Status      VerifyStatus  `json:"status" db:"status"`
	Message     string        `json:"message,omitempty" db:"message"`
	CompletedAt *time.Time    `json:"completed_at,omitempty" db:"completed_at"`
	CreatedAt   time.Time     `json:"created_at" db:"created_at"`
}
