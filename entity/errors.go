package entity

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrUnauthenticated     = errors.New("not authenticated")
	ErrSeatsUnavailable    = errors.New("seats no longer available")
	ErrBookingNotRetryable = errors.New("booking is not awaiting payment")
)
