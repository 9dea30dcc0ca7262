package gateway

import (
	"context"
	"sync"

	"cinepay/entity"
)

type PaymentsMock struct {
	lock sync.Mutex

	// InitiateResponse is returned from every Initiate call.
	InitiateResponse InitiatePaymentResponse
	InitiateErr      error

	// VerifyResponses are consumed in order; the last one repeats once the
	// script runs out. An empty script reports pending forever.
	VerifyResponses []VerifyPaymentResponse
	VerifyErrs      []error

	InitiateCalls int
	VerifyCalls   int
	CancelCalls   int

	CancelledRefs []string
}

func (m *PaymentsMock) Initiate(ctx context.Context, request InitiatePaymentRequest) (InitiatePaymentResponse, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.InitiateCalls++
	if m.InitiateErr != nil {
		return InitiatePaymentResponse{}, m.InitiateErr
	}

	return m.InitiateResponse, nil
}

func (m *PaymentsMock) Verify(ctx context.Context, billID string) (VerifyPaymentResponse, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	i := m.VerifyCalls
	m.VerifyCalls++

	if i < len(m.VerifyErrs) && m.VerifyErrs[i] != nil {
		return VerifyPaymentResponse{}, m.VerifyErrs[i]
	}

	if len(m.VerifyResponses) == 0 {
		return VerifyPaymentResponse{Success: true, Status: entity.VerifyPending}, nil
	}
	if i >= len(m.VerifyResponses) {
		i = len(m.VerifyResponses) - 1
	}

	return m.VerifyResponses[i], nil
}

func (m *PaymentsMock) CancelTransaction(ctx context.Context, reference string) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.CancelCalls++
	m.CancelledRefs = append(m.CancelledRefs, reference)

	return nil
}

func (m *PaymentsMock) Calls() (initiate, verify int) {
	m.lock.Lock()
	defer m.lock.Unlock()

	return m.InitiateCalls, m.VerifyCalls
}
