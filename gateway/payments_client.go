package gateway

import (
	"context"
	"fmt"
	"net/http"

	"cinepay/entity"
)

type PaymentsClient struct {
	client *Client
}

func NewPaymentsClient(client *Client) PaymentsClient {
	return PaymentsClient{client: client}
}

type InitiatePaymentRequest struct {
	BookingID     int                  `json:"booking_id"`
	PaymentMethod entity.PaymentMethod `json:"payment_method"`
	MSISDN        string               `json:"msisdn"`
}

// InitiatePaymentResponse reports the outcome of triggering a mobile-money
// charge. Success with an empty BillID is valid backend behavior: the charge
// is underway but there is no independently pollable bill, so status must be
// tracked through the booking itself.
type InitiatePaymentResponse struct {
	Success   bool   `json:"success"`
	BillID    string `json:"bill_id"`
	Reference string `json:"transaction_reference"`
	Message   string `json:"message"`
}

func (c PaymentsClient) Initiate(ctx context.Context, request InitiatePaymentRequest) (InitiatePaymentResponse, error) {
	var resp InitiatePaymentResponse
	err := c.client.do(ctx, http.MethodPost, "/payments/initiate", request, &resp)
	if err != nil {
		return InitiatePaymentResponse{}, err
	}

	return resp, nil
}

type VerifyPaymentResponse struct {
	Success bool                `json:"success"`
	Status  entity.VerifyStatus `json:"status"`
	Message string              `json:"message"`
	Booking *entity.Booking     `json:"booking"`
}

func (c PaymentsClient) Verify(ctx context.Context, billID string) (VerifyPaymentResponse, error) {
	var resp VerifyPaymentResponse
	err := c.client.do(ctx, http.MethodPost, "/payments/verify", map[string]string{"bill_id": billID}, &resp)
	if err != nil {
		return VerifyPaymentResponse{}, fmt.Errorf("could not verify bill %s: %w", billID, err)
	}

	return resp, nil
}

func (c PaymentsClient) CancelTransaction(ctx context.Context, reference string) error {
	var resp struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	err := c.client.do(ctx, http.MethodPost, "/payments/cancel", map[string]string{"transaction_reference": reference}, &resp)
	if err != nil {
		return fmt.Errorf("could not cancel transaction %s: %w", reference, err)
	}
	if !resp.Success {
		return fmt.Errorf("transaction %s was not cancelled: %s", reference, resp.Message)
	}

	return nil
}

type PaymentHistoryPage struct {
	Success bool `json:"success"`
	Data    struct {
		CurrentPage int                         `json:"current_page"`
		Data        []entity.PaymentTransaction `json:"data"`
		LastPage    int                         `json:"last_page"`
		PerPage     int                         `json:"per_page"`
		Total       int                         `json:"total"`
	} `json:"data"`
}

func (c PaymentsClient) History(ctx context.Context, page, perPage int) (PaymentHistoryPage, error) {
	var resp PaymentHistoryPage
	path := fmt.Sprintf("/payments/history?page=%d&per_page=%d", page, perPage)
	err := c.client.do(ctx, http.MethodGet, path, nil, &resp)
	if err != nil {
		return PaymentHistoryPage{}, fmt.Errorf("could not get payment history: %w", err)
	}

	return resp, nil
}
