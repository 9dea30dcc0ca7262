package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"cinepay/auth"
	"cinepay/entity"
)

// Client is the shared plumbing for all cinema backend calls: base URL,
// traced transport, bearer token injection and error mapping.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     auth.TokenProvider
}

func NewClient(baseURL string, tokens auth.TokenProvider) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout:   30 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		tokens: tokens,
	}
}

// ValidationError carries the backend's 422 field errors concatenated into a
// single human-readable message.
type ValidationError struct {
	Message string
}

func (e ValidationError) Error() string {
	return e.Message
}

type errorResponse struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
}

func (r errorResponse) flatten() string {
	if len(r.Errors) == 0 {
		return r.Message
	}

	fields := make([]string, 0, len(r.Errors))
	for field := range r.Errors {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	var messages []string
	for _, field := range fields {
		messages = append(messages, r.Errors[field]...)
	}
	return strings.Join(messages, ", ")
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	token, err := auth.Check(ctx, c.tokens)
	if err != nil {
		return err
	}

	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("could not marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("could not create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("could not reach server: %w", err)
	}
	defer resp.Body.Close()

	logrus.WithFields(logrus.Fields{
		"method":   method,
		"path":     path,
		"status":   resp.StatusCode,
		"duration": time.Since(start),
	}).Debug("cinema API call")

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("could not decode response for %s %s: %w", method, path, err)
		}
		return nil
	}

	var errResp errorResponse
	_ = json.NewDecoder(resp.Body).Decode(&errResp)

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return entity.ErrUnauthenticated
	case http.StatusNotFound:
		return entity.ErrNotFound
	case http.StatusConflict:
		return fmt.Errorf("%s: %w", errResp.Message, entity.ErrSeatsUnavailable)
	case http.StatusUnprocessableEntity:
		return ValidationError{Message: errResp.flatten()}
	default:
		if errResp.Message != "" {
			return fmt.Errorf("unexpected status code for %s %s: %d: %s", method, path, resp.StatusCode, errResp.Message)
		}
		return fmt.Errorf("unexpected status code for %s %s: %d", method, path, resp.StatusCode)
	}
}
