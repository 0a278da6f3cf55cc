// Package stripe is a minimal form-encoded client for the handful of
// Stripe endpoints the billing service needs, plus webhook signature
// verification. The official SDK would pull in far more surface than
// these five calls justify.
package stripe

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/smallbiznis/advisorhub/internal/config"
)

var ErrRequestFailed = errors.New("stripe_request_failed")

type Customer struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type PortalSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type Subscription struct {
	ID                string `json:"id"`
	Customer          string `json:"customer"`
	Status            string `json:"status"`
	CurrentPeriodEnd  int64  `json:"current_period_end"`
	CancelAt          int64  `json:"cancel_at"`
	CancelAtPeriodEnd bool   `json:"cancel_at_period_end"`
}

type CheckoutParams struct {
	Customer   string
	PriceID    string
	SuccessURL string
	CancelURL  string
	Metadata   map[string]string
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewClient(cfg config.StripeConfig) *Client {
	return &Client{
		apiKey:  strings.TrimSpace(cfg.SecretKey),
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  &http.Client{Timeout: 12 * time.Second},
	}
}

func (c *Client) CreateCustomer(ctx context.Context, email, businessID string) (Customer, error) {
	values := url.Values{}
	values.Set("email", email)
	values.Set("metadata[business_id]", businessID)

	var customer Customer
	if err := c.do(ctx, http.MethodPost, "/v1/customers", values, &customer); err != nil {
		return Customer{}, err
	}
	if customer.ID == "" {
		return Customer{}, ErrRequestFailed
	}
	return customer, nil
}

func (c *Client) CreateCheckoutSession(ctx context.Context, params CheckoutParams) (CheckoutSession, error) {
	values := url.Values{}
	values.Set("customer", params.Customer)
	values.Set("mode", "subscription")
	values.Set("payment_method_types[]", "card")
	values.Set("line_items[0][price]", params.PriceID)
	values.Set("line_items[0][quantity]", "1")
	values.Set("success_url", params.SuccessURL)
	values.Set("cancel_url", params.CancelURL)
	for key, value := range params.Metadata {
		values.Set("metadata["+key+"]", value)
	}

	var session CheckoutSession
	if err := c.do(ctx, http.MethodPost, "/v1/checkout/sessions", values, &session); err != nil {
		return CheckoutSession{}, err
	}
	if session.ID == "" {
		return CheckoutSession{}, ErrRequestFailed
	}
	return session, nil
}

func (c *Client) CreatePortalSession(ctx context.Context, customerID, returnURL string) (PortalSession, error) {
	values := url.Values{}
	values.Set("customer", customerID)
	values.Set("return_url", returnURL)

	var session PortalSession
	if err := c.do(ctx, http.MethodPost, "/v1/billing_portal/sessions", values, &session); err != nil {
		return PortalSession{}, err
	}
	if session.ID == "" {
		return PortalSession{}, ErrRequestFailed
	}
	return session, nil
}

// CancelAtPeriodEnd flags the subscription to lapse at the end of the
// current billing period instead of terminating it immediately.
func (c *Client) CancelAtPeriodEnd(ctx context.Context, subscriptionID string) (Subscription, error) {
	values := url.Values{}
	values.Set("cancel_at_period_end", "true")

	var sub Subscription
	if err := c.do(ctx, http.MethodPost, "/v1/subscriptions/"+subscriptionID, values, &sub); err != nil {
		return Subscription{}, err
	}
	if sub.ID == "" {
		return Subscription{}, ErrRequestFailed
	}
	return sub, nil
}

func (c *Client) RetrieveSubscription(ctx context.Context, subscriptionID string) (Subscription, error) {
	var sub Subscription
	if err := c.do(ctx, http.MethodGet, "/v1/subscriptions/"+subscriptionID, nil, &sub); err != nil {
		return Subscription{}, err
	}
	if sub.ID == "" {
		return Subscription{}, ErrRequestFailed
	}
	return sub, nil
}

func (c *Client) do(ctx context.Context, method, path string, values url.Values, out any) error {
	if c.apiKey == "" {
		return ErrRequestFailed
	}

	body := ""
	if values != nil {
		body = values.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, strings.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if values != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var stripeErr errorResponse
		if err := json.NewDecoder(resp.Body).Decode(&stripeErr); err != nil {
			return ErrRequestFailed
		}
		message := strings.TrimSpace(stripeErr.Error.Message)
		if message == "" {
			return ErrRequestFailed
		}
		return errors.New(message)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
