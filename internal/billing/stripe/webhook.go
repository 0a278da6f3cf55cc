package stripe

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidSignature = errors.New("invalid_webhook_signature")
	ErrInvalidPayload   = errors.New("invalid_webhook_payload")
)

// Event is the outer webhook envelope. Data.Object stays raw until the
// handler knows which shape to decode.
type Event struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Created int64  `json:"created"`
	Data    struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

type CheckoutSessionObject struct {
	ID           string            `json:"id"`
	Customer     string            `json:"customer"`
	Subscription string            `json:"subscription"`
	Metadata     map[string]string `json:"metadata"`
}

type SubscriptionObject struct {
	ID               string `json:"id"`
	Customer         string `json:"customer"`
	Status           string `json:"status"`
	CurrentPeriodEnd int64  `json:"current_period_end"`
	CancelAt         int64  `json:"cancel_at"`
}

type InvoiceObject struct {
	ID         string `json:"id"`
	Customer   string `json:"customer"`
	AmountPaid int64  `json:"amount_paid"`
	AmountDue  int64  `json:"amount_due"`
	DueDate    int64  `json:"due_date"`
}

// VerifySignature checks a Stripe-Signature header (t=...,v1=...)
// against the raw request body. Multiple v1 entries are accepted;
// any single match passes.
func VerifySignature(payload []byte, header, secret string) error {
	header = strings.TrimSpace(header)
	if header == "" {
		return ErrInvalidSignature
	}

	var timestamp string
	var signatures []string
	for _, part := range strings.Split(header, ",") {
		piece := strings.TrimSpace(part)
		keyValue := strings.SplitN(piece, "=", 2)
		if len(keyValue) != 2 {
			continue
		}
		switch strings.TrimSpace(keyValue[0]) {
		case "t":
			timestamp = strings.TrimSpace(keyValue[1])
		case "v1":
			signatures = append(signatures, strings.TrimSpace(keyValue[1]))
		}
	}
	if timestamp == "" || len(signatures) == 0 {
		return ErrInvalidSignature
	}

	expected := Sign(payload, timestamp, secret)
	for _, signature := range signatures {
		if hmac.Equal([]byte(signature), []byte(expected)) {
			return nil
		}
	}
	return ErrInvalidSignature
}

// Sign computes the hex HMAC-SHA256 of "<timestamp>.<payload>".
func Sign(payload []byte, timestamp, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write([]byte(fmt.Sprintf("%s.%s", timestamp, payload)))
	return hex.EncodeToString(mac.Sum(nil))
}

func ParseEvent(payload []byte) (Event, error) {
	var event Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return Event{}, ErrInvalidPayload
	}
	if strings.TrimSpace(event.ID) == "" || strings.TrimSpace(event.Type) == "" {
		return Event{}, ErrInvalidPayload
	}
	return event, nil
}
