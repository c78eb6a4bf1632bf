package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrInvalidSignature means the notification could not be attributed
	// to the gateway. Callers must discard it without touching state.
	ErrInvalidSignature = errors.New("payments: notification signature mismatch")
	ErrMalformedPayload = errors.New("payments: malformed notification payload")
)

const (
	EventSucceeded = "payment.succeeded"
	EventFailed    = "payment.failed"
)

// Notification is a verified payment outcome. Delivery is asynchronous,
// at-least-once and unordered across checkouts.
type Notification struct {
	Type        string            `json:"type"`
	Reference   string            `json:"checkout_reference"`
	AmountCents int64             `json:"amount_cents"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// Verifier authenticates inbound notifications with the shared webhook
// secret before anything downstream is allowed to trust them.
type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Verify checks the hex-encoded HMAC-SHA256 of the raw body in constant
// time. An empty or mismatching signature fails verification.
func (v *Verifier) Verify(payload []byte, signature string) error {
	if len(v.secret) == 0 {
		return fmt.Errorf("%w: webhook secret not configured", ErrInvalidSignature)
	}
	provided, err := hex.DecodeString(signature)
	if err != nil || len(provided) == 0 {
		return ErrInvalidSignature
	}
	mac := hmac.New(sha256.New, v.secret)
	mac.Write(payload)
	if !hmac.Equal(mac.Sum(nil), provided) {
		return ErrInvalidSignature
	}
	return nil
}

// Sign computes the signature for a payload; the test half of Verify.
func (v *Verifier) Sign(payload []byte) string {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// ParseNotification decodes a verified payload into a Notification.
func ParseNotification(payload []byte) (Notification, error) {
	var n Notification
	if err := json.Unmarshal(payload, &n); err != nil {
		return Notification{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if n.Reference == "" {
		return Notification{}, fmt.Errorf("%w: missing checkout reference", ErrMalformedPayload)
	}
	switch n.Type {
	case EventSucceeded, EventFailed:
	default:
		return Notification{}, fmt.Errorf("%w: unknown event type %q", ErrMalformedPayload, n.Type)
	}
	return n, nil
}
