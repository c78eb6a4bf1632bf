package payments

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyAcceptsOwnSignature(t *testing.T) {
	v := NewVerifier("whsec_test")
	payload := []byte(`{"type":"payment.succeeded","checkout_reference":"cs_1"}`)

	assert.NoError(t, v.Verify(payload, v.Sign(payload)))
}

func TestVerifyRejectsTampering(t *testing.T) {
	v := NewVerifier("whsec_test")
	payload := []byte(`{"type":"payment.succeeded","checkout_reference":"cs_1"}`)
	sig := v.Sign(payload)

	tampered := []byte(`{"type":"payment.succeeded","checkout_reference":"cs_2"}`)
	assert.ErrorIs(t, v.Verify(tampered, sig), ErrInvalidSignature)
}

func TestVerifyRejectsForeignSecretAndJunk(t *testing.T) {
	payload := []byte(`{}`)
	theirs := NewVerifier("whsec_other").Sign(payload)

	v := NewVerifier("whsec_test")
	assert.ErrorIs(t, v.Verify(payload, theirs), ErrInvalidSignature)
	assert.ErrorIs(t, v.Verify(payload, ""), ErrInvalidSignature)
	assert.ErrorIs(t, v.Verify(payload, "not-hex"), ErrInvalidSignature)
}

func TestVerifyRequiresConfiguredSecret(t *testing.T) {
	v := NewVerifier("")
	payload := []byte(`{}`)
	assert.ErrorIs(t, v.Verify(payload, v.Sign(payload)), ErrInvalidSignature)
}

func TestParseNotification(t *testing.T) {
	n, err := ParseNotification([]byte(`{
		"type": "payment.succeeded",
		"checkout_reference": "cs_test_123",
		"amount_cents": 115020,
		"metadata": {"check_in": "2025-12-24", "check_out": "2025-12-27"}
	}`))
	require.NoError(t, err)
	assert.Equal(t, EventSucceeded, n.Type)
	assert.Equal(t, "cs_test_123", n.Reference)
	assert.Equal(t, int64(115020), n.AmountCents)
	assert.Equal(t, "2025-12-24", n.Metadata["check_in"])
}

func TestParseNotificationRejectsMalformed(t *testing.T) {
	_, err := ParseNotification([]byte(`not json`))
	assert.ErrorIs(t, err, ErrMalformedPayload)

	_, err = ParseNotification([]byte(`{"type":"payment.succeeded"}`))
	assert.ErrorIs(t, err, ErrMalformedPayload)

	_, err = ParseNotification([]byte(`{"type":"checkout.opened","checkout_reference":"cs_1"}`))
	assert.ErrorIs(t, err, ErrMalformedPayload)
}
