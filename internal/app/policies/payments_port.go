package policies

import (
	"context"
	"errors"

	"retreat/internal/domain/shared/money"
)

// ErrGateway wraps any rejection or timeout from the payment platform.
// Callers surface it as retryable.
var ErrGateway = errors.New("payments: gateway request failed")

// CheckoutRequest asks the gateway to create a payable checkout for the
// quoted total. Metadata travels opaquely and comes back with outcome
// notifications, so any instance can correlate them.
type CheckoutRequest struct {
	IntentID      string
	Amount        money.Money
	CustomerEmail string
	Metadata      map[string]string
}

// Checkout is the gateway's handle for a payment attempt. Reference
// correlates asynchronous outcome notifications back to the intent.
type Checkout struct {
	Reference   string
	RedirectURL string
}

type PaymentsPort interface {
	CreateCheckout(ctx context.Context, req CheckoutRequest) (Checkout, error)
}
