package dto

import (
	"time"

	domainbooking "retreat/internal/domain/booking"
	domainpricing "retreat/internal/domain/pricing"
	"retreat/internal/domain/shared/money"
)

type MoneyDTO struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type QuoteDTO struct {
	Nights   int      `json:"nights"`
	Subtotal MoneyDTO `json:"subtotal"`
	Tax      MoneyDTO `json:"tax"`
	Total    MoneyDTO `json:"total"`
}

type BookingIntentSummary struct {
	ID          string    `json:"id"`
	GuestEmail  string    `json:"guest_email"`
	Guests      int       `json:"guests"`
	CheckIn     string    `json:"check_in"`
	CheckOut    string    `json:"check_out"`
	Status      string    `json:"status"`
	CheckoutRef string    `json:"checkout_ref,omitempty"`
	Quote       QuoteDTO  `json:"quote"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type CheckoutResponse struct {
	Intent      BookingIntentSummary `json:"intent"`
	RedirectURL string               `json:"redirect_url"`
}

func MapMoney(value money.Money) MoneyDTO {
	return MoneyDTO{
		Amount:   value.Amount,
		Currency: value.Currency,
	}
}

func MapQuote(quote domainpricing.Quote) QuoteDTO {
	return QuoteDTO{
		Nights:   quote.Nights,
		Subtotal: MapMoney(quote.Subtotal),
		Tax:      MapMoney(quote.Tax),
		Total:    MapMoney(quote.Total),
	}
}

func MapBookingIntentSummary(intent *domainbooking.Intent) BookingIntentSummary {
	return BookingIntentSummary{
		ID:          string(intent.ID),
		GuestEmail:  intent.GuestEmail,
		Guests:      intent.Guests,
		CheckIn:     intent.Range.CheckIn.Format("2006-01-02"),
		CheckOut:    intent.Range.CheckOut.Format("2006-01-02"),
		Status:      string(intent.Status),
		CheckoutRef: intent.CheckoutRef,
		Quote:       MapQuote(intent.Quote),
		CreatedAt:   intent.CreatedAt,
		UpdatedAt:   intent.UpdatedAt,
	}
}
