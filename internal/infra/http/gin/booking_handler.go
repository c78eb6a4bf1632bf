package ginserver

import (
	"errors"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"retreat/internal/app/dto"
	"retreat/internal/app/policies"
	bookingapp "retreat/internal/app/services/booking"
	domainavailability "retreat/internal/domain/availability"
	domainbooking "retreat/internal/domain/booking"
	domainpricing "retreat/internal/domain/pricing"
	"retreat/internal/domain/shared/daterange"
)

type BookingHandler struct {
	Service *bookingapp.Service
}

type createBookingRequest struct {
	CheckIn    string `json:"check_in"`
	CheckOut   string `json:"check_out"`
	Guests     int    `json:"guests"`
	GuestEmail string `json:"guest_email"`
}

func (h BookingHandler) Create(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	checkIn, err := daterange.ParseDay(req.CheckIn)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid check_in: want YYYY-MM-DD"})
		return
	}
	checkOut, err := daterange.ParseDay(req.CheckOut)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid check_out: want YYYY-MM-DD"})
		return
	}

	result, err := h.Service.CreateIntent(c.Request.Context(), bookingapp.CreateIntentInput{
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		Guests:     req.Guests,
		GuestEmail: req.GuestEmail,
	})
	if err != nil {
		status := statusForBookingError(err)
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"intent_id":    result.IntentID,
		"checkout_ref": result.CheckoutRef,
		"redirect_url": result.RedirectURL,
		"quote":        dto.MapQuote(result.Quote),
	})
}

func statusForBookingError(err error) int {
	switch {
	case errors.Is(err, daterange.ErrInvalidRange),
		errors.Is(err, domainbooking.ErrCheckInInPast),
		errors.Is(err, domainbooking.ErrInvalidGuests),
		errors.Is(err, domainbooking.ErrGuestEmailEmpty):
		return http.StatusBadRequest
	case errors.Is(err, domainavailability.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domainpricing.ErrNoRateConfigured):
		return http.StatusServiceUnavailable
	case errors.Is(err, policies.ErrGateway):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

var _ BookingHTTP = BookingHandler{}
