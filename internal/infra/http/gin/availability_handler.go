package ginserver

import (
	"errors"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"retreat/internal/app/dto"
	availabilityapp "retreat/internal/app/services/availability"
	domainpricing "retreat/internal/domain/pricing"
	"retreat/internal/domain/shared/daterange"
)

type AvailabilityHandler struct {
	Queries *availabilityapp.Service
}

func (h AvailabilityHandler) Calendar(c *gin.Context) {
	days, err := h.Queries.BlockedDates(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load calendar"})
		return
	}
	c.JSON(http.StatusOK, dto.MapBlockedDates(days))
}

func (h AvailabilityHandler) Quote(c *gin.Context) {
	dr, ok := bindDayRangeQuery(c)
	if !ok {
		return
	}
	quote, err := h.Queries.Quote(c.Request.Context(), dr)
	if err != nil {
		if errors.Is(err, domainpricing.ErrNoRateConfigured) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no rate configured"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to price stay"})
		return
	}
	c.JSON(http.StatusOK, dto.MapQuote(quote))
}

// bindDayRangeQuery reads check_in/check_out query params as calendar days.
func bindDayRangeQuery(c *gin.Context) (daterange.DateRange, bool) {
	checkIn, err := daterange.ParseDay(c.Query("check_in"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid check_in: want YYYY-MM-DD"})
		return daterange.DateRange{}, false
	}
	checkOut, err := daterange.ParseDay(c.Query("check_out"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid check_out: want YYYY-MM-DD"})
		return daterange.DateRange{}, false
	}
	dr, err := daterange.New(checkIn, checkOut)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return daterange.DateRange{}, false
	}
	return dr, true
}

var _ AvailabilityHTTP = AvailabilityHandler{}
