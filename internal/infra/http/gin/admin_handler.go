package ginserver

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"

	"retreat/internal/app/dto"
	bookingapp "retreat/internal/app/services/booking"
	calendarsyncapp "retreat/internal/app/services/calendarsync"
	domainavailability "retreat/internal/domain/availability"
	domainpricing "retreat/internal/domain/pricing"
	"retreat/internal/domain/shared/daterange"
	"retreat/internal/domain/shared/money"
	"retreat/internal/infra/config"
)

type AdminHandler struct {
	Sync         *calendarsyncapp.Service
	Booking      *bookingapp.Service
	Availability domainavailability.Store
	Rates        domainpricing.RateLog
	Feeds        []config.CalendarFeed
	Currency     string
	Logger       *slog.Logger
	Now          func() time.Time
}

type syncCalendarsRequest struct {
	Platform string `json:"platform"`
	URL      string `json:"url"`
}

// SyncCalendars refreshes external blocked dates. With a body it syncs that
// single feed; without one it walks every configured feed. Per-feed failures
// are reported, not fatal, so one dead feed cannot stall the rest.
func (h AdminHandler) SyncCalendars(c *gin.Context) {
	var req syncCalendarsRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	feeds := h.Feeds
	if req.URL != "" {
		feeds = []config.CalendarFeed{{Platform: req.Platform, URL: req.URL}}
	}
	if len(feeds) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no calendar feeds configured"})
		return
	}

	type feedOutcome struct {
		Platform string                  `json:"platform"`
		Result   *calendarsyncapp.Result `json:"result,omitempty"`
		Error    string                  `json:"error,omitempty"`
	}
	outcomes := make([]feedOutcome, 0, len(feeds))
	for _, feed := range feeds {
		result, err := h.Sync.Sync(c.Request.Context(), feed.URL, feed.Platform)
		if err != nil {
			outcomes = append(outcomes, feedOutcome{Platform: feed.Platform, Error: err.Error()})
			continue
		}
		outcomes = append(outcomes, feedOutcome{Platform: feed.Platform, Result: &result})
	}
	c.JSON(http.StatusOK, gin.H{"feeds": outcomes})
}

type blockRequest struct {
	CheckIn  string `json:"check_in"`
	CheckOut string `json:"check_out"`
	Label    string `json:"label"`
}

func (h AdminHandler) CreateBlock(c *gin.Context) {
	var req blockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	dr, ok := bindDayRangeBody(c, req.CheckIn, req.CheckOut)
	if !ok {
		return
	}
	label := req.Label
	if label == "" {
		label = "Blocked by owner"
	}
	if err := h.Availability.BlockRange(c.Request.Context(), dr, domainavailability.SourceManual, label, ""); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to block dates"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"blocked_nights": dr.Nights()})
}

func (h AdminHandler) DeleteBlock(c *gin.Context) {
	var req blockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	dr, ok := bindDayRangeBody(c, req.CheckIn, req.CheckOut)
	if !ok {
		return
	}
	if err := h.Availability.UnblockRange(c.Request.Context(), dr, domainavailability.SourceManual, ""); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to unblock dates"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h AdminHandler) CurrentRate(c *gin.Context) {
	rate, err := h.Rates.Current(c.Request.Context())
	if err != nil {
		if errors.Is(err, domainpricing.ErrNoRateConfigured) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no rate configured"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load rate"})
		return
	}
	c.JSON(http.StatusOK, dto.MapRateConfig(rate))
}

type createRateRequest struct {
	NightlyCents     int64   `json:"nightly_cents"`
	CleaningFeeCents int64   `json:"cleaning_fee_cents"`
	TaxRatePercent   float64 `json:"tax_rate_percent"`
	EffectiveFrom    string  `json:"effective_from"`
}

func (h AdminHandler) CreateRate(c *gin.Context) {
	var req createRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	now := h.now()
	effectiveFrom := now
	if req.EffectiveFrom != "" {
		parsed, err := time.Parse(time.RFC3339, req.EffectiveFrom)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid effective_from: want RFC 3339"})
			return
		}
		effectiveFrom = parsed.UTC()
	}

	rc := domainpricing.RateConfig{
		Nightly:        money.Money{Amount: req.NightlyCents, Currency: h.Currency},
		CleaningFee:    money.Money{Amount: req.CleaningFeeCents, Currency: h.Currency},
		TaxRatePercent: req.TaxRatePercent,
		EffectiveFrom:  effectiveFrom,
		CreatedAt:      now,
	}
	if err := rc.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.Rates.Append(c.Request.Context(), rc); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store rate"})
		return
	}
	if h.Logger != nil {
		h.Logger.Info("rate configuration appended",
			"nightly", rc.Nightly.Amount, "cleaning_fee", rc.CleaningFee.Amount, "tax_rate", rc.TaxRatePercent)
	}
	c.JSON(http.StatusCreated, dto.MapRateConfig(rc))
}

func (h AdminHandler) Reconcile(c *gin.Context) {
	report, err := h.Booking.Reconcile(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "reconciliation failed"})
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h AdminHandler) now() time.Time {
	if h.Now != nil {
		return h.Now().UTC()
	}
	return time.Now().UTC()
}

func bindDayRangeBody(c *gin.Context, checkIn, checkOut string) (daterange.DateRange, bool) {
	in, err := daterange.ParseDay(checkIn)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid check_in: want YYYY-MM-DD"})
		return daterange.DateRange{}, false
	}
	out, err := daterange.ParseDay(checkOut)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid check_out: want YYYY-MM-DD"})
		return daterange.DateRange{}, false
	}
	dr, err := daterange.New(in, out)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return daterange.DateRange{}, false
	}
	return dr, true
}

var _ AdminHTTP = AdminHandler{}
