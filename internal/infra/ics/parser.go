package ics

import (
	"regexp"
	"strings"
	"time"

	"retreat/internal/domain/availability"
)

var (
	startPattern   = regexp.MustCompile(`DTSTART[;:].*?(\d{8})`)
	endPattern     = regexp.MustCompile(`DTEND[;:].*?(\d{8})`)
	summaryPattern = regexp.MustCompile(`SUMMARY:(.*)`)
)

// Result is the best-effort outcome of parsing one feed. Malformed event
// blocks are skipped and counted rather than failing the whole feed; the
// caller decides whether to surface a warning.
type Result struct {
	Records []availability.BlockedDate
	Skipped int
}

// Parse normalizes an ICS-style feed into one blocked record per occupied
// night. Each VEVENT expands to the nights in [DTSTART, DTEND); the DTEND
// day itself stays free, matching the checkout-day convention. The source
// is classified from the event summary by case-sensitive substring match
// against known platform names, falling back to the feed's platform hint
// and then to "external:other".
// Parsing is pure and idempotent, so repeated syncs are safe to upsert.
func Parse(feed, platformHint string) Result {
	var res Result
	blocks := strings.Split(feed, "BEGIN:VEVENT")
	for _, block := range blocks[1:] {
		start, ok := matchDay(startPattern, block)
		if !ok {
			res.Skipped++
			continue
		}
		end, ok := matchDay(endPattern, block)
		if !ok {
			res.Skipped++
			continue
		}
		label := "Blocked"
		if m := summaryPattern.FindStringSubmatch(block); m != nil {
			label = strings.TrimSpace(m[1])
		}
		source := classify(label, platformHint)
		for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
			res.Records = append(res.Records, availability.BlockedDate{
				Date:   d,
				Source: source,
				Label:  label,
			})
		}
	}
	return res
}

func matchDay(pattern *regexp.Regexp, block string) (time.Time, bool) {
	m := pattern.FindStringSubmatch(block)
	if m == nil {
		return time.Time{}, false
	}
	day, err := time.ParseInLocation("20060102", m[1], time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return day, true
}

func classify(label, platformHint string) availability.Source {
	switch {
	case strings.Contains(label, "Airbnb"):
		return availability.ExternalSource("airbnb")
	case strings.Contains(label, "VRBO"):
		return availability.ExternalSource("vrbo")
	case platformHint != "":
		return availability.ExternalSource(platformHint)
	default:
		return availability.ExternalSource("other")
	}
}
