// Package currency converts monetary amounts between ISO currency codes at
// an optional historical reference date. Rates come from the DeGiro FX
// product quotation history when the pair is known there, with a
// general-purpose ECB fallback that accepts approximate dates.
package currency

import (
	"fmt"
	"strings"
	"time"

	"github.com/username/stonksoverwatch/backend/src/logger"
)

// RateSource yields broker-native historical FX rates. ok is false when the
// pair is not part of the source's product set or the stored quote is null;
// the converter then falls through to the fallback rater.
type RateSource interface {
	HistoricalRate(from, to string, date time.Time) (rate float64, ok bool, err error)
}

// FallbackRater resolves a rate for arbitrary pairs, tolerating missing
// dates by returning the nearest earlier quote.
type FallbackRater interface {
	Rate(from, to string, date time.Time) (float64, error)
}

// Converter bridges the two rate sources.
type Converter struct {
	source   RateSource // may be nil
	fallback FallbackRater
}

// NewConverter builds a converter. source may be nil when no broker FX
// history is available; fallback must not be nil.
func NewConverter(source RateSource, fallback FallbackRater) *Converter {
	return &Converter{source: source, fallback: fallback}
}

// Convert converts amount from one currency to another at the given date.
// Conversion between identical codes is the identity.
func (c *Converter) Convert(amount float64, from, to string, date time.Time) (float64, error) {
	from = strings.ToUpper(strings.TrimSpace(from))
	to = strings.ToUpper(strings.TrimSpace(to))

	if from == to {
		return amount, nil
	}

	if c.source != nil {
		rate, ok, err := c.source.HistoricalRate(from, to, date)
		if err != nil {
			logger.L.Warn("Broker FX lookup failed, using fallback converter", "from", from, "to", to, "error", err)
		} else if ok && rate > 0 {
			return amount * rate, nil
		}
	}

	rate, err := c.fallback.Rate(from, to, date)
	if err != nil {
		return 0, fmt.Errorf("converting %s to %s: %w", from, to, err)
	}
	return amount * rate, nil
}
