package services

import (
	"sort"

	"github.com/username/stonksoverwatch/backend/src/logger"
	"github.com/username/stonksoverwatch/backend/src/models"
	"github.com/username/stonksoverwatch/backend/src/utils"
)

const unclassifiedBucket = "Other"

// ProfileLookup resolves an ISIN to its sector classification. Implemented
// by the market data service; nil disables enrichment.
type ProfileLookup interface {
	Profile(isin string) (SecurityProfile, error)
}

// DiversificationSlice is one bucket of the breakdown.
type DiversificationSlice struct {
	Label           string  `json:"label"`
	Value           float64 `json:"value"`
	ValueFormatted  string  `json:"value_formatted"`
	Weight          float64 `json:"weight"`
	WeightFormatted string  `json:"weight_formatted"`
}

// Diversification is the portfolio broken down along several axes.
type Diversification struct {
	BySector      []DiversificationSlice `json:"by_sector"`
	ByCountry     []DiversificationSlice `json:"by_country"`
	ByProductType []DiversificationSlice `json:"by_product_type"`
	ByBroker      []DiversificationSlice `json:"by_broker"`
}

// DiversificationService computes portfolio breakdowns. Positions without
// a sector are enriched through the profile lookup when they carry an ISIN.
type DiversificationService struct {
	portfolio    *PortfolioAggregator
	profiles     ProfileLookup
	baseCurrency string
}

func NewDiversificationService(portfolio *PortfolioAggregator, profiles ProfileLookup, baseCurrency string) *DiversificationService {
	return &DiversificationService{portfolio: portfolio, profiles: profiles, baseCurrency: baseCurrency}
}

// GetDiversification breaks the open positions down by sector, country,
// product type and broker. Cash positions are excluded from the sector and
// country views but kept in the product-type view.
func (s *DiversificationService) GetDiversification(selector models.PortfolioSelector) Diversification {
	entries := s.portfolio.GetPortfolio(selector)

	var open []models.PortfolioEntry
	for _, e := range entries {
		if e.IsOpen {
			open = append(open, e)
		}
	}

	return Diversification{
		BySector:      s.slices(open, true, func(e models.PortfolioEntry) string { return s.sectorOf(e) }),
		ByCountry:     s.slices(open, true, func(e models.PortfolioEntry) string { return labelOr(e.Country) }),
		ByProductType: s.slices(open, false, func(e models.PortfolioEntry) string { return string(e.ProductType) }),
		ByBroker:      s.slices(open, false, func(e models.PortfolioEntry) string { return e.Broker }),
	}
}

func (s *DiversificationService) slices(entries []models.PortfolioEntry, skipCash bool, label func(models.PortfolioEntry) string) []DiversificationSlice {
	buckets := make(map[string]float64)
	var total float64
	for _, e := range entries {
		if skipCash && (e.ProductType == models.ProductTypeCash || e.ProductType == models.ProductTypeCurrency) {
			continue
		}
		buckets[label(e)] += e.BaseValue
		total += e.BaseValue
	}

	out := make([]DiversificationSlice, 0, len(buckets))
	for label, value := range buckets {
		slice := DiversificationSlice{
			Label:          label,
			Value:          value,
			ValueFormatted: utils.FormatMoney(value, s.baseCurrency),
		}
		if total != 0 {
			slice.Weight = value / total
			slice.WeightFormatted = utils.FormatPercentage(slice.Weight * 100)
		}
		out = append(out, slice)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Value > out[j].Value })
	return out
}

func (s *DiversificationService) sectorOf(e models.PortfolioEntry) string {
	if e.Sector != "" {
		return e.Sector
	}
	if s.profiles != nil && e.ISIN != "" {
		profile, err := s.profiles.Profile(e.ISIN)
		if err != nil {
			logger.L.Debug("Sector lookup failed", "isin", e.ISIN, "error", err)
		} else if profile.Sector != "" {
			return profile.Sector
		}
	}
	return unclassifiedBucket
}

func labelOr(label string) string {
	if label == "" {
		return unclassifiedBucket
	}
	return label
}
