package services

import (
	"sort"

	"github.com/username/stonksoverwatch/backend/src/brokers"
	"github.com/username/stonksoverwatch/backend/src/models"
)

// DividendsAggregator merges paid and upcoming dividends across brokers.
type DividendsAggregator struct {
	aggregator
}

func NewDividendsAggregator(registry *brokers.Registry, config ConfigProvider) *DividendsAggregator {
	return &DividendsAggregator{aggregator{registry: registry, config: config}}
}

// GetDividends returns every matching broker's dividends, most recent
// payment first.
func (a *DividendsAggregator) GetDividends(selector models.PortfolioSelector) []models.Dividend {
	var merged []models.Dividend
	a.eachBroker(selector, models.ServiceDividend, func(name string, caps brokers.Capabilities) {
		dividends, err := caps.Dividends.GetDividends()
		if err != nil {
			logBrokerError(name, models.ServiceDividend, err)
			return
		}
		merged = append(merged, dividends...)
	})

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Timestamp.After(merged[j].Timestamp)
	})
	return merged
}
