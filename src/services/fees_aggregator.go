package services

import (
	"sort"

	"github.com/username/stonksoverwatch/backend/src/brokers"
	"github.com/username/stonksoverwatch/backend/src/models"
)

// FeesAggregator merges classified account fees across brokers.
type FeesAggregator struct {
	aggregator
}

func NewFeesAggregator(registry *brokers.Registry, config ConfigProvider) *FeesAggregator {
	return &FeesAggregator{aggregator{registry: registry, config: config}}
}

// GetFees returns every matching broker's fees, most recent first.
func (a *FeesAggregator) GetFees(selector models.PortfolioSelector) []models.Fee {
	var merged []models.Fee
	a.eachBroker(selector, models.ServiceFee, func(name string, caps brokers.Capabilities) {
		fees, err := caps.Fees.GetAccountFees()
		if err != nil {
			logBrokerError(name, models.ServiceFee, err)
			return
		}
		merged = append(merged, fees...)
	})

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Timestamp.After(merged[j].Timestamp)
	})
	return merged
}
