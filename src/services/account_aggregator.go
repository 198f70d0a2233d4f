package services

import (
	"sort"

	"github.com/username/stonksoverwatch/backend/src/brokers"
	"github.com/username/stonksoverwatch/backend/src/models"
)

// AccountAggregator merges raw account movements across brokers.
type AccountAggregator struct {
	aggregator
}

func NewAccountAggregator(registry *brokers.Registry, config ConfigProvider) *AccountAggregator {
	return &AccountAggregator{aggregator{registry: registry, config: config}}
}

// GetAccountOverview returns every matching broker's account movements,
// most recent first.
func (a *AccountAggregator) GetAccountOverview(selector models.PortfolioSelector) []models.AccountOverview {
	var merged []models.AccountOverview
	a.eachBroker(selector, models.ServiceAccount, func(name string, caps brokers.Capabilities) {
		overview, err := caps.Account.GetAccountOverview()
		if err != nil {
			logBrokerError(name, models.ServiceAccount, err)
			return
		}
		merged = append(merged, overview...)
	})

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Timestamp.After(merged[j].Timestamp)
	})
	return merged
}
