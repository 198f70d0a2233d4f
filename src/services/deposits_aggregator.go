package services

import (
	"sort"

	"github.com/username/stonksoverwatch/backend/src/brokers"
	"github.com/username/stonksoverwatch/backend/src/models"
)

// DepositsAggregator merges cash deposits and withdrawals across brokers.
type DepositsAggregator struct {
	aggregator
}

func NewDepositsAggregator(registry *brokers.Registry, config ConfigProvider) *DepositsAggregator {
	return &DepositsAggregator{aggregator{registry: registry, config: config}}
}

// GetDeposits returns every matching broker's deposits, most recent first.
func (a *DepositsAggregator) GetDeposits(selector models.PortfolioSelector) []models.Deposit {
	var merged []models.Deposit
	a.eachBroker(selector, models.ServiceDeposit, func(name string, caps brokers.Capabilities) {
		deposits, err := caps.Deposits.GetDeposits()
		if err != nil {
			logBrokerError(name, models.ServiceDeposit, err)
			return
		}
		merged = append(merged, deposits...)
	})

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Timestamp.After(merged[j].Timestamp)
	})
	return merged
}
