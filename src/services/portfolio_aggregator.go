package services

import (
	"sort"

	"github.com/username/stonksoverwatch/backend/src/brokers"
	"github.com/username/stonksoverwatch/backend/src/models"
	"github.com/username/stonksoverwatch/backend/src/utils"
)

// PortfolioAggregator merges positions across brokers and owns the
// post-merge calculations: per-entry portfolio weight and the combined
// totals.
type PortfolioAggregator struct {
	aggregator
	baseCurrency string
}

func NewPortfolioAggregator(registry *brokers.Registry, config ConfigProvider, baseCurrency string) *PortfolioAggregator {
	return &PortfolioAggregator{
		aggregator:   aggregator{registry: registry, config: config},
		baseCurrency: baseCurrency,
	}
}

// GetPortfolio returns the merged portfolio with weights computed against
// the total open value of this aggregation pass. Weights are never cached
// across calls.
func (a *PortfolioAggregator) GetPortfolio(selector models.PortfolioSelector) []models.PortfolioEntry {
	var merged []models.PortfolioEntry
	a.eachBroker(selector, models.ServicePortfolio, func(name string, caps brokers.Capabilities) {
		entries, err := caps.Portfolio.GetPortfolio()
		if err != nil {
			logBrokerError(name, models.ServicePortfolio, err)
			return
		}
		merged = append(merged, entries...)
	})

	var totalValue float64
	for _, e := range merged {
		if e.IsOpen {
			totalValue += e.BaseValue
		}
	}
	if totalValue != 0 {
		for i := range merged {
			if merged[i].IsOpen {
				merged[i].PortfolioSize = utils.RoundFloat(merged[i].BaseValue/totalValue, 6)
				merged[i].Format(a.baseCurrency)
			}
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].BaseValue > merged[j].BaseValue
	})
	return merged
}

// GetTotalPortfolio combines each broker's own totals by summation and
// derives ROI once from the combined numbers.
func (a *PortfolioAggregator) GetTotalPortfolio(selector models.PortfolioSelector) models.TotalPortfolio {
	var total models.TotalPortfolio
	a.eachBroker(selector, models.ServicePortfolio, func(name string, caps brokers.Capabilities) {
		brokerTotal, err := caps.Portfolio.GetTotalPortfolio()
		if err != nil {
			logBrokerError(name, models.ServicePortfolio, err)
			return
		}
		total.TotalPL += brokerTotal.TotalPL
		total.TotalCash += brokerTotal.TotalCash
		total.CurrentValue += brokerTotal.CurrentValue
		total.TotalDepositWithdrawal += brokerTotal.TotalDepositWithdrawal
	})

	if total.TotalDepositWithdrawal != 0 {
		total.TotalROI = utils.RoundFloat((total.CurrentValue/total.TotalDepositWithdrawal-1)*100, 2)
	}
	total.Format(a.baseCurrency)
	return total
}
