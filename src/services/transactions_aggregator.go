package services

import (
	"sort"

	"github.com/username/stonksoverwatch/backend/src/brokers"
	"github.com/username/stonksoverwatch/backend/src/models"
)

// TransactionsAggregator merges trade listings across brokers.
type TransactionsAggregator struct {
	aggregator
}

func NewTransactionsAggregator(registry *brokers.Registry, config ConfigProvider) *TransactionsAggregator {
	return &TransactionsAggregator{aggregator{registry: registry, config: config}}
}

// GetTransactions returns every matching broker's transactions, most recent
// first. At equal timestamps sells sort before buys.
func (a *TransactionsAggregator) GetTransactions(selector models.PortfolioSelector) []models.Transaction {
	var merged []models.Transaction
	a.eachBroker(selector, models.ServiceTransaction, func(name string, caps brokers.Capabilities) {
		transactions, err := caps.Transactions.GetTransactions()
		if err != nil {
			logBrokerError(name, models.ServiceTransaction, err)
			return
		}
		merged = append(merged, transactions...)
	})

	sort.SliceStable(merged, func(i, j int) bool {
		ti, tj := merged[i], merged[j]
		if !ti.Timestamp.Equal(tj.Timestamp) {
			return ti.Timestamp.After(tj.Timestamp)
		}
		// Tie-break: sells ahead of buys at the same instant.
		return ti.BuySell == models.BuySellSell && tj.BuySell != models.BuySellSell
	})
	return merged
}
