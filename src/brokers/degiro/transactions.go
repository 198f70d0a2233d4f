package degiro

import (
	"github.com/username/stonksoverwatch/backend/src/brokers"
	"github.com/username/stonksoverwatch/backend/src/models"
)

// GetTransactions normalizes imported trades. Side codes map through the
// shared enumeration ("B" -> Buy, "S" -> Sell, anything else Unknown) and
// numeric type ids through the label table.
func (s *Service) GetTransactions() ([]models.Transaction, error) {
	rows, err := s.repo.ListTransactions()
	if err != nil {
		return nil, err
	}

	transactions := make([]models.Transaction, 0, len(rows))
	for _, row := range rows {
		ts := parseTimestamp(row.Date, row.Time)

		typeLabel := unknownTypeLabel
		if row.TransactionTypeID.Valid {
			typeLabel = transactionTypeLabel(row.TransactionTypeID.Int64)
		}

		totalBase := row.TotalBase
		if totalBase == 0 && row.Total != 0 {
			totalBase = s.toBase(row.Total, row.Currency, ts)
		}

		tx := models.Transaction{
			Timestamp:       ts,
			Broker:          brokers.BrokerDeGiro,
			Name:            row.ProductName,
			Symbol:          row.Symbol,
			Date:            ts.Format(displayDateFormat),
			Time:            row.Time,
			BuySell:         models.BuySellFromCode(row.BuySell),
			TransactionType: typeLabel,
			Price:           row.Price,
			Quantity:        row.Quantity,
			Total:           row.Total,
			TotalBase:       totalBase,
			Fee:             row.Fee,
			Currency:        row.Currency,
		}
		tx.Format(s.baseCurrency)
		transactions = append(transactions, tx)
	}
	return transactions, nil
}
