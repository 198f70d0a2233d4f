package degiro

import (
	"fmt"
	"strings"

	"github.com/username/stonksoverwatch/backend/src/brokers"
	"github.com/username/stonksoverwatch/backend/src/models"
)

// classifyFee resolves a cash-movement description to a fee type by
// substring match. Descriptions that match nothing are not fees and stay
// out of the fee totals entirely.
func classifyFee(description string) (models.FeeType, bool) {
	switch {
	case strings.Contains(description, "Transaction Tax"):
		return models.FeeTypeFinanceTransactionTax, true
	case strings.Contains(description, "Aansluitingskosten"):
		return models.FeeTypeConnection, true
	case strings.Contains(description, "ADR/GDR"):
		return models.FeeTypeADRGDR, true
	default:
		return "", false
	}
}

// GetAccountFees lists classified account fees plus per-trade transaction
// costs. Trade-linked entries carry the past-tense side label ("Bought" /
// "Sold"), unlike the trade listing itself.
func (s *Service) GetAccountFees() ([]models.Fee, error) {
	movements, err := s.repo.ListCashMovements()
	if err != nil {
		return nil, err
	}

	var fees []models.Fee
	for _, m := range movements {
		feeType, ok := classifyFee(m.Description)
		if !ok {
			continue
		}
		ts := parseTimestamp(m.Date, m.Time)
		fees = append(fees, models.Fee{
			Timestamp:   ts,
			Broker:      brokers.BrokerDeGiro,
			Date:        ts.Format(displayDateFormat),
			Time:        m.Time,
			Type:        feeType,
			Description: m.Description,
			Value:       m.Change,
			Currency:    m.Currency,
		})
	}

	trades, err := s.repo.ListTransactions()
	if err != nil {
		return nil, err
	}
	for _, t := range trades {
		if t.Fee == 0 {
			continue
		}
		ts := parseTimestamp(t.Date, t.Time)
		side := models.BuySellFromCode(t.BuySell)
		fees = append(fees, models.Fee{
			Timestamp:   ts,
			Broker:      brokers.BrokerDeGiro,
			Date:        ts.Format(displayDateFormat),
			Time:        t.Time,
			Type:        models.FeeTypeTransaction,
			Description: fmt.Sprintf("%s %s", side.PastTense(), t.ProductName),
			Value:       -absFloat(t.Fee),
			Currency:    t.Currency,
		})
	}

	return fees, nil
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
