package degiro

import (
	"strings"

	"github.com/username/stonksoverwatch/backend/src/brokers"
	"github.com/username/stonksoverwatch/backend/src/models"
)

func isDividendMovement(description string) bool {
	lower := strings.ToLower(description)
	return strings.Contains(lower, "dividend")
}

func isDividendTax(description string) bool {
	lower := strings.ToLower(description)
	return strings.Contains(lower, "dividendbelasting") || strings.Contains(lower, "dividend tax")
}

// GetDividends lists paid dividends from the cash-movement history plus
// announced upcoming ones. Withholding tax rows are folded into the
// matching payment (same product and date) instead of appearing as
// separate records.
func (s *Service) GetDividends() ([]models.Dividend, error) {
	movements, err := s.repo.ListCashMovements()
	if err != nil {
		return nil, err
	}

	type key struct{ isin, date string }
	index := make(map[key]int)
	var dividends []models.Dividend

	for _, m := range movements {
		if !isDividendMovement(m.Description) {
			continue
		}
		k := key{m.ISIN, m.Date}
		ts := parseTimestamp(m.Date, m.Time)

		idx, exists := index[k]
		if !exists {
			dividends = append(dividends, models.Dividend{
				Timestamp:   ts,
				Broker:      brokers.BrokerDeGiro,
				PaymentDate: ts.Format(displayDateFormat),
				Name:        m.ProductName,
				Symbol:      m.Symbol,
				Currency:    m.Currency,
				Type:        models.DividendTypePaid,
			})
			idx = len(dividends) - 1
			index[k] = idx
		}

		if isDividendTax(m.Description) {
			dividends[idx].Taxes += m.Change
		} else {
			dividends[idx].Amount += m.Change
		}
	}

	upcoming, err := s.repo.ListUpcomingDividends()
	if err != nil {
		return nil, err
	}
	for _, u := range upcoming {
		ts := parseTimestamp(u.PayDate, "")
		dividends = append(dividends, models.Dividend{
			Timestamp:   ts,
			Broker:      brokers.BrokerDeGiro,
			PaymentDate: ts.Format(displayDateFormat),
			Name:        u.ProductName,
			Symbol:      u.Symbol,
			Currency:    u.Currency,
			Amount:      u.Amount,
			Type:        models.DividendTypeUpcoming,
		})
	}

	return dividends, nil
}
