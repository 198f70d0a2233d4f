package degiro

import (
	"github.com/username/stonksoverwatch/backend/src/brokers"
	"github.com/username/stonksoverwatch/backend/src/models"
)

// GetAccountOverview lists every imported account movement, including the
// optional running balance and unsettled cash when the broker reported
// them.
func (s *Service) GetAccountOverview() ([]models.AccountOverview, error) {
	movements, err := s.repo.ListCashMovements()
	if err != nil {
		return nil, err
	}

	overview := make([]models.AccountOverview, 0, len(movements))
	for _, m := range movements {
		ts := parseTimestamp(m.Date, m.Time)
		entry := models.AccountOverview{
			Timestamp:    ts,
			Broker:       brokers.BrokerDeGiro,
			Date:         ts.Format(displayDateFormat),
			Time:         m.Time,
			ValueDate:    m.ValueDate,
			Name:         m.ProductName,
			Symbol:       m.Symbol,
			Description:  m.Description,
			MovementType: m.MovementType,
			Currency:     m.Currency,
			Change:       m.Change,
		}
		if m.Balance.Valid {
			balance := m.Balance.Float64
			entry.Balance = &balance
		}
		if m.UnsettledCash.Valid {
			unsettled := m.UnsettledCash.Float64
			entry.UnsettledCash = &unsettled
		}
		overview = append(overview, entry)
	}
	return overview, nil
}
