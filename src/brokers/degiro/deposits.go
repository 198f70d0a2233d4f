package degiro

import (
	"strings"

	"github.com/username/stonksoverwatch/backend/src/brokers"
	"github.com/username/stonksoverwatch/backend/src/models"
)

// classifyDeposit resolves a cash-movement description into deposit or
// withdrawal. DeGiro exports use Dutch and English descriptions depending
// on account locale ("iDEAL storting", "flatex Deposit", "Terugstorting").
// Order matters: "Terugstorting" contains "storting" but is an outflow.
func classifyDeposit(description string) (models.DepositType, bool) {
	lower := strings.ToLower(description)
	switch {
	case strings.Contains(lower, "terugstorting"), strings.Contains(lower, "withdrawal"):
		return models.DepositTypeWithdrawal, true
	case strings.Contains(lower, "storting"), strings.Contains(lower, "deposit"):
		return models.DepositTypeDeposit, true
	default:
		return "", false
	}
}

// GetDeposits lists cash inflows and outflows. The raw change amount is
// preserved exactly as the broker reported it, sign included.
func (s *Service) GetDeposits() ([]models.Deposit, error) {
	movements, err := s.repo.ListCashMovements()
	if err != nil {
		return nil, err
	}

	var deposits []models.Deposit
	for _, m := range movements {
		depositType, ok := classifyDeposit(m.Description)
		if !ok {
			continue
		}
		ts := parseTimestamp(m.Date, m.Time)
		deposits = append(deposits, models.Deposit{
			Timestamp:   ts,
			Broker:      brokers.BrokerDeGiro,
			Date:        ts.Format(displayDateFormat),
			Time:        m.Time,
			Type:        depositType,
			Description: m.Description,
			Change:      m.Change,
			Currency:    m.Currency,
		})
	}
	return deposits, nil
}
