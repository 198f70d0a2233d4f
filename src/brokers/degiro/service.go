// Package degiro normalizes imported DeGiro data into the common domain
// model. Raw rows come from the repository; classification mirrors the
// DeGiro export formats (description substrings, B/S side codes, numeric
// type ids).
package degiro

import (
	"time"

	"github.com/username/stonksoverwatch/backend/src/brokers"
	"github.com/username/stonksoverwatch/backend/src/currency"
	"github.com/username/stonksoverwatch/backend/src/logger"
)

const displayDateFormat = "02-01-2006"

// transactionTypeLabels maps DeGiro numeric transaction type ids to
// human-readable labels. Codes not in the table render as "Unknown"
// rather than failing.
var transactionTypeLabels = map[int64]string{
	0: "Regular",
	1: "IPO",
	2: "Stock Split",
	3: "Merger",
	4: "Internal Transfer",
}

const unknownTypeLabel = "Unknown"

func transactionTypeLabel(id int64) string {
	if label, ok := transactionTypeLabels[id]; ok {
		return label
	}
	return unknownTypeLabel
}

// Service implements the DeGiro side of every broker capability.
type Service struct {
	repo          *Repository
	converter     *currency.Converter
	config        *brokers.ConfigStore
	baseCurrency  string
	authenticator Authenticator
}

// NewService wires the DeGiro services over the repository.
func NewService(repo *Repository, converter *currency.Converter, config *brokers.ConfigStore, baseCurrency string) *Service {
	return &Service{
		repo:         repo,
		converter:    converter,
		config:       config,
		baseCurrency: baseCurrency,
	}
}

// Capabilities returns the full DeGiro capability set for registration.
func (s *Service) Capabilities() brokers.Capabilities {
	return brokers.Capabilities{
		Transactions:   s,
		Fees:           s,
		Deposits:       s,
		Dividends:      s,
		Account:        s,
		Portfolio:      s,
		Authentication: s,
	}
}

// parseTimestamp combines the stored date and time columns into a single
// sortable time.Time. A missing or malformed time degrades to midnight.
func parseTimestamp(date, clock string) time.Time {
	if clock != "" {
		if ts, err := time.Parse("2006-01-02 15:04", date+" "+clock); err == nil {
			return ts
		}
	}
	ts, err := time.Parse("2006-01-02", date)
	if err != nil {
		return time.Time{}
	}
	return ts
}

// toBase converts an amount into the configured base currency at the
// movement's own date. Conversion failures are logged and the original
// amount kept, mirroring the tolerant enrichment the rest of the pipeline
// relies on.
func (s *Service) toBase(amount float64, fromCurrency string, date time.Time) float64 {
	converted, err := s.converter.Convert(amount, fromCurrency, s.baseCurrency, date)
	if err != nil {
		logger.L.Warn("Currency conversion failed, keeping original amount",
			"broker", brokers.BrokerDeGiro, "currency", fromCurrency, "error", err)
		return amount
	}
	return converted
}
