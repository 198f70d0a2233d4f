package brokers

import (
	"context"
	"errors"

	"github.com/username/stonksoverwatch/backend/src/models"
)

// Broker identifiers. Every registry entry and configuration row is keyed
// by one of these.
const (
	BrokerDeGiro  = "degiro"
	BrokerBitvavo = "bitvavo"
	BrokerIBKR    = "ibkr"
)

// Authentication errors shared by all broker implementations. The session
// middleware maps these onto user-visible behavior: ErrTOTPRequired keeps
// the session alive, everything else clears it.
var (
	ErrInvalidCredentials = errors.New("invalid broker credentials")
	ErrTOTPRequired       = errors.New("totp code required")
	ErrMaintenance        = errors.New("broker is in maintenance mode")
	ErrConnectionFailed   = errors.New("broker connection failed")
)

// TransactionService lists a broker's trades as normalized transactions.
type TransactionService interface {
	GetTransactions() ([]models.Transaction, error)
}

// FeeService lists a broker's classified account fees.
type FeeService interface {
	GetAccountFees() ([]models.Fee, error)
}

// DepositService lists a broker's cash deposits and withdrawals.
type DepositService interface {
	GetDeposits() ([]models.Deposit, error)
}

// DividendService lists paid and upcoming dividends.
type DividendService interface {
	GetDividends() ([]models.Dividend, error)
}

// AccountService lists raw account/cash movements.
type AccountService interface {
	GetAccountOverview() ([]models.AccountOverview, error)
}

// PortfolioService exposes a broker's positions and its own totals.
// Portfolio weights are not computed here; the aggregator owns them.
type PortfolioService interface {
	GetPortfolio() ([]models.PortfolioEntry, error)
	GetTotalPortfolio() (models.TotalPortfolio, error)
}

// AuthenticationService verifies that the configured credentials can open a
// broker session.
type AuthenticationService interface {
	Authenticate(ctx context.Context) error
}
