package degiro

import (
	"context"
	"fmt"
	"time"

	"github.com/username/stonksoverwatch/backend/src/brokers"
)

// Client is the thin interface over the DeGiro trading API used by the
// refresh job. The real SDK wrapper is an external collaborator.
type Client interface {
	FetchTransactions(ctx context.Context, since time.Time) ([]TransactionRow, error)
	FetchCashMovements(ctx context.Context, since time.Time) ([]CashMovementRow, error)
	FetchPortfolio(ctx context.Context) ([]PortfolioRow, []ProductRow, error)
	FetchFXQuotations(ctx context.Context, since time.Time) (map[string]map[string]float64, error) // productID -> date -> price
	FetchUpcomingDividends(ctx context.Context) ([]UpcomingDividendRow, error)
}

// Updater imports DeGiro data through the client into the local tables.
type Updater struct {
	repo   *Repository
	client Client
	config *brokers.ConfigStore
}

func NewUpdater(repo *Repository, client Client, config *brokers.ConfigStore) *Updater {
	return &Updater{repo: repo, client: client, config: config}
}

func (u *Updater) Broker() string { return brokers.BrokerDeGiro }

// Update pulls everything since the configured start date and upserts it.
func (u *Updater) Update(ctx context.Context) error {
	cfg, err := u.config.Load(brokers.BrokerDeGiro)
	if err != nil {
		return err
	}
	since := startDate(cfg.StartDate)

	transactions, err := u.client.FetchTransactions(ctx, since)
	if err != nil {
		return fmt.Errorf("fetching degiro transactions: %w", err)
	}
	for _, t := range transactions {
		if err := u.repo.UpsertTransaction(t); err != nil {
			return err
		}
	}

	movements, err := u.client.FetchCashMovements(ctx, since)
	if err != nil {
		return fmt.Errorf("fetching degiro cash movements: %w", err)
	}
	for _, m := range movements {
		if err := u.repo.UpsertCashMovement(m); err != nil {
			return err
		}
	}

	portfolio, products, err := u.client.FetchPortfolio(ctx)
	if err != nil {
		return fmt.Errorf("fetching degiro portfolio: %w", err)
	}
	for _, p := range products {
		if err := u.repo.UpsertProduct(p); err != nil {
			return err
		}
	}
	if err := u.repo.ReplacePortfolio(portfolio); err != nil {
		return err
	}

	quotations, err := u.client.FetchFXQuotations(ctx, since)
	if err != nil {
		return fmt.Errorf("fetching degiro fx quotations: %w", err)
	}
	for productID, series := range quotations {
		for date, price := range series {
			p := price
			if err := u.repo.UpsertQuotation(productID, date, &p); err != nil {
				return err
			}
		}
	}

	upcoming, err := u.client.FetchUpcomingDividends(ctx)
	if err != nil {
		return fmt.Errorf("fetching degiro upcoming dividends: %w", err)
	}
	for _, d := range upcoming {
		if err := u.repo.UpsertUpcomingDividend(d); err != nil {
			return err
		}
	}

	return nil
}

func startDate(configured string) time.Time {
	if configured != "" {
		if ts, err := time.Parse("2006-01-02", configured); err == nil {
			return ts
		}
	}
	// Without a configured start, pull the last five years.
	return time.Now().AddDate(-5, 0, 0)
}
