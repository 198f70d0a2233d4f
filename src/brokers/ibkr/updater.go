package ibkr

import (
	"context"
	"fmt"
	"time"

	"github.com/username/stonksoverwatch/backend/src/brokers"
)

// Client is the thin interface over the IBKR Client Portal API used by
// the refresh job. The real gateway wrapper is an external collaborator.
type Client interface {
	FetchTrades(ctx context.Context, since time.Time) ([]TradeRow, error)
	FetchCashTransactions(ctx context.Context, since time.Time) ([]CashTransactionRow, error)
	FetchPositions(ctx context.Context) ([]PositionRow, error)
	FetchAccount(ctx context.Context) (AccountRow, error)
}

// Updater imports IBKR data through the client into the local tables.
type Updater struct {
	repo   *Repository
	client Client
	config *brokers.ConfigStore
}

func NewUpdater(repo *Repository, client Client, config *brokers.ConfigStore) *Updater {
	return &Updater{repo: repo, client: client, config: config}
}

func (u *Updater) Broker() string { return brokers.BrokerIBKR }

// Update pulls trades, cash transactions, positions and the account
// summary snapshot, and upserts everything.
func (u *Updater) Update(ctx context.Context) error {
	cfg, err := u.config.Load(brokers.BrokerIBKR)
	if err != nil {
		return err
	}
	since := startDate(cfg.StartDate)

	trades, err := u.client.FetchTrades(ctx, since)
	if err != nil {
		return fmt.Errorf("fetching ibkr trades: %w", err)
	}
	for _, t := range trades {
		if err := u.repo.UpsertTrade(t); err != nil {
			return err
		}
	}

	cash, err := u.client.FetchCashTransactions(ctx, since)
	if err != nil {
		return fmt.Errorf("fetching ibkr cash transactions: %w", err)
	}
	for _, c := range cash {
		if err := u.repo.UpsertCashTransaction(c); err != nil {
			return err
		}
	}

	positions, err := u.client.FetchPositions(ctx)
	if err != nil {
		return fmt.Errorf("fetching ibkr positions: %w", err)
	}
	if err := u.repo.ReplacePositions(positions); err != nil {
		return err
	}

	account, err := u.client.FetchAccount(ctx)
	if err != nil {
		return fmt.Errorf("fetching ibkr account: %w", err)
	}
	return u.repo.UpsertAccount(account)
}

func startDate(configured string) time.Time {
	if configured != "" {
		if ts, err := time.Parse("2006-01-02", configured); err == nil {
			return ts
		}
	}
	return time.Now().AddDate(-5, 0, 0)
}
