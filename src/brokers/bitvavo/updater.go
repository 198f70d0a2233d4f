package bitvavo

import (
	"context"
	"fmt"
	"time"

	"github.com/username/stonksoverwatch/backend/src/brokers"
)

// Client is the thin interface over the Bitvavo REST API used by the
// refresh job. The real SDK wrapper is an external collaborator.
type Client interface {
	FetchTrades(ctx context.Context, since time.Time) ([]TradeRow, error)
	FetchCashHistory(ctx context.Context, since time.Time) ([]CashHistoryRow, error)
	FetchBalances(ctx context.Context) ([]BalanceRow, error)
	FetchMarketPrices(ctx context.Context, markets []string) (map[string]float64, error)
}

// Updater imports Bitvavo data through the client into the local tables.
type Updater struct {
	repo   *Repository
	client Client
	config *brokers.ConfigStore
}

func NewUpdater(repo *Repository, client Client, config *brokers.ConfigStore) *Updater {
	return &Updater{repo: repo, client: client, config: config}
}

func (u *Updater) Broker() string { return brokers.BrokerBitvavo }

// Update pulls trades, cash history, balances and the spot prices for the
// held markets, and upserts everything.
func (u *Updater) Update(ctx context.Context) error {
	cfg, err := u.config.Load(brokers.BrokerBitvavo)
	if err != nil {
		return err
	}
	since := startDate(cfg.StartDate)

	trades, err := u.client.FetchTrades(ctx, since)
	if err != nil {
		return fmt.Errorf("fetching bitvavo trades: %w", err)
	}
	for _, t := range trades {
		if err := u.repo.UpsertTrade(t); err != nil {
			return err
		}
	}

	history, err := u.client.FetchCashHistory(ctx, since)
	if err != nil {
		return fmt.Errorf("fetching bitvavo cash history: %w", err)
	}
	for _, h := range history {
		if err := u.repo.UpsertCashHistory(h); err != nil {
			return err
		}
	}

	balances, err := u.client.FetchBalances(ctx)
	if err != nil {
		return fmt.Errorf("fetching bitvavo balances: %w", err)
	}
	if err := u.repo.ReplaceBalances(balances); err != nil {
		return err
	}

	var markets []string
	for _, b := range balances {
		if b.Symbol != "EUR" {
			markets = append(markets, b.Symbol+"-EUR")
		}
	}
	if len(markets) > 0 {
		prices, err := u.client.FetchMarketPrices(ctx, markets)
		if err != nil {
			return fmt.Errorf("fetching bitvavo market prices: %w", err)
		}
		now := time.Now().UTC().Format(time.RFC3339)
		for market, price := range prices {
			if err := u.repo.UpsertMarketPrice(market, price, now); err != nil {
				return err
			}
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
	return time.Now().AddDate(-5, 0, 0)
}
