package bitvavo

import (
	"context"
	"time"
)

// DemoClient serves a small deterministic dataset so the application can
// run end to end without live broker credentials (DEMO_MODE).
type DemoClient struct{}

func NewDemoClient() *DemoClient { return &DemoClient{} }

func (c *DemoClient) FetchTrades(ctx context.Context, since time.Time) ([]TradeRow, error) {
	return []TradeRow{
		{
			ID: "demo-bv-t1", Market: "BTC-EUR", Side: "buy", Amount: 0.05, Price: 39800.00,
			Fee: 4.97, FeeCurrency: "EUR", ExecutedAt: "2024-01-20T14:02:11Z",
		},
		{
			ID: "demo-bv-t2", Market: "ETH-EUR", Side: "buy", Amount: 0.8, Price: 2310.00,
			Fee: 4.62, FeeCurrency: "EUR", ExecutedAt: "2024-02-28T09:41:53Z",
		},
		{
			ID: "demo-bv-t3", Market: "ETH-EUR", Side: "sell", Amount: 0.3, Price: 3120.00,
			Fee: 2.34, FeeCurrency: "EUR", ExecutedAt: "2024-05-22T18:17:06Z",
		},
	}, nil
}

func (c *DemoClient) FetchCashHistory(ctx context.Context, since time.Time) ([]CashHistoryRow, error) {
	return []CashHistoryRow{
		{ID: "demo-bv-c1", TxType: "deposit", Symbol: "EUR", Amount: 3000.00, Status: "completed", CreatedAt: "2024-01-15T10:00:00Z"},
		{ID: "demo-bv-c2", TxType: "withdrawal", Symbol: "EUR", Amount: 500.00, Fee: 0.25, Status: "completed", CreatedAt: "2024-06-03T08:30:00Z"},
		{ID: "demo-bv-c3", TxType: "deposit", Symbol: "EUR", Amount: 750.00, Status: "pending", CreatedAt: "2024-08-29T16:12:00Z"},
	}, nil
}

func (c *DemoClient) FetchBalances(ctx context.Context) ([]BalanceRow, error) {
	return []BalanceRow{
		{Symbol: "BTC", Available: 0.05},
		{Symbol: "ETH", Available: 0.5},
		{Symbol: "EUR", Available: 1590.07},
	}, nil
}

func (c *DemoClient) FetchMarketPrices(ctx context.Context, markets []string) (map[string]float64, error) {
	known := map[string]float64{
		"BTC-EUR": 55400.00,
		"ETH-EUR": 2980.00,
	}
	out := make(map[string]float64, len(markets))
	for _, m := range markets {
		if price, ok := known[m]; ok {
			out[m] = price
		}
	}
	return out, nil
}
