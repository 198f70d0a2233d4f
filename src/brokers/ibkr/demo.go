package ibkr

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
			ID: "demo-ib-t1", Symbol: "VWRL", Description: "VANGUARD FTSE ALL-WORLD UCITS ETF",
			Side: "B", Size: 20, Price: 104.30, Amount: -2086.00, Commission: 1.25,
			Currency: "EUR", TradeTime: "2024-01-10 09:12",
		},
		{
			ID: "demo-ib-t2", Symbol: "MSFT", Description: "MICROSOFT CORP",
			Side: "B", Size: 8, Price: 402.50, Amount: -3220.00, Commission: 1.00,
			Currency: "USD", TradeTime: "2024-04-03 16:45",
		},
	}, nil
}

func (c *DemoClient) FetchCashTransactions(ctx context.Context, since time.Time) ([]CashTransactionRow, error) {
	return []CashTransactionRow{
		{ID: "demo-ib-c1", TxType: "Dividends", Symbol: "VWRL", Description: "VWRL CASH DIVIDEND", Amount: 12.80, Currency: "EUR", SettleDate: "2024-06-26"},
		{ID: "demo-ib-c2", TxType: "Dividends", Symbol: "MSFT", Description: "MSFT CASH DIVIDEND", Amount: 6.00, Currency: "USD", SettleDate: "2024-06-13"},
		{ID: "demo-ib-c3", TxType: "Withholding Tax", Symbol: "MSFT", Description: "MSFT US TAX", Amount: -0.90, Currency: "USD", SettleDate: "2024-06-13"},
	}, nil
}

func (c *DemoClient) FetchPositions(ctx context.Context) ([]PositionRow, error) {
	return []PositionRow{
		{
			ConID: "demo-con-1", Symbol: "VWRL", Name: "Vanguard FTSE All-World UCITS ETF",
			Position: 20, MarketPrice: 112.60, MarketValue: 2252.00, AvgCost: 104.30,
			Currency: "EUR", AssetClass: "FUND", Sector: "Diversified", Country: "IE",
		},
		{
			ConID: "demo-con-2", Symbol: "MSFT", Name: "Microsoft Corp",
			Position: 8, MarketPrice: 438.20, MarketValue: 3505.60, AvgCost: 402.50,
			Currency: "USD", AssetClass: "STK", Sector: "Technology", Country: "US",
		},
	}, nil
}

func (c *DemoClient) FetchAccount(ctx context.Context) (AccountRow, error) {
	return AccountRow{
		AccountID:      "DEMO1234",
		NetLiquidation: 6170.45,
		TotalCash:      694.00,
		UnrealizedPnL:  451.60,
		TotalDeposits:  5500.00,
		Currency:       "EUR",
		CapturedAt:     time.Now().UTC().Format(time.RFC3339),
	}, nil
}
