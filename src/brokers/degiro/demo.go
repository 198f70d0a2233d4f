package degiro

import (
	"context"
	"database/sql"
	"time"
)

// DemoClient serves a small deterministic dataset so the application can
// run end to end without live broker credentials (DEMO_MODE).
type DemoClient struct{}

func NewDemoClient() *DemoClient { return &DemoClient{} }

func (c *DemoClient) FetchTransactions(ctx context.Context, since time.Time) ([]TransactionRow, error) {
	return []TransactionRow{
		{
			ID: "demo-dg-t1", ProductName: "ASML Holding", Symbol: "ASML", ISIN: "NL0010273215",
			Date: "2024-02-12", Time: "10:15", BuySell: "B", Price: 610.40, Quantity: 5,
			Total: -3052.00, TotalBase: -3052.00, Fee: 2.00, Currency: "EUR",
			OrderTypeID: sql.NullInt64{Int64: 0, Valid: true}, TransactionTypeID: sql.NullInt64{Int64: 0, Valid: true},
			OrderID: "demo-order-1",
		},
		{
			ID: "demo-dg-t2", ProductName: "Apple Inc", Symbol: "AAPL", ISIN: "US0378331005",
			Date: "2024-03-01", Time: "15:30", BuySell: "B", Price: 180.10, Quantity: 10,
			Total: -1801.00, Fee: 1.50, Currency: "USD",
			OrderTypeID: sql.NullInt64{Int64: 2, Valid: true}, TransactionTypeID: sql.NullInt64{Int64: 0, Valid: true},
			OrderID: "demo-order-2",
		},
		{
			ID: "demo-dg-t3", ProductName: "Apple Inc", Symbol: "AAPL", ISIN: "US0378331005",
			Date: "2024-06-14", Time: "11:05", BuySell: "S", Price: 212.50, Quantity: 4,
			Total: 850.00, Fee: 1.50, Currency: "USD",
			OrderTypeID: sql.NullInt64{Int64: 0, Valid: true}, TransactionTypeID: sql.NullInt64{Int64: 0, Valid: true},
			OrderID: "demo-order-3",
		},
	}, nil
}

func (c *DemoClient) FetchCashMovements(ctx context.Context, since time.Time) ([]CashMovementRow, error) {
	balance := func(v float64) sql.NullFloat64 { return sql.NullFloat64{Float64: v, Valid: true} }
	return []CashMovementRow{
		{
			ID: "demo-dg-m1", Date: "2024-01-05", Time: "09:00", ValueDate: "2024-01-05",
			Description: "iDEAL storting", MovementType: "CASH_TRANSACTION",
			Change: 5000.00, Currency: "EUR", Balance: balance(5000.00),
		},
		{
			ID: "demo-dg-m2", Date: "2024-02-01", Time: "08:30", ValueDate: "2024-02-01",
			Description: "DEGIRO Aansluitingskosten 2024", MovementType: "CASH_TRANSACTION",
			Change: -2.50, Currency: "EUR", Balance: balance(4997.50),
		},
		{
			ID: "demo-dg-m3", Date: "2024-03-01", Time: "15:30", ValueDate: "2024-03-01",
			ProductName: "Apple Inc", Symbol: "AAPL", ISIN: "US0378331005",
			Description: "French Transaction Tax", MovementType: "CASH_TRANSACTION",
			Change: -5.40, Currency: "EUR", Balance: balance(3190.10),
		},
		{
			ID: "demo-dg-m4", Date: "2024-05-16", Time: "07:45", ValueDate: "2024-05-16",
			ProductName: "Apple Inc", Symbol: "AAPL", ISIN: "US0378331005",
			Description: "Dividend", MovementType: "CASH_TRANSACTION",
			Change: 2.40, Currency: "USD",
		},
		{
			ID: "demo-dg-m5", Date: "2024-05-16", Time: "07:45", ValueDate: "2024-05-16",
			ProductName: "Apple Inc", Symbol: "AAPL", ISIN: "US0378331005",
			Description: "Dividendbelasting", MovementType: "CASH_TRANSACTION",
			Change: -0.36, Currency: "USD",
		},
		{
			ID: "demo-dg-m6", Date: "2024-07-02", Time: "12:00", ValueDate: "2024-07-02",
			Description: "Terugstorting", MovementType: "CASH_TRANSACTION",
			Change: -250.00, Currency: "EUR", Balance: balance(3612.64),
		},
	}, nil
}

func (c *DemoClient) FetchPortfolio(ctx context.Context) ([]PortfolioRow, []ProductRow, error) {
	portfolio := []PortfolioRow{
		{
			ProductID: "demo-p1", Symbol: "ASML", Name: "ASML Holding", ProductType: "STOCK",
			Size: 5, Price: 680.20, Value: 3401.00, BaseValue: 3401.00, BreakEvenPrice: 610.40,
			Currency: "EUR", IsOpen: true, Sector: "Technology", Country: "NL",
		},
		{
			ProductID: "demo-p2", Symbol: "AAPL", Name: "Apple Inc", ProductType: "STOCK",
			Size: 6, Price: 225.80, Value: 1354.80, BreakEvenPrice: 180.10,
			Currency: "USD", IsOpen: true, Sector: "Technology", Country: "US",
		},
		{
			ProductID: "demo-p3", Symbol: "EUR", Name: "Cash", ProductType: "CASH",
			Size: 1, Price: 1, Value: 3612.64, BaseValue: 3612.64,
			Currency: "EUR", IsOpen: true,
		},
	}
	products := []ProductRow{
		{ProductID: "demo-p1", Symbol: "ASML", Name: "ASML Holding", ISIN: "NL0010273215", ProductType: "STOCK", Currency: "EUR", Tradeable: true},
		{ProductID: "demo-p2", Symbol: "AAPL", Name: "Apple Inc", ISIN: "US0378331005", ProductType: "STOCK", Currency: "USD", Tradeable: true},
		{ProductID: "demo-fx-eurusd", Symbol: "EUR/USD", Name: "Euro / US Dollar", ProductType: "CURRENCY", Currency: "USD", Tradeable: true},
	}
	return portfolio, products, nil
}

func (c *DemoClient) FetchFXQuotations(ctx context.Context, since time.Time) (map[string]map[string]float64, error) {
	return map[string]map[string]float64{
		"demo-fx-eurusd": {
			"2024-03-01": 1.0840,
			"2024-05-16": 1.0866,
			"2024-06-14": 1.0705,
		},
	}, nil
}

func (c *DemoClient) FetchUpcomingDividends(ctx context.Context) ([]UpcomingDividendRow, error) {
	payDate := time.Now().AddDate(0, 1, 0).Format("2006-01-02")
	return []UpcomingDividendRow{
		{ID: "demo-dg-u1", PayDate: payDate, ProductName: "ASML Holding", Symbol: "ASML", ISIN: "NL0010273215", Currency: "EUR", Amount: 6.40},
	}, nil
}
