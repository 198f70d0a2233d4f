package ibkr

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/username/stonksoverwatch/backend/src/currency"
	"github.com/username/stonksoverwatch/backend/src/models"
)

const testSchema = `
CREATE TABLE ibkr_trades (
    id TEXT PRIMARY KEY,
    symbol TEXT NOT NULL DEFAULT '',
    description TEXT NOT NULL DEFAULT '',
    side TEXT NOT NULL DEFAULT '',
    size REAL NOT NULL DEFAULT 0,
    price REAL NOT NULL DEFAULT 0,
    amount REAL NOT NULL DEFAULT 0,
    commission REAL NOT NULL DEFAULT 0,
    currency TEXT NOT NULL DEFAULT 'USD',
    trade_time TEXT NOT NULL
);
CREATE TABLE ibkr_cash_transactions (
    id TEXT PRIMARY KEY,
    tx_type TEXT NOT NULL,
    symbol TEXT NOT NULL DEFAULT '',
    description TEXT NOT NULL DEFAULT '',
    amount REAL NOT NULL DEFAULT 0,
    currency TEXT NOT NULL DEFAULT 'USD',
    settle_date TEXT NOT NULL
);
CREATE TABLE ibkr_positions (
    conid TEXT PRIMARY KEY,
    symbol TEXT NOT NULL DEFAULT '',
    name TEXT NOT NULL DEFAULT '',
    position REAL NOT NULL DEFAULT 0,
    market_price REAL NOT NULL DEFAULT 0,
    market_value REAL NOT NULL DEFAULT 0,
    avg_cost REAL NOT NULL DEFAULT 0,
    currency TEXT NOT NULL DEFAULT 'USD',
    asset_class TEXT NOT NULL DEFAULT '',
    sector TEXT NOT NULL DEFAULT '',
    country TEXT NOT NULL DEFAULT ''
);
CREATE TABLE ibkr_account (
    account_id TEXT PRIMARY KEY,
    net_liquidation REAL NOT NULL DEFAULT 0,
    total_cash REAL NOT NULL DEFAULT 0,
    unrealized_pnl REAL NOT NULL DEFAULT 0,
    total_deposits REAL NOT NULL DEFAULT 0,
    currency TEXT NOT NULL DEFAULT 'EUR',
    captured_at TEXT NOT NULL DEFAULT ''
);`

type identityFallback struct{}

func (identityFallback) Rate(from, to string, date time.Time) (float64, error) {
	return 1, nil
}

func newTestService(t *testing.T) (*Service, *Repository) {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(testSchema)
	require.NoError(t, err)

	repo := NewRepository(db)
	converter := currency.NewConverter(nil, identityFallback{})
	return NewService(repo, converter, nil, "EUR"), repo
}

func TestProductTypeFromAssetClass(t *testing.T) {
	assert.Equal(t, models.ProductTypeStock, productTypeFromAssetClass("STK"))
	assert.Equal(t, models.ProductTypeETF, productTypeFromAssetClass("FUND"))
	assert.Equal(t, models.ProductTypeETF, productTypeFromAssetClass("etf"))
	assert.Equal(t, models.ProductTypeCash, productTypeFromAssetClass("CASH"))
	assert.Equal(t, models.ProductTypeUnknown, productTypeFromAssetClass("OPT"))
}

func TestGetTransactionsNormalizesTrades(t *testing.T) {
	svc, repo := newTestService(t)
	require.NoError(t, repo.UpsertTrade(TradeRow{
		ID: "t1", Symbol: "MSFT", Description: "MICROSOFT CORP", Side: "B",
		Size: 5, Price: 400, Amount: 2000, Commission: 1,
		Currency: "USD", TradeTime: "2024-03-15 14:30",
	}))

	transactions, err := svc.GetTransactions()
	require.NoError(t, err)
	require.Len(t, transactions, 1)

	tx := transactions[0]
	assert.Equal(t, "MSFT", tx.Symbol)
	assert.Equal(t, "MICROSOFT CORP", tx.Name)
	assert.Equal(t, models.BuySellBuy, tx.BuySell)
	assert.Equal(t, "15-03-2024", tx.Date)
	assert.Equal(t, "14:30", tx.Time)
	assert.InDelta(t, 2000.0, tx.Total, 1e-9)
	assert.InDelta(t, 1.0, tx.Fee, 1e-9)
}

func TestGetDividendsFoldsWithholdingTax(t *testing.T) {
	svc, repo := newTestService(t)
	require.NoError(t, repo.UpsertCashTransaction(CashTransactionRow{
		ID: "c1", TxType: "Dividends", Symbol: "MSFT",
		Description: "MSFT CASH DIVIDEND", Amount: 3.75, Currency: "USD",
		SettleDate: "2024-06-13",
	}))
	require.NoError(t, repo.UpsertCashTransaction(CashTransactionRow{
		ID: "c2", TxType: "Withholding Tax", Symbol: "MSFT",
		Description: "MSFT WITHHOLDING", Amount: -0.56, Currency: "USD",
		SettleDate: "2024-06-13",
	}))
	require.NoError(t, repo.UpsertCashTransaction(CashTransactionRow{
		ID: "c3", TxType: "Dividends", Symbol: "VWRL",
		Description: "VWRL CASH DIVIDEND", Amount: 12.10, Currency: "EUR",
		SettleDate: "2024-06-26",
	}))
	require.NoError(t, repo.UpsertCashTransaction(CashTransactionRow{
		ID: "c4", TxType: "Deposits/Withdrawals", Symbol: "",
		Description: "WIRE IN", Amount: 1000, Currency: "EUR",
		SettleDate: "2024-06-01",
	}))

	dividends, err := svc.GetDividends()
	require.NoError(t, err)
	require.Len(t, dividends, 2, "non-dividend cash rows are ignored")

	bysym := make(map[string]models.Dividend)
	for _, d := range dividends {
		bysym[d.Symbol] = d
	}

	msft := bysym["MSFT"]
	assert.InDelta(t, 3.75, msft.Amount, 1e-9)
	assert.InDelta(t, -0.56, msft.Taxes, 1e-9)
	assert.Equal(t, models.DividendTypePaid, msft.Type)
	assert.Equal(t, "13-06-2024", msft.PaymentDate)

	vwrl := bysym["VWRL"]
	assert.InDelta(t, 12.10, vwrl.Amount, 1e-9)
	assert.Zero(t, vwrl.Taxes)
}

func TestGetAccountOverviewIncludesAllCashTransactions(t *testing.T) {
	svc, repo := newTestService(t)
	require.NoError(t, repo.UpsertCashTransaction(CashTransactionRow{
		ID: "c1", TxType: "Deposits/Withdrawals", Description: "WIRE IN",
		Amount: 1000, Currency: "EUR", SettleDate: "2024-06-01",
	}))
	require.NoError(t, repo.UpsertCashTransaction(CashTransactionRow{
		ID: "c2", TxType: "Dividends", Symbol: "VWRL", Description: "VWRL CASH DIVIDEND",
		Amount: 12.10, Currency: "EUR", SettleDate: "2024-06-26",
	}))

	overview, err := svc.GetAccountOverview()
	require.NoError(t, err)
	require.Len(t, overview, 2)
	assert.Equal(t, "Deposits/Withdrawals", overview[len(overview)-1].MovementType)
}

func TestGetPortfolioComputesUnrealizedGain(t *testing.T) {
	svc, repo := newTestService(t)
	require.NoError(t, repo.ReplacePositions([]PositionRow{
		{
			ConID: "1", Symbol: "VWRL", Name: "Vanguard FTSE All-World",
			Position: 40, MarketPrice: 110, MarketValue: 4400, AvgCost: 100,
			Currency: "EUR", AssetClass: "FUND", Sector: "Diversified", Country: "IE",
		},
		{
			ConID: "2", Symbol: "GONE", Name: "Closed Position",
			Position: 0, MarketValue: 0, AvgCost: 50,
			Currency: "EUR", AssetClass: "STK",
		},
	}))

	entries, err := svc.GetPortfolio()
	require.NoError(t, err)
	require.Len(t, entries, 2)

	vwrl := entries[0]
	if vwrl.Symbol != "VWRL" {
		vwrl = entries[1]
	}
	assert.Equal(t, models.ProductTypeETF, vwrl.ProductType)
	assert.InDelta(t, 400.0, vwrl.UnrealizedGain, 1e-9) // 4400 - 100*40
	assert.True(t, vwrl.IsOpen)

	var closed models.PortfolioEntry
	for _, e := range entries {
		if e.Symbol == "GONE" {
			closed = e
		}
	}
	assert.False(t, closed.IsOpen)
}

func TestGetTotalPortfolioReadsAccountSnapshot(t *testing.T) {
	svc, repo := newTestService(t)

	// No snapshot imported yet: empty totals, no error.
	total, err := svc.GetTotalPortfolio()
	require.NoError(t, err)
	assert.Zero(t, total.CurrentValue)

	require.NoError(t, repo.UpsertAccount(AccountRow{
		AccountID: "U1234567", NetLiquidation: 6170.45, TotalCash: 694,
		UnrealizedPnL: 451.60, TotalDeposits: 5500, Currency: "EUR",
		CapturedAt: "2024-06-30T00:00:00Z",
	}))

	total, err = svc.GetTotalPortfolio()
	require.NoError(t, err)
	assert.InDelta(t, 6170.45, total.CurrentValue, 1e-9)
	assert.InDelta(t, 694.0, total.TotalCash, 1e-9)
	assert.InDelta(t, 451.60, total.TotalPL, 1e-9)
	assert.InDelta(t, 5500.0, total.TotalDepositWithdrawal, 1e-9)
}
