package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/stonksoverwatch/backend/src/brokers"
	"github.com/username/stonksoverwatch/backend/src/models"
)

// enabledSet is a ConfigProvider backed by a plain set.
type enabledSet map[string]bool

func (e enabledSet) IsEnabled(broker string) bool { return e[broker] }

// fakeBroker implements every capability over fixed data, recording which
// calls happened so tests can assert a capability was never touched.
type fakeBroker struct {
	transactions []models.Transaction
	fees         []models.Fee
	deposits     []models.Deposit
	dividends    []models.Dividend
	overview     []models.AccountOverview
	portfolio    []models.PortfolioEntry
	total        models.TotalPortfolio
	err          error

	calls map[string]int
}

func newFakeBroker() *fakeBroker {
	return &fakeBroker{calls: make(map[string]int)}
}

func (f *fakeBroker) GetTransactions() ([]models.Transaction, error) {
	f.calls["transactions"]++
	return f.transactions, f.err
}

func (f *fakeBroker) GetAccountFees() ([]models.Fee, error) {
	f.calls["fees"]++
	return f.fees, f.err
}

func (f *fakeBroker) GetDeposits() ([]models.Deposit, error) {
	f.calls["deposits"]++
	return f.deposits, f.err
}

func (f *fakeBroker) GetDividends() ([]models.Dividend, error) {
	f.calls["dividends"]++
	return f.dividends, f.err
}

func (f *fakeBroker) GetAccountOverview() ([]models.AccountOverview, error) {
	f.calls["account"]++
	return f.overview, f.err
}

func (f *fakeBroker) GetPortfolio() ([]models.PortfolioEntry, error) {
	f.calls["portfolio"]++
	return f.portfolio, f.err
}

func (f *fakeBroker) GetTotalPortfolio() (models.TotalPortfolio, error) {
	f.calls["total"]++
	return f.total, f.err
}

func day(s string) time.Time {
	ts, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return ts
}

func TestFeesAggregatorSkipsDisabledBrokers(t *testing.T) {
	brokerA := newFakeBroker()
	brokerA.fees = []models.Fee{
		{Timestamp: day("2024-01-01"), Broker: "a", Value: -1},
		{Timestamp: day("2024-01-03"), Broker: "a", Value: -2},
	}
	brokerB := newFakeBroker()
	brokerB.fees = []models.Fee{{Timestamp: day("2024-01-02"), Broker: "b", Value: -3}}

	registry := brokers.NewRegistry()
	registry.Register("a", brokers.Capabilities{Fees: brokerA})
	registry.Register("b", brokers.Capabilities{Fees: brokerB})

	agg := NewFeesAggregator(registry, enabledSet{"a": true})
	fees := agg.GetFees(models.SelectorAll)

	require.Len(t, fees, 2)
	assert.Equal(t, day("2024-01-03"), fees[0].Timestamp)
	assert.Equal(t, day("2024-01-01"), fees[1].Timestamp)
	assert.Zero(t, brokerB.calls["fees"], "disabled broker must never be invoked")
}

func TestAggregatorNeverInvokesUnsupportedCapability(t *testing.T) {
	partial := newFakeBroker()
	registry := brokers.NewRegistry()
	// Fees only: no dividend capability registered.
	registry.Register("partial", brokers.Capabilities{Fees: partial})

	agg := NewDividendsAggregator(registry, enabledSet{"partial": true})
	dividends := agg.GetDividends(models.SelectorAll)

	assert.Empty(t, dividends)
	assert.Zero(t, partial.calls["dividends"])
}

func TestAggregatorSelectorScopesToOneBroker(t *testing.T) {
	brokerA := newFakeBroker()
	brokerA.deposits = []models.Deposit{{Timestamp: day("2024-01-01"), Broker: "a"}}
	brokerB := newFakeBroker()
	brokerB.deposits = []models.Deposit{{Timestamp: day("2024-01-02"), Broker: "b"}}

	registry := brokers.NewRegistry()
	registry.Register("a", brokers.Capabilities{Deposits: brokerA})
	registry.Register("b", brokers.Capabilities{Deposits: brokerB})

	agg := NewDepositsAggregator(registry, enabledSet{"a": true, "b": true})
	deposits := agg.GetDeposits(models.PortfolioSelector("b"))

	require.Len(t, deposits, 1)
	assert.Equal(t, "b", deposits[0].Broker)
	assert.Zero(t, brokerA.calls["deposits"])
}

func TestAggregatorBrokerErrorContributesNothing(t *testing.T) {
	healthy := newFakeBroker()
	healthy.transactions = []models.Transaction{{Timestamp: day("2024-01-01"), Broker: "ok"}}
	broken := newFakeBroker()
	broken.err = errors.New("connection refused")

	registry := brokers.NewRegistry()
	registry.Register("ok", brokers.Capabilities{Transactions: healthy})
	registry.Register("broken", brokers.Capabilities{Transactions: broken})

	agg := NewTransactionsAggregator(registry, enabledSet{"ok": true, "broken": true})
	transactions := agg.GetTransactions(models.SelectorAll)

	require.Len(t, transactions, 1)
	assert.Equal(t, "ok", transactions[0].Broker)
	assert.Equal(t, 1, broken.calls["transactions"], "failing broker is still attempted")
}

func TestTransactionsSortNewestFirstSellsBeforeBuys(t *testing.T) {
	same := day("2024-05-01")
	brokerA := newFakeBroker()
	brokerA.transactions = []models.Transaction{
		{Timestamp: day("2024-01-15"), Broker: "a", Symbol: "OLD", BuySell: models.BuySellBuy},
		{Timestamp: same, Broker: "a", Symbol: "TIE-BUY", BuySell: models.BuySellBuy},
	}
	brokerB := newFakeBroker()
	brokerB.transactions = []models.Transaction{
		{Timestamp: same, Broker: "b", Symbol: "TIE-SELL", BuySell: models.BuySellSell},
		{Timestamp: day("2024-06-01"), Broker: "b", Symbol: "NEW", BuySell: models.BuySellBuy},
	}

	registry := brokers.NewRegistry()
	registry.Register("a", brokers.Capabilities{Transactions: brokerA})
	registry.Register("b", brokers.Capabilities{Transactions: brokerB})

	agg := NewTransactionsAggregator(registry, enabledSet{"a": true, "b": true})
	got := agg.GetTransactions(models.SelectorAll)

	symbols := make([]string, len(got))
	for i, tx := range got {
		symbols[i] = tx.Symbol
	}
	assert.Equal(t, []string{"NEW", "TIE-SELL", "TIE-BUY", "OLD"}, symbols)
}

func TestPortfolioWeightsComputedAcrossBrokers(t *testing.T) {
	brokerA := newFakeBroker()
	brokerA.portfolio = []models.PortfolioEntry{
		{Broker: "a", Symbol: "ASML", BaseValue: 600, IsOpen: true},
		{Broker: "a", Symbol: "CLOSED", BaseValue: 999, IsOpen: false},
	}
	brokerB := newFakeBroker()
	brokerB.portfolio = []models.PortfolioEntry{
		{Broker: "b", Symbol: "BTC", BaseValue: 400, IsOpen: true},
	}

	registry := brokers.NewRegistry()
	registry.Register("a", brokers.Capabilities{Portfolio: brokerA})
	registry.Register("b", brokers.Capabilities{Portfolio: brokerB})

	agg := NewPortfolioAggregator(registry, enabledSet{"a": true, "b": true}, "EUR")
	entries := agg.GetPortfolio(models.SelectorAll)

	require.Len(t, entries, 3)
	bySymbol := make(map[string]models.PortfolioEntry)
	var weightSum float64
	for _, e := range entries {
		bySymbol[e.Symbol] = e
		if e.IsOpen {
			weightSum += e.PortfolioSize
		}
	}
	assert.InDelta(t, 0.6, bySymbol["ASML"].PortfolioSize, 1e-9)
	assert.InDelta(t, 0.4, bySymbol["BTC"].PortfolioSize, 1e-9)
	assert.Zero(t, bySymbol["CLOSED"].PortfolioSize)
	assert.InDelta(t, 1.0, weightSum, 1e-9)

	// Sorted by base value, largest first.
	assert.Equal(t, "CLOSED", entries[0].Symbol)
	assert.Equal(t, "ASML", entries[1].Symbol)
}

func TestTotalPortfolioROIAcrossBrokers(t *testing.T) {
	brokerA := newFakeBroker()
	brokerA.total = models.TotalPortfolio{CurrentValue: 6000, TotalCash: 500, TotalPL: 800, TotalDepositWithdrawal: 5000}
	brokerB := newFakeBroker()
	brokerB.total = models.TotalPortfolio{CurrentValue: 6000, TotalCash: 500, TotalPL: 200, TotalDepositWithdrawal: 5000}

	registry := brokers.NewRegistry()
	registry.Register("a", brokers.Capabilities{Portfolio: brokerA})
	registry.Register("b", brokers.Capabilities{Portfolio: brokerB})

	agg := NewPortfolioAggregator(registry, enabledSet{"a": true, "b": true}, "EUR")
	total := agg.GetTotalPortfolio(models.SelectorAll)

	assert.Equal(t, 12000.0, total.CurrentValue)
	assert.Equal(t, 10000.0, total.TotalDepositWithdrawal)
	assert.Equal(t, 1000.0, total.TotalPL)
	assert.InDelta(t, 20.0, total.TotalROI, 1e-9) // (12000/10000 - 1) * 100
}

func TestTotalPortfolioROIRoundedToTwoDecimals(t *testing.T) {
	broker := newFakeBroker()
	broker.total = models.TotalPortfolio{CurrentValue: 4000, TotalDepositWithdrawal: 3000}

	registry := brokers.NewRegistry()
	registry.Register("a", brokers.Capabilities{Portfolio: broker})

	agg := NewPortfolioAggregator(registry, enabledSet{"a": true}, "EUR")
	total := agg.GetTotalPortfolio(models.SelectorAll)
	assert.Equal(t, 33.33, total.TotalROI)
}

func TestTotalPortfolioROIGuardsZeroDeposits(t *testing.T) {
	broker := newFakeBroker()
	broker.total = models.TotalPortfolio{CurrentValue: 100}

	registry := brokers.NewRegistry()
	registry.Register("a", brokers.Capabilities{Portfolio: broker})

	agg := NewPortfolioAggregator(registry, enabledSet{"a": true}, "EUR")
	total := agg.GetTotalPortfolio(models.SelectorAll)
	assert.Zero(t, total.TotalROI)
}

func TestAccountAggregatorSortsNewestFirst(t *testing.T) {
	broker := newFakeBroker()
	broker.overview = []models.AccountOverview{
		{Timestamp: day("2024-01-01"), Description: "older"},
		{Timestamp: day("2024-02-01"), Description: "newer"},
	}

	registry := brokers.NewRegistry()
	registry.Register("a", brokers.Capabilities{Account: broker})

	agg := NewAccountAggregator(registry, enabledSet{"a": true})
	overview := agg.GetAccountOverview(models.SelectorAll)

	require.Len(t, overview, 2)
	assert.Equal(t, "newer", overview[0].Description)
}
