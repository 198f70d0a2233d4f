// Package ibkr normalizes imported Interactive Brokers data. IBKR does not
// expose fee or deposit tracking through this integration, so those
// capabilities are simply not registered; the aggregators skip the broker
// for them instead of erroring.
package ibkr

import (
	"context"
	"strings"
	"time"

	"github.com/username/stonksoverwatch/backend/src/brokers"
	"github.com/username/stonksoverwatch/backend/src/currency"
	"github.com/username/stonksoverwatch/backend/src/logger"
	"github.com/username/stonksoverwatch/backend/src/models"
)

const displayDateFormat = "02-01-2006"

// Cash transaction types as the IBKR flex/report data labels them.
const (
	cashTypeDividend       = "Dividends"
	cashTypeWithholdingTax = "Withholding Tax"
)

// Service implements the IBKR side of the broker capabilities.
type Service struct {
	repo         *Repository
	converter    *currency.Converter
	config       *brokers.ConfigStore
	baseCurrency string
}

func NewService(repo *Repository, converter *currency.Converter, config *brokers.ConfigStore, baseCurrency string) *Service {
	return &Service{repo: repo, converter: converter, config: config, baseCurrency: baseCurrency}
}

// Capabilities returns the IBKR capability set: no Fees, no Deposits.
func (s *Service) Capabilities() brokers.Capabilities {
	return brokers.Capabilities{
		Transactions:   s,
		Dividends:      s,
		Account:        s,
		Portfolio:      s,
		Authentication: s,
	}
}

func parseTradeTime(value string) time.Time {
	if ts, err := time.Parse("2006-01-02 15:04", value); err == nil {
		return ts
	}
	ts, _ := time.Parse("2006-01-02", value)
	return ts
}

// GetTransactions normalizes executed trades.
func (s *Service) GetTransactions() ([]models.Transaction, error) {
	trades, err := s.repo.ListTrades()
	if err != nil {
		return nil, err
	}

	transactions := make([]models.Transaction, 0, len(trades))
	for _, trade := range trades {
		ts := parseTradeTime(trade.TradeTime)

		totalBase, err := s.converter.Convert(trade.Amount, trade.Currency, s.baseCurrency, ts)
		if err != nil {
			logger.L.Warn("Currency conversion failed, keeping original amount",
				"broker", brokers.BrokerIBKR, "currency", trade.Currency, "error", err)
			totalBase = trade.Amount
		}

		tx := models.Transaction{
			Timestamp:       ts,
			Broker:          brokers.BrokerIBKR,
			Name:            trade.Description,
			Symbol:          trade.Symbol,
			Date:            ts.Format(displayDateFormat),
			Time:            ts.Format("15:04"),
			BuySell:         models.BuySellFromCode(trade.Side),
			TransactionType: "Regular",
			Price:           trade.Price,
			Quantity:        trade.Size,
			Total:           trade.Amount,
			TotalBase:       totalBase,
			Fee:             trade.Commission,
			Currency:        trade.Currency,
		}
		tx.Format(s.baseCurrency)
		transactions = append(transactions, tx)
	}
	return transactions, nil
}

// GetDividends builds dividend records from cash transactions, folding
// withholding-tax rows into the payment with the same symbol and settle
// date.
func (s *Service) GetDividends() ([]models.Dividend, error) {
	cashTxs, err := s.repo.ListCashTransactions()
	if err != nil {
		return nil, err
	}

	type key struct{ symbol, date string }
	index := make(map[key]int)
	var dividends []models.Dividend

	for _, c := range cashTxs {
		if c.TxType != cashTypeDividend && c.TxType != cashTypeWithholdingTax {
			continue
		}
		k := key{c.Symbol, c.SettleDate}
		ts := parseTradeTime(c.SettleDate)

		idx, exists := index[k]
		if !exists {
			dividends = append(dividends, models.Dividend{
				Timestamp:   ts,
				Broker:      brokers.BrokerIBKR,
				PaymentDate: ts.Format(displayDateFormat),
				Name:        c.Description,
				Symbol:      c.Symbol,
				Currency:    c.Currency,
				Type:        models.DividendTypePaid,
			})
			idx = len(dividends) - 1
			index[k] = idx
		}

		if c.TxType == cashTypeWithholdingTax {
			dividends[idx].Taxes += c.Amount
		} else {
			dividends[idx].Amount += c.Amount
		}
	}
	return dividends, nil
}

// GetAccountOverview presents cash transactions as account movements.
func (s *Service) GetAccountOverview() ([]models.AccountOverview, error) {
	cashTxs, err := s.repo.ListCashTransactions()
	if err != nil {
		return nil, err
	}

	overview := make([]models.AccountOverview, 0, len(cashTxs))
	for _, c := range cashTxs {
		ts := parseTradeTime(c.SettleDate)
		overview = append(overview, models.AccountOverview{
			Timestamp:    ts,
			Broker:       brokers.BrokerIBKR,
			Date:         ts.Format(displayDateFormat),
			ValueDate:    c.SettleDate,
			Symbol:       c.Symbol,
			Description:  c.Description,
			MovementType: c.TxType,
			Currency:     c.Currency,
			Change:       c.Amount,
		})
	}
	return overview, nil
}

func productTypeFromAssetClass(assetClass string) models.ProductType {
	switch strings.ToUpper(assetClass) {
	case "STK":
		return models.ProductTypeStock
	case "FUND", "ETF":
		return models.ProductTypeETF
	case "CASH":
		return models.ProductTypeCash
	default:
		return models.ProductTypeUnknown
	}
}

// GetPortfolio normalizes the position snapshot.
func (s *Service) GetPortfolio() ([]models.PortfolioEntry, error) {
	positions, err := s.repo.ListPositions()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	entries := make([]models.PortfolioEntry, 0, len(positions))
	for _, p := range positions {
		baseValue, err := s.converter.Convert(p.MarketValue, p.Currency, s.baseCurrency, now)
		if err != nil {
			logger.L.Warn("Currency conversion failed, keeping original amount",
				"broker", brokers.BrokerIBKR, "currency", p.Currency, "error", err)
			baseValue = p.MarketValue
		}

		unrealized := p.MarketValue - p.AvgCost*p.Position
		unrealizedBase, err := s.converter.Convert(unrealized, p.Currency, s.baseCurrency, now)
		if err != nil {
			unrealizedBase = unrealized
		}

		entry := models.PortfolioEntry{
			Broker:         brokers.BrokerIBKR,
			Symbol:         p.Symbol,
			Name:           p.Name,
			ProductType:    productTypeFromAssetClass(p.AssetClass),
			Quantity:       p.Position,
			Price:          p.MarketPrice,
			Value:          p.MarketValue,
			BaseValue:      baseValue,
			UnrealizedGain: unrealizedBase,
			IsOpen:         p.Position != 0,
			Sector:         p.Sector,
			Country:        p.Country,
			Currency:       p.Currency,
		}
		entry.Format(s.baseCurrency)
		entries = append(entries, entry)
	}
	return entries, nil
}

// GetTotalPortfolio reads the imported account summary. IBKR reports its
// own net liquidation and deposit totals, so no recomputation happens here.
func (s *Service) GetTotalPortfolio() (models.TotalPortfolio, error) {
	account, found, err := s.repo.Account()
	if err != nil {
		return models.TotalPortfolio{}, err
	}
	if !found {
		return models.TotalPortfolio{}, nil
	}

	now := time.Now()
	total := models.TotalPortfolio{}
	convert := func(v float64) float64 {
		converted, err := s.converter.Convert(v, account.Currency, s.baseCurrency, now)
		if err != nil {
			return v
		}
		return converted
	}
	total.CurrentValue = convert(account.NetLiquidation)
	total.TotalCash = convert(account.TotalCash)
	total.TotalPL = convert(account.UnrealizedPnL)
	total.TotalDepositWithdrawal = convert(account.TotalDeposits)
	total.Format(s.baseCurrency)
	return total, nil
}

// Authenticate checks that a plausible account id is configured.
func (s *Service) Authenticate(ctx context.Context) error {
	cfg, err := s.config.Load(brokers.BrokerIBKR)
	if err != nil {
		return err
	}
	if !cfg.Credentials.HasMinimalCredentials(brokers.BrokerIBKR) {
		return brokers.ErrInvalidCredentials
	}
	return nil
}
