// Package bitvavo normalizes imported Bitvavo exchange data. Crypto trades
// become transactions and transaction fees, the deposit/withdrawal history
// becomes deposits, and wallet balances priced in EUR become the portfolio.
// Bitvavo pays no dividends, so that capability is not registered.
package bitvavo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/username/stonksoverwatch/backend/src/brokers"
	"github.com/username/stonksoverwatch/backend/src/currency"
	"github.com/username/stonksoverwatch/backend/src/logger"
	"github.com/username/stonksoverwatch/backend/src/models"
)

const displayDateFormat = "02-01-2006"

// Service implements the Bitvavo side of the broker capabilities.
type Service struct {
	repo         *Repository
	converter    *currency.Converter
	config       *brokers.ConfigStore
	baseCurrency string
}

func NewService(repo *Repository, converter *currency.Converter, config *brokers.ConfigStore, baseCurrency string) *Service {
	return &Service{repo: repo, converter: converter, config: config, baseCurrency: baseCurrency}
}

// Capabilities returns the Bitvavo capability set. Dividend and account
// overview services are intentionally absent.
func (s *Service) Capabilities() brokers.Capabilities {
	return brokers.Capabilities{
		Transactions:   s,
		Fees:           s,
		Deposits:       s,
		Portfolio:      s,
		Authentication: s,
	}
}

// splitMarket splits "BTC-EUR" into the traded asset and quote currency.
func splitMarket(market string) (asset, quote string) {
	parts := strings.SplitN(market, "-", 2)
	if len(parts) != 2 {
		return market, "EUR"
	}
	return parts[0], parts[1]
}

func parseExecutedAt(value string) time.Time {
	if ts, err := time.Parse(time.RFC3339, value); err == nil {
		return ts
	}
	if ts, err := time.Parse("2006-01-02 15:04:05", value); err == nil {
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
		asset, quote := splitMarket(trade.Market)
		ts := parseExecutedAt(trade.ExecutedAt)
		total := trade.Amount * trade.Price

		totalBase, err := s.converter.Convert(total, quote, s.baseCurrency, ts)
		if err != nil {
			logger.L.Warn("Currency conversion failed, keeping original amount",
				"broker", brokers.BrokerBitvavo, "currency", quote, "error", err)
			totalBase = total
		}

		tx := models.Transaction{
			Timestamp:       ts,
			Broker:          brokers.BrokerBitvavo,
			Name:            asset,
			Symbol:          asset,
			Date:            ts.Format(displayDateFormat),
			Time:            ts.Format("15:04"),
			BuySell:         models.BuySellFromCode(trade.Side),
			TransactionType: "Market",
			Price:           trade.Price,
			Quantity:        trade.Amount,
			Total:           total,
			TotalBase:       totalBase,
			Fee:             trade.Fee,
			Currency:        quote,
		}
		tx.Format(s.baseCurrency)
		transactions = append(transactions, tx)
	}
	return transactions, nil
}

// GetAccountFees lists trading fees. Every Bitvavo fee is a transaction
// fee; there are no connection or tax charges.
func (s *Service) GetAccountFees() ([]models.Fee, error) {
	trades, err := s.repo.ListTrades()
	if err != nil {
		return nil, err
	}

	var fees []models.Fee
	for _, trade := range trades {
		if trade.Fee == 0 {
			continue
		}
		asset, _ := splitMarket(trade.Market)
		ts := parseExecutedAt(trade.ExecutedAt)
		side := models.BuySellFromCode(trade.Side)
		fees = append(fees, models.Fee{
			Timestamp:   ts,
			Broker:      brokers.BrokerBitvavo,
			Date:        ts.Format(displayDateFormat),
			Time:        ts.Format("15:04"),
			Type:        models.FeeTypeTransaction,
			Description: fmt.Sprintf("%s %s", side.PastTense(), asset),
			Value:       -trade.Fee,
			Currency:    trade.FeeCurrency,
		})
	}
	return fees, nil
}

// GetDeposits lists completed deposits and withdrawals. Withdrawals are
// reported with a negative change.
func (s *Service) GetDeposits() ([]models.Deposit, error) {
	history, err := s.repo.ListCashHistory()
	if err != nil {
		return nil, err
	}

	var deposits []models.Deposit
	for _, h := range history {
		if !strings.EqualFold(h.Status, "completed") {
			continue
		}
		ts := parseExecutedAt(h.CreatedAt)

		var depositType models.DepositType
		change := h.Amount
		switch strings.ToLower(h.TxType) {
		case "deposit":
			depositType = models.DepositTypeDeposit
		case "withdrawal":
			depositType = models.DepositTypeWithdrawal
			change = -h.Amount
		default:
			continue
		}

		deposits = append(deposits, models.Deposit{
			Timestamp:   ts,
			Broker:      brokers.BrokerBitvavo,
			Date:        ts.Format(displayDateFormat),
			Time:        ts.Format("15:04"),
			Type:        depositType,
			Description: fmt.Sprintf("%s %s", depositType, h.Symbol),
			Change:      change,
			Currency:    h.Symbol,
		})
	}
	return deposits, nil
}

// GetPortfolio builds crypto positions from wallet balances and the last
// imported EUR spot price per market.
func (s *Service) GetPortfolio() ([]models.PortfolioEntry, error) {
	balances, err := s.repo.ListBalances()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	var entries []models.PortfolioEntry
	for _, b := range balances {
		quantity := b.Available + b.InOrder
		if quantity == 0 {
			continue
		}

		if strings.EqualFold(b.Symbol, "EUR") {
			baseValue, err := s.converter.Convert(quantity, "EUR", s.baseCurrency, now)
			if err != nil {
				baseValue = quantity
			}
			entry := models.PortfolioEntry{
				Broker:      brokers.BrokerBitvavo,
				Symbol:      "EUR",
				Name:        "Euro",
				ProductType: models.ProductTypeCash,
				Quantity:    quantity,
				Price:       1,
				Value:       quantity,
				BaseValue:   baseValue,
				IsOpen:      true,
				Currency:    "EUR",
			}
			entry.Format(s.baseCurrency)
			entries = append(entries, entry)
			continue
		}

		market := b.Symbol + "-EUR"
		price, found, err := s.repo.MarketPrice(market)
		if err != nil {
			return nil, err
		}
		if !found {
			logger.L.Warn("No spot price imported for market, skipping position", "market", market)
			continue
		}

		value := quantity * price
		baseValue, err := s.converter.Convert(value, "EUR", s.baseCurrency, now)
		if err != nil {
			baseValue = value
		}

		entry := models.PortfolioEntry{
			Broker:      brokers.BrokerBitvavo,
			Symbol:      b.Symbol,
			Name:        b.Symbol,
			ProductType: models.ProductTypeCrypto,
			Quantity:    quantity,
			Price:       price,
			Value:       value,
			BaseValue:   baseValue,
			IsOpen:      true,
			Sector:      "Cryptocurrency",
			Currency:    "EUR",
		}
		entry.Format(s.baseCurrency)
		entries = append(entries, entry)
	}
	return entries, nil
}

// GetTotalPortfolio computes Bitvavo's own totals. Unrealized P/L needs the
// full trade history against current value, so TotalPL here is the value
// delta against net deposits.
func (s *Service) GetTotalPortfolio() (models.TotalPortfolio, error) {
	entries, err := s.GetPortfolio()
	if err != nil {
		return models.TotalPortfolio{}, err
	}

	var total models.TotalPortfolio
	for _, e := range entries {
		if e.ProductType == models.ProductTypeCash {
			total.TotalCash += e.BaseValue
		} else {
			total.CurrentValue += e.BaseValue
		}
	}
	total.CurrentValue += total.TotalCash

	deposits, err := s.GetDeposits()
	if err != nil {
		return models.TotalPortfolio{}, err
	}
	for _, d := range deposits {
		converted, err := s.converter.Convert(d.Change, d.Currency, s.baseCurrency, d.Timestamp)
		if err != nil {
			converted = d.Change
		}
		total.TotalDepositWithdrawal += converted
	}

	total.TotalPL = total.CurrentValue - total.TotalDepositWithdrawal
	total.Format(s.baseCurrency)
	return total, nil
}

// Authenticate checks that usable API credentials are configured.
func (s *Service) Authenticate(ctx context.Context) error {
	cfg, err := s.config.Load(brokers.BrokerBitvavo)
	if err != nil {
		return err
	}
	if !cfg.Credentials.HasMinimalCredentials(brokers.BrokerBitvavo) {
		return brokers.ErrInvalidCredentials
	}
	return nil
}
