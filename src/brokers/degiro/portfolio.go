package degiro

import (
	"strings"
	"time"

	"github.com/username/stonksoverwatch/backend/src/brokers"
	"github.com/username/stonksoverwatch/backend/src/logger"
	"github.com/username/stonksoverwatch/backend/src/models"
)

func productTypeFromRow(raw string) models.ProductType {
	switch strings.ToUpper(raw) {
	case "STOCK":
		return models.ProductTypeStock
	case "ETF":
		return models.ProductTypeETF
	case "CASH":
		return models.ProductTypeCash
	case "CURRENCY":
		return models.ProductTypeCurrency
	default:
		return models.ProductTypeUnknown
	}
}

// GetPortfolio normalizes the position snapshot. Non-tradeable ".D"
// variants are re-mapped to their tradeable equivalent for display when
// one exists; otherwise the entry is kept as-is.
func (s *Service) GetPortfolio() ([]models.PortfolioEntry, error) {
	rows, err := s.repo.ListPortfolio()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	entries := make([]models.PortfolioEntry, 0, len(rows))
	for _, row := range rows {
		symbol, name := row.Symbol, row.Name
		if strings.HasSuffix(symbol, NonTradeableSuffix) {
			if equivalent, found, err := s.repo.TradeableEquivalent(symbol); err != nil {
				logger.L.Warn("Tradeable equivalent lookup failed", "symbol", symbol, "error", err)
			} else if found {
				symbol, name = equivalent.Symbol, equivalent.Name
			}
		}

		baseValue := row.BaseValue
		if baseValue == 0 && row.Value != 0 {
			baseValue = s.toBase(row.Value, row.Currency, now)
		}

		unrealized := (row.Price - row.BreakEvenPrice) * row.Size
		entry := models.PortfolioEntry{
			Broker:         brokers.BrokerDeGiro,
			Symbol:         symbol,
			Name:           name,
			ISIN:           row.ISIN,
			ProductType:    productTypeFromRow(row.ProductType),
			Quantity:       row.Size,
			Price:          row.Price,
			Value:          row.Value,
			BaseValue:      baseValue,
			UnrealizedGain: s.toBase(unrealized, row.Currency, now),
			IsOpen:         row.IsOpen,
			Sector:         row.Sector,
			Country:        row.Country,
			Currency:       row.Currency,
		}
		entry.Format(s.baseCurrency)
		entries = append(entries, entry)
	}
	return entries, nil
}

// GetTotalPortfolio computes this broker's own totals. ROI is left for the
// aggregator, which owns the combined calculation.
func (s *Service) GetTotalPortfolio() (models.TotalPortfolio, error) {
	entries, err := s.GetPortfolio()
	if err != nil {
		return models.TotalPortfolio{}, err
	}

	var total models.TotalPortfolio
	for _, e := range entries {
		if !e.IsOpen {
			continue
		}
		if e.ProductType == models.ProductTypeCash || e.ProductType == models.ProductTypeCurrency {
			total.TotalCash += e.BaseValue
		} else {
			total.CurrentValue += e.BaseValue
		}
		total.TotalPL += e.UnrealizedGain
	}
	total.CurrentValue += total.TotalCash

	deposits, err := s.GetDeposits()
	if err != nil {
		return models.TotalPortfolio{}, err
	}
	for _, d := range deposits {
		total.TotalDepositWithdrawal += s.toBase(d.Change, d.Currency, d.Timestamp)
	}

	total.Format(s.baseCurrency)
	return total, nil
}
