package models

import (
	"time"

	"github.com/username/stonksoverwatch/backend/src/utils"
)

// Transaction is the normalized representation of a single trade,
// built fresh from broker rows on every request.
type Transaction struct {
	Timestamp time.Time `json:"-"` // authoritative sort key

	Broker          string  `json:"broker"`
	Name            string  `json:"name"`
	Symbol          string  `json:"symbol"`
	Date            string  `json:"date"` // DD-MM-YYYY
	Time            string  `json:"time"` // HH:MM
	BuySell         BuySell `json:"buy_sell"`
	TransactionType string  `json:"transaction_type"`
	Price           float64 `json:"price"`
	PriceFormatted  string  `json:"price_formatted"`
	Quantity        float64 `json:"quantity"`
	Total           float64 `json:"total"`
	TotalFormatted  string  `json:"total_formatted"`
	TotalBase       float64 `json:"total_base"` // in the configured base currency
	TotalBaseFmt    string  `json:"total_base_formatted"`
	Fee             float64 `json:"fee"`
	FeeFormatted    string  `json:"fee_formatted"`
	Currency        string  `json:"currency"`
}

// Format fills the display fields from the raw numeric ones.
func (t *Transaction) Format(baseCurrency string) {
	t.PriceFormatted = utils.FormatMoney(t.Price, t.Currency)
	t.TotalFormatted = utils.FormatMoney(t.Total, t.Currency)
	t.TotalBaseFmt = utils.FormatMoney(t.TotalBase, baseCurrency)
	t.FeeFormatted = utils.FormatMoney(t.Fee, baseCurrency)
}

// Deposit is a normalized cash inflow or outflow.
type Deposit struct {
	Timestamp time.Time `json:"-"`

	Broker      string      `json:"broker"`
	Date        string      `json:"date"`
	Time        string      `json:"time"`
	Type        DepositType `json:"type"`
	Description string      `json:"description"`
	Change      float64     `json:"change"` // signed, positive for deposits
	Currency    string      `json:"currency"`
}

// Fee is a normalized account fee record. Only classified descriptions
// become fees; everything else stays out of fee totals.
type Fee struct {
	Timestamp time.Time `json:"-"`

	Broker      string  `json:"broker"`
	Date        string  `json:"date"`
	Time        string  `json:"time"`
	Type        FeeType `json:"type"`
	Description string  `json:"description"`
	Value       float64 `json:"value"`
	Currency    string  `json:"currency"`
}

// Dividend is a paid or upcoming dividend payment.
type Dividend struct {
	Timestamp time.Time `json:"-"`

	Broker      string       `json:"broker"`
	PaymentDate string       `json:"payment_date"`
	Name        string       `json:"name"`
	Symbol      string       `json:"symbol"`
	Currency    string       `json:"currency"`
	Amount      float64      `json:"amount"`
	Taxes       float64      `json:"taxes"`
	Type        DividendType `json:"type"`
}

// AccountOverview is a single account/cash movement line.
type AccountOverview struct {
	Timestamp time.Time `json:"-"`

	Broker        string   `json:"broker"`
	Date          string   `json:"date"`
	Time          string   `json:"time"`
	ValueDate     string   `json:"value_date"`
	Name          string   `json:"name"`
	Symbol        string   `json:"symbol"`
	Description   string   `json:"description"`
	MovementType  string   `json:"movement_type"`
	Currency      string   `json:"currency"`
	Change        float64  `json:"change"`
	Balance       *float64 `json:"balance,omitempty"`
	UnsettledCash *float64 `json:"unsettled_cash,omitempty"`
}

// PortfolioEntry is one position in the merged portfolio view.
type PortfolioEntry struct {
	Broker           string      `json:"broker"`
	Symbol           string      `json:"symbol"`
	Name             string      `json:"name"`
	ISIN             string      `json:"isin,omitempty"`
	ProductType      ProductType `json:"product_type"`
	Quantity         float64     `json:"quantity"`
	Price            float64     `json:"price"`
	Value            float64     `json:"value"` // in the position's own currency
	ValueFormatted   string      `json:"value_formatted"`
	BaseValue        float64     `json:"base_value"` // in the base currency
	BaseValueFmt     string      `json:"base_value_formatted"`
	UnrealizedGain   float64     `json:"unrealized_gain"`
	UnrealizedFmt    string      `json:"unrealized_gain_formatted"`
	IsOpen           bool        `json:"is_open"`
	Sector           string      `json:"sector"`
	Country          string      `json:"country"`
	Currency         string      `json:"currency"`
	PortfolioSize    float64     `json:"portfolio_size"` // weight, computed post-aggregation
	PortfolioSizeFmt string      `json:"portfolio_size_formatted"`
}

// Format fills the display fields from the raw numeric ones.
func (e *PortfolioEntry) Format(baseCurrency string) {
	e.ValueFormatted = utils.FormatMoney(e.Value, e.Currency)
	e.BaseValueFmt = utils.FormatMoney(e.BaseValue, baseCurrency)
	e.UnrealizedFmt = utils.FormatMoney(e.UnrealizedGain, baseCurrency)
	e.PortfolioSizeFmt = utils.FormatPercentage(e.PortfolioSize * 100)
}

// TotalPortfolio aggregates portfolio-level totals across brokers.
type TotalPortfolio struct {
	TotalPL                   float64 `json:"total_pl"`
	TotalPLFormatted          string  `json:"total_pl_formatted"`
	TotalCash                 float64 `json:"total_cash"`
	TotalCashFormatted        string  `json:"total_cash_formatted"`
	CurrentValue              float64 `json:"current_value"`
	CurrentValueFormatted     string  `json:"current_value_formatted"`
	TotalROI                  float64 `json:"total_roi"`
	TotalROIFormatted         string  `json:"total_roi_formatted"`
	TotalDepositWithdrawal    float64 `json:"total_deposit_withdrawal"`
	TotalDepositWithdrawalFmt string  `json:"total_deposit_withdrawal_formatted"`
}

// Format fills the display fields from the raw numeric ones.
func (tp *TotalPortfolio) Format(baseCurrency string) {
	tp.TotalPLFormatted = utils.FormatMoney(tp.TotalPL, baseCurrency)
	tp.TotalCashFormatted = utils.FormatMoney(tp.TotalCash, baseCurrency)
	tp.CurrentValueFormatted = utils.FormatMoney(tp.CurrentValue, baseCurrency)
	tp.TotalROIFormatted = utils.FormatPercentage(tp.TotalROI)
	tp.TotalDepositWithdrawalFmt = utils.FormatMoney(tp.TotalDepositWithdrawal, baseCurrency)
}
