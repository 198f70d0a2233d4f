package models

// BuySell is the normalized side of a trade.
type BuySell string

const (
	BuySellBuy     BuySell = "Buy"
	BuySellSell    BuySell = "Sell"
	BuySellUnknown BuySell = "Unknown"
)

// BuySellFromCode maps broker side codes ("B"/"S" and common long forms)
// to the normalized enumeration.
func BuySellFromCode(code string) BuySell {
	switch code {
	case "B", "b", "BUY", "buy", "Buy":
		return BuySellBuy
	case "S", "s", "SELL", "sell", "Sell":
		return BuySellSell
	default:
		return BuySellUnknown
	}
}

// PastTense returns the label used by fee listings ("Bought"/"Sold"),
// which intentionally differs from the trade listing label.
func (b BuySell) PastTense() string {
	switch b {
	case BuySellBuy:
		return "Bought"
	case BuySellSell:
		return "Sold"
	default:
		return "Unknown"
	}
}

// FeeType classifies account fees.
type FeeType string

const (
	FeeTypeTransaction           FeeType = "Transaction"
	FeeTypeFinanceTransactionTax FeeType = "Finance-Transaction-Tax"
	FeeTypeConnection            FeeType = "Connection"
	FeeTypeADRGDR                FeeType = "ADR/GDR"
)

// DepositType distinguishes cash inflows from outflows.
type DepositType string

const (
	DepositTypeDeposit    DepositType = "Deposit"
	DepositTypeWithdrawal DepositType = "Withdrawal"
)

// DividendType distinguishes paid dividends from announced ones.
type DividendType string

const (
	DividendTypePaid     DividendType = "Paid"
	DividendTypeUpcoming DividendType = "Upcoming"
)

// ProductType classifies portfolio entries.
type ProductType string

const (
	ProductTypeStock    ProductType = "Stock"
	ProductTypeETF      ProductType = "ETF"
	ProductTypeCash     ProductType = "Cash"
	ProductTypeCrypto   ProductType = "Crypto"
	ProductTypeCurrency ProductType = "Currency"
	ProductTypeUnknown  ProductType = "Unknown"
)

// ServiceType identifies a broker capability.
type ServiceType string

const (
	ServicePortfolio      ServiceType = "portfolio"
	ServiceTransaction    ServiceType = "transaction"
	ServiceDeposit        ServiceType = "deposit"
	ServiceDividend       ServiceType = "dividend"
	ServiceFee            ServiceType = "fee"
	ServiceAccount        ServiceType = "account"
	ServiceAuthentication ServiceType = "authentication"
)

// AllServiceTypes lists every capability in registry order.
var AllServiceTypes = []ServiceType{
	ServicePortfolio,
	ServiceTransaction,
	ServiceDeposit,
	ServiceDividend,
	ServiceFee,
	ServiceAccount,
	ServiceAuthentication,
}

// PortfolioSelector scopes an aggregation to all brokers or a single one.
type PortfolioSelector string

// SelectorAll aggregates across every enabled broker.
const SelectorAll PortfolioSelector = "ALL"

// Matches reports whether the selector includes the given broker.
func (s PortfolioSelector) Matches(broker string) bool {
	return s == SelectorAll || string(s) == broker
}
