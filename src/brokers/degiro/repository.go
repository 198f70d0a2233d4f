package degiro

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/username/stonksoverwatch/backend/src/database"
)

// TransactionRow is a raw row from degiro_transactions.
type TransactionRow struct {
	ID                string
	ProductName       string
	Symbol            string
	ISIN              string
	Date              string // YYYY-MM-DD
	Time              string // HH:MM
	BuySell           string // "B" / "S"
	Price             float64
	Quantity          float64
	Total             float64
	TotalBase         float64
	Fee               float64
	Currency          string
	OrderTypeID       sql.NullInt64
	TransactionTypeID sql.NullInt64
	OrderID           string
}

// CashMovementRow is a raw row from degiro_cash_movements.
type CashMovementRow struct {
	ID            string
	Date          string
	Time          string
	ValueDate     string
	ProductName   string
	Symbol        string
	ISIN          string
	Description   string
	MovementType  string
	Change        float64
	Currency      string
	Balance       sql.NullFloat64
	UnsettledCash sql.NullFloat64
}

// PortfolioRow is a raw row from degiro_portfolio.
type PortfolioRow struct {
	ProductID      string
	Symbol         string
	Name           string
	ISIN           string
	ProductType    string
	Size           float64
	Price          float64
	Value          float64
	BaseValue      float64
	BreakEvenPrice float64
	Currency       string
	IsOpen         bool
	Sector         string
	Country        string
}

// ProductRow is a raw row from degiro_products.
type ProductRow struct {
	ProductID   string
	Symbol      string
	Name        string
	ISIN        string
	ProductType string
	Currency    string
	Tradeable   bool
}

// UpcomingDividendRow is a raw row from degiro_upcoming_dividends.
type UpcomingDividendRow struct {
	ID          string
	PayDate     string
	ProductName string
	Symbol      string
	ISIN        string
	Currency    string
	Amount      float64
}

// Repository runs parameterized queries against the DeGiro tables and
// returns plain rows. No business logic lives here.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// ListTransactions returns all imported trades, most recent first.
func (r *Repository) ListTransactions() ([]TransactionRow, error) {
	rows, err := r.db.Query(`
		SELECT id, product_name, symbol, isin, transaction_date, transaction_time,
		       buysell, price, quantity, total, total_base, fee, currency,
		       order_type_id, transaction_type_id, order_id
		FROM degiro_transactions
		ORDER BY transaction_date DESC, transaction_time DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying degiro transactions: %w", err)
	}
	defer rows.Close()

	var out []TransactionRow
	for rows.Next() {
		var t TransactionRow
		if err := rows.Scan(&t.ID, &t.ProductName, &t.Symbol, &t.ISIN, &t.Date, &t.Time,
			&t.BuySell, &t.Price, &t.Quantity, &t.Total, &t.TotalBase, &t.Fee, &t.Currency,
			&t.OrderTypeID, &t.TransactionTypeID, &t.OrderID); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// ListCashMovements returns all account movements, most recent first.
func (r *Repository) ListCashMovements() ([]CashMovementRow, error) {
	rows, err := r.db.Query(`
		SELECT id, movement_date, movement_time, value_date, product_name, symbol, isin,
		       description, movement_type, change, currency, balance, unsettled_cash
		FROM degiro_cash_movements
		ORDER BY movement_date DESC, movement_time DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying degiro cash movements: %w", err)
	}
	defer rows.Close()

	var out []CashMovementRow
	for rows.Next() {
		var m CashMovementRow
		if err := rows.Scan(&m.ID, &m.Date, &m.Time, &m.ValueDate, &m.ProductName, &m.Symbol,
			&m.ISIN, &m.Description, &m.MovementType, &m.Change, &m.Currency,
			&m.Balance, &m.UnsettledCash); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// ListPortfolio returns the current position snapshot.
func (r *Repository) ListPortfolio() ([]PortfolioRow, error) {
	rows, err := r.db.Query(`
		SELECT p.product_id, p.symbol, p.name, COALESCE(pr.isin, ''), p.product_type,
		       p.size, p.price, p.value, p.base_value, p.break_even_price,
		       p.currency, p.is_open, p.sector, p.country
		FROM degiro_portfolio p
		LEFT JOIN degiro_products pr ON pr.product_id = p.product_id`)
	if err != nil {
		return nil, fmt.Errorf("querying degiro portfolio: %w", err)
	}
	defer rows.Close()

	var out []PortfolioRow
	for rows.Next() {
		var p PortfolioRow
		var isOpen int
		if err := rows.Scan(&p.ProductID, &p.Symbol, &p.Name, &p.ISIN, &p.ProductType,
			&p.Size, &p.Price, &p.Value, &p.BaseValue, &p.BreakEvenPrice, &p.Currency,
			&isOpen, &p.Sector, &p.Country); err != nil {
			return nil, err
		}
		p.IsOpen = isOpen != 0
		out = append(out, p)
	}
	return out, rows.Err()
}

// FindTradeableBySymbol returns a tradeable product with the given symbol,
// used to re-map non-tradeable ".D" variants for display.
func (r *Repository) FindTradeableBySymbol(symbol string) (ProductRow, bool, error) {
	row := r.db.QueryRow(`
		SELECT product_id, symbol, name, isin, product_type, currency, tradeable
		FROM degiro_products
		WHERE symbol = ? AND tradeable = 1
		LIMIT 1`, symbol)

	var p ProductRow
	var tradeable int
	err := row.Scan(&p.ProductID, &p.Symbol, &p.Name, &p.ISIN, &p.ProductType, &p.Currency, &tradeable)
	if errors.Is(err, sql.ErrNoRows) {
		return ProductRow{}, false, nil
	}
	if err != nil {
		return ProductRow{}, false, err
	}
	p.Tradeable = tradeable != 0
	return p, true, nil
}

// ListUpcomingDividends returns announced, unpaid dividends.
func (r *Repository) ListUpcomingDividends() ([]UpcomingDividendRow, error) {
	rows, err := r.db.Query(`
		SELECT id, pay_date, product_name, symbol, isin, currency, amount
		FROM degiro_upcoming_dividends
		ORDER BY pay_date DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying degiro upcoming dividends: %w", err)
	}
	defer rows.Close()

	var out []UpcomingDividendRow
	for rows.Next() {
		var d UpcomingDividendRow
		if err := rows.Scan(&d.ID, &d.PayDate, &d.ProductName, &d.Symbol, &d.ISIN, &d.Currency, &d.Amount); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// fxProduct finds the currency-pair product matching from/to in either
// orientation. inverse is true when the stored pair is to/from.
func (r *Repository) fxProduct(from, to string) (productID string, inverse bool, ok bool, err error) {
	direct := from + "/" + to
	inverted := to + "/" + from
	row := r.db.QueryRow(`
		SELECT product_id, symbol FROM degiro_products
		WHERE product_type = 'CURRENCY' AND symbol IN (?, ?)
		LIMIT 1`, direct, inverted)

	var symbol string
	err = row.Scan(&productID, &symbol)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, false, nil
	}
	if err != nil {
		return "", false, false, err
	}
	return productID, symbol == inverted, true, nil
}

// HistoricalRate implements currency.RateSource over the DeGiro FX product
// quotation history. The quote used is the latest one at or before the
// requested date, never a later one. A missing pair or a null stored quote
// reports ok=false so the caller can fall through to its general converter.
func (r *Repository) HistoricalRate(from, to string, date time.Time) (float64, bool, error) {
	productID, inverse, ok, err := r.fxProduct(from, to)
	if err != nil || !ok {
		return 0, false, err
	}

	row := r.db.QueryRow(`
		SELECT price FROM degiro_quotations
		WHERE product_id = ? AND quote_date <= ?
		ORDER BY quote_date DESC
		LIMIT 1`, productID, date.Format("2006-01-02"))

	var price sql.NullFloat64
	err = row.Scan(&price)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	if !price.Valid || price.Float64 <= 0 {
		return 0, false, nil
	}
	if inverse {
		return 1 / price.Float64, true, nil
	}
	return price.Float64, true, nil
}

// Upsert helpers used by the refresh job. All writes go through the
// locked-retry wrapper.

func (r *Repository) UpsertTransaction(t TransactionRow) error {
	return database.WithRetry(func() error {
		_, err := r.db.Exec(`
			INSERT INTO degiro_transactions
				(id, product_name, symbol, isin, transaction_date, transaction_time, buysell,
				 price, quantity, total, total_base, fee, currency, order_type_id,
				 transaction_type_id, order_id)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				total = excluded.total, total_base = excluded.total_base, fee = excluded.fee`,
			t.ID, t.ProductName, t.Symbol, t.ISIN, t.Date, t.Time, t.BuySell,
			t.Price, t.Quantity, t.Total, t.TotalBase, t.Fee, t.Currency,
			t.OrderTypeID, t.TransactionTypeID, t.OrderID)
		return err
	})
}

func (r *Repository) UpsertCashMovement(m CashMovementRow) error {
	return database.WithRetry(func() error {
		_, err := r.db.Exec(`
			INSERT INTO degiro_cash_movements
				(id, movement_date, movement_time, value_date, product_name, symbol, isin,
				 description, movement_type, change, currency, balance, unsettled_cash)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				balance = excluded.balance, unsettled_cash = excluded.unsettled_cash`,
			m.ID, m.Date, m.Time, m.ValueDate, m.ProductName, m.Symbol, m.ISIN,
			m.Description, m.MovementType, m.Change, m.Currency, m.Balance, m.UnsettledCash)
		return err
	})
}

func (r *Repository) ReplacePortfolio(rowsIn []PortfolioRow) error {
	return database.WithRetry(func() error {
		tx, err := r.db.Begin()
		if err != nil {
			return err
		}
		defer tx.Rollback()

		if _, err := tx.Exec(`DELETE FROM degiro_portfolio`); err != nil {
			return err
		}
		for _, p := range rowsIn {
			isOpen := 0
			if p.IsOpen {
				isOpen = 1
			}
			if _, err := tx.Exec(`
				INSERT INTO degiro_portfolio
					(product_id, symbol, name, product_type, size, price, value, base_value,
					 break_even_price, currency, is_open, sector, country)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				p.ProductID, p.Symbol, p.Name, p.ProductType, p.Size, p.Price, p.Value,
				p.BaseValue, p.BreakEvenPrice, p.Currency, isOpen, p.Sector, p.Country); err != nil {
				return err
			}
		}
		return tx.Commit()
	})
}

func (r *Repository) UpsertProduct(p ProductRow) error {
	tradeable := 0
	if p.Tradeable {
		tradeable = 1
	}
	return database.WithRetry(func() error {
		_, err := r.db.Exec(`
			INSERT INTO degiro_products (product_id, symbol, name, isin, product_type, currency, tradeable)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(product_id) DO UPDATE SET
				symbol = excluded.symbol, name = excluded.name, tradeable = excluded.tradeable`,
			p.ProductID, p.Symbol, p.Name, p.ISIN, p.ProductType, p.Currency, tradeable)
		return err
	})
}

func (r *Repository) UpsertQuotation(productID, quoteDate string, price *float64) error {
	return database.WithRetry(func() error {
		_, err := r.db.Exec(`
			INSERT INTO degiro_quotations (product_id, quote_date, price)
			VALUES (?, ?, ?)
			ON CONFLICT(product_id, quote_date) DO UPDATE SET price = excluded.price`,
			productID, quoteDate, price)
		return err
	})
}

func (r *Repository) UpsertUpcomingDividend(d UpcomingDividendRow) error {
	return database.WithRetry(func() error {
		_, err := r.db.Exec(`
			INSERT INTO degiro_upcoming_dividends (id, pay_date, product_name, symbol, isin, currency, amount)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET pay_date = excluded.pay_date, amount = excluded.amount`,
			d.ID, d.PayDate, d.ProductName, d.Symbol, d.ISIN, d.Currency, d.Amount)
		return err
	})
}

// NonTradeableSuffix marks product variants that cannot be traded; the
// portfolio view re-maps them to the tradeable product when one exists.
const NonTradeableSuffix = ".D"

// TradeableEquivalent strips the non-tradeable suffix and looks up the
// matching tradeable product. found is false when no equivalent exists.
func (r *Repository) TradeableEquivalent(symbol string) (ProductRow, bool, error) {
	if !strings.HasSuffix(symbol, NonTradeableSuffix) {
		return ProductRow{}, false, nil
	}
	base := strings.TrimSuffix(symbol, NonTradeableSuffix)
	return r.FindTradeableBySymbol(base)
}
