package ibkr

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/username/stonksoverwatch/backend/src/database"
)

// TradeRow is a raw row from ibkr_trades.
type TradeRow struct {
	ID          string
	Symbol      string
	Description string
	Side        string // "B" / "S"
	Size        float64
	Price       float64
	Amount      float64
	Commission  float64
	Currency    string
	TradeTime   string // "2006-01-02 15:04"
}

// CashTransactionRow is a raw row from ibkr_cash_transactions.
type CashTransactionRow struct {
	ID          string
	TxType      string // "Dividends" / "Withholding Tax"
	Symbol      string
	Description string
	Amount      float64
	Currency    string
	SettleDate  string // YYYY-MM-DD
}

// PositionRow is a raw row from ibkr_positions.
type PositionRow struct {
	ConID       string
	Symbol      string
	Name        string
	Position    float64
	MarketPrice float64
	MarketValue float64
	AvgCost     float64
	Currency    string
	AssetClass  string
	Sector      string
	Country     string
}

// AccountRow is a raw row from ibkr_account.
type AccountRow struct {
	AccountID      string
	NetLiquidation float64
	TotalCash      float64
	UnrealizedPnL  float64
	TotalDeposits  float64
	Currency       string
	CapturedAt     string
}

// Repository runs parameterized queries against the IBKR tables.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) ListTrades() ([]TradeRow, error) {
	rows, err := r.db.Query(`
		SELECT id, symbol, description, side, size, price, amount, commission, currency, trade_time
		FROM ibkr_trades
		ORDER BY trade_time DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying ibkr trades: %w", err)
	}
	defer rows.Close()

	var out []TradeRow
	for rows.Next() {
		var t TradeRow
		if err := rows.Scan(&t.ID, &t.Symbol, &t.Description, &t.Side, &t.Size, &t.Price,
			&t.Amount, &t.Commission, &t.Currency, &t.TradeTime); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *Repository) ListCashTransactions() ([]CashTransactionRow, error) {
	rows, err := r.db.Query(`
		SELECT id, tx_type, symbol, description, amount, currency, settle_date
		FROM ibkr_cash_transactions
		ORDER BY settle_date DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying ibkr cash transactions: %w", err)
	}
	defer rows.Close()

	var out []CashTransactionRow
	for rows.Next() {
		var c CashTransactionRow
		if err := rows.Scan(&c.ID, &c.TxType, &c.Symbol, &c.Description, &c.Amount, &c.Currency, &c.SettleDate); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repository) ListPositions() ([]PositionRow, error) {
	rows, err := r.db.Query(`
		SELECT conid, symbol, name, position, market_price, market_value, avg_cost,
		       currency, asset_class, sector, country
		FROM ibkr_positions`)
	if err != nil {
		return nil, fmt.Errorf("querying ibkr positions: %w", err)
	}
	defer rows.Close()

	var out []PositionRow
	for rows.Next() {
		var p PositionRow
		if err := rows.Scan(&p.ConID, &p.Symbol, &p.Name, &p.Position, &p.MarketPrice,
			&p.MarketValue, &p.AvgCost, &p.Currency, &p.AssetClass, &p.Sector, &p.Country); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Account returns the latest account summary snapshot, if any was imported.
func (r *Repository) Account() (AccountRow, bool, error) {
	row := r.db.QueryRow(`
		SELECT account_id, net_liquidation, total_cash, unrealized_pnl, total_deposits, currency, captured_at
		FROM ibkr_account
		ORDER BY captured_at DESC
		LIMIT 1`)

	var a AccountRow
	err := row.Scan(&a.AccountID, &a.NetLiquidation, &a.TotalCash, &a.UnrealizedPnL,
		&a.TotalDeposits, &a.Currency, &a.CapturedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return AccountRow{}, false, nil
	}
	if err != nil {
		return AccountRow{}, false, err
	}
	return a, true, nil
}

func (r *Repository) UpsertTrade(t TradeRow) error {
	return database.WithRetry(func() error {
		_, err := r.db.Exec(`
			INSERT INTO ibkr_trades (id, symbol, description, side, size, price, amount, commission, currency, trade_time)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO NOTHING`,
			t.ID, t.Symbol, t.Description, t.Side, t.Size, t.Price, t.Amount, t.Commission, t.Currency, t.TradeTime)
		return err
	})
}

func (r *Repository) UpsertCashTransaction(c CashTransactionRow) error {
	return database.WithRetry(func() error {
		_, err := r.db.Exec(`
			INSERT INTO ibkr_cash_transactions (id, tx_type, symbol, description, amount, currency, settle_date)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET amount = excluded.amount`,
			c.ID, c.TxType, c.Symbol, c.Description, c.Amount, c.Currency, c.SettleDate)
		return err
	})
}

func (r *Repository) ReplacePositions(positions []PositionRow) error {
	return database.WithRetry(func() error {
		tx, err := r.db.Begin()
		if err != nil {
			return err
		}
		defer tx.Rollback()

		if _, err := tx.Exec(`DELETE FROM ibkr_positions`); err != nil {
			return err
		}
		for _, p := range positions {
			if _, err := tx.Exec(`
				INSERT INTO ibkr_positions
					(conid, symbol, name, position, market_price, market_value, avg_cost,
					 currency, asset_class, sector, country)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				p.ConID, p.Symbol, p.Name, p.Position, p.MarketPrice, p.MarketValue,
				p.AvgCost, p.Currency, p.AssetClass, p.Sector, p.Country); err != nil {
				return err
			}
		}
		return tx.Commit()
	})
}

func (r *Repository) UpsertAccount(a AccountRow) error {
	return database.WithRetry(func() error {
		_, err := r.db.Exec(`
			INSERT INTO ibkr_account (account_id, net_liquidation, total_cash, unrealized_pnl, total_deposits, currency, captured_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(account_id) DO UPDATE SET
				net_liquidation = excluded.net_liquidation,
				total_cash = excluded.total_cash,
				unrealized_pnl = excluded.unrealized_pnl,
				total_deposits = excluded.total_deposits,
				captured_at = excluded.captured_at`,
			a.AccountID, a.NetLiquidation, a.TotalCash, a.UnrealizedPnL, a.TotalDeposits, a.Currency, a.CapturedAt)
		return err
	})
}
