package bitvavo

import (
	"database/sql"
	"fmt"

	"github.com/username/stonksoverwatch/backend/src/database"
)

// TradeRow is a raw row from bitvavo_trades.
type TradeRow struct {
	ID          string
	Market      string // e.g. "BTC-EUR"
	Side        string // "buy" / "sell"
	Amount      float64
	Price       float64
	Fee         float64
	FeeCurrency string
	ExecutedAt  string // RFC3339
}

// CashHistoryRow is a raw row from bitvavo_cash_history.
type CashHistoryRow struct {
	ID        string
	TxType    string // "deposit" / "withdrawal"
	Symbol    string
	Amount    float64
	Fee       float64
	Status    string
	CreatedAt string
}

// BalanceRow is a raw row from bitvavo_balances.
type BalanceRow struct {
	Symbol    string
	Available float64
	InOrder   float64
}

// Repository runs parameterized queries against the Bitvavo tables.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) ListTrades() ([]TradeRow, error) {
	rows, err := r.db.Query(`
		SELECT id, market, side, amount, price, fee, fee_currency, executed_at
		FROM bitvavo_trades
		ORDER BY executed_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying bitvavo trades: %w", err)
	}
	defer rows.Close()

	var out []TradeRow
	for rows.Next() {
		var t TradeRow
		if err := rows.Scan(&t.ID, &t.Market, &t.Side, &t.Amount, &t.Price, &t.Fee, &t.FeeCurrency, &t.ExecutedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *Repository) ListCashHistory() ([]CashHistoryRow, error) {
	rows, err := r.db.Query(`
		SELECT id, tx_type, symbol, amount, fee, status, created_at
		FROM bitvavo_cash_history
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying bitvavo cash history: %w", err)
	}
	defer rows.Close()

	var out []CashHistoryRow
	for rows.Next() {
		var h CashHistoryRow
		if err := rows.Scan(&h.ID, &h.TxType, &h.Symbol, &h.Amount, &h.Fee, &h.Status, &h.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func (r *Repository) ListBalances() ([]BalanceRow, error) {
	rows, err := r.db.Query(`SELECT symbol, available, in_order FROM bitvavo_balances`)
	if err != nil {
		return nil, fmt.Errorf("querying bitvavo balances: %w", err)
	}
	defer rows.Close()

	var out []BalanceRow
	for rows.Next() {
		var b BalanceRow
		if err := rows.Scan(&b.Symbol, &b.Available, &b.InOrder); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// MarketPrice returns the last imported spot price for a market
// (e.g. "BTC-EUR"). found is false when the market was never priced.
func (r *Repository) MarketPrice(market string) (float64, bool, error) {
	row := r.db.QueryRow(`SELECT price FROM bitvavo_prices WHERE market = ?`, market)
	var price float64
	err := row.Scan(&price)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return price, true, nil
}

func (r *Repository) UpsertTrade(t TradeRow) error {
	return database.WithRetry(func() error {
		_, err := r.db.Exec(`
			INSERT INTO bitvavo_trades (id, market, side, amount, price, fee, fee_currency, executed_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO NOTHING`,
			t.ID, t.Market, t.Side, t.Amount, t.Price, t.Fee, t.FeeCurrency, t.ExecutedAt)
		return err
	})
}

func (r *Repository) UpsertCashHistory(h CashHistoryRow) error {
	return database.WithRetry(func() error {
		_, err := r.db.Exec(`
			INSERT INTO bitvavo_cash_history (id, tx_type, symbol, amount, fee, status, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET status = excluded.status`,
			h.ID, h.TxType, h.Symbol, h.Amount, h.Fee, h.Status, h.CreatedAt)
		return err
	})
}

func (r *Repository) ReplaceBalances(balances []BalanceRow) error {
	return database.WithRetry(func() error {
		tx, err := r.db.Begin()
		if err != nil {
			return err
		}
		defer tx.Rollback()

		if _, err := tx.Exec(`DELETE FROM bitvavo_balances`); err != nil {
			return err
		}
		for _, b := range balances {
			if _, err := tx.Exec(`
				INSERT INTO bitvavo_balances (symbol, available, in_order) VALUES (?, ?, ?)`,
				b.Symbol, b.Available, b.InOrder); err != nil {
				return err
			}
		}
		return tx.Commit()
	})
}

func (r *Repository) UpsertMarketPrice(market string, price float64, updatedAt string) error {
	return database.WithRetry(func() error {
		_, err := r.db.Exec(`
			INSERT INTO bitvavo_prices (market, price, updated_at)
			VALUES (?, ?, ?)
			ON CONFLICT(market) DO UPDATE SET price = excluded.price, updated_at = excluded.updated_at`,
			market, price, updatedAt)
		return err
	})
}
