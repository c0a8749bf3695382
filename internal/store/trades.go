package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Trade 为一笔已执行（含模拟）的成交记录。
type Trade struct {
	ID         int64
	ExecutedAt time.Time
	Pair       string
	Action     string
	Amount     float64
	Price      float64
	QuoteCost  float64
	Mode       string
	OrderID    string
}

// 交易执行模式。
const (
	ModeLive   = "live"
	ModeDryRun = "dry_run"
)

// TradeHistory 将成交记录持久化到 SQLite，供事后复盘查询。
type TradeHistory struct {
	db *sql.DB
}

// NewTradeHistory 创建成交历史存储并初始化表结构。
func NewTradeHistory(store *Store) (*TradeHistory, error) {
	if store == nil || store.DB() == nil {
		return nil, errors.New("store: 数据库实例不能为空")
	}

	history := &TradeHistory{db: store.DB()}
	if err := history.initSchema(); err != nil {
		return nil, err
	}

	return history, nil
}

func (h *TradeHistory) initSchema() error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS trades (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			executed_at TEXT NOT NULL,
			pair TEXT NOT NULL,
			action TEXT NOT NULL,
			amount REAL NOT NULL,
			price REAL NOT NULL,
			quote_cost REAL NOT NULL,
			mode TEXT NOT NULL,
			order_id TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS idx_trades_executed_at ON trades(executed_at);`,
	}

	for _, stmt := range schema {
		if _, err := h.db.Exec(stmt); err != nil {
			return fmt.Errorf("store: 初始化表结构失败: %w", err)
		}
	}

	return nil
}

// Record 写入一笔成交。
func (h *TradeHistory) Record(ctx context.Context, trade Trade) error {
	executedAt := trade.ExecutedAt
	if executedAt.IsZero() {
		executedAt = time.Now().UTC()
	}

	_, err := h.db.ExecContext(ctx,
		`INSERT INTO trades (executed_at, pair, action, amount, price, quote_cost, mode, order_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		executedAt.UTC().Format(time.RFC3339),
		trade.Pair, trade.Action, trade.Amount, trade.Price, trade.QuoteCost, trade.Mode, trade.OrderID,
	)
	if err != nil {
		return fmt.Errorf("store: 写入成交记录失败: %w", err)
	}

	return nil
}

// RecentTrades 按时间倒序返回最近的成交记录。
func (h *TradeHistory) RecentTrades(ctx context.Context, limit int) ([]Trade, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := h.db.QueryContext(ctx,
		`SELECT id, executed_at, pair, action, amount, price, quote_cost, mode, order_id
		 FROM trades ORDER BY executed_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("store: 查询成交记录失败: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var trades []Trade
	for rows.Next() {
		var (
			trade      Trade
			executedAt string
			orderID    sql.NullString
		)
		if err := rows.Scan(&trade.ID, &executedAt, &trade.Pair, &trade.Action,
			&trade.Amount, &trade.Price, &trade.QuoteCost, &trade.Mode, &orderID); err != nil {
			return nil, fmt.Errorf("store: 解析成交记录失败: %w", err)
		}
		if ts, parseErr := time.Parse(time.RFC3339, executedAt); parseErr == nil {
			trade.ExecutedAt = ts
		}
		trade.OrderID = orderID.String
		trades = append(trades, trade)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: 遍历成交记录失败: %w", err)
	}

	return trades, nil
}
