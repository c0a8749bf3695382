package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/multierr"
)

// 已支持的策略标识。
const (
	StrategyGrid     = "grid"
	StrategyRSITrend = "rsi_trend"
)

// Config 聚合了系统运行所需的全部配置项。
type Config struct {
	Exchange  ExchangeConfig  `mapstructure:"exchange"`
	Trading   TradingConfig   `mapstructure:"trading"`
	Risk      RiskConfig      `mapstructure:"risk"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Audit     AuditConfig     `mapstructure:"audit"`
}

// ExchangeConfig 描述交易所连接信息。
type ExchangeConfig struct {
	APIKey     string      `mapstructure:"api_key"`
	APISecret  string      `mapstructure:"api_secret"`
	APIPass    string      `mapstructure:"api_passphrase"`
	UseSandbox bool        `mapstructure:"use_sandbox"`
	Retry      RetryConfig `mapstructure:"retry"`
}

// RetryConfig 统一控制重试机制。
type RetryConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	MinDelay    time.Duration `mapstructure:"min_delay"`
	MaxDelay    time.Duration `mapstructure:"max_delay"`
}

// TradingConfig 描述交易对与策略选择。
type TradingConfig struct {
	Pair         string  `mapstructure:"pair"`
	Strategy     string  `mapstructure:"strategy"`
	BaseGridSize float64 `mapstructure:"base_grid_size"`
	CandleLimit  int     `mapstructure:"candle_limit"`
	LiveTrading  bool    `mapstructure:"live_trading"`
}

// RiskConfig 管理风控参数。最小下单金额与日度限额相互独立，各自可配。
type RiskConfig struct {
	PositionFraction float64 `mapstructure:"position_fraction"`
	MinTradeNotional float64 `mapstructure:"min_trade_notional"`
	MaxTradesPerDay  int     `mapstructure:"max_trades_per_day"`
	MaxDailySpend    float64 `mapstructure:"max_daily_spend"`
}

// DatabaseConfig 管理数据库连接。
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	InMemory        bool          `mapstructure:"in_memory"`
}

// LoggingConfig 控制日志输出。
type LoggingConfig struct {
	Level            string   `mapstructure:"level"`
	Encoding         string   `mapstructure:"encoding"`
	Development      bool     `mapstructure:"development"`
	OutputPaths      []string `mapstructure:"output_paths"`
	ErrorOutputPaths []string `mapstructure:"error_output_paths"`
}

// SchedulerConfig 控制主循环节奏。
type SchedulerConfig struct {
	LoopInterval time.Duration `mapstructure:"loop_interval"`
	ErrorBackoff time.Duration `mapstructure:"error_backoff"`
}

// AuditConfig 控制交易审计日志。
type AuditConfig struct {
	Path string `mapstructure:"path"`
}

// QuoteCurrency 从交易对中解析计价货币，例如 "BTC/USDT" 返回 "USDT"。
func (t TradingConfig) QuoteCurrency() string {
	parts := strings.Split(t.Pair, "/")
	if len(parts) != 2 {
		return ""
	}
	return strings.ToUpper(strings.TrimSpace(parts[1]))
}

// Validate 对配置进行基本校验。
func (c *Config) Validate() error {
	var err error

	if c.Trading.Pair == "" {
		err = multierr.Append(err, errors.New("trading.pair 不能为空"))
	} else if c.Trading.QuoteCurrency() == "" {
		err = multierr.Append(err, errors.New("trading.pair 格式应为 BASE/QUOTE"))
	}
	if c.Trading.Strategy == "" {
		err = multierr.Append(err, errors.New("trading.strategy 不能为空"))
	}
	if c.Trading.BaseGridSize <= 0 || c.Trading.BaseGridSize >= 100 {
		err = multierr.Append(err, errors.New("trading.base_grid_size 必须位于(0,100)"))
	}
	if c.Trading.CandleLimit <= 0 {
		err = multierr.Append(err, errors.New("trading.candle_limit 必须大于0"))
	}
	if c.Exchange.Retry.MaxAttempts <= 0 {
		err = multierr.Append(err, errors.New("exchange.retry.max_attempts 必须大于0"))
	}
	if c.Exchange.Retry.MinDelay <= 0 || c.Exchange.Retry.MaxDelay <= 0 {
		err = multierr.Append(err, errors.New("exchange.retry.delay 必须为正"))
	}
	if c.Exchange.Retry.MinDelay > c.Exchange.Retry.MaxDelay {
		err = multierr.Append(err, errors.New("exchange.retry.min_delay 不能大于 max_delay"))
	}
	if c.Risk.PositionFraction <= 0 || c.Risk.PositionFraction > 1 {
		err = multierr.Append(err, errors.New("risk.position_fraction 必须位于(0,1]"))
	}
	if c.Risk.MinTradeNotional < 0 {
		err = multierr.Append(err, errors.New("risk.min_trade_notional 不能为负"))
	}
	if c.Risk.MaxTradesPerDay <= 0 {
		err = multierr.Append(err, errors.New("risk.max_trades_per_day 必须大于0"))
	}
	if c.Risk.MaxDailySpend <= 0 {
		err = multierr.Append(err, errors.New("risk.max_daily_spend 必须大于0"))
	}
	if c.Database.Path == "" && !c.Database.InMemory {
		err = multierr.Append(err, errors.New("database.path 不能为空"))
	}
	if c.Database.MaxOpenConns <= 0 {
		err = multierr.Append(err, errors.New("database.max_open_conns 必须大于0"))
	}
	if c.Database.MaxIdleConns < 0 {
		err = multierr.Append(err, errors.New("database.max_idle_conns 不能为负"))
	}
	if c.Database.ConnMaxLifetime < 0 {
		err = multierr.Append(err, errors.New("database.conn_max_lifetime 不能为负"))
	}
	if c.Logging.Level == "" {
		err = multierr.Append(err, errors.New("logging.level 不能为空"))
	}
	if c.Logging.Encoding == "" {
		err = multierr.Append(err, errors.New("logging.encoding 不能为空"))
	}
	if len(c.Logging.OutputPaths) == 0 {
		err = multierr.Append(err, errors.New("logging.output_paths 至少包含一个输出目标"))
	}
	if len(c.Logging.ErrorOutputPaths) == 0 {
		err = multierr.Append(err, errors.New("logging.error_output_paths 至少包含一个输出目标"))
	}
	if c.Scheduler.LoopInterval <= 0 {
		err = multierr.Append(err, errors.New("scheduler.loop_interval 必须大于0"))
	}
	if c.Scheduler.ErrorBackoff < c.Scheduler.LoopInterval {
		err = multierr.Append(err, errors.New("scheduler.error_backoff 不应小于 loop_interval"))
	}
	if c.Audit.Path == "" {
		err = multierr.Append(err, errors.New("audit.path 不能为空"))
	}

	if err != nil {
		return fmt.Errorf("配置校验失败: %w", err)
	}

	return nil
}
