package strategy

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"okx-trader/internal/config"
	"okx-trader/internal/exchange"
)

// Strategy 抽象信号生成单元。实现必须容忍缺失或过短的K线序列，
// 无法计算时返回观望信号而不是错误。
type Strategy interface {
	// GenerateSignal 基于市场快照产生交易信号。
	GenerateSignal(snapshot exchange.MarketSnapshot) Signal
	// UpdateState 在成交确认后回调，供策略学习已执行的订单。
	UpdateState(fill FillEvent)
}

// New 根据配置选择策略实现。策略集合是封闭的，新增策略需要同时
// 扩展这里的分支，不支持运行时注册。
func New(cfg config.TradingConfig, logger *zap.Logger) (Strategy, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Strategy)) {
	case config.StrategyGrid:
		return NewGrid(cfg.BaseGridSize, logger), nil
	case config.StrategyRSITrend:
		return NewRSITrend(logger), nil
	default:
		return nil, fmt.Errorf("strategy: 未知策略 %q", cfg.Strategy)
	}
}
