package strategy

import (
	"go.uber.org/zap"

	"okx-trader/internal/exchange"
	"okx-trader/internal/indicator"
)

// 超买超卖阈值与挂单价偏移。
const (
	rsiOversold   = 30.0
	rsiOverbought = 70.0
	buyDiscount   = 0.99
	sellPremium   = 1.01
)

// RSITrend 在主周期上计算 RSI 超买超卖，并用趋势周期的均线过滤买入。
// 买入要求趋势向上，卖出不做趋势过滤，离场不受趋势限制。策略本身
// 无状态，重复满足条件的快照会在每个周期重复触发，节流完全交给风控。
type RSITrend struct {
	logger *zap.Logger
}

// NewRSITrend 创建指标过滤策略。
func NewRSITrend(logger *zap.Logger) *RSITrend {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RSITrend{logger: logger}
}

// GenerateSignal 结合主周期 RSI 与趋势周期 SMA 给出信号。
func (r *RSITrend) GenerateSignal(snapshot exchange.MarketSnapshot) Signal {
	primaryCloses := indicator.Closes(snapshot.Series(exchange.TimeframePrimary))
	trendCloses := indicator.Closes(snapshot.Series(exchange.TimeframeTrend))

	rsi, ok := indicator.LatestRSI(primaryCloses, indicator.RSIPeriod)
	if !ok {
		r.logger.Warn("主周期K线不足以计算RSI，策略观望",
			zap.String("pair", snapshot.Pair),
			zap.Int("primary_count", len(primaryCloses)),
		)
		return None()
	}

	price := indicator.Last(primaryCloses)
	if !indicator.Valid(price) || price <= 0 {
		return None()
	}

	sma, ok := indicator.LatestSMA(trendCloses, indicator.SMAPeriod)
	if !ok {
		r.logger.Warn("趋势周期K线不足以计算均线，策略观望",
			zap.String("pair", snapshot.Pair),
			zap.Int("trend_count", len(trendCloses)),
		)
		return None()
	}

	trendClose := indicator.Last(trendCloses)
	uptrend := indicator.Valid(trendClose) && trendClose > sma

	switch {
	case rsi < rsiOversold && uptrend:
		return Signal{Action: ActionBuy, TargetPrice: price * buyDiscount}
	case rsi > rsiOverbought:
		return Signal{Action: ActionSell, TargetPrice: price * sellPremium}
	default:
		return None()
	}
}

// UpdateState 无状态策略不记忆历史成交。
func (r *RSITrend) UpdateState(fill FillEvent) {}
