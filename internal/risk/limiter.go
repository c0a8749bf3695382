package risk

import (
	"math"
	"time"

	"go.uber.org/zap"

	"okx-trader/internal/config"
	"okx-trader/internal/strategy"
)

const dayLayout = "2006-01-02"

// State 保存日度风控计数。实例由协调器独占持有并显式传入各操作，
// 不做任何跨进程持久化，重启即清零。
type State struct {
	TradeCountToday int
	SpentToday      float64
	CurrentDay      string
}

// NewState 以给定时间所在日历日初始化计数。
func NewState(now time.Time) *State {
	return &State{CurrentDay: now.Format(dayLayout)}
}

// Limiter 执行仓位测算与日度限额检查，自身不持有可变状态。
type Limiter struct {
	cfg    config.RiskConfig
	logger *zap.Logger
}

// NewLimiter 创建风控检查器。
func NewLimiter(cfg config.RiskConfig, logger *zap.Logger) *Limiter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Limiter{cfg: cfg, logger: logger}
}

// RollDay 在日历日切换时重置计数，同一天内重复调用无副作用。
func (l *Limiter) RollDay(state *State, now time.Time) {
	today := now.Format(dayLayout)
	if state.CurrentDay == today {
		return
	}

	state.CurrentDay = today
	state.TradeCountToday = 0
	state.SpentToday = 0

	l.logger.Info("日度限额已重置", zap.String("day", today))
}

// SizeTrade 按可用余额的固定比例测算下单数量（基础货币，6位小数）。
// 计价金额低于最小下单金额时返回 0，恰好等于阈值时放行。
func (l *Limiter) SizeTrade(price, availableQuote float64) float64 {
	if price <= 0 || availableQuote <= 0 {
		return 0
	}

	notional := availableQuote * l.cfg.PositionFraction
	if notional < l.cfg.MinTradeNotional {
		l.logger.Warn("下单金额低于最小阈值，跳过",
			zap.Float64("notional", notional),
			zap.Float64("min_notional", l.cfg.MinTradeNotional),
		)
		return 0
	}

	return math.Round(notional/price*1e6) / 1e6
}

// Approve 检查日度限额。仅买入受限，卖出永远放行且不占用买入计数。
func (l *Limiter) Approve(state *State, action strategy.Action, quoteCost float64) bool {
	if action != strategy.ActionBuy {
		return true
	}

	if state.TradeCountToday >= l.cfg.MaxTradesPerDay {
		l.logger.Warn("当日交易次数已达上限，跳过买入",
			zap.Int("trade_count", state.TradeCountToday),
			zap.Int("max_trades", l.cfg.MaxTradesPerDay),
		)
		return false
	}

	if state.SpentToday+quoteCost > l.cfg.MaxDailySpend {
		l.logger.Warn("当日支出将超过上限，跳过买入",
			zap.Float64("spent_today", state.SpentToday),
			zap.Float64("quote_cost", quoteCost),
			zap.Float64("max_spend", l.cfg.MaxDailySpend),
		)
		return false
	}

	return true
}

// ApplyFill 在成交确认后累计买入计数。审批通过但执行失败的订单
// 不会走到这里，因此不会消耗日度额度。
func (l *Limiter) ApplyFill(state *State, action strategy.Action, quoteCost float64) {
	if action != strategy.ActionBuy {
		return
	}
	state.TradeCountToday++
	state.SpentToday += quoteCost
}
