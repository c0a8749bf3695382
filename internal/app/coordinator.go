package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"okx-trader/internal/audit"
	"okx-trader/internal/config"
	"okx-trader/internal/exchange"
	"okx-trader/internal/execution"
	"okx-trader/internal/risk"
	"okx-trader/internal/store"
	"okx-trader/internal/strategy"
)

// Outcome 描述一次评估周期的结束状态。
type Outcome string

const (
	// OutcomeSkipped 表示本周期未产生订单（无信号、粉尘单、余额不足或限额拒绝）。
	OutcomeSkipped Outcome = "skipped"
	// OutcomeExecuted 表示订单已成交（真实或模拟）。
	OutcomeExecuted Outcome = "executed"
	// OutcomeFailed 表示订单通过审批但执行失败，日度额度不受影响。
	OutcomeFailed Outcome = "failed"
)

// CycleResult 汇总一次评估周期的结果。
type CycleResult struct {
	Outcome Outcome
	Reason  string
	Intent  *execution.TradeIntent
	Fill    *execution.Fill
}

type marketSource interface {
	GetSnapshot(ctx context.Context, req exchange.SnapshotRequest) (exchange.MarketSnapshot, error)
}

type balanceSource interface {
	FetchQuoteBalance(ctx context.Context) (float64, error)
}

type auditSink interface {
	Append(record audit.Record) error
}

type tradeRecorder interface {
	Record(ctx context.Context, trade store.Trade) error
}

// Coordinator 串联一次评估周期：拉取快照与余额、向策略要信号、
// 交给风控测算与审批，最后把交易意图交给执行层。风控状态由协调器
// 独占持有，计数只在成交确认后累加，执行失败不消耗日度额度。
type Coordinator struct {
	trading   config.TradingConfig
	strat     strategy.Strategy
	limiter   *risk.Limiter
	riskState *risk.State
	market    marketSource
	balance   balanceSource
	trader    execution.Trader
	audit     auditSink
	history   tradeRecorder
	logger    *zap.Logger
	now       func() time.Time
}

// NewCoordinator 创建决策协调器。history 可为 nil，此时不落库。
func NewCoordinator(
	trading config.TradingConfig,
	strat strategy.Strategy,
	limiter *risk.Limiter,
	market marketSource,
	balance balanceSource,
	trader execution.Trader,
	auditLog auditSink,
	history tradeRecorder,
	logger *zap.Logger,
) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	now := func() time.Time { return time.Now().UTC() }
	return &Coordinator{
		trading:   trading,
		strat:     strat,
		limiter:   limiter,
		riskState: risk.NewState(now()),
		market:    market,
		balance:   balance,
		trader:    trader,
		audit:     auditLog,
		history:   history,
		logger:    logger,
		now:       now,
	}
}

// RiskState 暴露当前日度风控计数，仅用于观测。
func (c *Coordinator) RiskState() risk.State {
	return *c.riskState
}

// RunCycle 执行一次完整的评估周期。返回错误仅代表行情或余额数据
// 不可用，上层应以较长的退避间隔重试；其余情况都以 Skipped 结束。
func (c *Coordinator) RunCycle(ctx context.Context) (CycleResult, error) {
	c.limiter.RollDay(c.riskState, c.now())

	quoteBalance, err := c.balance.FetchQuoteBalance(ctx)
	if err != nil {
		return CycleResult{}, fmt.Errorf("获取可用余额失败: %w", err)
	}

	snapshot, err := c.market.GetSnapshot(ctx, exchange.DefaultSnapshotRequest(c.trading.CandleLimit))
	if err != nil {
		return CycleResult{}, fmt.Errorf("拉取市场数据失败: %w", err)
	}

	signal := c.strat.GenerateSignal(snapshot)
	if !signal.IsActionable() {
		return CycleResult{Outcome: OutcomeSkipped, Reason: "no_signal"}, nil
	}

	amount := c.limiter.SizeTrade(signal.TargetPrice, quoteBalance)
	if amount <= 0 {
		return CycleResult{Outcome: OutcomeSkipped, Reason: "below_min_notional"}, nil
	}

	quoteCost := amount * signal.TargetPrice

	if signal.Action == strategy.ActionBuy {
		if quoteBalance < quoteCost {
			c.logger.Warn("计价货币余额不足，跳过买入",
				zap.Float64("balance", quoteBalance),
				zap.Float64("quote_cost", quoteCost),
			)
			return CycleResult{Outcome: OutcomeSkipped, Reason: "insufficient_funds"}, nil
		}
		if !c.limiter.Approve(c.riskState, signal.Action, quoteCost) {
			return CycleResult{Outcome: OutcomeSkipped, Reason: "limit_rejected"}, nil
		}
	}

	intent := execution.TradeIntent{
		Pair:      c.trading.Pair,
		Action:    signal.Action,
		Amount:    amount,
		Price:     signal.TargetPrice,
		QuoteCost: quoteCost,
	}

	fill, execErr := c.trader.Execute(ctx, intent)
	if execErr != nil {
		c.logger.Error("交易执行失败，日度额度不变",
			zap.String("pair", intent.Pair),
			zap.String("side", string(intent.Action)),
			zap.Float64("amount", intent.Amount),
			zap.Float64("price", intent.Price),
			zap.Error(execErr),
		)
		return CycleResult{Outcome: OutcomeFailed, Reason: "execution_failed", Intent: &intent}, nil
	}

	c.limiter.ApplyFill(c.riskState, signal.Action, quoteCost)
	c.strat.UpdateState(strategy.FillEvent{
		Action: signal.Action,
		Amount: amount,
		Price:  signal.TargetPrice,
	})

	c.recordFill(ctx, intent, fill)

	c.logger.Info("交易周期完成",
		zap.String("pair", intent.Pair),
		zap.String("side", string(intent.Action)),
		zap.Float64("amount", intent.Amount),
		zap.Float64("price", intent.Price),
		zap.Bool("simulated", fill.Simulated),
		zap.Int("trade_count_today", c.riskState.TradeCountToday),
		zap.Float64("spent_today", c.riskState.SpentToday),
	)

	return CycleResult{Outcome: OutcomeExecuted, Intent: &intent, Fill: &fill}, nil
}

// recordFill 写审计日志与成交历史。记录失败只告警，不影响周期结果。
func (c *Coordinator) recordFill(ctx context.Context, intent execution.TradeIntent, fill execution.Fill) {
	mode := store.ModeLive
	notes := fmt.Sprintf("Live order ID: %s", fill.OrderID)
	if fill.Simulated {
		mode = store.ModeDryRun
		notes = store.ModeDryRun
	}

	if c.audit != nil {
		if err := c.audit.Append(audit.Record{
			Timestamp: fill.ExecutedAt,
			Action:    string(intent.Action),
			Amount:    intent.Amount,
			Price:     intent.Price,
			Notes:     notes,
		}); err != nil {
			c.logger.Error("写入审计日志失败", zap.Error(err))
		}
	}

	if c.history != nil {
		if err := c.history.Record(ctx, store.Trade{
			ExecutedAt: fill.ExecutedAt,
			Pair:       intent.Pair,
			Action:     string(intent.Action),
			Amount:     intent.Amount,
			Price:      intent.Price,
			QuoteCost:  intent.QuoteCost,
			Mode:       mode,
			OrderID:    fill.OrderID,
		}); err != nil {
			c.logger.Error("写入成交历史失败", zap.Error(err))
		}
	}
}
