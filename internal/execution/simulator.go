package execution

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"okx-trader/internal/strategy"
)

// SimulatedExecutor 在干跑模式下模拟成交，绝不触达真实交易所。
type SimulatedExecutor struct {
	logger *zap.Logger
	seq    atomic.Int64
}

// NewSimulatedExecutor 创建模拟执行器。
func NewSimulatedExecutor(logger *zap.Logger) *SimulatedExecutor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SimulatedExecutor{logger: logger}
}

// Execute 返回成交形态的模拟结果。
func (s *SimulatedExecutor) Execute(ctx context.Context, intent TradeIntent) (Fill, error) {
	if err := ctx.Err(); err != nil {
		return Fill{}, err
	}
	if intent.Action != strategy.ActionBuy && intent.Action != strategy.ActionSell {
		return Fill{}, fmt.Errorf("execution: 不支持的交易方向 %q", intent.Action)
	}

	now := time.Now().UTC()
	orderID := fmt.Sprintf("dry-run-%d-%d", now.Unix(), s.seq.Add(1))

	s.logger.Info("[干跑] 模拟成交",
		zap.String("pair", intent.Pair),
		zap.String("side", string(intent.Action)),
		zap.Float64("amount", intent.Amount),
		zap.Float64("price", intent.Price),
		zap.String("order_id", orderID),
	)

	return Fill{
		OrderID:    orderID,
		Simulated:  true,
		ExecutedAt: now,
	}, nil
}
