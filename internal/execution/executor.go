package execution

import (
	"context"
	"errors"
	"fmt"
	"time"

	ccxt "github.com/ccxt/ccxt/go/v4"
	"go.uber.org/zap"

	"okx-trader/internal/exchange"
	"okx-trader/internal/strategy"
)

type orderClient interface {
	CreateMarketOrder(symbol string, side string, amount float64, options ...ccxt.CreateMarketOrderOptions) (ccxt.Order, error)
}

// Executor 将交易意图提交为真实的市价单。
type Executor struct {
	client   orderClient
	logger   *zap.Logger
	maxRetry int
}

// NewExecutor 创建真实执行器。
func NewExecutor(client orderClient, logger *zap.Logger) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{
		client:   client,
		logger:   logger,
		maxRetry: 3,
	}
}

// Execute 提交市价单并在可重试错误时退避重试。
func (e *Executor) Execute(ctx context.Context, intent TradeIntent) (Fill, error) {
	if intent.Action != strategy.ActionBuy && intent.Action != strategy.ActionSell {
		return Fill{}, fmt.Errorf("execution: 不支持的交易方向 %q", intent.Action)
	}
	if intent.Amount <= 0 {
		return Fill{}, fmt.Errorf("execution: 下单数量无效 amount=%.6f", intent.Amount)
	}

	var (
		order ccxt.Order
		err   error
	)

	for attempt := 1; attempt <= e.maxRetry; attempt++ {
		order, err = e.client.CreateMarketOrder(intent.Pair, string(intent.Action), intent.Amount)
		if err == nil {
			orderID := ""
			if order.Id != nil {
				orderID = *order.Id
			}

			e.logger.Info("市价单已提交",
				zap.String("pair", intent.Pair),
				zap.String("side", string(intent.Action)),
				zap.Float64("amount", intent.Amount),
				zap.String("order_id", orderID),
			)

			return Fill{
				OrderID:    orderID,
				Simulated:  false,
				ExecutedAt: time.Now().UTC(),
			}, nil
		}

		if !exchange.IsRetryable(err) {
			return Fill{}, fmt.Errorf("execution: 下单失败: %w", err)
		}

		wait := time.Duration(attempt) * time.Second
		e.logger.Warn("下单失败，准备重试",
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
			zap.Error(err),
		)

		select {
		case <-ctx.Done():
			return Fill{}, ctx.Err()
		case <-time.After(wait):
		}
	}

	if err == nil {
		err = errors.New("unknown failure")
	}
	return Fill{}, fmt.Errorf("execution: 重试后仍下单失败: %w", err)
}
