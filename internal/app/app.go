package app

import (
	"context"
	"errors"
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

// App 聚合核心依赖并驱动系统生命周期。
type App struct {
	cfg    *config.Config
	logger *zap.Logger
	store  *store.Store
}

// New 创建 App 实例。
func New(cfg *config.Config, logger *zap.Logger, store *store.Store) *App {
	return &App{
		cfg:    cfg,
		logger: logger,
		store:  store,
	}
}

func (a *App) buildCoordinator() (*Coordinator, error) {
	client, err := exchange.NewClient(a.cfg.Exchange, a.cfg.Trading, a.logger)
	if err != nil {
		return nil, fmt.Errorf("初始化交易所客户端失败: %w", err)
	}

	marketSvc := exchange.NewMarketDataService(client, a.logger)

	strat, err := strategy.New(a.cfg.Trading, a.logger)
	if err != nil {
		return nil, fmt.Errorf("初始化策略失败: %w", err)
	}

	limiter := risk.NewLimiter(a.cfg.Risk, a.logger)

	var trader execution.Trader
	if a.cfg.Trading.LiveTrading {
		trader = execution.NewExecutor(client, a.logger)
	} else {
		a.logger.Info("执行器处于干跑模式", zap.String("pair", a.cfg.Trading.Pair))
		trader = execution.NewSimulatedExecutor(a.logger)
	}

	auditLog, err := audit.NewLogger(a.cfg.Audit.Path, a.logger)
	if err != nil {
		return nil, fmt.Errorf("初始化审计日志失败: %w", err)
	}

	history, err := store.NewTradeHistory(a.store)
	if err != nil {
		return nil, fmt.Errorf("初始化成交历史失败: %w", err)
	}

	return NewCoordinator(
		a.cfg.Trading,
		strat,
		limiter,
		marketSvc,
		client,
		trader,
		auditLog,
		history,
		a.logger,
	), nil
}

// Run 以固定间隔驱动评估周期，数据不可用时以更长的退避间隔重试。
// 取消只在周期之间生效，进行中的周期会运行到自身结束。
func (a *App) Run(ctx context.Context) error {
	mode := "干跑"
	if a.cfg.Trading.LiveTrading {
		mode = "实盘"
	}
	a.logger.Info("交易系统已初始化",
		zap.String("pair", a.cfg.Trading.Pair),
		zap.String("strategy", a.cfg.Trading.Strategy),
		zap.String("mode", mode),
	)

	coordinator, err := a.buildCoordinator()
	if err != nil {
		return err
	}

	loopInterval := a.cfg.Scheduler.LoopInterval
	if loopInterval <= 0 {
		loopInterval = time.Minute
	}
	errorBackoff := a.cfg.Scheduler.ErrorBackoff
	if errorBackoff < loopInterval {
		errorBackoff = loopInterval
	}

	wait := a.tick(ctx, coordinator, loopInterval, errorBackoff)

	timer := time.NewTimer(wait)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			if err := ctx.Err(); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("系统异常退出: %w", err)
			}
			a.logger.Info("系统收到退出信号，正在停止")
			return nil
		case <-timer.C:
			wait = a.tick(ctx, coordinator, loopInterval, errorBackoff)
			timer.Reset(wait)
		}
	}
}

// tick 执行一次评估周期并返回距下次评估的等待时长。
func (a *App) tick(ctx context.Context, coordinator *Coordinator, loopInterval, errorBackoff time.Duration) time.Duration {
	result, err := coordinator.RunCycle(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return loopInterval
		}
		a.logger.Error("评估周期失败，延长等待后重试",
			zap.Duration("backoff", errorBackoff),
			zap.Error(err),
		)
		return errorBackoff
	}

	if result.Outcome == OutcomeSkipped {
		a.logger.Debug("本周期未产生交易", zap.String("reason", result.Reason))
	}

	return loopInterval
}
