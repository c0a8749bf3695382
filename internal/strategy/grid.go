package strategy

import (
	"go.uber.org/zap"

	"okx-trader/internal/exchange"
)

// Grid 实现自适应价格带策略：以基准价为中心维护上下边界，收盘价
// 触及边界即发出信号并把基准价重置到触发价，价格带随成交持续再居中，
// 同方向连续触发之间至少需要一次带宽幅度的价格回撤。
type Grid struct {
	gridSize  float64
	basePrice float64
	anchored  bool
	logger    *zap.Logger
}

// NewGrid 创建价格带策略，gridSize 为带宽百分比。
func NewGrid(gridSize float64, logger *zap.Logger) *Grid {
	if gridSize <= 0 {
		gridSize = 1.5
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Grid{
		gridSize: gridSize,
		logger:   logger,
	}
}

// BasePrice 返回当前基准价，未锚定时 ok 为 false。
func (g *Grid) BasePrice() (float64, bool) {
	return g.basePrice, g.anchored
}

// GenerateSignal 依据最新主周期收盘价判断是否越界。
func (g *Grid) GenerateSignal(snapshot exchange.MarketSnapshot) Signal {
	currentPrice, ok := snapshot.LatestClose(exchange.TimeframePrimary)
	if !ok || currentPrice <= 0 {
		g.logger.Warn("主周期K线缺失，价格带策略观望", zap.String("pair", snapshot.Pair))
		return None()
	}

	if !g.anchored {
		g.basePrice = currentPrice
		g.anchored = true
		g.logger.Info("价格带基准价已锚定",
			zap.String("pair", snapshot.Pair),
			zap.Float64("base_price", g.basePrice),
		)
	}

	upper := g.basePrice * (1 + g.gridSize/100)
	lower := g.basePrice * (1 - g.gridSize/100)

	switch {
	case currentPrice <= lower:
		g.basePrice = currentPrice
		return Signal{Action: ActionBuy, TargetPrice: currentPrice}
	case currentPrice >= upper:
		g.basePrice = currentPrice
		return Signal{Action: ActionSell, TargetPrice: currentPrice}
	default:
		return None()
	}
}

// UpdateState 目前无需额外学习，基准价已在信号产生时更新。
func (g *Grid) UpdateState(fill FillEvent) {}
