package execution

import (
	"time"

	"okx-trader/internal/strategy"
)

// TradeIntent 描述一笔通过风控的待执行订单。只允许由协调器在
// 信号、仓位、限额全部通过后构造。
type TradeIntent struct {
	Pair      string
	Action    strategy.Action
	Amount    float64
	Price     float64
	QuoteCost float64
	Note      string
}

// Fill 为执行结果。模拟模式下同样返回成交形态的结果，保证协调器
// 的成交后流程在两种模式下一致。
type Fill struct {
	OrderID    string
	Simulated  bool
	ExecutedAt time.Time
}
