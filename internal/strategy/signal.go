package strategy

// Action 表示策略给出的交易方向。
type Action string

const (
	ActionNone Action = ""
	ActionBuy  Action = "buy"
	ActionSell Action = "sell"
)

// Signal 为一次信号评估的结果，TargetPrice 以计价货币表示。
type Signal struct {
	Action      Action
	TargetPrice float64
}

// None 返回观望信号。
func None() Signal {
	return Signal{Action: ActionNone}
}

// IsActionable 判断信号是否需要进入风控与执行流程。
func (s Signal) IsActionable() bool {
	return (s.Action == ActionBuy || s.Action == ActionSell) && s.TargetPrice > 0
}

// FillEvent 描述一笔已确认成交，供策略更新内部状态使用。
type FillEvent struct {
	Action Action
	Amount float64
	Price  float64
}
