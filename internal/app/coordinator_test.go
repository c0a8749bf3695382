package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"okx-trader/internal/audit"
	"okx-trader/internal/config"
	"okx-trader/internal/exchange"
	"okx-trader/internal/execution"
	"okx-trader/internal/risk"
	"okx-trader/internal/store"
	"okx-trader/internal/strategy"
)

type stubStrategy struct {
	signal strategy.Signal
	fills  []strategy.FillEvent
}

func (s *stubStrategy) GenerateSignal(exchange.MarketSnapshot) strategy.Signal {
	return s.signal
}

func (s *stubStrategy) UpdateState(fill strategy.FillEvent) {
	s.fills = append(s.fills, fill)
}

type stubMarket struct {
	snapshot exchange.MarketSnapshot
	err      error
}

func (m *stubMarket) GetSnapshot(context.Context, exchange.SnapshotRequest) (exchange.MarketSnapshot, error) {
	return m.snapshot, m.err
}

type stubBalance struct {
	balance float64
	err     error
}

func (b *stubBalance) FetchQuoteBalance(context.Context) (float64, error) {
	return b.balance, b.err
}

type stubTrader struct {
	fill    execution.Fill
	err     error
	intents []execution.TradeIntent
}

func (t *stubTrader) Execute(_ context.Context, intent execution.TradeIntent) (execution.Fill, error) {
	t.intents = append(t.intents, intent)
	if t.err != nil {
		return execution.Fill{}, t.err
	}
	return t.fill, nil
}

type stubAudit struct {
	records []audit.Record
}

func (a *stubAudit) Append(record audit.Record) error {
	a.records = append(a.records, record)
	return nil
}

type stubHistory struct {
	trades []store.Trade
}

func (h *stubHistory) Record(_ context.Context, trade store.Trade) error {
	h.trades = append(h.trades, trade)
	return nil
}

type fixture struct {
	coordinator *Coordinator
	strat       *stubStrategy
	market      *stubMarket
	balance     *stubBalance
	trader      *stubTrader
	audit       *stubAudit
	history     *stubHistory
}

func newFixture(signal strategy.Signal, balance float64) *fixture {
	trading := config.TradingConfig{
		Pair:        "BTC/USDT",
		Strategy:    config.StrategyGrid,
		CandleLimit: 100,
	}
	riskCfg := config.RiskConfig{
		PositionFraction: 0.05,
		MinTradeNotional: 1.0,
		MaxTradesPerDay:  5,
		MaxDailySpend:    30,
	}

	f := &fixture{
		strat:   &stubStrategy{signal: signal},
		market:  &stubMarket{},
		balance: &stubBalance{balance: balance},
		trader: &stubTrader{fill: execution.Fill{
			OrderID:    "dry-run-1",
			Simulated:  true,
			ExecutedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		}},
		audit:   &stubAudit{},
		history: &stubHistory{},
	}

	f.coordinator = NewCoordinator(
		trading,
		f.strat,
		risk.NewLimiter(riskCfg, nil),
		f.market,
		f.balance,
		f.trader,
		f.audit,
		f.history,
		nil,
	)

	return f
}

func TestRunCycleSkipsWithoutSignal(t *testing.T) {
	f := newFixture(strategy.None(), 1000)

	result, err := f.coordinator.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("RunCycle returned error: %v", err)
	}
	if result.Outcome != OutcomeSkipped || result.Reason != "no_signal" {
		t.Fatalf("expected no_signal skip, got %+v", result)
	}
	if len(f.trader.intents) != 0 {
		t.Errorf("no intent must reach the executor")
	}
	if len(f.audit.records) != 0 {
		t.Errorf("skipped cycles must not be audited")
	}
}

func TestRunCycleReturnsErrorOnDataFailure(t *testing.T) {
	f := newFixture(strategy.Signal{Action: strategy.ActionBuy, TargetPrice: 100}, 1000)
	f.market.err = errors.New("timeout")

	if _, err := f.coordinator.RunCycle(context.Background()); err == nil {
		t.Fatalf("expected error on snapshot failure")
	}

	state := f.coordinator.RiskState()
	if state.TradeCountToday != 0 || state.SpentToday != 0 {
		t.Errorf("failed cycle must not mutate risk state: %+v", state)
	}
}

func TestRunCycleSkipsDustTrades(t *testing.T) {
	// 5% of 19 < 1 USDT 最小下单金额。
	f := newFixture(strategy.Signal{Action: strategy.ActionBuy, TargetPrice: 100}, 19)

	result, err := f.coordinator.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("RunCycle returned error: %v", err)
	}
	if result.Outcome != OutcomeSkipped || result.Reason != "below_min_notional" {
		t.Fatalf("expected dust skip, got %+v", result)
	}
}

func TestRunCycleExecutesBuyAtExactThreshold(t *testing.T) {
	// 余额20，5% = 1.0，恰好等于最小下单金额。
	f := newFixture(strategy.Signal{Action: strategy.ActionBuy, TargetPrice: 100}, 20)

	result, err := f.coordinator.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("RunCycle returned error: %v", err)
	}
	if result.Outcome != OutcomeExecuted {
		t.Fatalf("expected executed, got %+v", result)
	}
	if result.Intent.Amount != 0.01 {
		t.Errorf("expected amount 0.01, got %f", result.Intent.Amount)
	}

	state := f.coordinator.RiskState()
	if state.TradeCountToday != 1 {
		t.Errorf("expected one counted trade, got %d", state.TradeCountToday)
	}
	if diff := state.SpentToday - 1.0; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("expected spent 1.0, got %f", state.SpentToday)
	}
	if len(f.audit.records) != 1 {
		t.Fatalf("expected exactly one audit record, got %d", len(f.audit.records))
	}
	if len(f.history.trades) != 1 {
		t.Fatalf("expected one trade persisted, got %d", len(f.history.trades))
	}
	if f.history.trades[0].Mode != store.ModeDryRun {
		t.Errorf("expected dry_run mode, got %s", f.history.trades[0].Mode)
	}
	if len(f.strat.fills) != 1 {
		t.Errorf("strategy must observe the confirmed fill")
	}
}

func TestRunCycleSkipsSixthBuyOfDay(t *testing.T) {
	f := newFixture(strategy.Signal{Action: strategy.ActionBuy, TargetPrice: 100}, 1000)

	for i := 0; i < 5; i++ {
		result, err := f.coordinator.RunCycle(context.Background())
		if err != nil {
			t.Fatalf("cycle %d returned error: %v", i, err)
		}
		if result.Outcome != OutcomeExecuted {
			t.Fatalf("cycle %d expected executed, got %+v", i, result)
		}
	}

	result, err := f.coordinator.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("sixth cycle returned error: %v", err)
	}
	if result.Outcome != OutcomeSkipped || result.Reason != "limit_rejected" {
		t.Fatalf("expected sixth buy rejected, got %+v", result)
	}
	if len(f.trader.intents) != 5 {
		t.Errorf("expected exactly 5 executed intents, got %d", len(f.trader.intents))
	}
}

func TestRunCycleSellBypassesBuyLimits(t *testing.T) {
	f := newFixture(strategy.Signal{Action: strategy.ActionSell, TargetPrice: 100}, 1000)
	f.coordinator.riskState.TradeCountToday = 5
	f.coordinator.riskState.SpentToday = 30

	result, err := f.coordinator.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("RunCycle returned error: %v", err)
	}
	if result.Outcome != OutcomeExecuted {
		t.Fatalf("expected sell executed despite buy caps, got %+v", result)
	}

	state := f.coordinator.RiskState()
	if state.TradeCountToday != 5 || state.SpentToday != 30 {
		t.Errorf("sell must not consume buy counters: %+v", state)
	}
}

func TestRunCycleExecutionFailureKeepsCounters(t *testing.T) {
	f := newFixture(strategy.Signal{Action: strategy.ActionBuy, TargetPrice: 100}, 1000)
	f.trader.err = errors.New("order rejected")

	result, err := f.coordinator.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("execution failure must end the cycle normally, got error: %v", err)
	}
	if result.Outcome != OutcomeFailed {
		t.Fatalf("expected failed outcome, got %+v", result)
	}

	state := f.coordinator.RiskState()
	if state.TradeCountToday != 0 || state.SpentToday != 0 {
		t.Errorf("failed execution must not consume daily budget: %+v", state)
	}
	if len(f.audit.records) != 0 {
		t.Errorf("failed execution must not produce an audit record")
	}
	if len(f.strat.fills) != 0 {
		t.Errorf("strategy must not observe a failed fill")
	}
}

func TestRunCycleRollsDayLazily(t *testing.T) {
	f := newFixture(strategy.Signal{Action: strategy.ActionBuy, TargetPrice: 100}, 1000)

	current := time.Date(2024, 3, 1, 23, 0, 0, 0, time.UTC)
	f.coordinator.now = func() time.Time { return current }
	f.coordinator.riskState = risk.NewState(current)
	f.coordinator.riskState.TradeCountToday = 5
	f.coordinator.riskState.SpentToday = 30

	result, err := f.coordinator.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("RunCycle returned error: %v", err)
	}
	if result.Outcome != OutcomeSkipped {
		t.Fatalf("expected skip while capped, got %+v", result)
	}

	// 跨过午夜后计数应在周期开始时重置。
	current = current.Add(2 * time.Hour)
	result, err = f.coordinator.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("RunCycle returned error: %v", err)
	}
	if result.Outcome != OutcomeExecuted {
		t.Fatalf("expected executed after day rollover, got %+v", result)
	}
}
