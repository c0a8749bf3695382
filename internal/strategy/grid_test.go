package strategy

import (
	"testing"
	"time"

	"okx-trader/internal/exchange"
)

func snapshotWithCloses(primary []float64, trend []float64) exchange.MarketSnapshot {
	candles := make(map[string][]exchange.Candle)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	build := func(closes []float64, step time.Duration) []exchange.Candle {
		out := make([]exchange.Candle, 0, len(closes))
		for i, c := range closes {
			out = append(out, exchange.Candle{
				Timestamp: base.Add(time.Duration(i) * step),
				Open:      c,
				High:      c,
				Low:       c,
				Close:     c,
				Volume:    1,
			})
		}
		return out
	}

	if primary != nil {
		candles[exchange.TimeframePrimary] = build(primary, time.Hour)
	}
	if trend != nil {
		candles[exchange.TimeframeTrend] = build(trend, 4*time.Hour)
	}

	return exchange.MarketSnapshot{
		Pair:        "BTC/USDT",
		Candles:     candles,
		RetrievedAt: time.Now().UTC(),
	}
}

func TestGridAnchorsOnFirstCall(t *testing.T) {
	grid := NewGrid(1.5, nil)

	signal := grid.GenerateSignal(snapshotWithCloses([]float64{100}, nil))
	if signal.Action != ActionNone {
		t.Fatalf("expected no action on anchor call, got %s", signal.Action)
	}

	base, ok := grid.BasePrice()
	if !ok {
		t.Fatalf("expected base price anchored")
	}
	if base != 100 {
		t.Errorf("expected base price 100, got %f", base)
	}
}

func TestGridBandBoundaries(t *testing.T) {
	tests := []struct {
		name       string
		close      float64
		wantAction Action
	}{
		{"below lower band", 98.49, ActionBuy},
		{"above upper band", 101.51, ActionSell},
		{"inside band", 100.5, ActionNone},
		{"just inside lower band", 98.6, ActionNone},
		{"just inside upper band", 101.4, ActionNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			grid := NewGrid(1.5, nil)
			grid.GenerateSignal(snapshotWithCloses([]float64{100}, nil))

			signal := grid.GenerateSignal(snapshotWithCloses([]float64{tt.close}, nil))
			if signal.Action != tt.wantAction {
				t.Fatalf("close %f: expected action %q, got %q", tt.close, tt.wantAction, signal.Action)
			}

			if tt.wantAction == ActionNone {
				if base, _ := grid.BasePrice(); base != 100 {
					t.Errorf("expected base price unchanged at 100, got %f", base)
				}
				return
			}

			if signal.TargetPrice != tt.close {
				t.Errorf("expected target price %f, got %f", tt.close, signal.TargetPrice)
			}
			if base, _ := grid.BasePrice(); base != tt.close {
				t.Errorf("expected base price re-anchored to %f, got %f", tt.close, base)
			}
		})
	}
}

func TestGridRecentersAfterTrigger(t *testing.T) {
	grid := NewGrid(1.5, nil)
	grid.GenerateSignal(snapshotWithCloses([]float64{100}, nil))

	signal := grid.GenerateSignal(snapshotWithCloses([]float64{98}, nil))
	if signal.Action != ActionBuy {
		t.Fatalf("expected buy, got %s", signal.Action)
	}

	// 再下跌不足新带宽时不应重复触发。
	signal = grid.GenerateSignal(snapshotWithCloses([]float64{97.5}, nil))
	if signal.Action != ActionNone {
		t.Fatalf("expected no action inside recentered band, got %s", signal.Action)
	}

	signal = grid.GenerateSignal(snapshotWithCloses([]float64{96}, nil))
	if signal.Action != ActionBuy {
		t.Fatalf("expected buy after breaking recentered band, got %s", signal.Action)
	}
}

func TestGridEmptySeriesKeepsState(t *testing.T) {
	grid := NewGrid(1.5, nil)
	grid.GenerateSignal(snapshotWithCloses([]float64{100}, nil))

	signal := grid.GenerateSignal(snapshotWithCloses(nil, nil))
	if signal.Action != ActionNone {
		t.Fatalf("expected no action on missing series, got %s", signal.Action)
	}
	if base, ok := grid.BasePrice(); !ok || base != 100 {
		t.Errorf("expected base price untouched at 100, got %f (anchored=%v)", base, ok)
	}
}
