package indicator

import (
	"math"
	"testing"
)

func TestLatestSMA(t *testing.T) {
	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = float64(i + 1)
	}

	sma, ok := LatestSMA(closes, 20)
	if !ok {
		t.Fatalf("expected sma computed")
	}
	// 1..20 的均值为 10.5。
	if math.Abs(sma-10.5) > 1e-9 {
		t.Errorf("expected sma 10.5, got %f", sma)
	}

	if _, ok := LatestSMA(closes[:19], 20); ok {
		t.Errorf("expected failure with 19 samples for window 20")
	}
}

func TestLatestRSIBounds(t *testing.T) {
	up := make([]float64, 30)
	for i := range up {
		up[i] = 100 + float64(i)
	}
	rsi, ok := LatestRSI(up, RSIPeriod)
	if !ok {
		t.Fatalf("expected rsi computed")
	}
	if rsi < 99 {
		t.Errorf("expected rsi near 100 for monotonic gains, got %f", rsi)
	}

	down := make([]float64, 30)
	for i := range down {
		down[i] = 200 - float64(i)
	}
	rsi, ok = LatestRSI(down, RSIPeriod)
	if !ok {
		t.Fatalf("expected rsi computed")
	}
	if rsi > 1 {
		t.Errorf("expected rsi near 0 for monotonic losses, got %f", rsi)
	}

	if _, ok := LatestRSI(down[:RSIPeriod], RSIPeriod); ok {
		t.Errorf("expected failure with insufficient samples")
	}
}

func TestCloses(t *testing.T) {
	if Closes(nil) != nil {
		t.Errorf("expected nil for empty input")
	}
}
