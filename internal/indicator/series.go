package indicator

import (
	"math"

	"okx-trader/internal/exchange"
)

// Closes 提取K线收盘价序列，保持时间升序。
func Closes(candles []exchange.Candle) []float64 {
	if len(candles) == 0 {
		return nil
	}
	closes := make([]float64, len(candles))
	for i, candle := range candles {
		closes[i] = candle.Close
	}
	return closes
}

// Last 返回序列最后一个值，若为空则返回 NaN。
func Last(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	return values[len(values)-1]
}

// Valid 判断值是否为有效数字。
func Valid(value float64) bool {
	return !math.IsNaN(value) && !math.IsInf(value, 0)
}
