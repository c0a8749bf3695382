package indicator

import (
	talib "github.com/markcheno/go-talib"
)

const (
	// RSIPeriod 为相对强弱指标窗口。
	RSIPeriod = 14
	// SMAPeriod 为趋势均线窗口。
	SMAPeriod = 20
)

// LatestRSI 计算收盘价序列最新的 RSI 值，数据不足时 ok 为 false。
func LatestRSI(closes []float64, period int) (float64, bool) {
	if period <= 0 || len(closes) <= period {
		return 0, false
	}
	value := Last(talib.Rsi(closes, period))
	if !Valid(value) {
		return 0, false
	}
	return value, true
}

// LatestSMA 计算收盘价序列最新的简单移动平均值，数据不足时 ok 为 false。
func LatestSMA(closes []float64, period int) (float64, bool) {
	if period <= 0 || len(closes) < period {
		return 0, false
	}
	value := Last(talib.Sma(closes, period))
	if !Valid(value) {
		return 0, false
	}
	return value, true
}
