package exchange

import "time"

const (
	// TimeframePrimary 为主决策周期。
	TimeframePrimary = "1h"
	// TimeframeTrend 为趋势过滤周期。
	TimeframeTrend = "4h"
)

// Candle 代表单根K线。
type Candle struct {
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}

// MarketSnapshot 按时间框架聚合K线数据，构造后视为只读。
type MarketSnapshot struct {
	Pair        string
	Candles     map[string][]Candle
	RetrievedAt time.Time
}

// Series 返回指定时间框架的K线序列，缺失时返回 nil。
func (s MarketSnapshot) Series(timeframe string) []Candle {
	if s.Candles == nil {
		return nil
	}
	return s.Candles[timeframe]
}

// LatestClose 返回指定时间框架最新收盘价，序列为空时 ok 为 false。
func (s MarketSnapshot) LatestClose(timeframe string) (float64, bool) {
	series := s.Series(timeframe)
	if len(series) == 0 {
		return 0, false
	}
	return series[len(series)-1].Close, true
}

// SnapshotRequest 控制一次快照采集的参数，键为时间框架，值为K线条数。
type SnapshotRequest map[string]int

// DefaultSnapshotRequest 返回默认快照参数。
func DefaultSnapshotRequest(limit int) SnapshotRequest {
	if limit <= 0 {
		limit = 100
	}
	return SnapshotRequest{
		TimeframePrimary: limit,
		TimeframeTrend:   limit,
	}
}
