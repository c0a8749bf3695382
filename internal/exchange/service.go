package exchange

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// MarketDataService 聚合多时间框架K线数据获取。
type MarketDataService struct {
	client *Client
	logger *zap.Logger
}

// NewMarketDataService 创建市场数据服务。
func NewMarketDataService(client *Client, logger *zap.Logger) *MarketDataService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MarketDataService{
		client: client,
		logger: logger,
	}
}

// GetSnapshot 并发拉取请求中每个时间框架的K线，组装为市场数据快照。
func (s *MarketDataService) GetSnapshot(ctx context.Context, req SnapshotRequest) (MarketSnapshot, error) {
	if len(req) == 0 {
		req = DefaultSnapshotRequest(0)
	}

	var mu sync.Mutex
	candles := make(map[string][]Candle, len(req))

	group, groupCtx := errgroup.WithContext(ctx)

	for timeframe, limit := range req {
		group.Go(func() error {
			data, err := s.client.FetchCandles(groupCtx, timeframe, int64(limit))
			if err != nil {
				return err
			}
			mu.Lock()
			candles[timeframe] = data
			mu.Unlock()
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return MarketSnapshot{}, err
	}

	snapshot := MarketSnapshot{
		Pair:        s.client.Pair(),
		Candles:     candles,
		RetrievedAt: time.Now().UTC(),
	}

	s.logger.Debug("市场数据快照获取完成",
		zap.String("pair", snapshot.Pair),
		zap.Time("retrieved_at", snapshot.RetrievedAt),
		zap.Int("timeframes", len(snapshot.Candles)),
		zap.Int("primary_count", len(snapshot.Series(TimeframePrimary))),
		zap.Int("trend_count", len(snapshot.Series(TimeframeTrend))),
	)

	return snapshot, nil
}
