package aggregator

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/ninja0404/sol-sniper/internal/model"
	"github.com/ninja0404/sol-sniper/pkg/logger"
)

// 价格合并优先级，排在前面的数据源优先
var priceMergeOrder = []string{dexscreenerName, birdeyeName, jupiterName}

// Aggregator 行情聚合器：并发查询多个数据源并按优先级合并
type Aggregator interface {
	// FetchTokenData 拉取并合并代币行情，全部数据源失败时返回nil和聚合错误
	FetchTokenData(ctx context.Context, tokenAddress string) (*model.TokenData, error)
}

type aggregator struct {
	providers []Provider
	timeout   time.Duration
	logger    *logger.Logger
}

// NewAggregator 创建行情聚合器，timeout作用于每个数据源的单次请求
func NewAggregator(providers []Provider, timeout time.Duration) Aggregator {
	return &aggregator{
		providers: providers,
		timeout:   timeout,
		logger:    logger.Default().Named("aggregator"),
	}
}

type fetchResult struct {
	name    string
	reading *model.MarketReading
	err     error
}

func (a *aggregator) FetchTokenData(ctx context.Context, tokenAddress string) (*model.TokenData, error) {
	if len(a.providers) == 0 {
		return nil, errors.New("no providers configured")
	}

	// 各数据源并发拉取，单源失败不影响其它源
	results := make([]fetchResult, len(a.providers))
	var wg sync.WaitGroup
	for i, p := range a.providers {
		wg.Add(1)
		go func(idx int, p Provider) {
			defer wg.Done()

			fetchCtx, cancel := context.WithTimeout(ctx, a.timeout)
			defer cancel()

			reading, err := p.Fetch(fetchCtx, tokenAddress)
			results[idx] = fetchResult{name: p.Name(), reading: reading, err: err}
		}(i, p)
	}
	wg.Wait()

	readings := make(map[string]*model.MarketReading, len(results))
	var merr *multierror.Error
	for _, res := range results {
		if res.err != nil {
			merr = multierror.Append(merr, res.err)
			a.logger.Debug("行情源拉取失败",
				logger.String("provider", res.name),
				logger.String("token", tokenAddress),
				logger.FieldErr(res.err))
			continue
		}
		readings[res.name] = res.reading
	}

	// 全部失败才算失败
	if len(readings) == 0 {
		return nil, errors.Wrapf(merr.ErrorOrNil(), "all providers failed for %s", tokenAddress)
	}

	return mergeReadings(tokenAddress, readings), nil
}

// mergeReadings 按优先级合并各源数据：价格按源优先级取第一个有效值，
// 其余字段取优先级最高的非零值
func mergeReadings(tokenAddress string, readings map[string]*model.MarketReading) *model.TokenData {
	data := &model.TokenData{
		TokenAddress: tokenAddress,
		UpdatedAt:    time.Now(),
	}

	for _, name := range priceMergeOrder {
		r, ok := readings[name]
		if !ok {
			continue
		}
		data.Sources = append(data.Sources, name)

		if data.PriceUsd.IsZero() && r.PriceUsd.IsPositive() {
			data.PriceUsd = r.PriceUsd
			data.PriceSource = name
		}
		if data.Volume24h.IsZero() && r.Volume24h.IsPositive() {
			data.Volume24h = r.Volume24h
		}
		if data.MarketCap.IsZero() && r.MarketCap.IsPositive() {
			data.MarketCap = r.MarketCap
		}
		if data.Liquidity.IsZero() && r.Liquidity.IsPositive() {
			data.Liquidity = r.Liquidity
		}
		if data.PriceChange24h.IsZero() && !r.PriceChange24h.IsZero() {
			data.PriceChange24h = r.PriceChange24h
		}
		if data.Symbol == "" && r.Symbol != "" {
			data.Symbol = r.Symbol
		}
		if data.Name == "" && r.Name != "" {
			data.Name = r.Name
		}
	}

	return data
}
