package aggregator

import (
	"context"
	"fmt"
	"net/http"
	"time"

	simplejson "github.com/bitly/go-simplejson"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/ninja0404/sol-sniper/internal/model"
)

const dexscreenerName = "dexscreener"

// DexscreenerProvider DexScreener行情源，字段最全，价格合并时优先级最高
type DexscreenerProvider struct {
	baseURL string
	client  *http.Client
}

func NewDexscreenerProvider(baseURL string, timeout time.Duration) *DexscreenerProvider {
	return &DexscreenerProvider{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (p *DexscreenerProvider) Name() string {
	return dexscreenerName
}

func (p *DexscreenerProvider) Fetch(ctx context.Context, tokenAddress string) (*model.MarketReading, error) {
	url := fmt.Sprintf("%s/latest/dex/tokens/%s", p.baseURL, tokenAddress)
	body, err := doGet(ctx, p.client, url, nil)
	if err != nil {
		return nil, wrapProviderErr(dexscreenerName, err)
	}

	js, err := simplejson.NewJson(body)
	if err != nil {
		return nil, wrapProviderErr(dexscreenerName, err)
	}

	pairs, err := js.Get("pairs").Array()
	if err != nil || len(pairs) == 0 {
		return nil, wrapProviderErr(dexscreenerName, errors.New("no pairs in response"))
	}

	// 取第一个交易对，DexScreener按流动性排序返回
	pair := js.Get("pairs").GetIndex(0)

	reading := &model.MarketReading{
		Source:    dexscreenerName,
		Symbol:    pair.Get("baseToken").Get("symbol").MustString(),
		Name:      pair.Get("baseToken").Get("name").MustString(),
		FetchedAt: time.Now(),
	}

	if priceStr := pair.Get("priceUsd").MustString(); priceStr != "" {
		if price, err := decimal.NewFromString(priceStr); err == nil {
			reading.PriceUsd = price
		}
	}
	reading.Volume24h = decimal.NewFromFloat(pair.Get("volume").Get("h24").MustFloat64())
	reading.Liquidity = decimal.NewFromFloat(pair.Get("liquidity").Get("usd").MustFloat64())
	reading.PriceChange24h = decimal.NewFromFloat(pair.Get("priceChange").Get("h24").MustFloat64())

	// marketCap缺失时退回fdv
	if mcap := pair.Get("marketCap").MustFloat64(); mcap > 0 {
		reading.MarketCap = decimal.NewFromFloat(mcap)
	} else {
		reading.MarketCap = decimal.NewFromFloat(pair.Get("fdv").MustFloat64())
	}

	return reading, nil
}
