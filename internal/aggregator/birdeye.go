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

const birdeyeName = "birdeye"

// BirdeyeProvider Birdeye价格源，价格合并时优先级次于DexScreener
type BirdeyeProvider struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewBirdeyeProvider(baseURL string, apiKey string, timeout time.Duration) *BirdeyeProvider {
	return &BirdeyeProvider{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

func (p *BirdeyeProvider) Name() string {
	return birdeyeName
}

func (p *BirdeyeProvider) Fetch(ctx context.Context, tokenAddress string) (*model.MarketReading, error) {
	url := fmt.Sprintf("%s/defi/price?address=%s", p.baseURL, tokenAddress)
	headers := map[string]string{"x-chain": "solana"}
	if p.apiKey != "" {
		headers["X-API-KEY"] = p.apiKey
	}

	body, err := doGet(ctx, p.client, url, headers)
	if err != nil {
		return nil, wrapProviderErr(birdeyeName, err)
	}

	js, err := simplejson.NewJson(body)
	if err != nil {
		return nil, wrapProviderErr(birdeyeName, err)
	}

	if !js.Get("success").MustBool() {
		return nil, wrapProviderErr(birdeyeName, errors.New("request not successful"))
	}

	data := js.Get("data")
	value := data.Get("value").MustFloat64()
	if value <= 0 {
		return nil, wrapProviderErr(birdeyeName, errors.New("no value in response"))
	}

	reading := &model.MarketReading{
		Source:    birdeyeName,
		PriceUsd:  decimal.NewFromFloat(value),
		FetchedAt: time.Now(),
	}
	if liq := data.Get("liquidity").MustFloat64(); liq > 0 {
		reading.Liquidity = decimal.NewFromFloat(liq)
	}
	return reading, nil
}
