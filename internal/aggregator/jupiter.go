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

const jupiterName = "jupiter"

// JupiterProvider Jupiter价格源，只提供价格
type JupiterProvider struct {
	baseURL string
	client  *http.Client
}

func NewJupiterProvider(baseURL string, timeout time.Duration) *JupiterProvider {
	return &JupiterProvider{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (p *JupiterProvider) Name() string {
	return jupiterName
}

func (p *JupiterProvider) Fetch(ctx context.Context, tokenAddress string) (*model.MarketReading, error) {
	url := fmt.Sprintf("%s/v4/price?ids=%s", p.baseURL, tokenAddress)
	body, err := doGet(ctx, p.client, url, nil)
	if err != nil {
		return nil, wrapProviderErr(jupiterName, err)
	}

	js, err := simplejson.NewJson(body)
	if err != nil {
		return nil, wrapProviderErr(jupiterName, err)
	}

	entry := js.Get("data").Get(tokenAddress)
	price := entry.Get("price").MustFloat64()
	if price <= 0 {
		return nil, wrapProviderErr(jupiterName, errors.New("no price in response"))
	}

	return &model.MarketReading{
		Source:    jupiterName,
		PriceUsd:  decimal.NewFromFloat(price),
		Symbol:    entry.Get("mintSymbol").MustString(),
		FetchedAt: time.Now(),
	}, nil
}
