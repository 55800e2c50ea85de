package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 不可达端点的延迟哨兵值
const UnreachableLatencyMs int64 = 9999

// Endpoint RPC端点及其最近一次探测结果
type Endpoint struct {
	Name      string    `json:"name"`       // 端点名称
	URL       string    `json:"url"`        // 端点地址
	LatencyMs int64     `json:"latency_ms"` // 最近一次探测延迟，不可达时为9999
	Healthy   bool      `json:"healthy"`    // 最近一次探测是否成功
	CheckedAt time.Time `json:"checked_at"` // 最近一次探测时间
}

// MarketReading 单一数据源返回的行情快照
type MarketReading struct {
	Source         string          `json:"source"`           // 数据源名称
	PriceUsd       decimal.Decimal `json:"price_usd"`        // 美元价格
	Volume24h      decimal.Decimal `json:"volume_24h"`       // 24小时交易量
	MarketCap      decimal.Decimal `json:"market_cap"`       // 市值
	Liquidity      decimal.Decimal `json:"liquidity"`        // 流动性(USD)
	PriceChange24h decimal.Decimal `json:"price_change_24h"` // 24小时涨跌幅(%)
	Symbol         string          `json:"symbol"`           // 代币符号
	Name           string          `json:"name"`             // 代币名称
	FetchedAt      time.Time       `json:"fetched_at"`       // 拉取时间
}

// TokenData 多源合并后的行情数据
type TokenData struct {
	TokenAddress   string          `json:"token_address"`
	PriceUsd       decimal.Decimal `json:"price_usd"`
	Volume24h      decimal.Decimal `json:"volume_24h"`
	MarketCap      decimal.Decimal `json:"market_cap"`
	Liquidity      decimal.Decimal `json:"liquidity"`
	PriceChange24h decimal.Decimal `json:"price_change_24h"`
	Symbol         string          `json:"symbol"`
	Name           string          `json:"name"`
	PriceSource    string          `json:"price_source"` // 价格来自哪个数据源
	Sources        []string        `json:"sources"`      // 参与合并的数据源
	UpdatedAt      time.Time       `json:"updated_at"`
}

// HasPrice 是否拿到了有效价格
func (d *TokenData) HasPrice() bool {
	return d != nil && d.PriceUsd.IsPositive()
}
