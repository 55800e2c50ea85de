package condition

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// 流动性安全线和价格异动阈值
var (
	defaultLiquidityFloor = decimal.NewFromInt(10000)
	defaultSpikePercent   = decimal.NewFromInt(100)
)

// PriceTargetCondition 价格达标条件：当前价格不低于目标价格
type PriceTargetCondition struct{}

func (c *PriceTargetCondition) GetName() string { return "price_target" }

func (c *PriceTargetCondition) Informational() bool { return false }

func (c *PriceTargetCondition) Evaluate(context *EvaluationContext) (bool, string) {
	target, data := context.Target, context.Data
	if !target.TargetPrice.IsPositive() {
		return false, ""
	}
	if data.PriceUsd.GreaterThanOrEqual(target.TargetPrice) {
		return true, fmt.Sprintf("Price target reached: $%s >= $%s",
			data.PriceUsd.String(), target.TargetPrice.String())
	}
	return false, ""
}

// VolumeTargetCondition 交易量达标条件：24小时交易量不低于目标值
type VolumeTargetCondition struct{}

func (c *VolumeTargetCondition) GetName() string { return "volume_target" }

func (c *VolumeTargetCondition) Informational() bool { return false }

func (c *VolumeTargetCondition) Evaluate(context *EvaluationContext) (bool, string) {
	target, data := context.Target, context.Data
	if !target.TargetVolume.IsPositive() {
		return false, ""
	}
	if data.Volume24h.GreaterThanOrEqual(target.TargetVolume) {
		return true, fmt.Sprintf("Volume target reached: $%s >= $%s",
			data.Volume24h.String(), target.TargetVolume.String())
	}
	return false, ""
}

// MarketCapCondition 市值上限条件：市值不高于设定上限
type MarketCapCondition struct{}

func (c *MarketCapCondition) GetName() string { return "market_cap" }

func (c *MarketCapCondition) Informational() bool { return false }

func (c *MarketCapCondition) Evaluate(context *EvaluationContext) (bool, string) {
	target, data := context.Target, context.Data
	if !target.MaxMarketCap.IsPositive() {
		return false, ""
	}
	// 行情缺市值时按0参与比较，0<=上限同样命中
	if data.MarketCap.LessThanOrEqual(target.MaxMarketCap) {
		return true, fmt.Sprintf("Market cap under threshold: $%s <= $%s",
			data.MarketCap.String(), target.MaxMarketCap.String())
	}
	return false, ""
}

// LiquidityFloorCondition 流动性安全线，只作为补充信息不单独触发
type LiquidityFloorCondition struct {
	Floor decimal.Decimal
}

func NewLiquidityFloorCondition() *LiquidityFloorCondition {
	return &LiquidityFloorCondition{Floor: defaultLiquidityFloor}
}

func (c *LiquidityFloorCondition) GetName() string { return "liquidity_floor" }

func (c *LiquidityFloorCondition) Informational() bool { return true }

func (c *LiquidityFloorCondition) Evaluate(context *EvaluationContext) (bool, string) {
	if context.Data.Liquidity.GreaterThan(c.Floor) {
		return true, "Sufficient liquidity detected"
	}
	return false, ""
}

// PriceSpikeCondition 价格异动条件：24小时涨幅超过阈值
type PriceSpikeCondition struct {
	Threshold decimal.Decimal
}

func NewPriceSpikeCondition() *PriceSpikeCondition {
	return &PriceSpikeCondition{Threshold: defaultSpikePercent}
}

func (c *PriceSpikeCondition) GetName() string { return "price_spike" }

func (c *PriceSpikeCondition) Informational() bool { return false }

func (c *PriceSpikeCondition) Evaluate(context *EvaluationContext) (bool, string) {
	if context.Data.PriceChange24h.GreaterThan(c.Threshold) {
		return true, fmt.Sprintf("Significant price movement: +%s%%",
			context.Data.PriceChange24h.String())
	}
	return false, ""
}
