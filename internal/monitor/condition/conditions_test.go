package condition

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/ninja0404/sol-sniper/internal/model"
)

func evalCtx(target *model.Target, data *model.TokenData) *EvaluationContext {
	return &EvaluationContext{Target: target, Data: data}
}

func TestPriceTargetBoundary(t *testing.T) {
	cond := &PriceTargetCondition{}
	target := &model.Target{TargetPrice: decimal.NewFromInt(1)}

	matched, reason := cond.Evaluate(evalCtx(target, &model.TokenData{PriceUsd: decimal.NewFromFloat(0.99)}))
	require.False(t, matched)
	require.Empty(t, reason)

	// 恰好等于目标价也算命中
	matched, reason = cond.Evaluate(evalCtx(target, &model.TokenData{PriceUsd: decimal.NewFromInt(1)}))
	require.True(t, matched)
	require.Equal(t, "Price target reached: $1 >= $1", reason)
}

func TestPriceTargetDisabledWhenUnset(t *testing.T) {
	cond := &PriceTargetCondition{}
	target := &model.Target{}

	matched, _ := cond.Evaluate(evalCtx(target, &model.TokenData{PriceUsd: decimal.NewFromInt(100)}))
	require.False(t, matched)
}

func TestVolumeTargetBoundary(t *testing.T) {
	cond := &VolumeTargetCondition{}
	target := &model.Target{TargetVolume: decimal.NewFromInt(50000)}

	matched, _ := cond.Evaluate(evalCtx(target, &model.TokenData{Volume24h: decimal.NewFromInt(49999)}))
	require.False(t, matched)

	matched, reason := cond.Evaluate(evalCtx(target, &model.TokenData{Volume24h: decimal.NewFromInt(50000)}))
	require.True(t, matched)
	require.Equal(t, "Volume target reached: $50000 >= $50000", reason)
}

func TestMarketCapUnderThreshold(t *testing.T) {
	cond := &MarketCapCondition{}
	target := &model.Target{MaxMarketCap: decimal.NewFromInt(1000000)}

	matched, reason := cond.Evaluate(evalCtx(target, &model.TokenData{MarketCap: decimal.NewFromInt(800000)}))
	require.True(t, matched)
	require.Equal(t, "Market cap under threshold: $800000 <= $1000000", reason)

	matched, _ = cond.Evaluate(evalCtx(target, &model.TokenData{MarketCap: decimal.NewFromInt(1000001)}))
	require.False(t, matched)
}

func TestMarketCapMissingDataCountsAsZero(t *testing.T) {
	cond := &MarketCapCondition{}
	target := &model.Target{MaxMarketCap: decimal.NewFromInt(1000000)}

	// 行情没给市值时按0比较，0<=上限同样命中
	matched, reason := cond.Evaluate(evalCtx(target, &model.TokenData{}))
	require.True(t, matched)
	require.Equal(t, "Market cap under threshold: $0 <= $1000000", reason)

	// 上限未配置时条件不参与
	matched, _ = cond.Evaluate(evalCtx(&model.Target{}, &model.TokenData{}))
	require.False(t, matched)
}

func TestLiquidityFloorIsInformational(t *testing.T) {
	cond := NewLiquidityFloorCondition()
	require.True(t, cond.Informational())

	matched, reason := cond.Evaluate(evalCtx(&model.Target{}, &model.TokenData{Liquidity: decimal.NewFromInt(10001)}))
	require.True(t, matched)
	require.Equal(t, "Sufficient liquidity detected", reason)

	// 恰好等于安全线不算充足
	matched, _ = cond.Evaluate(evalCtx(&model.Target{}, &model.TokenData{Liquidity: decimal.NewFromInt(10000)}))
	require.False(t, matched)
}

func TestPriceSpikeThreshold(t *testing.T) {
	cond := NewPriceSpikeCondition()

	matched, reason := cond.Evaluate(evalCtx(&model.Target{}, &model.TokenData{PriceChange24h: decimal.NewFromFloat(150.5)}))
	require.True(t, matched)
	require.Equal(t, "Significant price movement: +150.5%", reason)

	matched, _ = cond.Evaluate(evalCtx(&model.Target{}, &model.TokenData{PriceChange24h: decimal.NewFromInt(100)}))
	require.False(t, matched)
}

func TestDefaultConditionsOrder(t *testing.T) {
	conditions := DefaultConditions()
	require.Len(t, conditions, 5)

	names := make([]string, 0, len(conditions))
	for _, c := range conditions {
		names = append(names, c.GetName())
	}
	require.Equal(t, []string{
		"price_target",
		"volume_target",
		"market_cap",
		"liquidity_floor",
		"price_spike",
	}, names)

	// 只有流动性条件是补充信息
	for _, c := range conditions {
		require.Equal(t, c.GetName() == "liquidity_floor", c.Informational())
	}
}
