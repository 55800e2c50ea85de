package condition

import (
	"github.com/ninja0404/sol-sniper/internal/model"
)

// EvaluationContext 评估上下文，包含目标配置和最新行情
type EvaluationContext struct {
	Target *model.Target
	Data   *model.TokenData
}

// Condition 触发条件接口
type Condition interface {
	// Evaluate 评估条件是否满足，满足时返回触发原因
	Evaluate(context *EvaluationContext) (bool, string)

	// GetName 获取条件名称
	GetName() string

	// Informational 是否仅作为补充信息，不单独触发
	Informational() bool
}

// DefaultConditions 按固定顺序返回全部触发条件，
// 原因拼接顺序与这里的顺序一致
func DefaultConditions() []Condition {
	return []Condition{
		&PriceTargetCondition{},
		&VolumeTargetCondition{},
		&MarketCapCondition{},
		NewLiquidityFloorCondition(),
		NewPriceSpikeCondition(),
	}
}
