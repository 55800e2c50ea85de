package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// AlertKind 价格预警类型
type AlertKind string

const (
	AlertAbove  AlertKind = "above"  // 价格高于阈值
	AlertBelow  AlertKind = "below"  // 价格低于阈值
	AlertChange AlertKind = "change" // 24小时涨跌幅超过阈值
)

// PriceAlert 单个价格预警，触发后标记为已触发不再重复
type PriceAlert struct {
	ID        string          `json:"id"`
	Kind      AlertKind       `json:"kind"`
	Threshold decimal.Decimal `json:"threshold"`
	Fired     bool            `json:"fired"`
	FiredAt   *time.Time      `json:"fired_at,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// Target 监控目标
type Target struct {
	TokenAddress string `json:"token_address"` // 代币地址，目标唯一键
	Symbol       string `json:"symbol"`
	Name         string `json:"name"`

	TargetPrice  decimal.Decimal `json:"target_price"`   // 目标价格，<=0表示不启用
	TargetVolume decimal.Decimal `json:"target_volume"`  // 目标24小时交易量，<=0表示不启用
	MaxMarketCap decimal.Decimal `json:"max_market_cap"` // 市值上限，<=0表示不启用

	AutoSnipe bool            `json:"auto_snipe"` // 触发后是否自动执行，还需全局开关同时打开
	AmountSol decimal.Decimal `json:"amount_sol"` // 本目标的买入数量，<=0时用全局设置

	Alerts []*PriceAlert `json:"alerts,omitempty"` // 独立于狙击条件的价格预警

	Triggered     bool       `json:"triggered"` // 单调触发标记，一旦置位不再复位
	TriggeredAt   *time.Time `json:"triggered_at,omitempty"`
	TriggerReason string     `json:"trigger_reason,omitempty"` // 逗号拼接的触发原因

	LastPrice   decimal.Decimal `json:"last_price"`
	LastData    *TokenData      `json:"last_data,omitempty"` // 最近一次合并后的行情
	LastCheckAt time.Time       `json:"last_check_at"`       // 最近一次开始检查的时间
	AddedAt     time.Time       `json:"added_at"`
}

// NeedsCheck 距上次检查是否已超过刷新间隔。
// 已触发的目标照常刷新，价格预警要继续评估，重复分发由触发标记自身拦截
func (t *Target) NeedsCheck(now time.Time, refresh time.Duration) bool {
	return now.Sub(t.LastCheckAt) >= refresh
}

// GasTier 优先费档位
type GasTier string

const (
	GasSlow     GasTier = "slow"
	GasStandard GasTier = "standard"
	GasFast     GasTier = "fast"
)

// SnipeSettings 自动狙击设置
type SnipeSettings struct {
	Enabled       bool            `json:"enabled"`
	AmountSol     decimal.Decimal `json:"amount_sol"`      // 单次买入SOL数量
	SlippagePct   decimal.Decimal `json:"slippage_pct"`    // 滑点百分比
	GasTier       GasTier         `json:"gas_tier"`        // 优先费档位
	StopLossPct   decimal.Decimal `json:"stop_loss_pct"`   // 止损百分比
	TakeProfitPct decimal.Decimal `json:"take_profit_pct"` // 止盈百分比

	// 按代币地址配置的目标价和交易量阈值，添加目标时未显式指定则从这里取
	PriceTargets     map[string]decimal.Decimal `json:"price_targets,omitempty"`
	VolumeThresholds map[string]decimal.Decimal `json:"volume_thresholds,omitempty"`
}

// DefaultSnipeSettings 默认狙击设置，自动执行默认关闭
func DefaultSnipeSettings() *SnipeSettings {
	return &SnipeSettings{
		Enabled:          false,
		AmountSol:        decimal.NewFromFloat(0.1),
		SlippagePct:      decimal.NewFromInt(5),
		GasTier:          GasFast,
		StopLossPct:      decimal.NewFromInt(50),
		TakeProfitPct:    decimal.NewFromInt(200),
		PriceTargets:     map[string]decimal.Decimal{},
		VolumeThresholds: map[string]decimal.Decimal{},
	}
}

// SnipeSettingsPatch 局部更新，nil字段保持原值
type SnipeSettingsPatch struct {
	Enabled       *bool            `json:"enabled,omitempty"`
	AmountSol     *decimal.Decimal `json:"amount_sol,omitempty"`
	SlippagePct   *decimal.Decimal `json:"slippage_pct,omitempty"`
	GasTier       *GasTier         `json:"gas_tier,omitempty"`
	StopLossPct   *decimal.Decimal `json:"stop_loss_pct,omitempty"`
	TakeProfitPct *decimal.Decimal `json:"take_profit_pct,omitempty"`

	PriceTargets     map[string]decimal.Decimal `json:"price_targets,omitempty"`
	VolumeThresholds map[string]decimal.Decimal `json:"volume_thresholds,omitempty"`
}

// Apply 把补丁应用到当前设置上，映射类字段整体替换
func (s *SnipeSettings) Apply(p *SnipeSettingsPatch) {
	if p == nil {
		return
	}
	if p.Enabled != nil {
		s.Enabled = *p.Enabled
	}
	if p.AmountSol != nil {
		s.AmountSol = *p.AmountSol
	}
	if p.SlippagePct != nil {
		s.SlippagePct = *p.SlippagePct
	}
	if p.GasTier != nil {
		s.GasTier = *p.GasTier
	}
	if p.StopLossPct != nil {
		s.StopLossPct = *p.StopLossPct
	}
	if p.TakeProfitPct != nil {
		s.TakeProfitPct = *p.TakeProfitPct
	}
	if p.PriceTargets != nil {
		s.PriceTargets = p.PriceTargets
	}
	if p.VolumeThresholds != nil {
		s.VolumeThresholds = p.VolumeThresholds
	}
}
