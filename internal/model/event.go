package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 各类历史记录的保留上限，超出后丢弃最旧的
const (
	MaxSnipeRecords     = 100
	MaxEventRecords     = 500
	MaxSnipeAttempts    = 50
	MaxAlertRecords     = 100
	MaxDetectionRecords = 200
)

// TriggerEvent 目标命中触发条件后产生的事件
type TriggerEvent struct {
	ID           string          `json:"id"`
	TokenAddress string          `json:"token_address"`
	Symbol       string          `json:"symbol"`
	Reasons      []string        `json:"reasons"` // 按条件检查顺序排列
	PriceUsd     decimal.Decimal `json:"price_usd"`
	Volume24h    decimal.Decimal `json:"volume_24h"`
	MarketCap    decimal.Decimal `json:"market_cap"`
	AutoSnipe    bool            `json:"auto_snipe"` // 目标自身的自动执行开关
	AmountSol    decimal.Decimal `json:"amount_sol"` // 目标配置的买入数量，<=0时用全局设置
	TriggeredAt  time.Time       `json:"triggered_at"`
}

// SnipeRecord 狙击历史记录
type SnipeRecord struct {
	ID           string          `json:"id"`
	TokenAddress string          `json:"token_address"`
	Symbol       string          `json:"symbol"`
	Reason       string          `json:"reason"` // 逗号拼接的触发原因
	PriceUsd     decimal.Decimal `json:"price_usd"`
	AmountSol    decimal.Decimal `json:"amount_sol"`
	Executed     bool            `json:"executed"` // 是否走了自动执行
	CreatedAt    time.Time       `json:"created_at"`
}

// SnipeAttempt 自动执行尝试记录
type SnipeAttempt struct {
	ID           string          `json:"id"`
	TokenAddress string          `json:"token_address"`
	AmountSol    decimal.Decimal `json:"amount_sol"`
	SlippagePct  decimal.Decimal `json:"slippage_pct"`
	GasTier      GasTier         `json:"gas_tier"`
	Status       string          `json:"status"` // simulated / rejected
	Detail       string          `json:"detail,omitempty"`

	// 模拟报价信息，真实执行前的占位估算
	Route        string          `json:"route,omitempty"`
	EstimatedOut decimal.Decimal `json:"estimated_out"`
	GasEstimate  decimal.Decimal `json:"gas_estimate"`

	CreatedAt time.Time `json:"created_at"`
}

// AlertRecord 价格预警触发记录
type AlertRecord struct {
	ID           string          `json:"id"`
	TokenAddress string          `json:"token_address"`
	Symbol       string          `json:"symbol"`
	Kind         AlertKind       `json:"kind"`
	Threshold    decimal.Decimal `json:"threshold"`
	PriceUsd     decimal.Decimal `json:"price_usd"`
	CreatedAt    time.Time       `json:"created_at"`
}

// DetectionRecord 风险检测记录
type DetectionRecord struct {
	ID           string    `json:"id"`
	TokenAddress string    `json:"token_address"`
	Creator      string    `json:"creator,omitempty"`
	RiskLevel    RiskLevel `json:"risk_level"`
	RiskScore    int       `json:"risk_score"`
	Detail       string    `json:"detail,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// EventRecord 通用事件日志
type EventRecord struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"` // target_added / target_triggered / alert_fired / ...
	Message   string    `json:"message"`
	Payload   string    `json:"payload,omitempty"` // JSON编码的附加数据
	CreatedAt time.Time `json:"created_at"`
}

// 事件类型
const (
	EventTargetAdded     = "target_added"
	EventTargetRemoved   = "target_removed"
	EventTargetTriggered = "target_triggered"
	EventAlertFired      = "alert_fired"
	EventSnipeExecuted   = "snipe_executed"
	EventQuickSnipe      = "quick_snipe"
	EventRiskDetected    = "risk_detected"
	EventMonitorStarted  = "monitor_started"
	EventMonitorStopped  = "monitor_stopped"
)

// RiskLevel 开发者风险等级
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// Reputation 开发者信誉评估结果
type Reputation struct {
	Creator     string    `json:"creator"`
	Score       int       `json:"score"` // 0-100，越高风险越大
	Level       RiskLevel `json:"level"`
	KnownRugger bool      `json:"known_rugger"`
	KnownLegit  bool      `json:"known_legit"`
	Flags       []string  `json:"flags,omitempty"` // 命中的风险项
	EvaluatedAt time.Time `json:"evaluated_at"`
}
