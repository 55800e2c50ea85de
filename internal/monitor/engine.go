package monitor

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ninja0404/sol-sniper/internal/aggregator"
	"github.com/ninja0404/sol-sniper/internal/model"
	"github.com/ninja0404/sol-sniper/internal/monitor/condition"
	"github.com/ninja0404/sol-sniper/pkg/logger"
	"github.com/ninja0404/sol-sniper/pkg/utils"
)

// Sink 触发和预警的下游处理接口，由分发器实现
type Sink interface {
	HandleTrigger(ctx context.Context, event *model.TriggerEvent) error
	HandleAlert(ctx context.Context, rec *model.AlertRecord)
	RecordEvent(ctx context.Context, eventType string, message string, payload any)
}

// TargetConfig 添加监控目标的配置
type TargetConfig struct {
	Symbol       string
	Name         string
	TargetPrice  decimal.Decimal
	TargetVolume decimal.Decimal
	MaxMarketCap decimal.Decimal
	AutoSnipe    bool
	AmountSol    decimal.Decimal
}

// Engine 目标监控引擎：由外部调度器按固定节奏驱动Tick，
// 单个目标两次检查之间有最小间隔，避免tick过密导致请求放大
type Engine struct {
	mu      sync.RWMutex
	targets map[string]*model.Target
	active  bool

	agg        aggregator.Aggregator
	sink       Sink
	conditions []condition.Condition
	refresh    time.Duration
	logger     *logger.Logger
}

// Option 引擎可选配置
type Option func(*Engine)

// WithConditions 覆盖默认触发条件
func WithConditions(conditions []condition.Condition) Option {
	return func(e *Engine) {
		e.conditions = conditions
	}
}

// NewEngine 创建监控引擎，refresh为单目标两次检查的最小间隔
func NewEngine(agg aggregator.Aggregator, sink Sink, refresh time.Duration, opts ...Option) *Engine {
	e := &Engine{
		targets:    make(map[string]*model.Target),
		agg:        agg,
		sink:       sink,
		conditions: condition.DefaultConditions(),
		refresh:    refresh,
		logger:     logger.Default().Named("monitor"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// AddTarget 添加或替换监控目标，同地址重复添加时新配置整体生效
func (e *Engine) AddTarget(tokenAddress string, cfg TargetConfig) *model.Target {
	target := &model.Target{
		TokenAddress: tokenAddress,
		Symbol:       cfg.Symbol,
		Name:         cfg.Name,
		TargetPrice:  cfg.TargetPrice,
		TargetVolume: cfg.TargetVolume,
		MaxMarketCap: cfg.MaxMarketCap,
		AutoSnipe:    cfg.AutoSnipe,
		AmountSol:    cfg.AmountSol,
		AddedAt:      time.Now(),
	}

	e.mu.Lock()
	e.targets[tokenAddress] = target
	e.mu.Unlock()

	e.logger.Info("🎯 已添加监控目标",
		logger.String("token", utils.GetDisplayWalletAddress(tokenAddress)),
		logger.String("symbol", cfg.Symbol),
		logger.Bool("auto_snipe", cfg.AutoSnipe))
	e.sink.RecordEvent(context.Background(), model.EventTargetAdded, tokenAddress, target)

	snapshot := *target
	return &snapshot
}

// RemoveTarget 移除监控目标及其价格预警，目标不存在时静默返回
func (e *Engine) RemoveTarget(tokenAddress string) {
	e.mu.Lock()
	_, exists := e.targets[tokenAddress]
	delete(e.targets, tokenAddress)
	e.mu.Unlock()

	if !exists {
		return
	}
	e.logger.Info("已移除监控目标",
		logger.String("token", utils.GetDisplayWalletAddress(tokenAddress)))
	e.sink.RecordEvent(context.Background(), model.EventTargetRemoved, tokenAddress, nil)
}

// ClearTargets 清空全部监控目标
func (e *Engine) ClearTargets() {
	e.mu.Lock()
	n := len(e.targets)
	e.targets = make(map[string]*model.Target)
	e.mu.Unlock()

	if n > 0 {
		e.logger.Info("已清空监控目标", logger.Int("count", n))
	}
}

// AddPriceAlert 给目标添加价格预警，返回预警ID
func (e *Engine) AddPriceAlert(tokenAddress string, kind model.AlertKind, threshold decimal.Decimal) (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	target, ok := e.targets[tokenAddress]
	if !ok {
		return "", false
	}

	alert := &model.PriceAlert{
		ID:        utils.GenerateEventID(),
		Kind:      kind,
		Threshold: threshold,
		CreatedAt: time.Now(),
	}
	target.Alerts = append(target.Alerts, alert)
	return alert.ID, true
}

// RemovePriceAlert 移除指定的价格预警
func (e *Engine) RemovePriceAlert(tokenAddress string, alertID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	target, ok := e.targets[tokenAddress]
	if !ok {
		return
	}
	kept := target.Alerts[:0]
	for _, alert := range target.Alerts {
		if alert.ID != alertID {
			kept = append(kept, alert)
		}
	}
	target.Alerts = kept
}

// Start 打开监控开关，不影响已有目标和触发状态
func (e *Engine) Start() {
	e.mu.Lock()
	e.active = true
	e.mu.Unlock()

	e.logger.Info("🚀 目标监控已启动")
	e.sink.RecordEvent(context.Background(), model.EventMonitorStarted, "", nil)
}

// Stop 关闭监控开关，目标和触发状态全部保留
func (e *Engine) Stop() {
	e.mu.Lock()
	e.active = false
	e.mu.Unlock()

	e.logger.Info("🛑 目标监控已停止")
	e.sink.RecordEvent(context.Background(), model.EventMonitorStopped, "", nil)
}

// IsActive 监控开关状态
func (e *Engine) IsActive() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.active
}

// Targets 返回当前目标快照
func (e *Engine) Targets() []*model.Target {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]*model.Target, 0, len(e.targets))
	for _, target := range e.targets {
		snapshot := *target
		out = append(out, &snapshot)
	}
	return out
}

// RestoreTargets 恢复持久化的目标列表，触发状态原样保留
func (e *Engine) RestoreTargets(targets []*model.Target) {
	e.mu.Lock()
	for _, target := range targets {
		if target == nil || target.TokenAddress == "" {
			continue
		}
		e.targets[target.TokenAddress] = target
	}
	n := len(e.targets)
	e.mu.Unlock()

	if n > 0 {
		e.logger.Info("📦 已恢复监控目标", logger.Int("count", n))
	}
}

// Tick 执行一轮检查。开关关闭或无目标时直接返回；
// 到期目标并发检查，单个目标的失败或阻塞不影响其它目标
func (e *Engine) Tick(ctx context.Context) {
	now := time.Now()

	e.mu.Lock()
	if !e.active || len(e.targets) == 0 {
		e.mu.Unlock()
		return
	}
	due := make([]*model.Target, 0, len(e.targets))
	for _, target := range e.targets {
		if target.NeedsCheck(now, e.refresh) {
			// 检查开始即更新时间戳，刷新间隔内不会重复下发
			target.LastCheckAt = now
			due = append(due, target)
		}
	}
	e.mu.Unlock()

	if len(due) == 0 {
		return
	}

	var wg sync.WaitGroup
	for _, target := range due {
		wg.Add(1)
		go func(target *model.Target) {
			defer wg.Done()
			e.checkTarget(ctx, target)
		}(target)
	}
	wg.Wait()
}

// checkTarget 拉取行情并评估单个目标
func (e *Engine) checkTarget(ctx context.Context, target *model.Target) {
	data, err := e.agg.FetchTokenData(ctx, target.TokenAddress)
	if err != nil || data == nil {
		// 行情拿不到就跳过本轮，触发状态不变
		e.logger.Debug("行情拉取失败，跳过本轮检查",
			logger.String("token", target.TokenAddress),
			logger.FieldErr(err))
		return
	}

	e.mu.Lock()
	target.LastPrice = data.PriceUsd
	target.LastData = data
	if target.Symbol == "" && data.Symbol != "" {
		target.Symbol = data.Symbol
	}
	if target.Name == "" && data.Name != "" {
		target.Name = data.Name
	}
	e.mu.Unlock()

	e.evaluateTrigger(ctx, target, data)
	e.evaluateAlerts(ctx, target, data)
}

// evaluateTrigger 按固定顺序评估触发条件，补充信息类条件不单独触发
func (e *Engine) evaluateTrigger(ctx context.Context, target *model.Target, data *model.TokenData) {
	evalCtx := &condition.EvaluationContext{Target: target, Data: data}

	reasons := make([]string, 0, len(e.conditions))
	triggering := false
	for _, cond := range e.conditions {
		matched, reason := cond.Evaluate(evalCtx)
		if !matched {
			continue
		}
		reasons = append(reasons, reason)
		if !cond.Informational() {
			triggering = true
		}
	}
	if !triggering {
		return
	}

	// 触发标记单调置位，只有第一次置位的协程负责分发
	e.mu.Lock()
	if target.Triggered {
		e.mu.Unlock()
		return
	}
	target.Triggered = true
	now := time.Now()
	target.TriggeredAt = &now
	target.TriggerReason = strings.Join(reasons, ", ")
	e.mu.Unlock()

	event := &model.TriggerEvent{
		ID:           utils.GenerateEventID(),
		TokenAddress: target.TokenAddress,
		Symbol:       target.Symbol,
		Reasons:      reasons,
		PriceUsd:     data.PriceUsd,
		Volume24h:    data.Volume24h,
		MarketCap:    data.MarketCap,
		AutoSnipe:    target.AutoSnipe,
		AmountSol:    target.AmountSol,
		TriggeredAt:  now,
	}
	if err := e.sink.HandleTrigger(ctx, event); err != nil {
		e.logger.Error("触发分发失败",
			logger.String("token", target.TokenAddress),
			logger.FieldErr(err))
	}
}

// evaluateAlerts 评估价格预警，与目标自身的触发状态互不影响
func (e *Engine) evaluateAlerts(ctx context.Context, target *model.Target, data *model.TokenData) {
	e.mu.Lock()
	fired := make([]*model.PriceAlert, 0)
	for _, alert := range target.Alerts {
		if alert.Fired {
			continue
		}
		if alertSatisfied(alert, data) {
			alert.Fired = true
			now := time.Now()
			alert.FiredAt = &now
			fired = append(fired, alert)
		}
	}
	e.mu.Unlock()

	for _, alert := range fired {
		e.sink.HandleAlert(ctx, &model.AlertRecord{
			ID:           utils.GenerateEventID(),
			TokenAddress: target.TokenAddress,
			Symbol:       target.Symbol,
			Kind:         alert.Kind,
			Threshold:    alert.Threshold,
			PriceUsd:     data.PriceUsd,
			CreatedAt:    time.Now(),
		})
	}
}

// alertSatisfied 按预警类型比较最新行情
func alertSatisfied(alert *model.PriceAlert, data *model.TokenData) bool {
	switch alert.Kind {
	case model.AlertAbove:
		return data.PriceUsd.GreaterThanOrEqual(alert.Threshold)
	case model.AlertBelow:
		return data.PriceUsd.IsPositive() && data.PriceUsd.LessThanOrEqual(alert.Threshold)
	case model.AlertChange:
		return data.PriceChange24h.Abs().GreaterThanOrEqual(alert.Threshold)
	default:
		return false
	}
}
