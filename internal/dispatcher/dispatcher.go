package dispatcher

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ninja0404/sol-sniper/internal/executor"
	"github.com/ninja0404/sol-sniper/internal/model"
	"github.com/ninja0404/sol-sniper/internal/store"
	"github.com/ninja0404/sol-sniper/pkg/logger"
	"github.com/ninja0404/sol-sniper/pkg/utils"
)

// Publisher 触发事件发布器接口
type Publisher interface {
	// Publish 发布触发事件
	Publish(event *model.TriggerEvent) error

	// GetType 获取发布器类型
	GetType() string

	// Close 关闭发布器
	Close() error
}

// Manager 触发分发管理器：记录历史、发布通知、按设置执行自动买入
type Manager struct {
	publishers []Publisher
	history    *store.HistoryStore
	settings   *store.SettingsStore
	executor   executor.Executor

	ctx    context.Context
	cancel context.CancelFunc

	// 风险告警去重，同一代币冷却期内只告警一次
	ruggerAlerts  map[string]time.Time
	alertCooldown time.Duration
	mutex         sync.RWMutex
}

// NewManager 创建分发管理器
func NewManager(history *store.HistoryStore, settings *store.SettingsStore, exec executor.Executor) *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		publishers:    make([]Publisher, 0),
		history:       history,
		settings:      settings,
		executor:      exec,
		ctx:           ctx,
		cancel:        cancel,
		ruggerAlerts:  make(map[string]time.Time),
		alertCooldown: 1 * time.Hour,
	}
}

// AddPublisher 添加发布器
func (m *Manager) AddPublisher(publisher Publisher) {
	m.publishers = append(m.publishers, publisher)
}

// Start 启动分发管理器
func (m *Manager) Start() error {
	for _, publisher := range m.publishers {
		logger.Info("✅ 已加载触发发布器", logger.String("type", publisher.GetType()))
	}
	logger.Info("📡 触发分发管理器已启动")

	go m.startCleanupTask()
	return nil
}

// Stop 停止分发管理器
func (m *Manager) Stop() error {
	m.cancel()

	for _, publisher := range m.publishers {
		if err := publisher.Close(); err != nil {
			logger.Error("关闭发布器失败",
				logger.String("type", publisher.GetType()),
				logger.FieldErr(err))
		}
	}

	logger.Info("触发分发管理器已停止")
	return nil
}

// startCleanupTask 定期清理过期的告警去重记录
func (m *Manager) startCleanupTask() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			m.mutex.Lock()
			now := time.Now()
			for token, alertedAt := range m.ruggerAlerts {
				if now.Sub(alertedAt) > m.alertCooldown {
					delete(m.ruggerAlerts, token)
				}
			}
			m.mutex.Unlock()
		}
	}
}

// HandleTrigger 处理目标触发：记录历史、发布通知，按设置走自动执行
func (m *Manager) HandleTrigger(ctx context.Context, event *model.TriggerEvent) error {
	reason := strings.Join(event.Reasons, ", ")
	logger.Info("🎯 监控目标已触发",
		logger.String("token", event.TokenAddress),
		logger.String("symbol", event.Symbol),
		logger.String("reason", reason),
		logger.String("price", event.PriceUsd.String()))

	settings, err := m.settings.GetSnipeSettings(ctx)
	if err != nil {
		logger.Error("读取狙击设置失败", logger.FieldErr(err))
		settings = model.DefaultSnipeSettings()
	}

	// 目标自身开关和全局开关都打开才执行
	execute := settings.Enabled && event.AutoSnipe
	amount := settings.AmountSol
	if event.AmountSol.IsPositive() {
		amount = event.AmountSol
	}

	record := &model.SnipeRecord{
		ID:           event.ID,
		TokenAddress: event.TokenAddress,
		Symbol:       event.Symbol,
		Reason:       reason,
		PriceUsd:     event.PriceUsd,
		AmountSol:    amount,
		Executed:     execute,
		CreatedAt:    event.TriggeredAt,
	}
	if err := m.history.AddSnipeRecord(ctx, record); err != nil {
		logger.Error("写入狙击历史失败", logger.FieldErr(err))
	}

	m.recordEvent(ctx, model.EventTargetTriggered, reason, event)

	for _, publisher := range m.publishers {
		if err := publisher.Publish(event); err != nil {
			logger.Error("发布触发事件失败",
				logger.String("type", publisher.GetType()),
				logger.FieldErr(err))
		}
	}

	if execute {
		m.autoExecute(ctx, event.TokenAddress, amount, settings)
	}
	return nil
}

// autoExecute 自动执行买入并记录尝试
func (m *Manager) autoExecute(ctx context.Context, tokenAddress string, amount decimal.Decimal, settings *model.SnipeSettings) {
	attempt, err := m.executor.Execute(ctx, &executor.SnipeRequest{
		TokenAddress: tokenAddress,
		AmountSol:    amount,
		SlippagePct:  settings.SlippagePct,
		GasTier:      settings.GasTier,
	})
	if err != nil {
		logger.Error("自动执行失败",
			logger.String("token", tokenAddress),
			logger.FieldErr(err))
		return
	}

	if err := m.history.AddSnipeAttempt(ctx, attempt); err != nil {
		logger.Error("写入执行尝试记录失败", logger.FieldErr(err))
	}
	m.recordEvent(ctx, model.EventSnipeExecuted, attempt.Status, attempt)
}

// QuickSnipe 跳过触发条件立即执行买入，amount不为正时用全局设置的数量
func (m *Manager) QuickSnipe(ctx context.Context, tokenAddress string, amount decimal.Decimal) (*model.SnipeAttempt, error) {
	settings, err := m.settings.GetSnipeSettings(ctx)
	if err != nil {
		return nil, err
	}

	buy := settings.AmountSol
	if amount.IsPositive() {
		buy = amount
	}

	attempt, err := m.executor.Execute(ctx, &executor.SnipeRequest{
		TokenAddress: tokenAddress,
		AmountSol:    buy,
		SlippagePct:  settings.SlippagePct,
		GasTier:      settings.GasTier,
	})
	if err != nil {
		return nil, err
	}

	if err := m.history.AddSnipeAttempt(ctx, attempt); err != nil {
		logger.Error("写入执行尝试记录失败", logger.FieldErr(err))
	}
	m.recordEvent(ctx, model.EventQuickSnipe, attempt.Status, attempt)
	return attempt, nil
}

// HandleAlert 处理价格预警触发
func (m *Manager) HandleAlert(ctx context.Context, rec *model.AlertRecord) {
	logger.Info("🔔 价格预警触发",
		logger.String("token", rec.TokenAddress),
		logger.String("kind", string(rec.Kind)),
		logger.String("threshold", rec.Threshold.String()),
		logger.String("price", rec.PriceUsd.String()))

	if err := m.history.AddAlertRecord(ctx, rec); err != nil {
		logger.Error("写入预警记录失败", logger.FieldErr(err))
	}
	m.recordEvent(ctx, model.EventAlertFired, string(rec.Kind), rec)
}

// HandleRisk 处理风险检测结果，已知跑路开发者在冷却期内只告警一次
func (m *Manager) HandleRisk(ctx context.Context, det *model.DetectionRecord) {
	if err := m.history.AddDetectionRecord(ctx, det); err != nil {
		logger.Error("写入风险检测记录失败", logger.FieldErr(err))
	}

	if det.RiskLevel != model.RiskCritical {
		return
	}

	m.mutex.Lock()
	if alertedAt, ok := m.ruggerAlerts[det.TokenAddress]; ok && time.Since(alertedAt) < m.alertCooldown {
		m.mutex.Unlock()
		return
	}
	m.ruggerAlerts[det.TokenAddress] = time.Now()
	m.mutex.Unlock()

	logger.Warn("🚨 检测到已知跑路开发者",
		logger.String("token", det.TokenAddress),
		logger.String("creator", utils.GetDisplayWalletAddress(det.Creator)),
		logger.Int("score", det.RiskScore))
	m.recordEvent(ctx, model.EventRiskDetected, det.Detail, det)
}

// RecordEvent 写入一条通用事件日志
func (m *Manager) RecordEvent(ctx context.Context, eventType string, message string, payload any) {
	m.recordEvent(ctx, eventType, message, payload)
}

func (m *Manager) recordEvent(ctx context.Context, eventType string, message string, payload any) {
	rec := &model.EventRecord{
		ID:        utils.GenerateEventID(),
		Type:      eventType,
		Message:   message,
		CreatedAt: time.Now(),
	}
	if payload != nil {
		rec.Payload = utils.ConvertToJsonString(payload)
	}
	if err := m.history.AddEventRecord(ctx, rec); err != nil {
		logger.Error("写入事件日志失败", logger.FieldErr(err))
	}
}

// LogPublisher 日志发布器 - 把触发事件输出到日志
type LogPublisher struct{}

func (p *LogPublisher) GetType() string {
	return "log"
}

func (p *LogPublisher) Publish(event *model.TriggerEvent) error {
	logger.Info("🚨 触发事件",
		logger.String("event_id", event.ID),
		logger.String("token", event.TokenAddress),
		logger.String("symbol", event.Symbol),
		logger.Strings("reasons", event.Reasons),
		logger.String("price", event.PriceUsd.String()),
		logger.String("market_cap", event.MarketCap.String()))
	return nil
}

func (p *LogPublisher) Close() error {
	return nil
}
