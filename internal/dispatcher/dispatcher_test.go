package dispatcher

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/ninja0404/sol-sniper/internal/executor"
	"github.com/ninja0404/sol-sniper/internal/model"
	"github.com/ninja0404/sol-sniper/internal/store"
	"github.com/ninja0404/sol-sniper/pkg/logger"
)

func TestMain(m *testing.M) {
	cfg := &logger.Config{Output: "stdout", Level: "error", Discard: true, DisableSentry: true}
	logger.SetDefault(cfg.Build())
	os.Exit(m.Run())
}

// capturePublisher 记录收到的事件
type capturePublisher struct {
	mu     sync.Mutex
	events []*model.TriggerEvent
}

func (p *capturePublisher) GetType() string { return "capture" }

func (p *capturePublisher) Publish(event *model.TriggerEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *capturePublisher) Close() error { return nil }

func (p *capturePublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

func newTestManager(t *testing.T) (*Manager, *store.HistoryStore, *store.SettingsStore, *capturePublisher) {
	t.Helper()
	kv := store.NewMemoryKV()
	history := store.NewHistoryStore(kv)
	settings := store.NewSettingsStore(kv)

	m := NewManager(history, settings, executor.NewSimulatedExecutor())
	pub := &capturePublisher{}
	m.AddPublisher(pub)
	return m, history, settings, pub
}

func triggerEvent(autoSnipe bool) *model.TriggerEvent {
	return &model.TriggerEvent{
		ID:           "evt-1",
		TokenAddress: "So11111111111111111111111111111111111111112",
		Symbol:       "SOL",
		Reasons:      []string{"Price target reached: $2 >= $1"},
		PriceUsd:     decimal.NewFromInt(2),
		AutoSnipe:    autoSnipe,
		TriggeredAt:  time.Now(),
	}
}

func TestHandleTriggerRecordsAndPublishes(t *testing.T) {
	m, history, _, pub := newTestManager(t)
	ctx := context.Background()

	require.NoError(t, m.HandleTrigger(ctx, triggerEvent(false)))

	require.Equal(t, 1, pub.count())

	records, err := history.ListSnipeRecords(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "evt-1", records[0].ID)
	require.Equal(t, "Price target reached: $2 >= $1", records[0].Reason)

	// 全局自动执行默认关闭，不应有执行尝试
	require.False(t, records[0].Executed)
	attempts, err := history.ListSnipeAttempts(ctx)
	require.NoError(t, err)
	require.Empty(t, attempts)

	events, err := history.ListEventRecords(ctx)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, model.EventTargetTriggered, events[0].Type)
}

func TestHandleTriggerAutoExecutesWhenBothFlagsOn(t *testing.T) {
	m, history, settings, _ := newTestManager(t)
	ctx := context.Background()

	enabled := true
	_, err := settings.UpdateSnipeSettings(ctx, &model.SnipeSettingsPatch{Enabled: &enabled})
	require.NoError(t, err)

	require.NoError(t, m.HandleTrigger(ctx, triggerEvent(true)))

	records, err := history.ListSnipeRecords(ctx)
	require.NoError(t, err)
	require.True(t, records[0].Executed)
	// 目标未指定数量时用全局设置
	require.True(t, records[0].AmountSol.Equal(decimal.NewFromFloat(0.1)))

	attempts, err := history.ListSnipeAttempts(ctx)
	require.NoError(t, err)
	require.Len(t, attempts, 1)
	require.Equal(t, "simulated", attempts[0].Status)
}

func TestHandleTriggerSkipsExecutionWithoutTargetFlag(t *testing.T) {
	m, history, settings, _ := newTestManager(t)
	ctx := context.Background()

	// 只开全局开关，目标自身开关关闭
	enabled := true
	_, err := settings.UpdateSnipeSettings(ctx, &model.SnipeSettingsPatch{Enabled: &enabled})
	require.NoError(t, err)

	require.NoError(t, m.HandleTrigger(ctx, triggerEvent(false)))

	attempts, err := history.ListSnipeAttempts(ctx)
	require.NoError(t, err)
	require.Empty(t, attempts)
}

func TestHandleTriggerTargetAmountOverridesGlobal(t *testing.T) {
	m, history, settings, _ := newTestManager(t)
	ctx := context.Background()

	enabled := true
	_, err := settings.UpdateSnipeSettings(ctx, &model.SnipeSettingsPatch{Enabled: &enabled})
	require.NoError(t, err)

	event := triggerEvent(true)
	event.AmountSol = decimal.NewFromFloat(0.5)
	require.NoError(t, m.HandleTrigger(ctx, event))

	attempts, err := history.ListSnipeAttempts(ctx)
	require.NoError(t, err)
	require.Len(t, attempts, 1)
	require.True(t, attempts[0].AmountSol.Equal(decimal.NewFromFloat(0.5)))
}

func TestQuickSnipeUsesGlobalSettings(t *testing.T) {
	m, history, _, _ := newTestManager(t)
	ctx := context.Background()

	// 快速狙击不依赖全局自动执行开关，未指定数量时用全局设置
	attempt, err := m.QuickSnipe(ctx, "So11111111111111111111111111111111111111112", decimal.Zero)
	require.NoError(t, err)
	require.Equal(t, "simulated", attempt.Status)
	require.True(t, attempt.AmountSol.Equal(decimal.NewFromFloat(0.1)))
	require.Equal(t, model.GasFast, attempt.GasTier)

	attempts, err := history.ListSnipeAttempts(ctx)
	require.NoError(t, err)
	require.Len(t, attempts, 1)

	events, err := history.ListEventRecords(ctx)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, model.EventQuickSnipe, events[0].Type)
}

func TestQuickSnipeAmountOverride(t *testing.T) {
	m, _, _, _ := newTestManager(t)

	attempt, err := m.QuickSnipe(context.Background(),
		"So11111111111111111111111111111111111111112", decimal.NewFromFloat(0.25))
	require.NoError(t, err)
	require.True(t, attempt.AmountSol.Equal(decimal.NewFromFloat(0.25)))
}

func TestHandleAlertWritesRecord(t *testing.T) {
	m, history, _, _ := newTestManager(t)
	ctx := context.Background()

	m.HandleAlert(ctx, &model.AlertRecord{
		ID:           "alert-1",
		TokenAddress: "TokenAAA",
		Kind:         model.AlertAbove,
		Threshold:    decimal.NewFromInt(1),
		PriceUsd:     decimal.NewFromInt(2),
		CreatedAt:    time.Now(),
	})

	alerts, err := history.ListAlertRecords(ctx)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	require.Equal(t, model.AlertAbove, alerts[0].Kind)
}

func TestHandleRiskCriticalDedupedByCooldown(t *testing.T) {
	m, history, _, _ := newTestManager(t)
	ctx := context.Background()

	det := &model.DetectionRecord{
		ID:           "det-1",
		TokenAddress: "TokenAAA",
		Creator:      "CUhvAj1ChcE9q35Q8pjYTpA3A5b6M9F2dB3Y8mK1zXpq",
		RiskLevel:    model.RiskCritical,
		RiskScore:    100,
		CreatedAt:    time.Now(),
	}
	m.HandleRisk(ctx, det)
	m.HandleRisk(ctx, det)

	// 检测记录每次都写，事件告警冷却期内只发一次
	detections, err := history.ListDetectionRecords(ctx)
	require.NoError(t, err)
	require.Len(t, detections, 2)

	events, err := history.ListEventRecords(ctx)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, model.EventRiskDetected, events[0].Type)
}

func TestHandleRiskNonCriticalDoesNotAlert(t *testing.T) {
	m, history, _, _ := newTestManager(t)
	ctx := context.Background()

	m.HandleRisk(ctx, &model.DetectionRecord{
		ID:           "det-2",
		TokenAddress: "TokenBBB",
		RiskLevel:    model.RiskMedium,
		RiskScore:    50,
		CreatedAt:    time.Now(),
	})

	detections, err := history.ListDetectionRecords(ctx)
	require.NoError(t, err)
	require.Len(t, detections, 1)

	events, err := history.ListEventRecords(ctx)
	require.NoError(t, err)
	require.Empty(t, events)
}
