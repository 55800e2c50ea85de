package monitor

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/ninja0404/sol-sniper/internal/model"
	"github.com/ninja0404/sol-sniper/pkg/logger"
)

func TestMain(m *testing.M) {
	cfg := &logger.Config{Output: "stdout", Level: "error", Discard: true, DisableSentry: true}
	logger.SetDefault(cfg.Build())
	os.Exit(m.Run())
}

// fakeAggregator 按地址返回预设行情
type fakeAggregator struct {
	fetch func(ctx context.Context, tokenAddress string) (*model.TokenData, error)
}

func (f *fakeAggregator) FetchTokenData(ctx context.Context, tokenAddress string) (*model.TokenData, error) {
	return f.fetch(ctx, tokenAddress)
}

// recordingSink 记录所有触发和预警
type recordingSink struct {
	mu       sync.Mutex
	triggers []*model.TriggerEvent
	alerts   []*model.AlertRecord
	events   []string
}

func (s *recordingSink) HandleTrigger(ctx context.Context, event *model.TriggerEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.triggers = append(s.triggers, event)
	return nil
}

func (s *recordingSink) HandleAlert(ctx context.Context, rec *model.AlertRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts = append(s.alerts, rec)
}

func (s *recordingSink) RecordEvent(ctx context.Context, eventType string, message string, payload any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, eventType)
}

func (s *recordingSink) triggerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.triggers)
}

func (s *recordingSink) alertCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.alerts)
}

func staticData(price float64) *model.TokenData {
	return &model.TokenData{
		PriceUsd:  decimal.NewFromFloat(price),
		Symbol:    "MEME",
		UpdatedAt: time.Now(),
	}
}

func newTestEngine(t *testing.T, agg *fakeAggregator, sink Sink) *Engine {
	t.Helper()
	return NewEngine(agg, sink, 0)
}

func TestTriggerFiresOnlyOnce(t *testing.T) {
	agg := &fakeAggregator{fetch: func(ctx context.Context, addr string) (*model.TokenData, error) {
		return staticData(2.0), nil
	}}
	sink := &recordingSink{}
	engine := newTestEngine(t, agg, sink)
	engine.Start()

	engine.AddTarget("TokenAAA", TargetConfig{
		Symbol:      "MEME",
		TargetPrice: decimal.NewFromInt(1),
	})

	// 条件持续满足，重复tick不应产生第二次触发
	for i := 0; i < 5; i++ {
		engine.Tick(context.Background())
	}

	require.Equal(t, 1, sink.triggerCount())

	targets := engine.Targets()
	require.Len(t, targets, 1)
	require.True(t, targets[0].Triggered)
	require.Contains(t, targets[0].TriggerReason, "Price target reached")
}

func TestTriggerResetsAfterRemoveAndReadd(t *testing.T) {
	agg := &fakeAggregator{fetch: func(ctx context.Context, addr string) (*model.TokenData, error) {
		return staticData(2.0), nil
	}}
	sink := &recordingSink{}
	engine := newTestEngine(t, agg, sink)
	engine.Start()

	cfg := TargetConfig{TargetPrice: decimal.NewFromInt(1)}
	engine.AddTarget("TokenAAA", cfg)
	engine.Tick(context.Background())
	require.Equal(t, 1, sink.triggerCount())

	engine.RemoveTarget("TokenAAA")
	engine.AddTarget("TokenAAA", cfg)
	engine.Tick(context.Background())
	require.Equal(t, 2, sink.triggerCount())
}

func TestAddTargetIsIdempotent(t *testing.T) {
	agg := &fakeAggregator{fetch: func(ctx context.Context, addr string) (*model.TokenData, error) {
		return staticData(0.5), nil
	}}
	sink := &recordingSink{}
	engine := newTestEngine(t, agg, sink)

	engine.AddTarget("TokenAAA", TargetConfig{TargetPrice: decimal.NewFromInt(10)})
	engine.AddTarget("TokenAAA", TargetConfig{TargetPrice: decimal.NewFromInt(20)})

	targets := engine.Targets()
	require.Len(t, targets, 1)
	require.True(t, targets[0].TargetPrice.Equal(decimal.NewFromInt(20)))
}

func TestTickSkipsWhenInactive(t *testing.T) {
	called := false
	agg := &fakeAggregator{fetch: func(ctx context.Context, addr string) (*model.TokenData, error) {
		called = true
		return staticData(2.0), nil
	}}
	sink := &recordingSink{}
	engine := newTestEngine(t, agg, sink)

	engine.AddTarget("TokenAAA", TargetConfig{TargetPrice: decimal.NewFromInt(1)})
	engine.Tick(context.Background())

	require.False(t, called)
	require.Equal(t, 0, sink.triggerCount())
}

func TestStopKeepsTargetsAndTriggerState(t *testing.T) {
	agg := &fakeAggregator{fetch: func(ctx context.Context, addr string) (*model.TokenData, error) {
		return staticData(2.0), nil
	}}
	sink := &recordingSink{}
	engine := newTestEngine(t, agg, sink)
	engine.Start()

	engine.AddTarget("TokenAAA", TargetConfig{TargetPrice: decimal.NewFromInt(1)})
	engine.Tick(context.Background())
	engine.Stop()

	targets := engine.Targets()
	require.Len(t, targets, 1)
	require.True(t, targets[0].Triggered)
}

func TestSlowTargetDoesNotBlockOthers(t *testing.T) {
	release := make(chan struct{})
	agg := &fakeAggregator{fetch: func(ctx context.Context, addr string) (*model.TokenData, error) {
		if addr == "TokenSlow" {
			<-release
			return nil, context.DeadlineExceeded
		}
		return staticData(2.0), nil
	}}
	sink := &recordingSink{}
	engine := newTestEngine(t, agg, sink)
	engine.Start()

	engine.AddTarget("TokenSlow", TargetConfig{TargetPrice: decimal.NewFromInt(1)})
	engine.AddTarget("TokenFast1", TargetConfig{TargetPrice: decimal.NewFromInt(1)})
	engine.AddTarget("TokenFast2", TargetConfig{TargetPrice: decimal.NewFromInt(1)})

	done := make(chan struct{})
	go func() {
		engine.Tick(context.Background())
		close(done)
	}()

	// 慢目标还挂着的时候，其它目标应已完成检查并触发
	require.Eventually(t, func() bool {
		return sink.triggerCount() == 2
	}, time.Second, 10*time.Millisecond)

	close(release)
	<-done

	// 慢目标行情失败，触发状态不变
	for _, target := range engine.Targets() {
		if target.TokenAddress == "TokenSlow" {
			require.False(t, target.Triggered)
		}
	}
}

func TestAggregatorFailureSkipsTick(t *testing.T) {
	agg := &fakeAggregator{fetch: func(ctx context.Context, addr string) (*model.TokenData, error) {
		return nil, context.DeadlineExceeded
	}}
	sink := &recordingSink{}
	engine := newTestEngine(t, agg, sink)
	engine.Start()

	engine.AddTarget("TokenAAA", TargetConfig{TargetPrice: decimal.NewFromInt(1)})
	engine.Tick(context.Background())

	require.Equal(t, 0, sink.triggerCount())
	require.False(t, engine.Targets()[0].Triggered)
}

func TestPriceAlertIndependentOfTrigger(t *testing.T) {
	agg := &fakeAggregator{fetch: func(ctx context.Context, addr string) (*model.TokenData, error) {
		return staticData(2.0), nil
	}}
	sink := &recordingSink{}
	engine := newTestEngine(t, agg, sink)
	engine.Start()

	// 不配置任何触发条件，只挂一个价格预警
	engine.AddTarget("TokenAAA", TargetConfig{Symbol: "MEME"})
	_, ok := engine.AddPriceAlert("TokenAAA", model.AlertAbove, decimal.NewFromInt(1))
	require.True(t, ok)

	engine.Tick(context.Background())
	engine.Tick(context.Background())

	// 预警触发一次，目标自身的触发标记不受影响
	require.Equal(t, 1, sink.alertCount())
	require.Equal(t, 0, sink.triggerCount())
	require.False(t, engine.Targets()[0].Triggered)
}

func TestAlertFiresAfterTargetTriggered(t *testing.T) {
	agg := &fakeAggregator{fetch: func(ctx context.Context, addr string) (*model.TokenData, error) {
		return staticData(2.0), nil
	}}
	sink := &recordingSink{}
	engine := newTestEngine(t, agg, sink)
	engine.Start()

	engine.AddTarget("TokenAAA", TargetConfig{TargetPrice: decimal.NewFromInt(1)})
	engine.Tick(context.Background())
	require.Equal(t, 1, sink.triggerCount())

	// 目标触发后仍在刷新，此后挂上的价格预警照常评估
	_, ok := engine.AddPriceAlert("TokenAAA", model.AlertAbove, decimal.NewFromInt(1))
	require.True(t, ok)

	engine.Tick(context.Background())
	engine.Tick(context.Background())

	require.Equal(t, 1, sink.alertCount())
	// 触发标记单调，继续刷新也不会重复分发
	require.Equal(t, 1, sink.triggerCount())
}

func TestLiquidityAloneDoesNotTrigger(t *testing.T) {
	agg := &fakeAggregator{fetch: func(ctx context.Context, addr string) (*model.TokenData, error) {
		data := staticData(0.5)
		data.Liquidity = decimal.NewFromInt(50000)
		return data, nil
	}}
	sink := &recordingSink{}
	engine := newTestEngine(t, agg, sink)
	engine.Start()

	engine.AddTarget("TokenAAA", TargetConfig{TargetPrice: decimal.NewFromInt(10)})
	engine.Tick(context.Background())

	require.Equal(t, 0, sink.triggerCount())
}

func TestTriggerReasonsJoinedInOrder(t *testing.T) {
	agg := &fakeAggregator{fetch: func(ctx context.Context, addr string) (*model.TokenData, error) {
		data := staticData(2.0)
		data.Volume24h = decimal.NewFromInt(100000)
		data.Liquidity = decimal.NewFromInt(50000)
		return data, nil
	}}
	sink := &recordingSink{}
	engine := newTestEngine(t, agg, sink)
	engine.Start()

	engine.AddTarget("TokenAAA", TargetConfig{
		TargetPrice:  decimal.NewFromInt(1),
		TargetVolume: decimal.NewFromInt(50000),
	})
	engine.Tick(context.Background())

	require.Equal(t, 1, sink.triggerCount())
	reasons := sink.triggers[0].Reasons
	require.Len(t, reasons, 3)
	require.Contains(t, reasons[0], "Price target reached")
	require.Contains(t, reasons[1], "Volume target reached")
	require.Equal(t, "Sufficient liquidity detected", reasons[2])
}

func TestRefreshSpacingLimitsChecks(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	agg := &fakeAggregator{fetch: func(ctx context.Context, addr string) (*model.TokenData, error) {
		mu.Lock()
		calls++
		mu.Unlock()
		return staticData(0.1), nil
	}}
	sink := &recordingSink{}
	engine := NewEngine(agg, sink, time.Hour)
	engine.Start()

	engine.AddTarget("TokenAAA", TargetConfig{TargetPrice: decimal.NewFromInt(10)})

	// 刷新间隔内重复tick，只有第一次真正下发检查
	engine.Tick(context.Background())
	engine.Tick(context.Background())
	engine.Tick(context.Background())

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, 1, calls)
}
