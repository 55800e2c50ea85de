package store

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/ninja0404/sol-sniper/internal/model"
)

func TestMemoryKVBasics(t *testing.T) {
	kv := NewMemoryKV()
	ctx := context.Background()

	_, ok, err := kv.Get(ctx, NamespaceSynced, "missing")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, kv.Set(ctx, NamespaceSynced, "k", []byte("v1")))
	value, ok, err := kv.Get(ctx, NamespaceSynced, "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("v1"), value)

	// 两个命名空间互不可见
	_, ok, err = kv.Get(ctx, NamespaceLocal, "k")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, kv.Set(ctx, NamespaceSynced, "k", []byte("v2")))
	value, _, _ = kv.Get(ctx, NamespaceSynced, "k")
	require.Equal(t, []byte("v2"), value)

	require.NoError(t, kv.Delete(ctx, NamespaceSynced, "k"))
	_, ok, _ = kv.Get(ctx, NamespaceSynced, "k")
	require.False(t, ok)

	// 不存在的键删除不报错
	require.NoError(t, kv.Delete(ctx, NamespaceSynced, "missing"))
}

func TestSnipeSettingsDefaultsWhenMissing(t *testing.T) {
	store := NewSettingsStore(NewMemoryKV())

	settings, err := store.GetSnipeSettings(context.Background())
	require.NoError(t, err)
	require.False(t, settings.Enabled)
	require.True(t, settings.AmountSol.Equal(decimal.NewFromFloat(0.1)))
	require.True(t, settings.SlippagePct.Equal(decimal.NewFromInt(5)))
	require.Equal(t, model.GasFast, settings.GasTier)
	require.True(t, settings.StopLossPct.Equal(decimal.NewFromInt(50)))
	require.True(t, settings.TakeProfitPct.Equal(decimal.NewFromInt(200)))
}

func TestUpdateSnipeSettingsPartialPatch(t *testing.T) {
	store := NewSettingsStore(NewMemoryKV())
	ctx := context.Background()

	enabled := true
	amount := decimal.NewFromFloat(0.5)
	updated, err := store.UpdateSnipeSettings(ctx, &model.SnipeSettingsPatch{
		Enabled:   &enabled,
		AmountSol: &amount,
	})
	require.NoError(t, err)
	require.True(t, updated.Enabled)
	require.True(t, updated.AmountSol.Equal(amount))

	// 未打补丁的字段保持默认值
	require.Equal(t, model.GasFast, updated.GasTier)
	require.True(t, updated.SlippagePct.Equal(decimal.NewFromInt(5)))

	// 落盘后再读回来应一致
	reloaded, err := store.GetSnipeSettings(ctx)
	require.NoError(t, err)
	require.True(t, reloaded.Enabled)
	require.True(t, reloaded.AmountSol.Equal(amount))
}

func TestSnipeSettingsPerTokenMaps(t *testing.T) {
	store := NewSettingsStore(NewMemoryKV())
	ctx := context.Background()

	updated, err := store.UpdateSnipeSettings(ctx, &model.SnipeSettingsPatch{
		PriceTargets: map[string]decimal.Decimal{
			"TokenAAA": decimal.NewFromFloat(1.5),
		},
		VolumeThresholds: map[string]decimal.Decimal{
			"TokenAAA": decimal.NewFromInt(50000),
		},
	})
	require.NoError(t, err)
	require.True(t, updated.PriceTargets["TokenAAA"].Equal(decimal.NewFromFloat(1.5)))
	require.True(t, updated.VolumeThresholds["TokenAAA"].Equal(decimal.NewFromInt(50000)))

	// 只更新其它字段时映射保持不变
	enabled := true
	updated, err = store.UpdateSnipeSettings(ctx, &model.SnipeSettingsPatch{Enabled: &enabled})
	require.NoError(t, err)
	require.True(t, updated.PriceTargets["TokenAAA"].Equal(decimal.NewFromFloat(1.5)))

	reloaded, err := store.GetSnipeSettings(ctx)
	require.NoError(t, err)
	require.True(t, reloaded.VolumeThresholds["TokenAAA"].Equal(decimal.NewFromInt(50000)))
}

func TestTargetsSaveAndLoad(t *testing.T) {
	store := NewSettingsStore(NewMemoryKV())
	ctx := context.Background()

	loaded, err := store.LoadTargets(ctx)
	require.NoError(t, err)
	require.Empty(t, loaded)

	now := time.Now().Truncate(time.Second)
	targets := []*model.Target{
		{
			TokenAddress: "TokenAAA",
			Symbol:       "MEME",
			TargetPrice:  decimal.NewFromInt(1),
			Triggered:    true,
			TriggeredAt:  &now,
			AddedAt:      now,
		},
		{
			TokenAddress: "TokenBBB",
			AutoSnipe:    true,
			AmountSol:    decimal.NewFromFloat(0.3),
			AddedAt:      now,
		},
	}
	require.NoError(t, store.SaveTargets(ctx, targets))

	loaded, err = store.LoadTargets(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	require.Equal(t, "TokenAAA", loaded[0].TokenAddress)
	require.True(t, loaded[0].Triggered)
	require.True(t, loaded[1].AutoSnipe)
	require.True(t, loaded[1].AmountSol.Equal(decimal.NewFromFloat(0.3)))
}

func TestMonitorActiveRoundTrip(t *testing.T) {
	store := NewSettingsStore(NewMemoryKV())
	ctx := context.Background()

	active, err := store.LoadMonitorActive(ctx)
	require.NoError(t, err)
	require.False(t, active)

	require.NoError(t, store.SaveMonitorActive(ctx, true))
	active, err = store.LoadMonitorActive(ctx)
	require.NoError(t, err)
	require.True(t, active)
}

func TestSnipeHistoryCapNewestFirst(t *testing.T) {
	history := NewHistoryStore(NewMemoryKV())
	ctx := context.Background()

	// 写入超过上限的记录，旧的应被挤掉
	total := model.MaxSnipeRecords + 20
	for i := 0; i < total; i++ {
		err := history.AddSnipeRecord(ctx, &model.SnipeRecord{
			ID:           fmt.Sprintf("rec-%d", i),
			TokenAddress: "TokenAAA",
			CreatedAt:    time.Now(),
		})
		require.NoError(t, err)
	}

	records, err := history.ListSnipeRecords(ctx)
	require.NoError(t, err)
	require.Len(t, records, model.MaxSnipeRecords)

	// 新到旧排列，最新的一条在最前
	require.Equal(t, fmt.Sprintf("rec-%d", total-1), records[0].ID)
	require.Equal(t, fmt.Sprintf("rec-%d", total-model.MaxSnipeRecords), records[len(records)-1].ID)
}

func TestConcurrentAppendsKeepAllRecords(t *testing.T) {
	history := NewHistoryStore(NewMemoryKV())
	ctx := context.Background()

	// 同一tick内多个目标并发触发，追加不能互相覆盖
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = history.AddSnipeRecord(ctx, &model.SnipeRecord{
				ID:        fmt.Sprintf("rec-%d", i),
				CreatedAt: time.Now(),
			})
		}(i)
	}
	wg.Wait()

	records, err := history.ListSnipeRecords(ctx)
	require.NoError(t, err)
	require.Len(t, records, 50)
}

func TestSnipeAttemptsCap(t *testing.T) {
	history := NewHistoryStore(NewMemoryKV())
	ctx := context.Background()

	for i := 0; i < model.MaxSnipeAttempts+5; i++ {
		err := history.AddSnipeAttempt(ctx, &model.SnipeAttempt{
			ID:        fmt.Sprintf("att-%d", i),
			Status:    "simulated",
			CreatedAt: time.Now(),
		})
		require.NoError(t, err)
	}

	attempts, err := history.ListSnipeAttempts(ctx)
	require.NoError(t, err)
	require.Len(t, attempts, model.MaxSnipeAttempts)
}

func TestPruneOlderThan(t *testing.T) {
	history := NewHistoryStore(NewMemoryKV())
	ctx := context.Background()

	old := time.Now().Add(-40 * 24 * time.Hour)
	fresh := time.Now()

	require.NoError(t, history.AddSnipeRecord(ctx, &model.SnipeRecord{ID: "old-snipe", CreatedAt: old}))
	require.NoError(t, history.AddSnipeRecord(ctx, &model.SnipeRecord{ID: "new-snipe", CreatedAt: fresh}))
	require.NoError(t, history.AddEventRecord(ctx, &model.EventRecord{ID: "old-event", CreatedAt: old}))
	require.NoError(t, history.AddAlertRecord(ctx, &model.AlertRecord{ID: "new-alert", CreatedAt: fresh}))

	removed, err := history.PruneOlderThan(ctx, time.Now().Add(-30*24*time.Hour))
	require.NoError(t, err)
	require.Equal(t, 2, removed)

	records, err := history.ListSnipeRecords(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "new-snipe", records[0].ID)

	events, err := history.ListEventRecords(ctx)
	require.NoError(t, err)
	require.Empty(t, events)

	alerts, err := history.ListAlertRecords(ctx)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
}
