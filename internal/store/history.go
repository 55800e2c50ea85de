package store

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/ninja0404/sol-sniper/internal/model"
)

// 各类历史记录的存储键，全部在local命名空间
const (
	keySnipeHistory  = "snipe_history"
	keyEventLog      = "event_log"
	keySnipeAttempts = "snipe_attempts"
	keyAlertHistory  = "alert_history"
	keyDetectionLog  = "detection_log"
)

// HistoryStore 历史记录存储：各类日志按新到旧排列，超出上限丢弃最旧的。
// 追加是读改写三步，同一tick内多个目标并发触发时靠互斥锁保证不丢记录
type HistoryStore struct {
	mu sync.Mutex
	kv KV
}

// NewHistoryStore 创建历史记录存储
func NewHistoryStore(kv KV) *HistoryStore {
	return &HistoryStore{kv: kv}
}

func loadList[T any](ctx context.Context, kv KV, key string) ([]T, error) {
	data, ok, err := kv.Get(ctx, NamespaceLocal, key)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", key)
	}
	if !ok {
		return nil, nil
	}

	var list []T
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, errors.Wrapf(err, "decode %s", key)
	}
	return list, nil
}

func saveList[T any](ctx context.Context, kv KV, key string, list []T) error {
	data, err := json.Marshal(list)
	if err != nil {
		return err
	}
	return kv.Set(ctx, NamespaceLocal, key, data)
}

// prependCapped 新记录插到最前，超出上限时截断尾部
func prependCapped[T any](ctx context.Context, kv KV, key string, limit int, rec T) error {
	list, err := loadList[T](ctx, kv, key)
	if err != nil {
		return err
	}

	list = append([]T{rec}, list...)
	if len(list) > limit {
		list = list[:limit]
	}
	return saveList(ctx, kv, key, list)
}

// pruneList 删除早于cutoff的记录，返回删除条数
func pruneList[T any](ctx context.Context, kv KV, key string, cutoff time.Time, at func(T) time.Time) (int, error) {
	list, err := loadList[T](ctx, kv, key)
	if err != nil {
		return 0, err
	}
	if len(list) == 0 {
		return 0, nil
	}

	kept := make([]T, 0, len(list))
	for _, rec := range list {
		if at(rec).After(cutoff) {
			kept = append(kept, rec)
		}
	}
	removed := len(list) - len(kept)
	if removed == 0 {
		return 0, nil
	}
	return removed, saveList(ctx, kv, key, kept)
}

// AddSnipeRecord 追加狙击历史
func (h *HistoryStore) AddSnipeRecord(ctx context.Context, rec *model.SnipeRecord) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return prependCapped(ctx, h.kv, keySnipeHistory, model.MaxSnipeRecords, rec)
}

// ListSnipeRecords 按新到旧返回狙击历史
func (h *HistoryStore) ListSnipeRecords(ctx context.Context) ([]*model.SnipeRecord, error) {
	return loadList[*model.SnipeRecord](ctx, h.kv, keySnipeHistory)
}

// AddEventRecord 追加事件日志
func (h *HistoryStore) AddEventRecord(ctx context.Context, rec *model.EventRecord) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return prependCapped(ctx, h.kv, keyEventLog, model.MaxEventRecords, rec)
}

// ListEventRecords 按新到旧返回事件日志
func (h *HistoryStore) ListEventRecords(ctx context.Context) ([]*model.EventRecord, error) {
	return loadList[*model.EventRecord](ctx, h.kv, keyEventLog)
}

// AddSnipeAttempt 追加自动执行尝试记录
func (h *HistoryStore) AddSnipeAttempt(ctx context.Context, rec *model.SnipeAttempt) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return prependCapped(ctx, h.kv, keySnipeAttempts, model.MaxSnipeAttempts, rec)
}

// ListSnipeAttempts 按新到旧返回执行尝试记录
func (h *HistoryStore) ListSnipeAttempts(ctx context.Context) ([]*model.SnipeAttempt, error) {
	return loadList[*model.SnipeAttempt](ctx, h.kv, keySnipeAttempts)
}

// AddAlertRecord 追加价格预警记录
func (h *HistoryStore) AddAlertRecord(ctx context.Context, rec *model.AlertRecord) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return prependCapped(ctx, h.kv, keyAlertHistory, model.MaxAlertRecords, rec)
}

// ListAlertRecords 按新到旧返回价格预警记录
func (h *HistoryStore) ListAlertRecords(ctx context.Context) ([]*model.AlertRecord, error) {
	return loadList[*model.AlertRecord](ctx, h.kv, keyAlertHistory)
}

// AddDetectionRecord 追加风险检测记录
func (h *HistoryStore) AddDetectionRecord(ctx context.Context, rec *model.DetectionRecord) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return prependCapped(ctx, h.kv, keyDetectionLog, model.MaxDetectionRecords, rec)
}

// ListDetectionRecords 按新到旧返回风险检测记录
func (h *HistoryStore) ListDetectionRecords(ctx context.Context) ([]*model.DetectionRecord, error) {
	return loadList[*model.DetectionRecord](ctx, h.kv, keyDetectionLog)
}

// PruneOlderThan 清理所有日志中早于cutoff的记录，返回总删除条数
func (h *HistoryStore) PruneOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	total := 0

	n, err := pruneList(ctx, h.kv, keySnipeHistory, cutoff,
		func(r *model.SnipeRecord) time.Time { return r.CreatedAt })
	if err != nil {
		return total, err
	}
	total += n

	n, err = pruneList(ctx, h.kv, keyEventLog, cutoff,
		func(r *model.EventRecord) time.Time { return r.CreatedAt })
	if err != nil {
		return total, err
	}
	total += n

	n, err = pruneList(ctx, h.kv, keySnipeAttempts, cutoff,
		func(r *model.SnipeAttempt) time.Time { return r.CreatedAt })
	if err != nil {
		return total, err
	}
	total += n

	n, err = pruneList(ctx, h.kv, keyAlertHistory, cutoff,
		func(r *model.AlertRecord) time.Time { return r.CreatedAt })
	if err != nil {
		return total, err
	}
	total += n

	n, err = pruneList(ctx, h.kv, keyDetectionLog, cutoff,
		func(r *model.DetectionRecord) time.Time { return r.CreatedAt })
	if err != nil {
		return total, err
	}
	total += n

	return total, nil
}
