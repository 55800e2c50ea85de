package store

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/ninja0404/sol-sniper/internal/model"
)

// 设置与状态的存储键
const (
	keySnipeSettings = "snipe_settings"
	keyTargets       = "monitor_targets"
	keyMonitorActive = "monitor_active"
)

// SettingsStore 设置与监控状态的持久化层。
// 设置存在synced命名空间，监控状态存在local命名空间。
type SettingsStore struct {
	kv KV
}

// NewSettingsStore 创建设置存储
func NewSettingsStore(kv KV) *SettingsStore {
	return &SettingsStore{kv: kv}
}

// GetSnipeSettings 读取狙击设置，不存在时返回默认值
func (s *SettingsStore) GetSnipeSettings(ctx context.Context) (*model.SnipeSettings, error) {
	data, ok, err := s.kv.Get(ctx, NamespaceSynced, keySnipeSettings)
	if err != nil {
		return nil, errors.Wrap(err, "load snipe settings")
	}
	if !ok {
		return model.DefaultSnipeSettings(), nil
	}

	var settings model.SnipeSettings
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, errors.Wrap(err, "decode snipe settings")
	}
	return &settings, nil
}

// UpdateSnipeSettings 局部更新设置并落盘，返回更新后的完整设置
func (s *SettingsStore) UpdateSnipeSettings(ctx context.Context, patch *model.SnipeSettingsPatch) (*model.SnipeSettings, error) {
	settings, err := s.GetSnipeSettings(ctx)
	if err != nil {
		return nil, err
	}
	settings.Apply(patch)

	data, err := json.Marshal(settings)
	if err != nil {
		return nil, err
	}
	if err := s.kv.Set(ctx, NamespaceSynced, keySnipeSettings, data); err != nil {
		return nil, errors.Wrap(err, "save snipe settings")
	}
	return settings, nil
}

// SaveTargets 保存当前监控目标列表
func (s *SettingsStore) SaveTargets(ctx context.Context, targets []*model.Target) error {
	data, err := json.Marshal(targets)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, NamespaceLocal, keyTargets, data)
}

// LoadTargets 恢复监控目标列表，不存在时返回空切片
func (s *SettingsStore) LoadTargets(ctx context.Context) ([]*model.Target, error) {
	data, ok, err := s.kv.Get(ctx, NamespaceLocal, keyTargets)
	if err != nil {
		return nil, errors.Wrap(err, "load targets")
	}
	if !ok {
		return nil, nil
	}

	var targets []*model.Target
	if err := json.Unmarshal(data, &targets); err != nil {
		return nil, errors.Wrap(err, "decode targets")
	}
	return targets, nil
}

// SaveMonitorActive 记录监控开关状态，重启后恢复
func (s *SettingsStore) SaveMonitorActive(ctx context.Context, active bool) error {
	data, err := json.Marshal(active)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, NamespaceLocal, keyMonitorActive, data)
}

// LoadMonitorActive 读取监控开关状态
func (s *SettingsStore) LoadMonitorActive(ctx context.Context) (bool, error) {
	data, ok, err := s.kv.Get(ctx, NamespaceLocal, keyMonitorActive)
	if err != nil || !ok {
		return false, err
	}

	var active bool
	if err := json.Unmarshal(data, &active); err != nil {
		return false, err
	}
	return active, nil
}
