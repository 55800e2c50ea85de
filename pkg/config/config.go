package config

import (
	"encoding/json"
	"os"
	"sync"

	"github.com/pkg/errors"
)

// Manager 配置管理器：读取配置文件并提供按路径取值能力。
// 所有格式统一转换为JSON树后用simplejson读取。
type Manager struct {
	mu     sync.RWMutex
	path   string
	values *jsonValues
}

var defaultManager = &Manager{}

// Load 读取并解析配置文件（yaml/toml/json，按扩展名识别）
func (m *Manager) Load(path string) error {
	enc, err := EncoderForPath(path)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "read config file %s", path)
	}

	var tree map[string]interface{}
	if err := enc.Decode(data, &tree); err != nil {
		return errors.Wrapf(err, "decode %s config", enc.String())
	}

	jsonData, err := json.Marshal(tree)
	if err != nil {
		return err
	}

	values, err := newValues(jsonData)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.path = path
	m.values = values
	m.mu.Unlock()
	return nil
}

// Reload 按上次的路径重新加载
func (m *Manager) Reload() error {
	m.mu.RLock()
	path := m.path
	m.mu.RUnlock()
	if path == "" {
		return errors.New("config not loaded yet")
	}
	return m.Load(path)
}

// Get 按路径读取配置节点
func (m *Manager) Get(path ...string) Value {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.values == nil {
		empty, _ := newValues([]byte("{}"))
		return empty.Get(path...)
	}
	return m.values.Get(path...)
}

// Scan 把整棵配置树反序列化到结构体
func (m *Manager) Scan(v interface{}) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.values == nil {
		return errors.New("config not loaded yet")
	}
	return m.values.Scan(v)
}

func (m *Manager) Path() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.path
}

// 包级便捷入口，默认管理器

func Load(path string) error {
	return defaultManager.Load(path)
}

func Reload() error {
	return defaultManager.Reload()
}

func Get(path ...string) Value {
	return defaultManager.Get(path...)
}

func Scan(v interface{}) error {
	return defaultManager.Scan(v)
}

func Default() *Manager {
	return defaultManager
}
