package store

import (
	"context"
	"sync"
)

// Namespace 存储命名空间。synced存放设置类数据，local存放运行状态和历史记录
type Namespace string

const (
	NamespaceSynced Namespace = "synced"
	NamespaceLocal  Namespace = "local"
)

// KV 键值存储抽象，值为JSON编码的字节
type KV interface {
	// Get 读取键值，第二个返回值表示键是否存在
	Get(ctx context.Context, ns Namespace, key string) ([]byte, bool, error)
	// Set 写入键值，键存在时覆盖
	Set(ctx context.Context, ns Namespace, key string, value []byte) error
	// Delete 删除键，键不存在时静默返回
	Delete(ctx context.Context, ns Namespace, key string) error
	// Close 释放底层资源
	Close() error
}

// memoryKV 进程内存储，用于本地运行和测试
type memoryKV struct {
	mu   sync.RWMutex
	data map[Namespace]map[string][]byte
}

// NewMemoryKV 创建内存存储
func NewMemoryKV() KV {
	return &memoryKV{
		data: map[Namespace]map[string][]byte{
			NamespaceSynced: {},
			NamespaceLocal:  {},
		},
	}
}

func (m *memoryKV) Get(ctx context.Context, ns Namespace, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	bucket, ok := m.data[ns]
	if !ok {
		return nil, false, nil
	}
	value, ok := bucket[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, true, nil
}

func (m *memoryKV) Set(ctx context.Context, ns Namespace, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	bucket, ok := m.data[ns]
	if !ok {
		bucket = map[string][]byte{}
		m.data[ns] = bucket
	}
	stored := make([]byte, len(value))
	copy(stored, value)
	bucket[key] = stored
	return nil
}

func (m *memoryKV) Delete(ctx context.Context, ns Namespace, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if bucket, ok := m.data[ns]; ok {
		delete(bucket, key)
	}
	return nil
}

func (m *memoryKV) Close() error {
	return nil
}
