package store

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const TableNameKvEntry = "sniper_kv"

// KvEntry 键值存储表
type KvEntry struct {
	ID        int64      `gorm:"column:id;primaryKey;autoIncrement:true" json:"id"`
	Namespace string     `gorm:"column:namespace;type:varchar(16);uniqueIndex:idx_ns_key;not null;comment:命名空间" json:"namespace"`
	Key       string     `gorm:"column:kv_key;type:varchar(128);uniqueIndex:idx_ns_key;not null;comment:键" json:"kv_key"`
	Value     []byte     `gorm:"column:kv_value;type:mediumblob;comment:JSON编码的值" json:"kv_value"`
	CreatedAt *time.Time `gorm:"column:created_at;not null;autoCreateTime" json:"created_at"`
	UpdatedAt *time.Time `gorm:"column:updated_at;not null;autoUpdateTime" json:"updated_at"`
}

// TableName KvEntry's table name
func (*KvEntry) TableName() string {
	return TableNameKvEntry
}

// mysqlKV MySQL存储后端
type mysqlKV struct {
	db *gorm.DB
}

// NewMysqlKV 创建MySQL存储，自动建表
func NewMysqlKV(db *gorm.DB) (KV, error) {
	if err := db.AutoMigrate(&KvEntry{}); err != nil {
		return nil, errors.Wrap(err, "migrate kv table")
	}
	return &mysqlKV{db: db}, nil
}

func (m *mysqlKV) Get(ctx context.Context, ns Namespace, key string) ([]byte, bool, error) {
	var entry KvEntry
	err := m.db.WithContext(ctx).
		Where("namespace = ? AND kv_key = ?", string(ns), key).
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return entry.Value, true, nil
}

func (m *mysqlKV) Set(ctx context.Context, ns Namespace, key string, value []byte) error {
	entry := KvEntry{
		Namespace: string(ns),
		Key:       key,
		Value:     value,
	}
	return m.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "namespace"}, {Name: "kv_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"kv_value"}),
		}).
		Create(&entry).Error
}

func (m *mysqlKV) Delete(ctx context.Context, ns Namespace, key string) error {
	return m.db.WithContext(ctx).
		Where("namespace = ? AND kv_key = ?", string(ns), key).
		Delete(&KvEntry{}).Error
}

func (m *mysqlKV) Close() error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
