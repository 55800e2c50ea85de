package config

import (
	"time"

	"dario.cat/mergo"

	"github.com/ninja0404/sol-sniper/pkg/config"
	"github.com/ninja0404/sol-sniper/pkg/database/mysqldb"
	"github.com/ninja0404/sol-sniper/pkg/logger"
	"github.com/ninja0404/sol-sniper/pkg/mq/kafka"
)

// AppConfig 应用配置结构
type AppConfig struct {
	Logger     LoggerConfig        `yaml:"logger" json:"logger"`
	Registry   RegistryConfig      `yaml:"registry" json:"registry"`
	Aggregator AggregatorConfig    `yaml:"aggregator" json:"aggregator"`
	Monitor    MonitorConfig       `yaml:"monitor" json:"monitor"`
	Dispatcher DispatcherConfig    `yaml:"dispatcher" json:"dispatcher"`
	Storage    StorageConfig       `yaml:"storage" json:"storage"`
	Database   mysqldb.MysqlConfig `yaml:"database" json:"database"`
	Risk       RiskConfig          `yaml:"risk" json:"risk"`
}

// LoggerConfig 日志配置
type LoggerConfig struct {
	Output     string `yaml:"output" json:"output"`
	Debug      bool   `yaml:"debug" json:"debug"`
	Level      string `yaml:"level" json:"level"`
	AddCaller  bool   `yaml:"add_caller" json:"add_caller"`
	CallerSkip int    `yaml:"caller_skip" json:"caller_skip"`
}

// EndpointConfig 单个RPC端点
type EndpointConfig struct {
	Name string `yaml:"name" json:"name"`
	URL  string `yaml:"url" json:"url"`
}

// RegistryConfig RPC端点池配置
type RegistryConfig struct {
	Endpoints        []EndpointConfig `yaml:"endpoints" json:"endpoints"`
	ProbeIntervalSec int              `yaml:"probe_interval_sec" json:"probe_interval_sec"`
	ProbeTimeoutMs   int              `yaml:"probe_timeout_ms" json:"probe_timeout_ms"`
}

func (c RegistryConfig) ProbeInterval() time.Duration {
	return time.Duration(c.ProbeIntervalSec) * time.Second
}

func (c RegistryConfig) ProbeTimeout() time.Duration {
	return time.Duration(c.ProbeTimeoutMs) * time.Millisecond
}

// ProviderConfig 单个行情数据源配置
type ProviderConfig struct {
	BaseURL string `yaml:"base_url" json:"base_url"`
	APIKey  string `yaml:"api_key" json:"api_key"`
}

// AggregatorConfig 行情聚合配置
type AggregatorConfig struct {
	TimeoutMs   int            `yaml:"timeout_ms" json:"timeout_ms"`
	Dexscreener ProviderConfig `yaml:"dexscreener" json:"dexscreener"`
	Jupiter     ProviderConfig `yaml:"jupiter" json:"jupiter"`
	Birdeye     ProviderConfig `yaml:"birdeye" json:"birdeye"`
}

func (c AggregatorConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

// MonitorConfig 监控调度配置
type MonitorConfig struct {
	TickIntervalMs    int `yaml:"tick_interval_ms" json:"tick_interval_ms"`
	RefreshIntervalMs int `yaml:"refresh_interval_ms" json:"refresh_interval_ms"`
	CleanupDays       int `yaml:"cleanup_days" json:"cleanup_days"`
	CleanupHours      int `yaml:"cleanup_hours" json:"cleanup_hours"`
}

func (c MonitorConfig) TickInterval() time.Duration {
	return time.Duration(c.TickIntervalMs) * time.Millisecond
}

func (c MonitorConfig) RefreshInterval() time.Duration {
	return time.Duration(c.RefreshIntervalMs) * time.Millisecond
}

func (c MonitorConfig) CleanupRetention() time.Duration {
	return time.Duration(c.CleanupDays) * 24 * time.Hour
}

func (c MonitorConfig) CleanupInterval() time.Duration {
	return time.Duration(c.CleanupHours) * time.Hour
}

// DispatcherConfig 触发分发配置
type DispatcherConfig struct {
	Webhook WebhookConfig `yaml:"webhook" json:"webhook"`
	Kafka   KafkaConfig   `yaml:"kafka" json:"kafka"`
}

// WebhookConfig webhook通知配置
type WebhookConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	URL     string `yaml:"url" json:"url"`
}

// KafkaConfig 事件投递Kafka配置
type KafkaConfig struct {
	Enabled  bool                      `yaml:"enabled" json:"enabled"`
	Brokers  []string                  `yaml:"brokers" json:"brokers"`
	Topic    string                    `yaml:"topic" json:"topic"`
	Producer kafka.KafkaProducerConfig `yaml:"producer" json:"producer"`
}

// StorageConfig 存储后端配置
type StorageConfig struct {
	Backend string `yaml:"backend" json:"backend"` // memory / mysql
}

// RiskConfig 开发者风险评分权重
type RiskConfig struct {
	RuggerWeight  int `yaml:"rugger_weight" json:"rugger_weight"`
	SerialWeight  int `yaml:"serial_weight" json:"serial_weight"`
	BundledWeight int `yaml:"bundled_weight" json:"bundled_weight"`
	FreshWeight   int `yaml:"fresh_weight" json:"fresh_weight"`
}

// defaultConfig 缺省值，加载后与文件内容合并
func defaultConfig() *AppConfig {
	return &AppConfig{
		Logger: LoggerConfig{
			Output: "stdout",
			Level:  "info",
		},
		Registry: RegistryConfig{
			Endpoints: []EndpointConfig{
				{Name: "mainnet-beta", URL: "https://api.mainnet-beta.solana.com"},
				{Name: "serum", URL: "https://solana-api.projectserum.com"},
				{Name: "ankr", URL: "https://rpc.ankr.com/solana"},
			},
			ProbeIntervalSec: 30,
			ProbeTimeoutMs:   3000,
		},
		Aggregator: AggregatorConfig{
			TimeoutMs: 2000,
			Dexscreener: ProviderConfig{
				BaseURL: "https://api.dexscreener.com",
			},
			Jupiter: ProviderConfig{
				BaseURL: "https://price.jup.ag",
			},
			Birdeye: ProviderConfig{
				BaseURL: "https://public-api.birdeye.so",
			},
		},
		Monitor: MonitorConfig{
			TickIntervalMs:    500,
			RefreshIntervalMs: 1000,
			CleanupDays:       30,
			CleanupHours:      6,
		},
		Storage: StorageConfig{
			Backend: "memory",
		},
		Risk: RiskConfig{
			RuggerWeight:  40,
			SerialWeight:  30,
			BundledWeight: 20,
			FreshWeight:   10,
		},
	}
}

// Manager 配置管理器
type Manager struct {
	config *AppConfig
}

// NewManager 创建配置管理器
func NewManager() *Manager {
	return &Manager{}
}

// Load 加载配置文件并与缺省值合并
func (m *Manager) Load(configPath string) error {
	err := config.Load(configPath)
	if err != nil {
		return err
	}

	var appConfig AppConfig
	err = config.Scan(&appConfig)
	if err != nil {
		return err
	}

	// 文件里没写的字段用缺省值补齐
	if err := mergo.Merge(&appConfig, defaultConfig()); err != nil {
		return err
	}

	m.config = &appConfig
	return nil
}

// Reload 重新加载配置文件
func (m *Manager) Reload() error {
	if err := config.Reload(); err != nil {
		return err
	}

	var appConfig AppConfig
	if err := config.Scan(&appConfig); err != nil {
		return err
	}
	if err := mergo.Merge(&appConfig, defaultConfig()); err != nil {
		return err
	}

	m.config = &appConfig
	return nil
}

// GetAppConfig 获取应用配置
func (m *Manager) GetAppConfig() *AppConfig {
	return m.config
}

// GetRegistryConfig 获取端点池配置
func (m *Manager) GetRegistryConfig() RegistryConfig {
	return m.config.Registry
}

// GetAggregatorConfig 获取行情聚合配置
func (m *Manager) GetAggregatorConfig() AggregatorConfig {
	return m.config.Aggregator
}

// GetMonitorConfig 获取监控配置
func (m *Manager) GetMonitorConfig() MonitorConfig {
	return m.config.Monitor
}

// GetDispatcherConfig 获取分发配置
func (m *Manager) GetDispatcherConfig() DispatcherConfig {
	return m.config.Dispatcher
}

// GetDatabaseConfig 获取数据库配置
func (m *Manager) GetDatabaseConfig() mysqldb.MysqlConfig {
	return m.config.Database
}

// GetStorageConfig 获取存储后端配置
func (m *Manager) GetStorageConfig() StorageConfig {
	return m.config.Storage
}

// GetRiskConfig 获取风险评分权重
func (m *Manager) GetRiskConfig() RiskConfig {
	return m.config.Risk
}

// InitLogger 初始化日志系统
func (m *Manager) InitLogger() error {
	loggerConfig := logger.FromConfig("logger")
	loggerInstance := loggerConfig.Build()
	logger.SetDefault(loggerInstance)
	return nil
}
