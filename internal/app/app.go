package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/ninja0404/sol-sniper/internal/aggregator"
	"github.com/ninja0404/sol-sniper/internal/config"
	"github.com/ninja0404/sol-sniper/internal/detect"
	"github.com/ninja0404/sol-sniper/internal/dispatcher"
	"github.com/ninja0404/sol-sniper/internal/executor"
	"github.com/ninja0404/sol-sniper/internal/model"
	"github.com/ninja0404/sol-sniper/internal/monitor"
	"github.com/ninja0404/sol-sniper/internal/registry"
	"github.com/ninja0404/sol-sniper/internal/reputation"
	"github.com/ninja0404/sol-sniper/internal/sched"
	"github.com/ninja0404/sol-sniper/internal/store"
	pkgconfig "github.com/ninja0404/sol-sniper/pkg/config"
	"github.com/ninja0404/sol-sniper/pkg/database/mysqldb"
	"github.com/ninja0404/sol-sniper/pkg/logger"
	"github.com/ninja0404/sol-sniper/pkg/mq/kafka"
	"github.com/ninja0404/sol-sniper/pkg/utils"
)

// 状态持久化和探测任务的节奏
const (
	persistInterval = 30 * time.Second
)

// Application Solana代币狙击监控应用
type Application struct {
	configManager *config.Manager

	kv         store.KV
	settings   *store.SettingsStore
	history    *store.HistoryStore
	registry   *registry.Registry
	engine     *monitor.Engine
	dispatcher *dispatcher.Manager
	reputation reputation.Provider
	scheduler  *sched.Scheduler

	configWatcher *pkgconfig.Watcher
	kafkaEnabled  bool
	mysqlEnabled  bool
}

// New 创建应用实例
func New() *Application {
	return &Application{
		configManager: config.NewManager(),
	}
}

// Start 初始化并运行应用，阻塞到收到终止信号
func (app *Application) Start(configPath string) error {
	if err := app.Initialize(configPath); err != nil {
		return err
	}
	return app.Run()
}

// Initialize 初始化应用
func (app *Application) Initialize(configPath string) error {
	// 1. 加载配置
	if err := app.configManager.Load(configPath); err != nil {
		return err
	}

	// 2. 初始化日志系统
	if err := app.configManager.InitLogger(); err != nil {
		return err
	}
	logger.Info("🚀 代币狙击监控服务初始化开始", logger.String("config_path", configPath))

	// 3. 初始化存储
	if err := app.initStorage(); err != nil {
		return err
	}

	// 4. RPC端点池
	app.initRegistry()

	// 5. 触发分发器
	if err := app.initDispatcher(); err != nil {
		return err
	}

	// 6. 监控引擎
	app.initEngine()

	// 7. 开发者信誉评估
	app.reputation = reputation.NewProvider(
		reputation.WithWeights(app.riskWeights()))

	// 8. 恢复上次会话的监控状态
	if err := app.restoreState(); err != nil {
		logger.Warn("⚠️ 恢复监控状态失败", logger.FieldErr(err))
	}

	// 9. 周期任务
	app.initScheduler()

	// 10. 配置热更新
	watcher, err := pkgconfig.Watch(configPath, app.onConfigChange)
	if err != nil {
		logger.Warn("⚠️ 配置热更新监听启动失败", logger.FieldErr(err))
	} else {
		app.configWatcher = watcher
	}

	logger.Info("✅ 代币狙击监控服务初始化完成")
	return nil
}

// initStorage 按配置选择存储后端
func (app *Application) initStorage() error {
	backend := app.configManager.GetStorageConfig().Backend
	switch backend {
	case "mysql":
		if err := mysqldb.SetupDatabaseFromDefaultConfig(); err != nil {
			return err
		}
		db, err := mysqldb.GetDb()
		if err != nil {
			return err
		}
		kv, err := store.NewMysqlKV(db)
		if err != nil {
			return err
		}
		app.kv = kv
		app.mysqlEnabled = true
		logger.Info("📊 存储后端: MySQL")
	case "memory", "":
		app.kv = store.NewMemoryKV()
		logger.Info("📊 存储后端: 内存")
	default:
		return errors.Errorf("未知的存储后端: %s", backend)
	}

	app.settings = store.NewSettingsStore(app.kv)
	app.history = store.NewHistoryStore(app.kv)
	return nil
}

// initRegistry 从配置创建RPC端点池
func (app *Application) initRegistry() {
	cfg := app.configManager.GetRegistryConfig()
	endpoints := make([]model.Endpoint, 0, len(cfg.Endpoints))
	for _, ep := range cfg.Endpoints {
		endpoints = append(endpoints, model.Endpoint{Name: ep.Name, URL: ep.URL})
	}
	app.registry = registry.NewRegistry(endpoints, cfg.ProbeTimeout())
	logger.Info("🌐 已配置RPC端点池", logger.Int("endpoints", len(endpoints)))
}

// initDispatcher 创建分发器并按配置注册发布器
func (app *Application) initDispatcher() error {
	app.dispatcher = dispatcher.NewManager(app.history, app.settings, executor.NewSimulatedExecutor())
	app.dispatcher.AddPublisher(&dispatcher.LogPublisher{})

	cfg := app.configManager.GetDispatcherConfig()
	if cfg.Webhook.Enabled {
		if cfg.Webhook.URL != "" {
			app.dispatcher.AddPublisher(dispatcher.NewFeishuPublisher(cfg.Webhook.URL))
		} else {
			logger.Warn("⚠️ webhook发布器缺少URL配置")
		}
	}

	if cfg.Kafka.Enabled {
		if err := kafka.SetupKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.Producer); err != nil {
			return errors.Wrap(err, "init kafka producer")
		}
		app.kafkaEnabled = true
		app.dispatcher.AddPublisher(dispatcher.NewKafkaPublisher(kafka.DefaultProducer(), cfg.Kafka.Topic))
	}

	return app.dispatcher.Start()
}

// initEngine 创建监控引擎和行情聚合器
func (app *Application) initEngine() {
	aggCfg := app.configManager.GetAggregatorConfig()
	providers := []aggregator.Provider{
		aggregator.NewDexscreenerProvider(aggCfg.Dexscreener.BaseURL, aggCfg.Timeout()),
		aggregator.NewBirdeyeProvider(aggCfg.Birdeye.BaseURL, aggCfg.Birdeye.APIKey, aggCfg.Timeout()),
		aggregator.NewJupiterProvider(aggCfg.Jupiter.BaseURL, aggCfg.Timeout()),
	}
	agg := aggregator.NewAggregator(providers, aggCfg.Timeout())

	monCfg := app.configManager.GetMonitorConfig()
	app.engine = monitor.NewEngine(agg, app.dispatcher, monCfg.RefreshInterval())
	logger.Info("🎯 监控引擎已就绪",
		logger.String("tick_interval", monCfg.TickInterval().String()),
		logger.String("refresh_interval", monCfg.RefreshInterval().String()))
}

// initScheduler 注册全部周期任务
func (app *Application) initScheduler() {
	monCfg := app.configManager.GetMonitorConfig()
	regCfg := app.configManager.GetRegistryConfig()

	app.scheduler = sched.NewScheduler()
	app.scheduler.Add("monitor-tick", monCfg.TickInterval(), app.engine.Tick)
	app.scheduler.Add("endpoint-probe", regCfg.ProbeInterval(), app.registry.ProbeAll)
	app.scheduler.Add("state-persist", persistInterval, app.persistState)
	app.scheduler.Add("history-cleanup", monCfg.CleanupInterval(), func(ctx context.Context) {
		cutoff := time.Now().Add(-monCfg.CleanupRetention())
		removed, err := app.history.PruneOlderThan(ctx, cutoff)
		if err != nil {
			logger.Error("清理历史记录失败", logger.FieldErr(err))
			return
		}
		if removed > 0 {
			logger.Info("🧹 已清理过期历史记录", logger.Int("removed", removed))
		}
	})
}

// restoreState 恢复上次会话持久化的目标和监控开关
func (app *Application) restoreState() error {
	ctx := context.Background()

	targets, err := app.settings.LoadTargets(ctx)
	if err != nil {
		return err
	}
	if len(targets) > 0 {
		app.engine.RestoreTargets(targets)
	}

	active, err := app.settings.LoadMonitorActive(ctx)
	if err != nil {
		return err
	}
	if active {
		app.engine.Start()
	}
	return nil
}

// persistState 把目标列表和监控开关写入存储
func (app *Application) persistState(ctx context.Context) {
	if err := app.settings.SaveTargets(ctx, app.engine.Targets()); err != nil {
		logger.Error("持久化监控目标失败", logger.FieldErr(err))
	}
	if err := app.settings.SaveMonitorActive(ctx, app.engine.IsActive()); err != nil {
		logger.Error("持久化监控开关失败", logger.FieldErr(err))
	}
}

// onConfigChange 配置文件变更时重新加载
func (app *Application) onConfigChange() {
	if err := app.configManager.Reload(); err != nil {
		logger.Error("⚠️ 配置重载失败", logger.FieldErr(err))
		return
	}
	logger.Info("🔄 配置已重载")
}

// Run 运行应用，阻塞到收到终止信号
func (app *Application) Run() error {
	// 启动前先探测一轮，保证Fastest有数据
	app.registry.ProbeAll(context.Background())

	app.scheduler.Start()

	logger.Info("🔥 代币狙击监控服务已启动")
	app.waitForShutdown()
	return nil
}

// Engine 监控引擎入口，供外部接入层调用
func (app *Application) Engine() *monitor.Engine {
	return app.engine
}

// Registry RPC端点池入口
func (app *Application) Registry() *registry.Registry {
	return app.registry
}

// Settings 设置存储入口
func (app *Application) Settings() *store.SettingsStore {
	return app.settings
}

// History 历史记录存储入口
func (app *Application) History() *store.HistoryStore {
	return app.history
}

// Status 应用运行状态快照
type Status struct {
	Active             bool             `json:"active"`
	TargetCount        int              `json:"target_count"`
	Sources            []model.Endpoint `json:"sources"`
	AutoTriggerEnabled bool             `json:"auto_trigger_enabled"`
}

// GetStatus 汇总监控开关、目标数量、RPC端点健康和自动执行开关
func (app *Application) GetStatus(ctx context.Context) (*Status, error) {
	settings, err := app.settings.GetSnipeSettings(ctx)
	if err != nil {
		return nil, err
	}
	return &Status{
		Active:             app.engine.IsActive(),
		TargetCount:        len(app.engine.Targets()),
		Sources:            app.registry.Snapshot(),
		AutoTriggerEnabled: settings.Enabled,
	}, nil
}

// TrackToken 校验地址后添加监控目标。
// 未显式指定的阈值回落到设置里按代币配置的目标价和交易量
func (app *Application) TrackToken(tokenAddress string, cfg monitor.TargetConfig) (*model.Target, error) {
	if !detect.IsValidTokenAddress(tokenAddress) {
		return nil, errors.Errorf("无效的代币地址: %s", tokenAddress)
	}

	if cfg.TargetPrice.IsZero() || cfg.TargetVolume.IsZero() {
		if settings, err := app.settings.GetSnipeSettings(context.Background()); err == nil {
			if cfg.TargetPrice.IsZero() {
				if v, ok := settings.PriceTargets[tokenAddress]; ok {
					cfg.TargetPrice = v
				}
			}
			if cfg.TargetVolume.IsZero() {
				if v, ok := settings.VolumeThresholds[tokenAddress]; ok {
					cfg.TargetVolume = v
				}
			}
		}
	}
	return app.engine.AddTarget(tokenAddress, cfg), nil
}

// CheckCreator 评估代币创建者风险并交给分发器处理
func (app *Application) CheckCreator(ctx context.Context, tokenAddress string, creator string) (*model.Reputation, error) {
	rep, err := app.reputation.Evaluate(ctx, creator)
	if err != nil {
		return nil, err
	}

	detail := ""
	if len(rep.Flags) > 0 {
		detail = rep.Flags[0]
	}
	app.dispatcher.HandleRisk(ctx, &model.DetectionRecord{
		ID:           utils.GenerateEventID(),
		TokenAddress: tokenAddress,
		Creator:      creator,
		RiskLevel:    rep.Level,
		RiskScore:    rep.Score,
		Detail:       detail,
		CreatedAt:    time.Now(),
	})
	return rep, nil
}

// QuickSnipe 跳过触发条件立即执行买入，同时把代币加入监控并打开自动执行开关。
// amount不为正时用全局设置的数量
func (app *Application) QuickSnipe(ctx context.Context, tokenAddress string, amount decimal.Decimal) (*model.SnipeAttempt, error) {
	if !detect.IsValidTokenAddress(tokenAddress) {
		return nil, errors.Errorf("无效的代币地址: %s", tokenAddress)
	}

	app.engine.AddTarget(tokenAddress, monitor.TargetConfig{
		AutoSnipe: true,
		AmountSol: amount,
	})
	return app.dispatcher.QuickSnipe(ctx, tokenAddress, amount)
}

// HandleTokenDetection 处理抓取到的新代币：先评估创建者风险并记录，
// 已知跑路开发者不会自动加入监控
func (app *Application) HandleTokenDetection(ctx context.Context, tokenAddress string, creator string, cfg monitor.TargetConfig) (*model.Reputation, *model.Target, error) {
	rep, err := app.CheckCreator(ctx, tokenAddress, creator)
	if err != nil {
		return nil, nil, err
	}

	if rep.KnownRugger {
		logger.Warn("🚫 已知跑路开发者，跳过自动加入监控",
			logger.String("token", utils.GetDisplayWalletAddress(tokenAddress)),
			logger.String("creator", utils.GetDisplayWalletAddress(creator)))
		return rep, nil, nil
	}

	target, err := app.TrackToken(tokenAddress, cfg)
	if err != nil {
		return rep, nil, err
	}
	return rep, target, nil
}

// UpdateSnipeSettings 更新狙击设置
func (app *Application) UpdateSnipeSettings(ctx context.Context, patch *model.SnipeSettingsPatch) (*model.SnipeSettings, error) {
	return app.settings.UpdateSnipeSettings(ctx, patch)
}

// waitForShutdown 等待关闭信号
func (app *Application) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	logger.Info("📤 收到终止信号，开始优雅关闭应用...", logger.String("signal", sig.String()))

	app.Shutdown()
}

// Shutdown 优雅关闭应用
func (app *Application) Shutdown() {
	logger.Info("🛑 开始关闭代币狙击监控服务...")

	if app.configWatcher != nil {
		if err := app.configWatcher.Close(); err != nil {
			logger.Error("关闭配置监听失败", logger.FieldErr(err))
		}
	}

	app.scheduler.Stop()

	// 落盘最终状态
	app.persistState(context.Background())

	if err := app.dispatcher.Stop(); err != nil {
		logger.Error("停止分发管理器失败", logger.FieldErr(err))
	}

	if app.kafkaEnabled {
		if err := kafka.CloseProducer(); err != nil {
			logger.Error("关闭Kafka生产者失败", logger.FieldErr(err))
		}
	}

	if app.mysqlEnabled {
		if err := mysqldb.Stop(); err != nil {
			logger.Error("关闭数据库连接失败", logger.FieldErr(err))
		}
	} else if err := app.kv.Close(); err != nil {
		logger.Error("关闭存储失败", logger.FieldErr(err))
	}

	logger.Info("👋 代币狙击监控服务已退出")
	logger.Close()
}

// riskWeights 把配置权重转换为评估器权重
func (app *Application) riskWeights() reputation.Weights {
	cfg := app.configManager.GetRiskConfig()
	return reputation.Weights{
		Rugger:  cfg.RuggerWeight,
		Serial:  cfg.SerialWeight,
		Bundled: cfg.BundledWeight,
		Fresh:   cfg.FreshWeight,
	}
}
