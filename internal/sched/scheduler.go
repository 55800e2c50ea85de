package sched

import (
	"context"
	"sync"
	"time"

	"github.com/ninja0404/sol-sniper/pkg/logger"
	"github.com/ninja0404/sol-sniper/pkg/utils"
)

// task 一个命名的周期任务
type task struct {
	name     string
	interval time.Duration
	run      func(ctx context.Context)
}

// Scheduler 周期任务调度器。每个任务有独立的计时协程，
// 但所有回调通过共享互斥锁串行执行，回调之间不会并发
type Scheduler struct {
	mu    sync.Mutex // 串行化所有任务回调
	tasks []task

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
	logger  *logger.Logger
}

// NewScheduler 创建调度器
func NewScheduler() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		ctx:    ctx,
		cancel: cancel,
		logger: logger.Default().Named("sched"),
	}
}

// Add 注册周期任务，必须在Start之前调用
func (s *Scheduler) Add(name string, interval time.Duration, run func(ctx context.Context)) {
	s.tasks = append(s.tasks, task{name: name, interval: interval, run: run})
}

// Start 启动全部任务
func (s *Scheduler) Start() {
	if s.started {
		return
	}
	s.started = true

	for _, t := range s.tasks {
		s.wg.Add(1)
		go s.runLoop(t)
		s.logger.Info("✅ 已注册周期任务",
			logger.String("task", t.name),
			logger.String("interval", t.interval.String()))
	}
	s.logger.Info("🚀 调度器已启动", logger.Int("tasks", len(s.tasks)))
}

// Stop 停止全部任务并等待正在执行的回调结束
func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
	s.logger.Info("🛑 调度器已停止")
}

func (s *Scheduler) runLoop(t task) {
	defer s.wg.Done()

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.runOne(t)
		}
	}
}

// runOne 串行执行一次回调，panic只影响本次执行
func (s *Scheduler) runOne(t task) {
	s.mu.Lock()
	defer s.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("周期任务panic",
				logger.String("task", t.name),
				logger.Any("panic", r),
				logger.ByteString("stack", utils.GetStack()))
		}
	}()

	t.run(s.ctx)
}
