package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/ninja0404/sol-sniper/internal/model"
	"github.com/ninja0404/sol-sniper/pkg/logger"
)

// getHealth 请求体，所有端点共用
var healthProbeBody = []byte(`{"jsonrpc":"2.0","id":1,"method":"getHealth"}`)

type healthProbeResp struct {
	Result string `json:"result"`
}

// Registry RPC端点池：维护端点健康状态，按延迟排序并给出最快可用端点
type Registry struct {
	mu        sync.RWMutex
	endpoints []*model.Endpoint

	client  *http.Client
	timeout time.Duration
	logger  *logger.Logger
}

// Option 端点池可选配置
type Option func(*Registry)

// WithHTTPClient 替换探测用的HTTP客户端
func WithHTTPClient(client *http.Client) Option {
	return func(r *Registry) {
		r.client = client
	}
}

// NewRegistry 创建端点池，endpoints顺序即为配置中的优先顺序
func NewRegistry(endpoints []model.Endpoint, probeTimeout time.Duration, opts ...Option) *Registry {
	r := &Registry{
		endpoints: make([]*model.Endpoint, 0, len(endpoints)),
		client:    &http.Client{Timeout: probeTimeout},
		timeout:   probeTimeout,
		logger:    logger.Default().Named("registry"),
	}
	for i := range endpoints {
		ep := endpoints[i]
		r.endpoints = append(r.endpoints, &ep)
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ProbeAll 并发探测所有端点并按延迟升序重排
func (r *Registry) ProbeAll(ctx context.Context) {
	r.mu.RLock()
	targets := make([]*model.Endpoint, len(r.endpoints))
	copy(targets, r.endpoints)
	r.mu.RUnlock()

	var wg sync.WaitGroup
	results := make([]model.Endpoint, len(targets))
	for i, ep := range targets {
		wg.Add(1)
		go func(idx int, ep *model.Endpoint) {
			defer wg.Done()
			results[idx] = r.probe(ctx, ep)
		}(i, ep)
	}
	wg.Wait()

	// 延迟升序，同延迟保持配置顺序
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].LatencyMs < results[j].LatencyMs
	})

	healthy := 0
	sorted := make([]*model.Endpoint, 0, len(results))
	for i := range results {
		ep := results[i]
		if ep.Healthy {
			healthy++
		}
		sorted = append(sorted, &ep)
	}

	r.mu.Lock()
	r.endpoints = sorted
	r.mu.Unlock()

	if healthy == 0 && len(sorted) > 0 {
		r.logger.Warn("⚠️ 所有RPC端点探测失败",
			logger.Int("total", len(sorted)))
	} else {
		r.logger.Debug("📡 RPC端点探测完成",
			logger.Int("healthy", healthy),
			logger.Int("total", len(sorted)))
	}
}

// probe 对单个端点发起getHealth探测，失败时延迟记为哨兵值
func (r *Registry) probe(ctx context.Context, ep *model.Endpoint) model.Endpoint {
	result := model.Endpoint{
		Name:      ep.Name,
		URL:       ep.URL,
		LatencyMs: model.UnreachableLatencyMs,
		Healthy:   false,
		CheckedAt: time.Now(),
	}

	probeCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(probeCtx, http.MethodPost, ep.URL, bytes.NewReader(healthProbeBody))
	if err != nil {
		return result
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := r.client.Do(req)
	if err != nil {
		r.logger.Debug("RPC端点探测失败",
			logger.String("endpoint", ep.Name),
			logger.FieldErr(err))
		return result
	}
	defer resp.Body.Close()

	latency := time.Since(start).Milliseconds()

	var body healthProbeResp
	if resp.StatusCode == http.StatusOK && json.NewDecoder(resp.Body).Decode(&body) == nil && body.Result == "ok" {
		result.LatencyMs = latency
		result.Healthy = true
	}
	return result
}

// Fastest 返回最快的健康端点；全部不健康时退回排序后的第一个
func (r *Registry) Fastest() *model.Endpoint {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.endpoints) == 0 {
		return nil
	}
	for _, ep := range r.endpoints {
		if ep.Healthy {
			snapshot := *ep
			return &snapshot
		}
	}
	snapshot := *r.endpoints[0]
	return &snapshot
}

// Snapshot 返回当前端点状态副本，按延迟升序
func (r *Registry) Snapshot() []model.Endpoint {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.Endpoint, 0, len(r.endpoints))
	for _, ep := range r.endpoints {
		out = append(out, *ep)
	}
	return out
}

// HealthyCount 当前健康端点数量
func (r *Registry) HealthyCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, ep := range r.endpoints {
		if ep.Healthy {
			n++
		}
	}
	return n
}
