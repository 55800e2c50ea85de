package reputation

import (
	"context"
	"time"

	"github.com/ninja0404/sol-sniper/internal/model"
)

// Provider 开发者信誉评估
type Provider interface {
	// Evaluate 评估代币创建者的风险
	Evaluate(ctx context.Context, creator string) (*model.Reputation, error)
}

// Signals 链上行为信号，由外部数据源提供
type Signals struct {
	SerialCreator  bool // 短期内批量发币
	BundledFunding bool // 捆绑交易资金来源
	FreshWallet    bool // 新钱包(不足7天)
}

// SignalSource 链上信号查询接口
type SignalSource interface {
	Lookup(ctx context.Context, creator string) (Signals, error)
}

// Weights 风险评分权重，总和应为100
type Weights struct {
	Rugger  int
	Serial  int
	Bundled int
	Fresh   int
}

// DefaultWeights 默认权重
func DefaultWeights() Weights {
	return Weights{Rugger: 40, Serial: 30, Bundled: 20, Fresh: 10}
}

// staticProvider 基于静态黑白名单加链上信号的评估器
type staticProvider struct {
	ruggers map[string]struct{}
	legit   map[string]struct{}
	weights Weights
	signals SignalSource
}

// Option 评估器可选配置
type Option func(*staticProvider)

// WithSignalSource 注入链上信号数据源
func WithSignalSource(src SignalSource) Option {
	return func(p *staticProvider) {
		p.signals = src
	}
}

// WithWeights 覆盖默认评分权重
func WithWeights(w Weights) Option {
	return func(p *staticProvider) {
		p.weights = w
	}
}

// NewProvider 创建评估器，黑白名单在包内维护
func NewProvider(opts ...Option) Provider {
	p := &staticProvider{
		ruggers: knownRuggers(),
		legit:   knownLegitDevs(),
		weights: DefaultWeights(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *staticProvider) Evaluate(ctx context.Context, creator string) (*model.Reputation, error) {
	rep := &model.Reputation{
		Creator:     creator,
		EvaluatedAt: time.Now(),
	}

	// 黑名单命中直接定为最高风险
	if _, ok := p.ruggers[creator]; ok {
		rep.KnownRugger = true
		rep.Score = 100
		rep.Level = model.RiskCritical
		rep.Flags = append(rep.Flags, "known_rugger")
		return rep, nil
	}

	// 白名单命中视为低风险
	if _, ok := p.legit[creator]; ok {
		rep.KnownLegit = true
		rep.Score = 0
		rep.Level = model.RiskLow
		return rep, nil
	}

	if p.signals == nil {
		// 没有信号源时给中性评分
		rep.Score = 50
		rep.Level = model.RiskMedium
		return rep, nil
	}

	sig, err := p.signals.Lookup(ctx, creator)
	if err != nil {
		return nil, err
	}

	score := 0
	if sig.SerialCreator {
		score += p.weights.Serial
		rep.Flags = append(rep.Flags, "serial_creator")
	}
	if sig.BundledFunding {
		score += p.weights.Bundled
		rep.Flags = append(rep.Flags, "bundled_funding")
	}
	if sig.FreshWallet {
		score += p.weights.Fresh
		rep.Flags = append(rep.Flags, "fresh_wallet")
	}

	rep.Score = score
	rep.Level = levelForScore(score)
	return rep, nil
}

func levelForScore(score int) model.RiskLevel {
	switch {
	case score >= 70:
		return model.RiskCritical
	case score >= 40:
		return model.RiskHigh
	case score >= 20:
		return model.RiskMedium
	default:
		return model.RiskLow
	}
}
