package executor

import (
	"context"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"

	"github.com/ninja0404/sol-sniper/internal/model"
	"github.com/ninja0404/sol-sniper/pkg/logger"
	"github.com/ninja0404/sol-sniper/pkg/utils"
)

// SnipeRequest 一次自动买入请求
type SnipeRequest struct {
	TokenAddress string
	AmountSol    decimal.Decimal
	SlippagePct  decimal.Decimal
	GasTier      model.GasTier
}

// Executor 狙击执行器。当前版本只做模拟执行，不上链
type Executor interface {
	// Execute 执行买入请求，返回尝试记录
	Execute(ctx context.Context, req *SnipeRequest) (*model.SnipeAttempt, error)
}

// 模拟报价的占位参数：路由固定走jupiter，产出和gas为占位估算
var (
	simulatedRoute       = "jupiter"
	simulatedOutPerSol   = decimal.NewFromInt(1000000)
	simulatedGasEstimate = decimal.NewFromFloat(0.001)
)

type simulatedExecutor struct {
	logger *logger.Logger
}

// NewSimulatedExecutor 创建模拟执行器
func NewSimulatedExecutor() Executor {
	return &simulatedExecutor{
		logger: logger.Default().Named("executor"),
	}
}

func (e *simulatedExecutor) Execute(ctx context.Context, req *SnipeRequest) (*model.SnipeAttempt, error) {
	attempt := &model.SnipeAttempt{
		ID:           utils.GenerateEventID(),
		TokenAddress: req.TokenAddress,
		AmountSol:    req.AmountSol,
		SlippagePct:  req.SlippagePct,
		GasTier:      req.GasTier,
		CreatedAt:    time.Now(),
	}

	mint, err := solana.PublicKeyFromBase58(req.TokenAddress)
	if err != nil {
		attempt.Status = "rejected"
		attempt.Detail = "invalid token address"
		return attempt, nil
	}

	if !req.AmountSol.IsPositive() {
		attempt.Status = "rejected"
		attempt.Detail = "amount must be positive"
		return attempt, nil
	}

	// 真实执行需要构建swap交易并签名发送，这里只记录模拟报价
	attempt.Status = "simulated"
	attempt.Route = simulatedRoute
	attempt.EstimatedOut = req.AmountSol.Mul(simulatedOutPerSol)
	attempt.GasEstimate = simulatedGasEstimate
	e.logger.Info("🎯 模拟执行狙击买入",
		logger.String("token", utils.GetDisplayWalletAddress(mint.String())),
		logger.String("amount_sol", req.AmountSol.String()),
		logger.String("gas_tier", string(req.GasTier)))
	return attempt, nil
}
