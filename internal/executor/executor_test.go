package executor

import (
	"context"
	"os"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/ninja0404/sol-sniper/internal/model"
	"github.com/ninja0404/sol-sniper/pkg/logger"
)

func TestMain(m *testing.M) {
	cfg := &logger.Config{Output: "stdout", Level: "error", Discard: true, DisableSentry: true}
	logger.SetDefault(cfg.Build())
	os.Exit(m.Run())
}

func TestExecuteSimulatesValidRequest(t *testing.T) {
	e := NewSimulatedExecutor()

	attempt, err := e.Execute(context.Background(), &SnipeRequest{
		TokenAddress: "So11111111111111111111111111111111111111112",
		AmountSol:    decimal.NewFromFloat(0.1),
		SlippagePct:  decimal.NewFromInt(5),
		GasTier:      model.GasFast,
	})
	require.NoError(t, err)
	require.Equal(t, "simulated", attempt.Status)
	require.NotEmpty(t, attempt.ID)
	require.True(t, attempt.AmountSol.Equal(decimal.NewFromFloat(0.1)))
	require.Equal(t, model.GasFast, attempt.GasTier)
	require.False(t, attempt.CreatedAt.IsZero())

	// 模拟报价信息
	require.Equal(t, "jupiter", attempt.Route)
	require.True(t, attempt.EstimatedOut.Equal(decimal.NewFromInt(100000)))
	require.True(t, attempt.GasEstimate.Equal(decimal.NewFromFloat(0.001)))
}

func TestExecuteRejectsInvalidAddress(t *testing.T) {
	e := NewSimulatedExecutor()

	attempt, err := e.Execute(context.Background(), &SnipeRequest{
		TokenAddress: "not-a-solana-address",
		AmountSol:    decimal.NewFromFloat(0.1),
	})
	require.NoError(t, err)
	require.Equal(t, "rejected", attempt.Status)
	require.Equal(t, "invalid token address", attempt.Detail)
}

func TestExecuteRejectsNonPositiveAmount(t *testing.T) {
	e := NewSimulatedExecutor()

	attempt, err := e.Execute(context.Background(), &SnipeRequest{
		TokenAddress: "So11111111111111111111111111111111111111112",
		AmountSol:    decimal.Zero,
	})
	require.NoError(t, err)
	require.Equal(t, "rejected", attempt.Status)
	require.Equal(t, "amount must be positive", attempt.Detail)
}
