package aggregator

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/pkg/errors"

	"github.com/ninja0404/sol-sniper/internal/model"
)

// Provider 单一行情数据源
type Provider interface {
	// Name 数据源名称
	Name() string
	// Fetch 拉取指定代币的行情快照
	Fetch(ctx context.Context, tokenAddress string) (*model.MarketReading, error)
}

// doGet 发起GET请求并返回响应体，非200直接报错
func doGet(ctx context.Context, client *http.Client, url string, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read response body")
	}
	return body, nil
}

func wrapProviderErr(name string, err error) error {
	return fmt.Errorf("provider %s: %w", name, err)
}
