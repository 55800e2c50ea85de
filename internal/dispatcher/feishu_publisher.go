package dispatcher

import (
	"fmt"
	"strings"

	"github.com/ninja0404/sol-sniper/internal/model"
	"github.com/ninja0404/sol-sniper/internal/notifier"
	"github.com/ninja0404/sol-sniper/pkg/utils"
)

// FeishuPublisher 飞书发布器
type FeishuPublisher struct {
	webhookURL string
}

// NewFeishuPublisher 创建飞书发布器
func NewFeishuPublisher(webhookURL string) *FeishuPublisher {
	return &FeishuPublisher{webhookURL: webhookURL}
}

func (p *FeishuPublisher) GetType() string {
	return "feishu"
}

func (p *FeishuPublisher) Publish(event *model.TriggerEvent) error {
	message := p.formatTriggerMessage(event)
	return notifier.SendToLark(message, p.webhookURL)
}

func (p *FeishuPublisher) Close() error {
	return nil
}

// formatTriggerMessage 格式化触发消息
func (p *FeishuPublisher) formatTriggerMessage(event *model.TriggerEvent) string {
	var sb strings.Builder

	sb.WriteString("🎯 狙击目标已触发\n")
	sb.WriteString(fmt.Sprintf("代币: %s (%s)\n", event.Symbol, utils.GetDisplayWalletAddress(event.TokenAddress)))
	sb.WriteString(fmt.Sprintf("触发条件: %s\n", strings.Join(event.Reasons, ", ")))
	sb.WriteString(fmt.Sprintf("当前价格: %s\n", utils.FormatPrice(event.PriceUsd.String())))

	if event.Volume24h.IsPositive() {
		sb.WriteString(fmt.Sprintf("24h交易量: %s\n", utils.FormatAmountWithDecimals(event.Volume24h.String(), 0)))
	}
	if event.MarketCap.IsPositive() {
		sb.WriteString(fmt.Sprintf("市值: %s\n", utils.FormatAmountWithDecimals(event.MarketCap.String(), 0)))
	}
	sb.WriteString(fmt.Sprintf("触发时间: %s", event.TriggeredAt.Format("2006-01-02 15:04:05")))

	return sb.String()
}
