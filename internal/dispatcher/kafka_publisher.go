package dispatcher

import (
	"encoding/json"

	"github.com/ninja0404/sol-sniper/internal/model"
	"github.com/ninja0404/sol-sniper/pkg/mq/kafka"
)

// KafkaPublisher Kafka发布器，把触发事件投递到下游消费
type KafkaPublisher struct {
	producer *kafka.KafkaProducer
	topic    string
}

// NewKafkaPublisher 创建Kafka发布器
func NewKafkaPublisher(producer *kafka.KafkaProducer, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		producer: producer,
		topic:    topic,
	}
}

func (p *KafkaPublisher) GetType() string {
	return "kafka"
}

func (p *KafkaPublisher) Publish(event *model.TriggerEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	// 按代币地址分区，同一代币的事件保持有序
	return p.producer.SendMessageWithKey(p.topic, event.TokenAddress, data)
}

func (p *KafkaPublisher) Close() error {
	return nil
}
