package kafka

import (
	"sync"

	"github.com/IBM/sarama"

	"github.com/ninja0404/sol-sniper/pkg/logger"
)

var defaultProducer *KafkaProducer

var startOnce sync.Once

func initKafka() {
	startOnce.Do(func() {
		sarama.Logger = NewLoggerKafka(logger.Default().Named("kafka-core"), LOGGER_INFO)
		sarama.DebugLogger = NewLoggerKafka(logger.Default().Named("kafka-core-debug"), LOGGER_DEBUG)
	})
}

func SetupKafkaProducer(brokers []string, cfg KafkaProducerConfig) error {
	initKafka()
	producer, err := NewKafkaProducer(brokers, cfg)
	if err != nil {
		return err
	}
	defaultProducer = producer
	return nil
}

func CloseProducer() error {
	if defaultProducer == nil {
		return nil
	}
	return defaultProducer.Close()
}

func SendMessage(topic string, value []byte) error {
	return defaultProducer.SendMessage(topic, value)
}

func SendMessageWithKey(topic string, key string, value []byte) error {
	return defaultProducer.SendMessageWithKey(topic, key, value)
}

func DefaultProducer() *KafkaProducer {
	return defaultProducer
}
