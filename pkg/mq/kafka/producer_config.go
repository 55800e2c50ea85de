package kafka

const (
	_  = iota
	KB = 1 << (10 * iota)
	MB = 1 << (10 * iota)
)

type KafkaProducerConfig struct {
	MessageMaxBytes   int    `json:"message_max_bytes" yaml:"message_max_bytes"`
	LingerMs          int    `json:"linger_ms" yaml:"linger_ms"`
	PartitionLingerMs int    `json:"partition_linger_ms" yaml:"partition_linger_ms"`
	RetryBackoffMs    int    `json:"retry_backoff_ms" yaml:"retry_backoff_ms"`
	RequiredAcks      int    `json:"required_acks" yaml:"required_acks"`
	ClientID          string `json:"client_id" yaml:"client_id"`

	SecurityProtocol string `json:"security_protocol" yaml:"security_protocol"`
	SaslUsername     string `json:"sasl_username" yaml:"sasl_username"`
	SaslPassword     string `json:"sasl_password" yaml:"sasl_password"`
	SaslMechanism    string `json:"sasl_mechanism" yaml:"sasl_mechanism"`
}
