package kafka

import (
	"fmt"
	"time"

	"github.com/IBM/sarama"

	"txledger/internal/config"
)

// Config holds Kafka producer configuration.
type Config struct {
	Brokers           []string
	ClientID          string
	EnableIdempotence bool
	CompressionType   string
	RequiredAcks      string
	MaxRetries        int
	RetryBackoff      time.Duration
	Topic             string
}

// NewConfigFromAppConfig builds a kafka.Config from the process config.
func NewConfigFromAppConfig(cfg config.KafkaConfig) *Config {
	return &Config{
		Brokers:           cfg.Brokers,
		ClientID:          cfg.ClientID,
		EnableIdempotence: cfg.EnableIdempotence,
		CompressionType:   cfg.CompressionType,
		RequiredAcks:      cfg.RequiredAcks,
		MaxRetries:        cfg.MaxRetries,
		RetryBackoff:      cfg.RetryBackoff,
		Topic:             cfg.Topic,
	}
}

// ToSaramaConfig converts to Sarama configuration.
func (c *Config) ToSaramaConfig() (*sarama.Config, error) {
	conf := sarama.NewConfig()

	conf.Producer.Return.Successes = true
	conf.Producer.Return.Errors = true
	conf.Producer.Idempotent = c.EnableIdempotence
	conf.Producer.Retry.Max = c.MaxRetries
	conf.Producer.Retry.Backoff = c.RetryBackoff

	if !c.EnableIdempotence {
		conf.Net.MaxOpenRequests = 10
	} else {
		// Sarama requires MaxOpenRequests=1 when idempotence is enabled.
		conf.Net.MaxOpenRequests = 1
	}

	conf.ChannelBufferSize = 100000
	conf.Producer.Flush.MaxMessages = 10000
	conf.Producer.Flush.Frequency = 500 * time.Millisecond
	conf.Producer.Flush.Messages = 1000

	switch c.RequiredAcks {
	case "all", "-1":
		conf.Producer.RequiredAcks = sarama.WaitForAll
	case "1":
		conf.Producer.RequiredAcks = sarama.WaitForLocal
	case "0":
		conf.Producer.RequiredAcks = sarama.NoResponse
	default:
		return nil, fmt.Errorf("invalid required acks value: %s", c.RequiredAcks)
	}

	switch c.CompressionType {
	case "none":
		conf.Producer.Compression = sarama.CompressionNone
	case "gzip":
		conf.Producer.Compression = sarama.CompressionGZIP
	case "snappy":
		conf.Producer.Compression = sarama.CompressionSnappy
	case "lz4":
		conf.Producer.Compression = sarama.CompressionLZ4
	case "zstd":
		conf.Producer.Compression = sarama.CompressionZSTD
	default:
		return nil, fmt.Errorf("invalid compression type: %s", c.CompressionType)
	}

	conf.ClientID = c.ClientID
	conf.Version = sarama.V3_0_0_0

	return conf, nil
}
