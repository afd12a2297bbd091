// Package kafka publishes agent messages to and provisions agent inboxes on
// Apache Kafka.
package kafka

import (
	"errors"
	"fmt"
	"time"

	"github.com/IBM/sarama"

	"github.com/LaughingJackalope/agentrouter/internal/config"
)

// NewConfig returns the sarama configuration used by the producer and the
// cluster admin. Sends wait for all in-sync replicas.
func NewConfig(cfg config.KafkaConfig) *sarama.Config {
	sc := sarama.NewConfig()
	sc.Version = sarama.V2_5_0_0
	if cfg.ClientID != "" {
		sc.ClientID = cfg.ClientID
	}
	sc.Producer.RequiredAcks = sarama.WaitForAll
	sc.Producer.Retry.Max = 3
	sc.Producer.Retry.Backoff = 250 * time.Millisecond
	sc.Producer.Return.Errors = true
	sc.Producer.Return.Successes = true
	sc.Producer.Idempotent = true
	sc.Net.MaxOpenRequests = 1
	if cfg.ProducerTimeout > 0 {
		sc.Producer.Timeout = cfg.ProducerTimeout
	}
	return sc
}

// Dial connects a sync producer and a cluster admin to cfg.Brokers.
func Dial(cfg config.KafkaConfig) (sarama.SyncProducer, sarama.ClusterAdmin, error) {
	if len(cfg.Brokers) == 0 {
		return nil, nil, errors.New("kafka: at least one broker is required")
	}

	sc := NewConfig(cfg)

	producer, err := sarama.NewSyncProducer(cfg.Brokers, sc)
	if err != nil {
		return nil, nil, fmt.Errorf("kafka: create sync producer: %w", err)
	}

	admin, err := sarama.NewClusterAdmin(cfg.Brokers, sc)
	if err != nil {
		_ = producer.Close()
		return nil, nil, fmt.Errorf("kafka: create cluster admin: %w", err)
	}

	return producer, admin, nil
}
