package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate performs business-rule validation on the loaded configuration.
// All violations are reported together. Load calls it automatically.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be in 1..65535 (got %d)", c.Server.Port))
	}
	if c.Server.MaxBodyBytes <= 0 {
		errs = append(errs, fmt.Errorf("server.max_body_bytes must be > 0 (got %d)", c.Server.MaxBodyBytes))
	}

	if err := c.Bus.validate(); err != nil {
		errs = append(errs, fmt.Errorf("bus: %w", err))
	}

	if c.Router.LookupTimeout <= 0 {
		errs = append(errs, fmt.Errorf("router.lookup_timeout must be > 0 (got %s)", c.Router.LookupTimeout))
	}
	if c.Router.PublishTimeout <= 0 {
		errs = append(errs, fmt.Errorf("router.publish_timeout must be > 0 (got %s)", c.Router.PublishTimeout))
	}

	switch c.Health.Policy {
	case HealthPolicyReceiptOrder, HealthPolicyLatestTimestamp:
	default:
		errs = append(errs, fmt.Errorf("health.policy must be %q or %q (got %q)",
			HealthPolicyReceiptOrder, HealthPolicyLatestTimestamp, c.Health.Policy))
	}

	if strings.TrimSpace(c.Provisioning.ConsumerGroup) == "" {
		errs = append(errs, errors.New("provisioning.consumer_group is required"))
	}
	if c.Provisioning.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("provisioning.timeout must be > 0 (got %s)", c.Provisioning.Timeout))
	}

	if c.Dedup.Enabled {
		if c.Dedup.RedisAddr == "" {
			errs = append(errs, errors.New("dedup.redis_addr is required when dedup is enabled"))
		}
		if c.Dedup.TTL <= 0 {
			errs = append(errs, fmt.Errorf("dedup.ttl must be > 0 (got %s)", c.Dedup.TTL))
		}
	}

	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		errs = append(errs, fmt.Errorf("metrics.path must start with / (got %q)", c.Metrics.Path))
	}

	return errors.Join(errs...)
}

func (b *BusConfig) validate() error {
	switch b.Driver {
	case BusDriverPubSub:
		if b.PubSub.ProjectID == "" {
			return errors.New("pubsub.project_id is required for the pubsub driver")
		}
	case BusDriverKafka:
		if len(b.Kafka.Brokers) == 0 {
			return errors.New("kafka.brokers is required for the kafka driver")
		}
		if b.Kafka.Partitions <= 0 {
			return fmt.Errorf("kafka.partitions must be > 0 (got %d)", b.Kafka.Partitions)
		}
		if b.Kafka.ReplicationFactor <= 0 {
			return fmt.Errorf("kafka.replication_factor must be > 0 (got %d)", b.Kafka.ReplicationFactor)
		}
	default:
		return fmt.Errorf("driver must be %q or %q (got %q)", BusDriverPubSub, BusDriverKafka, b.Driver)
	}
	return nil
}
