package kafka

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/IBM/sarama"

	"github.com/LaughingJackalope/agentrouter/internal/domain"
)

type clusterAdmin interface {
	CreateTopic(topic string, detail *sarama.TopicDetail, validateOnly bool) error
	DescribeTopics(topics []string) ([]*sarama.TopicMetadata, error)
}

// Provisioner creates inbox topics. Kafka has no broker-side subscriptions:
// consumer groups appear when consumers join, and ack deadlines and delivery
// attempts are consumer settings.
type Provisioner struct {
	admin             clusterAdmin
	partitions        int32
	replicationFactor int16
}

// NewProvisioner creates a Provisioner. Non-positive sizes fall back to 1.
func NewProvisioner(admin clusterAdmin, partitions int32, replicationFactor int16) *Provisioner {
	if partitions <= 0 {
		partitions = 1
	}
	if replicationFactor <= 0 {
		replicationFactor = 1
	}
	return &Provisioner{
		admin:             admin,
		partitions:        partitions,
		replicationFactor: replicationFactor,
	}
}

// EnsureTopic creates the topic name with seven days of retention unless it
// exists.
func (p *Provisioner) EnsureTopic(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	retention := strconv.FormatInt(domain.DefaultRetention.Milliseconds(), 10)
	err := p.admin.CreateTopic(name, &sarama.TopicDetail{
		NumPartitions:     p.partitions,
		ReplicationFactor: p.replicationFactor,
		ConfigEntries: map[string]*string{
			"retention.ms": &retention,
		},
	}, false)
	if err != nil && !topicExists(err) {
		return fmt.Errorf("create topic %s: %w", name, err)
	}
	return nil
}

// EnsureSubscription checks that the inbox topic and its dead-letter topic
// exist.
func (p *Provisioner) EnsureSubscription(ctx context.Context, spec domain.SubscriptionSpec) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	topics := []string{spec.Topic}
	if spec.DeadLetterTopic != "" {
		topics = append(topics, spec.DeadLetterTopic)
	}

	meta, err := p.admin.DescribeTopics(topics)
	if err != nil {
		return fmt.Errorf("describe topics for %s: %w", spec.Name, err)
	}
	for _, m := range meta {
		if m.Err != sarama.ErrNoError {
			return fmt.Errorf("subscription %s: topic %s: %w", spec.Name, m.Name, m.Err)
		}
	}
	if len(meta) != len(topics) {
		return fmt.Errorf("subscription %s: expected %d topics, broker described %d", spec.Name, len(topics), len(meta))
	}
	return nil
}

func topicExists(err error) bool {
	var te *sarama.TopicError
	if errors.As(err, &te) {
		return te.Err == sarama.ErrTopicAlreadyExists
	}
	return errors.Is(err, sarama.ErrTopicAlreadyExists)
}
