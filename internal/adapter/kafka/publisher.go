package kafka

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/IBM/sarama"

	"github.com/LaughingJackalope/agentrouter/internal/domain"
)

// Publisher writes envelopes as Kafka records. The record key is the target
// address, the value is the envelope data and attributes become headers.
type Publisher struct {
	producer sarama.SyncProducer
}

// NewPublisher creates a Publisher on producer.
func NewPublisher(producer sarama.SyncProducer) *Publisher {
	return &Publisher{producer: producer}
}

type sendResult struct {
	partition int32
	offset    int64
	err       error
}

// Publish sends env to the topic inbox and returns "<topic>/<partition>/<offset>".
// If ctx ends first, the send keeps running in the background and an error
// is returned.
func (p *Publisher) Publish(ctx context.Context, inbox string, env domain.Envelope) (string, error) {
	if inbox == "" {
		return "", fmt.Errorf("%w: topic is required", domain.ErrPublish)
	}

	msg := &sarama.ProducerMessage{
		Topic:   inbox,
		Value:   sarama.StringEncoder(env.Data),
		Headers: toRecordHeaders(env.Attributes),
	}
	if key := env.Attributes[domain.AttrTargetAddress]; key != "" {
		msg.Key = sarama.StringEncoder(key)
	}

	done := make(chan sendResult, 1)
	go func() {
		partition, offset, err := p.producer.SendMessage(msg)
		done <- sendResult{partition: partition, offset: offset, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%w: send to %s: %w", domain.ErrPublish, inbox, ctx.Err())
	case res := <-done:
		if res.err != nil {
			return "", fmt.Errorf("%w: send to %s: %w", domain.ErrPublish, inbox, res.err)
		}
		return inbox + "/" + strconv.FormatInt(int64(res.partition), 10) + "/" + strconv.FormatInt(res.offset, 10), nil
	}
}

// Close closes the underlying producer.
func (p *Publisher) Close() error {
	return p.producer.Close()
}

// toRecordHeaders converts attributes to headers in key order.
func toRecordHeaders(attrs map[string]string) []sarama.RecordHeader {
	if len(attrs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]sarama.RecordHeader, 0, len(keys))
	for _, k := range keys {
		out = append(out, sarama.RecordHeader{Key: []byte(k), Value: []byte(attrs[k])})
	}
	return out
}
