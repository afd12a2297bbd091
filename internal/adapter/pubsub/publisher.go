// Package pubsub publishes agent messages to and provisions agent inboxes on
// Google Cloud Pub/Sub.
package pubsub

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"cloud.google.com/go/pubsub"
	"google.golang.org/api/option"

	"github.com/LaughingJackalope/agentrouter/internal/domain"
)

// NewClient connects to Pub/Sub for projectID. PUBSUB_EMULATOR_HOST, when
// set in the environment, is honoured by the client library.
func NewClient(ctx context.Context, projectID string, opts ...option.ClientOption) (*pubsub.Client, error) {
	if projectID == "" {
		return nil, fmt.Errorf("pubsub: project id is required")
	}
	client, err := pubsub.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("pubsub: new client: %w", err)
	}
	return client, nil
}

// Publisher publishes envelopes to topics. Topic handles are created once and
// reused; Close flushes and stops them.
type Publisher struct {
	client *pubsub.Client

	mu     sync.Mutex
	topics map[string]*pubsub.Topic
}

// NewPublisher creates a Publisher on client.
func NewPublisher(client *pubsub.Client) *Publisher {
	return &Publisher{
		client: client,
		topics: make(map[string]*pubsub.Topic),
	}
}

// Publish sends env to inbox and waits for the server to acknowledge it.
// inbox is a topic ID or a fully qualified projects/<p>/topics/<t> name.
// Returns the server-assigned message ID.
func (p *Publisher) Publish(ctx context.Context, inbox string, env domain.Envelope) (string, error) {
	topic, err := p.topic(inbox)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrPublish, err)
	}

	res := topic.Publish(ctx, &pubsub.Message{
		Data:       []byte(env.Data),
		Attributes: env.Attributes,
	})
	id, err := res.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: publish to %s: %w", domain.ErrPublish, inbox, err)
	}
	return id, nil
}

// Close stops all cached topic handles, flushing pending messages.
func (p *Publisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for name, t := range p.topics {
		t.Stop()
		delete(p.topics, name)
	}
}

func (p *Publisher) topic(inbox string) (*pubsub.Topic, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if t, ok := p.topics[inbox]; ok {
		return t, nil
	}

	project, id, err := parseTopic(inbox)
	if err != nil {
		return nil, err
	}

	var t *pubsub.Topic
	if project == "" {
		t = p.client.Topic(id)
	} else {
		t = p.client.TopicInProject(id, project)
	}
	p.topics[inbox] = t
	return t, nil
}

// parseTopic splits a topic reference into project and topic ID. A bare ID
// yields an empty project.
func parseTopic(inbox string) (project, id string, err error) {
	inbox = strings.TrimSpace(inbox)
	if inbox == "" {
		return "", "", fmt.Errorf("empty topic name")
	}
	if !strings.HasPrefix(inbox, "projects/") {
		return "", inbox, nil
	}

	parts := strings.Split(inbox, "/")
	if len(parts) != 4 || parts[2] != "topics" || parts[1] == "" || parts[3] == "" {
		return "", "", fmt.Errorf("malformed topic name %q", inbox)
	}
	return parts[1], parts[3], nil
}
