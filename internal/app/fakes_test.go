package app

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/LaughingJackalope/agentrouter/internal/domain"
)

// ---------------------------------------------------------------------------
// memStore: in-memory MappingStore and TxRunner
// ---------------------------------------------------------------------------

type memStore struct {
	mu   sync.Mutex
	rows map[string]domain.AgentMapping
	// txMu serializes transactions the way the row lock does in postgres.
	txMu sync.Mutex
}

var (
	_ MappingStore = &memStore{}
	_ TxRunner     = &memStore{}
)

func newMemStore() *memStore {
	return &memStore{rows: make(map[string]domain.AgentMapping)}
}

func (s *memStore) seed(m domain.AgentMapping) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[m.Address] = m
}

func (s *memStore) has(address string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.rows[address]
	return ok
}

func (s *memStore) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return fn(ctx)
}

func (s *memStore) Create(_ context.Context, m *domain.AgentMapping) (*domain.AgentMapping, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[m.Address]; ok {
		return nil, fmt.Errorf("agent_mapping %s: %w", m.Address, domain.ErrAlreadyExists)
	}
	s.rows[m.Address] = *m
	out := *m
	return &out, nil
}

func (s *memStore) GetByAddress(_ context.Context, address string) (*domain.AgentMapping, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.rows[address]
	if !ok {
		return nil, fmt.Errorf("agent_mapping %s: %w", address, domain.ErrNotFound)
	}
	return &m, nil
}

func (s *memStore) GetByAddressForUpdate(ctx context.Context, address string) (*domain.AgentMapping, error) {
	return s.GetByAddress(ctx, address)
}

func (s *memStore) Update(_ context.Context, address string, patch domain.MappingPatch, updatedAt time.Time, updatedBy *string) (*domain.AgentMapping, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.rows[address]
	if !ok {
		return nil, fmt.Errorf("agent_mapping %s: %w", address, domain.ErrNotFound)
	}
	m = patch.Apply(m)
	m.LastUpdatedAt = updatedAt
	m.UpdatedBy = updatedBy
	s.rows[address] = m
	return &m, nil
}

func (s *memStore) Delete(_ context.Context, address string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[address]; !ok {
		return fmt.Errorf("agent_mapping %s: %w", address, domain.ErrNotFound)
	}
	delete(s.rows, address)
	return nil
}

func (s *memStore) List(_ context.Context, f domain.MappingFilter) ([]*domain.AgentMapping, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var all []*domain.AgentMapping
	for _, m := range s.rows {
		if f.Status != nil && m.Status != *f.Status {
			continue
		}
		if f.OwnerTeam != nil && (m.OwnerTeam == nil || *m.OwnerTeam != *f.OwnerTeam) {
			continue
		}
		all = append(all, &m)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Address < all[j].Address })

	total := len(all)
	if f.Offset >= total {
		return nil, total, nil
	}
	end := min(f.Offset+f.Limit, total)
	return all[f.Offset:end], total, nil
}

// ---------------------------------------------------------------------------
// memBus: in-memory Publisher and BusAdmin
// ---------------------------------------------------------------------------

type published struct {
	Inbox    string
	Envelope domain.Envelope
}

type memBus struct {
	mu            sync.Mutex
	topics        map[string]bool
	subscriptions map[string]domain.SubscriptionSpec
	published     []published
	failTopics    bool
}

var (
	_ Publisher = &memBus{}
	_ BusAdmin  = &memBus{}
)

func newMemBus() *memBus {
	return &memBus{
		topics:        make(map[string]bool),
		subscriptions: make(map[string]domain.SubscriptionSpec),
	}
}

func (b *memBus) EnsureTopic(_ context.Context, name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failTopics {
		return fmt.Errorf("create topic %s: permission denied", name)
	}
	b.topics[name] = true
	return nil
}

func (b *memBus) EnsureSubscription(_ context.Context, spec domain.SubscriptionSpec) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscriptions[spec.Name] = spec
	return nil
}

func (b *memBus) Publish(_ context.Context, inbox string, env domain.Envelope) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.published = append(b.published, published{Inbox: inbox, Envelope: env})
	return fmt.Sprintf("bus-%d", len(b.published)), nil
}

func (b *memBus) publishes() []published {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]published(nil), b.published...)
}

func (b *memBus) setFailTopics(v bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failTopics = v
}

type okPinger struct{}

func (okPinger) Ping(context.Context) error { return nil }
