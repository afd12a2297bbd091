// Package mapping implements the agent mapping store operations: register,
// lookup, partial update, delete and listing, each in its own transaction.
package mapping

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/LaughingJackalope/agentrouter/internal/domain"
	"github.com/LaughingJackalope/agentrouter/internal/naming"
	"github.com/LaughingJackalope/agentrouter/pkg/ctxutil"
)

const (
	DefaultListLimit = 100
	MaxListLimit     = 1000
)

type mappingRepo interface {
	Create(ctx context.Context, m *domain.AgentMapping) (*domain.AgentMapping, error)
	GetByAddress(ctx context.Context, address string) (*domain.AgentMapping, error)
	GetByAddressForUpdate(ctx context.Context, address string) (*domain.AgentMapping, error)
	Update(ctx context.Context, address string, patch domain.MappingPatch, updatedAt time.Time, updatedBy *string) (*domain.AgentMapping, error)
	Delete(ctx context.Context, address string) error
	List(ctx context.Context, filter domain.MappingFilter) ([]*domain.AgentMapping, int, error)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type provisioner interface {
	Provision(ctx context.Context, address string) (naming.Names, error)
}

// Service provides agent mapping management operations.
type Service struct {
	repo        mappingRepo
	tx          txManager
	provisioner provisioner
	clock       clockwork.Clock
	log         *slog.Logger
}

// NewService creates a new mapping Service.
func NewService(
	log *slog.Logger,
	repo mappingRepo,
	tx txManager,
	provisioner provisioner,
	clock clockwork.Clock,
) *Service {
	return &Service{
		repo:        repo,
		tx:          tx,
		provisioner: provisioner,
		clock:       clock,
		log:         log.With("service", "mapping"),
	}
}

// now is the service clock truncated to storage precision.
func (s *Service) now() time.Time {
	return s.clock.Now().UTC().Truncate(time.Microsecond)
}

// actor prefers an explicit actor and falls back to the one on the context.
func actor(ctx context.Context, explicit *string) *string {
	if v := trimOrNil(explicit); v != nil {
		return v
	}
	if a, ok := ctxutil.ActorFromCtx(ctx); ok {
		return &a
	}
	return nil
}

// trimOrNil trims whitespace. Returns nil if result is empty.
func trimOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
