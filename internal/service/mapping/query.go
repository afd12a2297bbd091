package mapping

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/LaughingJackalope/agentrouter/internal/domain"
	"github.com/LaughingJackalope/agentrouter/internal/naming"
)

// Get returns the mapping for address or domain.ErrNotFound.
func (s *Service) Get(ctx context.Context, address string) (*domain.AgentMapping, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, domain.NewValidationError("address", "required")
	}

	m, err := s.repo.GetByAddress(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("get mapping: %w", err)
	}
	return m, nil
}

// List returns a page of mappings and the total number matching the filter.
func (s *Service) List(ctx context.Context, input ListInput) ([]*domain.AgentMapping, int, error) {
	if err := input.Validate(); err != nil {
		return nil, 0, err
	}

	filter := domain.MappingFilter{
		OwnerTeam: trimOrNil(input.OwnerTeam),
		Limit:     input.Limit,
		Offset:    input.Offset,
	}
	if filter.Limit == 0 {
		filter.Limit = DefaultListLimit
	}
	if input.Status != nil {
		st := domain.MappingStatus(normalizeEnum(*input.Status))
		filter.Status = &st
	}

	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list mappings: %w", err)
	}
	return items, total, nil
}

// Delete removes the mapping. Bus resources are left in place.
func (s *Service) Delete(ctx context.Context, address string) error {
	address = strings.TrimSpace(address)
	if address == "" {
		return domain.NewValidationError("address", "required")
	}

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		return s.repo.Delete(ctx, address)
	})
	if err != nil {
		return fmt.Errorf("delete mapping: %w", err)
	}

	s.log.InfoContext(ctx, "agent mapping deleted", slog.String("address", address))
	return nil
}

// Provision (re)creates the bus resources of an existing mapping. It is
// idempotent and is the retry path after a failed Register.
func (s *Service) Provision(ctx context.Context, address string) (naming.Names, error) {
	m, err := s.Get(ctx, address)
	if err != nil {
		return naming.Names{}, err
	}

	names, err := s.provisioner.Provision(ctx, m.Address)
	if err != nil {
		return naming.Names{}, fmt.Errorf("provision %s: %w: %w", m.Address, domain.ErrProvisioning, err)
	}
	return names, nil
}
