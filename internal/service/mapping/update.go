package mapping

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/LaughingJackalope/agentrouter/internal/domain"
)

// Mutation is the outcome of Mutate.
type Mutation struct {
	Before  *domain.AgentMapping
	After   *domain.AgentMapping
	Applied bool
}

// MutateFunc derives a patch from the locked current record. A nil patch
// leaves the record untouched.
type MutateFunc func(current domain.AgentMapping) (*domain.MappingPatch, error)

// Update applies a partial update. Only fields set in the patch change;
// lastUpdatedAt always advances.
func (s *Service) Update(ctx context.Context, input UpdateInput) (*domain.AgentMapping, error) {
	input.Patch = normalizePatch(input.Patch)
	if err := input.Validate(); err != nil {
		return nil, err
	}

	patch := input.Patch
	if patch.InboxName != nil {
		inbox := strings.TrimSpace(*patch.InboxName)
		patch.InboxName = &inbox
	}

	m, err := s.Mutate(ctx, strings.TrimSpace(input.Address), actor(ctx, input.UpdatedBy),
		func(domain.AgentMapping) (*domain.MappingPatch, error) {
			return &patch, nil
		})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "agent mapping updated",
		slog.String("address", m.After.Address),
		slog.String("status", m.After.Status.String()),
	)

	return m.After, nil
}

// Mutate locks the row for address, hands the current record to fn and
// writes the returned patch together with a strictly advanced lastUpdatedAt,
// all in one transaction. Concurrent mutations of one address are serialized
// by the row lock. Returns domain.ErrNotFound if the address does not exist.
func (s *Service) Mutate(ctx context.Context, address string, updatedBy *string, fn MutateFunc) (*Mutation, error) {
	var result Mutation

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		current, err := s.repo.GetByAddressForUpdate(ctx, address)
		if err != nil {
			return err
		}
		result.Before = current
		result.After = current

		patch, err := fn(*current)
		if err != nil {
			return err
		}
		if patch == nil || patch.IsEmpty() {
			return nil
		}

		updatedAt := domain.NextUpdatedAt(current.LastUpdatedAt, s.now())
		updated, err := s.repo.Update(ctx, address, *patch, updatedAt, updatedBy)
		if err != nil {
			return err
		}
		result.After = updated
		result.Applied = true
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("mutate mapping %s: %w", address, err)
	}

	return &result, nil
}

func normalizePatch(p domain.MappingPatch) domain.MappingPatch {
	if p.Status != nil {
		st := domain.MappingStatus(normalizeEnum(string(*p.Status)))
		p.Status = &st
	}
	if p.DestinationType != nil {
		dt := domain.DestinationType(normalizeEnum(string(*p.DestinationType)))
		p.DestinationType = &dt
	}
	if p.Description != nil {
		d := strings.TrimSpace(*p.Description)
		p.Description = &d
	}
	if p.OwnerTeam != nil {
		o := strings.TrimSpace(*p.OwnerTeam)
		p.OwnerTeam = &o
	}
	return p
}
