package mapping

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/LaughingJackalope/agentrouter/internal/domain"
	"github.com/LaughingJackalope/agentrouter/internal/naming"
)

// Register inserts a new ACTIVE mapping and then provisions its bus
// resources. A missing inbox name defaults to the derived topic name.
//
// A duplicate address fails with domain.ErrAlreadyExists and leaves the
// existing record untouched. If provisioning fails after the insert has
// committed, the created mapping is returned together with an error wrapping
// domain.ErrProvisioning; Provision can be retried for the same address.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*domain.AgentMapping, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	address := strings.TrimSpace(input.Address)

	destinationType := domain.DestinationTypeBusTopic
	if dt := normalizeEnum(input.DestinationType); dt != "" {
		destinationType = domain.DestinationType(dt)
	}

	inbox := naming.Derive(address).Topic
	if v := trimOrNil(input.InboxName); v != nil {
		inbox = *v
	}

	now := s.now()
	record := &domain.AgentMapping{
		Address:         address,
		DestinationType: destinationType,
		InboxName:       inbox,
		Status:          domain.MappingStatusActive,
		RegisteredAt:    now,
		LastUpdatedAt:   now,
		UpdatedBy:       actor(ctx, input.UpdatedBy),
		Description:     trimOrNil(input.Description),
		OwnerTeam:       trimOrNil(input.OwnerTeam),
	}

	var created *domain.AgentMapping
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		created, err = s.repo.Create(ctx, record)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("register mapping: %w", err)
	}

	s.log.InfoContext(ctx, "agent mapping registered",
		slog.String("address", created.Address),
		slog.String("inbox", created.InboxName),
	)

	names, err := s.provisioner.Provision(ctx, created.Address)
	if err != nil {
		s.log.ErrorContext(ctx, "provisioning after register failed",
			slog.String("address", created.Address),
			slog.String("error", err.Error()),
		)
		return created, fmt.Errorf("register mapping %s: %w: %w", created.Address, domain.ErrProvisioning, err)
	}

	s.log.InfoContext(ctx, "agent resources provisioned",
		slog.String("address", created.Address),
		slog.String("topic", names.Topic),
		slog.String("subscription", names.Subscription),
	)

	return created, nil
}
