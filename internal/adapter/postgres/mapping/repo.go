// Package mapping implements the agent mapping repository using PostgreSQL.
package mapping

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/LaughingJackalope/agentrouter/internal/adapter/postgres"
	"github.com/LaughingJackalope/agentrouter/internal/domain"
)

const (
	table  = "agent_mappings"
	entity = "agent_mapping"
)

var columns = []string{
	"address",
	"destination_type",
	"inbox_name",
	"status",
	"registered_at",
	"last_updated_at",
	"last_health_check_at",
	"updated_by",
	"description",
	"owner_team",
}

var (
	psql      = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	returning = "RETURNING " + strings.Join(columns, ", ")
)

// Repo provides agent mapping persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new mapping repository. db is used whenever the context does
// not carry a transaction.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// GetByAddress returns the mapping for address.
// Returns domain.ErrNotFound if it does not exist.
func (r *Repo) GetByAddress(ctx context.Context, address string) (*domain.AgentMapping, error) {
	return r.get(ctx, address, false)
}

// GetByAddressForUpdate is GetByAddress with a row lock held until the
// surrounding transaction ends. Must be called inside TxManager.RunInTx.
func (r *Repo) GetByAddressForUpdate(ctx context.Context, address string) (*domain.AgentMapping, error) {
	if !postgres.InTx(ctx) {
		return nil, fmt.Errorf("%s %s: row lock requested outside a transaction", entity, address)
	}
	return r.get(ctx, address, true)
}

func (r *Repo) get(ctx context.Context, address string, lock bool) (*domain.AgentMapping, error) {
	q := psql.Select(columns...).From(table).Where(squirrel.Eq{"address": address})
	if lock {
		q = q.Suffix("FOR UPDATE")
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select %s: %w", entity, err)
	}

	m, err := scanMapping(postgres.QuerierFromCtx(ctx, r.db).QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, postgres.MapError(err, entity, address)
	}
	return m, nil
}

// List returns mappings ordered by registered_at DESC, with the total count
// of rows matching the filter.
func (r *Repo) List(ctx context.Context, filter domain.MappingFilter) ([]*domain.AgentMapping, int, error) {
	where := squirrel.And{}
	if filter.Status != nil {
		where = append(where, squirrel.Eq{"status": string(*filter.Status)})
	}
	if filter.OwnerTeam != nil {
		where = append(where, squirrel.Eq{"owner_team": *filter.OwnerTeam})
	}

	querier := postgres.QuerierFromCtx(ctx, r.db)

	countSQL, countArgs, err := psql.Select("COUNT(*)").From(table).Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count %s: %w", entity, err)
	}

	var total int
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, postgres.MapError(err, entity, "list")
	}

	q := psql.Select(columns...).From(table).Where(where).
		OrderBy("registered_at DESC", "address ASC")
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list %s: %w", entity, err)
	}

	rows, err := querier.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, postgres.MapError(err, entity, "list")
	}
	defer rows.Close()

	items := make([]*domain.AgentMapping, 0)
	for rows.Next() {
		m, err := scanMapping(rows)
		if err != nil {
			return nil, 0, postgres.MapError(err, entity, "list")
		}
		items = append(items, m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, postgres.MapError(err, entity, "list")
	}

	return items, total, nil
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Create inserts m. Returns domain.ErrAlreadyExists if the address is taken;
// the existing row is never overwritten.
func (r *Repo) Create(ctx context.Context, m *domain.AgentMapping) (*domain.AgentMapping, error) {
	sql, args, err := psql.Insert(table).
		Columns(columns...).
		Values(
			m.Address,
			string(m.DestinationType),
			m.InboxName,
			string(m.Status),
			m.RegisteredAt,
			m.LastUpdatedAt,
			m.LastHealthCheckAt,
			m.UpdatedBy,
			m.Description,
			m.OwnerTeam,
		).
		Suffix(returning).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert %s: %w", entity, err)
	}

	created, err := scanMapping(postgres.QuerierFromCtx(ctx, r.db).QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, postgres.MapError(err, entity, m.Address)
	}
	return created, nil
}

// Update writes the supplied patch fields plus last_updated_at and
// updated_by. Fields absent from the patch are not part of the statement.
// Returns domain.ErrNotFound if the address does not exist.
func (r *Repo) Update(ctx context.Context, address string, patch domain.MappingPatch, updatedAt time.Time, updatedBy *string) (*domain.AgentMapping, error) {
	q := psql.Update(table)

	if patch.DestinationType != nil {
		q = q.Set("destination_type", string(*patch.DestinationType))
	}
	if patch.InboxName != nil {
		q = q.Set("inbox_name", *patch.InboxName)
	}
	if patch.Status != nil {
		q = q.Set("status", string(*patch.Status))
	}
	if patch.Description != nil {
		q = q.Set("description", domain.NullIfEmpty(*patch.Description))
	}
	if patch.OwnerTeam != nil {
		q = q.Set("owner_team", domain.NullIfEmpty(*patch.OwnerTeam))
	}
	if patch.LastHealthCheckAt != nil {
		q = q.Set("last_health_check_at", patch.LastHealthCheckAt.UTC())
	}

	sql, args, err := q.
		Set("last_updated_at", updatedAt.UTC()).
		Set("updated_by", updatedBy).
		Where(squirrel.Eq{"address": address}).
		Suffix(returning).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build update %s: %w", entity, err)
	}

	updated, err := scanMapping(postgres.QuerierFromCtx(ctx, r.db).QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, postgres.MapError(err, entity, address)
	}
	return updated, nil
}

// Delete removes the mapping. Returns domain.ErrNotFound if it does not exist.
func (r *Repo) Delete(ctx context.Context, address string) error {
	sql, args, err := psql.Delete(table).Where(squirrel.Eq{"address": address}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete %s: %w", entity, err)
	}

	tag, err := postgres.QuerierFromCtx(ctx, r.db).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, entity, address)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s %s: %w", entity, address, domain.ErrNotFound)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Scanning
// ---------------------------------------------------------------------------

func scanMapping(row pgx.Row) (*domain.AgentMapping, error) {
	var (
		m               domain.AgentMapping
		destinationType string
		status          string
	)

	err := row.Scan(
		&m.Address,
		&destinationType,
		&m.InboxName,
		&status,
		&m.RegisteredAt,
		&m.LastUpdatedAt,
		&m.LastHealthCheckAt,
		&m.UpdatedBy,
		&m.Description,
		&m.OwnerTeam,
	)
	if err != nil {
		return nil, err
	}

	m.DestinationType = domain.DestinationType(destinationType)
	m.Status = domain.MappingStatus(status)
	m.RegisteredAt = m.RegisteredAt.UTC()
	m.LastUpdatedAt = m.LastUpdatedAt.UTC()
	if m.LastHealthCheckAt != nil {
		t := m.LastHealthCheckAt.UTC()
		m.LastHealthCheckAt = &t
	}

	return &m, nil
}
