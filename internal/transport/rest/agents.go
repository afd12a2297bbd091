package rest

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/LaughingJackalope/agentrouter/internal/domain"
	"github.com/LaughingJackalope/agentrouter/internal/naming"
	"github.com/LaughingJackalope/agentrouter/internal/service/mapping"
)

type mappingService interface {
	Register(ctx context.Context, input mapping.RegisterInput) (*domain.AgentMapping, error)
	Get(ctx context.Context, address string) (*domain.AgentMapping, error)
	List(ctx context.Context, input mapping.ListInput) ([]*domain.AgentMapping, int, error)
	Update(ctx context.Context, input mapping.UpdateInput) (*domain.AgentMapping, error)
	Delete(ctx context.Context, address string) error
	Provision(ctx context.Context, address string) (naming.Names, error)
}

// AgentHandler serves the agent mapping management endpoints.
type AgentHandler struct {
	mappings mappingService
	maxBody  int64
	log      *slog.Logger
}

// NewAgentHandler creates an AgentHandler.
func NewAgentHandler(mappings mappingService, maxBody int64, logger *slog.Logger) *AgentHandler {
	return &AgentHandler{
		mappings: mappings,
		maxBody:  maxBody,
		log:      logger.With("handler", "agents"),
	}
}

// AgentResponse is the JSON form of an agent mapping.
type AgentResponse struct {
	Address           string     `json:"address"`
	DestinationType   string     `json:"destinationType"`
	InboxName         string     `json:"inboxName"`
	Status            string     `json:"status"`
	RegisteredAt      time.Time  `json:"registeredAt"`
	LastUpdatedAt     time.Time  `json:"lastUpdatedAt"`
	LastHealthCheckAt *time.Time `json:"lastHealthCheckAt,omitempty"`
	UpdatedBy         *string    `json:"updatedBy,omitempty"`
	Description       *string    `json:"description,omitempty"`
	OwnerTeam         *string    `json:"ownerTeam,omitempty"`
}

// AgentListResponse is one page of agent mappings.
type AgentListResponse struct {
	Items []AgentResponse `json:"items"`
	Total int             `json:"total"`
}

type registerAgentRequest struct {
	Address         string  `json:"address"`
	DestinationType string  `json:"destinationType"`
	InboxName       *string `json:"inboxName"`
	Description     *string `json:"description"`
	OwnerTeam       *string `json:"ownerTeam"`
	UpdatedBy       *string `json:"updatedBy"`
}

// updateAgentRequest is the closed set of updatable fields.
type updateAgentRequest struct {
	DestinationType *string `json:"destinationType"`
	InboxName       *string `json:"inboxName"`
	Status          *string `json:"status"`
	Description     *string `json:"description"`
	OwnerTeam       *string `json:"ownerTeam"`
	UpdatedBy       *string `json:"updatedBy"`
}

// Register creates a mapping and provisions its bus resources.
// POST /v1/agents
func (h *AgentHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerAgentRequest
	if err := decodeJSON(w, r, h.maxBody, true, &req); err != nil {
		writeDecodeError(w, codeValidation, err)
		return
	}

	m, err := h.mappings.Register(r.Context(), mapping.RegisterInput{
		Address:         req.Address,
		DestinationType: req.DestinationType,
		InboxName:       req.InboxName,
		Description:     req.Description,
		OwnerTeam:       req.OwnerTeam,
		UpdatedBy:       req.UpdatedBy,
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toAgentResponse(m))
}

// List returns a page of mappings.
// GET /v1/agents?status=ACTIVE&ownerTeam=core&limit=100&offset=0
func (h *AgentHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	input := mapping.ListInput{}
	if v := q.Get("status"); v != "" {
		input.Status = &v
	}
	if v := q.Get("ownerTeam"); v != "" {
		input.OwnerTeam = &v
	}

	var errs []domain.FieldError
	for _, p := range []struct {
		name string
		dst  *int
	}{{"limit", &input.Limit}, {"offset", &input.Offset}} {
		v := q.Get(p.name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, domain.FieldError{Field: p.name, Message: "must be an integer"})
			continue
		}
		*p.dst = n
	}
	if len(errs) > 0 {
		writeValidation(w, codeValidation, domain.NewValidationErrors(errs))
		return
	}

	items, total, err := h.mappings.List(r.Context(), input)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	resp := AgentListResponse{Items: make([]AgentResponse, 0, len(items)), Total: total}
	for _, m := range items {
		resp.Items = append(resp.Items, toAgentResponse(m))
	}
	writeJSON(w, http.StatusOK, resp)
}

// Get returns one mapping.
// GET /v1/agents/{address}
func (h *AgentHandler) Get(w http.ResponseWriter, r *http.Request) {
	m, err := h.mappings.Get(r.Context(), r.PathValue("address"))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAgentResponse(m))
}

// Update applies a partial update. Fields outside the updatable set are
// rejected.
// PATCH /v1/agents/{address}
func (h *AgentHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateAgentRequest
	if err := decodeJSON(w, r, h.maxBody, true, &req); err != nil {
		writeDecodeError(w, codeValidation, err)
		return
	}

	var patch domain.MappingPatch
	if req.DestinationType != nil {
		dt := domain.DestinationType(*req.DestinationType)
		patch.DestinationType = &dt
	}
	if req.Status != nil {
		st := domain.MappingStatus(*req.Status)
		patch.Status = &st
	}
	patch.InboxName = req.InboxName
	patch.Description = req.Description
	patch.OwnerTeam = req.OwnerTeam

	m, err := h.mappings.Update(r.Context(), mapping.UpdateInput{
		Address:   r.PathValue("address"),
		UpdatedBy: req.UpdatedBy,
		Patch:     patch,
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAgentResponse(m))
}

// Delete removes a mapping.
// DELETE /v1/agents/{address}
func (h *AgentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.mappings.Delete(r.Context(), r.PathValue("address")); err != nil {
		h.handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Provision (re)creates the bus resources of an existing mapping.
// POST /v1/agents/{address}/provision
func (h *AgentHandler) Provision(w http.ResponseWriter, r *http.Request) {
	names, err := h.mappings.Provision(r.Context(), r.PathValue("address"))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, names)
}

func (h *AgentHandler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidStatus):
		writeValidation(w, codeInvalidStatus, err)
	case errors.Is(err, domain.ErrValidation):
		writeValidation(w, codeValidation, err)
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, codeNotFound, "agent not found")
	case errors.Is(err, domain.ErrAlreadyExists):
		writeError(w, http.StatusConflict, codeDuplicate, "agent address already registered")
	case errors.Is(err, domain.ErrProvisioning):
		h.log.ErrorContext(r.Context(), "provisioning failed", slog.String("error", err.Error()))
		writeError(w, http.StatusBadGateway, codeProvisioning, "bus resources could not be provisioned; retry via the provision endpoint")
	default:
		h.log.ErrorContext(r.Context(), "agent request failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, codeStore, "internal server error")
	}
}

func toAgentResponse(m *domain.AgentMapping) AgentResponse {
	return AgentResponse{
		Address:           m.Address,
		DestinationType:   m.DestinationType.String(),
		InboxName:         m.InboxName,
		Status:            m.Status.String(),
		RegisteredAt:      m.RegisteredAt,
		LastUpdatedAt:     m.LastUpdatedAt,
		LastHealthCheckAt: m.LastHealthCheckAt,
		UpdatedBy:         m.UpdatedBy,
		Description:       m.Description,
		OwnerTeam:         m.OwnerTeam,
	}
}
