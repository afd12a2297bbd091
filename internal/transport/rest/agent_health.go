package rest

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/LaughingJackalope/agentrouter/internal/domain"
	"github.com/LaughingJackalope/agentrouter/internal/service/health"
)

type healthReconciler interface {
	Report(ctx context.Context, input health.ReportInput) (*health.Result, error)
}

// AgentHealthHandler accepts self-reported agent health.
type AgentHealthHandler struct {
	reconciler healthReconciler
	maxBody    int64
	log        *slog.Logger
}

// NewAgentHealthHandler creates an AgentHealthHandler.
func NewAgentHealthHandler(reconciler healthReconciler, maxBody int64, logger *slog.Logger) *AgentHealthHandler {
	return &AgentHealthHandler{
		reconciler: reconciler,
		maxBody:    maxBody,
		log:        logger.With("handler", "agent_health"),
	}
}

// healthReportRequest takes the reported health from reportedStatus, or
// from status for older agents.
type healthReportRequest struct {
	Address        string         `json:"address"`
	ReportedStatus string         `json:"reportedStatus"`
	Status         string         `json:"status"`
	Details        map[string]any `json:"details"`
	Timestamp      *time.Time     `json:"timestamp"`
}

func (r healthReportRequest) reported() string {
	if r.ReportedStatus != "" {
		return r.ReportedStatus
	}
	return r.Status
}

// HealthReportResponse is the mapping state after a report.
type HealthReportResponse struct {
	Address           string     `json:"address"`
	Status            string     `json:"status"`
	LastHealthCheckAt *time.Time `json:"lastHealthCheckAt"`
	Applied           bool       `json:"applied"`
}

// Report records an agent's health and sets its routing status.
// POST /v1/agent-health
func (h *AgentHealthHandler) Report(w http.ResponseWriter, r *http.Request) {
	var req healthReportRequest
	if err := decodeJSON(w, r, h.maxBody, false, &req); err != nil {
		writeDecodeError(w, codeValidation, err)
		return
	}

	res, err := h.reconciler.Report(r.Context(), health.ReportInput{
		Address:        req.Address,
		ReportedStatus: req.reported(),
		Details:        req.Details,
		Timestamp:      req.Timestamp,
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, HealthReportResponse{
		Address:           res.Mapping.Address,
		Status:            res.Mapping.Status.String(),
		LastHealthCheckAt: res.Mapping.LastHealthCheckAt,
		Applied:           res.Applied,
	})
}

func (h *AgentHealthHandler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		writeValidation(w, codeValidation, err)
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, codeNotFound, "agent not found")
	default:
		h.log.ErrorContext(r.Context(), "health report failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, codeStore, "internal server error")
	}
}
