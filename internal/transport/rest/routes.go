package rest

import "net/http"

// Handlers groups everything mounted on the API mux. Metrics is optional.
type Handlers struct {
	Health      *HealthHandler
	Messages    *MessageHandler
	Agents      *AgentHandler
	AgentHealth *AgentHealthHandler
	Metrics     http.Handler
	MetricsPath string
}

// NewMux registers every route on a fresh ServeMux.
func NewMux(h Handlers) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /live", h.Health.Live)
	mux.HandleFunc("GET /ready", h.Health.Ready)
	mux.HandleFunc("GET /health", h.Health.Health)

	mux.HandleFunc("POST /v1/messages", h.Messages.Send)

	mux.HandleFunc("POST /v1/agents", h.Agents.Register)
	mux.HandleFunc("GET /v1/agents", h.Agents.List)
	mux.HandleFunc("GET /v1/agents/{address}", h.Agents.Get)
	mux.HandleFunc("PATCH /v1/agents/{address}", h.Agents.Update)
	mux.HandleFunc("DELETE /v1/agents/{address}", h.Agents.Delete)
	mux.HandleFunc("POST /v1/agents/{address}/provision", h.Agents.Provision)

	mux.HandleFunc("POST /v1/agent-health", h.AgentHealth.Report)

	if h.Metrics != nil {
		path := h.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		mux.Handle("GET "+path, h.Metrics)
	}

	return mux
}
