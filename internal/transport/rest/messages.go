package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/LaughingJackalope/agentrouter/internal/domain"
)

type messageRouter interface {
	Route(ctx context.Context, msg domain.InboundMessage) domain.Outcome
	Reject(ctx context.Context, cause error) domain.Outcome
}

// MessageHandler accepts messages for routing.
type MessageHandler struct {
	router  messageRouter
	maxBody int64
	log     *slog.Logger
}

// NewMessageHandler creates a MessageHandler.
func NewMessageHandler(router messageRouter, maxBody int64, logger *slog.Logger) *MessageHandler {
	return &MessageHandler{
		router:  router,
		maxBody: maxBody,
		log:     logger.With("handler", "messages"),
	}
}

type senderMetadataRequest struct {
	SenderID                string `json:"senderId"`
	ServiceName             string `json:"serviceName"`
	CorrelationID           string `json:"correlationId"`
	SenderProvidedMessageID string `json:"senderProvidedMessageId"`
}

type sendMessageRequest struct {
	TargetAddress  string                `json:"targetAddress"`
	Payload        json.RawMessage       `json:"payload"`
	SenderMetadata senderMetadataRequest `json:"senderMetadata"`
}

// SendMessageResponse is returned for an accepted message.
type SendMessageResponse struct {
	MessageID string `json:"messageId"`
	Duplicate bool   `json:"duplicate,omitempty"`
}

// Send routes one message to the inbox of its target agent.
// POST /v1/messages
func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req sendMessageRequest
	if err := decodeJSON(w, r, h.maxBody, false, &req); err != nil {
		h.reject(w, r, err)
		return
	}

	senderID := req.SenderMetadata.SenderID
	if senderID == "" {
		senderID = req.SenderMetadata.ServiceName
	}

	out := h.router.Route(r.Context(), domain.InboundMessage{
		TargetAddress: req.TargetAddress,
		Payload:       req.Payload,
		Sender: domain.SenderMetadata{
			SenderID:                senderID,
			CorrelationID:           req.SenderMetadata.CorrelationID,
			SenderProvidedMessageID: req.SenderMetadata.SenderProvidedMessageID,
		},
	})

	if out.Accepted() {
		writeJSON(w, http.StatusAccepted, SendMessageResponse{
			MessageID: out.MessageID.String(),
			Duplicate: out.Duplicate,
		})
		return
	}

	status := outcomeStatus(out.Code)
	writeJSON(w, status, ErrorResponse{
		ErrorCode: out.Code.String(),
		Message:   outcomeMessage(status, out),
		MessageID: out.MessageID.String(),
	})
}

// reject answers an unreadable body. The router still assigns the message
// ID so the failure can be traced.
func (h *MessageHandler) reject(w http.ResponseWriter, r *http.Request, err error) {
	out := h.router.Reject(r.Context(), fmt.Errorf("invalid request body: %w", err))

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeJSON(w, http.StatusRequestEntityTooLarge, ErrorResponse{
			ErrorCode: codePayloadTooLarge,
			Message:   fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit),
			MessageID: out.MessageID.String(),
		})
		return
	}

	status := outcomeStatus(out.Code)
	writeJSON(w, status, ErrorResponse{
		ErrorCode: out.Code.String(),
		Message:   outcomeMessage(status, out),
		MessageID: out.MessageID.String(),
	})
}

func outcomeStatus(code domain.ErrorCode) int {
	switch code {
	case domain.CodeInvalidRequest:
		return http.StatusBadRequest
	case domain.CodeAgentNotFound, domain.CodeAgentInactive:
		return http.StatusNotFound
	case domain.CodeRequestCancelled:
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

// outcomeMessage exposes the cause of client errors only.
func outcomeMessage(status int, out domain.Outcome) string {
	if status < http.StatusInternalServerError && out.Err != nil {
		return out.Err.Error()
	}
	switch out.Code {
	case domain.CodeConfigError:
		return "agent mapping is incomplete"
	case domain.CodeTransformationError:
		return "payload could not be transformed"
	case domain.CodePublishError:
		return "message could not be published"
	case domain.CodeUnknownStatus:
		return "agent mapping has an unknown status"
	case domain.CodeStoreError:
		return "agent mapping lookup failed"
	default:
		return "internal server error"
	}
}
