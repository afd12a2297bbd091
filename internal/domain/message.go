package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// SenderMetadata carries optional identifiers supplied by the sender.
type SenderMetadata struct {
	SenderID                string
	CorrelationID           string
	SenderProvidedMessageID string
}

// InboundMessage is a message accepted for routing. It is never persisted.
type InboundMessage struct {
	MessageID     uuid.UUID
	TargetAddress string
	Payload       json.RawMessage
	Sender        SenderMetadata
}

// Envelope is what goes on the bus: base64 text of the canonical JSON payload
// plus string attributes.
type Envelope struct {
	Data       string
	Attributes map[string]string
}

// Attribute keys of the bus wire format.
const (
	AttrMessageID               = "messageId"
	AttrTargetAddress           = "targetAddress"
	AttrPublishedAt             = "publishedAt"
	AttrContentType             = "contentType"
	AttrSenderID                = "senderId"
	AttrCorrelationID           = "correlationId"
	AttrSenderProvidedMessageID = "senderProvidedMessageId"

	ContentTypeJSON = "application/json"
)

// PublishedAtLayout is ISO-8601 UTC with millisecond precision.
const PublishedAtLayout = "2006-01-02T15:04:05.000Z"

// OutcomeKind is the terminal state of a routing attempt.
type OutcomeKind string

const (
	OutcomeAccepted OutcomeKind = "ACCEPTED"
	OutcomeRejected OutcomeKind = "REJECTED"
	OutcomeFailed   OutcomeKind = "FAILED"
)

func (k OutcomeKind) String() string { return string(k) }

// ErrorCode is the machine-readable reason of a rejected or failed route.
type ErrorCode string

const (
	CodeInvalidRequest      ErrorCode = "INVALID_REQUEST"
	CodeAgentNotFound       ErrorCode = "AGENT_NOT_FOUND"
	CodeAgentInactive       ErrorCode = "AGENT_INACTIVE"
	CodeConfigError         ErrorCode = "CONFIG_ERROR"
	CodeUnknownStatus       ErrorCode = "UNKNOWN_STATUS"
	CodeTransformationError ErrorCode = "TRANSFORMATION_ERROR"
	CodePublishError        ErrorCode = "PUBLISH_ERROR"
	CodeStoreError          ErrorCode = "STORE_ERROR"
	CodeRequestCancelled    ErrorCode = "REQUEST_CANCELLED"
)

func (c ErrorCode) String() string { return string(c) }

// Outcome is the result of routing one message.
type Outcome struct {
	Kind      OutcomeKind
	MessageID uuid.UUID
	Code      ErrorCode
	Err       error
	Duplicate bool
	Latency   time.Duration
}

// Accepted reports whether the message was handed to the bus.
func (o Outcome) Accepted() bool { return o.Kind == OutcomeAccepted }
