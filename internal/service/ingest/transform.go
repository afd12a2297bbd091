package ingest

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/LaughingJackalope/agentrouter/internal/domain"
)

// isJSONObject reports whether payload is a single well-formed JSON object.
func isJSONObject(payload json.RawMessage) bool {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return false
	}
	return json.Valid(trimmed)
}

// canonicalJSON re-encodes a JSON object with sorted keys, no HTML escaping
// and numbers kept as written.
func canonicalJSON(payload json.RawMessage) ([]byte, error) {
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()

	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	if obj == nil {
		return nil, errors.New("payload is not an object")
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("trailing data after payload")
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(obj); err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Encode builds the bus envelope for msg as published at publishedAt.
func Encode(msg domain.InboundMessage, publishedAt time.Time) (domain.Envelope, error) {
	body, err := canonicalJSON(msg.Payload)
	if err != nil {
		return domain.Envelope{}, fmt.Errorf("%w: %w", domain.ErrTransformation, err)
	}

	attrs := map[string]string{
		domain.AttrMessageID:     msg.MessageID.String(),
		domain.AttrTargetAddress: msg.TargetAddress,
		domain.AttrPublishedAt:   publishedAt.UTC().Format(domain.PublishedAtLayout),
		domain.AttrContentType:   domain.ContentTypeJSON,
	}
	if v := msg.Sender.SenderID; v != "" {
		attrs[domain.AttrSenderID] = v
	}
	if v := msg.Sender.CorrelationID; v != "" {
		attrs[domain.AttrCorrelationID] = v
	}
	if v := msg.Sender.SenderProvidedMessageID; v != "" {
		attrs[domain.AttrSenderProvidedMessageID] = v
	}

	return domain.Envelope{
		Data:       base64.StdEncoding.EncodeToString(body),
		Attributes: attrs,
	}, nil
}
