// Package rest serves the HTTP API: message ingestion, agent mapping
// management, agent health reports and probes.
package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/LaughingJackalope/agentrouter/internal/domain"
)

// DefaultMaxBodyBytes caps request bodies when no limit is configured.
const DefaultMaxBodyBytes int64 = 1 << 20

// Error codes of the management API. Routing codes come from domain.ErrorCode.
const (
	codeValidation      = "VALIDATION_ERROR"
	codeInvalidStatus   = "INVALID_STATUS"
	codeDuplicate       = "DUPLICATE_ADDRESS"
	codeProvisioning    = "PROVISIONING_ERROR"
	codeNotFound        = string(domain.CodeAgentNotFound)
	codeStore           = string(domain.CodeStoreError)
	codePayloadTooLarge = "PAYLOAD_TOO_LARGE"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	ErrorCode string       `json:"errorCode"`
	Message   string       `json:"message"`
	MessageID string       `json:"messageId,omitempty"`
	Fields    []FieldError `json:"fields,omitempty"`
}

// FieldError names one invalid request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{ErrorCode: code, Message: message})
}

// writeValidation writes a 400 listing the failing fields of err, if any.
func writeValidation(w http.ResponseWriter, code string, err error) {
	resp := ErrorResponse{ErrorCode: code, Message: err.Error()}
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		for _, fe := range verr.Errors {
			resp.Fields = append(resp.Fields, FieldError{Field: fe.Field, Message: fe.Message})
		}
	}
	writeJSON(w, http.StatusBadRequest, resp)
}

// decodeJSON reads exactly one JSON value of at most limit bytes into dst.
// With strict set, unknown fields are rejected.
func decodeJSON(w http.ResponseWriter, r *http.Request, limit int64, strict bool, dst any) error {
	if limit <= 0 {
		limit = DefaultMaxBodyBytes
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, limit))
	if strict {
		dec.DisallowUnknownFields()
	}
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("body must contain a single JSON value")
	}
	return nil
}

// writeDecodeError answers a body that decodeJSON refused.
func writeDecodeError(w http.ResponseWriter, code string, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, codePayloadTooLarge,
			fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
		return
	}
	writeError(w, http.StatusBadRequest, code, "invalid request body: "+err.Error())
}
