package mapping

import (
	"fmt"
	"strings"

	"github.com/LaughingJackalope/agentrouter/internal/domain"
)

const (
	maxAddressLen  = 255
	maxInboxLen    = 255
	maxMetadataLen = 2000
)

// RegisterInput holds the parameters for registering an agent mapping.
type RegisterInput struct {
	Address         string
	DestinationType string
	InboxName       *string
	Description     *string
	OwnerTeam       *string
	UpdatedBy       *string
}

// Validate checks all fields and collects all errors.
func (i RegisterInput) Validate() error {
	var errs []domain.FieldError

	errs = append(errs, validateAddress(i.Address)...)

	if dt := normalizeEnum(i.DestinationType); dt != "" && !domain.DestinationType(dt).IsValid() {
		errs = append(errs, domain.FieldError{Field: "destinationType", Message: fmt.Sprintf("unknown value %q", i.DestinationType)})
	}
	if i.InboxName != nil {
		inbox := strings.TrimSpace(*i.InboxName)
		if len(inbox) > maxInboxLen {
			errs = append(errs, domain.FieldError{Field: "inboxName", Message: "max 255 characters"})
		}
	}
	errs = append(errs, validateMetadata("description", i.Description)...)
	errs = append(errs, validateMetadata("ownerTeam", i.OwnerTeam)...)

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// UpdateInput holds the parameters for a partial update. Patch fields that
// are nil are left untouched.
type UpdateInput struct {
	Address   string
	UpdatedBy *string
	Patch     domain.MappingPatch
}

// Validate checks all fields and collects all errors. An out-of-enum status
// is reported as domain.ErrInvalidStatus.
func (i UpdateInput) Validate() error {
	var errs []domain.FieldError

	errs = append(errs, validateAddress(i.Address)...)

	p := i.Patch
	if p.IsEmpty() {
		errs = append(errs, domain.FieldError{Field: "patch", Message: "at least one field required"})
	}
	if p.LastHealthCheckAt != nil {
		errs = append(errs, domain.FieldError{Field: "lastHealthCheckAt", Message: "not updatable"})
	}
	if p.DestinationType != nil && !p.DestinationType.IsValid() {
		errs = append(errs, domain.FieldError{Field: "destinationType", Message: fmt.Sprintf("unknown value %q", *p.DestinationType)})
	}
	if p.InboxName != nil {
		inbox := strings.TrimSpace(*p.InboxName)
		if inbox == "" {
			errs = append(errs, domain.FieldError{Field: "inboxName", Message: "must not be empty"})
		}
		if len(inbox) > maxInboxLen {
			errs = append(errs, domain.FieldError{Field: "inboxName", Message: "max 255 characters"})
		}
	}
	errs = append(errs, validateMetadata("description", p.Description)...)
	errs = append(errs, validateMetadata("ownerTeam", p.OwnerTeam)...)

	if p.Status != nil && !p.Status.IsValid() {
		verr := domain.NewValidationErrors(append(errs, domain.FieldError{
			Field:   "status",
			Message: fmt.Sprintf("must be %s or %s", domain.MappingStatusActive, domain.MappingStatusInactive),
		}))
		return fmt.Errorf("%w: %w", domain.ErrInvalidStatus, verr)
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// ListInput holds the parameters for listing mappings.
type ListInput struct {
	Status    *string
	OwnerTeam *string
	Limit     int
	Offset    int
}

// Validate checks all fields and collects all errors.
func (i ListInput) Validate() error {
	var errs []domain.FieldError
	if i.Status != nil && !domain.MappingStatus(normalizeEnum(*i.Status)).IsValid() {
		errs = append(errs, domain.FieldError{Field: "status", Message: "must be ACTIVE or INACTIVE"})
	}
	if i.Limit < 0 {
		errs = append(errs, domain.FieldError{Field: "limit", Message: "must be non-negative"})
	}
	if i.Limit > MaxListLimit {
		errs = append(errs, domain.FieldError{Field: "limit", Message: fmt.Sprintf("max %d", MaxListLimit)})
	}
	if i.Offset < 0 {
		errs = append(errs, domain.FieldError{Field: "offset", Message: "must be non-negative"})
	}
	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

func validateAddress(address string) []domain.FieldError {
	a := strings.TrimSpace(address)
	if a == "" {
		return []domain.FieldError{{Field: "address", Message: "required"}}
	}
	if len(a) > maxAddressLen {
		return []domain.FieldError{{Field: "address", Message: "max 255 characters"}}
	}
	return nil
}

func validateMetadata(field string, v *string) []domain.FieldError {
	if v != nil && len(strings.TrimSpace(*v)) > maxMetadataLen {
		return []domain.FieldError{{Field: field, Message: "max 2000 characters"}}
	}
	return nil
}

// normalizeEnum trims and uppercases a client-supplied enum value.
func normalizeEnum(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
