package request

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/GIRI-PRAKASH-007/Multi-hospital-communication-system/internal/domain/hospital"
)

// Type is the kind of resource a request asks for.
type Type string

const (
	TypeOxygen Type = "oxygen"
	TypeBlood  Type = "blood"
	TypeOrgan  Type = "organ"
)

func (t Type) Valid() bool {
	switch t {
	case TypeOxygen, TypeBlood, TypeOrgan:
		return true
	}
	return false
}

// Status is a resource request's lifecycle state.
type Status string

const (
	StatusOpen     Status = "open"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
	StatusClosed   Status = "closed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusOpen, StatusAccepted, StatusRejected, StatusClosed:
		return true
	}
	return false
}

// allowedTransitions is the lifecycle state machine. Statuses with no entry
// (rejected, closed) are terminal; an open request may also be deleted
// outright by its owner, which has no target state.
var allowedTransitions = map[Status][]Status{
	StatusOpen:     {StatusAccepted, StatusRejected},
	StatusAccepted: {StatusClosed},
}

// CanTransition reports whether the state machine permits moving from s to
// target. Backward moves are never permitted.
func (s Status) CanTransition(target Status) bool {
	for _, t := range allowedTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// Terminal reports whether no further lifecycle transition is permitted.
func (s Status) Terminal() bool {
	return len(allowedTransitions[s]) == 0
}

// ResourceRequest maps to the resource_request table. The typed detail
// fields are populated according to Type: blood needs BloodGroup and
// Quantity, oxygen needs Quantity, organ needs Organ and BloodGroup.
type ResourceRequest struct {
	ID                   uuid.UUID  `db:"id" json:"id"`
	RequestingHospitalID uuid.UUID  `db:"requesting_hospital_id" json:"requesting_hospital_id"`
	ProvidingHospitalID  *uuid.UUID `db:"providing_hospital_id" json:"providing_hospital_id,omitempty"`
	Type                 Type       `db:"request_type" json:"type"`
	Status               Status     `db:"status" json:"status"`

	BloodGroup *hospital.BloodGroup `db:"blood_group" json:"blood_group,omitempty"`
	Organ      *hospital.Organ      `db:"organ" json:"organ,omitempty"`
	Quantity   *int                 `db:"quantity" json:"quantity,omitempty"`

	Description string    `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`

	// Display names resolved by the list query; not stored.
	RequestingHospitalName string  `db:"-" json:"requesting_hospital_name,omitempty"`
	ProvidingHospitalName  *string `db:"-" json:"providing_hospital_name,omitempty"`
}

// ValidateDetails checks that the typed detail fields match the request type.
func (r *ResourceRequest) ValidateDetails() error {
	if !r.Type.Valid() {
		return fmt.Errorf("%w: type must be oxygen, blood or organ", ErrInvalidArgument)
	}
	switch r.Type {
	case TypeOxygen:
		if r.Quantity == nil || *r.Quantity <= 0 {
			return fmt.Errorf("%w: oxygen requests need a positive quantity", ErrInvalidArgument)
		}
	case TypeBlood:
		if r.BloodGroup == nil || !r.BloodGroup.Valid() {
			return fmt.Errorf("%w: blood requests need a valid blood_group", ErrInvalidArgument)
		}
		if r.Quantity == nil || *r.Quantity <= 0 {
			return fmt.Errorf("%w: blood requests need a positive quantity", ErrInvalidArgument)
		}
	case TypeOrgan:
		if r.Organ == nil || !r.Organ.Valid() {
			return fmt.Errorf("%w: organ requests need a valid organ", ErrInvalidArgument)
		}
		if r.BloodGroup == nil || !r.BloodGroup.Valid() {
			return fmt.Errorf("%w: organ requests need a valid blood_group", ErrInvalidArgument)
		}
	}
	return nil
}
