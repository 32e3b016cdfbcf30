package request

import (
	"context"

	"github.com/google/uuid"

	"github.com/GIRI-PRAKASH-007/Multi-hospital-communication-system/internal/domain/hospital"
)

// Repository is the resource-request store. Status transitions are
// compare-and-swap writes: TransitionStatus and DeleteIfOpen only take effect
// when the stored status still matches the expected one, and report whether
// they did. That conditional write, not a read-then-write sequence, is what
// makes concurrent accepts resolve to exactly one winner.
type Repository interface {
	Create(ctx context.Context, r *ResourceRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*ResourceRequest, error)

	// List returns requests newest first with hospital display names
	// resolved. Supported filter params: status, type.
	List(ctx context.Context, params map[string]string, limit, offset int) ([]*ResourceRequest, int, error)

	// TransitionStatus sets status=to and records the provider iff the
	// stored status equals from. Returns false when the request was missing
	// or already past from.
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to Status, provider *uuid.UUID) (bool, error)

	// DeleteIfOpen removes the request iff it is still open.
	DeleteIfOpen(ctx context.Context, id uuid.UUID) (bool, error)
}

// InventoryDebiter is the slice of the inventory store the lifecycle engine
// needs when accepting a request. hospital.InventoryRepository satisfies it.
type InventoryDebiter interface {
	DebitOxygen(ctx context.Context, hospitalID uuid.UUID, cylinders int) error
	DebitBlood(ctx context.Context, hospitalID uuid.UUID, group hospital.BloodGroup, units int) error
	ConsumeOrganOffer(ctx context.Context, hospitalID uuid.UUID, organ hospital.Organ, group hospital.BloodGroup) error
}

// TxRunner runs a function inside a storage transaction carried on the
// context, so the inventory debit and the status transition commit or roll
// back as one unit. db.TxRunner satisfies it.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}
