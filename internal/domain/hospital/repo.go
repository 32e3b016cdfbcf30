package hospital

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the hospital registry store.
type Repository interface {
	Create(ctx context.Context, h *Hospital) error
	GetByID(ctx context.Context, id uuid.UUID) (*Hospital, error)
	Update(ctx context.Context, h *Hospital) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Hospital, int, error)

	SearchByOxygen(ctx context.Context, minCylinders int, exclude uuid.UUID) ([]*Summary, error)
	SearchByBlood(ctx context.Context, group BloodGroup, minUnits int, exclude uuid.UUID) ([]*Summary, error)
	SearchByOrgan(ctx context.Context, organ Organ, group BloodGroup, exclude uuid.UUID) ([]*Summary, error)
}

// InventoryRepository is the per-hospital stock store. The debit methods are
// conditional writes: they fail with ErrInsufficientInventory instead of
// letting a count go negative, and they respect a transaction carried on the
// context so the lifecycle engine can pair a debit with a status transition.
type InventoryRepository interface {
	Snapshot(ctx context.Context, hospitalID uuid.UUID) (*InventorySnapshot, error)
	Replace(ctx context.Context, hospitalID uuid.UUID, inv *InventorySnapshot) error

	DebitOxygen(ctx context.Context, hospitalID uuid.UUID, cylinders int) error
	DebitBlood(ctx context.Context, hospitalID uuid.UUID, group BloodGroup, units int) error
	ConsumeOrganOffer(ctx context.Context, hospitalID uuid.UUID, organ Organ, group BloodGroup) error
}
