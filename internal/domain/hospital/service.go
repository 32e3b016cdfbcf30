package hospital

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	ErrNotFound = errors.New("hospital not found")

	// ErrInsufficientInventory is returned when a debit would take a count
	// below zero or no matching organ offer exists. Counts are never clamped.
	ErrInsufficientInventory = errors.New("insufficient inventory")

	ErrInvalidArgument = errors.New("invalid argument")
)

// TxRunner runs a function inside a storage transaction carried on the
// context. db.TxRunner satisfies it; tests substitute a pass-through.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service implements the hospital registry, the inventory store, and the
// provider matching query.
type Service struct {
	repo      Repository
	inventory InventoryRepository
	tx        TxRunner
	log       zerolog.Logger
}

func NewService(repo Repository, inventory InventoryRepository, tx TxRunner, log zerolog.Logger) *Service {
	return &Service{repo: repo, inventory: inventory, tx: tx, log: log}
}

// Register records a hospital entity in the registry. Accounts themselves
// belong to the identity provider; this only creates the inventory owner.
func (s *Service) Register(ctx context.Context, h *Hospital) error {
	if strings.TrimSpace(h.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidArgument)
	}
	if h.OxygenCylinders < 0 {
		return fmt.Errorf("%w: oxygen_cylinders must not be negative", ErrInvalidArgument)
	}
	if err := s.repo.Create(ctx, h); err != nil {
		return err
	}
	s.log.Info().
		Str("hospital_id", h.ID.String()).
		Str("name", h.Name).
		Msg("hospital_registered")
	return nil
}

// Get returns a hospital's profile together with its inventory snapshot.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Profile, error) {
	h, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	inv, err := s.inventory.Snapshot(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Profile{Hospital: *h, Inventory: *inv}, nil
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Hospital, int, error) {
	return s.repo.List(ctx, limit, offset)
}

// UpdateProfile updates a hospital's contact fields. Inventory is replaced
// through ReplaceInventory, not here.
func (s *Service) UpdateProfile(ctx context.Context, h *Hospital) error {
	if strings.TrimSpace(h.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidArgument)
	}
	existing, err := s.repo.GetByID(ctx, h.ID)
	if err != nil {
		return err
	}
	h.OxygenCylinders = existing.OxygenCylinders
	return s.repo.Update(ctx, h)
}

// Delete removes a hospital from the registry. Requests it is party to, its
// blood stock, and its organ offers go with it (enforced by the schema).
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Str("hospital_id", id.String()).Msg("hospital_deleted")
	return nil
}

// ReplaceInventory swaps a hospital's advertised stock for the given snapshot
// in a single transaction.
func (s *Service) ReplaceInventory(ctx context.Context, hospitalID uuid.UUID, inv *InventorySnapshot) error {
	if inv.OxygenCylinders < 0 {
		return fmt.Errorf("%w: oxygen_cylinders must not be negative", ErrInvalidArgument)
	}
	seen := make(map[BloodGroup]bool, len(inv.Blood))
	for _, b := range inv.Blood {
		if !b.Group.Valid() {
			return fmt.Errorf("%w: unknown blood group %q", ErrInvalidArgument, b.Group)
		}
		if b.Units < 0 {
			return fmt.Errorf("%w: units for %s must not be negative", ErrInvalidArgument, b.Group)
		}
		if seen[b.Group] {
			return fmt.Errorf("%w: duplicate blood group %s", ErrInvalidArgument, b.Group)
		}
		seen[b.Group] = true
	}
	for _, o := range inv.Organs {
		if !o.Organ.Valid() {
			return fmt.Errorf("%w: unknown organ %q", ErrInvalidArgument, o.Organ)
		}
		if !o.BloodGroup.Valid() {
			return fmt.Errorf("%w: unknown blood group %q", ErrInvalidArgument, o.BloodGroup)
		}
		if o.DonorAge < 0 {
			return fmt.Errorf("%w: donor_age must not be negative", ErrInvalidArgument)
		}
	}

	if _, err := s.repo.GetByID(ctx, hospitalID); err != nil {
		return err
	}

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		return s.inventory.Replace(ctx, hospitalID, inv)
	})
	if err != nil {
		return err
	}
	s.log.Info().
		Str("hospital_id", hospitalID.String()).
		Int("oxygen_cylinders", inv.OxygenCylinders).
		Int("blood_groups", len(inv.Blood)).
		Int("organ_offers", len(inv.Organs)).
		Msg("inventory_replaced")
	return nil
}

// SearchParams are the raw matching-query inputs before validation.
type SearchParams struct {
	Type       string
	BloodGroup string
	Organ      string
	Quantity   int
}

// Search finds hospitals other than the caller whose inventory satisfies the
// requested threshold. Required parameters depend on the resource type.
func (s *Service) Search(ctx context.Context, caller uuid.UUID, p SearchParams) ([]*Summary, error) {
	switch p.Type {
	case "oxygen":
		if p.Quantity <= 0 {
			return nil, fmt.Errorf("%w: oxygen search requires a positive quantity", ErrInvalidArgument)
		}
		return s.repo.SearchByOxygen(ctx, p.Quantity, caller)
	case "blood":
		group := BloodGroup(p.BloodGroup)
		if !group.Valid() {
			return nil, fmt.Errorf("%w: blood search requires a valid blood_group", ErrInvalidArgument)
		}
		if p.Quantity <= 0 {
			return nil, fmt.Errorf("%w: blood search requires a positive quantity", ErrInvalidArgument)
		}
		return s.repo.SearchByBlood(ctx, group, p.Quantity, caller)
	case "organ":
		organ := Organ(p.Organ)
		if !organ.Valid() {
			return nil, fmt.Errorf("%w: organ search requires a valid organ", ErrInvalidArgument)
		}
		group := BloodGroup(p.BloodGroup)
		if !group.Valid() {
			return nil, fmt.Errorf("%w: organ search requires a valid blood_group", ErrInvalidArgument)
		}
		return s.repo.SearchByOrgan(ctx, organ, group, caller)
	default:
		return nil, fmt.Errorf("%w: type must be oxygen, blood or organ", ErrInvalidArgument)
	}
}
