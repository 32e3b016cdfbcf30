package request

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/GIRI-PRAKASH-007/Multi-hospital-communication-system/internal/platform/metrics"
)

var (
	ErrNotFound = errors.New("request not found")

	// ErrInvalidState marks a status precondition violation: the request has
	// already moved past the state the operation expects.
	ErrInvalidState = errors.New("request is not in a valid state for this action")

	// ErrSelfAction marks a hospital trying to provide for its own request.
	ErrSelfAction = errors.New("a hospital cannot act on its own request")

	ErrForbidden       = errors.New("not permitted to act on this request")
	ErrInvalidArgument = errors.New("invalid argument")
)

// Service is the lifecycle engine. Every operation takes the acting
// hospital's identity explicitly; there is no ambient session state.
type Service struct {
	repo      Repository
	inventory InventoryDebiter
	tx        TxRunner
	log       zerolog.Logger
	metrics   *metrics.Metrics
}

func NewService(repo Repository, inventory InventoryDebiter, tx TxRunner, log zerolog.Logger) *Service {
	return &Service{repo: repo, inventory: inventory, tx: tx, log: log}
}

// SetMetrics attaches optional lifecycle counters to the service.
func (s *Service) SetMetrics(m *metrics.Metrics) {
	s.metrics = m
}

// Create records a new resource request for the acting hospital. Status,
// requester, and provider are forced regardless of what the caller supplied.
func (s *Service) Create(ctx context.Context, actor uuid.UUID, r *ResourceRequest) error {
	r.RequestingHospitalID = actor
	r.ProvidingHospitalID = nil
	r.Status = StatusOpen
	if err := r.ValidateDetails(); err != nil {
		return err
	}
	// Strip detail fields the type does not use so a blood quantity cannot
	// ride along on an organ request.
	switch r.Type {
	case TypeOxygen:
		r.BloodGroup, r.Organ = nil, nil
	case TypeBlood:
		r.Organ = nil
	case TypeOrgan:
		r.Quantity = nil
	}

	if err := s.repo.Create(ctx, r); err != nil {
		return err
	}
	s.audit(r.ID, actor, r.Type, "created", StatusOpen)
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*ResourceRequest, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, params map[string]string, limit, offset int) ([]*ResourceRequest, int, error) {
	return s.repo.List(ctx, params, limit, offset)
}

// Accept fulfils an open request with the acting hospital's inventory. The
// debit and the status transition run in one transaction: if the conditional
// transition reports another provider won the race, the debit rolls back and
// the caller sees ErrInvalidState.
func (s *Service) Accept(ctx context.Context, id, actor uuid.UUID) error {
	var reqType Type
	var debited int

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		req, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if req.Status != StatusOpen {
			return ErrInvalidState
		}
		if req.RequestingHospitalID == actor {
			return ErrSelfAction
		}

		if err := s.debit(ctx, req, actor); err != nil {
			return err
		}

		ok, err := s.repo.TransitionStatus(ctx, id, StatusOpen, StatusAccepted, &actor)
		if err != nil {
			return err
		}
		if !ok {
			return ErrInvalidState
		}

		reqType = req.Type
		if req.Quantity != nil {
			debited = *req.Quantity
		} else {
			debited = 1
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.audit(id, actor, reqType, "accepted", StatusAccepted)
	if s.metrics != nil {
		s.metrics.ObserveDebit(string(reqType), debited)
	}
	return nil
}

// Reject declines an open request. No inventory moves; the provider is still
// recorded so the refusal shows up in the audit trail.
func (s *Service) Reject(ctx context.Context, id, actor uuid.UUID) error {
	req, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if req.Status != StatusOpen {
		return ErrInvalidState
	}
	if req.RequestingHospitalID == actor {
		return ErrSelfAction
	}

	ok, err := s.repo.TransitionStatus(ctx, id, StatusOpen, StatusRejected, &actor)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidState
	}
	s.audit(id, actor, req.Type, "rejected", StatusRejected)
	return nil
}

// Cancel deletes the acting hospital's own request while it is still open.
// Once a request has been accepted or rejected the exchange record stays.
func (s *Service) Cancel(ctx context.Context, id, actor uuid.UUID) error {
	req, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if req.RequestingHospitalID != actor {
		return ErrForbidden
	}
	if req.Status != StatusOpen {
		return ErrInvalidState
	}

	ok, err := s.repo.DeleteIfOpen(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		// A provider accepted or rejected between our read and the delete.
		return ErrInvalidState
	}
	s.audit(id, actor, req.Type, "cancelled", "")
	return nil
}

// Finalize closes a delivered request. Only the original requester may close,
// only closed is a valid target, and the request must currently be accepted.
func (s *Service) Finalize(ctx context.Context, id, actor uuid.UUID, target Status) error {
	if target != StatusClosed {
		return fmt.Errorf("%w: %q is not a valid finalize target", ErrInvalidArgument, target)
	}
	req, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if req.RequestingHospitalID != actor {
		return ErrForbidden
	}

	ok, err := s.repo.TransitionStatus(ctx, id, StatusAccepted, StatusClosed, nil)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidState
	}
	s.audit(id, actor, req.Type, "finalized", StatusClosed)
	return nil
}

// debit charges the acting hospital's inventory for the request's resource.
func (s *Service) debit(ctx context.Context, req *ResourceRequest, provider uuid.UUID) error {
	switch req.Type {
	case TypeOxygen:
		return s.inventory.DebitOxygen(ctx, provider, *req.Quantity)
	case TypeBlood:
		return s.inventory.DebitBlood(ctx, provider, *req.BloodGroup, *req.Quantity)
	case TypeOrgan:
		return s.inventory.ConsumeOrganOffer(ctx, provider, *req.Organ, *req.BloodGroup)
	default:
		return fmt.Errorf("%w: unknown request type %q", ErrInvalidArgument, req.Type)
	}
}

// audit emits the structured lifecycle trail and bumps the transition counter.
func (s *Service) audit(id, actor uuid.UUID, reqType Type, action string, to Status) {
	evt := s.log.Info().
		Str("request_id", id.String()).
		Str("acting_hospital_id", actor.String()).
		Str("type", string(reqType)).
		Str("action", action)
	if to != "" {
		evt = evt.Str("status", string(to))
	}
	evt.Msg("request_" + action)

	if s.metrics != nil {
		s.metrics.ObserveTransition(string(reqType), action)
	}
}
