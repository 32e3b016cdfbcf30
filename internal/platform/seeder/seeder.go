// Package seeder populates a development database with deterministic demo
// hospitals, inventory, and open resource requests.
package seeder

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/GIRI-PRAKASH-007/Multi-hospital-communication-system/internal/domain/hospital"
	"github.com/GIRI-PRAKASH-007/Multi-hospital-communication-system/internal/domain/request"
)

// HospitalRegistry is the slice of the hospital service the seeder needs.
type HospitalRegistry interface {
	Register(ctx context.Context, h *hospital.Hospital) error
	ReplaceInventory(ctx context.Context, hospitalID uuid.UUID, inv *hospital.InventorySnapshot) error
}

// RequestCreator is the slice of the request service the seeder needs.
type RequestCreator interface {
	Create(ctx context.Context, actor uuid.UUID, r *request.ResourceRequest) error
}

type Seeder struct {
	hospitals HospitalRegistry
	requests  RequestCreator
	rng       *rand.Rand
	log       zerolog.Logger
}

// New returns a seeder producing the same data for the same seed value.
func New(hospitals HospitalRegistry, requests RequestCreator, seed int64, log zerolog.Logger) *Seeder {
	return &Seeder{
		hospitals: hospitals,
		requests:  requests,
		rng:       rand.New(rand.NewSource(seed)),
		log:       log,
	}
}

var (
	namePrefixes = []string{"City", "Ridge", "Lakeside", "Valley", "Central", "St. Mary's", "Unity", "Harbor"}
	nameSuffixes = []string{"General Hospital", "Medical Center", "Trauma Center", "Community Hospital"}
	cities       = []string{"Pune", "Mumbai", "Chennai", "Delhi", "Bengaluru", "Kolkata", "Hyderabad", "Jaipur"}
	states       = []string{"Maharashtra", "Maharashtra", "Tamil Nadu", "Delhi", "Karnataka", "West Bengal", "Telangana", "Rajasthan"}
)

// Run creates count hospitals, gives each a stocked inventory, and opens a
// handful of requests between them.
func (s *Seeder) Run(ctx context.Context, count int) error {
	if count <= 0 {
		return fmt.Errorf("seed count must be positive, got %d", count)
	}

	ids := make([]uuid.UUID, 0, count)
	for i := 0; i < count; i++ {
		h := s.makeHospital(i)
		if err := s.hospitals.Register(ctx, h); err != nil {
			return fmt.Errorf("seed hospital %d: %w", i, err)
		}
		if err := s.hospitals.ReplaceInventory(ctx, h.ID, s.makeInventory(h)); err != nil {
			return fmt.Errorf("seed inventory for %s: %w", h.Name, err)
		}
		ids = append(ids, h.ID)
		s.log.Debug().Str("hospital_id", h.ID.String()).Str("name", h.Name).Msg("seeded hospital")
	}

	// Each hospital opens one or two requests so the exchange board is not
	// empty on first launch.
	var opened int
	for _, id := range ids {
		n := 1 + s.rng.Intn(2)
		for j := 0; j < n; j++ {
			if err := s.requests.Create(ctx, id, s.makeRequest()); err != nil {
				return fmt.Errorf("seed request for %s: %w", id, err)
			}
			opened++
		}
	}

	s.log.Info().Int("hospitals", count).Int("requests", opened).Msg("seed complete")
	return nil
}

func (s *Seeder) makeHospital(i int) *hospital.Hospital {
	city := i % len(cities)
	name := fmt.Sprintf("%s %s",
		namePrefixes[s.rng.Intn(len(namePrefixes))],
		nameSuffixes[s.rng.Intn(len(nameSuffixes))])
	return &hospital.Hospital{
		Name:    name,
		Email:   fmt.Sprintf("admin%d@%s.example.org", i+1, cities[city]),
		Phone:   fmt.Sprintf("+91-%010d", 7000000000+s.rng.Int63n(999999999)),
		Address: fmt.Sprintf("%d Hospital Road", 1+s.rng.Intn(200)),
		City:    cities[city],
		State:   states[city],
	}
}

func (s *Seeder) makeInventory(h *hospital.Hospital) *hospital.InventorySnapshot {
	inv := &hospital.InventorySnapshot{
		OxygenCylinders: 5 + s.rng.Intn(50),
	}
	for _, g := range hospital.BloodGroups {
		// Roughly a third of the groups are out of stock at any hospital.
		if s.rng.Intn(3) == 0 {
			continue
		}
		inv.Blood = append(inv.Blood, hospital.BloodStock{Group: g, Units: 1 + s.rng.Intn(20)})
	}
	for i := 0; i < s.rng.Intn(3); i++ {
		inv.Organs = append(inv.Organs, &hospital.OrganOffer{
			HospitalID: h.ID,
			Organ:      hospital.Organs[s.rng.Intn(len(hospital.Organs))],
			BloodGroup: hospital.BloodGroups[s.rng.Intn(len(hospital.BloodGroups))],
			DonorAge:   18 + s.rng.Intn(50),
		})
	}
	return inv
}

func (s *Seeder) makeRequest() *request.ResourceRequest {
	switch s.rng.Intn(3) {
	case 0:
		qty := 1 + s.rng.Intn(10)
		return &request.ResourceRequest{
			Type:        request.TypeOxygen,
			Quantity:    &qty,
			Description: "Oxygen cylinders needed for ICU surge",
		}
	case 1:
		qty := 1 + s.rng.Intn(5)
		group := hospital.BloodGroups[s.rng.Intn(len(hospital.BloodGroups))]
		return &request.ResourceRequest{
			Type:        request.TypeBlood,
			BloodGroup:  &group,
			Quantity:    &qty,
			Description: fmt.Sprintf("%s units needed for scheduled surgery", group),
		}
	default:
		organ := hospital.Organs[s.rng.Intn(len(hospital.Organs))]
		group := hospital.BloodGroups[s.rng.Intn(len(hospital.BloodGroups))]
		return &request.ResourceRequest{
			Type:        request.TypeOrgan,
			Organ:       &organ,
			BloodGroup:  &group,
			Description: fmt.Sprintf("%s transplant candidate, blood group %s", organ, group),
		}
	}
}
