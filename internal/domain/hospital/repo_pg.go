package hospital

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/GIRI-PRAKASH-007/Multi-hospital-communication-system/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// ---- Hospital registry ----

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const hospitalCols = `id, name, email, phone, address, city, state,
	oxygen_cylinders, created_at, updated_at`

func scanHospital(row pgx.Row) (*Hospital, error) {
	var h Hospital
	err := row.Scan(&h.ID, &h.Name, &h.Email, &h.Phone, &h.Address, &h.City, &h.State,
		&h.OxygenCylinders, &h.CreatedAt, &h.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, db.Unavailable("scan hospital", err)
	}
	return &h, nil
}

func (r *repoPG) Create(ctx context.Context, h *Hospital) error {
	h.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO hospital (id, name, email, phone, address, city, state, oxygen_cylinders)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		h.ID, h.Name, h.Email, h.Phone, h.Address, h.City, h.State, h.OxygenCylinders)
	if err != nil {
		return db.Unavailable("insert hospital", err)
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Hospital, error) {
	return scanHospital(r.conn(ctx).QueryRow(ctx,
		`SELECT `+hospitalCols+` FROM hospital WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, h *Hospital) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE hospital SET name=$2, email=$3, phone=$4, address=$5, city=$6, state=$7,
			updated_at=NOW()
		WHERE id = $1`,
		h.ID, h.Name, h.Email, h.Phone, h.Address, h.City, h.State)
	if err != nil {
		return db.Unavailable("update hospital", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	// Blood stock, organ offers, and requests referencing the hospital are
	// removed by ON DELETE CASCADE.
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM hospital WHERE id = $1`, id)
	if err != nil {
		return db.Unavailable("delete hospital", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Hospital, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM hospital`).Scan(&total); err != nil {
		return nil, 0, db.Unavailable("count hospitals", err)
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+hospitalCols+` FROM hospital ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, db.Unavailable("list hospitals", err)
	}
	defer rows.Close()
	var items []*Hospital
	for rows.Next() {
		h, err := scanHospital(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, h)
	}
	return items, total, nil
}

const summaryCols = `h.id, h.name, h.city, h.state, h.phone`

func (r *repoPG) scanSummaries(rows pgx.Rows) ([]*Summary, error) {
	defer rows.Close()
	var items []*Summary
	for rows.Next() {
		var s Summary
		if err := rows.Scan(&s.ID, &s.Name, &s.City, &s.State, &s.Phone); err != nil {
			return nil, db.Unavailable("scan hospital summary", err)
		}
		items = append(items, &s)
	}
	return items, nil
}

func (r *repoPG) SearchByOxygen(ctx context.Context, minCylinders int, exclude uuid.UUID) ([]*Summary, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+summaryCols+` FROM hospital h
		WHERE h.oxygen_cylinders >= $1 AND h.id <> $2
		ORDER BY h.name`, minCylinders, exclude)
	if err != nil {
		return nil, db.Unavailable("search by oxygen", err)
	}
	return r.scanSummaries(rows)
}

func (r *repoPG) SearchByBlood(ctx context.Context, group BloodGroup, minUnits int, exclude uuid.UUID) ([]*Summary, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+summaryCols+` FROM hospital h
		JOIN blood_inventory b ON b.hospital_id = h.id
		WHERE b.blood_group = $1 AND b.units >= $2 AND h.id <> $3
		ORDER BY h.name`, group, minUnits, exclude)
	if err != nil {
		return nil, db.Unavailable("search by blood", err)
	}
	return r.scanSummaries(rows)
}

func (r *repoPG) SearchByOrgan(ctx context.Context, organ Organ, group BloodGroup, exclude uuid.UUID) ([]*Summary, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT DISTINCT `+summaryCols+` FROM hospital h
		JOIN organ_offer o ON o.hospital_id = h.id
		WHERE o.organ = $1 AND o.blood_group = $2 AND h.id <> $3
		ORDER BY h.name`, organ, group, exclude)
	if err != nil {
		return nil, db.Unavailable("search by organ", err)
	}
	return r.scanSummaries(rows)
}

// ---- Inventory store ----

type inventoryRepoPG struct{ pool *pgxpool.Pool }

func NewInventoryRepoPG(pool *pgxpool.Pool) InventoryRepository {
	return &inventoryRepoPG{pool: pool}
}

func (r *inventoryRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *inventoryRepoPG) Snapshot(ctx context.Context, hospitalID uuid.UUID) (*InventorySnapshot, error) {
	var inv InventorySnapshot
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT oxygen_cylinders FROM hospital WHERE id = $1`, hospitalID).
		Scan(&inv.OxygenCylinders)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, db.Unavailable("read oxygen stock", err)
	}

	rows, err := r.conn(ctx).Query(ctx, `
		SELECT blood_group, units FROM blood_inventory
		WHERE hospital_id = $1 ORDER BY blood_group`, hospitalID)
	if err != nil {
		return nil, db.Unavailable("read blood stock", err)
	}
	defer rows.Close()
	for rows.Next() {
		var b BloodStock
		if err := rows.Scan(&b.Group, &b.Units); err != nil {
			return nil, db.Unavailable("scan blood stock", err)
		}
		inv.Blood = append(inv.Blood, b)
	}
	rows.Close()

	offerRows, err := r.conn(ctx).Query(ctx, `
		SELECT id, hospital_id, organ, blood_group, donor_age, notes, created_at
		FROM organ_offer WHERE hospital_id = $1 ORDER BY created_at`, hospitalID)
	if err != nil {
		return nil, db.Unavailable("read organ offers", err)
	}
	defer offerRows.Close()
	for offerRows.Next() {
		var o OrganOffer
		if err := offerRows.Scan(&o.ID, &o.HospitalID, &o.Organ, &o.BloodGroup,
			&o.DonorAge, &o.Notes, &o.CreatedAt); err != nil {
			return nil, db.Unavailable("scan organ offer", err)
		}
		inv.Organs = append(inv.Organs, &o)
	}
	return &inv, nil
}

func (r *inventoryRepoPG) Replace(ctx context.Context, hospitalID uuid.UUID, inv *InventorySnapshot) error {
	c := r.conn(ctx)

	tag, err := c.Exec(ctx, `
		UPDATE hospital SET oxygen_cylinders = $2, updated_at = NOW() WHERE id = $1`,
		hospitalID, inv.OxygenCylinders)
	if err != nil {
		return db.Unavailable("replace oxygen stock", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	if _, err := c.Exec(ctx, `DELETE FROM blood_inventory WHERE hospital_id = $1`, hospitalID); err != nil {
		return db.Unavailable("clear blood stock", err)
	}
	for _, b := range inv.Blood {
		if _, err := c.Exec(ctx, `
			INSERT INTO blood_inventory (hospital_id, blood_group, units)
			VALUES ($1,$2,$3)`, hospitalID, b.Group, b.Units); err != nil {
			return db.Unavailable("insert blood stock", err)
		}
	}

	if _, err := c.Exec(ctx, `DELETE FROM organ_offer WHERE hospital_id = $1`, hospitalID); err != nil {
		return db.Unavailable("clear organ offers", err)
	}
	for _, o := range inv.Organs {
		o.ID = uuid.New()
		o.HospitalID = hospitalID
		if _, err := c.Exec(ctx, `
			INSERT INTO organ_offer (id, hospital_id, organ, blood_group, donor_age, notes)
			VALUES ($1,$2,$3,$4,$5,$6)`,
			o.ID, o.HospitalID, o.Organ, o.BloodGroup, o.DonorAge, o.Notes); err != nil {
			return db.Unavailable("insert organ offer", err)
		}
	}
	return nil
}

func (r *inventoryRepoPG) DebitOxygen(ctx context.Context, hospitalID uuid.UUID, cylinders int) error {
	// Conditional update: the floor guard in the WHERE clause is what makes
	// concurrent debits safe without a prior read.
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE hospital SET oxygen_cylinders = oxygen_cylinders - $2, updated_at = NOW()
		WHERE id = $1 AND oxygen_cylinders >= $2`, hospitalID, cylinders)
	if err != nil {
		return db.Unavailable("debit oxygen", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrInsufficientInventory
	}
	return nil
}

func (r *inventoryRepoPG) DebitBlood(ctx context.Context, hospitalID uuid.UUID, group BloodGroup, units int) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE blood_inventory SET units = units - $3
		WHERE hospital_id = $1 AND blood_group = $2 AND units >= $3`,
		hospitalID, group, units)
	if err != nil {
		return db.Unavailable("debit blood", err)
	}
	if tag.RowsAffected() == 0 {
		// A missing row means zero units on hand.
		return ErrInsufficientInventory
	}
	return nil
}

func (r *inventoryRepoPG) ConsumeOrganOffer(ctx context.Context, hospitalID uuid.UUID, organ Organ, group BloodGroup) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		DELETE FROM organ_offer WHERE id = (
			SELECT id FROM organ_offer
			WHERE hospital_id = $1 AND organ = $2 AND blood_group = $3
			ORDER BY created_at
			LIMIT 1
		)`, hospitalID, organ, group)
	if err != nil {
		return db.Unavailable("consume organ offer", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrInsufficientInventory
	}
	return nil
}
