package request

import (
	"context"
	"errors"
	"fmt"

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

const requestCols = `r.id, r.requesting_hospital_id, r.providing_hospital_id,
	r.request_type, r.status, r.blood_group, r.organ, r.quantity,
	r.description, r.created_at, r.updated_at`

func scanRequest(row pgx.Row) (*ResourceRequest, error) {
	var req ResourceRequest
	err := row.Scan(&req.ID, &req.RequestingHospitalID, &req.ProvidingHospitalID,
		&req.Type, &req.Status, &req.BloodGroup, &req.Organ, &req.Quantity,
		&req.Description, &req.CreatedAt, &req.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, db.Unavailable("scan request", err)
	}
	return &req, nil
}

func (r *repoPG) Create(ctx context.Context, req *ResourceRequest) error {
	req.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO resource_request (id, requesting_hospital_id, request_type, status,
			blood_group, organ, quantity, description)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		req.ID, req.RequestingHospitalID, req.Type, req.Status,
		req.BloodGroup, req.Organ, req.Quantity, req.Description)
	if err != nil {
		return db.Unavailable("insert request", err)
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*ResourceRequest, error) {
	return scanRequest(r.conn(ctx).QueryRow(ctx,
		`SELECT `+requestCols+` FROM resource_request r WHERE r.id = $1`, id))
}

func (r *repoPG) List(ctx context.Context, params map[string]string, limit, offset int) ([]*ResourceRequest, int, error) {
	where := ` WHERE 1=1`
	var args []interface{}
	idx := 1

	if p, ok := params["status"]; ok {
		where += fmt.Sprintf(` AND r.status = $%d`, idx)
		args = append(args, p)
		idx++
	}
	if p, ok := params["type"]; ok {
		where += fmt.Sprintf(` AND r.request_type = $%d`, idx)
		args = append(args, p)
		idx++
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM resource_request r`+where, args...).Scan(&total); err != nil {
		return nil, 0, db.Unavailable("count requests", err)
	}

	query := `
		SELECT ` + requestCols + `, rh.name, ph.name
		FROM resource_request r
		JOIN hospital rh ON rh.id = r.requesting_hospital_id
		LEFT JOIN hospital ph ON ph.id = r.providing_hospital_id` +
		where + fmt.Sprintf(` ORDER BY r.created_at DESC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, db.Unavailable("list requests", err)
	}
	defer rows.Close()

	var items []*ResourceRequest
	for rows.Next() {
		var req ResourceRequest
		if err := rows.Scan(&req.ID, &req.RequestingHospitalID, &req.ProvidingHospitalID,
			&req.Type, &req.Status, &req.BloodGroup, &req.Organ, &req.Quantity,
			&req.Description, &req.CreatedAt, &req.UpdatedAt,
			&req.RequestingHospitalName, &req.ProvidingHospitalName); err != nil {
			return nil, 0, db.Unavailable("scan request row", err)
		}
		items = append(items, &req)
	}
	return items, total, nil
}

func (r *repoPG) TransitionStatus(ctx context.Context, id uuid.UUID, from, to Status, provider *uuid.UUID) (bool, error) {
	// The status guard in the WHERE clause is the compare-and-swap: under
	// concurrent attempts only one UPDATE matches a row.
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE resource_request
		SET status = $3, providing_hospital_id = COALESCE($4, providing_hospital_id),
			updated_at = NOW()
		WHERE id = $1 AND status = $2`,
		id, from, to, provider)
	if err != nil {
		return false, db.Unavailable("transition request status", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *repoPG) DeleteIfOpen(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.conn(ctx).Exec(ctx,
		`DELETE FROM resource_request WHERE id = $1 AND status = $2`, id, StatusOpen)
	if err != nil {
		return false, db.Unavailable("delete request", err)
	}
	return tag.RowsAffected() == 1, nil
}
