package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Bytix-in/Prana-AI/module/dispatch/domain"
	"github.com/Bytix-in/Prana-AI/module/dispatch/internal/repository/database"
)

var _ database.DispatchRepository = (*DispatchRepo)(nil)

// Schema creates the tables used by DispatchRepo.
const Schema = `
CREATE TABLE IF NOT EXISTS dispatches (
	id                VARCHAR PRIMARY KEY,
	ambulance_type    VARCHAR NOT NULL,
	patient_name      VARCHAR NOT NULL,
	patient_age       INTEGER NOT NULL DEFAULT 0,
	patient_condition TEXT NOT NULL,
	priority          VARCHAR NOT NULL,
	status            VARCHAR NOT NULL,
	pickup_lat        DOUBLE PRECISION NOT NULL,
	pickup_lon        DOUBLE PRECISION NOT NULL,
	origin_lat        DOUBLE PRECISION NOT NULL,
	origin_lon        DOUBLE PRECISION NOT NULL,
	pickup_address    TEXT NOT NULL DEFAULT '',
	distance_km       DOUBLE PRECISION NOT NULL,
	created_at        TIMESTAMPTZ NOT NULL,
	updated_at        TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS dispatch_attachments (
	id           VARCHAR PRIMARY KEY,
	dispatch_id  VARCHAR NOT NULL REFERENCES dispatches(id) ON DELETE CASCADE,
	object_key   VARCHAR NOT NULL,
	filename     VARCHAR NOT NULL,
	content_type VARCHAR NOT NULL,
	size_bytes   BIGINT NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL
);`

type DispatchRepo struct {
	db *sql.DB
}

func NewDispatchRepo(db *sql.DB) *DispatchRepo {
	return &DispatchRepo{db: db}
}

func (r *DispatchRepo) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("migrate dispatches: %w", err)
	}
	return nil
}

func (r *DispatchRepo) Insert(ctx context.Context, d *domain.Dispatch) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO dispatches (id, ambulance_type, patient_name, patient_age, patient_condition, priority, status, pickup_lat, pickup_lon, origin_lat, origin_lon, pickup_address, distance_km, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		d.ID, d.AmbulanceType, d.Patient.Name, d.Patient.Age, d.Patient.Condition, string(d.Priority), string(d.Status),
		d.Pickup.Lat, d.Pickup.Lon, d.Origin.Lat, d.Origin.Lon, d.PickupAddress, d.TotalDistanceKm, d.CreatedAt, d.UpdatedAt,
	)
	return err
}

func (r *DispatchRepo) Get(ctx context.Context, id string) (*domain.Dispatch, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, ambulance_type, patient_name, patient_age, patient_condition, priority, status, pickup_lat, pickup_lon, origin_lat, origin_lon, pickup_address, distance_km, created_at, updated_at FROM dispatches WHERE id = $1`,
		id,
	)

	var (
		d                domain.Dispatch
		priority, status string
	)
	err := row.Scan(&d.ID, &d.AmbulanceType, &d.Patient.Name, &d.Patient.Age, &d.Patient.Condition, &priority, &status,
		&d.Pickup.Lat, &d.Pickup.Lon, &d.Origin.Lat, &d.Origin.Lon, &d.PickupAddress, &d.TotalDistanceKm, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrDispatchNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	d.Priority = domain.Priority(priority)
	d.Status = domain.DispatchStatus(status)
	return &d, nil
}

func (r *DispatchRepo) UpdateStatus(ctx context.Context, id string, status domain.DispatchStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE dispatches SET status = $1, updated_at = NOW() WHERE id = $2`,
		string(status), id,
	)
	if err != nil {
		return err
	}
	return expectOne(res, id)
}

func (r *DispatchRepo) UpdatePriority(ctx context.Context, id string, priority domain.Priority) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE dispatches SET priority = $1, updated_at = NOW() WHERE id = $2`,
		string(priority), id,
	)
	if err != nil {
		return err
	}
	return expectOne(res, id)
}

func (r *DispatchRepo) InsertAttachment(ctx context.Context, a *domain.Attachment) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO dispatch_attachments (id, dispatch_id, object_key, filename, content_type, size_bytes, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		a.ID, a.DispatchID, a.Key, a.Filename, a.ContentType, a.Size, a.CreatedAt,
	)
	return err
}

func (r *DispatchRepo) ListAttachments(ctx context.Context, dispatchID string) ([]domain.Attachment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, dispatch_id, object_key, filename, content_type, size_bytes, created_at FROM dispatch_attachments WHERE dispatch_id = $1 ORDER BY created_at ASC`,
		dispatchID,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var results []domain.Attachment
	for rows.Next() {
		var a domain.Attachment
		if err := rows.Scan(&a.ID, &a.DispatchID, &a.Key, &a.Filename, &a.ContentType, &a.Size, &a.CreatedAt); err != nil {
			return nil, err
		}
		results = append(results, a)
	}
	return results, rows.Err()
}

func expectOne(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", domain.ErrDispatchNotFound, id)
	}
	return nil
}
