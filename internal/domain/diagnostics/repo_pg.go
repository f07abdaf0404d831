package diagnostics

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinic/clinic/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type resultRepoPG struct{ pool *pgxpool.Pool }

func NewResultRepoPG(pool *pgxpool.Pool) ResultRepository {
	return &resultRepoPG{pool: pool}
}

func (r *resultRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const resultCols = `r.id, r.patient_id, r.doctor_id, r.type, r.result, r.deleted, r.created_at, r.updated_at`

// clinicJoin resolves the result's clinic through the filing employee.
const clinicJoin = `
	JOIN employee e ON e.id = r.doctor_id
	JOIN users u ON u.id = e.user_id`

func scanResult(row pgx.Row) (*Result, error) {
	var res Result
	err := row.Scan(&res.ID, &res.PatientID, &res.DoctorID, &res.Type,
		&res.Result, &res.Deleted, &res.CreatedAt, &res.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &res, err
}

func (r *resultRepoPG) Create(ctx context.Context, res *Result) error {
	res.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO diagnosis (id, patient_id, doctor_id, type, result)
		VALUES ($1,$2,$3,$4,$5)`,
		res.ID, res.PatientID, res.DoctorID, res.Type, res.Result)
	return err
}

func (r *resultRepoPG) GetInClinic(ctx context.Context, id, clinicID uuid.UUID) (*Result, error) {
	return scanResult(r.conn(ctx).QueryRow(ctx, `
		SELECT `+resultCols+`
		FROM diagnosis r`+clinicJoin+`
		WHERE r.id = $1 AND NOT r.deleted AND u.clinic_id = $2`, id, clinicID))
}

func (r *resultRepoPG) Update(ctx context.Context, res *Result) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE diagnosis SET result = $2, updated_at = NOW()
		WHERE id = $1 AND NOT deleted`, res.ID, res.Result)
	return err
}

func (r *resultRepoPG) SoftDelete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE diagnosis SET deleted = TRUE, updated_at = NOW()
		WHERE id = $1 AND NOT deleted`, id)
	return err
}

func (r *resultRepoPG) ExistsForDay(ctx context.Context, patientID, doctorID uuid.UUID, day time.Time) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM diagnosis
			WHERE patient_id = $1 AND doctor_id = $2
			AND created_at::date = $3::date AND NOT deleted
		)`, patientID, doctorID, day).Scan(&exists)
	return exists, err
}

func (r *resultRepoPG) ListByClinic(ctx context.Context, clinicID uuid.UUID, limit, offset int) ([]*Result, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM diagnosis r`+clinicJoin+`
		WHERE NOT r.deleted AND u.clinic_id = $1`, clinicID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+resultCols+`
		FROM diagnosis r`+clinicJoin+`
		WHERE NOT r.deleted AND u.clinic_id = $1
		ORDER BY r.created_at DESC LIMIT $2 OFFSET $3`, clinicID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collectResults(rows, total)
}

func (r *resultRepoPG) ListByPatient(ctx context.Context, patientID, clinicID uuid.UUID, limit, offset int) ([]*Result, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM diagnosis r`+clinicJoin+`
		WHERE NOT r.deleted AND r.patient_id = $1 AND u.clinic_id = $2`,
		patientID, clinicID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+resultCols+`
		FROM diagnosis r`+clinicJoin+`
		WHERE NOT r.deleted AND r.patient_id = $1 AND u.clinic_id = $2
		ORDER BY r.created_at DESC LIMIT $3 OFFSET $4`,
		patientID, clinicID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collectResults(rows, total)
}

func collectResults(rows pgx.Rows, total int) ([]*Result, int, error) {
	var results []*Result
	for rows.Next() {
		res, err := scanResult(rows)
		if err != nil {
			return nil, 0, err
		}
		results = append(results, res)
	}
	return results, total, rows.Err()
}
