package staff

import (
	"context"
	"errors"

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

type employeeRepoPG struct{ pool *pgxpool.Pool }

func NewEmployeeRepoPG(pool *pgxpool.Pool) EmployeeRepository { return &employeeRepoPG{pool: pool} }

func (r *employeeRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const empCols = `e.id, e.user_id, e.experience, e.education, e.consultant_price, e.service_id, e.deleted, e.created_at, e.updated_at`

func scanEmployee(row pgx.Row) (*Employee, error) {
	var e Employee
	err := row.Scan(&e.ID, &e.UserID, &e.Experience, &e.Education,
		&e.ConsultantPrice, &e.ServiceID, &e.Deleted, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &e, err
}

func (r *employeeRepoPG) Create(ctx context.Context, e *Employee) error {
	e.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO employee (id, user_id, experience, education, consultant_price, service_id)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		e.ID, e.UserID, e.Experience, e.Education, e.ConsultantPrice, e.ServiceID)
	return err
}

func (r *employeeRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Employee, error) {
	return scanEmployee(r.conn(ctx).QueryRow(ctx, `
		SELECT `+empCols+` FROM employee e WHERE e.id = $1 AND NOT e.deleted`, id))
}

func (r *employeeRepoPG) GetInClinic(ctx context.Context, id, clinicID uuid.UUID) (*Employee, error) {
	return scanEmployee(r.conn(ctx).QueryRow(ctx, `
		SELECT `+empCols+`
		FROM employee e
		JOIN users u ON u.id = e.user_id
		WHERE e.id = $1 AND u.clinic_id = $2 AND NOT e.deleted`, id, clinicID))
}

func (r *employeeRepoPG) GetByUserID(ctx context.Context, userID uuid.UUID) (*Employee, error) {
	return scanEmployee(r.conn(ctx).QueryRow(ctx, `
		SELECT `+empCols+` FROM employee e WHERE e.user_id = $1 AND NOT e.deleted`, userID))
}

func (r *employeeRepoPG) Update(ctx context.Context, e *Employee) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE employee SET experience=$2, education=$3, consultant_price=$4, service_id=$5, updated_at=NOW()
		WHERE id = $1 AND NOT deleted`,
		e.ID, e.Experience, e.Education, e.ConsultantPrice, e.ServiceID)
	return err
}

func (r *employeeRepoPG) SoftDelete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx,
		`UPDATE employee SET deleted = TRUE, updated_at = NOW() WHERE id = $1`, id)
	return err
}

func (r *employeeRepoPG) ListByClinic(ctx context.Context, clinicID uuid.UUID, limit, offset int) ([]*Employee, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `
		SELECT COUNT(*)
		FROM employee e
		JOIN users u ON u.id = e.user_id
		WHERE u.clinic_id = $1 AND NOT e.deleted`, clinicID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+empCols+`
		FROM employee e
		JOIN users u ON u.id = e.user_id
		WHERE u.clinic_id = $1 AND NOT e.deleted
		ORDER BY e.created_at DESC LIMIT $2 OFFSET $3`, clinicID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var employees []*Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, 0, err
		}
		employees = append(employees, e)
	}
	return employees, total, rows.Err()
}

func (r *employeeRepoPG) DoctorByUserID(ctx context.Context, userID uuid.UUID) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT e.id
		FROM employee e
		JOIN users u ON u.id = e.user_id
		WHERE e.user_id = $1 AND u.role = 'DOCTOR' AND NOT e.deleted AND NOT u.deleted`,
		userID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, ErrNotFound
	}
	return id, err
}

func (r *employeeRepoPG) DoctorExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1
			FROM employee e
			JOIN users u ON u.id = e.user_id
			WHERE e.id = $1 AND u.role = 'DOCTOR' AND NOT e.deleted AND NOT u.deleted)`,
		id).Scan(&exists)
	return exists, err
}
