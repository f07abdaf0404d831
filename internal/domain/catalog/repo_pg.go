package catalog

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

type serviceRepoPG struct{ pool *pgxpool.Pool }

func NewServiceRepoPG(pool *pgxpool.Pool) ServiceRepository { return &serviceRepoPG{pool: pool} }

func (r *serviceRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const svcCols = `s.id, s.name, s.description, s.price, s.department_id, s.deleted, s.created_at, s.updated_at`

func scanService(row pgx.Row) (*MedicalService, error) {
	var s MedicalService
	err := row.Scan(&s.ID, &s.Name, &s.Description, &s.Price, &s.DepartmentID,
		&s.Deleted, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &s, err
}

func (r *serviceRepoPG) Create(ctx context.Context, s *MedicalService) error {
	s.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO medical_service (id, name, description, price, department_id)
		VALUES ($1,$2,$3,$4,$5)`,
		s.ID, s.Name, s.Description, s.Price, s.DepartmentID)
	return err
}

func (r *serviceRepoPG) GetInClinic(ctx context.Context, id, clinicID uuid.UUID) (*MedicalService, error) {
	return scanService(r.conn(ctx).QueryRow(ctx, `
		SELECT `+svcCols+`
		FROM medical_service s
		JOIN department d ON d.id = s.department_id
		WHERE s.id = $1 AND d.clinic_id = $2 AND NOT s.deleted`, id, clinicID))
}

func (r *serviceRepoPG) Update(ctx context.Context, s *MedicalService) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE medical_service SET name=$2, description=$3, price=$4, updated_at=NOW()
		WHERE id = $1 AND NOT deleted`,
		s.ID, s.Name, s.Description, s.Price)
	return err
}

func (r *serviceRepoPG) SoftDelete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx,
		`UPDATE medical_service SET deleted = TRUE, updated_at = NOW() WHERE id = $1`, id)
	return err
}

func (r *serviceRepoPG) ExistsByNameAndDepartment(ctx context.Context, name string, departmentID, excludeID uuid.UUID) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM medical_service
			WHERE name = $1 AND department_id = $2 AND NOT deleted AND id <> $3)`,
		name, departmentID, excludeID).Scan(&exists)
	return exists, err
}

func (r *serviceRepoPG) ListByClinic(ctx context.Context, clinicID uuid.UUID, limit, offset int) ([]*MedicalService, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `
		SELECT COUNT(*)
		FROM medical_service s
		JOIN department d ON d.id = s.department_id
		WHERE d.clinic_id = $1 AND NOT s.deleted`, clinicID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+svcCols+`
		FROM medical_service s
		JOIN department d ON d.id = s.department_id
		WHERE d.clinic_id = $1 AND NOT s.deleted
		ORDER BY s.name ASC LIMIT $2 OFFSET $3`, clinicID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var services []*MedicalService
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, 0, err
		}
		services = append(services, s)
	}
	return services, total, rows.Err()
}
