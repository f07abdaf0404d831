package identity

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

type userRepoPG struct{ pool *pgxpool.Pool }

func NewUserRepoPG(pool *pgxpool.Pool) UserRepository { return &userRepoPG{pool: pool} }

func (r *userRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const userCols = `id, username, password_hash, full_name, gender, address, phone_number, birth_date, role, clinic_id, deleted, created_at, updated_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.FullName, &u.Gender,
		&u.Address, &u.PhoneNumber, &u.BirthDate, &u.Role, &u.ClinicID,
		&u.Deleted, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &u, err
}

func (r *userRepoPG) Create(ctx context.Context, u *User) error {
	u.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO users (id, username, password_hash, full_name, gender, address, phone_number, birth_date, role, clinic_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		u.ID, u.Username, u.PasswordHash, u.FullName, u.Gender,
		u.Address, u.PhoneNumber, u.BirthDate, u.Role, u.ClinicID)
	return err
}

func (r *userRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return scanUser(r.conn(ctx).QueryRow(ctx,
		`SELECT `+userCols+` FROM users WHERE id = $1 AND NOT deleted`, id))
}

func (r *userRepoPG) GetByUsername(ctx context.Context, username string) (*User, error) {
	return scanUser(r.conn(ctx).QueryRow(ctx,
		`SELECT `+userCols+` FROM users WHERE username = $1 AND NOT deleted`, username))
}

func (r *userRepoPG) Update(ctx context.Context, u *User) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE users SET username=$2, password_hash=$3, full_name=$4, gender=$5,
			address=$6, phone_number=$7, birth_date=$8, role=$9, clinic_id=$10, updated_at=NOW()
		WHERE id = $1 AND NOT deleted`,
		u.ID, u.Username, u.PasswordHash, u.FullName, u.Gender,
		u.Address, u.PhoneNumber, u.BirthDate, u.Role, u.ClinicID)
	return err
}

func (r *userRepoPG) SoftDelete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx,
		`UPDATE users SET deleted = TRUE, updated_at = NOW() WHERE id = $1`, id)
	return err
}

func (r *userRepoPG) ExistsTaken(ctx context.Context, username, phone string, excludeID uuid.UUID) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM users
			WHERE (username = $1 OR phone_number = $2) AND NOT deleted AND id <> $3)`,
		username, phone, excludeID).Scan(&exists)
	return exists, err
}

func (r *userRepoPG) List(ctx context.Context, clinicID *uuid.UUID, limit, offset int) ([]*User, int, error) {
	// The operator account is administrative and never shows up in listings.
	// ($1::uuid IS NULL) keeps a single prepared statement for both the
	// clinic-scoped and unscoped cases.
	const where = ` FROM users
		WHERE NOT deleted AND role <> 'DEV'
		AND ($1::uuid IS NULL OR clinic_id = $1)`

	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*)`+where, clinicID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+userCols+where+` ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		clinicID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var users []*User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, u)
	}
	return users, total, rows.Err()
}
