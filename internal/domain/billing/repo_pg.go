package billing

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

type transactionRepoPG struct{ pool *pgxpool.Pool }

func NewTransactionRepoPG(pool *pgxpool.Pool) TransactionRepository {
	return &transactionRepoPG{pool: pool}
}

func (r *transactionRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const txCols = `t.id, t.patient_id, t.amount, t.payment_method, t.doctor_id, t.service_id, t.provider_ref, t.deleted, t.created_at, t.updated_at`

// clinicJoins resolves the transaction's clinic through the paid party.
const clinicJoins = `
	LEFT JOIN employee e ON e.id = t.doctor_id
	LEFT JOIN users u ON u.id = e.user_id
	LEFT JOIN medical_service s ON s.id = t.service_id
	LEFT JOIN department d ON d.id = s.department_id`

func scanTransaction(row pgx.Row) (*Transaction, error) {
	var t Transaction
	err := row.Scan(&t.ID, &t.PatientID, &t.Amount, &t.PaymentMethod,
		&t.DoctorID, &t.ServiceID, &t.ProviderRef, &t.Deleted, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &t, err
}

func (r *transactionRepoPG) Create(ctx context.Context, t *Transaction) error {
	t.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO transactions (id, patient_id, amount, payment_method, doctor_id, service_id, provider_ref)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		t.ID, t.PatientID, t.Amount, t.PaymentMethod, t.DoctorID, t.ServiceID, t.ProviderRef)
	return err
}

func (r *transactionRepoPG) Get(ctx context.Context, id uuid.UUID) (*Transaction, error) {
	return scanTransaction(r.conn(ctx).QueryRow(ctx, `
		SELECT `+txCols+`
		FROM transactions t
		WHERE t.id = $1 AND NOT t.deleted`, id))
}

func (r *transactionRepoPG) GetInClinic(ctx context.Context, id, clinicID uuid.UUID) (*Transaction, error) {
	return scanTransaction(r.conn(ctx).QueryRow(ctx, `
		SELECT `+txCols+`
		FROM transactions t`+clinicJoins+`
		WHERE t.id = $1 AND NOT t.deleted
		AND (u.clinic_id = $2 OR d.clinic_id = $2)`, id, clinicID))
}

func (r *transactionRepoPG) ListByClinic(ctx context.Context, clinicID uuid.UUID, payFor string, limit, offset int) ([]*Transaction, int, error) {
	where := ` WHERE NOT t.deleted AND (u.clinic_id = $1 OR d.clinic_id = $1)`
	switch payFor {
	case PayForDoctor:
		where = ` WHERE NOT t.deleted AND t.service_id IS NULL AND u.clinic_id = $1`
	case PayForServices:
		where = ` WHERE NOT t.deleted AND t.doctor_id IS NULL AND d.clinic_id = $1`
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM transactions t`+clinicJoins+where, clinicID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+txCols+`
		FROM transactions t`+clinicJoins+where+`
		ORDER BY t.created_at DESC LIMIT $2 OFFSET $3`, clinicID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var transactions []*Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, 0, err
		}
		transactions = append(transactions, t)
	}
	return transactions, total, rows.Err()
}
