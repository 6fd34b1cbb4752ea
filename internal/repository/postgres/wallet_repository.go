package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"quickgig/internal/common"
	"quickgig/internal/domain/wallet"
)

const walletColumns = `id, student_id, job_id, amount, duration_hours, status, payment_date, created_at`

type WalletRepository struct {
	db *sql.DB
}

func NewWalletRepository(db *sql.DB) *WalletRepository {
	return &WalletRepository{db: db}
}

func (r *WalletRepository) Create(ctx context.Context, entry wallet.Entry) (*wallet.Entry, error) {
	entry.ID = common.NewUUID()
	entry.CreatedAt = time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `INSERT INTO wallet_entries (`+walletColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		entry.ID, entry.StudentID, entry.JobID, entry.Amount, entry.DurationHours, entry.Status, entry.PaymentDate, entry.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, common.NewError(common.CodeConflict, "wallet entry already exists for this job", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to create wallet entry", err)
	}
	return &entry, nil
}

func (r *WalletRepository) GetByID(ctx context.Context, id common.UUID) (*wallet.Entry, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+walletColumns+` FROM wallet_entries WHERE id = $1`, id)
	return scanWalletRow(row)
}

func (r *WalletRepository) FindByJobAndStudent(ctx context.Context, jobID, studentID common.UUID) (*wallet.Entry, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+walletColumns+` FROM wallet_entries WHERE job_id = $1 AND student_id = $2`, jobID, studentID)
	return scanWalletRow(row)
}

func (r *WalletRepository) ListByStudent(ctx context.Context, studentID common.UUID, status *wallet.Status, sort wallet.Sort) ([]wallet.Entry, error) {
	query := `SELECT ` + walletColumns + ` FROM wallet_entries WHERE student_id = $1`
	args := []any{studentID}
	if status != nil {
		args = append(args, *status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	query += ` ORDER BY ` + walletSortColumn(sort) + ` DESC NULLS LAST`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list wallet entries", err)
	}
	defer rows.Close()
	var items []wallet.Entry
	for rows.Next() {
		var entry wallet.Entry
		if err := rows.Scan(&entry.ID, &entry.StudentID, &entry.JobID, &entry.Amount, &entry.DurationHours, &entry.Status, &entry.PaymentDate, &entry.CreatedAt); err != nil {
			return nil, common.NewError(common.CodeInternal, "failed to scan wallet entry", err)
		}
		items = append(items, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to read wallet entries", err)
	}
	return items, nil
}

// MarkPaid flips a pending entry to paid. The status guard is in the WHERE
// clause so a concurrent double-pay cannot overwrite payment_date.
func (r *WalletRepository) MarkPaid(ctx context.Context, id common.UUID, paymentDate time.Time) (*wallet.Entry, error) {
	result, err := r.db.ExecContext(ctx, `UPDATE wallet_entries SET status = $1, payment_date = $2 WHERE id = $3 AND status = $4`,
		wallet.StatusPaid, paymentDate.UTC(), id, wallet.StatusPending)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to mark wallet entry paid", err)
	}
	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return nil, getErr
		}
		return nil, common.NewError(common.CodeInvalidState, "wallet entry is already paid", nil)
	}
	return r.GetByID(ctx, id)
}

func walletSortColumn(sort wallet.Sort) string {
	switch sort {
	case wallet.SortAmount:
		return "amount"
	case wallet.SortHours:
		return "duration_hours"
	default:
		return "created_at"
	}
}

func scanWalletRow(row rowScanner) (*wallet.Entry, error) {
	var entry wallet.Entry
	err := row.Scan(&entry.ID, &entry.StudentID, &entry.JobID, &entry.Amount, &entry.DurationHours, &entry.Status, &entry.PaymentDate, &entry.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NewError(common.CodeNotFound, "wallet entry not found", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to load wallet entry", err)
	}
	return &entry, nil
}
