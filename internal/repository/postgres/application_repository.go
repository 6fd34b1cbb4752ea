package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"quickgig/internal/common"
	"quickgig/internal/domain/application"
)

const applicationColumns = `id, job_id, student_id, status, original_pay, negotiated_pay, final_pay,
	last_offer_by, distance_km, time_to_reach_min, message, created_at, updated_at`

type ApplicationRepository struct {
	db *sql.DB
}

func NewApplicationRepository(db *sql.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

func (r *ApplicationRepository) Create(ctx context.Context, app application.Application) (*application.Application, error) {
	app.ID = common.NewUUID()
	now := time.Now().UTC()
	app.CreatedAt = now
	app.UpdatedAt = now
	_, err := r.db.ExecContext(ctx, `INSERT INTO applications (`+applicationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		app.ID, app.JobID, app.StudentID, app.Status, app.OriginalPay, app.NegotiatedPay, app.FinalPay,
		app.LastOfferBy, app.DistanceKm, app.TimeToReachMin, app.Message, app.CreatedAt, app.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, common.NewError(common.CodeConflict, "application already exists for this job", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to create application", err)
	}
	return &app, nil
}

func (r *ApplicationRepository) GetByID(ctx context.Context, id common.UUID) (*application.Application, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+applicationColumns+` FROM applications WHERE id = $1`, id)
	return scanApplicationRow(row, "application not found")
}

func (r *ApplicationRepository) FindByJobAndStudent(ctx context.Context, jobID, studentID common.UUID) (*application.Application, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+applicationColumns+` FROM applications WHERE job_id = $1 AND student_id = $2`, jobID, studentID)
	return scanApplicationRow(row, "application not found")
}

func (r *ApplicationRepository) FindAcceptedByJob(ctx context.Context, jobID common.UUID) (*application.Application, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+applicationColumns+` FROM applications WHERE job_id = $1 AND status = $2`, jobID, application.StatusAccepted)
	return scanApplicationRow(row, "accepted application not found")
}

func (r *ApplicationRepository) ListByJob(ctx context.Context, jobID common.UUID) ([]application.Application, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+applicationColumns+` FROM applications WHERE job_id = $1 ORDER BY created_at`, jobID)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list job applications", err)
	}
	defer rows.Close()
	return collectApplications(rows)
}

func (r *ApplicationRepository) ListByStudent(ctx context.Context, studentID common.UUID) ([]application.Application, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+applicationColumns+` FROM applications WHERE student_id = $1 ORDER BY created_at DESC`, studentID)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list student applications", err)
	}
	defer rows.Close()
	return collectApplications(rows)
}

func (r *ApplicationRepository) UpdateOffer(ctx context.Context, id common.UUID, offer decimal.Decimal, by application.Party) (*application.Application, error) {
	updatedAt := time.Now().UTC()
	result, err := r.db.ExecContext(ctx, `UPDATE applications SET status = $1, negotiated_pay = $2, last_offer_by = $3, updated_at = $4 WHERE id = $5`,
		application.StatusNegotiating, offer, by, updatedAt, id)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to update offer", err)
	}
	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		return nil, common.NewError(common.CodeNotFound, "application not found", sql.ErrNoRows)
	}
	return r.GetByID(ctx, id)
}

func (r *ApplicationRepository) Accept(ctx context.Context, id common.UUID, finalPay decimal.Decimal) (*application.Application, error) {
	updatedAt := time.Now().UTC()
	result, err := r.db.ExecContext(ctx, `UPDATE applications SET status = $1, final_pay = $2, updated_at = $3 WHERE id = $4`,
		application.StatusAccepted, finalPay, updatedAt, id)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, common.NewError(common.CodeConflict, "job already has an accepted application", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to accept application", err)
	}
	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		return nil, common.NewError(common.CodeNotFound, "application not found", sql.ErrNoRows)
	}
	return r.GetByID(ctx, id)
}

func (r *ApplicationRepository) Reject(ctx context.Context, id common.UUID) (*application.Application, error) {
	updatedAt := time.Now().UTC()
	result, err := r.db.ExecContext(ctx, `UPDATE applications SET status = $1, updated_at = $2 WHERE id = $3`,
		application.StatusRejected, updatedAt, id)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to reject application", err)
	}
	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		return nil, common.NewError(common.CodeNotFound, "application not found", sql.ErrNoRows)
	}
	return r.GetByID(ctx, id)
}

// RejectOpenByJob fires the rejection cascade as a single statement, so the
// losing applications flip atomically with respect to each other. The excepted
// id only enters the statement when set: applications.id is a uuid column and
// the driver cannot encode an empty string for it.
func (r *ApplicationRepository) RejectOpenByJob(ctx context.Context, jobID, except common.UUID) (int64, error) {
	updatedAt := time.Now().UTC()
	query := `UPDATE applications SET status = $1, updated_at = $2
		WHERE job_id = $3 AND status IN ($4, $5)`
	args := []any{application.StatusRejected, updatedAt, jobID, application.StatusPending, application.StatusNegotiating}
	if except != "" {
		args = append(args, except)
		query += fmt.Sprintf(" AND id <> $%d", len(args))
	}
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, common.NewError(common.CodeInternal, "failed to reject competing applications", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, common.NewError(common.CodeInternal, "failed to count rejected applications", err)
	}
	return affected, nil
}

func scanApplicationRow(row rowScanner, notFoundMsg string) (*application.Application, error) {
	app, err := scanApplication(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NewError(common.CodeNotFound, notFoundMsg, err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to load application", err)
	}
	return app, nil
}

func scanApplication(row rowScanner) (*application.Application, error) {
	var app application.Application
	err := row.Scan(&app.ID, &app.JobID, &app.StudentID, &app.Status, &app.OriginalPay, &app.NegotiatedPay, &app.FinalPay,
		&app.LastOfferBy, &app.DistanceKm, &app.TimeToReachMin, &app.Message, &app.CreatedAt, &app.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &app, nil
}

func collectApplications(rows *sql.Rows) ([]application.Application, error) {
	var items []application.Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, common.NewError(common.CodeInternal, "failed to scan application", err)
		}
		items = append(items, *app)
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to read applications", err)
	}
	return items, nil
}
