package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"quickgig/internal/common"
	"quickgig/internal/domain/job"
)

const jobColumns = `id, poster_id, title, domain, description, skills_required, gender_preference, age_preference,
	pay_offered, is_negotiable, location_address, latitude, longitude, start_time, end_time,
	optional_instructions, status, created_at, updated_at`

type JobRepository struct {
	db *sql.DB
}

func NewJobRepository(db *sql.DB) *JobRepository {
	return &JobRepository{db: db}
}

func (r *JobRepository) Create(ctx context.Context, j job.Job) (*job.Job, error) {
	j.ID = common.NewUUID()
	now := time.Now().UTC()
	j.CreatedAt = now
	j.UpdatedAt = now
	_, err := r.db.ExecContext(ctx, `INSERT INTO jobs (`+jobColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`,
		j.ID, j.PosterID, j.Title, j.Domain, j.Description, j.SkillsRequired, j.GenderPreference, j.AgePreference,
		j.PayOffered, j.IsNegotiable, j.LocationAddress, j.Latitude, j.Longitude, j.StartTime, j.EndTime,
		j.OptionalInstructions, j.Status, j.CreatedAt, j.UpdatedAt)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to create job", err)
	}
	return &j, nil
}

func (r *JobRepository) GetByID(ctx context.Context, id common.UUID) (*job.Job, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id)
	j, err := scanJob(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NewError(common.CodeNotFound, "job not found", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to load job", err)
	}
	return j, nil
}

func (r *JobRepository) List(ctx context.Context, filter job.Filter, sort job.Sort, limit, offset int) ([]job.Job, error) {
	var conditions []string
	var args []any

	status := filter.Status
	if status == "" {
		status = job.StatusActive
	}
	args = append(args, status)
	conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))

	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, "%"+search+"%")
		conditions = append(conditions, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d)", len(args), len(args)))
	}
	if len(filter.Domains) > 0 {
		args = append(args, pq.Array(filter.Domains))
		conditions = append(conditions, fmt.Sprintf("domain = ANY($%d)", len(args)))
	}

	orderBy := sortColumn(sort)
	args = append(args, limit, offset)
	query := fmt.Sprintf(`SELECT %s FROM jobs WHERE %s ORDER BY %s DESC LIMIT $%d OFFSET $%d`,
		jobColumns, strings.Join(conditions, " AND "), orderBy, len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list jobs", err)
	}
	defer rows.Close()
	return collectJobs(rows)
}

func (r *JobRepository) ListByPoster(ctx context.Context, posterID common.UUID) ([]job.Job, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE poster_id = $1 ORDER BY created_at DESC`, posterID)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list poster jobs", err)
	}
	defer rows.Close()
	return collectJobs(rows)
}

func (r *JobRepository) UpdateStatus(ctx context.Context, id common.UUID, status job.Status) (*job.Job, error) {
	updatedAt := time.Now().UTC()
	result, err := r.db.ExecContext(ctx, `UPDATE jobs SET status = $1, updated_at = $2 WHERE id = $3`, status, updatedAt, id)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to update job status", err)
	}
	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		return nil, common.NewError(common.CodeNotFound, "job not found", sql.ErrNoRows)
	}
	return r.GetByID(ctx, id)
}

func (r *JobRepository) ListFilledEndedBefore(ctx context.Context, deadline time.Time) ([]job.Job, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE status = $1 AND end_time < $2 ORDER BY end_time`, job.StatusFilled, deadline)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list ended jobs", err)
	}
	defer rows.Close()
	return collectJobs(rows)
}

func sortColumn(sort job.Sort) string {
	switch sort {
	case job.SortPay:
		return "pay_offered"
	case job.SortStartTime:
		return "start_time"
	default:
		return "created_at"
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*job.Job, error) {
	var j job.Job
	err := row.Scan(&j.ID, &j.PosterID, &j.Title, &j.Domain, &j.Description, &j.SkillsRequired, &j.GenderPreference, &j.AgePreference,
		&j.PayOffered, &j.IsNegotiable, &j.LocationAddress, &j.Latitude, &j.Longitude, &j.StartTime, &j.EndTime,
		&j.OptionalInstructions, &j.Status, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &j, nil
}

func collectJobs(rows *sql.Rows) ([]job.Job, error) {
	var items []job.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, common.NewError(common.CodeInternal, "failed to scan job", err)
		}
		items = append(items, *j)
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to read jobs", err)
	}
	return items, nil
}
