package wallet

import (
	"context"
	"time"

	"quickgig/internal/common"
)

type Sort string

const (
	SortDate   Sort = "created_at"
	SortAmount Sort = "amount"
	SortHours  Sort = "duration_hours"
)

type Repository interface {
	// Create inserts a new entry. A second entry for the same (job, student)
	// pair fails with a conflict error; callers rely on that for idempotent
	// settlement.
	Create(ctx context.Context, entry Entry) (*Entry, error)
	GetByID(ctx context.Context, id common.UUID) (*Entry, error)
	FindByJobAndStudent(ctx context.Context, jobID, studentID common.UUID) (*Entry, error)
	ListByStudent(ctx context.Context, studentID common.UUID, status *Status, sort Sort) ([]Entry, error)
	MarkPaid(ctx context.Context, id common.UUID, paymentDate time.Time) (*Entry, error)
}
