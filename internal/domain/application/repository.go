package application

import (
	"context"

	"github.com/shopspring/decimal"

	"quickgig/internal/common"
)

type Repository interface {
	Create(ctx context.Context, app Application) (*Application, error)
	GetByID(ctx context.Context, id common.UUID) (*Application, error)
	FindByJobAndStudent(ctx context.Context, jobID, studentID common.UUID) (*Application, error)
	FindAcceptedByJob(ctx context.Context, jobID common.UUID) (*Application, error)
	ListByJob(ctx context.Context, jobID common.UUID) ([]Application, error)
	ListByStudent(ctx context.Context, studentID common.UUID) ([]Application, error)
	// UpdateOffer records a counter-offer and moves the application to
	// negotiating.
	UpdateOffer(ctx context.Context, id common.UUID, offer decimal.Decimal, by Party) (*Application, error)
	// Accept sets final_pay and moves the application to accepted.
	Accept(ctx context.Context, id common.UUID, finalPay decimal.Decimal) (*Application, error)
	Reject(ctx context.Context, id common.UUID) (*Application, error)
	// RejectOpenByJob rejects every pending/negotiating application on the
	// job in one statement, except the given one. Pass an empty UUID to
	// reject all open applications (job cancellation).
	RejectOpenByJob(ctx context.Context, jobID, except common.UUID) (int64, error)
}
