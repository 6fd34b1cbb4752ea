package job

import (
	"context"
	"time"

	"quickgig/internal/common"
)

type Sort string

const (
	SortRecent    Sort = "created_at"
	SortPay       Sort = "pay_offered"
	SortStartTime Sort = "start_time"
)

// Filter narrows the public listing. Search matches title and description
// case-insensitively; Domains is an equality filter over the job category.
type Filter struct {
	Search  string
	Domains []string
	Status  Status
}

type Repository interface {
	Create(ctx context.Context, j Job) (*Job, error)
	GetByID(ctx context.Context, id common.UUID) (*Job, error)
	List(ctx context.Context, filter Filter, sort Sort, limit, offset int) ([]Job, error)
	ListByPoster(ctx context.Context, posterID common.UUID) ([]Job, error)
	UpdateStatus(ctx context.Context, id common.UUID, status Status) (*Job, error)
	// ListFilledEndedBefore lists filled jobs whose scheduled end has passed,
	// feeding the completion sweeper.
	ListFilledEndedBefore(ctx context.Context, deadline time.Time) ([]Job, error)
}
