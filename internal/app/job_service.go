package app

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"quickgig/internal/common"
	"quickgig/internal/domain/application"
	"quickgig/internal/domain/job"
)

// JobService is the job registry: it owns posting validation and the job
// lifecycle state machine. Filling is driven by application acceptance
// (ApplicationService), completion by the poster or the completion sweeper,
// cancellation by the poster.
type JobService struct {
	jobs         job.Repository
	applications application.Repository
	settlement   *SettlementCoordinator
	locks        *JobLocks
	logger       zerolog.Logger
	metrics      EngineMetrics
	now          func() time.Time
}

func NewJobService(jobs job.Repository, applications application.Repository, settlement *SettlementCoordinator, locks *JobLocks, logger zerolog.Logger, metrics EngineMetrics) *JobService {
	if metrics == nil {
		metrics = NoopMetrics{}
	}
	return &JobService{
		jobs:         jobs,
		applications: applications,
		settlement:   settlement,
		locks:        locks,
		logger:       logger,
		metrics:      metrics,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func (s *JobService) Post(ctx context.Context, draft job.Job) (*job.Job, error) {
	if err := validateJobDraft(draft); err != nil {
		return nil, err
	}
	draft.Status = job.StatusActive
	created, err := s.jobs.Create(ctx, draft)
	if err != nil {
		return nil, err
	}
	s.metrics.JobPosted()
	s.logger.Info().Str("job_id", created.ID.String()).Str("poster_id", created.PosterID.String()).Msg("job posted")
	return created, nil
}

func (s *JobService) Get(ctx context.Context, id common.UUID) (*job.Job, error) {
	return s.jobs.GetByID(ctx, id)
}

func (s *JobService) List(ctx context.Context, filter job.Filter, sort job.Sort, limit, offset int) ([]job.Job, error) {
	return s.jobs.List(ctx, filter, sort, limit, offset)
}

func (s *JobService) ListByPoster(ctx context.Context, posterID common.UUID) ([]job.Job, error) {
	return s.jobs.ListByPoster(ctx, posterID)
}

// TransitionByPoster applies a poster-initiated lifecycle event. Filling is
// not poster-initiated: it happens through application acceptance only, which
// is the single admission-control point for the one-accepted-application
// invariant.
func (s *JobService) TransitionByPoster(ctx context.Context, posterID, jobID common.UUID, event job.Event) (*job.Job, error) {
	if event == job.EventFill {
		return nil, common.NewError(common.CodeValidation, "jobs are filled by accepting an application", nil)
	}
	if event != job.EventComplete && event != job.EventCancel {
		return nil, common.NewValidationError("invalid event", map[string]string{"event": "event must be complete or cancel"})
	}
	unlock := s.locks.Lock(jobID)
	defer unlock()

	current, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if current.PosterID != posterID {
		return nil, common.NewError(common.CodeForbidden, "job belongs to another poster", nil)
	}
	return s.transitionLocked(ctx, current, event)
}

// Complete transitions a filled job to completed on behalf of the system
// (completion sweeper). Caller must not hold the job lock.
func (s *JobService) Complete(ctx context.Context, jobID common.UUID) (*job.Job, error) {
	unlock := s.locks.Lock(jobID)
	defer unlock()

	current, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	return s.transitionLocked(ctx, current, job.EventComplete)
}

// fillLocked is called by ApplicationService while it already holds the job
// lock for an acceptance.
func (s *JobService) fillLocked(ctx context.Context, current *job.Job) (*job.Job, error) {
	return s.transitionLocked(ctx, current, job.EventFill)
}

func (s *JobService) transitionLocked(ctx context.Context, current *job.Job, event job.Event) (*job.Job, error) {
	next, ok := job.Next(current.Status, event)
	if !ok {
		return nil, common.NewError(common.CodeInvalidState, "job "+current.ID.String()+" is "+string(current.Status)+" and cannot "+string(event), nil)
	}

	// Side effects run before the status flips: if they fail the job keeps
	// its current status and the transition can be retried. Settlement is
	// idempotent, so a crash between the two steps is safe either way.
	var rejected int64
	switch event {
	case job.EventCancel:
		var err error
		rejected, err = s.applications.RejectOpenByJob(ctx, current.ID, "")
		if err != nil {
			return nil, err
		}
	case job.EventComplete:
		if err := s.settlement.OnJobCompleted(ctx, current); err != nil {
			return nil, err
		}
	}

	updated, err := s.jobs.UpdateStatus(ctx, current.ID, next)
	if err != nil {
		return nil, err
	}

	switch event {
	case job.EventCancel:
		s.metrics.JobCancelled()
		s.logger.Info().Str("job_id", current.ID.String()).Int64("rejected_applications", rejected).Msg("job cancelled")
	case job.EventComplete:
		s.metrics.JobCompleted()
		s.logger.Info().Str("job_id", current.ID.String()).Msg("job completed")
	}
	return updated, nil
}

func validateJobDraft(draft job.Job) error {
	fields := map[string]string{}
	if strings.TrimSpace(draft.Title) == "" {
		fields["title"] = "title is required"
	}
	if strings.TrimSpace(draft.Domain) == "" {
		fields["domain"] = "domain is required"
	}
	if strings.TrimSpace(draft.Description) == "" {
		fields["description"] = "description is required"
	}
	if !draft.PayOffered.IsPositive() {
		fields["pay_offered"] = "pay must be positive"
	}
	if strings.TrimSpace(draft.LocationAddress) == "" {
		fields["location_address"] = "location address is required"
	}
	if draft.StartTime.IsZero() {
		fields["start_time"] = "start time is required"
	}
	if draft.EndTime.IsZero() {
		fields["end_time"] = "end time is required"
	}
	if !draft.StartTime.IsZero() && !draft.EndTime.IsZero() && !draft.StartTime.Before(draft.EndTime) {
		fields["end_time"] = "end time must be after start time"
	}
	if (draft.Latitude == nil) != (draft.Longitude == nil) {
		fields["latitude"] = "latitude and longitude must be provided together"
	}
	if len(fields) > 0 {
		return common.NewValidationError("invalid job", fields)
	}
	return nil
}
