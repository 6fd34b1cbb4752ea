package app

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"quickgig/internal/common"
	"quickgig/internal/domain/job"
)

// CompletionSweeper dispatches the completion event for filled jobs whose
// scheduled end has passed. It is the in-process stand-in for an external
// completion trigger; settlement stays idempotent either way.
type CompletionSweeper struct {
	jobs       job.Repository
	jobService *JobService
	logger     zerolog.Logger
	cron       *cron.Cron
	interval   time.Duration
	now        func() time.Time
}

func NewCompletionSweeper(jobs job.Repository, jobService *JobService, logger zerolog.Logger, interval time.Duration) *CompletionSweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &CompletionSweeper{
		jobs:       jobs,
		jobService: jobService,
		logger:     logger,
		cron:       cron.New(),
		interval:   interval,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *CompletionSweeper) Start() error {
	spec := fmt.Sprintf("@every %s", s.interval)
	if _, err := s.cron.AddFunc(spec, s.sweep); err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info().Str("interval", s.interval.String()).Msg("completion sweeper started")
	return nil
}

func (s *CompletionSweeper) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *CompletionSweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	ended, err := s.jobs.ListFilledEndedBefore(ctx, s.now())
	if err != nil {
		s.logger.Error().Err(err).Msg("completion sweep failed to list ended jobs")
		return
	}
	for _, j := range ended {
		if _, err := s.jobService.Complete(ctx, j.ID); err != nil {
			// Another trigger may have completed the job between the listing
			// and the transition; that is not a failure.
			if common.Is(err, common.CodeInvalidState) {
				continue
			}
			s.logger.Error().Err(err).Str("job_id", j.ID.String()).Msg("completion sweep failed for job")
		}
	}
}
