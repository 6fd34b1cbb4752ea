package app

import (
	"context"

	"github.com/rs/zerolog"

	"quickgig/internal/common"
	"quickgig/internal/domain/application"
	"quickgig/internal/domain/job"
	"quickgig/internal/domain/wallet"
)

// AcceptedApplicationFinder is the slice of the application repository the
// settlement coordinator needs.
type AcceptedApplicationFinder interface {
	FindAcceptedByJob(ctx context.Context, jobID common.UUID) (*application.Application, error)
}

// SettlementCoordinator turns a completed job into a wallet entry. It runs
// inside the job's lock as part of the completion transition, and is
// idempotent: a duplicate completion event finds the wallet entry already
// present and does nothing.
type SettlementCoordinator struct {
	applications AcceptedApplicationFinder
	wallets      wallet.Repository
	logger       zerolog.Logger
	metrics      EngineMetrics
}

func NewSettlementCoordinator(applications AcceptedApplicationFinder, wallets wallet.Repository, logger zerolog.Logger, metrics EngineMetrics) *SettlementCoordinator {
	if metrics == nil {
		metrics = NoopMetrics{}
	}
	return &SettlementCoordinator{applications: applications, wallets: wallets, logger: logger, metrics: metrics}
}

// OnJobCompleted records the earnings for the job's accepted application. A
// filled job without exactly one accepted application is a data-integrity
// failure: it is surfaced, never swallowed.
func (c *SettlementCoordinator) OnJobCompleted(ctx context.Context, j *job.Job) error {
	app, err := c.applications.FindAcceptedByJob(ctx, j.ID)
	if err != nil {
		if common.Is(err, common.CodeNotFound) {
			integrityErr := common.NewError(common.CodeIntegrity, "job "+j.ID.String()+" completed without an accepted application", err)
			c.logger.Error().Err(integrityErr).Str("job_id", j.ID.String()).Msg("settlement integrity failure")
			return integrityErr
		}
		return err
	}
	if !app.FinalPay.Valid {
		integrityErr := common.NewError(common.CodeIntegrity, "accepted application "+app.ID.String()+" has no final pay", nil)
		c.logger.Error().Err(integrityErr).Str("application_id", app.ID.String()).Msg("settlement integrity failure")
		return integrityErr
	}

	duration := j.DurationHours()
	entry := wallet.Entry{
		StudentID:     app.StudentID,
		JobID:         j.ID,
		Amount:        app.FinalPay.Decimal,
		DurationHours: &duration,
		Status:        wallet.StatusPending,
	}
	created, err := c.wallets.Create(ctx, entry)
	if err != nil {
		if common.Is(err, common.CodeConflict) {
			// Duplicate completion event; the ledger already has the entry.
			c.logger.Debug().Str("job_id", j.ID.String()).Msg("settlement already recorded")
			return nil
		}
		return err
	}
	c.metrics.SettlementRecorded()
	c.logger.Info().
		Str("wallet_entry_id", created.ID.String()).
		Str("job_id", j.ID.String()).
		Str("student_id", app.StudentID.String()).
		Str("amount", created.Amount.String()).
		Msg("settlement recorded")
	return nil
}
