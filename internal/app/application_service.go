package app

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"quickgig/internal/common"
	"quickgig/internal/domain/application"
	"quickgig/internal/domain/job"
	"quickgig/internal/domain/location"
)

// Decision resolves an application.
type Decision string

const (
	DecisionAccept Decision = "accept"
	DecisionReject Decision = "reject"
)

// ApplicationService is the application ledger: one application per
// (job, student) pair, the pending/negotiating/accepted/rejected state
// machine, and the alternating-offer negotiation protocol. Acceptance is the
// admission-control point that fills the job and rejects every competing
// application under the same per-job lock.
type ApplicationService struct {
	applications application.Repository
	jobs         job.Repository
	jobService   *JobService
	locator      location.Service
	locks        *JobLocks
	logger       zerolog.Logger
	metrics      EngineMetrics
}

func NewApplicationService(applications application.Repository, jobs job.Repository, jobService *JobService, locator location.Service, locks *JobLocks, logger zerolog.Logger, metrics EngineMetrics) *ApplicationService {
	if metrics == nil {
		metrics = NoopMetrics{}
	}
	return &ApplicationService{
		applications: applications,
		jobs:         jobs,
		jobService:   jobService,
		locator:      locator,
		locks:        locks,
		logger:       logger,
		metrics:      metrics,
	}
}

// SubmitInput carries a student's application. Offer is the opening
// counter-offer; when present the job must be negotiable. Origin is the
// student's current position, used only for the advisory travel estimate.
type SubmitInput struct {
	JobID     common.UUID
	StudentID common.UUID
	Offer     decimal.NullDecimal
	Message   *string
	Origin    *location.Point
}

func (s *ApplicationService) Submit(ctx context.Context, input SubmitInput) (*application.Application, error) {
	if input.Offer.Valid && !input.Offer.Decimal.IsPositive() {
		return nil, common.NewValidationError("invalid offer", map[string]string{"offer": "offer must be positive"})
	}

	unlock := s.locks.Lock(input.JobID)
	defer unlock()

	j, err := s.jobs.GetByID(ctx, input.JobID)
	if err != nil {
		return nil, err
	}
	if j.Status != job.StatusActive {
		return nil, common.NewError(common.CodeConflict, "job "+j.ID.String()+" is "+string(j.Status)+" and no longer accepts applications", nil)
	}
	if _, err := s.applications.FindByJobAndStudent(ctx, input.JobID, input.StudentID); err == nil {
		return nil, common.NewError(common.CodeConflict, "already applied to this job", nil)
	} else if !common.Is(err, common.CodeNotFound) {
		return nil, err
	}

	app := application.Application{
		JobID:       input.JobID,
		StudentID:   input.StudentID,
		Status:      application.StatusPending,
		OriginalPay: j.PayOffered,
		Message:     input.Message,
	}
	if input.Offer.Valid {
		if !j.IsNegotiable {
			return nil, common.NewError(common.CodeValidation, "job pay is not negotiable", nil)
		}
		app.Status = application.StatusNegotiating
		app.NegotiatedPay = input.Offer
		by := application.PartyStudent
		app.LastOfferBy = &by
	}
	s.attachTravelEstimate(ctx, &app, j, input.Origin)

	created, err := s.applications.Create(ctx, app)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("application_id", created.ID.String()).Str("job_id", j.ID.String()).Str("status", string(created.Status)).Msg("application submitted")
	return created, nil
}

// Negotiate records a counter-offer. Offers must alternate between the two
// parties; the party who made the last offer cannot follow it with another.
func (s *ApplicationService) Negotiate(ctx context.Context, applicationID common.UUID, offer decimal.Decimal, actor application.Party, actorID common.UUID) (*application.Application, error) {
	if actor != application.PartyStudent && actor != application.PartyPoster {
		return nil, common.NewValidationError("invalid actor", map[string]string{"actor": "actor must be student or poster"})
	}
	if !offer.IsPositive() {
		return nil, common.NewValidationError("invalid offer", map[string]string{"offer": "offer must be positive"})
	}

	app, err := s.applications.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	unlock := s.locks.Lock(app.JobID)
	defer unlock()

	// Re-read under the lock; the application may have been resolved since.
	app, err = s.applications.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	j, err := s.jobs.GetByID(ctx, app.JobID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeParty(actor, actorID, app, j); err != nil {
		return nil, err
	}
	if app.Status.Terminal() {
		return nil, common.NewError(common.CodeInvalidState, "application "+app.ID.String()+" is "+string(app.Status)+" and cannot be negotiated", nil)
	}
	if !j.IsNegotiable {
		return nil, common.NewError(common.CodeValidation, "job pay is not negotiable", nil)
	}
	if app.LastOfferBy != nil && *app.LastOfferBy == actor {
		return nil, common.NewError(common.CodeInvalidState, "waiting for the other party to respond", nil)
	}

	updated, err := s.applications.UpdateOffer(ctx, applicationID, offer, actor)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("application_id", app.ID.String()).Str("by", string(actor)).Str("offer", offer.String()).Msg("counter-offer recorded")
	return updated, nil
}

// Resolve accepts or rejects an application on behalf of the poster. On
// acceptance the final pay is locked in, the job fills, and every other open
// application on the job is rejected before the lock is released.
func (s *ApplicationService) Resolve(ctx context.Context, applicationID common.UUID, decision Decision, posterID common.UUID) (*application.Application, error) {
	if decision != DecisionAccept && decision != DecisionReject {
		return nil, common.NewValidationError("invalid decision", map[string]string{"decision": "decision must be accept or reject"})
	}

	app, err := s.applications.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	unlock := s.locks.Lock(app.JobID)
	defer unlock()

	app, err = s.applications.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	j, err := s.jobs.GetByID(ctx, app.JobID)
	if err != nil {
		return nil, err
	}
	if j.PosterID != posterID {
		return nil, common.NewError(common.CodeForbidden, "application belongs to another poster's job", nil)
	}
	if app.Status.Terminal() {
		return nil, common.NewError(common.CodeInvalidState, "application "+app.ID.String()+" is already "+string(app.Status), nil)
	}

	if decision == DecisionReject {
		rejected, err := s.applications.Reject(ctx, applicationID)
		if err != nil {
			return nil, err
		}
		s.logger.Info().Str("application_id", app.ID.String()).Msg("application rejected")
		return rejected, nil
	}

	if j.Status != job.StatusActive {
		return nil, common.NewError(common.CodeConflict, "job "+j.ID.String()+" is "+string(j.Status)+" and cannot be filled", nil)
	}
	hadNegotiation := app.NegotiatedPay.Valid
	accepted, err := s.applications.Accept(ctx, applicationID, app.ResolvedPay())
	if err != nil {
		return nil, err
	}
	rejectedCount, err := s.applications.RejectOpenByJob(ctx, app.JobID, applicationID)
	if err != nil {
		return nil, err
	}
	if _, err := s.jobService.fillLocked(ctx, j); err != nil {
		return nil, err
	}
	s.metrics.JobFilled(hadNegotiation)
	s.logger.Info().
		Str("application_id", accepted.ID.String()).
		Str("job_id", j.ID.String()).
		Str("final_pay", accepted.FinalPay.Decimal.String()).
		Int64("rejected_competitors", rejectedCount).
		Msg("application accepted")
	return accepted, nil
}

func (s *ApplicationService) Get(ctx context.Context, id common.UUID) (*application.Application, error) {
	return s.applications.GetByID(ctx, id)
}

func (s *ApplicationService) ListByStudent(ctx context.Context, studentID common.UUID) ([]application.Application, error) {
	return s.applications.ListByStudent(ctx, studentID)
}

// ListByJob returns a job's applications to its poster.
func (s *ApplicationService) ListByJob(ctx context.Context, posterID, jobID common.UUID) ([]application.Application, error) {
	j, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if j.PosterID != posterID {
		return nil, common.NewError(common.CodeForbidden, "job belongs to another poster", nil)
	}
	return s.applications.ListByJob(ctx, jobID)
}

func (s *ApplicationService) authorizeParty(actor application.Party, actorID common.UUID, app *application.Application, j *job.Job) error {
	switch actor {
	case application.PartyStudent:
		if app.StudentID != actorID {
			return common.NewError(common.CodeForbidden, "application belongs to another student", nil)
		}
	case application.PartyPoster:
		if j.PosterID != actorID {
			return common.NewError(common.CodeForbidden, "job belongs to another poster", nil)
		}
	}
	return nil
}

// attachTravelEstimate fills the advisory distance fields when both sides
// have coordinates. Estimation failures are logged and dropped: the fields
// never gate an application.
func (s *ApplicationService) attachTravelEstimate(ctx context.Context, app *application.Application, j *job.Job, origin *location.Point) {
	if s.locator == nil || origin == nil || j.Latitude == nil || j.Longitude == nil {
		return
	}
	estimate, err := s.locator.Estimate(ctx, *origin, location.Point{Latitude: *j.Latitude, Longitude: *j.Longitude})
	if err != nil {
		s.logger.Warn().Err(err).Str("job_id", j.ID.String()).Msg("travel estimate failed")
		return
	}
	app.DistanceKm = &estimate.DistanceKm
	app.TimeToReachMin = &estimate.EtaMinutes
}
