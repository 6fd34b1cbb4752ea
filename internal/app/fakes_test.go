package app

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"quickgig/internal/common"
	"quickgig/internal/domain/application"
	"quickgig/internal/domain/job"
	"quickgig/internal/domain/location"
	"quickgig/internal/domain/wallet"
)

type fakeJobRepo struct {
	mu   sync.Mutex
	jobs map[common.UUID]*job.Job
}

func newFakeJobRepo() *fakeJobRepo {
	return &fakeJobRepo{jobs: make(map[common.UUID]*job.Job)}
}

func (r *fakeJobRepo) Create(ctx context.Context, j job.Job) (*job.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	j.ID = common.NewUUID()
	now := time.Now().UTC()
	j.CreatedAt = now
	j.UpdatedAt = now
	r.jobs[j.ID] = &j
	copy := j
	return &copy, nil
}

func (r *fakeJobRepo) GetByID(ctx context.Context, id common.UUID) (*job.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[id]
	if !ok {
		return nil, common.NewError(common.CodeNotFound, "job not found", nil)
	}
	copy := *j
	return &copy, nil
}

func (r *fakeJobRepo) List(ctx context.Context, filter job.Filter, sort job.Sort, limit, offset int) ([]job.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	status := filter.Status
	if status == "" {
		status = job.StatusActive
	}
	var items []job.Job
	for _, j := range r.jobs {
		if j.Status == status {
			items = append(items, *j)
		}
	}
	return items, nil
}

func (r *fakeJobRepo) ListByPoster(ctx context.Context, posterID common.UUID) ([]job.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var items []job.Job
	for _, j := range r.jobs {
		if j.PosterID == posterID {
			items = append(items, *j)
		}
	}
	return items, nil
}

func (r *fakeJobRepo) UpdateStatus(ctx context.Context, id common.UUID, status job.Status) (*job.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[id]
	if !ok {
		return nil, common.NewError(common.CodeNotFound, "job not found", nil)
	}
	j.Status = status
	j.UpdatedAt = time.Now().UTC()
	copy := *j
	return &copy, nil
}

func (r *fakeJobRepo) ListFilledEndedBefore(ctx context.Context, deadline time.Time) ([]job.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var items []job.Job
	for _, j := range r.jobs {
		if j.Status == job.StatusFilled && j.EndTime.Before(deadline) {
			items = append(items, *j)
		}
	}
	return items, nil
}

type fakeApplicationRepo struct {
	mu   sync.Mutex
	apps map[common.UUID]*application.Application

	// one-shot injected failure for RejectOpenByJob
	rejectOpenErr error
}

func newFakeApplicationRepo() *fakeApplicationRepo {
	return &fakeApplicationRepo{apps: make(map[common.UUID]*application.Application)}
}

func (r *fakeApplicationRepo) Create(ctx context.Context, app application.Application) (*application.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.apps {
		if existing.JobID == app.JobID && existing.StudentID == app.StudentID {
			return nil, common.NewError(common.CodeConflict, "application already exists for this job", nil)
		}
	}
	app.ID = common.NewUUID()
	now := time.Now().UTC()
	app.CreatedAt = now
	app.UpdatedAt = now
	r.apps[app.ID] = &app
	copy := app
	return &copy, nil
}

func (r *fakeApplicationRepo) GetByID(ctx context.Context, id common.UUID) (*application.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	app, ok := r.apps[id]
	if !ok {
		return nil, common.NewError(common.CodeNotFound, "application not found", nil)
	}
	copy := *app
	return &copy, nil
}

func (r *fakeApplicationRepo) FindByJobAndStudent(ctx context.Context, jobID, studentID common.UUID) (*application.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, app := range r.apps {
		if app.JobID == jobID && app.StudentID == studentID {
			copy := *app
			return &copy, nil
		}
	}
	return nil, common.NewError(common.CodeNotFound, "application not found", nil)
}

func (r *fakeApplicationRepo) FindAcceptedByJob(ctx context.Context, jobID common.UUID) (*application.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, app := range r.apps {
		if app.JobID == jobID && app.Status == application.StatusAccepted {
			copy := *app
			return &copy, nil
		}
	}
	return nil, common.NewError(common.CodeNotFound, "accepted application not found", nil)
}

func (r *fakeApplicationRepo) ListByJob(ctx context.Context, jobID common.UUID) ([]application.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var items []application.Application
	for _, app := range r.apps {
		if app.JobID == jobID {
			items = append(items, *app)
		}
	}
	return items, nil
}

func (r *fakeApplicationRepo) ListByStudent(ctx context.Context, studentID common.UUID) ([]application.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var items []application.Application
	for _, app := range r.apps {
		if app.StudentID == studentID {
			items = append(items, *app)
		}
	}
	return items, nil
}

func (r *fakeApplicationRepo) UpdateOffer(ctx context.Context, id common.UUID, offer decimal.Decimal, by application.Party) (*application.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	app, ok := r.apps[id]
	if !ok {
		return nil, common.NewError(common.CodeNotFound, "application not found", nil)
	}
	app.Status = application.StatusNegotiating
	app.NegotiatedPay = decimal.NewNullDecimal(offer)
	party := by
	app.LastOfferBy = &party
	app.UpdatedAt = time.Now().UTC()
	copy := *app
	return &copy, nil
}

func (r *fakeApplicationRepo) Accept(ctx context.Context, id common.UUID, finalPay decimal.Decimal) (*application.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	app, ok := r.apps[id]
	if !ok {
		return nil, common.NewError(common.CodeNotFound, "application not found", nil)
	}
	for _, other := range r.apps {
		if other.JobID == app.JobID && other.ID != id && other.Status == application.StatusAccepted {
			return nil, common.NewError(common.CodeConflict, "job already has an accepted application", nil)
		}
	}
	app.Status = application.StatusAccepted
	app.FinalPay = decimal.NewNullDecimal(finalPay)
	app.UpdatedAt = time.Now().UTC()
	copy := *app
	return &copy, nil
}

func (r *fakeApplicationRepo) Reject(ctx context.Context, id common.UUID) (*application.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	app, ok := r.apps[id]
	if !ok {
		return nil, common.NewError(common.CodeNotFound, "application not found", nil)
	}
	app.Status = application.StatusRejected
	app.UpdatedAt = time.Now().UTC()
	copy := *app
	return &copy, nil
}

func (r *fakeApplicationRepo) RejectOpenByJob(ctx context.Context, jobID, except common.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.rejectOpenErr != nil {
		err := r.rejectOpenErr
		r.rejectOpenErr = nil
		return 0, err
	}
	var affected int64
	for _, app := range r.apps {
		if app.JobID != jobID || app.ID == except {
			continue
		}
		if app.Status == application.StatusPending || app.Status == application.StatusNegotiating {
			app.Status = application.StatusRejected
			app.UpdatedAt = time.Now().UTC()
			affected++
		}
	}
	return affected, nil
}

type fakeWalletRepo struct {
	mu      sync.Mutex
	entries map[common.UUID]*wallet.Entry

	// one-shot injected failure for Create
	createErr error
}

func newFakeWalletRepo() *fakeWalletRepo {
	return &fakeWalletRepo{entries: make(map[common.UUID]*wallet.Entry)}
}

func (r *fakeWalletRepo) Create(ctx context.Context, entry wallet.Entry) (*wallet.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		err := r.createErr
		r.createErr = nil
		return nil, err
	}
	for _, existing := range r.entries {
		if existing.JobID == entry.JobID && existing.StudentID == entry.StudentID {
			return nil, common.NewError(common.CodeConflict, "wallet entry already exists for this job", nil)
		}
	}
	entry.ID = common.NewUUID()
	entry.CreatedAt = time.Now().UTC()
	r.entries[entry.ID] = &entry
	copy := entry
	return &copy, nil
}

func (r *fakeWalletRepo) GetByID(ctx context.Context, id common.UUID) (*wallet.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.entries[id]
	if !ok {
		return nil, common.NewError(common.CodeNotFound, "wallet entry not found", nil)
	}
	copy := *entry
	return &copy, nil
}

func (r *fakeWalletRepo) FindByJobAndStudent(ctx context.Context, jobID, studentID common.UUID) (*wallet.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, entry := range r.entries {
		if entry.JobID == jobID && entry.StudentID == studentID {
			copy := *entry
			return &copy, nil
		}
	}
	return nil, common.NewError(common.CodeNotFound, "wallet entry not found", nil)
}

func (r *fakeWalletRepo) ListByStudent(ctx context.Context, studentID common.UUID, status *wallet.Status, sort wallet.Sort) ([]wallet.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var items []wallet.Entry
	for _, entry := range r.entries {
		if entry.StudentID != studentID {
			continue
		}
		if status != nil && entry.Status != *status {
			continue
		}
		items = append(items, *entry)
	}
	return items, nil
}

func (r *fakeWalletRepo) MarkPaid(ctx context.Context, id common.UUID, paymentDate time.Time) (*wallet.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.entries[id]
	if !ok {
		return nil, common.NewError(common.CodeNotFound, "wallet entry not found", nil)
	}
	if entry.Status != wallet.StatusPending {
		return nil, common.NewError(common.CodeInvalidState, "wallet entry is already paid", nil)
	}
	date := paymentDate.UTC()
	entry.Status = wallet.StatusPaid
	entry.PaymentDate = &date
	copy := *entry
	return &copy, nil
}

type fixedLocationService struct {
	estimate location.Estimate
}

func (s fixedLocationService) Estimate(ctx context.Context, origin, destination location.Point) (location.Estimate, error) {
	return s.estimate, nil
}

type engine struct {
	jobs          *fakeJobRepo
	applications  *fakeApplicationRepo
	wallets       *fakeWalletRepo
	jobService    *JobService
	appService    *ApplicationService
	walletService *WalletService
	settlement    *SettlementCoordinator
}

func newEngine() *engine {
	logger := zerolog.Nop()
	jobs := newFakeJobRepo()
	apps := newFakeApplicationRepo()
	wallets := newFakeWalletRepo()
	locks := NewJobLocks()
	settlement := NewSettlementCoordinator(apps, wallets, logger, nil)
	jobService := NewJobService(jobs, apps, settlement, locks, logger, nil)
	locator := fixedLocationService{estimate: location.Estimate{DistanceKm: 2.5, EtaMinutes: 9}}
	appService := NewApplicationService(apps, jobs, jobService, locator, locks, logger, nil)
	walletService := NewWalletService(wallets, logger, nil)
	return &engine{
		jobs:          jobs,
		applications:  apps,
		wallets:       wallets,
		jobService:    jobService,
		appService:    appService,
		walletService: walletService,
		settlement:    settlement,
	}
}

func (e *engine) postJob(t *testing.T, posterID common.UUID, pay int64, negotiable bool) *job.Job {
	t.Helper()
	start := time.Now().UTC().Add(24 * time.Hour)
	created, err := e.jobService.Post(context.Background(), job.Job{
		PosterID:        posterID,
		Title:           "Event helper",
		Domain:          "events",
		Description:     "Set up and run the registration desk",
		PayOffered:      decimal.NewFromInt(pay),
		IsNegotiable:    negotiable,
		LocationAddress: "12 Market Street",
		StartTime:       start,
		EndTime:         start.Add(4 * time.Hour),
	})
	if err != nil {
		t.Fatalf("post job: %v", err)
	}
	return created
}

func (e *engine) submit(t *testing.T, jobID, studentID common.UUID) *application.Application {
	t.Helper()
	created, err := e.appService.Submit(context.Background(), SubmitInput{JobID: jobID, StudentID: studentID})
	if err != nil {
		t.Fatalf("submit application: %v", err)
	}
	return created
}
