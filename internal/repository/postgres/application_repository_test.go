package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quickgig/internal/common"
	"quickgig/internal/domain/application"
)

func applicationRows(id, jobID, studentID common.UUID, status application.Status) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{
		"id", "job_id", "student_id", "status", "original_pay", "negotiated_pay", "final_pay",
		"last_offer_by", "distance_km", "time_to_reach_min", "message", "created_at", "updated_at",
	}).AddRow(id, jobID, studentID, status, "500", nil, nil, nil, nil, nil, nil, now, now)
}

func TestApplicationRepositoryCreateDuplicate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewApplicationRepository(db)

	mock.ExpectExec("INSERT INTO applications").
		WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err = repo.Create(context.Background(), application.Application{
		JobID:       common.NewUUID(),
		StudentID:   common.NewUUID(),
		Status:      application.StatusPending,
		OriginalPay: decimal.NewFromInt(500),
	})
	assert.True(t, common.Is(err, common.CodeConflict), "err = %v", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepositoryFindAcceptedByJob(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewApplicationRepository(db)

	jobID := common.NewUUID()
	appID := common.NewUUID()
	mock.ExpectQuery(`SELECT (.+) FROM applications WHERE job_id = \$1 AND status = \$2`).
		WithArgs(jobID, application.StatusAccepted).
		WillReturnRows(applicationRows(appID, jobID, common.NewUUID(), application.StatusAccepted))

	app, err := repo.FindAcceptedByJob(context.Background(), jobID)
	require.NoError(t, err)
	assert.Equal(t, appID, app.ID)
	assert.Equal(t, application.StatusAccepted, app.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepositoryFindAcceptedByJobNone(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewApplicationRepository(db)

	mock.ExpectQuery(`SELECT (.+) FROM applications WHERE job_id = \$1 AND status = \$2`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err = repo.FindAcceptedByJob(context.Background(), common.NewUUID())
	assert.True(t, common.Is(err, common.CodeNotFound), "err = %v", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepositoryAcceptRace(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewApplicationRepository(db)

	// The partial unique index rejects a second accepted row for the job.
	mock.ExpectExec("UPDATE applications SET status").
		WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err = repo.Accept(context.Background(), common.NewUUID(), decimal.NewFromInt(450))
	assert.True(t, common.Is(err, common.CodeConflict), "err = %v", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepositoryRejectOpenByJobExceptWinner(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewApplicationRepository(db)

	jobID := common.NewUUID()
	except := common.NewUUID()
	mock.ExpectExec(`UPDATE applications SET status = \$1, updated_at = \$2 WHERE job_id = \$3 AND status IN \(\$4, \$5\) AND id <> \$6`).
		WithArgs(application.StatusRejected, sqlmock.AnyArg(), jobID, application.StatusPending, application.StatusNegotiating, except).
		WillReturnResult(sqlmock.NewResult(0, 3))

	affected, err := repo.RejectOpenByJob(context.Background(), jobID, except)
	require.NoError(t, err)
	assert.Equal(t, int64(3), affected)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepositoryRejectOpenByJobAll(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewApplicationRepository(db)

	jobID := common.NewUUID()
	// Cancellation rejects every open application; the empty excepted id must
	// never be bound as a uuid parameter.
	mock.ExpectExec(`UPDATE applications SET status = \$1, updated_at = \$2 WHERE job_id = \$3 AND status IN \(\$4, \$5\)$`).
		WithArgs(application.StatusRejected, sqlmock.AnyArg(), jobID, application.StatusPending, application.StatusNegotiating).
		WillReturnResult(sqlmock.NewResult(0, 2))

	affected, err := repo.RejectOpenByJob(context.Background(), jobID, "")
	require.NoError(t, err)
	assert.Equal(t, int64(2), affected)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepositoryUpdateOfferNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewApplicationRepository(db)

	mock.ExpectExec("UPDATE applications SET status").
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err = repo.UpdateOffer(context.Background(), common.NewUUID(), decimal.NewFromInt(420), application.PartyPoster)
	assert.True(t, common.Is(err, common.CodeNotFound), "err = %v", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
