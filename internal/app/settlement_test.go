package app

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"quickgig/internal/common"
	"quickgig/internal/domain/application"
	"quickgig/internal/domain/job"
	"quickgig/internal/domain/wallet"
)

func settlementFixture(t *testing.T) (*SettlementCoordinator, *fakeApplicationRepo, *fakeWalletRepo, *job.Job) {
	t.Helper()
	apps := newFakeApplicationRepo()
	wallets := newFakeWalletRepo()
	coordinator := NewSettlementCoordinator(apps, wallets, zerolog.Nop(), nil)

	start := time.Now().UTC().Add(-5 * time.Hour)
	j := &job.Job{
		ID:        common.NewUUID(),
		PosterID:  common.NewUUID(),
		Status:    job.StatusCompleted,
		StartTime: start,
		EndTime:   start.Add(4 * time.Hour),
	}
	return coordinator, apps, wallets, j
}

func acceptApplication(t *testing.T, apps *fakeApplicationRepo, jobID common.UUID, finalPay int64) *application.Application {
	t.Helper()
	created, err := apps.Create(context.Background(), application.Application{
		JobID:       jobID,
		StudentID:   common.NewUUID(),
		Status:      application.StatusPending,
		OriginalPay: decimal.NewFromInt(finalPay),
	})
	if err != nil {
		t.Fatalf("create application: %v", err)
	}
	accepted, err := apps.Accept(context.Background(), created.ID, decimal.NewFromInt(finalPay))
	if err != nil {
		t.Fatalf("accept application: %v", err)
	}
	return accepted
}

func TestSettlementRecordsPendingEntry(t *testing.T) {
	coordinator, apps, wallets, j := settlementFixture(t)
	accepted := acceptApplication(t, apps, j.ID, 480)

	if err := coordinator.OnJobCompleted(context.Background(), j); err != nil {
		t.Fatalf("settle: %v", err)
	}

	entry, err := wallets.FindByJobAndStudent(context.Background(), j.ID, accepted.StudentID)
	if err != nil {
		t.Fatalf("wallet entry: %v", err)
	}
	if !entry.Amount.Equal(decimal.NewFromInt(480)) {
		t.Fatalf("amount = %s, want 480", entry.Amount)
	}
	if entry.Status != wallet.StatusPending {
		t.Fatalf("status = %s, want pending", entry.Status)
	}
	if entry.DurationHours == nil || *entry.DurationHours != 4 {
		t.Fatalf("duration = %v, want 4", entry.DurationHours)
	}
}

func TestSettlementIdempotent(t *testing.T) {
	coordinator, apps, wallets, j := settlementFixture(t)
	accepted := acceptApplication(t, apps, j.ID, 300)

	if err := coordinator.OnJobCompleted(context.Background(), j); err != nil {
		t.Fatalf("first settle: %v", err)
	}
	if err := coordinator.OnJobCompleted(context.Background(), j); err != nil {
		t.Fatalf("second settle: %v", err)
	}

	entries, err := wallets.ListByStudent(context.Background(), accepted.StudentID, nil, wallet.SortDate)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("len = %d, want a single entry", len(entries))
	}
}

func TestSettlementWithoutAcceptedApplication(t *testing.T) {
	coordinator, _, _, j := settlementFixture(t)

	err := coordinator.OnJobCompleted(context.Background(), j)
	if !common.Is(err, common.CodeIntegrity) {
		t.Fatalf("err = %v, want integrity error", err)
	}
}

func TestSettlementWithoutFinalPay(t *testing.T) {
	coordinator, apps, _, j := settlementFixture(t)
	created, err := apps.Create(context.Background(), application.Application{
		JobID:       j.ID,
		StudentID:   common.NewUUID(),
		Status:      application.StatusPending,
		OriginalPay: decimal.NewFromInt(200),
	})
	if err != nil {
		t.Fatalf("create application: %v", err)
	}
	// Force an accepted row with no final pay, as a corrupt write would.
	apps.apps[created.ID].Status = application.StatusAccepted

	err = coordinator.OnJobCompleted(context.Background(), j)
	if !common.Is(err, common.CodeIntegrity) {
		t.Fatalf("err = %v, want integrity error", err)
	}
}
