package app

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"quickgig/internal/common"
	"quickgig/internal/domain/wallet"
)

func seedEntry(t *testing.T, wallets *fakeWalletRepo, studentID common.UUID, amount int64, durationHours float64) *wallet.Entry {
	t.Helper()
	entry, err := wallets.Create(context.Background(), wallet.Entry{
		StudentID:     studentID,
		JobID:         common.NewUUID(),
		Amount:        decimal.NewFromInt(amount),
		DurationHours: &durationHours,
		Status:        wallet.StatusPending,
	})
	if err != nil {
		t.Fatalf("seed entry: %v", err)
	}
	return entry
}

func TestMarkPaidTransition(t *testing.T) {
	e := newEngine()
	student := common.NewUUID()
	entry := seedEntry(t, e.wallets, student, 480, 4)
	paymentDate := time.Date(2026, 4, 2, 12, 0, 0, 0, time.UTC)

	paid, err := e.walletService.MarkPaid(context.Background(), entry.ID, paymentDate)
	if err != nil {
		t.Fatalf("mark paid: %v", err)
	}
	if paid.Status != wallet.StatusPaid {
		t.Fatalf("status = %s, want paid", paid.Status)
	}
	if paid.PaymentDate == nil || !paid.PaymentDate.Equal(paymentDate) {
		t.Fatalf("payment date = %v, want %v", paid.PaymentDate, paymentDate)
	}

	// Paying twice is an invalid transition.
	_, err = e.walletService.MarkPaid(context.Background(), entry.ID, paymentDate.Add(time.Hour))
	if !common.Is(err, common.CodeInvalidState) {
		t.Fatalf("err = %v, want invalid state", err)
	}
}

func TestMarkPaidZeroDate(t *testing.T) {
	e := newEngine()
	entry := seedEntry(t, e.wallets, common.NewUUID(), 100, 2)

	_, err := e.walletService.MarkPaid(context.Background(), entry.ID, time.Time{})
	if !common.Is(err, common.CodeValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestMarkPaidUnknownEntry(t *testing.T) {
	e := newEngine()

	_, err := e.walletService.MarkPaid(context.Background(), common.NewUUID(), time.Now().UTC())
	if !common.Is(err, common.CodeNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestListRejectsUnknownStatus(t *testing.T) {
	e := newEngine()
	bogus := wallet.Status("settled")

	_, err := e.walletService.List(context.Background(), common.NewUUID(), &bogus, wallet.SortDate)
	if !common.Is(err, common.CodeValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestSummarizeMixedLedger(t *testing.T) {
	e := newEngine()
	student := common.NewUUID()
	paid := seedEntry(t, e.wallets, student, 480, 4)
	seedEntry(t, e.wallets, student, 300, 3)
	if _, err := e.walletService.MarkPaid(context.Background(), paid.ID, time.Now().UTC()); err != nil {
		t.Fatalf("mark paid: %v", err)
	}

	summary, err := e.walletService.Summarize(context.Background(), student)
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if !summary.TotalEarned.Equal(decimal.NewFromInt(480)) {
		t.Fatalf("total earned = %s, want 480", summary.TotalEarned)
	}
	if !summary.PendingPayments.Equal(decimal.NewFromInt(300)) {
		t.Fatalf("pending = %s, want 300", summary.PendingPayments)
	}
	if summary.HoursWorked != 4 {
		t.Fatalf("hours = %v, want 4", summary.HoursWorked)
	}
	if summary.JobsCompleted != 1 {
		t.Fatalf("jobs completed = %d, want 1", summary.JobsCompleted)
	}
}
