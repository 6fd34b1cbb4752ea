package wallet

import (
	"time"

	"github.com/shopspring/decimal"

	"quickgig/internal/common"
)

type Status string

const (
	StatusPending Status = "pending"
	StatusPaid    Status = "paid"
)

// Entry is the ledger record of money owed or paid to a student for one
// completed job. Amount and DurationHours are fixed at creation; only the
// pending→paid transition mutates an entry, setting PaymentDate.
type Entry struct {
	ID            common.UUID     `json:"id"`
	StudentID     common.UUID     `json:"student_id"`
	JobID         common.UUID     `json:"job_id"`
	Amount        decimal.Decimal `json:"amount"`
	DurationHours *float64        `json:"duration_hours,omitempty"`
	Status        Status          `json:"status"`
	PaymentDate   *time.Time      `json:"payment_date,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

type Summary struct {
	TotalEarned     decimal.Decimal `json:"total_earned"`
	PendingPayments decimal.Decimal `json:"pending_payments"`
	HoursWorked     float64         `json:"hours_worked"`
	JobsCompleted   int             `json:"jobs_completed"`
}

// Summarize folds a student's entries into their earnings summary. Paid
// entries contribute amount, hours and a completed-job count; pending entries
// contribute amount to pending payments only. The accumulation is commutative,
// so the result does not depend on entry order.
func Summarize(entries []Entry) Summary {
	summary := Summary{
		TotalEarned:     decimal.Zero,
		PendingPayments: decimal.Zero,
	}
	for _, entry := range entries {
		switch entry.Status {
		case StatusPaid:
			summary.TotalEarned = summary.TotalEarned.Add(entry.Amount)
			if entry.DurationHours != nil {
				summary.HoursWorked += *entry.DurationHours
			}
			summary.JobsCompleted++
		case StatusPending:
			summary.PendingPayments = summary.PendingPayments.Add(entry.Amount)
		}
	}
	return summary
}
