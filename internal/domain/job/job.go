package job

import (
	"time"

	"github.com/shopspring/decimal"

	"quickgig/internal/common"
)

type Status string

const (
	StatusActive    Status = "active"
	StatusFilled    Status = "filled"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Event is a lifecycle transition request against a job.
type Event string

const (
	EventFill     Event = "fill"
	EventComplete Event = "complete"
	EventCancel   Event = "cancel"
)

type Job struct {
	ID                   common.UUID     `json:"id"`
	PosterID             common.UUID     `json:"poster_id"`
	Title                string          `json:"title"`
	Domain               string          `json:"domain"`
	Description          string          `json:"description"`
	SkillsRequired       *string         `json:"skills_required,omitempty"`
	GenderPreference     *string         `json:"gender_preference,omitempty"`
	AgePreference        *string         `json:"age_preference,omitempty"`
	PayOffered           decimal.Decimal `json:"pay_offered"`
	IsNegotiable         bool            `json:"is_negotiable"`
	LocationAddress      string          `json:"location_address"`
	Latitude             *float64        `json:"latitude,omitempty"`
	Longitude            *float64        `json:"longitude,omitempty"`
	StartTime            time.Time       `json:"start_time"`
	EndTime              time.Time       `json:"end_time"`
	OptionalInstructions *string         `json:"optional_instructions,omitempty"`
	Status               Status          `json:"status"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

// Next returns the status a job moves to on event. ok is false for an illegal
// transition. Cancelling is only legal while the job is still active: once a
// job is filled an accepted application exists and the poster cannot walk
// away from it through cancellation.
func Next(current Status, event Event) (Status, bool) {
	switch event {
	case EventFill:
		if current == StatusActive {
			return StatusFilled, true
		}
	case EventComplete:
		if current == StatusFilled {
			return StatusCompleted, true
		}
	case EventCancel:
		if current == StatusActive {
			return StatusCancelled, true
		}
	}
	return current, false
}

func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// DurationHours is the scheduled length of the job, used for the wallet
// entry created at settlement.
func (j Job) DurationHours() float64 {
	return j.EndTime.Sub(j.StartTime).Hours()
}
