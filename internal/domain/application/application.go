package application

import (
	"time"

	"github.com/shopspring/decimal"

	"quickgig/internal/common"
)

type Status string

const (
	StatusPending     Status = "pending"
	StatusNegotiating Status = "negotiating"
	StatusAccepted    Status = "accepted"
	StatusRejected    Status = "rejected"
)

// Party identifies which side of the application made the last pay offer.
// Negotiation is an alternating-offer protocol: the next counter-offer must
// come from the other party.
type Party string

const (
	PartyStudent Party = "student"
	PartyPoster  Party = "poster"
)

type Application struct {
	ID             common.UUID         `json:"id"`
	JobID          common.UUID         `json:"job_id"`
	StudentID      common.UUID         `json:"student_id"`
	Status         Status              `json:"status"`
	OriginalPay    decimal.Decimal     `json:"original_pay"`
	NegotiatedPay  decimal.NullDecimal `json:"negotiated_pay"`
	FinalPay       decimal.NullDecimal `json:"final_pay"`
	LastOfferBy    *Party              `json:"last_offer_by,omitempty"`
	DistanceKm     *float64            `json:"distance_km,omitempty"`
	TimeToReachMin *int                `json:"time_to_reach_min,omitempty"`
	Message        *string             `json:"message,omitempty"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

func (s Status) Terminal() bool {
	return s == StatusAccepted || s == StatusRejected
}

// ResolvedPay is the pay an acceptance would lock in: the latest negotiated
// offer when negotiation happened, the original job pay otherwise.
func (a Application) ResolvedPay() decimal.Decimal {
	if a.NegotiatedPay.Valid {
		return a.NegotiatedPay.Decimal
	}
	return a.OriginalPay
}
