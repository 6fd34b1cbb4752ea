package user

import (
	"time"

	"quickgig/internal/common"
)

type Role string

const (
	RoleStudent  Role = "student"
	RoleEmployer Role = "employer"
)

type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationVerified VerificationStatus = "verified"
	VerificationRejected VerificationStatus = "rejected"
)

// User is owned by the external identity subsystem. The engine only reads it:
// the rating aggregate is maintained by the rating service, verification by
// the onboarding flow.
type User struct {
	ID                 common.UUID        `json:"id"`
	Name               string             `json:"name"`
	Phone              string             `json:"phone"`
	Role               Role               `json:"role"`
	VerificationStatus VerificationStatus `json:"verification_status"`
	Rating             float64            `json:"rating"`
	TotalRatings       int                `json:"total_ratings"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}
