package models

import (
	"errors"
	"time"
)

var (
	ErrDecisionMissing  = errors.New("one of is_verified or is_rejected must be set")
	ErrDecisionConflict = errors.New("is_verified and is_rejected cannot both be set")
)

// Decision: общие поля решения для пользователей и транспорта.
type Decision struct {
	WillActAt            time.Time  `json:"will_act_at"`
	VerifiedAt           *time.Time `json:"verified_at"`
	IsWaitingForResponse bool       `json:"is_waiting_for_response"`
	IsVerified           *bool      `json:"is_verified"`
	IsRejected           *bool      `json:"is_rejected"`
	Description          *string    `json:"description"`
	Response             *string    `json:"response"`
	VerifiedByName       *string    `json:"verified_by_name"`
	VerifiedByID         *string    `json:"verified_by_id"`
}

// DecisionRequest is the editable part of create/update bodies.
type DecisionRequest struct {
	WillActAt            Timestamp  `json:"will_act_at"`
	VerifiedAt           *Timestamp `json:"verified_at"`
	IsWaitingForResponse bool       `json:"is_waiting_for_response"`
	IsVerified           *bool      `json:"is_verified"`
	IsRejected           *bool      `json:"is_rejected"`
	Description          *string    `json:"description"`
	Response             *string    `json:"response"`
	VerifiedByName       *string    `json:"verified_by_name"`
	VerifiedByID         *string    `json:"verified_by_id"`
}

// Decision converts the request part into the stored form.
func (r DecisionRequest) Decision() Decision {
	var verifiedAt *time.Time
	if r.VerifiedAt != nil && !r.VerifiedAt.IsZero() {
		t := r.VerifiedAt.Time
		verifiedAt = &t
	}
	return Decision{
		WillActAt:            r.WillActAt.Time,
		VerifiedAt:           verifiedAt,
		IsWaitingForResponse: r.IsWaitingForResponse,
		IsVerified:           r.IsVerified,
		IsRejected:           r.IsRejected,
		Description:          r.Description,
		Response:             r.Response,
		VerifiedByName:       r.VerifiedByName,
		VerifiedByID:         r.VerifiedByID,
	}
}

// Check validates the mutual-exclusion rule of the request.
func (r DecisionRequest) Check() error {
	return CheckDecision(r.IsVerified, r.IsRejected)
}

// CheckDecision requires exactly one of verified/rejected to be true.
func CheckDecision(verified, rejected *bool) error {
	v := verified != nil && *verified
	rj := rejected != nil && *rejected
	switch {
	case v && rj:
		return ErrDecisionConflict
	case !v && !rj:
		return ErrDecisionMissing
	}
	return nil
}

// Verified reports the stored outcome, nil counts as false.
func (d Decision) Verified() bool { return d.IsVerified != nil && *d.IsVerified }

func (d Decision) Rejected() bool { return d.IsRejected != nil && *d.IsRejected }
