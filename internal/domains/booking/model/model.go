package model

import (
	"time"

	"rally/shared/model"
)

const (
	TableName  = "bookings"
	EntityName = "booking"

	FieldID          = "id"
	FieldCourtID     = "court_id"
	FieldUserID      = "user_id"
	FieldBookingDate = "booking_date"
	FieldStartTime   = "start_time"
	FieldEndTime     = "end_time"
	FieldPurpose     = "purpose"
	FieldStatus      = "status"
	FieldDecidedAt   = "decided_at"
	FieldDecidedBy   = "decided_by"
)

// Booking lifecycle states. A booking is created PENDING and moves exactly
// once to APPROVED or REJECTED.
const (
	StatusPending  = "PENDING"
	StatusApproved = "APPROVED"
	StatusRejected = "REJECTED"
)

const (
	DecisionApprove = "APPROVE"
	DecisionReject  = "REJECT"
)

type Booking struct {
	ID          string     `db:"id"`
	CourtID     string     `db:"court_id"`
	UserID      string     `db:"user_id"`
	BookingDate time.Time  `db:"booking_date"`
	StartTime   time.Time  `db:"start_time"`
	EndTime     time.Time  `db:"end_time"`
	Purpose     string     `db:"purpose"`
	Status      string     `db:"status"`
	DecidedAt   *time.Time `db:"decided_at"`
	DecidedBy   *string    `db:"decided_by"`
	model.Metadata
}
