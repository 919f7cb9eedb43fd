package model

import "rally/shared/model"

const (
	TableName  = "notifications"
	EntityName = "notification"

	FieldID        = "id"
	FieldUserID    = "user_id"
	FieldBookingID = "booking_id"
	FieldEventType = "event_type"
	FieldTitle     = "title"
	FieldMessage   = "message"
	FieldIsRead    = "is_read"
)

type Notification struct {
	ID        string `db:"id"`
	UserID    string `db:"user_id"`
	BookingID string `db:"booking_id"`
	EventType string `db:"event_type"`
	Title     string `db:"title"`
	Message   string `db:"message"`
	IsRead    bool   `db:"is_read"`
	model.Metadata
}
