package events

// Booking lifecycle event types. Stored on notification rows and used to
// pick the message template when fanning out.
const (
	TypeBookingRequested = "BOOKING_REQUESTED"
	TypeBookingApproved  = "BOOKING_APPROVED"
	TypeBookingRejected  = "BOOKING_REJECTED"
)

// TopicNotificationDelivery carries rendered delivery messages to the mail
// worker.
const TopicNotificationDelivery = "rally.notification.delivery"

// BookingEvent carries enough denormalized booking data to render a
// notification message without further lookups.
type BookingEvent struct {
	Type          string `json:"type"`
	BookingID     string `json:"bookingId"`
	CourtID       string `json:"courtId"`
	CourtName     string `json:"courtName"`
	BookingDate   string `json:"bookingDate"`
	StartTime     string `json:"startTime"`
	EndTime       string `json:"endTime"`
	RequesterID   string `json:"requesterId"`
	RequesterName string `json:"requesterName"`
	ActorID       string `json:"actorId"`
}

// Recipient is one user that must receive a persisted notification for an
// event.
type Recipient struct {
	UserID string
	Name   string
	Email  string
}

// DeliveryMessage is a rendered, per-recipient message published to Kafka
// for best effort delivery by the mail worker.
type DeliveryMessage struct {
	NotificationID string `json:"notificationId"`
	To             string `json:"to"`
	ToName         string `json:"toName"`
	Subject        string `json:"subject"`
	Body           string `json:"body"`
}
