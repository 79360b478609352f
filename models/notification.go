package models

// NotificationEvent identifies what happened to a booking.
type NotificationEvent string

const (
	EventBookingCreated   NotificationEvent = "booking_created"
	EventApprovalRequired NotificationEvent = "approval_required"
	EventBookingApproved  NotificationEvent = "booking_approved"
	EventBookingRejected  NotificationEvent = "booking_rejected"
	EventBookingConfirmed NotificationEvent = "booking_confirmed"
	EventBookingCancelled NotificationEvent = "booking_cancelled"
	EventBookingReverted  NotificationEvent = "booking_reverted"
	EventBookingMoved     NotificationEvent = "booking_rescheduled"
)

// NotificationPayload is the message handed to the notification collaborator.
type NotificationPayload struct {
	RecipientID string            `json:"recipientId"`
	Event       NotificationEvent `json:"event"`
	BookingID   string            `json:"bookingId"`
	Title       string            `json:"title"`
	Data        map[string]string `json:"data,omitempty"`
}
