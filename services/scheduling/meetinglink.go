package scheduling

import "github.com/google/uuid"

// newMeetingLink generates an opaque join link for virtual bookings. The
// token is unique by generation; no collision check is performed.
func newMeetingLink() string {
	return "https://meet.meetsync.io/j/" + uuid.New().String()
}
