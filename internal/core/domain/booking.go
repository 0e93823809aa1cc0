package domain

import "time"

// BookingStatus is the approval state of a booking. Values are case-sensitive
// on the wire.
type BookingStatus string

const (
	BookingPending  BookingStatus = "Pending"
	BookingAccepted BookingStatus = "Accepted"
	BookingRejected BookingStatus = "Rejected"
)

// validTransitions defines the allowed state machine transitions. No state is
// terminal: owners may reopen or flip a decision at any time.
var validTransitions = map[BookingStatus][]BookingStatus{
	BookingPending:  {BookingPending, BookingAccepted, BookingRejected},
	BookingAccepted: {BookingPending, BookingAccepted, BookingRejected},
	BookingRejected: {BookingPending, BookingAccepted, BookingRejected},
}

// ParseBookingStatus accepts only the three literal status values.
func ParseBookingStatus(s string) (BookingStatus, error) {
	st := BookingStatus(s)
	if _, ok := validTransitions[st]; !ok {
		return "", ErrInvalidStatus
	}
	return st, nil
}

// CanTransitionTo reports whether a transition from current status to next is valid.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Availability is the drone status implied by a booking in this state.
func (s BookingStatus) Availability() DroneStatus {
	if s == BookingAccepted {
		return DroneBooked
	}
	return DroneAvailable
}

// Booking is a request to use a drone for a number of hours.
type Booking struct {
	ID              int64         `json:"id"`
	DroneID         int64         `json:"drone_id"`
	RequesterName   string        `json:"farmer_name"`
	RequesterMobile string        `json:"farmer_mobile,omitempty"`
	CreatedAt       time.Time     `json:"booking_date"`
	DurationHrs     int           `json:"duration_hrs"`
	Status          BookingStatus `json:"status"`
}
