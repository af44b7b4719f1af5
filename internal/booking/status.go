// Package booking implements the reservation engine: it decides whether
// a proposed booking is admissible given existing bookings, maintenance
// windows and equipment availability, and it moves reservations through
// their lifecycle under a serializable transactional contract with an
// append-only audit trail.
package booking

// Status is the closed set of reservation lifecycle states.
type Status string

const (
	StatusPending   Status = "Pending"
	StatusApproved  Status = "Approved"
	StatusRejected  Status = "Rejected"
	StatusCancelled Status = "Cancelled"
)

// transitions is the lifecycle graph.  Approve and Reject are only
// admissible from Pending; Cancel is admissible from Pending or
// Approved.  Rejected and Cancelled are terminal.
var transitions = map[Status][]Status{
	StatusPending:  {StatusApproved, StatusRejected, StatusCancelled},
	StatusApproved: {StatusCancelled},
}

// Terminal reports whether no further transition can leave s.
func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}

// CanTransitionTo reports whether the lifecycle graph permits moving
// from s to next.
func (s Status) CanTransitionTo(next Status) bool {
	for _, t := range transitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// Valid reports whether s is one of the four known states.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusCancelled:
		return true
	}
	return false
}
