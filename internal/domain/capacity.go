package domain

// CapacityReport is the result of evaluating an event snapshot against a party size.
// swagger:model CapacityReport
type CapacityReport struct {
	// Available is true when the party fits in the confirmed tier.
	Available bool `json:"available"`
	// WaitlistAvailable is true when the party may be waitlisted instead.
	WaitlistAvailable bool `json:"waitlist_available"`
	// Remaining is the number of unclaimed confirmed seats; nil for unlimited events.
	Remaining *int `json:"remaining"`
}

// EvaluateCapacity decides whether a party of partySize seats fits in the remaining
// confirmed capacity and, if not, whether it may join the waitlist.
//
// A nil maxCapacity means unlimited: always available, never waitlisted. A party larger
// than the whole capacity is still waitlisted when the waitlist is enabled.
func EvaluateCapacity(maxCapacity *int, currentAttendees, partySize int, waitlistEnabled bool) CapacityReport {
	if maxCapacity == nil {
		return CapacityReport{Available: true}
	}
	remaining := *maxCapacity - currentAttendees
	if remaining < 0 {
		remaining = 0
	}
	if partySize <= remaining {
		return CapacityReport{Available: true, Remaining: &remaining}
	}
	return CapacityReport{
		Available:         false,
		WaitlistAvailable: waitlistEnabled,
		Remaining:         &remaining,
	}
}
