// Package expiry provides pure time arithmetic for TTL-bearing records:
// lock deadlines, session staleness, and notification expiry.
package expiry

import "time"

// Expired reports whether the deadline has passed at the given instant.
// A zero deadline means "never expires".
func Expired(deadline, now time.Time) bool {
	if deadline.IsZero() {
		return false
	}
	return !deadline.After(now)
}

// Remaining returns the lifetime left before the deadline, or zero if the
// deadline has already passed. A zero deadline has no remaining lifetime
// to report and returns zero.
func Remaining(deadline, now time.Time) time.Duration {
	if deadline.IsZero() || !deadline.After(now) {
		return 0
	}
	return deadline.Sub(now)
}

// Deadline computes the expiry instant for a record created now with the
// given time-to-live.
func Deadline(now time.Time, ttl time.Duration) time.Time {
	return now.Add(ttl)
}

// StaleSince reports whether an activity timestamp is older than the
// timeout at the given instant.
func StaleSince(lastSeen time.Time, timeout time.Duration, now time.Time) bool {
	return now.Sub(lastSeen) > timeout
}
