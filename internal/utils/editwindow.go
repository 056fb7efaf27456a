package utils

import "time"

// EditDeadline computes the moment until which an order stays editable.
// A zero or negative window is a valid input and yields an already-passed
// deadline, not an error.
func EditDeadline(from time.Time, window time.Duration) time.Time {
	return from.Add(window)
}

// CanEditAt reports whether an order with the given deadline is still
// editable at now. A nil deadline means not editable.
func CanEditAt(deadline *time.Time, now time.Time) bool {
	return deadline != nil && now.Before(*deadline)
}
