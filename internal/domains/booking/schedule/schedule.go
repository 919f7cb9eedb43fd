package schedule

import (
	"net/http"
	"time"

	"rally/shared/failure"
)

// Interval is a half-open time window [Start, End) on a single booking date.
type Interval struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether two half-open intervals share any time. Touching
// endpoints do not overlap, so back to back bookings are allowed.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start.Before(other.End) && i.End.After(other.Start)
}

// Admissible checks a candidate window against the court operating hours and
// the already occupied intervals for the same court and date. It returns nil
// when the candidate can be committed, or a failure describing the first rule
// it violates. The checks are ordered so the cheapest structural rules fail
// first.
func Admissible(candidate Interval, openTime, closeTime time.Time, occupied []Interval) error {
	if !candidate.Start.Before(candidate.End) {
		return failure.New(http.StatusUnprocessableEntity, failure.KindInvalidWindow, "start time must be before end time") // nolint:wrapcheck
	}

	if candidate.Start.Before(openTime) || candidate.End.After(closeTime) {
		return failure.New(http.StatusUnprocessableEntity, failure.KindOutsideOperatingHours, "booking window is outside court operating hours") // nolint:wrapcheck
	}

	for _, o := range occupied {
		if candidate.Overlaps(o) {
			return failure.New(http.StatusConflict, failure.KindTimeConflict, "booking window conflicts with an existing booking") // nolint:wrapcheck
		}
	}

	return nil
}
