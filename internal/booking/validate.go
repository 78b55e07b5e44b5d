package booking

import "time"

// Policy holds the configurable validation thresholds. Zero values
// disable the corresponding rule, but production config always sets
// both (10 minutes lead time, 60 minutes minimum duration by default).
type Policy struct {
	MinLeadTime time.Duration
	MinDuration time.Duration
}

// Validate applies the booking rules to a requested slot. Rules run in
// a fixed order and the first failure wins:
//
//	1. the date must not be before today        -> ErrPastDate
//	2. start must be strictly before end        -> ErrStartNotBeforeEnd
//	3. the slot must start MinLeadTime from now -> ErrLeadTime
//	4. the slot must last at least MinDuration  -> ErrTooShort
//
// All four rules are enforced on create and edit; reactivating a
// cancelled reservation only re-checks the slot conflict, since its
// fields were already validated when it was booked. A slot that passes
// is always created PENDING; confirmation only ever comes from a
// payment. The current time is a parameter so the rules stay
// deterministic under test.
func (p Policy) Validate(date time.Time, start, end time.Duration, now time.Time) error {
	if DayOf(date).Before(DayOf(now)) {
		return ErrPastDate
	}
	if start >= end {
		return ErrStartNotBeforeEnd
	}
	if DayOf(date).Add(start).Before(now.Add(p.MinLeadTime)) {
		return ErrLeadTime
	}
	if end-start < p.MinDuration {
		return ErrTooShort
	}
	return nil
}
