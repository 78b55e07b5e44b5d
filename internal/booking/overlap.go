package booking

import "time"

// Overlaps decides whether two half-open intervals [aStart, aEnd) and
// [bStart, bEnd) intersect. Touching endpoints do not conflict: a slot
// ending at 10:00 and one starting at 10:00 coexist.
//
// This is the single conflict rule for the whole engine. The SQL used
// by the reservation repository (`? < end_time AND ? > start_time`)
// mirrors it exactly, and the create, edit and reactivate paths all go
// through the repository's conflict-checked primitives; no write path
// applies a different rule.
func Overlaps(aStart, aEnd, bStart, bEnd time.Duration) bool {
	return aStart < bEnd && aEnd > bStart
}
