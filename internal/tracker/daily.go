package tracker

import "time"

// DailyKind selects one of the per-day counter families on a record.
type DailyKind int

const (
	DailyMessages DailyKind = iota
	DailyMentions
	DailyReactions
)

// DateKey returns the UTC calendar-date bucket key for t. The key is stable
// regardless of time of day.
func DateKey(t time.Time) string {
	return t.UTC().Format(time.DateOnly)
}

// dailyBucket returns the counter map backing the given kind.
func (u *UserRecord) dailyBucket(kind DailyKind) map[string]int64 {
	switch kind {
	case DailyMentions:
		return u.DailyMentionsSent
	case DailyReactions:
		return u.DailyReactionsGiven
	default:
		return u.DailyMessageCounts
	}
}

// RecordDaily adds delta to the calendar-date bucket for dateKey.
func (u *UserRecord) RecordDaily(kind DailyKind, dateKey string, delta int64) {
	u.dailyBucket(kind)[dateKey] += delta
}

// RollingSum sums windowDays consecutive calendar-date buckets ending at
// asOf, inclusive. Missing buckets count as zero. Sums are recomputed from
// the buckets on every call rather than cached.
func (u *UserRecord) RollingSum(kind DailyKind, windowDays int, asOf time.Time) int64 {
	bucket := u.dailyBucket(kind)
	day := asOf.UTC()

	var sum int64
	for i := 0; i < windowDays; i++ {
		sum += bucket[DateKey(day.AddDate(0, 0, -i))]
	}

	return sum
}
