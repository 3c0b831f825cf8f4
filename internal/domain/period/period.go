// Package period implements calendar-aligned cadence periods.
//
// Days are carried as UTC midnights that stand for a calendar day in some
// owner's time zone; no zone conversion happens here. Weeks start on Monday
// and months are calendar months.
package period

import (
	"fmt"
	"time"

	"sparkos/internal/domain/entity"
)

// epochMonday is the Monday preceding the Unix epoch (a Thursday)
var epochMonday = time.Date(1969, time.December, 29, 0, 0, 0, 0, time.UTC)

const day = 24 * time.Hour

// Period is one qualifying period of a cadence
type Period struct {
	Cadence entity.Cadence
	Start   time.Time
}

// Of returns the period of cadence c containing the calendar day d
func Of(c entity.Cadence, d time.Time) Period {
	d = entity.DateOf(d)
	switch c {
	case entity.CadenceWeekly:
		offset := (int(d.Weekday()) + 6) % 7 // Monday=0
		return Period{Cadence: c, Start: d.AddDate(0, 0, -offset)}
	case entity.CadenceMonthly:
		return Period{Cadence: c, Start: time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)}
	default:
		return Period{Cadence: entity.CadenceDaily, Start: d}
	}
}

// Index returns a monotonically increasing ordinal of the period, so that
// adjacent periods differ by exactly one
func (p Period) Index() int64 {
	switch p.Cadence {
	case entity.CadenceWeekly:
		return int64(p.Start.Sub(epochMonday)/day) / 7
	case entity.CadenceMonthly:
		return int64(p.Start.Year())*12 + int64(p.Start.Month()) - 1
	default:
		return int64(p.Start.Unix() / 86400)
	}
}

// Next returns the following period
func (p Period) Next() Period {
	return p.shift(1)
}

// Prev returns the preceding period
func (p Period) Prev() Period {
	return p.shift(-1)
}

func (p Period) shift(n int) Period {
	switch p.Cadence {
	case entity.CadenceWeekly:
		return Period{Cadence: p.Cadence, Start: p.Start.AddDate(0, 0, 7*n)}
	case entity.CadenceMonthly:
		return Period{Cadence: p.Cadence, Start: p.Start.AddDate(0, n, 0)}
	default:
		return Period{Cadence: p.Cadence, Start: p.Start.AddDate(0, 0, n)}
	}
}

// End returns the last calendar day of the period
func (p Period) End() time.Time {
	return p.Next().Start.AddDate(0, 0, -1)
}

// Contains reports whether calendar day d falls within the period
func (p Period) Contains(d time.Time) bool {
	d = entity.DateOf(d)
	return !d.Before(p.Start) && !d.After(p.End())
}

// Before reports whether p is strictly earlier than q
func (p Period) Before(q Period) bool {
	return p.Index() < q.Index()
}

// Equal reports whether p and q denote the same period
func (p Period) Equal(q Period) bool {
	return p.Cadence == q.Cadence && p.Start.Equal(q.Start)
}

// Elapsed returns the number of periods from the one containing from up to and
// including the one containing to. It is zero when to precedes from.
func Elapsed(c entity.Cadence, from, to time.Time) int32 {
	a, b := Of(c, from), Of(c, to)
	n := b.Index() - a.Index() + 1
	if n < 0 {
		return 0
	}
	return int32(n)
}

func (p Period) String() string {
	return fmt.Sprintf("%s:%s", p.Cadence, p.Start.Format(entity.DateLayout))
}
