// Package crowds predicts lift-line pressure for a date and mountain from the
// Northeast school-vacation calendar. No external data source is needed: the
// crowd pattern at New England mountains is almost entirely a function of
// which states have the week off.
package crowds

import (
	"time"

	"github.com/powder-labs/powder/internal/model"
)

// Assess returns the crowd context for skiing at a mountain in the given
// state on the target date.
func Assess(target time.Time, mountainState string) model.CrowdContext {
	year := target.Year()
	wd := target.Weekday()
	isWeekend := wd == time.Saturday || wd == time.Sunday

	// Christmas through New Year's (Dec 24 - Jan 2).
	if inRange(target, civil(year, time.December, 24), civil(year, time.December, 31)) {
		return model.CrowdContext{
			IsHolidayWeekend: true,
			Level:            model.CrowdExtreme,
			Note:             "Christmas week, expect extreme crowds everywhere",
		}
	}
	if inRange(target, civil(year, time.January, 1), civil(year, time.January, 2)) {
		return model.CrowdContext{
			IsHolidayWeekend: true,
			Level:            model.CrowdExtreme,
			Note:             "New Year's holiday, expect extreme crowds everywhere",
		}
	}

	// MLK weekend: the third Monday of January plus the Saturday and Sunday
	// before it.
	mlkMonday := nthWeekday(year, time.January, time.Monday, 3)
	if inRange(target, mlkMonday.AddDate(0, 0, -2), mlkMonday) {
		return model.CrowdContext{
			IsHolidayWeekend: true,
			Level:            model.CrowdHigh,
			Note:             "MLK weekend, expect high crowds",
		}
	}

	// February vacation weeks drive the worst ski crowds of the season.
	// MA/NH take the week containing Presidents Day; NY typically takes the
	// week after.
	presidentsMonday := nthWeekday(year, time.February, time.Monday, 3)
	maStart := presidentsMonday.AddDate(0, 0, -2) // Saturday before
	maEnd := presidentsMonday.AddDate(0, 0, 6)    // following Sunday
	nyStart := presidentsMonday.AddDate(0, 0, 7)
	nyEnd := nyStart.AddDate(0, 0, 6)

	if inRange(target, maStart, maEnd) {
		ctx := model.CrowdContext{
			IsHolidayWeekend: isWeekend,
			VacationWeek:     "MA/NH",
		}
		// Maine draws less of the Boston crowd than Vermont does.
		if mountainState == "ME" {
			ctx.Level = model.CrowdModerate
			if isWeekend {
				ctx.Level = model.CrowdHigh
			}
			ctx.Note = "MA/NH vacation week, Maine less packed than Vermont"
		} else {
			ctx.Level = model.CrowdHigh
			if isWeekend {
				ctx.Level = model.CrowdExtreme
			}
			ctx.Note = "MA/NH vacation week, expect extreme crowds"
		}
		return ctx
	}

	if inRange(target, nyStart, nyEnd) {
		ctx := model.CrowdContext{
			IsHolidayWeekend: isWeekend,
			VacationWeek:     "NY",
		}
		if mountainState == "ME" {
			ctx.Level = model.CrowdNormal
			if isWeekend {
				ctx.Level = model.CrowdModerate
			}
			ctx.Note = "NY vacation week, Maine gets fewer NYC crowds, good escape option"
		} else {
			ctx.Level = model.CrowdHigh
			if isWeekend {
				ctx.Level = model.CrowdExtreme
			}
			ctx.Note = "NY vacation week, VT will be packed, consider Maine"
		}
		return ctx
	}

	if isWeekend {
		return model.CrowdContext{
			Level: model.CrowdModerate,
			Note:  "Regular weekend, typical crowds",
		}
	}
	return model.CrowdContext{
		Level: model.CrowdNormal,
		Note:  "Weekday, lighter crowds expected",
	}
}

func civil(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// inRange reports whether the calendar date of t falls within [start, end].
func inRange(t, start, end time.Time) bool {
	d := civil(t.Year(), t.Month(), t.Day())
	return !d.Before(start) && !d.After(end)
}

// nthWeekday returns the nth occurrence of a weekday in a month (1-indexed).
func nthWeekday(year int, month time.Month, weekday time.Weekday, n int) time.Time {
	first := civil(year, month, 1)
	offset := (int(weekday) - int(first.Weekday()) + 7) % 7
	return first.AddDate(0, 0, offset+(n-1)*7)
}
