// Reina Core
// Copyright (c) 2026 The Reina Core Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Reina Core.
//
// Reina Core is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Reina Core is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Reina Core.  If not, see <http://www.gnu.org/licenses/>.

package playtime

import (
	"strconv"
	"time"
)

const (
	// MinSessionSeconds is the shortest session that is recorded.
	MinSessionSeconds = 60

	dateLayout = "2006-01-02"
)

// SessionDuration converts elapsed seconds to whole minutes, rounding down.
func SessionDuration(elapsedSeconds int64) int {
	if elapsedSeconds <= 0 {
		return 0
	}
	return int(elapsedSeconds / 60)
}

// LocalDate returns the YYYY-MM-DD calendar date of an epoch timestamp in loc.
func LocalDate(ts int64, loc *time.Location) string {
	return time.Unix(ts, 0).In(orLocal(loc)).Format(dateLayout)
}

// NextMidnight returns the first local midnight strictly after ts.
func NextMidnight(ts int64, loc *time.Location) int64 {
	t := time.Unix(ts, 0).In(orLocal(loc))
	y, m, d := t.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, t.Location()).Unix()
}

// StartOfDay returns local midnight at the start of t's day.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// WeekStart returns midnight of the Sunday that starts t's week.
func WeekStart(t time.Time) time.Time {
	day := StartOfDay(t)
	return day.AddDate(0, 0, -int(day.Weekday()))
}

// WeekRange returns the first and last dates of t's week, inclusive.
func WeekRange(t time.Time) (first, last string) {
	start := WeekStart(t)
	return start.Format(dateLayout), start.AddDate(0, 0, 6).Format(dateLayout)
}

// FormatPlayTime renders minutes as "45m", "2h" or "2h 5m".
func FormatPlayTime(minutes int) string {
	if minutes <= 0 {
		return "0m"
	}
	hours := minutes / 60
	mins := minutes % 60
	switch {
	case hours == 0:
		return strconv.Itoa(mins) + "m"
	case mins == 0:
		return strconv.Itoa(hours) + "h"
	default:
		return strconv.Itoa(hours) + "h " + strconv.Itoa(mins) + "m"
	}
}

func orLocal(loc *time.Location) *time.Location {
	if loc == nil {
		return time.Local
	}
	return loc
}
