// Copyright 2023-2024
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package nav

import "time"

// ResolveTradingDay finds the trading day within (year, month) that a
// contribution targeting day-of-month `day` actually lands on. The target
// day is clamped to the month's last calendar day when it overflows
// (e.g. 31 in February). Resolution order:
//
//  1. the exact candidate date, when the series trades on it
//  2. the earliest trading day in the month after the candidate
//  3. the latest trading day in the month before the candidate
//
// Returns false when the series has no trading days in that month at all.
func ResolveTradingDay(s *Series, year int, month time.Month, day int) (time.Time, bool) {
	lastDay := daysInMonth(year, month)
	if day > lastDay {
		day = lastDay
	}
	if day < 1 {
		day = 1
	}
	candidate := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)

	monthStart := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	monthEnd := time.Date(year, month, lastDay, 0, 0, 0, 0, time.UTC)
	available := s.Window(monthStart, monthEnd)
	if len(available) == 0 {
		return time.Time{}, false
	}

	var prev time.Time
	havePrev := false
	for _, row := range available {
		if row.Date.Equal(candidate) {
			return row.Date, true
		}
		if row.Date.After(candidate) {
			// earliest available date after the candidate; rows are
			// sorted so the first hit wins
			return row.Date, true
		}
		prev = row.Date
		havePrev = true
	}

	if havePrev {
		return prev, true
	}

	return time.Time{}, false
}

func daysInMonth(year int, month time.Month) int {
	// day 0 of the next month is the last day of this month
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
