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

import (
	"errors"
	"math"
	"sort"
	"time"
)

var (
	ErrInvalidInput = errors.New("nav series contains no valid rows")
)

// Row is a single published net-asset-value observation
type Row struct {
	Date time.Time `json:"date"`
	Nav  float64   `json:"nav"`
}

// Series is a cleaned NAV history: sorted ascending by date, one row per
// date, every price finite. Built by Normalize and read-only afterwards.
type Series struct {
	rows []Row
}

// Normalize builds a Series from raw rows. Input rows are copied, sorted
// ascending by date and de-duplicated on date; when duplicate dates occur
// the first row in input order wins. Rows whose price is NaN or infinite
// are dropped. Returns ErrInvalidInput if no rows survive cleaning.
func Normalize(rows []Row) (*Series, error) {
	cleaned := make([]Row, 0, len(rows))
	for _, row := range rows {
		if math.IsNaN(row.Nav) || math.IsInf(row.Nav, 0) {
			continue
		}
		cleaned = append(cleaned, Row{
			Date: normalizeDate(row.Date),
			Nav:  row.Nav,
		})
	}

	// stable sort keeps input order among equal dates so that the
	// first-wins de-duplication below is deterministic
	sort.SliceStable(cleaned, func(i, j int) bool {
		return cleaned[i].Date.Before(cleaned[j].Date)
	})

	deduped := cleaned[:0]
	for _, row := range cleaned {
		if len(deduped) > 0 && deduped[len(deduped)-1].Date.Equal(row.Date) {
			continue
		}
		deduped = append(deduped, row)
	}

	if len(deduped) == 0 {
		return nil, ErrInvalidInput
	}

	return &Series{rows: deduped}, nil
}

// Len returns the number of trading days in the series
func (s *Series) Len() int {
	return len(s.rows)
}

// Rows returns all rows of the series
func (s *Series) Rows() []Row {
	return s.rows
}

// At returns the row at position idx
func (s *Series) At(idx int) Row {
	return s.rows[idx]
}

// First returns the earliest row in the series
func (s *Series) First() Row {
	return s.rows[0]
}

// Last returns the latest row in the series
func (s *Series) Last() Row {
	return s.rows[len(s.rows)-1]
}

// FirstOnOrAfter finds the first trading day with date >= target
func (s *Series) FirstOnOrAfter(target time.Time) (Row, bool) {
	target = normalizeDate(target)
	idx := sort.Search(len(s.rows), func(i int) bool {
		return !s.rows[i].Date.Before(target)
	})
	if idx == len(s.rows) {
		return Row{}, false
	}
	return s.rows[idx], true
}

// Window returns all rows with begin <= date <= end
func (s *Series) Window(begin, end time.Time) []Row {
	begin = normalizeDate(begin)
	end = normalizeDate(end)
	lo := sort.Search(len(s.rows), func(i int) bool {
		return !s.rows[i].Date.Before(begin)
	})
	hi := sort.Search(len(s.rows), func(i int) bool {
		return s.rows[i].Date.After(end)
	})
	if lo >= hi {
		return nil
	}
	return s.rows[lo:hi]
}

// normalizeDate truncates a timestamp to midnight UTC so that rows
// compare on the calendar day alone
func normalizeDate(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
