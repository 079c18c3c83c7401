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

package portfolio

import (
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"
)

// RollingPoint is one entry of a rolling-return series. Return is only
// meaningful when Valid is set; the first window-many rows of a series
// have no lookback and are invalid.
type RollingPoint struct {
	Date   time.Time `json:"date"`
	Return float64   `json:"return"`
	Valid  bool      `json:"valid"`
}

// RollingSummary is the distributional summary of the defined values of
// a rolling annualized-return series, percentages x100
type RollingSummary struct {
	MeanPct   float64 `json:"meanPct"`
	MedianPct float64 `json:"medianPct"`
	MinPct    float64 `json:"minPct"`
	MaxPct    float64 `json:"maxPct"`
	Count     int     `json:"count"`
}

// RollingPeriodicReturns computes, for every row, the percentage change
// of valuation versus the row windowDays trading-day positions earlier.
// The result has one point per ledger row; the first windowDays points
// are invalid.
func RollingPeriodicReturns(s DailySeries, windowDays int) []RollingPoint {
	daily := s.Daily()
	points := make([]RollingPoint, len(daily))
	for ii, d := range daily {
		points[ii].Date = d.Date
		if ii < windowDays || windowDays <= 0 {
			continue
		}
		base := daily[ii-windowDays].Value
		if base == 0 {
			continue
		}
		points[ii].Return = d.Value/base - 1.0
		points[ii].Valid = true
	}
	return points
}

// RollingAnnualizedReturns converts each periodic rolling return x into
// (1+x)^(freq/windowDays) - 1. Invalid points stay invalid.
func RollingAnnualizedReturns(s DailySeries, windowDays int, freq int) []RollingPoint {
	points := RollingPeriodicReturns(s, windowDays)
	exp := float64(freq) / float64(windowDays)
	for ii := range points {
		if !points[ii].Valid {
			continue
		}
		points[ii].Return = math.Pow(1.0+points[ii].Return, exp) - 1.0
	}
	return points
}

// RollingYears computes rolling annualized returns over a trailing
// window of the given number of years, using windowDays =
// round(years * freq)
func RollingYears(s DailySeries, years float64, freq int) []RollingPoint {
	windowDays := int(math.Round(years * float64(freq)))
	return RollingAnnualizedReturns(s, windowDays, freq)
}

// RollingMultiYears computes RollingYears independently for each year
// count; all series share the ledger's dates so they align row for row
func RollingMultiYears(s DailySeries, years []float64, freq int) map[float64][]RollingPoint {
	out := make(map[float64][]RollingPoint, len(years))
	for _, y := range years {
		out[y] = RollingYears(s, y, freq)
	}
	return out
}

// SummaryOfRolling summarizes the defined values of a rolling-years
// series. ok is false when the series has no defined values.
func SummaryOfRolling(s DailySeries, years float64, freq int) (RollingSummary, bool) {
	points := RollingYears(s, years, freq)
	vals := make([]float64, 0, len(points))
	for _, p := range points {
		if p.Valid {
			vals = append(vals, p.Return)
		}
	}
	if len(vals) == 0 {
		return RollingSummary{}, false
	}

	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)

	median := sorted[len(sorted)/2]
	if len(sorted)%2 == 0 {
		median = (sorted[len(sorted)/2-1] + sorted[len(sorted)/2]) / 2.0
	}

	return RollingSummary{
		MeanPct:   stat.Mean(vals, nil) * 100.0,
		MedianPct: median * 100.0,
		MinPct:    sorted[0] * 100.0,
		MaxPct:    sorted[len(sorted)-1] * 100.0,
		Count:     len(vals),
	}, true
}
