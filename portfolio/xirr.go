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
	"time"
)

// Cashflow is one dated signed amount of an irregular cashflow schedule.
// Investments are outflows (negative); the terminal valuation is the
// closing inflow.
type Cashflow struct {
	Date   time.Time `json:"date"`
	Amount float64   `json:"amount"`
}

const (
	xirrLow        = -0.9999
	xirrHigh       = 10.0
	xirrIterations = 100
)

// XIRR solves the money-weighted annualized rate of return of the
// series: the rate r zeroing sum(cashflow_i / (1+r)^years_i), with
// years measured from the first cashflow in calendar days / 365.
// Investments enter as outflows and the final valuation as one
// synthetic inflow on the last ledger date. The solver bisects
// r over [-0.9999, 10] for a fixed 100 iterations and returns the
// midpoint of the final bracket.
func XIRR(s DailySeries) (float64, error) {
	flows, err := CashflowSchedule(s)
	if err != nil {
		return 0, err
	}

	low, high := xirrLow, xirrHigh
	for i := 0; i < xirrIterations; i++ {
		mid := (low + high) / 2.0
		if npv(flows, mid) > 0 {
			low = mid
		} else {
			high = mid
		}
	}
	return (low + high) / 2.0, nil
}

// CashflowSchedule derives the XIRR input from a ledger: every non-zero
// cashflow negated into an outflow, plus the final valuation as a
// terminal inflow on the last date
func CashflowSchedule(s DailySeries) ([]Cashflow, error) {
	if !s.TracksCashflow() {
		return nil, ErrMissingCashflow
	}
	daily := s.Daily()
	if len(daily) == 0 {
		return nil, ErrEmptyLedger
	}

	flows := make([]Cashflow, 0, 16)
	for _, d := range daily {
		if d.Cashflow != 0 {
			flows = append(flows, Cashflow{Date: d.Date, Amount: -d.Cashflow})
		}
	}
	last := daily[len(daily)-1]
	flows = append(flows, Cashflow{Date: last.Date, Amount: last.Value})
	return flows, nil
}

// npv discounts each flow back to the first flow's date at the given
// annual rate
func npv(flows []Cashflow, rate float64) float64 {
	d0 := flows[0].Date
	var sum float64
	for _, cf := range flows {
		years := cf.Date.Sub(d0).Hours() / 24 / 365.0
		sum += cf.Amount / math.Pow(1.0+rate, years)
	}
	return sum
}
