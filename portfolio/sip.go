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
	"time"

	"github.com/nav-vault/nav-api/nav"
	"github.com/rs/zerolog/log"
)

// SIPParams configure a systematic investment plan simulation
type SIPParams struct {
	// MonthlyAmount is invested each month on the resolved SIP date
	MonthlyAmount float64 `json:"amount_per_month"`
	// SIPDay is the target day-of-month for contributions (1-31); when
	// the market is closed on that day the contribution lands on the
	// nearest trading day per nav.ResolveTradingDay
	SIPDay int `json:"day_of_month"`
	// InitialAmount, when positive, is additionally invested on the
	// first trading day on or after the simulation start
	InitialAmount float64 `json:"initial_amount"`
}

// SimulateSIP replays a monthly contribution plan, with an optional
// up-front lump sum, against the NAV series. For every calendar month
// between start and end inclusive the contribution date is resolved
// against the series; months that resolve to no date, or to a date
// outside the range, are skipped without error. The ledger spans
// from the first purchase (initial or monthly, whichever is earlier)
// through end.
func SimulateSIP(series *nav.Series, assetID string, params SIPParams, start, end time.Time) (*Ledger, error) {
	purchases := make(map[time.Time]float64)

	if params.MonthlyAmount > 0 {
		for _, ym := range monthsBetween(start, end) {
			target, ok := nav.ResolveTradingDay(series, ym.year, ym.month, params.SIPDay)
			if !ok {
				continue
			}
			if target.Before(start) || target.After(end) {
				log.Debug().Str("AssetID", assetID).Time("Resolved", target).Msg("skipping SIP month resolved outside range")
				continue
			}
			purchases[target] += params.MonthlyAmount
		}
	}

	if params.InitialAmount > 0 {
		buy, ok := series.FirstOnOrAfter(start)
		if !ok || buy.Date.After(end) {
			return nil, ErrNoDataInRange
		}
		purchases[buy.Date] += params.InitialAmount
	}

	if len(purchases) == 0 {
		return nil, ErrNoDataInRange
	}

	var firstBuy time.Time
	for date := range purchases {
		if firstBuy.IsZero() || date.Before(firstBuy) {
			firstBuy = date
		}
	}

	window := series.Window(firstBuy, end)
	if len(window) == 0 {
		return nil, ErrNoDataInRange
	}

	ledger := &Ledger{
		AssetID: assetID,
		Rows:    make([]LedgerRow, 0, len(window)),
	}

	var totalUnits, cumInvested float64
	for _, row := range window {
		var cashflow, unitsToday float64
		if amount, ok := purchases[row.Date]; ok {
			if row.Nav <= 0 {
				log.Error().Str("AssetID", assetID).Time("BuyDate", row.Date).Float64("Nav", row.Nav).Msg("non-positive NAV on purchase date")
				return nil, ErrInvalidNav
			}
			cashflow = amount
			unitsToday = amount / row.Nav
			totalUnits += unitsToday
			cumInvested += cashflow
		}
		ledger.Rows = append(ledger.Rows, LedgerRow{
			Date:        row.Date,
			Nav:         row.Nav,
			Cashflow:    cashflow,
			UnitsBought: unitsToday,
			TotalUnits:  totalUnits,
			Value:       totalUnits * row.Nav,
			CumInvested: cumInvested,
		})
	}

	return ledger, nil
}

type yearMonth struct {
	year  int
	month time.Month
}

// monthsBetween lists every calendar month from start's month through
// end's month inclusive
func monthsBetween(start, end time.Time) []yearMonth {
	months := make([]yearMonth, 0, 12)
	cur := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, time.UTC)
	for !cur.After(last) {
		months = append(months, yearMonth{year: cur.Year(), month: cur.Month()})
		cur = cur.AddDate(0, 1, 0)
	}
	return months
}
