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

// SimulateLumpsum replays a one-time investment of amount against the
// NAV series. The purchase executes on the first trading day with date >=
// start; the ledger spans from that day through end inclusive. A zero end
// date means the last day available in the series.
func SimulateLumpsum(series *nav.Series, assetID string, amount float64, start, end time.Time) (*Ledger, error) {
	if end.IsZero() {
		end = series.Last().Date
	}

	buy, ok := series.FirstOnOrAfter(start)
	if !ok {
		return nil, ErrNoDataInRange
	}
	if buy.Nav <= 0 {
		log.Error().Str("AssetID", assetID).Time("BuyDate", buy.Date).Float64("Nav", buy.Nav).Msg("non-positive NAV on purchase date")
		return nil, ErrInvalidNav
	}

	window := series.Window(buy.Date, end)
	if len(window) == 0 {
		return nil, ErrNoDataInRange
	}

	units := amount / buy.Nav
	ledger := &Ledger{
		AssetID: assetID,
		Rows:    make([]LedgerRow, 0, len(window)),
	}

	var totalUnits, cumInvested float64
	for _, row := range window {
		var cashflow, unitsToday float64
		if row.Date.Equal(buy.Date) {
			cashflow = amount
			unitsToday = units
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
