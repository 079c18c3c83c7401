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
	"sort"
	"time"
)

// PortfolioRow is one day of a merged multi-asset portfolio
type PortfolioRow struct {
	Date        time.Time `json:"date"`
	Value       float64   `json:"value"`
	Cashflow    float64   `json:"cashflow"`
	CumInvested float64   `json:"cumInvested"`
}

// PortfolioLedger is the date-aligned sum of several per-asset ledgers.
// Built once by MergeAssets and read-only thereafter.
type PortfolioLedger struct {
	AssetIDs []string       `json:"assetIds"`
	Rows     []PortfolioRow `json:"rows"`
}

// Daily implements DailySeries
func (p *PortfolioLedger) Daily() []Daily {
	out := make([]Daily, len(p.Rows))
	for ii, row := range p.Rows {
		out[ii] = Daily{
			Date:        row.Date,
			Value:       row.Value,
			Cashflow:    row.Cashflow,
			CumInvested: row.CumInvested,
		}
	}
	return out
}

// TracksCashflow implements DailySeries
func (p *PortfolioLedger) TracksCashflow() bool {
	return len(p.AssetIDs) > 0
}

// MergeAssets outer-joins per-asset ledgers on the union of their dates
// and sums them into one portfolio ledger. Valuation and cumulative
// invested are forward-filled per asset across dates the asset does not
// trade on, with leading gaps filled with zero (an asset that has not
// started yet contributes nothing). Cashflow is never forward-filled; a
// missing cashflow is zero contribution that day. The result does not
// depend on asset iteration order.
func MergeAssets(assets map[string]*Ledger) *PortfolioLedger {
	merged := &PortfolioLedger{
		AssetIDs: make([]string, 0, len(assets)),
		Rows:     []PortfolioRow{},
	}
	for assetID := range assets {
		merged.AssetIDs = append(merged.AssetIDs, assetID)
	}
	sort.Strings(merged.AssetIDs)

	if len(assets) == 0 {
		return merged
	}

	dateSet := make(map[time.Time]struct{})
	for _, ledger := range assets {
		for _, row := range ledger.Rows {
			dateSet[row.Date] = struct{}{}
		}
	}
	dates := make([]time.Time, 0, len(dateSet))
	for date := range dateSet {
		dates = append(dates, date)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	merged.Rows = make([]PortfolioRow, len(dates))
	for ii, date := range dates {
		merged.Rows[ii].Date = date
	}

	// walk each asset's ledger alongside the unioned dates, carrying the
	// last known value/invested forward
	for _, assetID := range merged.AssetIDs {
		ledger := assets[assetID]
		var lastValue, lastInvested float64
		idx := 0
		for ii, date := range dates {
			if idx < len(ledger.Rows) && ledger.Rows[idx].Date.Equal(date) {
				row := ledger.Rows[idx]
				lastValue = row.Value
				lastInvested = row.CumInvested
				merged.Rows[ii].Cashflow += row.Cashflow
				idx++
			}
			merged.Rows[ii].Value += lastValue
			merged.Rows[ii].CumInvested += lastInvested
		}
	}

	return merged
}

// CombinedTransactions collects every asset's non-zero cashflow rows
// into one date-ordered list
func CombinedTransactions(assets map[string]*Ledger) []Transaction {
	out := []Transaction{}
	for _, ledger := range assets {
		out = append(out, ledger.Transactions()...)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date.Equal(out[j].Date) {
			return out[i].AssetID < out[j].AssetID
		}
		return out[i].Date.Before(out[j].Date)
	})
	return out
}
