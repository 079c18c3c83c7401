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
	"errors"
	"time"
)

var (
	// ErrEmptyLedger is returned when a metric is requested on a ledger
	// with no rows
	ErrEmptyLedger = errors.New("ledger contains no rows")
	// ErrNoDataInRange is returned when no NAV row is available to
	// execute any purchase within the simulation range
	ErrNoDataInRange = errors.New("no NAV data in requested date range")
	// ErrInvalidNav is returned when the resolved purchase-day NAV is
	// not a positive price
	ErrInvalidNav = errors.New("invalid NAV on purchase date")
	// ErrMissingCashflow is returned when a money-weighted return is
	// requested on a series that carries no cashflow information
	ErrMissingCashflow = errors.New("series carries no cashflow data")
)

// LedgerRow records the state of a simulated holding on one trading day.
// Value is always recomputed as TotalUnits * Nav, never carried forward
// incrementally.
type LedgerRow struct {
	Date        time.Time `json:"date"`
	Nav         float64   `json:"nav"`
	Cashflow    float64   `json:"cashflow"`
	UnitsBought float64   `json:"unitsBought"`
	TotalUnits  float64   `json:"totalUnits"`
	Value       float64   `json:"value"`
	CumInvested float64   `json:"cumInvested"`
}

// Ledger is the daily record of a single asset's simulation run. It is
// append-only while a simulator builds it and read-only afterwards.
type Ledger struct {
	AssetID string      `json:"assetId"`
	Rows    []LedgerRow `json:"rows"`
}

// Transaction is a ledger row on which cash actually moved
type Transaction struct {
	Date        time.Time `json:"date"`
	AssetID     string    `json:"assetId"`
	Cashflow    float64   `json:"cashflow"`
	UnitsBought float64   `json:"unitsBought"`
	AssetValue  float64   `json:"assetValue"`
	CumInvested float64   `json:"cumInvested"`
}

// Daily is the valuation view shared by single-asset and merged ledgers;
// the Metrics and Rolling engines consume ledgers through it.
type Daily struct {
	Date        time.Time
	Value       float64
	Cashflow    float64
	CumInvested float64
}

// DailySeries is any daily valuation sequence metrics can be computed
// over. TracksCashflow reports whether the series carries cashflow
// information at all; a money-weighted return on a series without it
// fails with ErrMissingCashflow.
type DailySeries interface {
	Daily() []Daily
	TracksCashflow() bool
}

// Daily implements DailySeries
func (l *Ledger) Daily() []Daily {
	out := make([]Daily, len(l.Rows))
	for ii, row := range l.Rows {
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
func (l *Ledger) TracksCashflow() bool {
	return true
}

// Transactions returns the rows where cash moved, in date order
func (l *Ledger) Transactions() []Transaction {
	out := make([]Transaction, 0, len(l.Rows))
	for _, row := range l.Rows {
		if row.Cashflow == 0 {
			continue
		}
		out = append(out, Transaction{
			Date:        row.Date,
			AssetID:     l.AssetID,
			Cashflow:    row.Cashflow,
			UnitsBought: row.UnitsBought,
			AssetValue:  row.Value,
			CumInvested: row.CumInvested,
		})
	}
	return out
}

// ValueCurve is a bare valuation series without cashflow information;
// useful for rolling-return analysis of an externally supplied curve.
type ValueCurve struct {
	Dates  []time.Time
	Values []float64
}

// Daily implements DailySeries
func (c *ValueCurve) Daily() []Daily {
	out := make([]Daily, len(c.Dates))
	for ii := range c.Dates {
		out[ii] = Daily{Date: c.Dates[ii], Value: c.Values[ii]}
	}
	return out
}

// TracksCashflow implements DailySeries
func (c *ValueCurve) TracksCashflow() bool {
	return false
}
