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

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/stat"
)

const (
	// DefaultTradingDays is the annualization frequency used when the
	// caller does not override it
	DefaultTradingDays = 252
	// DefaultRiskFreeRate is the annual risk-free rate assumed for
	// risk-adjusted metrics
	DefaultRiskFreeRate = 0.06
)

// DrawDown describes the deepest peak-to-trough decline of a valuation
// series
type DrawDown struct {
	// Drawdown is the most negative fractional decline from the running
	// peak (<= 0)
	Drawdown float64 `json:"drawdown"`
	// PeakDate is the last date at or before the trough on which the
	// valuation equals the running maximum at the trough
	PeakDate time.Time `json:"peakDate"`
	// TroughDate is the earliest date of the deepest decline
	TroughDate time.Time `json:"troughDate"`
}

// Summary bundles the point metrics of one simulation run. Percentages
// are expressed x100. Metrics that are undefined for the series (zero
// invested capital, a single-row ledger, zero volatility, non-positive
// CAGR preconditions, a failed XIRR) are nil rather than an error.
type Summary struct {
	FinalValue         float64   `json:"finalValue"`
	Invested           float64   `json:"invested"`
	TotalReturnPct     *float64  `json:"totalReturnPct"`
	CagrPct            *float64  `json:"cagrPct"`
	MaxDrawdownPct     float64   `json:"maxDrawdownPct"`
	DrawdownPeakDate   time.Time `json:"drawdownPeakDate"`
	DrawdownTroughDate time.Time `json:"drawdownTroughDate"`
	VolatilityPct      *float64  `json:"volatilityPct"`
	Sharpe             *float64  `json:"sharpe"`
	XirrPct            *float64  `json:"xirrPct"`
}

// FinalAndInvested returns the final valuation and the capital
// contributed (sum of strictly-positive cashflows; withdrawals, were any
// modeled, would not count as invested capital)
func FinalAndInvested(s DailySeries) (final float64, invested float64, err error) {
	daily := s.Daily()
	if len(daily) == 0 {
		return 0, 0, ErrEmptyLedger
	}
	final = daily[len(daily)-1].Value
	for _, d := range daily {
		if d.Cashflow > 0 {
			invested += d.Cashflow
		}
	}
	return final, invested, nil
}

// TotalReturn is final/invested - 1 as a fraction. Undefined (ok=false)
// when no capital was invested.
func TotalReturn(s DailySeries) (float64, bool) {
	final, invested, err := FinalAndInvested(s)
	if err != nil || invested == 0 {
		return 0, false
	}
	return final/invested - 1.0, true
}

// CAGR is the compound annual growth rate of the valuation between the
// first and last rows, using calendar days / 365 as the year count.
// Undefined when the series spans no time or starts at a non-positive
// valuation.
func CAGR(s DailySeries) (float64, bool) {
	daily := s.Daily()
	if len(daily) == 0 {
		return 0, false
	}
	first := daily[0]
	last := daily[len(daily)-1]
	days := last.Date.Sub(first.Date).Hours() / 24
	if days <= 0 || first.Value <= 0 {
		return 0, false
	}
	years := days / 365.0
	return math.Pow(last.Value/first.Value, 1.0/years) - 1.0, true
}

// DailyReturns is the day-over-day percentage change of valuation; the
// first row has no prior day and is defined as 0
func DailyReturns(s DailySeries) []float64 {
	daily := s.Daily()
	rets := make([]float64, len(daily))
	for ii := 1; ii < len(daily); ii++ {
		prev := daily[ii-1].Value
		if prev == 0 {
			rets[ii] = math.NaN()
			continue
		}
		rets[ii] = daily[ii].Value/prev - 1.0
	}
	return rets
}

// VolatilityAnnualized is the sample standard deviation of daily returns
// scaled by the square root of the trading-day frequency. Undefined
// (ok=false) when the series has fewer than two returns, where the
// sample deviation is NaN.
func VolatilityAnnualized(s DailySeries, freq int) (float64, bool) {
	rets := finiteReturns(s)
	vol := stat.StdDev(rets, nil) * math.Sqrt(float64(freq))
	if math.IsNaN(vol) {
		return 0, false
	}
	return vol, true
}

// SharpeRatio annualizes the arithmetic mean daily return by compounding
// ((1+mean)^freq - 1), subtracts the annual risk-free rate and divides
// by annualized volatility. Undefined when volatility is zero or itself
// undefined.
func SharpeRatio(s DailySeries, riskFreeRate float64, freq int) (float64, bool) {
	rets := finiteReturns(s)
	if len(rets) == 0 {
		return 0, false
	}
	meanDaily := stat.Mean(rets, nil)
	annReturn := math.Pow(1.0+meanDaily, float64(freq)) - 1.0
	annVol, ok := VolatilityAnnualized(s, freq)
	if !ok || annVol == 0 {
		return 0, false
	}
	return (annReturn - riskFreeRate) / annVol, true
}

// MaxDrawdown locates the deepest decline from a running valuation peak.
// On ties the earliest trough wins; the reported peak is the last
// running-max date at or before that trough.
func MaxDrawdown(s DailySeries) (*DrawDown, error) {
	daily := s.Daily()
	if len(daily) == 0 {
		return nil, ErrEmptyLedger
	}

	runningMax := daily[0].Value
	minDD := 0.0
	troughIdx := 0
	troughMax := runningMax
	for ii, d := range daily {
		if d.Value > runningMax {
			runningMax = d.Value
		}
		var dd float64
		if runningMax > 0 {
			dd = (d.Value - runningMax) / runningMax
		}
		if dd < minDD {
			minDD = dd
			troughIdx = ii
			troughMax = runningMax
		}
	}

	peakIdx := troughIdx
	for ii := troughIdx; ii >= 0; ii-- {
		if daily[ii].Value == troughMax {
			peakIdx = ii
			break
		}
	}

	return &DrawDown{
		Drawdown:   minDD,
		PeakDate:   daily[peakIdx].Date,
		TroughDate: daily[troughIdx].Date,
	}, nil
}

// SummaryMetrics computes the full metric bundle for a simulation run.
// Structural problems (an empty ledger) are fatal; individually
// undefined metrics come back nil inside an otherwise successful
// summary. A failed XIRR is one of those documented absences.
func SummaryMetrics(s DailySeries, riskFreeRate float64, freq int) (*Summary, error) {
	final, invested, err := FinalAndInvested(s)
	if err != nil {
		return nil, err
	}

	dd, err := MaxDrawdown(s)
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		FinalValue:         final,
		Invested:           invested,
		MaxDrawdownPct:     dd.Drawdown * 100.0,
		DrawdownPeakDate:   dd.PeakDate,
		DrawdownTroughDate: dd.TroughDate,
	}

	if vol, ok := VolatilityAnnualized(s, freq); ok {
		pct := vol * 100.0
		summary.VolatilityPct = &pct
	}
	if ret, ok := TotalReturn(s); ok {
		pct := ret * 100.0
		summary.TotalReturnPct = &pct
	}
	if growth, ok := CAGR(s); ok {
		pct := growth * 100.0
		summary.CagrPct = &pct
	}
	if sharpe, ok := SharpeRatio(s, riskFreeRate, freq); ok {
		summary.Sharpe = &sharpe
	}
	if rate, err := XIRR(s); err == nil {
		pct := rate * 100.0
		summary.XirrPct = &pct
	} else {
		log.Debug().Err(err).Msg("xirr unavailable for summary")
	}

	return summary, nil
}

// finiteReturns drops NaN daily returns (a prior-day valuation of zero)
// before feeding gonum
func finiteReturns(s DailySeries) []float64 {
	rets := DailyReturns(s)
	out := make([]float64, 0, len(rets))
	for _, r := range rets {
		if !math.IsNaN(r) {
			out = append(out, r)
		}
	}
	return out
}
