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

package portfolio_test

import (
	"time"

	"github.com/goccy/go-json"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nav-vault/nav-api/nav"
	"github.com/nav-vault/nav-api/portfolio"
)

// curve builds a cashflow-less valuation series over consecutive days
func curve(values ...float64) *portfolio.ValueCurve {
	c := &portfolio.ValueCurve{
		Dates:  make([]time.Time, len(values)),
		Values: values,
	}
	for ii := range values {
		c.Dates[ii] = day(2022, 3, 1).AddDate(0, 0, ii)
	}
	return c
}

var _ = Describe("Metrics", func() {
	Describe("when summarizing a lump-sum run on a rising series", func() {
		var summary *portfolio.Summary

		BeforeEach(func() {
			ledger, err := portfolio.SimulateLumpsum(tenDaySeries(), "FUND", 1000, day(2022, 3, 1), time.Time{})
			Expect(err).To(BeNil())
			summary, err = portfolio.SummaryMetrics(ledger, portfolio.DefaultRiskFreeRate, portfolio.DefaultTradingDays)
			Expect(err).To(BeNil())
		})

		It("should report final value and invested capital", func() {
			Expect(summary.FinalValue).To(BeNumerically("~", 1900.0))
			Expect(summary.Invested).To(Equal(1000.0))
		})

		It("should report a 90 percent total return", func() {
			Expect(summary.TotalReturnPct).ToNot(BeNil())
			Expect(*summary.TotalReturnPct).To(BeNumerically("~", 90.0))
		})

		It("should report zero drawdown on a monotonic rise", func() {
			Expect(summary.MaxDrawdownPct).To(Equal(0.0))
		})

		It("should report positive volatility and Sharpe", func() {
			Expect(summary.VolatilityPct).ToNot(BeNil())
			Expect(*summary.VolatilityPct).To(BeNumerically(">", 0))
			Expect(summary.Sharpe).ToNot(BeNil())
			Expect(*summary.Sharpe).To(BeNumerically(">", 0))
		})

		It("should report a defined CAGR and XIRR", func() {
			Expect(summary.CagrPct).ToNot(BeNil())
			Expect(*summary.CagrPct).To(BeNumerically(">", 0))
			Expect(summary.XirrPct).ToNot(BeNil())
		})
	})

	Describe("total return", func() {
		It("should be undefined when nothing was invested", func() {
			_, ok := portfolio.TotalReturn(curve(100, 110, 120))
			Expect(ok).To(BeFalse())
		})
	})

	Describe("daily returns", func() {
		It("should define the first day as zero", func() {
			rets := portfolio.DailyReturns(curve(100, 110, 99))
			Expect(rets).To(HaveLen(3))
			Expect(rets[0]).To(Equal(0.0))
			Expect(rets[1]).To(BeNumerically("~", 0.10))
			Expect(rets[2]).To(BeNumerically("~", -0.10))
		})
	})

	Describe("Sharpe ratio", func() {
		It("should be undefined on a flat valuation", func() {
			_, ok := portfolio.SharpeRatio(curve(100, 100, 100, 100), 0.06, 252)
			Expect(ok).To(BeFalse())
		})
	})

	Describe("maximum drawdown", func() {
		Context("with one peak and trough", func() {
			It("should locate the decline", func() {
				dd, err := portfolio.MaxDrawdown(curve(100, 120, 90, 110, 115))
				Expect(err).To(BeNil())
				Expect(dd.Drawdown).To(BeNumerically("~", -0.25))
				Expect(dd.PeakDate).To(Equal(day(2022, 3, 2)))
				Expect(dd.TroughDate).To(Equal(day(2022, 3, 3)))
			})
		})

		Context("with tied troughs", func() {
			It("should report the earliest trough", func() {
				dd, err := portfolio.MaxDrawdown(curve(100, 80, 90, 80, 95))
				Expect(err).To(BeNil())
				Expect(dd.Drawdown).To(BeNumerically("~", -0.20))
				Expect(dd.TroughDate).To(Equal(day(2022, 3, 2)))
			})
		})

		Context("with a recovery to a new peak before a deeper fall", func() {
			It("should report the peak preceding the deepest trough", func() {
				dd, err := portfolio.MaxDrawdown(curve(100, 90, 130, 85, 120))
				Expect(err).To(BeNil())
				Expect(dd.Drawdown).To(BeNumerically("~", (85.0-130.0)/130.0))
				Expect(dd.PeakDate).To(Equal(day(2022, 3, 3)))
				Expect(dd.TroughDate).To(Equal(day(2022, 3, 4)))
			})
		})

		Context("with an empty series", func() {
			It("should error", func() {
				_, err := portfolio.MaxDrawdown(curve())
				Expect(err).To(MatchError(portfolio.ErrEmptyLedger))
			})
		})
	})

	Describe("when the ledger covers a single trading day", func() {
		var summary *portfolio.Summary

		BeforeEach(func() {
			series, err := nav.Normalize([]nav.Row{
				{Date: day(2022, 3, 1), Nav: 10},
			})
			Expect(err).To(BeNil())
			ledger, err := portfolio.SimulateLumpsum(series, "FUND", 1000, day(2022, 3, 1), time.Time{})
			Expect(err).To(BeNil())
			Expect(ledger.Rows).To(HaveLen(1))

			summary, err = portfolio.SummaryMetrics(ledger, portfolio.DefaultRiskFreeRate, portfolio.DefaultTradingDays)
			Expect(err).To(BeNil())
		})

		It("should omit volatility, Sharpe, and CAGR", func() {
			Expect(summary.VolatilityPct).To(BeNil())
			Expect(summary.Sharpe).To(BeNil())
			Expect(summary.CagrPct).To(BeNil())
		})

		It("should still report the point values", func() {
			Expect(summary.FinalValue).To(Equal(1000.0))
			Expect(summary.Invested).To(Equal(1000.0))
			Expect(summary.TotalReturnPct).ToNot(BeNil())
			Expect(*summary.TotalReturnPct).To(BeNumerically("~", 0.0))
			Expect(summary.MaxDrawdownPct).To(Equal(0.0))
		})

		It("should serialize to JSON", func() {
			_, err := json.Marshal(summary)
			Expect(err).To(BeNil())
		})
	})

	Describe("summary on a series without cashflow data", func() {
		It("should omit the money-weighted metrics", func() {
			summary, err := portfolio.SummaryMetrics(curve(100, 110, 120), 0.06, 252)
			Expect(err).To(BeNil())
			Expect(summary.TotalReturnPct).To(BeNil())
			Expect(summary.XirrPct).To(BeNil())
			Expect(summary.CagrPct).ToNot(BeNil())
		})
	})
})
