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
	"math"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nav-vault/nav-api/nav"
	"github.com/nav-vault/nav-api/portfolio"
)

// growthLedger simulates a single purchase held for the given number of
// days while the NAV compounds at annual rate r
func growthLedger(amount float64, r float64, days int) *portfolio.Ledger {
	rows := make([]nav.Row, days+1)
	start := day(2020, 1, 1)
	for ii := 0; ii <= days; ii++ {
		years := float64(ii) / 365.0
		rows[ii] = nav.Row{
			Date: start.AddDate(0, 0, ii),
			Nav:  10.0 * math.Pow(1.0+r, years),
		}
	}
	series, err := nav.Normalize(rows)
	Expect(err).To(BeNil())
	ledger, err := portfolio.SimulateLumpsum(series, "FUND", amount, start, time.Time{})
	Expect(err).To(BeNil())
	return ledger
}

var _ = Describe("XIRR", func() {
	Context("with a single purchase compounding at a known rate", func() {
		It("should recover 8 percent annual growth", func() {
			rate, err := portfolio.XIRR(growthLedger(1000, 0.08, 730))
			Expect(err).To(BeNil())
			Expect(rate).To(BeNumerically("~", 0.08, 1e-6))
		})

		It("should recover a negative rate", func() {
			rate, err := portfolio.XIRR(growthLedger(1000, -0.10, 365))
			Expect(err).To(BeNil())
			Expect(rate).To(BeNumerically("~", -0.10, 1e-6))
		})
	})

	Context("with monthly contributions at a flat NAV", func() {
		It("should be approximately zero", func() {
			rows := []nav.Row{}
			for m := time.January; m <= time.December; m++ {
				for d := 1; d <= 28; d++ {
					rows = append(rows, nav.Row{Date: day(2021, m, d), Nav: 10})
				}
			}
			series, err := nav.Normalize(rows)
			Expect(err).To(BeNil())
			ledger, err := portfolio.SimulateSIP(series, "FUND", portfolio.SIPParams{
				MonthlyAmount: 100,
				SIPDay:        5,
			}, day(2021, 1, 1), day(2021, 12, 28))
			Expect(err).To(BeNil())

			rate, err := portfolio.XIRR(ledger)
			Expect(err).To(BeNil())
			Expect(rate).To(BeNumerically("~", 0.0, 1e-6))
		})
	})

	Context("on a series without cashflow data", func() {
		It("should fail with a missing-cashflow error", func() {
			_, err := portfolio.XIRR(curve(100, 110, 120))
			Expect(err).To(MatchError(portfolio.ErrMissingCashflow))
		})
	})

	Describe("cashflow schedule", func() {
		It("should negate investments and close with the final valuation", func() {
			ledger, err := portfolio.SimulateLumpsum(tenDaySeries(), "FUND", 1000, day(2022, 3, 1), time.Time{})
			Expect(err).To(BeNil())

			flows, err := portfolio.CashflowSchedule(ledger)
			Expect(err).To(BeNil())
			Expect(flows).To(HaveLen(2))
			Expect(flows[0].Amount).To(Equal(-1000.0))
			Expect(flows[1].Amount).To(BeNumerically("~", 1900.0))
			Expect(flows[1].Date).To(Equal(day(2022, 3, 10)))
		})
	})
})
