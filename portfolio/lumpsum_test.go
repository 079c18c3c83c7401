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

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nav-vault/nav-api/portfolio"
)

var _ = Describe("SimulateLumpsum", func() {
	Context("with a 1000 purchase on a 10-day rising series", func() {
		var ledger *portfolio.Ledger

		BeforeEach(func() {
			var err error
			ledger, err = portfolio.SimulateLumpsum(tenDaySeries(), "FUND", 1000, day(2022, 3, 1), time.Time{})
			Expect(err).To(BeNil())
		})

		It("should buy 100 units at the opening NAV", func() {
			Expect(ledger.Rows[0].UnitsBought).To(BeNumerically("~", 100.0))
			Expect(ledger.Rows[0].Cashflow).To(Equal(1000.0))
		})

		It("should cover every trading day through the series end", func() {
			Expect(ledger.Rows).To(HaveLen(10))
			Expect(ledger.Rows[9].Date).To(Equal(day(2022, 3, 10)))
		})

		It("should value the holding as units times NAV each day", func() {
			for ii, row := range ledger.Rows {
				Expect(row.Value).To(BeNumerically("~", 100.0*float64(10+ii)))
			}
		})

		It("should keep units constant after the purchase", func() {
			for _, row := range ledger.Rows {
				Expect(row.TotalUnits).To(BeNumerically("~", 100.0))
			}
		})

		It("should record cashflow only on the purchase day", func() {
			for _, row := range ledger.Rows[1:] {
				Expect(row.Cashflow).To(Equal(0.0))
			}
			Expect(ledger.Rows[0].CumInvested).To(Equal(1000.0))
			Expect(ledger.Rows[9].CumInvested).To(Equal(1000.0))
		})

		It("should list exactly one transaction", func() {
			txns := ledger.Transactions()
			Expect(txns).To(HaveLen(1))
			Expect(txns[0].AssetID).To(Equal("FUND"))
			Expect(txns[0].Cashflow).To(Equal(1000.0))
		})
	})

	Context("when the start date falls on a holiday", func() {
		It("should execute on the next trading day", func() {
			series := tenDaySeries()
			ledger, err := portfolio.SimulateLumpsum(series, "FUND", 1000, day(2022, 2, 25), time.Time{})
			Expect(err).To(BeNil())
			Expect(ledger.Rows[0].Date).To(Equal(day(2022, 3, 1)))
		})
	})

	Context("when the start date is after the last NAV", func() {
		It("should fail with no data in range", func() {
			_, err := portfolio.SimulateLumpsum(tenDaySeries(), "FUND", 1000, day(2022, 4, 1), time.Time{})
			Expect(err).To(MatchError(portfolio.ErrNoDataInRange))
		})
	})

	Context("with an explicit end date", func() {
		It("should truncate the ledger", func() {
			ledger, err := portfolio.SimulateLumpsum(tenDaySeries(), "FUND", 1000, day(2022, 3, 1), day(2022, 3, 5))
			Expect(err).To(BeNil())
			Expect(ledger.Rows).To(HaveLen(5))
		})
	})
})
