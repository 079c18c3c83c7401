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

package nav_test

import (
	"math"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nav-vault/nav-api/nav"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

var _ = Describe("Series", func() {
	Describe("when normalizing raw rows", func() {
		Context("with unsorted input", func() {
			It("should sort rows ascending by date", func() {
				series, err := nav.Normalize([]nav.Row{
					{Date: day(2022, 3, 3), Nav: 12},
					{Date: day(2022, 3, 1), Nav: 10},
					{Date: day(2022, 3, 2), Nav: 11},
				})
				Expect(err).To(BeNil())
				Expect(series.Len()).To(Equal(3))
				Expect(series.At(0).Date).To(Equal(day(2022, 3, 1)))
				Expect(series.At(1).Date).To(Equal(day(2022, 3, 2)))
				Expect(series.At(2).Date).To(Equal(day(2022, 3, 3)))
			})
		})

		Context("with duplicate dates", func() {
			It("should keep the first row in input order", func() {
				series, err := nav.Normalize([]nav.Row{
					{Date: day(2022, 3, 1), Nav: 10},
					{Date: day(2022, 3, 1), Nav: 99},
					{Date: day(2022, 3, 2), Nav: 11},
				})
				Expect(err).To(BeNil())
				Expect(series.Len()).To(Equal(2))
				Expect(series.At(0).Nav).To(Equal(10.0))
			})
		})

		Context("with non-finite prices", func() {
			It("should drop NaN and infinite rows", func() {
				series, err := nav.Normalize([]nav.Row{
					{Date: day(2022, 3, 1), Nav: math.NaN()},
					{Date: day(2022, 3, 2), Nav: math.Inf(1)},
					{Date: day(2022, 3, 3), Nav: 11},
				})
				Expect(err).To(BeNil())
				Expect(series.Len()).To(Equal(1))
				Expect(series.At(0).Date).To(Equal(day(2022, 3, 3)))
			})

			It("should error when no rows survive", func() {
				_, err := nav.Normalize([]nav.Row{
					{Date: day(2022, 3, 1), Nav: math.NaN()},
				})
				Expect(err).To(MatchError(nav.ErrInvalidInput))
			})
		})

		Context("with an empty input", func() {
			It("should error", func() {
				_, err := nav.Normalize(nil)
				Expect(err).To(MatchError(nav.ErrInvalidInput))
			})
		})

		Context("with timestamps carrying a time of day", func() {
			It("should truncate to the calendar day", func() {
				series, err := nav.Normalize([]nav.Row{
					{Date: time.Date(2022, 3, 1, 16, 30, 0, 0, time.UTC), Nav: 10},
				})
				Expect(err).To(BeNil())
				Expect(series.At(0).Date).To(Equal(day(2022, 3, 1)))
			})
		})
	})

	Describe("when locating rows", func() {
		var series *nav.Series

		BeforeEach(func() {
			var err error
			series, err = nav.Normalize([]nav.Row{
				{Date: day(2022, 3, 1), Nav: 10},
				{Date: day(2022, 3, 3), Nav: 11},
				{Date: day(2022, 3, 7), Nav: 12},
			})
			Expect(err).To(BeNil())
		})

		It("should find an exact date", func() {
			row, ok := series.FirstOnOrAfter(day(2022, 3, 3))
			Expect(ok).To(BeTrue())
			Expect(row.Nav).To(Equal(11.0))
		})

		It("should roll forward past a market holiday", func() {
			row, ok := series.FirstOnOrAfter(day(2022, 3, 4))
			Expect(ok).To(BeTrue())
			Expect(row.Date).To(Equal(day(2022, 3, 7)))
		})

		It("should report no row after the series end", func() {
			_, ok := series.FirstOnOrAfter(day(2022, 3, 8))
			Expect(ok).To(BeFalse())
		})

		It("should window on inclusive bounds", func() {
			rows := series.Window(day(2022, 3, 2), day(2022, 3, 7))
			Expect(rows).To(HaveLen(2))
			Expect(rows[0].Date).To(Equal(day(2022, 3, 3)))
			Expect(rows[1].Date).To(Equal(day(2022, 3, 7)))
		})

		It("should window to nil when the range is empty", func() {
			Expect(series.Window(day(2022, 3, 4), day(2022, 3, 5))).To(BeNil())
		})
	})
})
