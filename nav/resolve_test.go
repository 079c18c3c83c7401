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
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nav-vault/nav-api/nav"
)

var _ = Describe("ResolveTradingDay", func() {
	var series *nav.Series

	BeforeEach(func() {
		// March 2022 trades on the 2nd, 4th and 7th only
		var err error
		series, err = nav.Normalize([]nav.Row{
			{Date: day(2022, 2, 28), Nav: 9},
			{Date: day(2022, 3, 2), Nav: 10},
			{Date: day(2022, 3, 4), Nav: 11},
			{Date: day(2022, 3, 7), Nav: 12},
			{Date: day(2022, 5, 2), Nav: 13},
		})
		Expect(err).To(BeNil())
	})

	Context("when the target day trades", func() {
		It("should return it unchanged", func() {
			resolved, ok := nav.ResolveTradingDay(series, 2022, time.March, 4)
			Expect(ok).To(BeTrue())
			Expect(resolved).To(Equal(day(2022, 3, 4)))
		})
	})

	Context("when the target day is closed", func() {
		It("should roll forward to the next trading day in the month", func() {
			resolved, ok := nav.ResolveTradingDay(series, 2022, time.March, 5)
			Expect(ok).To(BeTrue())
			Expect(resolved).To(Equal(day(2022, 3, 7)))
		})

		It("should roll backward when no later day trades this month", func() {
			resolved, ok := nav.ResolveTradingDay(series, 2022, time.March, 20)
			Expect(ok).To(BeTrue())
			Expect(resolved).To(Equal(day(2022, 3, 7)))
		})
	})

	Context("when the month has no trading days at all", func() {
		It("should report failure", func() {
			_, ok := nav.ResolveTradingDay(series, 2022, time.April, 10)
			Expect(ok).To(BeFalse())
		})
	})

	Context("when the requested day exceeds the month length", func() {
		It("should clamp to the last calendar day", func() {
			// Feb 2022 has 28 days; day 31 clamps to the 28th which trades
			resolved, ok := nav.ResolveTradingDay(series, 2022, time.February, 31)
			Expect(ok).To(BeTrue())
			Expect(resolved).To(Equal(day(2022, 2, 28)))
		})
	})
})
