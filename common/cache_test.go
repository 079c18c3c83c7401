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

package common_test

import (
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/viper"

	"github.com/nav-vault/nav-api/common"
)

var _ = Describe("Cache", func() {
	BeforeEach(func() {
		viper.Set("cache.local_size", 8)
		viper.Set("cache.ttl", 0)
		common.SetupCache()
	})

	It("should round-trip a stored payload", func() {
		payload := bytes.Repeat([]byte("03-03-2022,12.3456\n"), 500)
		Expect(common.CacheSet("nav:roundtrip", payload)).To(BeNil())

		got, err := common.CacheGet("nav:roundtrip")
		Expect(err).To(BeNil())
		Expect(got).To(Equal(payload))
	})

	It("should miss on an unknown key", func() {
		_, err := common.CacheGet("nav:unknown")
		Expect(err).To(MatchError(common.ErrCacheMiss))
	})

	It("should evict the oldest entry beyond capacity", func() {
		for _, key := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i"} {
			Expect(common.CacheSet(key, []byte(key))).To(BeNil())
		}
		_, err := common.CacheGet("a")
		Expect(err).To(MatchError(common.ErrCacheMiss))

		got, err := common.CacheGet("i")
		Expect(err).To(BeNil())
		Expect(got).To(Equal([]byte("i")))
	})
})
