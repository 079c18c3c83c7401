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

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nav-vault/nav-api/common"
)

func init() {
	// mfapi upstream
	viper.BindEnv("mfapi.base_url", "MFAPI_BASE_URL")
	rootCmd.PersistentFlags().String("mfapi-base-url", "https://api.mfapi.in/mf", "Base URL of the mfapi service")
	viper.BindPFlag("mfapi.base_url", rootCmd.PersistentFlags().Lookup("mfapi-base-url"))

	viper.BindEnv("mfapi.timeout", "MFAPI_TIMEOUT")
	rootCmd.PersistentFlags().Duration("mfapi-timeout", 0, "Per-request timeout for mfapi calls")
	viper.BindPFlag("mfapi.timeout", rootCmd.PersistentFlags().Lookup("mfapi-timeout"))

	// Cache
	viper.BindEnv("cache.local_size", "NAV_CACHE_SIZE")
	rootCmd.PersistentFlags().Int("cache-size", 64, "Number of NAV histories to keep in the local cache")
	viper.BindPFlag("cache.local_size", rootCmd.PersistentFlags().Lookup("cache-size"))

	viper.BindEnv("cache.ttl", "NAV_CACHE_TTL")
	rootCmd.PersistentFlags().Int("cache-ttl", 3600, "Cache entry lifetime in seconds")
	viper.BindPFlag("cache.ttl", rootCmd.PersistentFlags().Lookup("cache-ttl"))

	// Logging configuration
	viper.BindEnv("log.level", "NAV_LOG_LEVEL")
	rootCmd.PersistentFlags().String("log-level", "warning", "Logging level")
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))

	viper.BindEnv("log.report_caller", "NAV_LOG_REPORT_CALLER")
	rootCmd.PersistentFlags().Bool("log-report-caller", false, "Log function name that called log statement")
	viper.BindPFlag("log.report_caller", rootCmd.PersistentFlags().Lookup("log-report-caller"))

	viper.BindEnv("log.output", "NAV_LOG_OUTPUT")
	rootCmd.PersistentFlags().String("log-output", "stdout", "Write logs to specified output one of: file path, `stdout`, or `stderr`")
	viper.BindPFlag("log.output", rootCmd.PersistentFlags().Lookup("log-output"))

	rootCmd.PersistentFlags().Bool("log-pretty", false, "Format log output with the zerolog console writer")
	viper.BindPFlag("log.pretty", rootCmd.PersistentFlags().Lookup("log-pretty"))
}

var rootCmd = &cobra.Command{
	Use:     "nav-api",
	Version: common.CurrentVersion.String(),
	Short:   "nav-api backtests mutual fund investment strategies",
	Long: `A backtesting service for mutual fund investment strategies. Replays
lump-sum and SIP contribution plans against historical NAV series and
derives performance metrics and rolling return distributions.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
