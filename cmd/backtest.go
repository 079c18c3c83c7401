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
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/nav-vault/nav-api/common"
	"github.com/nav-vault/nav-api/mfapi"
	"github.com/nav-vault/nav-api/nav"
	"github.com/nav-vault/nav-api/portfolio"
)

var (
	backtestStrategy      string
	backtestAmount        float64
	backtestSIPDay        int
	backtestInitialAmount float64
	backtestStart         string
	backtestEnd           string
	backtestRiskFree      float64
	backtestCSV           string
)

func init() {
	backtestCmd.Flags().StringVar(&backtestStrategy, "strategy", "SIP", "Strategy to simulate: SIP or LUMPSUM")
	backtestCmd.Flags().Float64Var(&backtestAmount, "amount", 10_000, "Lump-sum amount, or monthly contribution for SIP")
	backtestCmd.Flags().IntVar(&backtestSIPDay, "sip-day", 10, "Target day-of-month for SIP contributions")
	backtestCmd.Flags().Float64Var(&backtestInitialAmount, "initial-amount", 0, "Optional initial lump sum for SIP")
	backtestCmd.Flags().StringVar(&backtestStart, "start", "", "Start date (YYYY-MM-DD)")
	backtestCmd.Flags().StringVar(&backtestEnd, "end", "", "End date (YYYY-MM-DD); default is the last available NAV")
	backtestCmd.Flags().Float64Var(&backtestRiskFree, "risk-free-rate", portfolio.DefaultRiskFreeRate, "Annual risk-free rate for the Sharpe ratio")
	backtestCmd.Flags().StringVar(&backtestCSV, "csv", "", "Write the daily ledger to the named CSV file")

	rootCmd.AddCommand(backtestCmd)
}

var backtestCmd = &cobra.Command{
	Use:        "backtest [flags] SchemeCode",
	Short:      "Run a backtest of an investment strategy against a fund",
	Args:       cobra.ExactArgs(1),
	ArgAliases: []string{"SchemeCode"},
	Run: func(cmd *cobra.Command, args []string) {
		common.SetupLogging()
		common.SetupCache()

		schemeCode, err := strconv.Atoi(args[0])
		if err != nil {
			log.Fatal().Str("SchemeCode", args[0]).Msg("scheme code must be an integer")
		}

		start, err := time.Parse("2006-01-02", backtestStart)
		if err != nil {
			log.Fatal().Str("Start", backtestStart).Msg("start date must be formatted YYYY-MM-DD")
		}
		var end time.Time
		if backtestEnd != "" {
			end, err = time.Parse("2006-01-02", backtestEnd)
			if err != nil {
				log.Fatal().Str("End", backtestEnd).Msg("end date must be formatted YYYY-MM-DD")
			}
		}

		rows, err := mfapi.New().NavHistory(context.Background(), schemeCode)
		if err != nil {
			log.Fatal().Err(err).Msg("could not fetch NAV history")
		}
		series, err := nav.Normalize(rows)
		if err != nil {
			log.Fatal().Err(err).Msg("fund has no usable NAV history")
		}
		if end.IsZero() {
			end = series.Last().Date
		}

		var ledger *portfolio.Ledger
		switch backtestStrategy {
		case "LUMPSUM":
			ledger, err = portfolio.SimulateLumpsum(series, "", backtestAmount, start, end)
		case "SIP":
			ledger, err = portfolio.SimulateSIP(series, "", portfolio.SIPParams{
				MonthlyAmount: backtestAmount,
				SIPDay:        backtestSIPDay,
				InitialAmount: backtestInitialAmount,
			}, start, end)
		default:
			log.Fatal().Str("Strategy", backtestStrategy).Msg("strategy must be SIP or LUMPSUM")
		}
		if err != nil {
			log.Fatal().Err(err).Msg("simulation failed")
		}

		metrics, err := portfolio.SummaryMetrics(ledger, backtestRiskFree, portfolio.DefaultTradingDays)
		if err != nil {
			log.Fatal().Err(err).Msg("could not compute metrics")
		}

		printValuation(ledger)
		printMetrics(metrics)

		if backtestCSV != "" {
			if err := writeLedgerCSV(backtestCSV, ledger); err != nil {
				log.Fatal().Err(err).Str("File", backtestCSV).Msg("could not write CSV")
			}
			fmt.Printf("Wrote daily ledger to %s\n", backtestCSV)
		}
	},
}

func printValuation(ledger *portfolio.Ledger) {
	values := make([]float64, len(ledger.Rows))
	for ii, row := range ledger.Rows {
		values[ii] = row.Value
	}
	fmt.Println(asciigraph.Plot(values, asciigraph.Height(10), asciigraph.Caption("portfolio value")))
	fmt.Println()
}

func printMetrics(metrics *portfolio.Summary) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Metric", "Value"})

	table.Append([]string{"Final Value", fmt.Sprintf("%.2f", metrics.FinalValue)})
	table.Append([]string{"Invested", fmt.Sprintf("%.2f", metrics.Invested)})
	table.Append([]string{"Total Return %", fmtOptional(metrics.TotalReturnPct)})
	table.Append([]string{"CAGR %", fmtOptional(metrics.CagrPct)})
	table.Append([]string{"Max Drawdown %", fmt.Sprintf("%.2f", metrics.MaxDrawdownPct)})
	table.Append([]string{"Drawdown Peak", metrics.DrawdownPeakDate.Format("2006-01-02")})
	table.Append([]string{"Drawdown Trough", metrics.DrawdownTroughDate.Format("2006-01-02")})
	table.Append([]string{"Volatility %", fmtOptional(metrics.VolatilityPct)})
	table.Append([]string{"Sharpe", fmtOptional(metrics.Sharpe)})
	table.Append([]string{"XIRR %", fmtOptional(metrics.XirrPct)})

	table.Render()
}

func fmtOptional(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", *v)
}

func writeLedgerCSV(filename string, ledger *portfolio.Ledger) error {
	fh, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer fh.Close()

	w := csv.NewWriter(fh)
	defer w.Flush()

	if err := w.Write([]string{"date", "nav", "cashflow", "units_bought", "total_units", "value", "cum_invested"}); err != nil {
		return err
	}
	for _, row := range ledger.Rows {
		record := []string{
			row.Date.Format("2006-01-02"),
			strconv.FormatFloat(row.Nav, 'f', -1, 64),
			strconv.FormatFloat(row.Cashflow, 'f', -1, 64),
			strconv.FormatFloat(row.UnitsBought, 'f', -1, 64),
			strconv.FormatFloat(row.TotalUnits, 'f', -1, 64),
			strconv.FormatFloat(row.Value, 'f', -1, 64),
			strconv.FormatFloat(row.CumInvested, 'f', -1, 64),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	return nil
}
