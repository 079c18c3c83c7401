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

package handler

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/nav-vault/nav-api/mfapi"
	"github.com/nav-vault/nav-api/nav"
	"github.com/nav-vault/nav-api/observability/opentelemetry"
	"github.com/nav-vault/nav-api/portfolio"
)

// PortfolioAsset describes one leg of a fixed-split multi-asset plan
type PortfolioAsset struct {
	ID            string  `json:"id"`
	SchemeCode    int     `json:"scheme_code"`
	MonthlyAmount float64 `json:"monthly_amount"`
	SIPDay        int     `json:"sip_day"`
	InitialAmount float64 `json:"initial_amount"`
}

// PortfolioBacktestRequest is the body of POST /v1/portfolio/backtest
type PortfolioBacktestRequest struct {
	Assets       []PortfolioAsset `json:"assets"`
	StartDate    string           `json:"start_date"`
	EndDate      string           `json:"end_date"`
	RiskFreeRate *float64         `json:"risk_free_rate"`
	RollingYears []float64        `json:"rolling_years"`
}

// PortfolioBacktestResponse carries the merged portfolio ledger, its
// metrics, and per-asset summaries
type PortfolioBacktestResponse struct {
	RunID          string                               `json:"runId"`
	StartDate      string                               `json:"startDate"`
	EndDate        string                               `json:"endDate"`
	Metrics        *portfolio.Summary                   `json:"metrics"`
	Rolling        map[string]*portfolio.RollingSummary `json:"rolling,omitempty"`
	AssetMetrics   map[string]*portfolio.Summary        `json:"assetMetrics"`
	Transactions   []portfolio.Transaction              `json:"transactions"`
	PortfolioDaily []portfolio.PortfolioRow             `json:"portfolioDaily"`
}

// PortfolioBacktest simulates several SIP plans in one portfolio: NAV
// histories are fetched in parallel, each asset simulated independently,
// and the per-asset ledgers merged date-aligned into one portfolio
// ledger.
func PortfolioBacktest(c *fiber.Ctx) error {
	ctx, span := otel.Tracer(opentelemetry.Name).Start(c.Context(), "PortfolioBacktest")
	defer span.End()

	var req PortfolioBacktestRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		log.Warn().Err(err).Msg("could not parse portfolio backtest request body")
		return fiber.NewError(fiber.StatusBadRequest, "malformed request body")
	}

	span.SetAttributes(
		attribute.KeyValue{
			Key:   "numAssets",
			Value: attribute.IntValue(len(req.Assets)),
		},
	)

	if len(req.Assets) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "at least one asset is required")
	}
	start, end, err := parseDateRange(req.StartDate, req.EndDate)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	fetchList := make([]mfapi.Asset, 0, len(req.Assets))
	byID := make(map[string]PortfolioAsset, len(req.Assets))
	for _, asset := range req.Assets {
		if asset.ID == "" {
			return fiber.NewError(fiber.StatusBadRequest, "every asset needs an id")
		}
		if _, dup := byID[asset.ID]; dup {
			return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("duplicate asset id %q", asset.ID))
		}
		byID[asset.ID] = asset
		fetchList = append(fetchList, mfapi.Asset{ID: asset.ID, SchemeCode: asset.SchemeCode})
	}

	histories, err := apiClient().FetchAll(ctx, fetchList)
	if err != nil {
		return upstreamError(err)
	}

	ledgers := make(map[string]*portfolio.Ledger, len(req.Assets))
	for assetID, rows := range histories {
		series, err := nav.Normalize(rows)
		if err != nil {
			return fiber.NewError(fiber.StatusBadGateway, fmt.Sprintf("asset %q has no usable NAV history", assetID))
		}
		asset := byID[assetID]
		ledger, err := portfolio.SimulateSIP(series, assetID, portfolio.SIPParams{
			MonthlyAmount: asset.MonthlyAmount,
			SIPDay:        asset.SIPDay,
			InitialAmount: asset.InitialAmount,
		}, start, end)
		if err != nil {
			return coreError(fmt.Errorf("asset %q: %w", assetID, err))
		}
		ledgers[assetID] = ledger
	}

	merged := portfolio.MergeAssets(ledgers)
	rf := riskFreeRate(req.RiskFreeRate)

	metrics, err := portfolio.SummaryMetrics(merged, rf, portfolio.DefaultTradingDays)
	if err != nil {
		return coreError(err)
	}

	assetMetrics := make(map[string]*portfolio.Summary, len(ledgers))
	for assetID, ledger := range ledgers {
		summary, err := portfolio.SummaryMetrics(ledger, rf, portfolio.DefaultTradingDays)
		if err != nil {
			return coreError(err)
		}
		assetMetrics[assetID] = summary
	}

	var rolling map[string]*portfolio.RollingSummary
	if len(req.RollingYears) > 0 {
		rolling = make(map[string]*portfolio.RollingSummary, len(req.RollingYears))
		for _, years := range req.RollingYears {
			key := fmt.Sprintf("%gyr", years)
			if summary, ok := portfolio.SummaryOfRolling(merged, years, portfolio.DefaultTradingDays); ok {
				summary := summary
				rolling[key] = &summary
			} else {
				rolling[key] = nil
			}
		}
	}

	return c.JSON(PortfolioBacktestResponse{
		RunID:          uuid.New().String(),
		StartDate:      start.Format("2006-01-02"),
		EndDate:        end.Format("2006-01-02"),
		Metrics:        metrics,
		Rolling:        rolling,
		AssetMetrics:   assetMetrics,
		Transactions:   portfolio.CombinedTransactions(ledgers),
		PortfolioDaily: merged.Rows,
	})
}
