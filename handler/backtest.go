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
	"errors"
	"time"

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

const (
	StrategySIP     = "SIP"
	StrategyLumpsum = "LUMPSUM"
)

// LumpsumParams configure a one-time investment
type LumpsumParams struct {
	Amount float64 `json:"amount"`
}

// BacktestRequest is the body of POST /v1/backtest. Either SchemeCode
// or SchemeQuery must be supplied.
type BacktestRequest struct {
	SchemeCode   int                  `json:"scheme_code"`
	SchemeQuery  string               `json:"scheme_query"`
	StartDate    string               `json:"start_date"`
	EndDate      string               `json:"end_date"`
	Strategy     string               `json:"strategy"`
	SIP          *portfolio.SIPParams `json:"sip"`
	Lumpsum      *LumpsumParams       `json:"lumpsum"`
	RiskFreeRate *float64             `json:"risk_free_rate"`
}

// BacktestResponse carries the simulated ledger and its metrics
type BacktestResponse struct {
	RunID        string                  `json:"runId"`
	SchemeCode   int                     `json:"schemeCode"`
	StartDate    string                  `json:"startDate"`
	EndDate      string                  `json:"endDate"`
	Strategy     string                  `json:"strategy"`
	Metrics      *portfolio.Summary      `json:"metrics"`
	Transactions []portfolio.Transaction `json:"transactions"`
	Timeseries   []portfolio.LedgerRow   `json:"timeseries"`
}

// Backtest runs a single-asset simulation and returns the ledger plus
// summary metrics
func Backtest(c *fiber.Ctx) error {
	ctx, span := otel.Tracer(opentelemetry.Name).Start(c.Context(), "Backtest")
	defer span.End()

	var req BacktestRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		log.Warn().Err(err).Msg("could not parse backtest request body")
		return fiber.NewError(fiber.StatusBadRequest, "malformed request body")
	}

	span.SetAttributes(
		attribute.KeyValue{
			Key:   "strategy",
			Value: attribute.StringValue(req.Strategy),
		},
	)

	start, end, err := parseDateRange(req.StartDate, req.EndDate)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	schemeCode := req.SchemeCode
	if schemeCode == 0 {
		if req.SchemeQuery == "" {
			return fiber.NewError(fiber.StatusBadRequest, "provide scheme_code or scheme_query")
		}
		schemeCode, err = apiClient().Resolve(ctx, req.SchemeQuery)
		if err != nil {
			return upstreamError(err)
		}
	}

	rows, err := apiClient().NavHistory(ctx, schemeCode)
	if err != nil {
		return upstreamError(err)
	}
	series, err := nav.Normalize(rows)
	if err != nil {
		return fiber.NewError(fiber.StatusBadGateway, "fund has no usable NAV history")
	}

	var ledger *portfolio.Ledger
	switch req.Strategy {
	case StrategyLumpsum:
		if req.Lumpsum == nil || req.Lumpsum.Amount <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "lumpsum params required for LUMPSUM strategy")
		}
		ledger, err = portfolio.SimulateLumpsum(series, "", req.Lumpsum.Amount, start, end)
	case StrategySIP:
		if req.SIP == nil || (req.SIP.MonthlyAmount <= 0 && req.SIP.InitialAmount <= 0) {
			return fiber.NewError(fiber.StatusBadRequest, "sip params required for SIP strategy")
		}
		ledger, err = portfolio.SimulateSIP(series, "", *req.SIP, start, end)
	default:
		return fiber.NewError(fiber.StatusBadRequest, "strategy must be SIP or LUMPSUM")
	}
	if err != nil {
		return coreError(err)
	}

	metrics, err := portfolio.SummaryMetrics(ledger, riskFreeRate(req.RiskFreeRate), portfolio.DefaultTradingDays)
	if err != nil {
		return coreError(err)
	}

	return c.JSON(BacktestResponse{
		RunID:        uuid.New().String(),
		SchemeCode:   schemeCode,
		StartDate:    start.Format("2006-01-02"),
		EndDate:      end.Format("2006-01-02"),
		Strategy:     req.Strategy,
		Metrics:      metrics,
		Transactions: ledger.Transactions(),
		Timeseries:   ledger.Rows,
	})
}

func parseDateRange(startStr, endStr string) (time.Time, time.Time, error) {
	if startStr == "" || endStr == "" {
		return time.Time{}, time.Time{}, errors.New("start_date and end_date are required")
	}
	start, err := time.Parse("2006-01-02", startStr)
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("start_date must be formatted YYYY-MM-DD")
	}
	end, err := time.Parse("2006-01-02", endStr)
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("end_date must be formatted YYYY-MM-DD")
	}
	if start.After(end) {
		return time.Time{}, time.Time{}, errors.New("start_date must be <= end_date")
	}
	return start, end, nil
}

func riskFreeRate(override *float64) float64 {
	if override != nil {
		return *override
	}
	return portfolio.DefaultRiskFreeRate
}

// coreError maps simulation-core failures to client errors
func coreError(err error) error {
	switch {
	case errors.Is(err, portfolio.ErrNoDataInRange),
		errors.Is(err, portfolio.ErrInvalidNav),
		errors.Is(err, portfolio.ErrEmptyLedger),
		errors.Is(err, nav.ErrInvalidInput):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	default:
		log.Error().Stack().Err(err).Msg("backtest failed")
		return fiber.ErrInternalServerError
	}
}

// upstreamError maps mfapi failures to gateway errors
func upstreamError(err error) error {
	if errors.Is(err, mfapi.ErrFundNotFound) {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}
	log.Error().Err(err).Msg("mfapi request failed")
	return fiber.NewError(fiber.StatusBadGateway, "could not fetch data from mfapi")
}
