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

package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/nav-vault/nav-api/handler"
)

// SetupRoutes registers all API routes
func SetupRoutes(app *fiber.App) {
	app.Get("/ping", handler.Ping)

	v1 := app.Group("/v1")

	// Backtests
	v1.Post("/backtest", handler.Backtest)
	v1.Post("/portfolio/backtest", handler.PortfolioBacktest)

	// Fund universe
	fund := v1.Group("/fund")
	fund.Get("/search", handler.FundSearch)
}
