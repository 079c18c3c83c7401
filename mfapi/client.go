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

// Package mfapi fetches mutual fund NAV histories from the mfapi.in
// public API. It is the excluded I/O collaborator of the simulation
// core: it hands cleaned NAV rows to nav.Normalize and knows nothing
// about ledgers or metrics.
package mfapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/nav-vault/nav-api/common"
	"github.com/nav-vault/nav-api/nav"
)

const navDateFormat = "02-01-2006"

var (
	ErrFundNotFound      = errors.New("no fund matches query")
	ErrUnexpectedPayload = errors.New("mfapi returned an unexpected payload")
)

// Fund identifies one scheme in the mfapi universe
type Fund struct {
	SchemeCode int    `json:"schemeCode"`
	SchemeName string `json:"schemeName"`
}

// Client talks to the mfapi.in REST API with retry and an in-process
// payload cache. Safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	retries    int
	backoff    time.Duration
}

// New builds a Client from viper settings (mfapi.base_url,
// mfapi.timeout, mfapi.retries, mfapi.backoff)
func New() *Client {
	baseURL := viper.GetString("mfapi.base_url")
	if baseURL == "" {
		baseURL = "https://api.mfapi.in/mf"
	}
	timeout := viper.GetDuration("mfapi.timeout")
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	retries := viper.GetInt("mfapi.retries")
	if retries <= 0 {
		retries = 3
	}
	backoff := viper.GetDuration("mfapi.backoff")
	if backoff == 0 {
		backoff = time.Second
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		retries:    retries,
		backoff:    backoff,
	}
}

// Search lists the funds matching a free-text query
func (c *Client) Search(ctx context.Context, query string) ([]Fund, error) {
	body, err := c.get(ctx, fmt.Sprintf("%s/search?q=%s", c.baseURL, url.QueryEscape(query)))
	if err != nil {
		return nil, err
	}

	var funds []Fund
	if err := json.Unmarshal(body, &funds); err != nil {
		log.Error().Err(err).Str("Query", query).Msg("could not parse mfapi search response")
		return nil, ErrUnexpectedPayload
	}
	return funds, nil
}

// Resolve maps a free-text query to a scheme code, taking the first
// search hit
func (c *Client) Resolve(ctx context.Context, query string) (int, error) {
	funds, err := c.Search(ctx, query)
	if err != nil {
		return 0, err
	}
	if len(funds) == 0 {
		return 0, ErrFundNotFound
	}
	return funds[0].SchemeCode, nil
}

// NavHistory fetches the full NAV history of a scheme. Payloads are
// cached per scheme code; mfapi serves the complete history in one
// response so a fresh cache entry saves the whole round trip.
func (c *Client) NavHistory(ctx context.Context, schemeCode int) ([]nav.Row, error) {
	cacheKey := fmt.Sprintf("mfapi:nav:%d", schemeCode)
	body, err := common.CacheGet(cacheKey)
	if err != nil {
		body, err = c.get(ctx, fmt.Sprintf("%s/%d", c.baseURL, schemeCode))
		if err != nil {
			return nil, err
		}
		if err := common.CacheSet(cacheKey, body); err != nil {
			log.Warn().Err(err).Int("SchemeCode", schemeCode).Msg("could not cache NAV payload")
		}
	}

	var payload struct {
		Data []struct {
			Date string `json:"date"`
			Nav  string `json:"nav"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		log.Error().Err(err).Int("SchemeCode", schemeCode).Msg("could not parse mfapi NAV response")
		return nil, ErrUnexpectedPayload
	}
	if payload.Data == nil {
		return nil, ErrUnexpectedPayload
	}

	rows := make([]nav.Row, 0, len(payload.Data))
	for _, item := range payload.Data {
		date, err := time.Parse(navDateFormat, item.Date)
		if err != nil {
			log.Debug().Str("Date", item.Date).Int("SchemeCode", schemeCode).Msg("dropping row with unparseable date")
			continue
		}
		price, err := strconv.ParseFloat(item.Nav, 64)
		if err != nil {
			log.Debug().Str("Nav", item.Nav).Int("SchemeCode", schemeCode).Msg("dropping row with unparseable nav")
			continue
		}
		rows = append(rows, nav.Row{Date: date, Nav: price})
	}

	return rows, nil
}

// get performs a GET with exponential backoff between attempts
func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt < c.retries; attempt++ {
		if attempt > 0 {
			wait := c.backoff * time.Duration(1<<(attempt-1))
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		body, err := c.doGet(ctx, rawURL)
		if err == nil {
			return body, nil
		}
		lastErr = err
		log.Warn().Err(err).Str("URL", rawURL).Int("Attempt", attempt+1).Msg("mfapi request failed")
	}
	return nil, lastErr
}

func (c *Client) doGet(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("mfapi returned status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
