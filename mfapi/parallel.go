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

package mfapi

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/nav-vault/nav-api/nav"
)

// Asset names one scheme within a multi-asset fetch
type Asset struct {
	ID         string `json:"id"`
	SchemeCode int    `json:"scheme_code"`
}

// FetchAll retrieves NAV histories for several assets in parallel,
// bounded by mfapi.max_parallel workers (default 8). The first fetch
// error cancels the remaining requests. The result map is keyed by
// asset ID; the simulation core makes no ordering assumption between
// assets, which is what allows this fan-out.
func (c *Client) FetchAll(ctx context.Context, assets []Asset) (map[string][]nav.Row, error) {
	maxParallel := viper.GetInt("mfapi.max_parallel")
	if maxParallel <= 0 {
		maxParallel = 8
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(maxParallel)

	var mu sync.Mutex
	out := make(map[string][]nav.Row, len(assets))

	for _, asset := range assets {
		asset := asset
		group.Go(func() error {
			rows, err := c.NavHistory(groupCtx, asset.SchemeCode)
			if err != nil {
				log.Error().Err(err).Str("AssetID", asset.ID).Int("SchemeCode", asset.SchemeCode).Msg("could not fetch NAV history")
				return err
			}
			mu.Lock()
			out[asset.ID] = rows
			mu.Unlock()
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
