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

package common

import (
	"bytes"
	"errors"
	"io"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/pierrec/lz4/v4"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// in-process cache of upstream NAV payloads; entries are lz4 compressed
// because full fund histories run to hundreds of kilobytes
var cache *lru.Cache

var ErrCacheMiss = errors.New("cache miss")

type cacheEntry struct {
	payload []byte
	expires time.Time
}

// SetupCache initializes the LRU cache. Size comes from cache.local_size
// (number of entries); entry lifetime from cache.ttl in seconds.
func SetupCache() {
	size := viper.GetInt("cache.local_size")
	if size <= 0 {
		size = 64
	}

	var err error
	cache, err = lru.New(size)
	if err != nil {
		log.Fatal().Err(err).Msg("could not create LRU cache")
	}
}

// CacheSet compresses and stores a payload under key
func CacheSet(key string, payload []byte) error {
	if cache == nil {
		return nil
	}
	compressed, err := compress(payload)
	if err != nil {
		return err
	}
	entry := cacheEntry{payload: compressed}
	if ttl := viper.GetInt("cache.ttl"); ttl > 0 {
		entry.expires = time.Now().Add(time.Duration(ttl) * time.Second)
	}
	cache.Add(key, entry)
	return nil
}

// CacheGet retrieves and decompresses the bytes stored under key;
// returns ErrCacheMiss when the key is absent or expired
func CacheGet(key string) ([]byte, error) {
	if cache == nil {
		return nil, ErrCacheMiss
	}
	v, ok := cache.Get(key)
	if !ok {
		return nil, ErrCacheMiss
	}
	entry := v.(cacheEntry)
	if !entry.expires.IsZero() && time.Now().After(entry.expires) {
		cache.Remove(key)
		return nil, ErrCacheMiss
	}
	return decompress(entry.payload)
}

func compress(in []byte) ([]byte, error) {
	w := &bytes.Buffer{}
	zw := lz4.NewWriter(w)
	if _, err := io.Copy(zw, bytes.NewReader(in)); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

func decompress(in []byte) ([]byte, error) {
	w := &bytes.Buffer{}
	if _, err := io.Copy(w, lz4.NewReader(bytes.NewReader(in))); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}
