// Copyright 2023 Tomas Machalek <tomas.machalek@gmail.com>
// Copyright 2023 Institute of the Czech National Corpus,
//                Faculty of Arts, Charles University
//   This file is part of SEMCTX.
//
//  SEMCTX is free software: you can redistribute it and/or modify
//  it under the terms of the GNU General Public License as published by
//  the Free Software Foundation, either version 3 of the License, or
//  (at your option) any later version.
//
//  SEMCTX is distributed in the hope that it will be useful,
//  but WITHOUT ANY WARRANTY; without even the implied warranty of
//  MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
//  GNU General Public License for more details.
//
//  You should have received a copy of the GNU General Public License
//  along with SEMCTX.  If not, see <https://www.gnu.org/licenses/>.

package rdb

import (
	"crypto/sha1"
	"encoding/hex"
	"os"
	"path/filepath"

	"github.com/bytedance/sonic"
	"github.com/czcorpus/cnc-gokit/fs"
	"github.com/rs/zerolog/log"
)

// queryFn is a function producing a worker result (typically
// Adapter.PublishQuery).
type queryFn func(Query) (<-chan *WorkerResult, error)

func cacheKey(query Query) string {
	hashKey := sha1.Sum(append([]byte(query.Func), query.Args...))
	return query.Func + hex.EncodeToString(hashKey[:])
}

// CacheResult returns a cached result of the query if available.
// Otherwise it calls `fn` and stores a successful result. Interpretation
// of an encoding is deterministic so the results never get stale
// unless feature tables change.
func CacheResult(cachePath string, fn queryFn, query Query) (<-chan *WorkerResult, error) {
	if cachePath == "" {
		return fn(query)
	}
	path := filepath.Join(cachePath, cacheKey(query))
	isf, _ := fs.IsFile(path)
	if fs.PathExists(path) && isf {
		content, err := os.ReadFile(path)
		if err == nil {
			result := new(WorkerResult)
			if err := sonic.Unmarshal(content, result); err == nil {
				ans := make(chan *WorkerResult, 1)
				ans <- result
				close(ans)
				return ans, nil
			}
			log.Error().Err(err).Str("path", path).Msg("invalid cache file, ignoring")

		} else {
			log.Error().Err(err).Str("path", path).Msg("failed to read cache file")
		}
	}

	wr, err := fn(query)
	if err != nil {
		return nil, err
	}
	ans := make(chan *WorkerResult, 1)
	go func() {
		defer close(ans)
		rawResult, ok := <-wr
		if !ok {
			return
		}
		if rawResult.ResultType != ResultTypeError && !rawResult.HasUserError {
			if err := storeCacheFile(path, rawResult); err != nil {
				log.Error().Err(err).Str("path", path).Msg("failed to write cache file")
			}
		}
		ans <- rawResult
	}()
	return ans, nil
}

func storeCacheFile(path string, result *WorkerResult) error {
	data, err := sonic.Marshal(result)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (a *Adapter) CachedPublishQuery(query Query) (<-chan *WorkerResult, error) {
	return CacheResult(a.conf.CachePath, a.PublishQuery, query)
}
