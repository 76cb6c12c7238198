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
	"time"

	"github.com/rs/zerolog/log"
)

const (
	dfltQueryAnswerTimeoutSecs = 30
	dfltPort                   = 6379
)

// Conf configures the Redis connection used to pass
// interpretation jobs between the API server and workers.
type Conf struct {
	Host                   string `json:"host" env:"SEMCTX_REDIS_HOST"`
	Port                   int    `json:"port" env:"SEMCTX_REDIS_PORT"`
	DB                     int    `json:"db" env:"SEMCTX_REDIS_DB"`
	Password               string `json:"password" env:"SEMCTX_REDIS_PASSWORD"`
	ChannelQuery           string `json:"channelQuery"`
	ChannelResultPrefix    string `json:"channelResultPrefix"`
	QueryAnswerTimeoutSecs int    `json:"queryAnswerTimeoutSecs"`

	// CachePath is a directory where interpretation results
	// are cached. Empty value disables caching.
	CachePath string `json:"cachePath" env:"SEMCTX_REDIS_CACHE_PATH"`
}

func (conf *Conf) QueryAnswerTimeout() time.Duration {
	return time.Duration(conf.QueryAnswerTimeoutSecs) * time.Second
}

func (conf *Conf) ValidateAndDefaults() {
	if conf.Host == "" {
		conf.Host = "localhost"
		log.Warn().Str("host", conf.Host).Msg("redis host not specified, using default")
	}
	if conf.Port == 0 {
		conf.Port = dfltPort
		log.Warn().Int("port", conf.Port).Msg("redis port not specified, using default")
	}
	if conf.QueryAnswerTimeoutSecs == 0 {
		conf.QueryAnswerTimeoutSecs = dfltQueryAnswerTimeoutSecs
		log.Warn().
			Int("value", conf.QueryAnswerTimeoutSecs).
			Msg("redis queryAnswerTimeoutSecs not specified, using default")
	}
}
