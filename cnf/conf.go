// Copyright 2019 Tomas Machalek <tomas.machalek@gmail.com>
// Copyright 2019 Institute of the Czech National Corpus,
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

package cnf

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"semctx/argctx"
	"semctx/monitoring"
	"semctx/rdb"

	"github.com/czcorpus/cnc-gokit/fs"
	"github.com/czcorpus/cnc-gokit/logging"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/rs/zerolog/log"
)

const (
	dfltServerWriteTimeoutSecs = 30
	dfltServerReadTimeoutSecs  = 10
	dfltListenPort             = 8080
	dfltTimeZone               = "Europe/Prague"
)

// IndexerConf configures databases of the batch indexing run.
type IndexerConf struct {

	// OntologyDB is an SQLite database with the Concepts table.
	// Recorded examples are stored there too.
	OntologyDB string `json:"ontologyDb" env:"SEMCTX_ONTOLOGY_DB"`

	// SourcesDB is an SQLite database with encoded sentences.
	SourcesDB string `json:"sourcesDb" env:"SEMCTX_SOURCES_DB"`

	// ComplexSourcesDB is an optional variant of SourcesDB with complex
	// concepts inserted. It enables detection of explications.
	ComplexSourcesDB string `json:"complexSourcesDb" env:"SEMCTX_COMPLEX_SOURCES_DB"`

	NumWorkers int `json:"numWorkers" env:"SEMCTX_INDEXER_NUM_WORKERS"`

	// PushgatewayURL is an optional address of a Prometheus Pushgateway
	// where metrics of finished runs are sent.
	PushgatewayURL string `json:"pushgatewayUrl" env:"SEMCTX_PUSHGATEWAY_URL"`
}

// Conf is a global configuration of the app
type Conf struct {
	ListenAddress          string                `json:"listenAddress" env:"SEMCTX_LISTEN_ADDRESS"`
	PublicURL              string                `json:"publicUrl" env:"SEMCTX_PUBLIC_URL"`
	ListenPort             int                   `json:"listenPort" env:"SEMCTX_LISTEN_PORT"`
	ServerReadTimeoutSecs  int                   `json:"serverReadTimeoutSecs"`
	ServerWriteTimeoutSecs int                   `json:"serverWriteTimeoutSecs"`
	CorsAllowedOrigins     []string              `json:"corsAllowedOrigins"`
	AuthHeaderName         string                `json:"authHeaderName"`
	AuthTokens             []string              `json:"authTokens" env:"SEMCTX_AUTH_TOKENS"`
	Redis                  rdb.Conf              `json:"redis"`
	Logging                logging.LoggingConf   `json:"logging"`
	TimeZone               string                `json:"timeZone" env:"SEMCTX_TIME_ZONE"`
	FeaturesPath           string                `json:"featuresPath" env:"SEMCTX_FEATURES_PATH"`
	HeadWordPolicy         argctx.HeadWordPolicy `json:"headWordPolicy" env:"SEMCTX_HEAD_WORD_POLICY"`
	Indexer                IndexerConf           `json:"indexer"`
	Monitoring             *monitoring.Conf      `json:"monitoring"`

	srcPath string
}

func (conf *Conf) IsDebugMode() bool {
	return conf.Logging.Level == "debug"
}

func (conf *Conf) TimezoneLocation() *time.Location {
	// we can ignore the error here as we always call ValidateAndDefaults()
	// first (which also tries to load the location and report possible
	// error)
	loc, _ := time.LoadLocation(conf.TimeZone)
	return loc
}

// GetSourcePath returns an absolute path of a file
// the config was loaded from.
func (conf *Conf) GetSourcePath() string {
	if filepath.IsAbs(conf.srcPath) {
		return conf.srcPath
	}
	var cwd string
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "[failed to get working dir]"
	}
	return filepath.Join(cwd, conf.srcPath)
}

// Load reads a JSON configuration file. Values can be overridden
// by environment variables (see the `env` tags).
func Load(path string) (*Conf, error) {
	if path == "" {
		return nil, fmt.Errorf("cannot load config - path not specified")
	}
	var conf Conf
	if err := cleanenv.ReadConfig(path, &conf); err != nil {
		return nil, fmt.Errorf("cannot load config %s: %w", path, err)
	}
	conf.srcPath = path
	return &conf, nil
}

func LoadConfig(path string) *Conf {
	conf, err := Load(path)
	if err != nil {
		log.Fatal().Err(err).Msg("Cannot load config")
	}
	return conf
}

// ValidateAndDefaults checks the configuration and fills in
// default values for missing optional items.
func ValidateAndDefaults(conf *Conf) error {
	if conf.ListenPort == 0 {
		conf.ListenPort = dfltListenPort
		log.Warn().Msgf("listenPort not specified, using default: %d", dfltListenPort)
	}
	if conf.ServerWriteTimeoutSecs == 0 {
		conf.ServerWriteTimeoutSecs = dfltServerWriteTimeoutSecs
		log.Warn().Msgf(
			"serverWriteTimeoutSecs not specified, using default: %d",
			dfltServerWriteTimeoutSecs,
		)
	}
	if conf.ServerReadTimeoutSecs == 0 {
		conf.ServerReadTimeoutSecs = dfltServerReadTimeoutSecs
		log.Warn().Msgf(
			"serverReadTimeoutSecs not specified, using default: %d",
			dfltServerReadTimeoutSecs,
		)
	}
	if conf.PublicURL == "" {
		conf.PublicURL = fmt.Sprintf("http://%s", conf.ListenAddress)
		log.Warn().Str("address", conf.PublicURL).Msg("publicUrl not set, using listenAddress")
	}
	if conf.TimeZone == "" {
		conf.TimeZone = dfltTimeZone
		log.Warn().
			Str("timeZone", dfltTimeZone).
			Msg("time zone not specified, using default")
	}
	if _, err := time.LoadLocation(conf.TimeZone); err != nil {
		return fmt.Errorf("invalid time zone: %w", err)
	}
	if conf.HeadWordPolicy == "" {
		conf.HeadWordPolicy = argctx.PlaceholderHeadWord
		log.Warn().
			Str("policy", string(conf.HeadWordPolicy)).
			Msg("headWordPolicy not specified, using default")
	}
	if err := conf.HeadWordPolicy.Validate(); err != nil {
		return fmt.Errorf("invalid headWordPolicy: %w", err)
	}
	if conf.FeaturesPath != "" {
		if isf, err := fs.IsFile(conf.FeaturesPath); err != nil || !isf {
			return fmt.Errorf("featuresPath %s is not a file", conf.FeaturesPath)
		}

	} else {
		log.Warn().Msg("featuresPath not specified, using built-in feature tables")
	}
	if conf.Indexer.NumWorkers <= 0 {
		conf.Indexer.NumWorkers = runtime.NumCPU()
		log.Warn().
			Int("numWorkers", conf.Indexer.NumWorkers).
			Msg("indexer numWorkers not specified, using number of CPUs")
	}
	conf.Redis.ValidateAndDefaults()
	return nil
}

// ValidateIndexer checks configuration items required
// by the batch indexing run.
func ValidateIndexer(conf *Conf) error {
	if conf.Indexer.OntologyDB == "" {
		return fmt.Errorf("indexer.ontologyDb not specified")
	}
	if conf.Indexer.SourcesDB == "" {
		return fmt.Errorf("indexer.sourcesDb not specified")
	}
	for _, path := range []string{conf.Indexer.SourcesDB, conf.Indexer.ComplexSourcesDB} {
		if path != "" && !fs.PathExists(path) {
			return fmt.Errorf("database %s not found", path)
		}
	}
	if conf.Indexer.ComplexSourcesDB == "" {
		log.Warn().Msg("indexer.complexSourcesDb not specified, explications will not be detected")
	}
	return nil
}
