// Copyright 2023 Tomas Machalek <tomas.machalek@gmail.com>
// Copyright 2023 Martin Zimandl <martin.zimandl@gmail.com>
// Copyright 2023 Institute of the Czech National Corpus,
//                Faculty of Arts, Charles University
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"semctx/cnf"
	"semctx/features"
	"semctx/general"
	"semctx/handlers"
	"semctx/monitoring"
	monitoringActions "semctx/monitoring/handlers"
	"semctx/openapi"
	"semctx/rdb"
	"semctx/semenc"
	"semctx/store"

	"github.com/czcorpus/cnc-gokit/logging"
	"github.com/czcorpus/cnc-gokit/uniresp"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type apiServer struct {
	server    *http.Server
	conf      *cnf.Conf
	radapter  *rdb.Adapter
	decoder   *semenc.Decoder
	examples  *store.Examples
	metrics   *monitoring.Metrics
	jobLogger *monitoring.WorkerJobLogger
	version   general.VersionInfo
}

func (api *apiServer) Start(ctx context.Context) {
	if !api.conf.Logging.Level.IsDebugMode() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(additionalLogEvents())
	engine.Use(logging.GinMiddleware())
	engine.Use(uniresp.AlwaysJSONContentType())
	engine.Use(CORSMiddleware(api.conf))
	engine.NoMethod(uniresp.NoMethodHandler)
	engine.NoRoute(uniresp.NotFoundHandler)

	protected := engine.Group("/").Use(AuthRequired(api.conf))

	actions := handlers.NewActions(
		api.radapter, api.decoder, api.metrics, api.jobLogger, api.version)

	engine.GET("/", actions.ServerInfo)

	engine.GET(
		"/openapi", openapi.MkHandleRequest(api.conf, api.version.Version))

	protected.POST(
		"/interpret", actions.Interpret)

	protected.POST(
		"/decode", actions.Decode)

	if api.examples != nil {
		actions.EnableExamples(api.examples)

		engine.GET(
			"/examples/:stem/:sense/:pos", actions.Examples)

		engine.GET(
			"/concepts/top", actions.TopConcepts)

	} else {
		log.Warn().Msg("ontology database not specified, endpoints /examples and /concepts will be disabled")
	}

	engine.GET(
		"/metrics", gin.WrapH(api.metrics.Handler()))

	monActions := monitoringActions.NewActions(api.jobLogger, api.conf.TimezoneLocation())

	engine.GET(
		"/monitoring/workers-load", monActions.WorkersLoad)

	engine.GET(
		"/monitoring/workers-load/:workerId", monActions.SingleWorkerLoad)

	engine.GET(
		"/monitoring/recent-records", monActions.RecentRecords)

	log.Info().Msgf("starting to listen at %s:%d", api.conf.ListenAddress, api.conf.ListenPort)
	api.server = &http.Server{
		Handler:      engine,
		Addr:         fmt.Sprintf("%s:%d", api.conf.ListenAddress, api.conf.ListenPort),
		WriteTimeout: time.Duration(api.conf.ServerWriteTimeoutSecs) * time.Second,
		ReadTimeout:  time.Duration(api.conf.ServerReadTimeoutSecs) * time.Second,
	}
	go func() {
		if err := api.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()
}

func (api *apiServer) Stop(ctx context.Context) error {
	log.Warn().Msg("shutting down SEMCTX HTTP API server")
	return api.server.Shutdown(ctx)
}

func runApiServer(
	conf *cnf.Conf,
	version general.VersionInfo,
) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	radapter := rdb.NewAdapter(&conf.Redis, ctx)
	if err := radapter.TestConnection(redisConnectionTestTimeout); err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
		return
	}
	defer radapter.Close()

	tables, err := features.Load(conf.FeaturesPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load feature tables")
		return
	}

	var examples *store.Examples
	var lexicon semenc.Lexicon
	if conf.Indexer.OntologyDB != "" {
		db, err := store.Open(conf.Indexer.OntologyDB)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to open ontology database")
			return
		}
		defer db.Close()
		if err := store.Migrate(ctx, db); err != nil {
			log.Fatal().Err(err).Msg("failed to prepare example store")
			return
		}
		examples = store.NewExamples(db)
		lex, err := store.LoadLexicon(ctx, db)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to load complex concepts")
			return
		}
		lexicon = lex
	}

	metrics := monitoring.NewMetrics()
	// workers store their job logs themselves, here we only
	// collect the stats for the monitoring endpoints
	jobLogger := monitoring.NewWorkerJobLogger(nil, metrics, conf.TimezoneLocation())
	server := &apiServer{
		conf:      conf,
		radapter:  radapter,
		decoder:   semenc.NewDecoder(tables, lexicon),
		examples:  examples,
		metrics:   metrics,
		jobLogger: jobLogger,
		version:   version,
	}
	runServices(ctx, []service{jobLogger, server})
}
