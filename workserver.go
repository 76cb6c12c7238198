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
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"semctx/cnf"
	"semctx/monitoring"
	"semctx/occurrence"
	"semctx/rdb"
	"semctx/semenc"
	"semctx/store"
	"semctx/worker"

	"github.com/rs/zerolog/log"
)

func getWorkerID() (workerID string) {
	workerID = getEnv("WORKER_ID")
	if workerID == "" {
		workerID = strconv.Itoa(os.Getpid())
	}
	return
}

// loadLexicon reads complex concepts from the ontology database
// (if configured). Without the lexicon, no concept is considered
// complex.
func loadLexicon(ctx context.Context, conf *cnf.Conf) semenc.Lexicon {
	if conf.Indexer.OntologyDB == "" {
		log.Warn().Msg("ontology database not specified, complex concepts will not be recognized")
		return nil
	}
	db, err := store.Open(conf.Indexer.OntologyDB)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open ontology database")
	}
	defer db.Close()
	lex, err := store.LoadLexicon(ctx, db)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load complex concepts")
	}
	return lex
}

func runWorker(conf *cnf.Conf) {
	workerID := getWorkerID()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	radapter := rdb.NewAdapter(&conf.Redis, ctx)
	if err := radapter.TestConnection(redisConnectionTestTimeout); err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer radapter.Close()

	tables, resolver := loadInterpreterSetup(conf)
	interpreter := occurrence.NewIndexer(
		semenc.NewDecoder(tables, loadLexicon(ctx, conf)),
		resolver,
		nil,
	)
	jobLogger := monitoring.NewWorkerJobLogger(
		monitoring.NewStatusWriter(ctx, conf.Monitoring, conf.TimezoneLocation()),
		nil,
		conf.TimezoneLocation(),
	)
	ch := radapter.Subscribe()
	wrk := worker.NewWorker(workerID, radapter, ch, interpreter, jobLogger)
	runServices(ctx, []service{jobLogger, wrk})
}
