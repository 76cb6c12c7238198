// Copyright 2024 Tomas Machalek <tomas.machalek@gmail.com>
// Copyright 2024 Institute of the Czech National Corpus,
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
	"os/signal"
	"syscall"
	"time"

	"semctx/cnf"
	"semctx/monitoring"
	"semctx/occurrence"
	"semctx/results"
	"semctx/semenc"
	"semctx/store"

	"github.com/rs/zerolog/log"
)

const (
	indexerFuncName   = "index"
	numReportedTopOcc = 10
)

// runIndexer interprets all the encoded source sentences and stores
// found occurrences as examples to the ontology database. Any previously
// stored examples are removed first.
func runIndexer(conf *cnf.Conf) {
	if err := cnf.ValidateIndexer(conf); err != nil {
		log.Fatal().Err(err).Msg("invalid indexer configuration")
		return
	}
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ontoDB, err := store.Open(conf.Indexer.OntologyDB)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open ontology database")
		return
	}
	defer ontoDB.Close()
	if err := store.Migrate(ctx, ontoDB); err != nil {
		log.Fatal().Err(err).Msg("failed to prepare example store")
		return
	}
	lexicon, err := store.LoadLexicon(ctx, ontoDB)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load complex concepts")
		return
	}
	log.Info().Int("numComplex", len(lexicon)).Msg("loaded complex concepts")

	srcDB, err := store.Open(conf.Indexer.SourcesDB)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open sources database")
		return
	}
	defer srcDB.Close()

	var opts []occurrence.Option
	opts = append(opts, occurrence.WithNumWorkers(conf.Indexer.NumWorkers))
	if conf.Indexer.ComplexSourcesDB != "" {
		cplxDB, err := store.Open(conf.Indexer.ComplexSourcesDB)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to open complex sources database")
			return
		}
		defer cplxDB.Close()
		opts = append(opts, occurrence.WithVariants(store.NewSources(cplxDB)))
	}

	examples := store.NewExamples(ontoDB)
	if err := examples.Reset(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to remove previous examples")
		return
	}
	sentences, err := store.NewSources(srcDB).Sentences(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load source sentences")
		return
	}
	log.Info().
		Int("numSentences", len(sentences)).
		Int("numWorkers", conf.Indexer.NumWorkers).
		Msg("starting indexing")

	tables, resolver := loadInterpreterSetup(conf)
	indexer := occurrence.NewIndexer(
		semenc.NewDecoder(tables, lexicon),
		resolver,
		examples,
		opts...,
	)
	t0 := time.Now()
	stats := indexer.Run(ctx, sentences)

	if err := examples.UpdateOccurrenceCounts(ctx); err != nil {
		log.Error().Err(err).Msg("failed to update occurrence counts")
	}
	top, err := examples.TopOccurrences(ctx, numReportedTopOcc)
	if err != nil {
		log.Error().Err(err).Msg("failed to get most frequent concepts")
	} else {
		for _, item := range top {
			log.Info().
				Str("stem", item.Stem).
				Str("sense", item.Sense).
				Str("pos", item.PartOfSpeech).
				Int("occurrences", item.Occurrences).
				Msg("frequent concept")
		}
	}

	metrics := monitoring.NewMetrics()
	metrics.ObserveIndexing(stats)
	jobLogger := monitoring.NewWorkerJobLogger(
		monitoring.NewStatusWriter(ctx, conf.Monitoring, conf.TimezoneLocation()),
		metrics,
		conf.TimezoneLocation(),
	)
	jobLogger.Log(results.JobLog{
		WorkerID: getWorkerID(),
		Func:     indexerFuncName,
		Begin:    t0,
		End:      time.Now(),
		Err:      ctx.Err(),
		NumItems: stats.Sentences,
	})
	if conf.Indexer.PushgatewayURL != "" {
		if err := metrics.Push(ctx, conf.Indexer.PushgatewayURL, "semctx_"+indexerFuncName); err != nil {
			log.Error().Err(err).Msg("failed to push indexing metrics")
		}
	}

	log.Info().
		Int("sentences", stats.Sentences).
		Int("occurrences", stats.Occurrences).
		Int("failures", stats.Failures).
		Float64("durationSecs", stats.Duration.Seconds()).
		Msg("indexing finished")
}
