// Copyright 2024 Tomas Machalek <tomas.machalek@gmail.com>
// Copyright 2024 Institute of the Czech National Corpus,
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

package occurrence

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"semctx/argctx"
	"semctx/navigator"
	"semctx/semenc"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const (
	progressLogInterval = 1000
)

// Reference locates a sentence within the sources
// (e.g. Bible / Ruth / 1 / 1).
type Reference struct {
	Type      string `json:"type"`
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
	Tertiary  string `json:"tertiary"`
}

func (ref Reference) String() string {
	return fmt.Sprintf("%s %s %s:%s", ref.Type, ref.Primary, ref.Secondary, ref.Tertiary)
}

type Sentence struct {
	Reference Reference
	Encoding  string
}

// Sink stores occurrences found in a sentence. Implementations
// must be safe for concurrent use.
type Sink interface {
	Record(ctx context.Context, ref Reference, occurrences []argctx.Occurrence) error
}

// VariantSource provides encodings of sentences with complex concepts
// inserted (i.e. before their explication).
type VariantSource interface {
	Encoding(ctx context.Context, ref Reference) (string, bool, error)
}

// Interpretation is a result of interpreting a single encoded sentence.
type Interpretation struct {
	Entities    []semenc.Entity     `json:"entities"`
	Occurrences []argctx.Occurrence `json:"occurrences"`
}

// Stats summarizes a batch run.
type Stats struct {
	Sentences   int           `json:"sentences"`
	Occurrences int           `json:"occurrences"`
	Failures    int           `json:"failures"`
	Duration    time.Duration `json:"duration"`
}

// Observer receives a result of each processed sentence of a batch run.
type Observer func(ref Reference, numOccurrences int, err error)

// Indexer connects the interpreter with an occurrence storage.
type Indexer struct {
	decoder    *semenc.Decoder
	resolver   *argctx.Resolver
	sink       Sink
	variants   VariantSource
	numWorkers int
	observer   Observer
}

// Interpret decodes and validates the encoding and finds
// all the concept occurrences along with their contexts.
func (ix *Indexer) Interpret(encoding string) (Interpretation, error) {
	nav := navigator.New(ix.decoder.Decode(encoding))
	if err := semenc.Validate(nav.Entities()); err != nil {
		return Interpretation{}, err
	}
	occ, err := ix.resolver.SentenceOccurrences(nav)
	if err != nil {
		return Interpretation{}, err
	}
	return Interpretation{Entities: nav.Entities(), Occurrences: occ}, nil
}

// IndexSentence interprets the sentence and records its occurrences
// (including possible explications of complex concepts) to the sink.
func (ix *Indexer) IndexSentence(ctx context.Context, sent Sentence) (int, error) {
	interp, err := ix.Interpret(sent.Encoding)
	if err != nil {
		return 0, fmt.Errorf("failed to interpret %s: %w", sent.Reference, err)
	}
	if err := ix.sink.Record(ctx, sent.Reference, interp.Occurrences); err != nil {
		return 0, fmt.Errorf("failed to record occurrences of %s: %w", sent.Reference, err)
	}
	total := len(interp.Occurrences)
	if ix.variants == nil {
		return total, nil
	}
	varEnc, ok, err := ix.variants.Encoding(ctx, sent.Reference)
	if err != nil {
		return total, fmt.Errorf("failed to get complex variant of %s: %w", sent.Reference, err)
	}
	if !ok {
		return total, nil
	}
	variant, err := ix.Interpret(varEnc)
	if err != nil {
		return total, fmt.Errorf("failed to interpret complex variant of %s: %w", sent.Reference, err)
	}
	expl := argctx.Explications(interp.Occurrences, variant.Occurrences)
	if len(expl) == 0 {
		return total, nil
	}
	if err := ix.sink.Record(ctx, sent.Reference, expl); err != nil {
		return total, fmt.Errorf("failed to record explications of %s: %w", sent.Reference, err)
	}
	return total + len(expl), nil
}

// Run indexes sentences using a limited number of concurrent workers.
// A failing sentence is logged and counted, the rest of the batch
// continues. A cancelled context stops the run before all the sentences
// are processed.
func (ix *Indexer) Run(ctx context.Context, sentences []Sentence) Stats {
	t0 := time.Now()
	var numSent, numOcc, numFail atomic.Int64
	var g errgroup.Group
	g.SetLimit(ix.numWorkers)

	for _, sent := range sentences {
		if ctx.Err() != nil {
			log.Warn().Err(ctx.Err()).Msg("indexing interrupted")
			break
		}
		g.Go(func() error {
			n, err := ix.IndexSentence(ctx, sent)
			if err != nil {
				numFail.Add(1)
				log.Error().
					Err(err).
					Str("ref", sent.Reference.String()).
					Msg("failed to index sentence")
			}
			numOcc.Add(int64(n))
			if v := numSent.Add(1); v%progressLogInterval == 0 {
				log.Info().Int64("sentences", v).Msg("indexing in progress")
			}
			if ix.observer != nil {
				ix.observer(sent.Reference, n, err)
			}
			return nil
		})
	}
	g.Wait()

	return Stats{
		Sentences:   int(numSent.Load()),
		Occurrences: int(numOcc.Load()),
		Failures:    int(numFail.Load()),
		Duration:    time.Since(t0),
	}
}

// ----

type Option func(ix *Indexer)

func WithVariants(variants VariantSource) Option {
	return func(ix *Indexer) {
		ix.variants = variants
	}
}

func WithNumWorkers(n int) Option {
	return func(ix *Indexer) {
		if n > 0 {
			ix.numWorkers = n
		}
	}
}

func WithObserver(fn Observer) Option {
	return func(ix *Indexer) {
		ix.observer = fn
	}
}

func NewIndexer(
	decoder *semenc.Decoder,
	resolver *argctx.Resolver,
	sink Sink,
	opts ...Option,
) *Indexer {
	ans := &Indexer{
		decoder:    decoder,
		resolver:   resolver,
		sink:       sink,
		numWorkers: 1,
	}
	for _, opt := range opts {
		opt(ans)
	}
	return ans
}
