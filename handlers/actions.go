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

package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"semctx/general"
	"semctx/merror"
	"semctx/monitoring"
	"semctx/rdb"
	"semctx/results"
	"semctx/semenc"
	"semctx/store"

	"github.com/bytedance/sonic"
	"github.com/czcorpus/cnc-gokit/uniresp"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const (
	dfltTopConceptsLimit = 10
	maxTopConceptsLimit  = 1000
)

type queryPublisher interface {
	CachedPublishQuery(query rdb.Query) (<-chan *rdb.WorkerResult, error)
}

type exampleStore interface {
	Lookup(ctx context.Context, concept semenc.Concept, filter store.RefFilter) ([]store.Example, error)
	TopOccurrences(ctx context.Context, limit int) ([]store.ConceptCount, error)
}

type jobLogger interface {
	Log(rec results.JobLog)
}

type interpretRequest struct {
	Encoding string `json:"encoding"`
	Index    *int   `json:"index,omitempty"`
}

type decodeResponse struct {
	Entities []semenc.Entity `json:"entities"`
	Encoding string          `json:"encoding"`
}

// Actions contains HTTP handlers of the interpreter API.
type Actions struct {
	radapter  queryPublisher
	decoder   *semenc.Decoder
	examples  exampleStore
	metrics   *monitoring.Metrics
	jobLogger jobLogger
	version   general.VersionInfo
}

func (a *Actions) observe(endpoint, outcome string) {
	if a.metrics != nil {
		a.metrics.ObserveRequest(endpoint, outcome)
	}
}

func (a *Actions) ServerInfo(ctx *gin.Context) {
	uniresp.WriteJSONResponse(
		ctx.Writer,
		map[string]any{
			"name":    "SEMCTX - semantic encoding interpreter",
			"version": a.version,
		},
	)
}

func (a *Actions) decodeRequest(ctx *gin.Context) (interpretRequest, bool) {
	var req interpretRequest
	body, err := ctx.GetRawData()
	if err != nil {
		uniresp.RespondWithErrorJSON(ctx, err, http.StatusBadRequest)
		return req, false
	}
	if err := sonic.Unmarshal(body, &req); err != nil {
		uniresp.RespondWithErrorJSON(
			ctx, fmt.Errorf("invalid request body: %w", err), http.StatusBadRequest)
		return req, false
	}
	return req, true
}

// Interpret passes the encoding to a worker and responds with
// decoded entities and found concept occurrences.
func (a *Actions) Interpret(ctx *gin.Context) {
	req, ok := a.decodeRequest(ctx)
	if !ok {
		a.observe("interpret", "badRequest")
		return
	}
	args, err := sonic.Marshal(rdb.InterpretArgs{Encoding: req.Encoding, Index: req.Index})
	if err != nil {
		a.observe("interpret", "error")
		uniresp.RespondWithErrorJSON(ctx, err, http.StatusInternalServerError)
		return
	}
	wait, err := a.radapter.CachedPublishQuery(rdb.Query{Func: rdb.FuncInterpret, Args: args})
	if err != nil {
		a.observe("interpret", "error")
		uniresp.RespondWithErrorJSON(
			ctx,
			merror.InternalError{Msg: fmt.Sprintf("failed to publish query: %s", err)},
			http.StatusInternalServerError,
		)
		return
	}
	rawResult, ok := <-wait
	if !ok || rawResult == nil {
		a.observe("interpret", "error")
		uniresp.RespondWithErrorJSON(
			ctx, merror.InternalError{Msg: "no result received"}, http.StatusInternalServerError)
		return
	}
	if a.jobLogger != nil && rawResult.ID != "" {
		a.jobLogger.Log(results.JobLog{
			WorkerID: rawResult.ID,
			Func:     rdb.FuncInterpret,
			Begin:    rawResult.ProcBegin,
			End:      rawResult.ProcEnd,
			Err:      rawResult.Err(),
		})
	}
	if err := rawResult.Err(); err != nil {
		var terr merror.TimeoutError
		if errors.As(err, &terr) {
			a.observe("interpret", "timeout")
			log.Warn().Err(err).Msg("interpret query timed out")
			uniresp.RespondWithErrorJSON(ctx, err, http.StatusGatewayTimeout)
			return
		}
		a.observe("interpret", "error")
		log.Error().Err(err).Msg("failed to interpret encoding")
		uniresp.RespondWithErrorJSON(ctx, err, http.StatusInternalServerError)
		return
	}
	if rawResult.HasUserError {
		a.observe("interpret", "userError")
		var resp struct {
			Error string `json:"error"`
		}
		if err := sonic.Unmarshal(rawResult.Value, &resp); err != nil {
			uniresp.RespondWithErrorJSON(ctx, err, http.StatusInternalServerError)
			return
		}
		uniresp.RespondWithErrorJSON(ctx, errors.New(resp.Error), http.StatusUnprocessableEntity)
		return
	}
	a.observe("interpret", "ok")
	uniresp.WriteRawJSONResponse(ctx.Writer, rawResult.Value)
}

// Decode decodes and validates the encoding within the API
// process (no worker involved).
func (a *Actions) Decode(ctx *gin.Context) {
	req, ok := a.decodeRequest(ctx)
	if !ok {
		a.observe("decode", "badRequest")
		return
	}
	entities := a.decoder.Decode(req.Encoding)
	if err := semenc.Validate(entities); err != nil {
		a.observe("decode", "userError")
		uniresp.RespondWithErrorJSON(ctx, err, http.StatusUnprocessableEntity)
		return
	}
	a.observe("decode", "ok")
	uniresp.WriteJSONResponse(
		ctx.Writer,
		decodeResponse{Entities: entities, Encoding: semenc.Encode(entities)},
	)
}

// Examples lists recorded contexts of a concept.
func (a *Actions) Examples(ctx *gin.Context) {
	if a.examples == nil {
		uniresp.RespondWithErrorJSON(
			ctx, fmt.Errorf("example store not configured"), http.StatusServiceUnavailable)
		return
	}
	pos, ok := semenc.ParseCategory(ctx.Param("pos"))
	if !ok || pos == semenc.NoCategory {
		a.observe("examples", "badRequest")
		uniresp.RespondWithErrorJSON(
			ctx,
			merror.InputError{Msg: fmt.Sprintf("unknown part of speech `%s`", ctx.Param("pos"))},
			http.StatusBadRequest,
		)
		return
	}
	concept := semenc.Concept{Stem: ctx.Param("stem"), Sense: ctx.Param("sense"), PartOfSpeech: pos}
	filter := store.RefFilter{
		Type:      ctx.Query("refType"),
		Primary:   ctx.Query("refPrimary"),
		Secondary: ctx.Query("refSecondary"),
		Tertiary:  ctx.Query("refTertiary"),
	}
	items, err := a.examples.Lookup(ctx.Request.Context(), concept, filter)
	if err != nil {
		a.observe("examples", "error")
		log.Error().Err(err).Str("concept", concept.Format()).Msg("failed to look up examples")
		uniresp.RespondWithErrorJSON(
			ctx, merror.InternalError{Msg: "failed to look up examples"}, http.StatusInternalServerError)
		return
	}
	a.observe("examples", "ok")
	uniresp.WriteJSONResponse(
		ctx.Writer,
		map[string]any{
			"concept":  concept,
			"examples": items,
		},
	)
}

// TopConcepts lists concepts with the highest number of occurrences.
func (a *Actions) TopConcepts(ctx *gin.Context) {
	if a.examples == nil {
		uniresp.RespondWithErrorJSON(
			ctx, fmt.Errorf("example store not configured"), http.StatusServiceUnavailable)
		return
	}
	limit := dfltTopConceptsLimit
	if v := ctx.Query("limit"); v != "" {
		var err error
		limit, err = strconv.Atoi(v)
		if err != nil || limit <= 0 || limit > maxTopConceptsLimit {
			uniresp.RespondWithErrorJSON(
				ctx,
				merror.InputError{Msg: fmt.Sprintf("invalid limit `%s`", v)},
				http.StatusBadRequest,
			)
			return
		}
	}
	items, err := a.examples.TopOccurrences(ctx.Request.Context(), limit)
	if err != nil {
		log.Error().Err(err).Msg("failed to get most frequent concepts")
		uniresp.RespondWithErrorJSON(
			ctx, merror.InternalError{Msg: "failed to get most frequent concepts"}, http.StatusInternalServerError)
		return
	}
	if items == nil {
		items = []store.ConceptCount{}
	}
	uniresp.WriteJSONResponse(ctx.Writer, items)
}

// EnableExamples makes the example endpoints serve data
// from the store.
func (a *Actions) EnableExamples(examples exampleStore) {
	a.examples = examples
}

func NewActions(
	radapter queryPublisher,
	decoder *semenc.Decoder,
	metrics *monitoring.Metrics,
	jobLogger jobLogger,
	version general.VersionInfo,
) *Actions {
	return &Actions{
		radapter:  radapter,
		decoder:   decoder,
		metrics:   metrics,
		jobLogger: jobLogger,
		version:   version,
	}
}
