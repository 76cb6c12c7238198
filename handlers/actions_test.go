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
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"semctx/argctx"
	"semctx/features"
	"semctx/general"
	"semctx/monitoring"
	"semctx/occurrence"
	"semctx/rdb"
	"semctx/semenc"
	"semctx/store"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePublisher struct {
	result  *rdb.WorkerResult
	queries []rdb.Query
}

func (fp *fakePublisher) CachedPublishQuery(query rdb.Query) (<-chan *rdb.WorkerResult, error) {
	fp.queries = append(fp.queries, query)
	ch := make(chan *rdb.WorkerResult, 1)
	ch <- fp.result
	close(ch)
	return ch, nil
}

type fakeStore struct {
	lastConcept semenc.Concept
	lastFilter  store.RefFilter
}

func (fs *fakeStore) Lookup(ctx context.Context, concept semenc.Concept, filter store.RefFilter) ([]store.Example, error) {
	fs.lastConcept = concept
	fs.lastFilter = filter
	var args argctx.Arguments
	args.Set("Agent", "Ruth-A")
	return []store.Example{
		{
			Reference: occurrence.Reference{Type: "Bible", Primary: "Ruth", Secondary: "1", Tertiary: "14"},
			Context:   args,
		},
	}, nil
}

func (fs *fakeStore) TopOccurrences(ctx context.Context, limit int) ([]store.ConceptCount, error) {
	return []store.ConceptCount{{Stem: "be", Sense: "D", PartOfSpeech: "Verb", Occurrences: limit}}, nil
}

func sampleEncoding() string {
	return semenc.EncodeUnit("c", "IDp00NNNNNNNNNNN", "{") +
		semenc.EncodeUnit("n", "SA", "(") +
		semenc.EncodeUnit("N", "1A", "Ruth") +
		semenc.EncodeUnit("", "", ")") +
		semenc.EncodeUnit("", "", "}")
}

func newTestEngine(pub *fakePublisher, st *fakeStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	actions := NewActions(
		pub,
		semenc.NewDecoder(features.Default(), nil),
		monitoring.NewMetrics(),
		nil,
		general.NewVersionInfo("v1.0.0", "2024-03-01", "abcdef"),
	)
	if st != nil {
		actions.EnableExamples(st)
	}
	engine := gin.New()
	engine.GET("/", actions.ServerInfo)
	engine.POST("/interpret", actions.Interpret)
	engine.POST("/decode", actions.Decode)
	engine.GET("/examples/:stem/:sense/:pos", actions.Examples)
	engine.GET("/concepts/top", actions.TopConcepts)
	return engine
}

func doRequest(engine *gin.Engine, method, url, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, url, strings.NewReader(body))
	engine.ServeHTTP(w, req)
	return w
}

func TestInterpretAction(t *testing.T) {
	pub := &fakePublisher{
		result: &rdb.WorkerResult{
			ResultType: rdb.ResultTypeInterpretation,
			Value:      json.RawMessage(`{"entities":[],"occurrences":[],"resultType":"interpretation"}`),
		},
	}
	engine := newTestEngine(pub, nil)
	w := doRequest(engine, http.MethodPost, "/interpret", `{"encoding": "x", "index": 2}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"entities":[],"occurrences":[],"resultType":"interpretation"}`, w.Body.String())
	require.Len(t, pub.queries, 1)
	assert.Equal(t, rdb.FuncInterpret, pub.queries[0].Func)
	assert.JSONEq(t, `{"encoding":"x","index":2}`, string(pub.queries[0].Args))

	w = doRequest(engine, http.MethodPost, "/interpret", `{"encoding":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestInterpretActionErrors(t *testing.T) {
	pub := &fakePublisher{
		result: &rdb.WorkerResult{
			ResultType:   rdb.ResultTypeInterpretation,
			HasUserError: true,
			Value:        json.RawMessage(`{"entities":[],"occurrences":[],"error":"Noun not in a phrase"}`),
		},
	}
	engine := newTestEngine(pub, nil)
	w := doRequest(engine, http.MethodPost, "/interpret", `{"encoding": "x"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "Noun not in a phrase")

	wr, err := rdb.CreateWorkerResult(&rdb.ErrorResult{Func: rdb.FuncInterpret, Error: "no worker answered in time"})
	require.NoError(t, err)
	pub.result = wr
	w = doRequest(engine, http.MethodPost, "/interpret", `{"encoding": "x"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestInterpretActionTimeout(t *testing.T) {
	wr, err := rdb.CreateWorkerResult(
		&rdb.ErrorResult{Func: rdb.FuncInterpret, Error: "no worker answered in time", Timeout: true})
	require.NoError(t, err)
	engine := newTestEngine(&fakePublisher{result: wr}, nil)
	w := doRequest(engine, http.MethodPost, "/interpret", `{"encoding": "x"}`)
	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
	assert.Contains(t, w.Body.String(), "no worker answered in time")
}

func TestDecodeAction(t *testing.T) {
	engine := newTestEngine(&fakePublisher{}, nil)
	body, err := json.Marshal(map[string]string{"encoding": sampleEncoding()})
	require.NoError(t, err)
	w := doRequest(engine, http.MethodPost, "/decode", string(body))
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Entities []semenc.Entity `json:"entities"`
		Encoding string          `json:"encoding"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Entities, 5)
	assert.Equal(t, semenc.Noun, resp.Entities[2].Category)
	assert.Equal(t, sampleEncoding(), resp.Encoding)

	body, err = json.Marshal(map[string]string{"encoding": semenc.EncodeUnit("", "", ")")})
	require.NoError(t, err)
	w = doRequest(engine, http.MethodPost, "/decode", string(body))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestExamplesAction(t *testing.T) {
	st := &fakeStore{}
	engine := newTestEngine(&fakePublisher{}, st)
	w := doRequest(engine, http.MethodGet, "/examples/cry/A/Verb?refPrimary=Ruth&refTertiary=14", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, semenc.Concept{Stem: "cry", Sense: "A", PartOfSpeech: semenc.Verb}, st.lastConcept)
	assert.Equal(t, store.RefFilter{Primary: "Ruth", Tertiary: "14"}, st.lastFilter)
	assert.Contains(t, w.Body.String(), `"Agent":"Ruth-A"`)

	w = doRequest(engine, http.MethodGet, "/examples/cry/A/Gerund", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	engine = newTestEngine(&fakePublisher{}, nil)
	w = doRequest(engine, http.MethodGet, "/examples/cry/A/Verb", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestTopConceptsAction(t *testing.T) {
	engine := newTestEngine(&fakePublisher{}, &fakeStore{})
	w := doRequest(engine, http.MethodGet, "/concepts/top?limit=3", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"stem":"be","sense":"D","partOfSpeech":"Verb","occurrences":3}]`, w.Body.String())

	w = doRequest(engine, http.MethodGet, "/concepts/top?limit=-1", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestServerInfo(t *testing.T) {
	engine := newTestEngine(&fakePublisher{}, nil)
	w := doRequest(engine, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"version":"1.0.0"`)
}
