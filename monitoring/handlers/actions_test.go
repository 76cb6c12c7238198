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
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"semctx/monitoring"
	"semctx/results"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := monitoring.NewWorkerJobLogger(nil, nil, time.UTC)
	t0 := time.Now().Add(-time.Minute)
	logger.Log(results.JobLog{WorkerID: "w1", Func: "interpret", Begin: t0, End: t0.Add(time.Second)})
	logger.Log(results.JobLog{WorkerID: "w1", Func: "interpret", Begin: t0, End: t0.Add(2 * time.Second)})
	logger.Log(results.JobLog{WorkerID: "idx", Func: "index", Begin: t0, End: t0.Add(30 * time.Second), NumItems: 100})

	actions := NewActions(logger, time.UTC)
	engine := gin.New()
	engine.GET("/monitoring/workers-load", actions.WorkersLoad)
	engine.GET("/monitoring/workers-load/:workerId", actions.SingleWorkerLoad)
	engine.GET("/monitoring/recent-records", actions.RecentRecords)
	return engine
}

func get(engine *gin.Engine, url string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, url, nil))
	return w
}

func TestWorkersLoad(t *testing.T) {
	engine := newTestEngine(t)
	assert.Equal(t, http.StatusOK, get(engine, "/monitoring/workers-load").Code)
	assert.Equal(t, http.StatusOK, get(engine, "/monitoring/workers-load?span=total").Code)
	assert.Equal(t, http.StatusBadRequest, get(engine, "/monitoring/workers-load?span=weekly").Code)
}

func TestSingleWorkerLoad(t *testing.T) {
	engine := newTestEngine(t)
	assert.Equal(t, http.StatusOK, get(engine, "/monitoring/workers-load/w1?span=total").Code)
	assert.Equal(t, http.StatusNotFound, get(engine, "/monitoring/workers-load/w9?span=total").Code)
}

func TestRecentRecords(t *testing.T) {
	engine := newTestEngine(t)

	w := get(engine, "/monitoring/recent-records?func=index")
	require.Equal(t, http.StatusOK, w.Code)
	var recs []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &recs))
	require.Len(t, recs, 1)

	w = get(engine, "/monitoring/recent-records?limit=2")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &recs))
	assert.Len(t, recs, 2)

	w = get(engine, "/monitoring/recent-records?func=unknown")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())

	assert.Equal(t, http.StatusBadRequest, get(engine, "/monitoring/recent-records?limit=x").Code)
}
