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

package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"semctx/monitoring"
	"semctx/results"

	"github.com/czcorpus/cnc-gokit/collections"
	"github.com/czcorpus/cnc-gokit/uniresp"
	"github.com/gin-gonic/gin"
)

type timeSpan string

const (
	spanTypeRecent timeSpan = "recent"
	spanTypeTotal  timeSpan = "total"
)

func (ts timeSpan) Validate() error {
	if ts != spanTypeRecent && ts != spanTypeTotal {
		return fmt.Errorf("unknown time span `%s`", ts)
	}
	return nil
}

// Actions provides load statistics of interpreter workers
// (as seen by the API server) and of indexing runs.
type Actions struct {
	logger   *monitoring.WorkerJobLogger
	location *time.Location
}

func (a *Actions) spanArg(ctx *gin.Context) (timeSpan, bool) {
	span := timeSpan(ctx.DefaultQuery("span", string(spanTypeRecent)))
	if err := span.Validate(); err != nil {
		uniresp.RespondWithErrorJSON(ctx, err, http.StatusBadRequest)
		return span, false
	}
	return span, true
}

func (a *Actions) WorkersLoad(ctx *gin.Context) {
	span, ok := a.spanArg(ctx)
	if !ok {
		return
	}
	switch span {
	case spanTypeRecent:
		uniresp.WriteJSONResponse(ctx.Writer, a.logger.RecentLoad())
	case spanTypeTotal:
		uniresp.WriteJSONResponse(ctx.Writer, a.logger.TotalLoad())
	}
}

func (a *Actions) SingleWorkerLoad(ctx *gin.Context) {
	span, ok := a.spanArg(ctx)
	if !ok {
		return
	}
	workerID := ctx.Param("workerId")
	var ans monitoring.WorkerLoad
	var err error
	switch span {
	case spanTypeRecent:
		ans, err = a.logger.RecentWorkerLoad(workerID)
	case spanTypeTotal:
		ans, err = a.logger.TotalWorkerLoad(workerID)
	}
	if errors.Is(err, monitoring.ErrWorkerNotFound) {
		uniresp.RespondWithErrorJSON(ctx, err, http.StatusNotFound)
		return

	} else if err != nil {
		uniresp.RespondWithErrorJSON(ctx, err, http.StatusInternalServerError)
		return
	}
	uniresp.WriteJSONResponse(ctx.Writer, ans)
}

// RecentRecords lists recent job logs, optionally filtered
// by a function name (`func`, e.g. `interpret`) and limited
// to the latest `limit` records.
func (a *Actions) RecentRecords(ctx *gin.Context) {
	recs := a.logger.RecentRecords()
	if fn := ctx.Query("func"); fn != "" {
		recs = collections.SliceFilter(recs, func(rec results.JobLog, i int) bool {
			return rec.Func == fn
		})
	}
	if v := ctx.Query("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			uniresp.RespondWithErrorJSON(
				ctx, fmt.Errorf("invalid limit `%s`", v), http.StatusBadRequest)
			return
		}
		if limit < len(recs) {
			recs = recs[len(recs)-limit:]
		}
	}
	if recs == nil {
		recs = []results.JobLog{}
	}
	uniresp.WriteJSONResponse(ctx.Writer, recs)
}

func NewActions(logger *monitoring.WorkerJobLogger, location *time.Location) *Actions {
	return &Actions{
		logger:   logger,
		location: location,
	}
}
