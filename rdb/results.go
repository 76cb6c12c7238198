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
	"encoding/json"
	"time"

	"semctx/merror"

	"github.com/bytedance/sonic"
)

const (
	ResultTypeInterpretation ResultType = "interpretation"
	ResultTypeError          ResultType = "error"
)

type ResultType string

func (rt ResultType) String() string {
	return string(rt)
}

// ----------------

type FuncResult interface {
	Err() error
	Type() ResultType
}

// WorkerResult wraps a serialized result of a worker function
// along with processing metadata.
type WorkerResult struct {
	ID           string          `json:"id"`
	ResultType   ResultType      `json:"resultType"`
	Value        json.RawMessage `json:"value"`
	HasUserError bool            `json:"hasUserError"`
	ProcBegin    time.Time       `json:"procBegin"`
	ProcEnd      time.Time       `json:"procEnd"`
}

// AttachValue serializes a function result into the worker result.
func (wr *WorkerResult) AttachValue(value FuncResult) error {
	data, err := sonic.Marshal(value)
	if err != nil {
		return err
	}
	wr.Value = data
	wr.ResultType = value.Type()
	return nil
}

// Err returns an error stored within an error-type result. For other
// result types, nil is returned and callers have to inspect the value.
func (wr *WorkerResult) Err() error {
	if wr.ResultType != ResultTypeError {
		return nil
	}
	var eres ErrorResult
	if err := sonic.Unmarshal(wr.Value, &eres); err != nil {
		return err
	}
	return eres.Err()
}

func CreateWorkerResult(value FuncResult) (*WorkerResult, error) {
	ans := new(WorkerResult)
	if err := ans.AttachValue(value); err != nil {
		return nil, err
	}
	return ans, nil
}

// ----------------

// ErrorResult is a result of a failed job. Timeout is set when
// no worker answered in time.
type ErrorResult struct {
	Func    string `json:"func"`
	Error   string `json:"error"`
	Timeout bool   `json:"timeout,omitempty"`
}

// Err returns merror.TimeoutError for unanswered queries and
// merror.InternalError for all the other failures.
func (res *ErrorResult) Err() error {
	if res.Error == "" {
		return nil
	}
	if res.Timeout {
		return merror.TimeoutError{Msg: res.Error}
	}
	return merror.InternalError{Msg: res.Error}
}

func (res *ErrorResult) Type() ResultType {
	return ResultTypeError
}
