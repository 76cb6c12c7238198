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

package worker

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"semctx/merror"
	"semctx/occurrence"
	"semctx/rdb"
	"semctx/results"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	DefaultTickerInterval = 2 * time.Second
)

type jobLogger interface {
	Log(rec results.JobLog)
}

type queueAdapter interface {
	DequeueQuery() (rdb.Query, error)
	SomeoneListens(query rdb.Query) (bool, error)
	PublishResult(channelName string, value *rdb.WorkerResult) error
}

type interpreter interface {
	Interpret(encoding string) (occurrence.Interpretation, error)
}

type Worker struct {
	ID          string
	messages    <-chan *redis.Message
	radapter    queueAdapter
	interpreter interpreter
	ticker      *time.Ticker
	jobLogger   jobLogger
	currJobLog  *results.JobLog
}

func isUserError(err error) bool {
	var inpErr merror.InputError
	var structErr merror.StructuralError
	var unbErr merror.UnbalancedError
	return errors.As(err, &inpErr) || errors.As(err, &structErr) || errors.As(err, &unbErr)
}

func (w *Worker) publishResult(res rdb.FuncResult, channel string) error {
	ans, err := rdb.CreateWorkerResult(res)
	if err != nil {
		return err
	}
	ans.ID = w.ID
	ans.HasUserError = isUserError(res.Err())
	if w.currJobLog != nil {
		ans.ProcBegin = w.currJobLog.Begin
		w.currJobLog.End = time.Now()
		w.currJobLog.Err = res.Err()
		ans.ProcEnd = w.currJobLog.End
		w.jobLogger.Log(*w.currJobLog)
		w.currJobLog = nil
	}
	return w.radapter.PublishResult(channel, ans)
}

func (w *Worker) sendPublishingErr(query rdb.Query, err error) {
	if err := w.publishResult(&rdb.ErrorResult{Func: query.Func, Error: err.Error()}, query.Channel); err != nil {
		log.Error().Err(err).Msg("failed to publish general publishing error")
	}
}

func (w *Worker) runQueryProtected(query rdb.Query) (ansErr error) {
	defer func() {
		if r := recover(); r != nil {
			ansErr = merror.RecoveredError{Msg: merror.PanicValueToErr(r).Error()}
		}
	}()
	switch query.Func {
	case rdb.FuncInterpret:
		var args rdb.InterpretArgs
		if err := sonic.Unmarshal(query.Args, &args); err != nil {
			ans := &rdb.ErrorResult{Func: query.Func, Error: fmt.Sprintf("invalid arguments: %s", err)}
			return w.publishResult(ans, query.Channel)
		}
		ans := w.interpret(args)
		if err := w.publishResult(ans, query.Channel); err != nil {
			w.sendPublishingErr(query, err)
			return err
		}
	default:
		ans := &rdb.ErrorResult{Func: query.Func, Error: fmt.Sprintf("unknown query function: %s", query.Func)}
		if err := w.publishResult(ans, query.Channel); err != nil {
			return err
		}
	}
	return nil
}

func (w *Worker) tryNextQuery() error {
	time.Sleep(time.Duration(rand.Intn(40)) * time.Millisecond)
	query, err := w.radapter.DequeueQuery()
	if err == rdb.ErrorEmptyQueue {
		return nil

	} else if err != nil {
		return err
	}
	log.Debug().
		Str("channel", query.Channel).
		Str("func", query.Func).
		Msg("received query")

	isActive, err := w.radapter.SomeoneListens(query)
	if err != nil {
		return err
	}
	if !isActive {
		log.Warn().
			Str("func", query.Func).
			Str("channel", query.Channel).
			Msg("worker found an inactive query")
		return nil
	}

	w.currJobLog = &results.JobLog{
		WorkerID: w.ID,
		Func:     query.Func,
		Begin:    time.Now(),
	}

	err = w.runQueryProtected(query)
	var rcvErr merror.RecoveredError
	if errors.As(err, &rcvErr) {
		ans := &rdb.ErrorResult{
			Error: fmt.Sprintf("worker panicked: %s", rcvErr.Error()),
			Func:  query.Func,
		}
		if err := w.publishResult(ans, query.Channel); err != nil {
			return err
		}
	}
	return nil
}

func (w *Worker) Start(ctx context.Context) {
	log.Info().Str("workerId", w.ID).Msg("starting worker")
	go func() {
		for {
			select {
			case <-w.ticker.C:
				if err := w.tryNextQuery(); err != nil {
					log.Error().Err(err).Msg("failed to process query")
				}
			case <-ctx.Done():
				log.Info().Msg("worker exiting")
				return
			case msg, ok := <-w.messages:
				if !ok {
					return
				}
				if msg.Payload == rdb.MsgNewQuery {
					if err := w.tryNextQuery(); err != nil {
						log.Error().Err(err).Msg("failed to process query")
					}
				}
			}
		}
	}()
}

func (w *Worker) Stop(ctx context.Context) error {
	log.Warn().Str("workerId", w.ID).Msg("stopping worker")
	w.ticker.Stop()
	return nil
}

func NewWorker(
	workerID string,
	radapter queueAdapter,
	messages <-chan *redis.Message,
	interpreter interpreter,
	jobLogger jobLogger,
) *Worker {
	return &Worker{
		ID:          workerID,
		radapter:    radapter,
		messages:    messages,
		interpreter: interpreter,
		ticker:      time.NewTicker(DefaultTickerInterval),
		jobLogger:   jobLogger,
	}
}
