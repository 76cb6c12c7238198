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

package results

import (
	"time"

	"github.com/bytedance/sonic"
)

// JobLog describes a single job processed by a worker
// (an interpretation request or an indexing run).
type JobLog struct {
	WorkerID string
	Func     string
	Begin    time.Time
	End      time.Time
	Err      error

	// NumItems is a number of processed items (e.g. sentences
	// of an indexing run). Zero for single-item jobs.
	NumItems int
}

func (jl JobLog) TimeSpent() time.Duration {
	return jl.End.Sub(jl.Begin)
}

func (jl JobLog) MarshalJSON() ([]byte, error) {
	var errStr string
	if jl.Err != nil {
		errStr = jl.Err.Error()
	}
	return sonic.Marshal(struct {
		WorkerID string    `json:"workerId"`
		Func     string    `json:"func"`
		Begin    time.Time `json:"begin"`
		End      time.Time `json:"end"`
		Error    string    `json:"error,omitempty"`
		NumItems int       `json:"numItems,omitempty"`
	}{
		WorkerID: jl.WorkerID,
		Func:     jl.Func,
		Begin:    jl.Begin,
		End:      jl.End,
		Error:    errStr,
		NumItems: jl.NumItems,
	})
}

func (jl JobLog) ToJSON() (string, error) {
	ans, err := jl.MarshalJSON()
	if err != nil {
		return "", err
	}
	return string(ans), nil
}
