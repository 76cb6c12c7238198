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
	"semctx/argctx"
	"semctx/rdb"
	"semctx/semenc"

	"github.com/bytedance/sonic"
)

func errToStr(err error) string {
	if err != nil {
		return err.Error()
	}
	return ""
}

type InterpretationResponse struct {
	Entities    []semenc.Entity     `json:"entities"`
	Occurrences []argctx.Occurrence `json:"occurrences"`
	ResultType  rdb.ResultType      `json:"resultType"`
	Error       string              `json:"error,omitempty"`
}

// Interpretation is a result of the `interpret` worker function.
type Interpretation struct {
	Entities    []semenc.Entity
	Occurrences []argctx.Occurrence
	Error       error
}

func (res Interpretation) Err() error {
	return res.Error
}

func (res Interpretation) Type() rdb.ResultType {
	return rdb.ResultTypeInterpretation
}

func (res Interpretation) MarshalJSON() ([]byte, error) {
	entities := res.Entities
	if entities == nil {
		entities = []semenc.Entity{}
	}
	occ := res.Occurrences
	if occ == nil {
		occ = []argctx.Occurrence{}
	}
	return sonic.Marshal(InterpretationResponse{
		Entities:    entities,
		Occurrences: occ,
		ResultType:  res.Type(),
		Error:       errToStr(res.Error),
	})
}
