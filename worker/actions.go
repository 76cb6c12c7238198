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
	"fmt"

	"semctx/argctx"
	"semctx/merror"
	"semctx/rdb"
	"semctx/rdb/results"

	"github.com/czcorpus/cnc-gokit/collections"
)

func (w *Worker) interpret(args rdb.InterpretArgs) results.Interpretation {
	var ans results.Interpretation
	interp, err := w.interpreter.Interpret(args.Encoding)
	if err != nil {
		ans.Error = err
		return ans
	}
	ans.Entities = interp.Entities
	if args.Index == nil {
		ans.Occurrences = interp.Occurrences
		return ans
	}
	idx := *args.Index
	if idx < 0 || idx >= len(interp.Entities) {
		ans.Error = merror.InputError{
			Msg: fmt.Sprintf("entity index %d out of range (0-%d)", idx, len(interp.Entities)-1)}
		return ans
	}
	ans.Occurrences = collections.SliceFilter(
		interp.Occurrences,
		func(v argctx.Occurrence, i int) bool {
			return v.Index == idx
		},
	)
	return ans
}
