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

package semenc

import (
	"semctx/merror"
)

var openerOf = map[string]string{
	PhraseEnd:     PhraseStart,
	SubClauseEnd:  SubClauseStart,
	MainClauseEnd: MainClauseStart,
}

// Validate checks that the boundary markers of the entities
// form a properly nested sequence. The first violation is returned
// as merror.UnbalancedError.
func Validate(entities []Entity) error {
	stack := make([]int, 0, 16)
	for i, ent := range entities {
		switch ent.Surface {
		case PhraseStart, SubClauseStart, MainClauseStart:
			stack = append(stack, i)
		case PhraseEnd, SubClauseEnd, MainClauseEnd:
			if len(stack) == 0 || entities[stack[len(stack)-1]].Surface != openerOf[ent.Surface] {
				return merror.UnbalancedError{Index: i, Marker: ent.Surface}
			}
			stack = stack[:len(stack)-1]
		}
	}
	if len(stack) > 0 {
		top := stack[len(stack)-1]
		return merror.UnbalancedError{Index: top, Marker: entities[top].Surface, Unclosed: true}
	}
	return nil
}
