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

// Package navigator answers tree-shaped questions (containing phrase,
// head word, clause verb, ...) over a flat sequence of entities
// using directional searches which can jump over whole
// phrases and subordinate clauses.
package navigator

import (
	"semctx/semenc"

	"github.com/czcorpus/cnc-gokit/collections"
)

// NotFound is returned by all the searches when there
// is no matching entity.
const NotFound = -1

type Predicate func(ent semenc.Entity) bool

// Options configure a directional search.
type Options struct {

	// SkipPhrases makes the search jump over whole phrases
	// instead of descending into them
	SkipPhrases bool

	// SkipClauses makes the search jump over whole subordinate
	// clauses instead of descending into them
	SkipClauses bool

	// BreakOn terminates the search (with NotFound)
	// once it matches an entity
	BreakOn Predicate
}

func (opts Options) breaks(ent semenc.Entity) bool {
	return opts.BreakOn != nil && opts.BreakOn(ent)
}

// Navigator provides searches over a single decoded sentence.
// It does not modify the entities and it keeps no state between
// calls, so it can be used from multiple goroutines.
type Navigator struct {
	entities []semenc.Entity
}

func (n *Navigator) Len() int {
	return len(n.entities)
}

func (n *Navigator) At(idx int) semenc.Entity {
	return n.entities[idx]
}

func (n *Navigator) Entities() []semenc.Entity {
	return n.entities
}

// Before searches backwards starting at start-1. For each visited
// entity, the predicate is tested first, then possible skip and finally
// the break condition.
func (n *Navigator) Before(start int, pred Predicate, opts Options) int {
	i := min(start-1, len(n.entities)-1)
	for i >= 0 {
		ent := n.entities[i]
		if pred(ent) {
			return i

		} else if opts.SkipPhrases && ent.IsPhraseEnd() {
			i = n.PhraseStart(i)
			if i == NotFound {
				return NotFound
			}
			i--

		} else if opts.SkipClauses && ent.IsSubClauseEnd() {
			i = n.SubClauseStart(i)
			if i == NotFound {
				return NotFound
			}
			i--

		} else if opts.breaks(ent) {
			return NotFound

		} else {
			i--
		}
	}
	return NotFound
}

// After searches forwards starting at start+1. The order of tests
// is the same as in Before.
func (n *Navigator) After(start int, pred Predicate, opts Options) int {
	i := max(start+1, 0)
	for i < len(n.entities) {
		ent := n.entities[i]
		if pred(ent) {
			return i

		} else if opts.SkipPhrases && ent.IsPhraseStart() {
			i = n.PhraseEnd(i)
			if i == NotFound {
				return NotFound
			}
			i++

		} else if opts.SkipClauses && ent.IsSubClauseStart() {
			i = n.SubClauseEnd(i)
			if i == NotFound {
				return NotFound
			}
			i++

		} else if opts.breaks(ent) {
			return NotFound

		} else {
			i++
		}
	}
	return NotFound
}

// PhraseStart finds the opening boundary matching
// the closing phrase boundary at idx.
func (n *Navigator) PhraseStart(idx int) int {
	return n.Before(idx, isPhraseStart, Options{SkipPhrases: true})
}

// PhraseEnd finds the closing boundary matching
// the opening phrase boundary at idx.
func (n *Navigator) PhraseEnd(idx int) int {
	return n.After(idx, isPhraseEnd, Options{SkipPhrases: true})
}

// SubClauseStart finds the opening boundary matching
// the closing subordinate clause boundary at idx.
func (n *Navigator) SubClauseStart(idx int) int {
	return n.Before(idx, isSubClauseStart, Options{SkipClauses: true})
}

// SubClauseEnd finds the closing boundary matching
// the opening subordinate clause boundary at idx.
func (n *Navigator) SubClauseEnd(idx int) int {
	return n.After(idx, isSubClauseEnd, Options{SkipClauses: true})
}

// ContainingPhrase returns the opening boundary of the nearest phrase
// enclosing idx. A clause boundary ends the search.
func (n *Navigator) ContainingPhrase(idx int) int {
	// clauses must be skipped too because of relative clauses inside NPs
	return n.Before(
		idx,
		isPhraseStart,
		Options{SkipPhrases: true, SkipClauses: true, BreakOn: isAnyClauseStart},
	)
}

// ContainingClause returns the opening boundary of the nearest
// (main or subordinate) clause enclosing idx.
func (n *Navigator) ContainingClause(idx int) int {
	return n.Before(idx, isAnyClauseStart, Options{SkipClauses: true})
}

// HeadCategories returns the word categories which can
// represent a phrase of the provided type.
func HeadCategories(phrase semenc.Category) []semenc.Category {
	switch phrase {
	case semenc.NP:
		// some NPs contain Phrasals standing for Nouns
		return []semenc.Category{semenc.Noun, semenc.Phrasal}
	case semenc.VP:
		return []semenc.Category{semenc.Verb}
	case semenc.AdjP:
		return []semenc.Category{semenc.Adjective}
	case semenc.AdvP:
		return []semenc.Category{semenc.Adverb}
	}
	return []semenc.Category{}
}

// HeadWord finds the head word of the phrase opened at phraseIdx.
// The search stays at the phrase's top level.
func (n *Navigator) HeadWord(phraseIdx int) int {
	if phraseIdx < 0 || phraseIdx >= len(n.entities) {
		return NotFound
	}
	expected := HeadCategories(n.entities[phraseIdx].Category)
	return n.After(
		phraseIdx,
		func(ent semenc.Entity) bool {
			return collections.SliceContains(expected, ent.Category)
		},
		Options{SkipPhrases: true, SkipClauses: true, BreakOn: isPhraseEnd},
	)
}

// ClauseVerb finds the verb of the clause idx belongs to. The clause
// is searched backwards first and forwards then.
func (n *Navigator) ClauseVerb(idx int) int {
	verbIdx := n.Before(
		idx,
		isVerb,
		Options{SkipClauses: true, BreakOn: isAnyClauseStart},
	)
	if verbIdx != NotFound {
		return verbIdx
	}
	return n.After(
		idx,
		isVerb,
		Options{SkipClauses: true, BreakOn: isAnyClauseEnd},
	)
}

// TopLevel visits the direct children of the phrase or clause opened
// at start. Nested phrases and subordinate clauses are visited by
// their opening boundary only. The walk ends with the first closing
// boundary or once visit returns false.
func (n *Navigator) TopLevel(start int, visit func(idx int, ent semenc.Entity) bool) {
	i := max(start+1, 0)
	for i < len(n.entities) {
		ent := n.entities[i]
		if !visit(i, ent) {
			return
		}
		if ent.IsPhraseStart() {
			i = n.PhraseEnd(i)

		} else if ent.IsSubClauseStart() {
			i = n.SubClauseEnd(i)

		} else if ent.IsClosing() {
			return
		}
		if i == NotFound {
			return
		}
		i++
	}
}

func isPhraseStart(ent semenc.Entity) bool {
	return ent.IsPhraseStart()
}

func isPhraseEnd(ent semenc.Entity) bool {
	return ent.IsPhraseEnd()
}

func isSubClauseStart(ent semenc.Entity) bool {
	return ent.IsSubClauseStart()
}

func isSubClauseEnd(ent semenc.Entity) bool {
	return ent.IsSubClauseEnd()
}

func isAnyClauseStart(ent semenc.Entity) bool {
	return ent.IsAnyClauseStart()
}

func isAnyClauseEnd(ent semenc.Entity) bool {
	return ent.IsAnyClauseEnd()
}

func isVerb(ent semenc.Entity) bool {
	return ent.Category == semenc.Verb
}

// New creates a navigator over the entities.
func New(entities []semenc.Entity) *Navigator {
	return &Navigator{entities: entities}
}
