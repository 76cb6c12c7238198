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

package argctx

import (
	"fmt"
	"strings"

	"semctx/features"
	"semctx/merror"
	"semctx/navigator"
	"semctx/semenc"
)

const (
	RolePairing         = "Pairing"
	RoleComplexHandling = "Complex Handling"

	HandlingNone             = "None"
	HandlingPairing          = "Pairing"
	HandlingComplexAlternate = "Complex Alternate"
	HandlingExplication      = "Explication"
)

// Occurrence is a single concept found in a sentence along
// with its argument context.
type Occurrence struct {
	Index   int            `json:"index"`
	Concept semenc.Concept `json:"concept"`
	Context Arguments      `json:"context"`
}

// Occurrences returns the concept occurrences of the entity at idx.
// An entity without a concept yields nothing, a paired entity yields
// one occurrence per concept.
func (r *Resolver) Occurrences(nav *navigator.Navigator, idx int) ([]Occurrence, error) {
	if idx < 0 || idx >= nav.Len() {
		return []Occurrence{}, merror.InputError{Msg: fmt.Sprintf("entity index %d out of range", idx)}
	}
	ent := nav.At(idx)
	if ent.Concept == nil {
		return []Occurrence{}, nil
	}
	args, err := r.Resolve(nav, idx)
	if err != nil {
		return []Occurrence{}, err
	}

	if ent.Pairing != nil {
		anyComplex := ent.Concept.IsComplex || ent.Pairing.IsComplex
		ans := make([]Occurrence, 0, 2)
		for _, pair := range [][2]*semenc.Concept{
			{ent.Concept, ent.Pairing},
			{ent.Pairing, ent.Concept},
		} {
			ctx := args.Clone()
			ctx.Set(RolePairing, pair[1].Format())
			if anyComplex {
				if pair[0].IsComplex {
					ctx.Set(RoleComplexHandling, HandlingPairing)

				} else {
					ctx.Set(RoleComplexHandling, HandlingNone)
				}
			}
			ans = append(ans, Occurrence{Index: idx, Concept: *pair[0], Context: ctx})
		}
		return ans, nil
	}

	if ent.Concept.IsComplex {
		if r.usesAlternate(nav, idx) {
			args.Set(RoleComplexHandling, HandlingComplexAlternate)

		} else {
			args.Set(RoleComplexHandling, HandlingNone)
		}
	}
	return []Occurrence{{Index: idx, Concept: *ent.Concept, Context: args}}, nil
}

// usesAlternate tells whether any of the clauses containing
// the entity asks for an alternate vocabulary
func (r *Resolver) usesAlternate(nav *navigator.Navigator, idx int) bool {
	for clause := nav.ContainingClause(idx); clause != navigator.NotFound; clause = nav.ContainingClause(clause) {
		if r.clauseVocbAlt.Is(nav.At(clause).Features, features.LabelUseAlternate) {
			return true
		}
	}
	return false
}

// SentenceOccurrences resolves all the concepts of a sentence in the
// order of their entities. Any error aborts the whole sentence.
func (r *Resolver) SentenceOccurrences(nav *navigator.Navigator) ([]Occurrence, error) {
	ans := make([]Occurrence, 0, nav.Len()/2)
	for i := 0; i < nav.Len(); i++ {
		occ, err := r.Occurrences(nav, i)
		if err != nil {
			return []Occurrence{}, err
		}
		ans = append(ans, occ...)
	}
	return ans, nil
}

// ----

// Normalize prepares an occurrence context of a complex concept
// for comparison with a context coming from a differently expanded
// encoding. Pairing related arguments are removed and paired values
// are reduced to their second (complex) half.
func Normalize(args Arguments) Arguments {
	var ans Arguments
	args.Without(RolePairing, RoleComplexHandling).ForEach(func(role, value string) {
		if i := strings.IndexAny(value, `/\`); i >= 0 {
			value = value[i+1:]
		}
		ans.Set(role, value)
	})
	return ans
}

// Explications finds complex concept occurrences of the variant
// sentence (with complex concepts inserted) not matched by any complex
// concept occurrence of the base sentence. Such concepts are explicated
// in the base sentence. The returned occurrences carry normalized
// contexts marked as explications.
func Explications(base, variant []Occurrence) []Occurrence {
	normBase := make([]Occurrence, 0, len(base))
	for _, occ := range base {
		if occ.Concept.IsComplex {
			normBase = append(normBase, Occurrence{Concept: occ.Concept, Context: Normalize(occ.Context)})
		}
	}
	ans := make([]Occurrence, 0, 4)
	for _, occ := range variant {
		if !occ.Concept.IsComplex {
			continue
		}
		norm := Normalize(occ.Context)
		var matched bool
		for _, b := range normBase {
			if b.Concept.SameAs(occ.Concept) && b.Context.Equal(norm) {
				matched = true
				break
			}
		}
		if !matched {
			norm.Set(RoleComplexHandling, HandlingExplication)
			ans = append(ans, Occurrence{Index: occ.Index, Concept: occ.Concept, Context: norm})
		}
	}
	return ans
}
