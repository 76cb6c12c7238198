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

// Package argctx recovers the grammatical argument context
// (who does what to whom, what modifies what) of words
// within a decoded semantic encoding.
package argctx

import (
	"fmt"
	"strings"

	"semctx/features"
	"semctx/merror"
	"semctx/navigator"
	"semctx/semenc"

	"github.com/rs/zerolog/log"
)

// HeadWordPolicy specifies how to handle a phrase without
// its head word.
type HeadWordPolicy string

const (

	// PlaceholderHeadWord logs the problem and uses an empty
	// entity of the expected category instead of the head word
	PlaceholderHeadWord HeadWordPolicy = "placeholder"

	// StrictHeadWord makes the resolution fail
	StrictHeadWord HeadWordPolicy = "strict"

	placeholderFeatures = "......................"
)

func (p HeadWordPolicy) Validate() error {
	if p != PlaceholderHeadWord && p != StrictHeadWord {
		return fmt.Errorf("invalid head word policy '%s'", p)
	}
	return nil
}

const (
	RoleOuter              = "Outer"
	RoleModified           = "Modified"
	RoleVerb               = "Verb"
	RoleRole               = "Role"
	RoleAdposition         = "Adposition"
	RoleAgent              = "Agent"
	RolePredicateAdjective = "Predicate Adjective"
	RolePatientNoun        = "Patient Noun"
	RolePatientClause      = "Patient Clause"
	RoleTopicNP            = "Topic NP"
	RolePolarity           = "Polarity"
	RoleDegree             = "Degree"
	RoleUsage              = "Usage"

	NoRole = "No Role"
)

type argumentRule struct {
	filter func(ent semenc.Entity) bool
	key    func(idx int) string
	value  func(idx int) (string, error)
}

// Resolver computes argument contexts. It is immutable and safe
// for concurrent use.
type Resolver struct {
	policy HeadWordPolicy

	npRole        features.Feature
	verbPolarity  features.Feature
	adjDegree     features.Feature
	adjpUsage     features.Feature
	advDegree     features.Feature
	clauseType    features.Feature
	clauseTopic   features.Feature
	clauseVocbAlt features.Feature
}

func (r *Resolver) Policy() HeadWordPolicy {
	return r.policy
}

// Resolve computes the argument context of the entity at idx.
// Entities of categories without any rules yield an empty context.
func (r *Resolver) Resolve(nav *navigator.Navigator, idx int) (Arguments, error) {
	if idx < 0 || idx >= nav.Len() {
		return Arguments{}, merror.InputError{Msg: fmt.Sprintf("entity index %d out of range", idx)}
	}
	res := resolution{Resolver: r, nav: nav}
	switch nav.At(idx).Category {
	case semenc.Noun:
		return res.noun(idx)
	case semenc.Verb:
		return res.verb(idx)
	case semenc.Adjective:
		return res.adjective(idx)
	case semenc.Adverb:
		return res.adverb(idx)
	case semenc.Adposition:
		return res.adposition(idx)
	}
	return Arguments{}, nil
}

// ----

// resolution binds the resolver to a single sentence
type resolution struct {
	*Resolver
	nav *navigator.Navigator
}

func (res resolution) noun(idx int) (Arguments, error) {
	np := res.nav.ContainingPhrase(idx)
	if np == navigator.NotFound {
		return Arguments{}, merror.StructuralError{Violation: merror.NounNotInPhrase, Index: idx}
	}
	ans, err := res.outerContext(np, RoleOuter)
	if err != nil {
		return Arguments{}, err
	}
	if ans.Has(RoleVerb) {
		ans.Set(RoleRole, res.npRole.Decode(res.nav.At(np).Features))

	} else {
		ans.Set(RoleRole, NoRole)
	}
	adp := res.nav.Before(
		idx,
		func(ent semenc.Entity) bool { return ent.Category == semenc.Adposition },
		navigator.Options{SkipPhrases: true, BreakOn: semenc.Entity.IsPhraseStart},
	)
	if adp != navigator.NotFound {
		ans.Set(RoleAdposition, res.nav.At(adp).Format())
	}
	return ans, nil
}

func (res resolution) verb(idx int) (Arguments, error) {
	clause := res.nav.ContainingClause(idx)
	if clause == navigator.NotFound {
		return Arguments{}, merror.StructuralError{Violation: merror.VerbWithoutClause, Index: idx}
	}
	var ans Arguments
	ans.Set(RoleTopicNP, res.clauseTopic.Decode(res.nav.At(clause).Features))
	ans.Set(RolePolarity, res.verbPolarity.Decode(res.nav.At(idx).Features))
	args, err := res.findArguments(
		clause,
		argumentRule{
			filter: func(ent semenc.Entity) bool {
				return ent.Category == semenc.NP && !res.npRole.Is(ent.Features, features.LabelOblique)
			},
			key: func(i int) string {
				return res.npRole.Decode(res.nav.At(i).Features)
			},
			value: res.formatHeadWord,
		},
		argumentRule{
			filter: func(ent semenc.Entity) bool {
				return ent.Category == semenc.AdjP && res.adjpUsage.Is(ent.Features, features.LabelPredicative)
			},
			key:   func(i int) string { return RolePredicateAdjective },
			value: res.formatHeadWord,
		},
		argumentRule{
			filter: func(ent semenc.Entity) bool {
				return ent.IsSubClauseStart() &&
					res.clauseType.IsAny(
						ent.Features, features.LabelPropositionalPatient, features.LabelPropositionalAgent)
			},
			key: func(i int) string {
				return res.clauseType.Decode(res.nav.At(i).Features)
			},
			value: res.formatClause,
		},
	)
	if err != nil {
		return Arguments{}, err
	}
	ans.Merge(args)
	return ans, nil
}

func (res resolution) adjective(idx int) (Arguments, error) {
	adjp := res.nav.ContainingPhrase(idx)
	if adjp == navigator.NotFound {
		return Arguments{}, merror.StructuralError{Violation: merror.AdjectiveNotInPhrase, Index: idx}
	}
	var ans Arguments
	ans.Set(RoleDegree, res.adjDegree.Decode(res.nav.At(idx).Features))
	ans.Set(RoleUsage, res.adjpUsage.Decode(res.nav.At(adjp).Features))

	outer, err := res.outerContext(adjp, RoleModified)
	if err != nil {
		return Arguments{}, err
	}
	if outer.Has(RoleVerb) {
		// predicative usage, the agent is the subject of the clause
		agent := res.nav.Before(
			adjp,
			func(ent semenc.Entity) bool {
				return ent.Category == semenc.NP && res.npRole.Is(ent.Features, features.LabelAgent)
			},
			navigator.Options{SkipClauses: true, BreakOn: semenc.Entity.IsAnyClauseStart},
		)
		if agent != navigator.NotFound {
			v, err := res.formatHeadWord(agent)
			if err != nil {
				return Arguments{}, err
			}
			outer.Set(RoleAgent, v)
		}
	}
	ans.Merge(outer)

	args, err := res.findArguments(
		adjp,
		argumentRule{
			filter: func(ent semenc.Entity) bool { return ent.Category == semenc.NP },
			key:    func(i int) string { return RolePatientNoun },
			value:  res.formatHeadWord,
		},
		argumentRule{
			filter: func(ent semenc.Entity) bool {
				return ent.IsSubClauseStart() &&
					res.clauseType.Is(ent.Features, features.LabelAttributivePatient)
			},
			key:   func(i int) string { return RolePatientClause },
			value: res.formatClause,
		},
	)
	if err != nil {
		return Arguments{}, err
	}
	ans.Merge(args)
	return ans, nil
}

// adverb resolves the degree and the context of the modified
// word. An adverb outside of any AdvP has nothing to modify and
// its context contains the degree only.
func (res resolution) adverb(idx int) (Arguments, error) {
	var ans Arguments
	ans.Set(RoleDegree, res.advDegree.Decode(res.nav.At(idx).Features))
	advp := res.nav.ContainingPhrase(idx)
	if advp == navigator.NotFound {
		return ans, nil
	}
	outer, err := res.outerContext(advp, RoleModified)
	if err != nil {
		return Arguments{}, err
	}
	ans.Merge(outer)
	return ans, nil
}

func (res resolution) adposition(idx int) (Arguments, error) {
	phrase := res.nav.ContainingPhrase(idx)
	if phrase == navigator.NotFound {
		return Arguments{}, nil
	}
	head, err := res.headWord(phrase)
	if err != nil {
		return Arguments{}, err
	}
	var ans Arguments
	ans.Set(head.Category.String(), head.Format())
	outer, err := res.outerContext(phrase, RoleOuter)
	if err != nil {
		return Arguments{}, err
	}
	ans.Merge(outer)
	return ans, nil
}

// outerContext describes what the phrase at phraseIdx relates to.
// For a phrase nested in another phrase, this is the outer phrase's
// head word. Otherwise it is the verb of the clause.
func (res resolution) outerContext(phraseIdx int, label string) (Arguments, error) {
	var ans Arguments
	outer := res.nav.ContainingPhrase(phraseIdx)
	if outer != navigator.NotFound {
		head, err := res.headWord(outer)
		if err != nil {
			return Arguments{}, err
		}
		ans.Set(strings.TrimSpace(label+" "+head.Category.String()), head.Format())
		return ans, nil
	}
	verb := res.nav.ClauseVerb(phraseIdx)
	if verb != navigator.NotFound {
		ans.Set(RoleVerb, res.nav.At(verb).Format())
	}
	return ans, nil
}

func (res resolution) headWord(phraseIdx int) (semenc.Entity, error) {
	headIdx := res.nav.HeadWord(phraseIdx)
	if headIdx != navigator.NotFound {
		return res.nav.At(headIdx), nil
	}
	phrase := res.nav.At(phraseIdx)
	expected := navigator.HeadCategories(phrase.Category)
	if res.policy == StrictHeadWord {
		return semenc.Entity{}, merror.StructuralError{
			Violation: merror.MissingHeadWord,
			Index:     phraseIdx,
			Detail:    fmt.Sprintf("phrase %s", phrase.Category),
		}
	}
	log.Warn().
		Int("phraseIndex", phraseIdx).
		Str("phrase", phrase.Category.String()).
		Msg("invalid semantic encoding - missing head word, using placeholder")
	placeholder := semenc.Entity{Features: placeholderFeatures}
	if len(expected) > 0 {
		placeholder.Category = expected[0]
	}
	return placeholder, nil
}

func (res resolution) formatHeadWord(phraseIdx int) (string, error) {
	head, err := res.headWord(phraseIdx)
	if err != nil {
		return "", err
	}
	return head.Format(), nil
}

// formatClause renders a subordinate clause as its verb in brackets
func (res resolution) formatClause(clauseIdx int) (string, error) {
	verb := res.nav.ClauseVerb(clauseIdx + 1)
	if verb == navigator.NotFound {
		return "[]", nil
	}
	return "[" + res.nav.At(verb).Format() + "]", nil
}

// findArguments collects the direct children of the phrase or clause
// at start matching any of the rules. The first matching rule decides
// and only the first value of each key is kept (i.e. for coordinate
// phrases or clauses, only the first one is taken).
func (res resolution) findArguments(start int, rules ...argumentRule) (Arguments, error) {
	var ans Arguments
	var err error
	res.nav.TopLevel(start, func(idx int, ent semenc.Entity) bool {
		for _, rule := range rules {
			if !rule.filter(ent) {
				continue
			}
			key := rule.key(idx)
			if key != "" && !ans.Has(key) {
				var value string
				value, err = rule.value(idx)
				if err != nil {
					return false
				}
				ans.Set(key, value)
			}
			break
		}
		return true
	})
	if err != nil {
		return Arguments{}, err
	}
	return ans, nil
}

// NewResolver creates a resolver using the provided feature tables.
func NewResolver(tables *features.Tables, policy HeadWordPolicy) *Resolver {
	if policy == "" {
		policy = PlaceholderHeadWord
	}
	return &Resolver{
		policy:        policy,
		npRole:        tables.Feature(features.NP, features.SemanticRole),
		verbPolarity:  tables.Feature(features.Verb, features.Polarity),
		adjDegree:     tables.Feature(features.Adj, features.Degree),
		adjpUsage:     tables.Feature(features.AdjP, features.Usage),
		advDegree:     tables.Feature(features.Adv, features.Degree),
		clauseType:    tables.Feature(features.Clause, features.Type),
		clauseTopic:   tables.Feature(features.Clause, features.TopicNP),
		clauseVocbAlt: tables.Feature(features.Clause, features.VocabularyAlternate),
	}
}
