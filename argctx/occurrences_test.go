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
	"errors"
	"testing"

	"semctx/features"
	"semctx/merror"
	"semctx/navigator"
	"semctx/semenc"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pairedSentence(clause, verb string) []string {
	return []string{
		clause,      // 0
		"n:SA:(",    // 1
		"N:1A:Ruth", // 2
		")",         // 3
		"v:S....:(", // 4
		verb,        // 5
		")",         // 6
		"}",         // 7
	}
}

func TestSimplePairingOccurrences(t *testing.T) {
	nav := sentence(nil, pairedSentence(mainClause, `V:1A....A:cry\weep`)...)
	occ, err := newTestResolver().Occurrences(nav, 5)
	require.NoError(t, err)
	require.Len(t, occ, 2)

	assert.Equal(t, "cry", occ[0].Concept.Stem)
	assert.Equal(t, 5, occ[0].Index)
	assert.Equal(
		t,
		`{"Topic NP":"Most Agent-Like","Polarity":"Affirmative","Agent":"Ruth-A","Pairing":"weep-A"}`,
		occ[0].Context.String(),
	)
	assert.Equal(t, "weep", occ[1].Concept.Stem)
	assert.Equal(
		t,
		`{"Topic NP":"Most Agent-Like","Polarity":"Affirmative","Agent":"Ruth-A","Pairing":"cry-A"}`,
		occ[1].Context.String(),
	)
	assert.False(t, occ[0].Context.Has(RoleComplexHandling))
	assert.False(t, occ[1].Context.Has(RoleComplexHandling))

	// the paired verb is rendered with both concepts
	occ, err = newTestResolver().Occurrences(nav, 2)
	require.NoError(t, err)
	require.Len(t, occ, 1)
	assert.Equal(t, `{"Verb":"cry-A\\weep-A","Role":"Agent"}`, occ[0].Context.String())
}

func TestComplexPairingOccurrences(t *testing.T) {
	nav := sentence(nil, pairedSentence(mainClause, "V:1A....A:cry/weep")...)
	occ, err := newTestResolver().Occurrences(nav, 5)
	require.NoError(t, err)
	require.Len(t, occ, 2)
	h, _ := occ[0].Context.Get(RoleComplexHandling)
	assert.Equal(t, HandlingNone, h)
	h, _ = occ[1].Context.Get(RoleComplexHandling)
	assert.Equal(t, HandlingPairing, h)
	assert.True(t, occ[1].Concept.IsComplex)
}

func TestComplexUnpaired(t *testing.T) {
	lex := make(semenc.ComplexSet)
	lex.Add("weep", "A", semenc.Verb)
	r := newTestResolver()

	nav := sentence(lex, pairedSentence(mainClause, "V:1A....A:weep")...)
	occ, err := r.Occurrences(nav, 5)
	require.NoError(t, err)
	require.Len(t, occ, 1)
	h, _ := occ[0].Context.Get(RoleComplexHandling)
	assert.Equal(t, HandlingNone, h)

	nav = sentence(lex, pairedSentence(altMainClause, "V:1A....A:weep")...)
	occ, err = r.Occurrences(nav, 5)
	require.NoError(t, err)
	h, _ = occ[0].Context.Get(RoleComplexHandling)
	assert.Equal(t, HandlingComplexAlternate, h)

	// non-complex concepts never get the handling info
	occ, err = r.Occurrences(nav, 2)
	require.NoError(t, err)
	assert.False(t, occ[0].Context.Has(RoleComplexHandling))
}

func TestComplexAlternateInOuterClause(t *testing.T) {
	lex := make(semenc.ComplexSet)
	lex.Add("go", "A", semenc.Verb)
	nav := sentence(
		lex,
		altMainClause,          // 0
		"v:S....:(",            // 1
		"V:1B....A:tell",       // 2
		")",                    // 3
		"c:PDp00NNNNNNNNNNN:[", // 4
		"v:S....:(",            // 5
		"V:1A....A:go",         // 6
		")",                    // 7
		"]",                    // 8
		"}",                    // 9
	)
	occ, err := newTestResolver().Occurrences(nav, 6)
	require.NoError(t, err)
	h, _ := occ[0].Context.Get(RoleComplexHandling)
	assert.Equal(t, HandlingComplexAlternate, h)
}

func TestOccurrencesWithoutConcept(t *testing.T) {
	nav := sentence(nil, pairedSentence(mainClause, "V:1A....A:cry")...)
	occ, err := newTestResolver().Occurrences(nav, 1)
	require.NoError(t, err)
	assert.Len(t, occ, 0)
}

func TestSentenceOccurrences(t *testing.T) {
	dec := semenc.NewDecoder(features.Default(), nil)
	r := newTestResolver()

	occ, err := r.SentenceOccurrences(navigator.New(dec.Decode("")))
	require.NoError(t, err)
	assert.Len(t, occ, 0)

	nav := sentence(nil, pairedSentence(mainClause, `V:1A....A:cry\weep`)...)
	occ, err = r.SentenceOccurrences(nav)
	require.NoError(t, err)
	require.Len(t, occ, 3)
	assert.Equal(t, "Ruth", occ[0].Concept.Stem)
	assert.Equal(t, semenc.Noun, occ[0].Concept.PartOfSpeech)
	assert.Equal(t, "cry", occ[1].Concept.Stem)
	assert.Equal(t, "weep", occ[2].Concept.Stem)

	nav = sentence(nil, mainClause, "N:1A:God", "}")
	_, err = r.SentenceOccurrences(nav)
	assert.True(t, errors.Is(err, merror.NounNotInPhrase))
}

func TestNormalize(t *testing.T) {
	var args Arguments
	args.Set("Topic NP", "Most Agent-Like")
	args.Set("Verb", `cry-A\weep-A`)
	args.Set("Agent", "Ruth-A")
	args.Set(RolePairing, "cry-A")
	args.Set(RoleComplexHandling, HandlingPairing)
	assert.Equal(
		t,
		`{"Topic NP":"Most Agent-Like","Verb":"weep-A","Agent":"Ruth-A"}`,
		Normalize(args).String(),
	)
}

func TestExplications(t *testing.T) {
	r := newTestResolver()
	lex := make(semenc.ComplexSet)
	lex.Add("weep", "A", semenc.Verb)
	base, err := r.SentenceOccurrences(
		sentence(lex, pairedSentence(mainClause, "V:1A....A:cry/weep")...))
	require.NoError(t, err)

	// same complex verb, same context
	variant, err := r.SentenceOccurrences(
		sentence(lex, pairedSentence(mainClause, "V:1A....A:weep")...))
	require.NoError(t, err)
	assert.Len(t, Explications(base, variant), 0)

	// the complex verb is not present in the base sentence
	base, err = r.SentenceOccurrences(
		sentence(lex, pairedSentence(mainClause, "V:1A....A:cry")...))
	require.NoError(t, err)
	expl := Explications(base, variant)
	require.Len(t, expl, 1)
	assert.Equal(t, "weep", expl[0].Concept.Stem)
	assert.Equal(
		t,
		`{"Topic NP":"Most Agent-Like","Polarity":"Affirmative","Agent":"Ruth-A","Complex Handling":"Explication"}`,
		expl[0].Context.String(),
	)
}

func TestOccurrencesOutOfRange(t *testing.T) {
	nav := sentence(nil, pairedSentence(mainClause, "V:1A....A:cry")...)
	r := newTestResolver()
	for _, idx := range []int{-1, nav.Len(), nav.Len() + 5} {
		occ, err := r.Occurrences(nav, idx)
		var ierr merror.InputError
		assert.True(t, errors.As(err, &ierr), "index %d", idx)
		assert.Len(t, occ, 0)
	}
}
