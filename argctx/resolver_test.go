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
	"strings"
	"testing"

	"semctx/features"
	"semctx/merror"
	"semctx/navigator"
	"semctx/semenc"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	mainClause    = "c:IDp00NNNNNNNNNNN:{"
	altMainClause = "c:IDp00NNNNNNNNA:{"
)

// sentence builds a navigator from units in the form `kind:features:surface`
// or plain boundary surfaces
func sentence(lex semenc.Lexicon, units ...string) *navigator.Navigator {
	var enc strings.Builder
	for _, u := range units {
		parts := strings.SplitN(u, ":", 3)
		if len(parts) == 3 {
			enc.WriteString(semenc.EncodeUnit(parts[0], parts[1], parts[2]))

		} else {
			enc.WriteString(semenc.EncodeUnit("", "", u))
		}
	}
	return navigator.New(semenc.NewDecoder(features.Default(), lex).Decode(enc.String()))
}

func newTestResolver() *Resolver {
	return NewResolver(features.Default(), PlaceholderHeadWord)
}

func resolveJSON(t *testing.T, r *Resolver, nav *navigator.Navigator, idx int) string {
	args, err := r.Resolve(nav, idx)
	require.NoError(t, err)
	return args.String()
}

func TestVerbContext(t *testing.T) {
	nav := sentence(
		nil,
		mainClause,         // 0
		"n:SA:(",           // 1
		"N:1A:God",         // 2
		")",                // 3
		"v:S....:(",        // 4
		"V:1A....N:forget", // 5
		")",                // 6
		"n:SP:(",           // 7
		"N:1B:people",      // 8
		")",                // 9
		"}",                // 10
	)
	assert.Equal(
		t,
		`{"Topic NP":"Most Agent-Like","Polarity":"Negative","Agent":"God-A","Patient":"people-B"}`,
		resolveJSON(t, newTestResolver(), nav, 5),
	)
	assert.Equal(
		t,
		`{"Verb":"forget-A","Role":"Agent"}`,
		resolveJSON(t, newTestResolver(), nav, 2),
	)
	assert.Equal(
		t,
		`{"Verb":"forget-A","Role":"Patient"}`,
		resolveJSON(t, newTestResolver(), nav, 8),
	)
}

func TestVerbFirstCoordinateWins(t *testing.T) {
	nav := sentence(
		nil,
		mainClause,       // 0
		"n:FA:(",         // 1
		"N:1A:Elimelech", // 2
		")",              // 3
		"C:1B:and",       // 4
		"n:LA:(",         // 5
		"N:1A:Naomi",     // 6
		")",              // 7
		"v:S....:(",      // 8
		"V:1A....A:move", // 9
		")",              // 10
		"n:Ss:(",         // 11
		"P:1A:from",      // 12
		"N:1A:Bethlehem", // 13
		")",              // 14
		"n:SN:(",         // 15
		"N:1A:time",      // 16
		")",              // 17
		"}",              // 18
	)
	r := newTestResolver()
	assert.Equal(
		t,
		`{"Topic NP":"Most Agent-Like","Polarity":"Affirmative","Agent":"Elimelech-A","Source":"Bethlehem-A"}`,
		resolveJSON(t, r, nav, 9),
	)
	assert.Equal(
		t,
		`{"Verb":"move-A","Role":"Source","Adposition":"from-A"}`,
		resolveJSON(t, r, nav, 13),
	)
	assert.Equal(
		t,
		`{"Noun":"Bethlehem-A","Verb":"move-A"}`,
		resolveJSON(t, r, nav, 12),
	)
	// conjunctions have no rules
	assert.Equal(t, `{}`, resolveJSON(t, r, nav, 4))
	// an oblique NP is not an argument but it still relates to the verb
	assert.Equal(t, `{"Verb":"move-A","Role":"Oblique"}`, resolveJSON(t, r, nav, 16))
}

func TestNounInNestedPhrase(t *testing.T) {
	nav := sentence(
		nil,
		mainClause,      // 0
		"n:SP:(",        // 1
		"n:SN:(",        // 2
		"P:1A:of",       // 3
		"N:1B:king",     // 4
		")",             // 5
		"N:1C:son",      // 6
		")",             // 7
		"v:S....:(",     // 8
		"V:1A....A:see", // 9
		")",             // 10
		"}",             // 11
	)
	r := newTestResolver()
	assert.Equal(
		t,
		`{"Outer Noun":"son-C","Role":"No Role","Adposition":"of-A"}`,
		resolveJSON(t, r, nav, 4),
	)
	assert.Equal(
		t,
		`{"Noun":"king-B","Outer Noun":"son-C"}`,
		resolveJSON(t, r, nav, 3),
	)
	assert.Equal(
		t,
		`{"Verb":"see-A","Role":"Patient"}`,
		resolveJSON(t, r, nav, 6),
	)
}

func TestPredicativeAdjective(t *testing.T) {
	nav := sentence(
		nil,
		mainClause,     // 0
		"n:SA:(",       // 1
		"N:1A:Naomi",   // 2
		")",            // 3
		"v:S....:(",    // 4
		"V:1D....A:be", // 5
		")",            // 6
		"j:SP:(",       // 7
		"A:1AT:old",    // 8
		")",            // 9
		"}",            // 10
	)
	r := newTestResolver()
	assert.Equal(
		t,
		`{"Degree":"'too'","Usage":"Predicative","Verb":"be-D","Agent":"Naomi-A"}`,
		resolveJSON(t, r, nav, 8),
	)
	assert.Equal(
		t,
		`{"Topic NP":"Most Agent-Like","Polarity":"Affirmative","Agent":"Naomi-A","Predicate Adjective":"old-A"}`,
		resolveJSON(t, r, nav, 5),
	)
}

func TestAdjectiveWithPatientClause(t *testing.T) {
	nav := sentence(
		nil,
		mainClause,             // 0
		"n:SA:(",               // 1
		"N:1A:Naomi",           // 2
		")",                    // 3
		"v:S....:(",            // 4
		"V:1D....A:be",         // 5
		")",                    // 6
		"j:SP:(",               // 7
		"d:S.:(",               // 8
		"a:1AV:very",           // 9
		")",                    // 10
		"A:1AN:able",           // 11
		"c:pDp00NNNNNNNNNNN:[", // 12
		"v:S....:(",            // 13
		"V:1A....A:go",         // 14
		")",                    // 15
		"]",                    // 16
		")",                    // 17
		"}",                    // 18
	)
	r := newTestResolver()
	assert.Equal(
		t,
		`{"Degree":"No Degree","Usage":"Predicative","Verb":"be-D","Agent":"Naomi-A","Patient Clause":"[go-A]"}`,
		resolveJSON(t, r, nav, 11),
	)
	assert.Equal(
		t,
		`{"Degree":"Intensified","Modified Adjective":"able-A"}`,
		resolveJSON(t, r, nav, 9),
	)
	assert.Equal(
		t,
		`{"Topic NP":"Most Agent-Like","Polarity":"Affirmative"}`,
		resolveJSON(t, r, nav, 14),
	)
}

func TestAttributiveAdjectiveWithPatientNoun(t *testing.T) {
	nav := sentence(
		nil,
		mainClause,      // 0
		"n:SA:(",        // 1
		"j:SA:(",        // 2
		"A:1BN:kind",    // 3
		"n:SP:(",        // 4
		"P:1A:to",       // 5
		"N:1A:Naomi",    // 6
		")",             // 7
		")",             // 8
		"N:1A:husband",  // 9
		")",             // 10
		"v:S....:(",     // 11
		"V:1A....A:die", // 12
		")",             // 13
		"}",             // 14
	)
	r := newTestResolver()
	assert.Equal(
		t,
		`{"Degree":"No Degree","Usage":"Attributive","Modified Noun":"husband-A","Patient Noun":"Naomi-A"}`,
		resolveJSON(t, r, nav, 3),
	)
	assert.Equal(
		t,
		`{"Outer Adjective":"kind-B","Role":"No Role","Adposition":"to-A"}`,
		resolveJSON(t, r, nav, 6),
	)
}

func TestPropositionalPatient(t *testing.T) {
	nav := sentence(
		nil,
		mainClause,             // 0
		"n:SA:(",               // 1
		"N:1A:Naomi",           // 2
		")",                    // 3
		"v:S....:(",            // 4
		"V:1B....N:tell",       // 5
		")",                    // 6
		"c:PDp00NNNNNNNNNNN:[", // 7
		"v:S....:(",            // 8
		"V:1A....A:go",         // 9
		")",                    // 10
		"]",                    // 11
		"c:PDp00NNNNNNNNNNN:[", // 12
		"v:S....:(",            // 13
		"V:1A....A:stay",       // 14
		")",                    // 15
		"]",                    // 16
		"}",                    // 17
	)
	assert.Equal(
		t,
		`{"Topic NP":"Most Agent-Like","Polarity":"Negative","Agent":"Naomi-A","Propositional Patient":"[go-A]"}`,
		resolveJSON(t, newTestResolver(), nav, 5),
	)
}

func TestEmptyClauseFormat(t *testing.T) {
	nav := sentence(
		nil,
		mainClause,             // 0
		"v:S....:(",            // 1
		"V:1A....A:say",        // 2
		")",                    // 3
		"c:ADp00NNNNNNNNNNN:[", // 4
		"]",                    // 5
		"}",                    // 6
	)
	assert.Equal(
		t,
		`{"Topic NP":"Most Agent-Like","Polarity":"Affirmative","Propositional Agent":"[]"}`,
		resolveJSON(t, newTestResolver(), nav, 2),
	)
}

func TestAdverb(t *testing.T) {
	nav := sentence(
		nil,
		mainClause,       // 0
		"n:SA:(",         // 1
		"N:1A:Ruth",      // 2
		")",              // 3
		"v:S....:(",      // 4
		"V:1A....A:weep", // 5
		")",              // 6
		"d:S.:(",         // 7
		"a:1AV:bitterly", // 8
		")",              // 9
		"a:1CN:also",     // 10
		"P:1C:when",      // 11
		"}",              // 12
	)
	r := newTestResolver()
	assert.Equal(t, `{"Degree":"Intensified","Verb":"weep-A"}`, resolveJSON(t, r, nav, 8))
	assert.Equal(t, `{"Degree":"No Degree"}`, resolveJSON(t, r, nav, 10))
	assert.Equal(t, `{}`, resolveJSON(t, r, nav, 11))
}

func TestStructuralErrors(t *testing.T) {
	r := newTestResolver()
	tests := []struct {
		units     []string
		idx       int
		violation merror.Violation
	}{
		{[]string{mainClause, "N:1A:God", "}"}, 1, merror.NounNotInPhrase},
		{[]string{mainClause, "A:1AN:good", "}"}, 1, merror.AdjectiveNotInPhrase},
		{[]string{"v:S....:(", "V:1A....A:go", ")"}, 1, merror.VerbWithoutClause},
	}
	for _, tc := range tests {
		_, err := r.Resolve(sentence(nil, tc.units...), tc.idx)
		assert.True(t, errors.Is(err, tc.violation))
		var serr merror.StructuralError
		if assert.True(t, errors.As(err, &serr)) {
			assert.Equal(t, tc.idx, serr.Index)
		}
	}
}

func TestResolveOutOfRange(t *testing.T) {
	nav := sentence(nil, mainClause, "}")
	_, err := newTestResolver().Resolve(nav, 2)
	var ierr merror.InputError
	assert.True(t, errors.As(err, &ierr))
}

func missingHeadSentence() *navigator.Navigator {
	return sentence(
		nil,
		mainClause,     // 0
		"n:SA:(",       // 1
		"j:SA:(",       // 2
		"A:1AN:big",    // 3
		")",            // 4
		")",            // 5
		"v:S....:(",    // 6
		"V:1A....A:go", // 7
		")",            // 8
		"}",            // 9
	)
}

func TestMissingHeadWordPlaceholder(t *testing.T) {
	nav := missingHeadSentence()
	r := newTestResolver()
	assert.Equal(t, PlaceholderHeadWord, r.Policy())
	assert.Equal(
		t,
		`{"Topic NP":"Most Agent-Like","Polarity":"Affirmative","Agent":"-"}`,
		resolveJSON(t, r, nav, 7),
	)
	assert.Equal(
		t,
		`{"Degree":"No Degree","Usage":"Attributive","Modified Noun":"-"}`,
		resolveJSON(t, r, nav, 3),
	)
}

func TestMissingHeadWordStrict(t *testing.T) {
	nav := missingHeadSentence()
	r := NewResolver(features.Default(), StrictHeadWord)
	_, err := r.Resolve(nav, 7)
	assert.True(t, errors.Is(err, merror.MissingHeadWord))
	var serr merror.StructuralError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, 1, serr.Index)

	_, err = r.Resolve(nav, 3)
	assert.True(t, errors.Is(err, merror.MissingHeadWord))
}

func TestHeadWordPolicyValidate(t *testing.T) {
	assert.NoError(t, PlaceholderHeadWord.Validate())
	assert.NoError(t, StrictHeadWord.Validate())
	assert.Error(t, HeadWordPolicy("lenient").Validate())
	assert.Equal(t, PlaceholderHeadWord, NewResolver(features.Default(), "").Policy())
}

func TestContextDeterminism(t *testing.T) {
	nav := sentence(
		nil,
		mainClause,
		"n:SA:(", "N:1A:God", ")",
		"v:S....:(", "V:1A....N:forget", ")",
		"n:SP:(", "N:1B:people", ")",
		"}",
	)
	r := newTestResolver()
	for i := 0; i < nav.Len(); i++ {
		a1, err1 := r.Resolve(nav, i)
		a2, err2 := r.Resolve(nav, i)
		assert.Equal(t, err1, err2)
		assert.True(t, a1.Equal(a2))
	}
}
