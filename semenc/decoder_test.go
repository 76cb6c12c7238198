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
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"semctx/features"
	"semctx/merror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const verseEnc = `~\wd ~\tg c-IDp00NNNNNNNNNNNNN.............~\lu {` +
	`~\wd ~\tg C-1A.....~\lu then` +
	`~\wd ~\tg n-SAN.N........~\lu (` +
	`~\wd ~\tg N-1A1SDAnK3NN........~\lu God` +
	`~\wd ~\tg ~\lu )` +
	`~\wd ~\tg v-S.....~\lu (` +
	`~\wd ~\tg V-1A.....~\lu cry/weep` +
	`~\wd ~\tg ~\lu )` +
	`~\wd ~\tg ~\lu }` +
	`~\wd ~\tg .-~\lu .`

func newTestDecoder(lex Lexicon) *Decoder {
	return NewDecoder(features.Default(), lex)
}

func TestDecode(t *testing.T) {
	ents := newTestDecoder(nil).Decode(verseEnc)
	require.Len(t, ents, 10)

	assert.Equal(t, "c", ents[0].Kind)
	assert.Equal(t, Clause, ents[0].Category)
	assert.Equal(t, "IDp00NNNNNNNNNNNNN.............", ents[0].Features)
	assert.Equal(t, "{", ents[0].Surface)
	assert.Equal(t, "", ents[0].Sense)
	assert.Nil(t, ents[0].Concept)

	assert.Equal(t, Conjunction, ents[1].Category)
	assert.Equal(t, "A", ents[1].Sense)
	require.NotNil(t, ents[1].Concept)
	assert.Equal(t, Concept{Stem: "then", Sense: "A", PartOfSpeech: Conjunction}, *ents[1].Concept)

	assert.Equal(t, Noun, ents[3].Category)
	assert.Equal(t, "God-A", ents[3].Format())

	assert.Equal(t, "", ents[4].Kind)
	assert.Equal(t, NoCategory, ents[4].Category)
	assert.Equal(t, "", ents[4].Features)
	assert.True(t, ents[4].IsPhraseEnd())

	assert.Equal(t, Period, ents[9].Category)
	assert.Equal(t, "", ents[9].Features)
	assert.Equal(t, "", ents[9].Sense)
}

func TestDecodeEmpty(t *testing.T) {
	ents := newTestDecoder(nil).Decode("")
	assert.NotNil(t, ents)
	assert.Len(t, ents, 0)
}

func TestDecodeIgnoresGarbage(t *testing.T) {
	enc := `garbage ~\wd ~\tg N-1B.....~\lu house ~~ ~\tg x ~\wd ~\tg ~\lu )`
	ents := newTestDecoder(nil).Decode(enc)
	require.Len(t, ents, 2)
	assert.Equal(t, "house ", ents[0].Surface)
	assert.Equal(t, ")", ents[1].Surface)
}

func TestDecodeUnknownKind(t *testing.T) {
	ents := newTestDecoder(nil).Decode(`~\wd ~\tg x-1A...~\lu foo`)
	require.Len(t, ents, 1)
	assert.Equal(t, NoCategory, ents[0].Category)
	assert.Equal(t, "", ents[0].Sense)
	assert.Nil(t, ents[0].Concept)
}

func TestRoundTrip(t *testing.T) {
	encodings := []string{
		verseEnc,
		"",
		`~\wd ~\tg .-~\lu .`,
		`~\wd ~\tg ~\lu [~\wd ~\tg a-1B..~\lu very\quite~\wd ~\tg ~\lu ]`,
	}
	dec := newTestDecoder(nil)
	for _, enc := range encodings {
		assert.Equal(t, enc, Encode(dec.Decode(enc)))
	}
}

func TestComplexPairing(t *testing.T) {
	ents := newTestDecoder(nil).Decode(verseEnc)
	verb := ents[6]
	require.NotNil(t, verb.Concept)
	require.NotNil(t, verb.Pairing)
	assert.Equal(t, "cry", verb.Concept.Stem)
	assert.False(t, verb.Concept.IsComplex)
	assert.Equal(t, "weep", verb.Pairing.Stem)
	assert.Equal(t, "A", verb.Pairing.Sense)
	assert.Equal(t, Verb, verb.Pairing.PartOfSpeech)
	assert.True(t, verb.Pairing.IsComplex)
	assert.Equal(t, "cry-A/weep-A", verb.Format())
}

func TestSimplePairing(t *testing.T) {
	ents := newTestDecoder(nil).Decode(`~\wd ~\tg A-1A.....~\lu sad\bitter`)
	require.Len(t, ents, 1)
	require.NotNil(t, ents[0].Pairing)
	assert.False(t, ents[0].Pairing.IsComplex)
	assert.False(t, ents[0].ComplexPairing)
	assert.Equal(t, `sad-A\bitter-A`, ents[0].Format())
}

func TestLexiconMarksComplex(t *testing.T) {
	lex := make(ComplexSet)
	lex.Add("bitter", "A", Adjective)
	lex.Add("God", "A", Noun)
	dec := newTestDecoder(lex)

	ents := dec.Decode(`~\wd ~\tg A-1A.....~\lu sad\bitter`)
	assert.False(t, ents[0].Concept.IsComplex)
	assert.True(t, ents[0].Pairing.IsComplex)

	ents = dec.Decode(verseEnc)
	assert.True(t, ents[3].Concept.IsComplex)
	assert.Equal(t, 2, lex.Size())
}

func TestSplitPairingEdgeCases(t *testing.T) {
	stem, paired, cmpl := splitPairing("/")
	assert.Equal(t, "/", stem)
	assert.Equal(t, "", paired)
	assert.False(t, cmpl)

	stem, paired, _ = splitPairing("and/")
	assert.Equal(t, "and/", stem)
	assert.Equal(t, "", paired)
}

func TestCategoryJSON(t *testing.T) {
	data, err := json.Marshal(Concept{Stem: "be", Sense: "D", PartOfSpeech: Verb})
	require.NoError(t, err)
	assert.Equal(t, `{"stem":"be","sense":"D","part_of_speech":"Verb","is_complex":false}`, string(data))

	var c Concept
	require.NoError(t, json.Unmarshal(data, &c))
	assert.Equal(t, Verb, c.PartOfSpeech)

	assert.Error(t, json.Unmarshal([]byte(`{"part_of_speech":"Foo"}`), &c))
}

func TestParseCategory(t *testing.T) {
	c, ok := ParseCategory("Adposition")
	assert.True(t, ok)
	assert.Equal(t, Adposition, c)
	_, ok = ParseCategory("Preposition")
	assert.False(t, ok)
	assert.Equal(t, "", Category(100).String())
}

func TestValidate(t *testing.T) {
	dec := newTestDecoder(nil)
	assert.NoError(t, Validate(dec.Decode(verseEnc)))
	assert.NoError(t, Validate(nil))

	b := func(s ...string) string {
		var ans strings.Builder
		for _, v := range s {
			ans.WriteString(`~\wd ~\tg ~\lu ` + v)
		}
		return ans.String()
	}

	err := Validate(dec.Decode(b("{", "(", "}", ")")))
	var uerr merror.UnbalancedError
	require.True(t, errors.As(err, &uerr))
	assert.Equal(t, 2, uerr.Index)
	assert.Equal(t, "}", uerr.Marker)
	assert.False(t, uerr.Unclosed)

	err = Validate(dec.Decode(b("{", "(", "[", "]", ")")))
	require.True(t, errors.As(err, &uerr))
	assert.Equal(t, 0, uerr.Index)
	assert.True(t, uerr.Unclosed)

	err = Validate(dec.Decode(b(")")))
	require.True(t, errors.As(err, &uerr))
	assert.Equal(t, 0, uerr.Index)

	assert.NoError(t, Validate(dec.Decode(b("{", "(", "[", "(", ")", "]", ")", "}"))))
}
