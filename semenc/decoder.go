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
	"regexp"
	"strings"

	"semctx/features"
)

const (
	unitPrefix  = `~\wd ~\tg `
	valuePrefix = `~\lu `
)

// A unit looks like this:
//
//	~\wd ~\tg N-1A1SDAnK3NN........~\lu God
//	~\wd ~\tg ~\lu )
//
// The first character of the features is the kind of the entity.
var unitRegexp = regexp.MustCompile(`~\\wd ~\\tg (?:([\w.])-([^~]*))?~\\lu ([^~]+)`)

// Lexicon tells which concepts are complex (i.e. defined
// by other concepts of the ontology).
type Lexicon interface {
	IsComplex(stem, sense string, pos Category) bool
}

// ComplexSet is a simple in-memory Lexicon.
type ComplexSet map[string]struct{}

func (cs ComplexSet) Add(stem, sense string, pos Category) {
	cs[ConceptKey(stem, sense, pos)] = struct{}{}
}

func (cs ComplexSet) IsComplex(stem, sense string, pos Category) bool {
	_, ok := cs[ConceptKey(stem, sense, pos)]
	return ok
}

func (cs ComplexSet) Size() int {
	return len(cs)
}

// ----

// Decoder converts semantic encoding strings into entities.
// It is stateless and safe for concurrent use.
type Decoder struct {
	tables  *features.Tables
	lexicon Lexicon
}

// Decode scans the encoding and returns its entities in document order.
// Anything not matching the unit grammar is ignored.
func (d *Decoder) Decode(encoding string) []Entity {
	matches := unitRegexp.FindAllStringSubmatch(encoding, -1)
	ans := make([]Entity, 0, len(matches))
	for _, m := range matches {
		ans = append(ans, d.decodeUnit(m[1], m[2], m[3]))
	}
	return ans
}

func (d *Decoder) decodeUnit(kind, feats, surface string) Entity {
	ent := Entity{
		Kind:     kind,
		Category: KindCategory(kind),
		Features: feats,
		Surface:  surface,
	}
	if IsWordKind(kind) {
		ent.Sense = d.tables.Sense(feats)
	}
	if ent.Sense == "" || surface == "" {
		return ent
	}
	stem, paired, complexPairing := splitPairing(surface)
	ent.Concept = d.concept(stem, ent.Sense, ent.Category, false)
	if paired != "" {
		ent.Pairing = d.concept(paired, ent.Sense, ent.Category, complexPairing)
		ent.ComplexPairing = complexPairing
	}
	return ent
}

func (d *Decoder) concept(stem, sense string, pos Category, isComplex bool) *Concept {
	if !isComplex && d.lexicon != nil {
		isComplex = d.lexicon.IsComplex(stem, sense, pos)
	}
	return &Concept{
		Stem:         stem,
		Sense:        sense,
		PartOfSpeech: pos,
		IsComplex:    isComplex,
	}
}

// Encode serializes entities back to the semantic encoding.
// For entities produced by Decode, Encode(Decode(s)) reproduces
// all the units of s.
func Encode(entities []Entity) string {
	var buff strings.Builder
	for _, ent := range entities {
		writeUnit(&buff, ent.Kind, ent.Features, ent.Surface)
	}
	return buff.String()
}

// EncodeUnit creates a single unit of the encoding. With an empty
// kind, the features are ignored (i.e. a boundary unit is created).
func EncodeUnit(kind, feats, surface string) string {
	var buff strings.Builder
	writeUnit(&buff, kind, feats, surface)
	return buff.String()
}

func writeUnit(buff *strings.Builder, kind, feats, surface string) {
	buff.WriteString(unitPrefix)
	if kind != "" {
		buff.WriteString(kind)
		buff.WriteString("-")
		buff.WriteString(feats)
	}
	buff.WriteString(valuePrefix)
	buff.WriteString(surface)
}

// splitPairing splits a surface `A/B` (complex pairing)
// or `A\B` (simple pairing).
func splitPairing(surface string) (stem string, paired string, complexPairing bool) {
	i := strings.IndexAny(surface, complexDivider+simpleDivider)
	if i <= 0 || i == len(surface)-1 {
		return surface, "", false
	}
	return surface[:i], surface[i+1:], surface[i:i+1] == complexDivider
}

func stemOf(surface string) string {
	stem, _, _ := splitPairing(surface)
	return stem
}

// NewDecoder creates a decoder. The lexicon is optional.
func NewDecoder(tables *features.Tables, lexicon Lexicon) *Decoder {
	return &Decoder{
		tables:  tables,
		lexicon: lexicon,
	}
}
