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
	"fmt"

	"github.com/bytedance/sonic"
)

// Category is a part of speech or a phrase/clause type
// derived from an entity's kind.
type Category int

const (
	NoCategory Category = iota
	Clause
	NP
	Noun
	VP
	Verb
	AdjP
	Adjective
	AdvP
	Adverb
	Adposition
	Conjunction
	Particle
	Phrasal
	Period
)

var categoryNames = [...]string{
	NoCategory:  "",
	Clause:      "Clause",
	NP:          "NP",
	Noun:        "Noun",
	VP:          "VP",
	Verb:        "Verb",
	AdjP:        "AdjP",
	Adjective:   "Adjective",
	AdvP:        "AdvP",
	Adverb:      "Adverb",
	Adposition:  "Adposition",
	Conjunction: "Conjunction",
	Particle:    "Particle",
	Phrasal:     "Phrasal",
	Period:      "Period",
}

func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return ""
	}
	return categoryNames[c]
}

func (c Category) MarshalJSON() ([]byte, error) {
	return sonic.Marshal(c.String())
}

func (c *Category) UnmarshalJSON(data []byte) error {
	var s string
	if err := sonic.Unmarshal(data, &s); err != nil {
		return err
	}
	v, ok := ParseCategory(s)
	if !ok {
		return fmt.Errorf("unknown category %s", s)
	}
	*c = v
	return nil
}

// ParseCategory converts a category name (e.g. "Noun") back
// to the category.
func ParseCategory(s string) (Category, bool) {
	for i, name := range categoryNames {
		if name == s {
			return Category(i), true
		}
	}
	return NoCategory, false
}

var kindCategories = map[string]Category{
	"c": Clause,
	"n": NP,
	"N": Noun,
	"v": VP,
	"V": Verb,
	"j": AdjP,
	"A": Adjective,
	"d": AdvP,
	"a": Adverb,
	"P": Adposition,
	"C": Conjunction,
	"r": Particle,
	"p": Phrasal,
	".": Period,
}

// KindCategory maps a raw kind code to its category.
// Unknown kinds map to NoCategory.
func KindCategory(kind string) Category {
	return kindCategories[kind]
}

// IsWordKind tells whether entities of the kind carry a sense.
func IsWordKind(kind string) bool {
	switch kind {
	case "N", "V", "A", "a", "P", "C", "r", "p":
		return true
	}
	return false
}

// ------

// Concept is an ontology entry realized by a word.
type Concept struct {
	Stem         string   `json:"stem"`
	Sense        string   `json:"sense"`
	PartOfSpeech Category `json:"part_of_speech"`
	IsComplex    bool     `json:"is_complex"`
}

// Format renders the concept as `stem-sense`.
func (c Concept) Format() string {
	return c.Stem + "-" + c.Sense
}

// Key identifies the concept within a lexicon.
func (c Concept) Key() string {
	return ConceptKey(c.Stem, c.Sense, c.PartOfSpeech)
}

func (c Concept) SameAs(other Concept) bool {
	return c.Stem == other.Stem && c.Sense == other.Sense && c.PartOfSpeech == other.PartOfSpeech
}

func ConceptKey(stem, sense string, pos Category) string {
	return fmt.Sprintf("%s|%s|%s", stem, sense, pos)
}

// ------

const (
	PhraseStart     = "("
	PhraseEnd       = ")"
	SubClauseStart  = "["
	SubClauseEnd    = "]"
	MainClauseStart = "{"
	MainClauseEnd   = "}"

	complexDivider = "/"
	simpleDivider  = "\\"
)

// Entity is a single unit of a decoded semantic encoding.
type Entity struct {
	Kind     string   `json:"kind"`
	Category Category `json:"category"`
	Features string   `json:"features"`
	Surface  string   `json:"surface"`
	Sense    string   `json:"sense"`
	Concept  *Concept `json:"concept,omitempty"`

	// Pairing is a second concept realized by the same word
	Pairing *Concept `json:"pairing,omitempty"`

	// ComplexPairing marks the `stem/stem` form of a pairing
	// (as opposed to the simple `stem\stem`)
	ComplexPairing bool `json:"complexPairing,omitempty"`
}

func (e Entity) IsPhraseStart() bool {
	return e.Surface == PhraseStart
}

func (e Entity) IsPhraseEnd() bool {
	return e.Surface == PhraseEnd
}

func (e Entity) IsSubClauseStart() bool {
	return e.Surface == SubClauseStart
}

func (e Entity) IsSubClauseEnd() bool {
	return e.Surface == SubClauseEnd
}

func (e Entity) IsAnyClauseStart() bool {
	return e.Surface == SubClauseStart || e.Surface == MainClauseStart
}

func (e Entity) IsAnyClauseEnd() bool {
	return e.Surface == SubClauseEnd || e.Surface == MainClauseEnd
}

// IsClosing tells whether the entity closes any phrase or clause.
func (e Entity) IsClosing() bool {
	return e.Surface == PhraseEnd || e.IsAnyClauseEnd()
}

// IsBoundary tells whether the entity is one of the six
// phrase/clause boundary markers.
func (e Entity) IsBoundary() bool {
	switch e.Surface {
	case PhraseStart, PhraseEnd, SubClauseStart, SubClauseEnd, MainClauseStart, MainClauseEnd:
		return true
	}
	return false
}

// Format renders the entity's concept as `stem-sense`. Paired entities
// render both concepts joined by `/` (complex pairing) or `\`.
// Entities without a concept render their surface stem.
func (e Entity) Format() string {
	if e.Concept == nil {
		return stemOf(e.Surface) + "-" + e.Sense
	}
	if e.Pairing == nil {
		return e.Concept.Format()
	}
	div := simpleDivider
	if e.ComplexPairing {
		div = complexDivider
	}
	return e.Concept.Format() + div + e.Pairing.Format()
}

func (e Entity) String() string {
	if e.Kind == "" {
		return e.Surface
	}
	return fmt.Sprintf("%s-%s %s", e.Kind, e.Features, e.Surface)
}
