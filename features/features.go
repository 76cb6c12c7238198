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

// Package features provides the positional feature tables of
// the semantic encoding. A feature of a category is a single character
// at a fixed offset of an entity's feature code.
package features

import (
	_ "embed"
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// Category identifies a feature table.
type Category string

const (
	NP     Category = "NP"
	Verb   Category = "VERB"
	Adj    Category = "ADJ"
	AdjP   Category = "ADJP"
	Adv    Category = "ADV"
	Clause Category = "CLAUSE"
)

// feature names the interpreter relies on
const (
	Sequence            = "Sequence"
	SemanticRole        = "Semantic Role"
	Polarity            = "Polarity"
	Degree              = "Degree"
	Usage               = "Usage"
	Type                = "Type"
	TopicNP             = "Topic NP"
	VocabularyAlternate = "Vocabulary Alternate"
)

// labels the interpreter relies on
const (
	LabelAgent                = "Agent"
	LabelOblique              = "Oblique"
	LabelPredicative          = "Predicative"
	LabelPropositionalAgent   = "Propositional Agent"
	LabelPropositionalPatient = "Propositional Patient"
	LabelAttributivePatient   = "Attributive Patient"
	LabelUseAlternate         = "Use Alternate"
)

var requiredFeatures = map[Category][]string{
	NP:     {Sequence, SemanticRole},
	Verb:   {Polarity},
	Adj:    {Degree},
	AdjP:   {Sequence, Usage},
	Adv:    {Degree},
	Clause: {Type, TopicNP, Sequence, VocabularyAlternate},
}

//go:embed default.yaml
var defaultTables []byte

// Feature is a single positional feature of a category.
type Feature struct {
	Name   string            `yaml:"-"`
	Offset int               `yaml:"offset"`
	Labels map[string]string `yaml:"labels"`
}

// Code returns the raw feature character of the provided feature code
// or an empty string if the code is too short.
func (f Feature) Code(code string) string {
	if f.Offset < 0 {
		return ""
	}
	i := 0
	for _, r := range code {
		if i == f.Offset {
			return string(r)
		}
		i++
	}
	return ""
}

// Decode returns the human readable label of the feature within
// the provided code. An unknown or missing character yields
// an empty string.
func (f Feature) Decode(code string) string {
	return f.Labels[f.Code(code)]
}

func (f Feature) Is(code, label string) bool {
	v := f.Decode(code)
	return v != "" && v == label
}

func (f Feature) IsAny(code string, labels ...string) bool {
	v := f.Decode(code)
	if v == "" {
		return false
	}
	for _, l := range labels {
		if v == l {
			return true
		}
	}
	return false
}

// -----

// Tables is an immutable set of feature tables. Once loaded,
// it is safe for concurrent use.
type Tables struct {
	Version     int                             `yaml:"version"`
	SenseOffset int                             `yaml:"senseOffset"`
	Categories  map[Category]map[string]Feature `yaml:"categories"`
}

// Feature returns a feature of a category. For features
// not present in the tables, a feature decoding everything
// to an empty label is returned.
func (t *Tables) Feature(cat Category, name string) Feature {
	f, ok := t.Categories[cat][name]
	if !ok {
		return Feature{Name: name, Offset: -1}
	}
	return f
}

// Sense extracts the sense letter from a word's feature code.
func (t *Tables) Sense(code string) string {
	return Feature{Offset: t.SenseOffset}.Code(code)
}

func (t *Tables) validate() error {
	if t.SenseOffset < 0 {
		return fmt.Errorf("invalid senseOffset %d", t.SenseOffset)
	}
	for cat, names := range requiredFeatures {
		tab, ok := t.Categories[cat]
		if !ok {
			return fmt.Errorf("missing feature table %s", cat)
		}
		for _, name := range names {
			if _, ok := tab[name]; !ok {
				return fmt.Errorf("missing feature %s of %s", name, cat)
			}
		}
	}
	for cat, tab := range t.Categories {
		for name, feat := range tab {
			if feat.Offset < 0 {
				return fmt.Errorf("invalid offset %d of %s/%s", feat.Offset, cat, name)
			}
			for code := range feat.Labels {
				if utf8.RuneCountInString(code) != 1 {
					return fmt.Errorf("invalid code '%s' of %s/%s", code, cat, name)
				}
			}
			feat.Name = name
			tab[name] = feat
		}
	}
	return nil
}

// Parse creates feature tables from their YAML representation.
func Parse(data []byte) (*Tables, error) {
	var ans Tables
	if err := yaml.Unmarshal(data, &ans); err != nil {
		return nil, fmt.Errorf("failed to parse feature tables: %w", err)
	}
	if err := ans.validate(); err != nil {
		return nil, fmt.Errorf("failed to parse feature tables: %w", err)
	}
	return &ans, nil
}

// Load reads feature tables from a YAML file. With an empty path,
// the built-in tables are returned.
func Load(path string) (*Tables, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load feature tables: %w", err)
	}
	ans, err := Parse(data)
	if err != nil {
		return nil, err
	}
	log.Info().
		Str("path", path).
		Int("version", ans.Version).
		Msg("loaded feature tables")
	return ans, nil
}

// Default returns the built-in feature tables.
func Default() *Tables {
	ans, err := Parse(defaultTables)
	if err != nil {
		panic(err)
	}
	return ans
}
