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

package openapi

const (
	schemaConcept        = "#/components/schemas/Concept"
	schemaEntity         = "#/components/schemas/Entity"
	schemaOccurrence     = "#/components/schemas/Occurrence"
	schemaInterpretation = "#/components/schemas/Interpretation"
	schemaDecoded        = "#/components/schemas/Decoded"
	schemaEncodingReq    = "#/components/schemas/EncodingRequest"
	schemaExamples       = "#/components/schemas/Examples"
	schemaConceptCounts  = "#/components/schemas/ConceptCounts"
	schemaError          = "#/components/schemas/Error"
)

var partsOfSpeech = []string{
	"Noun", "Verb", "Adjective", "Adverb", "Adposition",
	"Conjunction", "Particle", "Phrasal",
}

func argumentsProperty() ObjectProperty {
	return ObjectProperty{
		Type:                 "object",
		Description:          "Semantic arguments (role => value) in the order of their first assignment",
		AdditionalProperties: &AdditionalProperty{Type: "string"},
	}
}

func createSchemas() ObjectProperties {
	ans := make(ObjectProperties)
	ans["Concept"] = ObjectProperty{
		Type: "object",
		Properties: ObjectProperties{
			"stem":           {Type: "string"},
			"sense":          {Type: "string"},
			"part_of_speech": {Type: "string", Enum: partsOfSpeech},
			"is_complex":     {Type: "boolean"},
		},
	}
	ans["Entity"] = ObjectProperty{
		Type: "object",
		Properties: ObjectProperties{
			"kind":           {Type: "string", Description: "raw kind code (e.g. `N`, `c`, `(`)"},
			"category":       {Type: "string"},
			"features":       {Type: "string"},
			"surface":        {Type: "string"},
			"sense":          {Type: "string"},
			"concept":        {Ref: schemaConcept},
			"pairing":        {Ref: schemaConcept},
			"complexPairing": {Type: "boolean"},
		},
	}
	ans["Occurrence"] = ObjectProperty{
		Type: "object",
		Properties: ObjectProperties{
			"index":   {Type: "integer", Description: "position of the entity within the sentence"},
			"concept": {Ref: schemaConcept},
			"context": argumentsProperty(),
		},
	}
	ans["Interpretation"] = ObjectProperty{
		Type: "object",
		Properties: ObjectProperties{
			"entities":    {Type: "array", Items: &arrayItem{Ref: schemaEntity}},
			"occurrences": {Type: "array", Items: &arrayItem{Ref: schemaOccurrence}},
			"resultType":  {Type: "string", Enum: []string{"interpretation"}},
		},
	}
	ans["Decoded"] = ObjectProperty{
		Type: "object",
		Properties: ObjectProperties{
			"entities": {Type: "array", Items: &arrayItem{Ref: schemaEntity}},
			"encoding": {Type: "string", Description: "the entities encoded back"},
		},
	}
	ans["EncodingRequest"] = ObjectProperty{
		Type: "object",
		Properties: ObjectProperties{
			"encoding": {Type: "string", Description: "semantic encoding of a single sentence"},
			"index": {
				Type:        "integer",
				Description: "if set, only occurrences of the entity at the index are returned",
			},
		},
	}
	ans["Examples"] = ObjectProperty{
		Type: "object",
		Properties: ObjectProperties{
			"concept": {Ref: schemaConcept},
			"examples": {
				Type: "array",
				Items: &arrayItem{
					Type: "object",
					Properties: ObjectProperties{
						"reference": {
							Type: "object",
							Properties: ObjectProperties{
								"type":      {Type: "string"},
								"primary":   {Type: "string"},
								"secondary": {Type: "string"},
								"tertiary":  {Type: "string"},
							},
						},
						"context": argumentsProperty(),
					},
				},
			},
		},
	}
	ans["ConceptCounts"] = ObjectProperty{
		Type: "array",
		Items: &arrayItem{
			Type: "object",
			Properties: ObjectProperties{
				"stem":         {Type: "string"},
				"sense":        {Type: "string"},
				"partOfSpeech": {Type: "string"},
				"occurrences":  {Type: "integer"},
			},
		},
	}
	ans["Error"] = ObjectProperty{
		Type: "object",
		Properties: ObjectProperties{
			"error": {Type: "string"},
		},
	}
	return ans
}
