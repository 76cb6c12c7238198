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
	openAPIVersion  = "3.1.0"
	jsonContentType = "application/json"
	maxTopConcepts  = 1000
)

func jsonContent(ref string) map[string]MediaType {
	return map[string]MediaType{jsonContentType: {Schema: SchemaRef{Ref: ref}}}
}

func errorResponse(desc string) MethodResponse {
	return MethodResponse{Description: desc, Content: jsonContent(schemaError)}
}

func encodingRequestBody() *RequestBody {
	return &RequestBody{
		Description: "An encoded sentence",
		Required:    true,
		Content:     jsonContent(schemaEncodingReq),
	}
}

func refFilterParams() []Parameter {
	ans := make([]Parameter, 0, 4)
	for _, p := range []struct{ name, desc string }{
		{"refType", "source type (e.g. `Bible`)"},
		{"refPrimary", "primary reference (e.g. a book name)"},
		{"refSecondary", "secondary reference (e.g. a chapter)"},
		{"refTertiary", "tertiary reference (e.g. a verse)"},
	} {
		ans = append(ans, Parameter{
			Name:        p.name,
			In:          "query",
			Description: "Limit examples by " + p.desc,
			Schema:      ParamSchema{Type: "string"},
		})
	}
	return ans
}

// NewResponse creates an OpenAPI document describing
// the HTTP API of the service.
func NewResponse(ver, url string) *APIResponse {
	paths := make(map[string]Methods)

	paths["/interpret"] = Methods{
		Post: &Method{
			Description: "Decodes an encoded sentence and finds all the concept occurrences " +
				"along with their semantic arguments.",
			OperationID: "Interpret",
			RequestBody: encodingRequestBody(),
			Responses: MethodResponses{
				200: {Description: "Interpretation of the sentence", Content: jsonContent(schemaInterpretation)},
				400: errorResponse("Malformed request"),
				422: errorResponse("Invalid encoding (structural problem or unbalanced brackets)"),
				500: errorResponse("Processing error"),
			},
		},
	}

	paths["/decode"] = Methods{
		Post: &Method{
			Description: "Decodes and validates an encoded sentence without resolving arguments.",
			OperationID: "Decode",
			RequestBody: encodingRequestBody(),
			Responses: MethodResponses{
				200: {Description: "Decoded entities", Content: jsonContent(schemaDecoded)},
				400: errorResponse("Malformed request"),
				422: errorResponse("Invalid encoding"),
			},
		},
	}

	paths["/examples/{stem}/{sense}/{pos}"] = Methods{
		Get: &Method{
			Description: "Lists recorded contexts of a concept found by the indexer.",
			OperationID: "Examples",
			Parameters: append(
				[]Parameter{
					{
						Name:        "stem",
						In:          "path",
						Description: "Concept stem",
						Required:    true,
						Schema:      ParamSchema{Type: "string"},
					},
					{
						Name:        "sense",
						In:          "path",
						Description: "Concept sense (e.g. `A`)",
						Required:    true,
						Schema:      ParamSchema{Type: "string"},
					},
					{
						Name:        "pos",
						In:          "path",
						Description: "Part of speech of the concept",
						Required:    true,
						Schema:      ParamSchema{Type: "string", Enum: partsOfSpeech},
					},
				},
				refFilterParams()...,
			),
			Responses: MethodResponses{
				200: {Description: "Found examples", Content: jsonContent(schemaExamples)},
				400: errorResponse("Unknown part of speech"),
				503: errorResponse("Example store not configured"),
			},
		},
	}

	minLimit, maxLimit := 1, maxTopConcepts
	paths["/concepts/top"] = Methods{
		Get: &Method{
			Description: "Lists concepts with the highest number of recorded occurrences.",
			OperationID: "TopConcepts",
			Parameters: []Parameter{
				{
					Name:        "limit",
					In:          "query",
					Description: "Max. number of concepts. By default, 10 is used.",
					Schema:      ParamSchema{Type: "integer", Minimum: &minLimit, Maximum: &maxLimit},
				},
			},
			Responses: MethodResponses{
				200: {Description: "Concepts with their counts", Content: jsonContent(schemaConceptCounts)},
				400: errorResponse("Invalid limit"),
				503: errorResponse("Example store not configured"),
			},
		},
	}

	return &APIResponse{
		OpenAPI: openAPIVersion,
		Info: Info{
			Title:       "SEMCTX API",
			Description: "Interpreter of semantically encoded sentences",
			Version:     ver,
		},
		Servers:    []Server{{URL: url}},
		Paths:      paths,
		Components: Components{Schemas: createSchemas()},
	}
}
