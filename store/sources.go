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

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"semctx/occurrence"
	"semctx/semenc"

	"github.com/Masterminds/squirrel"
	"github.com/rs/zerolog/log"
)

const (
	sourcesTable = "Sources"
)

// Sources reads encoded sentences from a sources database.
// It implements occurrence.VariantSource so a database with complex
// concepts inserted can serve as a source of variants.
type Sources struct {
	db *sql.DB
}

// Sentences returns all the sentences with a non-empty encoding.
func (s *Sources) Sentences(ctx context.Context) ([]occurrence.Sentence, error) {
	sql1, args, err := squirrel.
		Select("type", "id_primary", "id_secondary", "id_tertiary", "semantic_encoding").
		From(sourcesTable).
		Where(squirrel.NotEq{"semantic_encoding": ""}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to load sentences: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, sql1, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load sentences: %w", err)
	}
	defer rows.Close()
	ans := make([]occurrence.Sentence, 0, 1000)
	for rows.Next() {
		var sent occurrence.Sentence
		err := rows.Scan(
			&sent.Reference.Type,
			&sent.Reference.Primary,
			&sent.Reference.Secondary,
			&sent.Reference.Tertiary,
			&sent.Encoding,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to load sentences: %w", err)
		}
		ans = append(ans, sent)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to load sentences: %w", err)
	}
	log.Info().Int("numSentences", len(ans)).Msg("loaded encoded sentences")
	return ans, nil
}

// Encoding returns the encoding of a sentence with the reference.
// The second value is false if there is no such sentence.
func (s *Sources) Encoding(ctx context.Context, ref occurrence.Reference) (string, bool, error) {
	sql1, args, err := squirrel.
		Select("semantic_encoding").
		From(sourcesTable).
		Where(squirrel.Eq{
			"type":         ref.Type,
			"id_primary":   ref.Primary,
			"id_secondary": ref.Secondary,
			"id_tertiary":  ref.Tertiary,
		}).
		Limit(1).
		ToSql()
	if err != nil {
		return "", false, fmt.Errorf("failed to get encoding of %s: %w", ref, err)
	}
	var enc string
	err = s.db.QueryRowContext(ctx, sql1, args...).Scan(&enc)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil

	} else if err != nil {
		return "", false, fmt.Errorf("failed to get encoding of %s: %w", ref, err)
	}
	return enc, true, nil
}

func NewSources(db *sql.DB) *Sources {
	return &Sources{db: db}
}

// LoadLexicon reads complex concepts (levels 2 and 3)
// from the ontology database.
func LoadLexicon(ctx context.Context, db *sql.DB) (semenc.ComplexSet, error) {
	sql1, args, err := squirrel.
		Select("stem", "sense", "part_of_speech").
		From(conceptsTable).
		Where(squirrel.Eq{"level": []int{2, 3}}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to load complex concepts: %w", err)
	}
	rows, err := db.QueryContext(ctx, sql1, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load complex concepts: %w", err)
	}
	defer rows.Close()
	ans := make(semenc.ComplexSet)
	for rows.Next() {
		var stem, sense, pos string
		if err := rows.Scan(&stem, &sense, &pos); err != nil {
			return nil, fmt.Errorf("failed to load complex concepts: %w", err)
		}
		cat, ok := semenc.ParseCategory(pos)
		if !ok {
			log.Warn().
				Str("stem", stem).
				Str("partOfSpeech", pos).
				Msg("skipping complex concept with unknown part of speech")
			continue
		}
		ans.Add(stem, sense, cat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to load complex concepts: %w", err)
	}
	log.Info().Int("numComplex", ans.Size()).Msg("loaded complex concepts")
	return ans, nil
}
