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
	"fmt"
	"sync"

	"semctx/argctx"
	"semctx/occurrence"
	"semctx/semenc"

	"github.com/Masterminds/squirrel"
	"github.com/bytedance/sonic"
	"github.com/rs/zerolog/log"
)

const (
	examplesTable = "Exhaustive_Examples"
	conceptsTable = "Concepts"
	lookupTable   = "Reference_Primary_Lookup"
)

// RefFilter narrows example lookup to a (partial) reference.
// Empty values are ignored.
type RefFilter struct {
	Type      string
	Primary   string
	Secondary string
	Tertiary  string
}

// Example is a recorded occurrence of a concept.
type Example struct {
	Reference occurrence.Reference `json:"reference"`
	Context   argctx.Arguments     `json:"context"`
}

// ConceptCount is a concept along with its number of occurrences.
type ConceptCount struct {
	Stem         string `json:"stem"`
	Sense        string `json:"sense"`
	PartOfSpeech string `json:"partOfSpeech"`
	Occurrences  int    `json:"occurrences"`
}

// Examples stores concept occurrences into the ontology database.
// It implements occurrence.Sink.
type Examples struct {
	db *sql.DB
	mu sync.Mutex
}

// Reset removes all the recorded examples and zeroes
// the occurrence counts of all the concepts.
func (ex *Examples) Reset(ctx context.Context) error {
	ex.mu.Lock()
	defer ex.mu.Unlock()
	tx, err := ex.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to reset examples: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM "+examplesTable); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to reset examples: %w", err)
	}
	sql1, args, err := squirrel.Update(conceptsTable).Set("occurrences", 0).ToSql()
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to reset examples: %w", err)
	}
	if _, err := tx.ExecContext(ctx, sql1, args...); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to reset examples: %w", err)
	}
	return tx.Commit()
}

func recordQuery(ref occurrence.Reference, occ argctx.Occurrence) (string, []any, error) {
	ctxJSON, err := occ.Context.MarshalJSON()
	if err != nil {
		return "", nil, err
	}
	sel := squirrel.Select().
		Column("?", occ.Concept.Stem).
		Column("?", occ.Concept.Sense).
		Column("?", occ.Concept.PartOfSpeech.String()).
		Column("?", ref.Type).
		Column("id").
		Column("?", ref.Secondary).
		Column("?", ref.Tertiary).
		Column("?", string(ctxJSON)).
		From(lookupTable).
		Where(squirrel.Eq{"type": ref.Type, "name": ref.Primary})
	return squirrel.Insert(examplesTable).
		Columns(
			"concept_stem", "concept_sense", "concept_part_of_speech", "ref_type",
			"ref_id_primary", "ref_id_secondary", "ref_id_tertiary", "context_json",
		).
		Select(sel).
		ToSql()
}

// Record stores the occurrences found in a sentence within a single
// transaction. A reference with a primary ID missing in the lookup
// table produces no rows.
func (ex *Examples) Record(ctx context.Context, ref occurrence.Reference, occurrences []argctx.Occurrence) error {
	if len(occurrences) == 0 {
		return nil
	}
	ex.mu.Lock()
	defer ex.mu.Unlock()
	tx, err := ex.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to record occurrences: %w", err)
	}
	var numStored int64
	for _, occ := range occurrences {
		sql1, args, err := recordQuery(ref, occ)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record occurrence of %s: %w", occ.Concept.Format(), err)
		}
		res, err := tx.ExecContext(ctx, sql1, args...)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record occurrence of %s: %w", occ.Concept.Format(), err)
		}
		n, err := res.RowsAffected()
		if err == nil {
			numStored += n
		}
	}
	if numStored == 0 {
		log.Warn().
			Str("ref", ref.String()).
			Msg("no occurrence stored, unknown reference")
	}
	return tx.Commit()
}

// UpdateOccurrenceCounts sets the number of recorded examples
// for each concept.
func (ex *Examples) UpdateOccurrenceCounts(ctx context.Context) error {
	ex.mu.Lock()
	defer ex.mu.Unlock()
	sql1, args, err := squirrel.Update(conceptsTable).
		Set(
			"occurrences",
			squirrel.Expr(
				"(SELECT COUNT(e.context_json) FROM "+examplesTable+" AS e "+
					"WHERE e.concept_stem = "+conceptsTable+".stem "+
					"AND e.concept_sense = "+conceptsTable+".sense "+
					"AND e.concept_part_of_speech = "+conceptsTable+".part_of_speech)",
			),
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to update occurrence counts: %w", err)
	}
	if _, err := ex.db.ExecContext(ctx, sql1, args...); err != nil {
		return fmt.Errorf("failed to update occurrence counts: %w", err)
	}
	return nil
}

// Lookup returns recorded examples of a concept.
func (ex *Examples) Lookup(ctx context.Context, concept semenc.Concept, filter RefFilter) ([]Example, error) {
	cond := squirrel.Eq{
		"e.concept_stem":           concept.Stem,
		"e.concept_sense":          concept.Sense,
		"e.concept_part_of_speech": concept.PartOfSpeech.String(),
	}
	if filter.Type != "" {
		cond["e.ref_type"] = filter.Type
	}
	if filter.Primary != "" {
		cond["l.name"] = filter.Primary
	}
	if filter.Secondary != "" {
		cond["e.ref_id_secondary"] = filter.Secondary
	}
	if filter.Tertiary != "" {
		cond["e.ref_id_tertiary"] = filter.Tertiary
	}
	sql1, args, err := squirrel.
		Select("e.ref_type", "l.name", "e.ref_id_secondary", "e.ref_id_tertiary", "e.context_json").
		From(examplesTable + " AS e").
		Join(lookupTable + " AS l ON l.type = e.ref_type AND l.id = e.ref_id_primary").
		Where(cond).
		OrderBy("e.ref_id_primary", "e.ref_id_secondary", "e.ref_id_tertiary", "e.rowid").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to lookup examples: %w", err)
	}
	log.Debug().Str("sql", sql1).Msgf("going to lookup examples of %s", concept.Format())
	rows, err := ex.db.QueryContext(ctx, sql1, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to lookup examples: %w", err)
	}
	defer rows.Close()
	ans := make([]Example, 0, 20)
	for rows.Next() {
		var item Example
		var ctxJSON string
		err := rows.Scan(
			&item.Reference.Type,
			&item.Reference.Primary,
			&item.Reference.Secondary,
			&item.Reference.Tertiary,
			&ctxJSON,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to lookup examples: %w", err)
		}
		if err := sonic.Unmarshal([]byte(ctxJSON), &item.Context); err != nil {
			return nil, fmt.Errorf("failed to decode stored context of %s: %w", item.Reference, err)
		}
		ans = append(ans, item)
	}
	return ans, rows.Err()
}

// TopOccurrences returns concepts with the highest number
// of occurrences.
func (ex *Examples) TopOccurrences(ctx context.Context, limit int) ([]ConceptCount, error) {
	sql1, args, err := squirrel.
		Select("stem", "sense", "part_of_speech", "occurrences").
		From(conceptsTable).
		OrderBy("occurrences + 0 DESC", "stem").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to get top occurrences: %w", err)
	}
	rows, err := ex.db.QueryContext(ctx, sql1, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get top occurrences: %w", err)
	}
	defer rows.Close()
	var ans []ConceptCount
	for rows.Next() {
		var item ConceptCount
		if err := rows.Scan(&item.Stem, &item.Sense, &item.PartOfSpeech, &item.Occurrences); err != nil {
			return nil, fmt.Errorf("failed to get top occurrences: %w", err)
		}
		ans = append(ans, item)
	}
	return ans, rows.Err()
}

func NewExamples(db *sql.DB) *Examples {
	return &Examples{db: db}
}
