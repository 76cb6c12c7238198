// Copyright 2019 Tomas Machalek <tomas.machalek@gmail.com>
// Copyright 2019 Institute of the Czech National Corpus,
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

package merror

import (
	"encoding/json"
	"errors"
	"fmt"
)

type InputError struct {
	Msg string
}

func (err InputError) Error() string {
	return err.Msg
}

func (err InputError) MarshalJSON() ([]byte, error) {
	if err.Msg != "" {
		return json.Marshal(err.Msg)
	}
	return json.Marshal(nil)
}

// ----------------------------

type InternalError struct {
	Msg string
}

func (err InternalError) Error() string {
	return err.Msg
}

func (err InternalError) MarshalJSON() ([]byte, error) {
	if err.Msg != "" {
		return json.Marshal(err.Msg)
	}
	return json.Marshal(nil)
}

// ---------------------------

type RecoveredError struct {
	Msg string
}

func (err RecoveredError) Error() string {
	return err.Msg
}

func (err RecoveredError) MarshalJSON() ([]byte, error) {
	if err.Msg != "" {
		return json.Marshal(err.Msg)
	}
	return json.Marshal(nil)
}

// ---------------------------

type TimeoutError struct {
	Msg string
}

func (err TimeoutError) Error() string {
	return err.Msg
}

func (err TimeoutError) MarshalJSON() ([]byte, error) {
	if err.Msg != "" {
		return json.Marshal(err.Msg)
	}
	return json.Marshal(nil)
}

// ---------------------------

// Violation identifies a structural rule of the semantic encoding
// which an entity breaks.
type Violation error

var (
	NounNotInPhrase      Violation = errors.New("Noun not in a phrase")
	AdjectiveNotInPhrase Violation = errors.New("Adjective not in a phrase")
	VerbWithoutClause    Violation = errors.New("no containing clause")
	MissingHeadWord      Violation = errors.New("missing head word")
)

// StructuralError is reported when an entity cannot be resolved
// because the encoding lacks a mandatory phrase or clause around it.
// It aborts processing of the sentence the entity belongs to.
type StructuralError struct {
	Violation Violation
	Index     int
	Detail    string
}

func (err StructuralError) Error() string {
	if err.Detail != "" {
		return fmt.Sprintf(
			"invalid semantic encoding - %s (entity %d, %s)", err.Violation, err.Index, err.Detail)
	}
	return fmt.Sprintf("invalid semantic encoding - %s (entity %d)", err.Violation, err.Index)
}

func (err StructuralError) Unwrap() error {
	return err.Violation
}

func (err StructuralError) MarshalJSON() ([]byte, error) {
	return json.Marshal(err.Error())
}

// ---------------------------

// UnbalancedError reports a boundary marker without a counterpart
// of the same bracket type at the same nesting level.
type UnbalancedError struct {
	Index    int
	Marker   string
	Unclosed bool
}

func (err UnbalancedError) Error() string {
	if err.Unclosed {
		return fmt.Sprintf("unbalanced semantic encoding - unclosed `%s` at entity %d", err.Marker, err.Index)
	}
	return fmt.Sprintf("unbalanced semantic encoding - unexpected `%s` at entity %d", err.Marker, err.Index)
}

func (err UnbalancedError) MarshalJSON() ([]byte, error) {
	return json.Marshal(err.Error())
}

// -----------------

func PanicValueToErr(v any) (err error) {
	switch tr := v.(type) {
	case error:
		err = fmt.Errorf("recovered panic: %w", tr)
	case string:
		err = fmt.Errorf("recovered panic: %s", tr)
	default:
		err = fmt.Errorf("recovered panic from an error of type %T", v)
	}
	return
}
