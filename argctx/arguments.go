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
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/bytedance/sonic"
)

type argument struct {
	Role  string
	Value string
}

// Arguments is an insertion-ordered role -> value mapping.
// For each role, the first written value wins.
// The zero value is an empty mapping ready to use.
type Arguments struct {
	items []argument
}

func (args Arguments) index(role string) int {
	for i, item := range args.items {
		if item.Role == role {
			return i
		}
	}
	return -1
}

// Set stores a value for a role unless the role is already present.
// Empty roles and empty values are ignored. The method returns true
// if the value has been stored.
func (args *Arguments) Set(role, value string) bool {
	if role == "" || value == "" || args.index(role) >= 0 {
		return false
	}
	args.items = append(args.items, argument{Role: role, Value: value})
	return true
}

func (args Arguments) Get(role string) (string, bool) {
	i := args.index(role)
	if i < 0 {
		return "", false
	}
	return args.items[i].Value, true
}

func (args Arguments) Has(role string) bool {
	return args.index(role) >= 0
}

func (args Arguments) Len() int {
	return len(args.items)
}

func (args Arguments) Roles() []string {
	ans := make([]string, len(args.items))
	for i, item := range args.items {
		ans[i] = item.Role
	}
	return ans
}

func (args Arguments) ForEach(fn func(role, value string)) {
	for _, item := range args.items {
		fn(item.Role, item.Value)
	}
}

// Merge adds all the arguments of other (in their order),
// respecting the first-writer-wins rule.
func (args *Arguments) Merge(other Arguments) {
	for _, item := range other.items {
		args.Set(item.Role, item.Value)
	}
}

func (args Arguments) Clone() Arguments {
	ans := Arguments{items: make([]argument, len(args.items))}
	copy(ans.items, args.items)
	return ans
}

// Without returns a copy of the arguments without the listed roles.
func (args Arguments) Without(roles ...string) Arguments {
	ans := Arguments{items: make([]argument, 0, len(args.items))}
	for _, item := range args.items {
		skip := false
		for _, r := range roles {
			if item.Role == r {
				skip = true
				break
			}
		}
		if !skip {
			ans.items = append(ans.items, item)
		}
	}
	return ans
}

// Equal compares both roles, values and their order.
func (args Arguments) Equal(other Arguments) bool {
	if len(args.items) != len(other.items) {
		return false
	}
	for i, item := range args.items {
		if other.items[i] != item {
			return false
		}
	}
	return true
}

func (args Arguments) String() string {
	data, err := args.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("Arguments(%d)", len(args.items))
	}
	return string(data)
}

// MarshalJSON produces a JSON object with keys in the insertion order.
func (args Arguments) MarshalJSON() ([]byte, error) {
	var buff bytes.Buffer
	buff.WriteString("{")
	for i, item := range args.items {
		if i > 0 {
			buff.WriteString(",")
		}
		k, err := sonic.Marshal(item.Role)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal arguments: %w", err)
		}
		v, err := sonic.Marshal(item.Value)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal arguments: %w", err)
		}
		buff.Write(k)
		buff.WriteString(":")
		buff.Write(v)
	}
	buff.WriteString("}")
	return buff.Bytes(), nil
}

// UnmarshalJSON reads a flat JSON object of strings, keeping
// the order of its keys.
func (args *Arguments) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("failed to unmarshal arguments: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("failed to unmarshal arguments: object expected")
	}
	args.items = args.items[:0]
	for dec.More() {
		ktok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("failed to unmarshal arguments: %w", err)
		}
		var value string
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("failed to unmarshal arguments: %w", err)
		}
		args.Set(ktok.(string), value)
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("failed to unmarshal arguments: %w", err)
	}
	return nil
}
