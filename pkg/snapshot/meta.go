// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package snapshot

import (
	"fmt"

	"github.com/kraklabs/heapsnap/pkg/errs"
)

// TypeSpec is one entry of a node_types/edge_types sequence: either a
// bare scalar domain name ("number", "string") or an ordered
// enumeration of named variants. Exactly one of Scalar/Enum is set.
type TypeSpec struct {
	Scalar string
	Enum   []string
}

// IsEnum reports whether this entry describes a named-variant field
// (as the "type" field is required to).
func (t TypeSpec) IsEnum() bool { return len(t.Enum) > 0 }

// Meta is the schema header decoded from snapshot.meta: four ordered
// string sequences describing the node and edge record layout.
type Meta struct {
	NodeFields []string
	NodeTypes  []TypeSpec
	EdgeFields []string
	EdgeTypes  []TypeSpec
}

var requiredNodeFields = []string{"type", "name", "id", "self_size", "edge_count"}
var requiredEdgeFields = []string{"type", "name_or_index", "to_node"}

// Index caches the field positions and type-name tables every engine
// needs, computed once from a validated Meta and immutable thereafter.
type Index struct {
	NodeFieldCount int
	EdgeFieldCount int

	NodeTypeIdx      int
	NodeNameIdx      int
	NodeIDIdx        int
	NodeSelfSizeIdx  int
	NodeEdgeCountIdx int

	EdgeTypeIdx        int
	EdgeNameOrIndexIdx int
	EdgeToNodeIdx      int

	NodeTypeNames []string
	EdgeTypeNames []string
}

// BuildIndex validates m against schema requirements and
// resolves every required field's position, returning MetaMismatch on
// any violation.
func BuildIndex(m Meta) (Index, error) {
	if len(m.NodeFields) != len(m.NodeTypes) {
		return Index{}, errs.NewMetaMismatch("Malformed schema",
			fmt.Sprintf("node_fields has %d entries but node_types has %d", len(m.NodeFields), len(m.NodeTypes)), nil)
	}
	if len(m.EdgeFields) != len(m.EdgeTypes) {
		return Index{}, errs.NewMetaMismatch("Malformed schema",
			fmt.Sprintf("edge_fields has %d entries but edge_types has %d", len(m.EdgeFields), len(m.EdgeTypes)), nil)
	}

	idx := Index{
		NodeFieldCount: len(m.NodeFields),
		EdgeFieldCount: len(m.EdgeFields),
	}

	var err error
	if idx.NodeTypeIdx, idx.NodeTypeNames, err = requiredEnumField(m.NodeFields, m.NodeTypes, "type", "node_fields"); err != nil {
		return Index{}, err
	}
	if idx.NodeNameIdx, err = requiredField(m.NodeFields, "name", "node_fields"); err != nil {
		return Index{}, err
	}
	if idx.NodeIDIdx, err = requiredField(m.NodeFields, "id", "node_fields"); err != nil {
		return Index{}, err
	}
	if idx.NodeSelfSizeIdx, err = requiredField(m.NodeFields, "self_size", "node_fields"); err != nil {
		return Index{}, err
	}
	if idx.NodeEdgeCountIdx, err = requiredField(m.NodeFields, "edge_count", "node_fields"); err != nil {
		return Index{}, err
	}

	if idx.EdgeTypeIdx, idx.EdgeTypeNames, err = requiredEnumField(m.EdgeFields, m.EdgeTypes, "type", "edge_fields"); err != nil {
		return Index{}, err
	}
	if idx.EdgeNameOrIndexIdx, err = requiredField(m.EdgeFields, "name_or_index", "edge_fields"); err != nil {
		return Index{}, err
	}
	if idx.EdgeToNodeIdx, err = requiredField(m.EdgeFields, "to_node", "edge_fields"); err != nil {
		return Index{}, err
	}

	return idx, nil
}

func requiredField(fields []string, name, seqName string) (int, error) {
	for i, f := range fields {
		if f == name {
			return i, nil
		}
	}
	return 0, errs.NewMetaMismatch("Missing required field",
		fmt.Sprintf("%s is missing required field %q", seqName, name), nil)
}

func requiredEnumField(fields []string, types []TypeSpec, name, seqName string) (int, []string, error) {
	i, err := requiredField(fields, name, seqName)
	if err != nil {
		return 0, nil, err
	}
	if !types[i].IsEnum() {
		return 0, nil, errs.NewMetaMismatch("Wrong type family",
			fmt.Sprintf("%s[%d] (%q) must be an enumeration, got scalar %q", seqName, i, name, types[i].Scalar), nil)
	}
	return i, types[i].Enum, nil
}

// nodeTypeName resolves a node type-table index to its name, returning
// ("", false) for an out-of-range index.
func (idx Index) nodeTypeName(v int64) (string, bool) {
	if v < 0 || int(v) >= len(idx.NodeTypeNames) {
		return "", false
	}
	return idx.NodeTypeNames[v], true
}

func (idx Index) edgeTypeName(v int64) (string, bool) {
	if v < 0 || int(v) >= len(idx.EdgeTypeNames) {
		return "", false
	}
	return idx.EdgeTypeNames[v], true
}
