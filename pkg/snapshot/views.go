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

import "fmt"

// NodeView is a zero-copy accessor for logical node i: it holds only
// a Snapshot reference and an index, and decodes fields from the
// packed Nodes column on demand.
type NodeView struct {
	s   *Snapshot
	idx int
}

// Node returns a view onto logical node i. Callers are responsible
// for keeping i in [0, s.NodeCount()); out-of-range views return zero
// values from every accessor.
func (s *Snapshot) Node(i int) NodeView {
	return NodeView{s: s, idx: i}
}

// Index is the logical node index this view was constructed with.
func (n NodeView) Index() int { return n.idx }

func (n NodeView) field(offset int) (int64, bool) {
	base := n.idx * n.s.Index.NodeFieldCount
	if n.idx < 0 || base < 0 || base+offset >= len(n.s.Nodes) {
		return 0, false
	}
	return n.s.Nodes[base+offset], true
}

// NodeType resolves the node's type column to its type-table name.
func (n NodeView) NodeType() (string, bool) {
	v, ok := n.field(n.s.Index.NodeTypeIdx)
	if !ok {
		return "", false
	}
	return n.s.Index.nodeTypeName(v)
}

// NameIndex is the raw string-table index of the node's name, before
// resolution — used as the cheap integer aggregation key by the
// summary engine.
func (n NodeView) NameIndex() (int, bool) {
	v, ok := n.field(n.s.Index.NodeNameIdx)
	if !ok || v < 0 {
		return 0, false
	}
	return int(v), true
}

// Name resolves the node's name field through the strings table.
func (n NodeView) Name() (string, bool) {
	i, ok := n.NameIndex()
	if !ok || i >= len(n.s.Strings) {
		return "", false
	}
	return n.s.Strings[i], true
}

// ID is the snapshot-assigned stable object id.
func (n NodeView) ID() (int64, bool) {
	return n.field(n.s.Index.NodeIDIdx)
}

// SelfSize is the node's non-negative shallow byte count.
func (n NodeView) SelfSize() (int64, bool) {
	return n.field(n.s.Index.NodeSelfSizeIdx)
}

// EdgeCount is the number of outgoing edges whose records begin at
// this node's cumulative offset (see Offsets).
func (n NodeView) EdgeCount() (int64, bool) {
	return n.field(n.s.Index.NodeEdgeCountIdx)
}

// EdgeView is a zero-copy accessor for logical edge j.
type EdgeView struct {
	s   *Snapshot
	idx int
}

// Edge returns a view onto logical edge j.
func (s *Snapshot) Edge(j int) EdgeView {
	return EdgeView{s: s, idx: j}
}

// Index is the logical edge index this view was constructed with.
func (e EdgeView) Index() int { return e.idx }

func (e EdgeView) field(offset int) (int64, bool) {
	base := e.idx * e.s.Index.EdgeFieldCount
	if e.idx < 0 || base < 0 || base+offset >= len(e.s.Edges) {
		return 0, false
	}
	return e.s.Edges[base+offset], true
}

// EdgeType resolves the edge's type column to its type-table name.
func (e EdgeView) EdgeType() (string, bool) {
	v, ok := e.field(e.s.Index.EdgeTypeIdx)
	if !ok {
		return "", false
	}
	return e.s.Index.edgeTypeName(v)
}

// NameOrIndex is the raw signed field; interpretation depends on
// EdgeType.
func (e EdgeView) NameOrIndex() (int64, bool) {
	return e.field(e.s.Index.EdgeNameOrIndexIdx)
}

// ToNodeIndex resolves the edge's to_node byte offset to a logical
// node index, performing the divisibility and range check. Returns
// (0, false) for unresolved or misaligned targets.
func (e EdgeView) ToNodeIndex() (int, bool) {
	v, ok := e.field(e.s.Index.EdgeToNodeIdx)
	if !ok || v < 0 {
		return 0, false
	}
	nfc := e.s.Index.NodeFieldCount
	if nfc == 0 || v%int64(nfc) != 0 {
		return 0, false
	}
	target := int(v / int64(nfc))
	if target >= e.s.NodeCount() {
		return 0, false
	}
	return target, true
}

// EdgeLabel formats an edge for retainer/outgoing-edge display per
// edge-name convention: "[<index>]" for element edges,
// the resolved string when name_or_index indexes into Strings, or a
// sentinel form for out-of-range or negative values.
func (e EdgeView) EdgeLabel() string {
	typeName, _ := e.EdgeType()
	v, _ := e.NameOrIndex()

	if typeName == "element" {
		return fmt.Sprintf("[%d]", v)
	}
	if v >= 0 && int(v) < len(e.s.Strings) {
		return e.s.Strings[v]
	}
	if v >= 0 {
		return fmt.Sprintf("<string:%d>", v)
	}
	return fmt.Sprintf("<name:%d>", v)
}
