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

// Package snapshot is the core data model: a lenient streaming
// decoder that turns a V8-style heap snapshot JSON document into
// three packed integer/string columns plus a validated schema, and
// the zero-copy accessors (NodeView/EdgeView) that read logical node
// and edge records back out of those columns.
//
// A Snapshot is built once by Decode and is read-only for the rest of
// its lifetime; every analysis engine in pkg/analysis borrows it
// immutably.
package snapshot

import (
	"fmt"

	"github.com/kraklabs/heapsnap/pkg/errs"
)

// Snapshot is the whole in-memory model: the validated schema plus
// the three packed columns. Construct one with Decode;
// there is no in-place mutation after construction.
type Snapshot struct {
	Meta    Meta
	Index   Index
	Nodes   []int64
	Edges   []int64
	Strings []string
}

// NodeCount is the number of logical node records packed into Nodes.
func (s *Snapshot) NodeCount() int {
	if s.Index.NodeFieldCount == 0 {
		return 0
	}
	return len(s.Nodes) / s.Index.NodeFieldCount
}

// EdgeCount is the number of logical edge records packed into Edges.
func (s *Snapshot) EdgeCount() int {
	if s.Index.EdgeFieldCount == 0 {
		return 0
	}
	return len(s.Edges) / s.Index.EdgeFieldCount
}

// validate checks invariants (1) and the column-length
// multiples; invariant (2) — the edge_count sum — is deliberately
// left to OffsetsOf, which engines call on demand.
func (s *Snapshot) validate() error {
	nfc := s.Index.NodeFieldCount
	efc := s.Index.EdgeFieldCount

	if nfc == 0 || len(s.Nodes)%nfc != 0 {
		return errs.NewInvalidData("Malformed node column",
			fmt.Sprintf("nodes length %d is not a multiple of node_field_count %d", len(s.Nodes), nfc), nil)
	}
	if efc == 0 || len(s.Edges)%efc != 0 {
		return errs.NewInvalidData("Malformed edge column",
			fmt.Sprintf("edges length %d is not a multiple of edge_field_count %d", len(s.Edges), efc), nil)
	}
	return nil
}
