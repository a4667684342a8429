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

// Offsets is the edge-offset index: Base[i] is the cumulative
// sum of edge_count over nodes 0..i, giving node i's starting position in
// the Edges column. It is derived on demand from a Snapshot in O(node
// count) and never cached on the Snapshot itself, since not every engine
// needs it.
type Offsets struct {
	// Base has NodeCount()+1 entries; Base[i] is node i's edge-column
	// base index, Base[NodeCount()] is the total edge count the column
	// scan observed.
	Base []int64
}

// EdgeRange returns the [start, end) slice of edge indices belonging to
// node i.
func (o Offsets) EdgeRange(i int) (int, int) {
	if i < 0 || i+1 >= len(o.Base) {
		return 0, 0
	}
	return int(o.Base[i]), int(o.Base[i+1])
}

// OffsetsOf builds the edge-offset index by a single linear scan over
// Nodes, accumulating edge_count. The accumulator saturates on overflow
// rather than wrapping. After the scan the terminal cursor must equal
// EdgeCount(); otherwise invariant 2 is violated and this returns
// InvalidData.
func OffsetsOf(s *Snapshot) (Offsets, error) {
	n := s.NodeCount()
	base := make([]int64, n+1)

	var cursor int64
	for i := 0; i < n; i++ {
		base[i] = cursor
		ec, ok := s.Node(i).EdgeCount()
		if !ok {
			ec = 0
		}
		if ec < 0 {
			return Offsets{}, errs.NewInvalidData("Invalid edge count",
				fmt.Sprintf("node %d has negative edge_count %d", i, ec), nil)
		}
		next := cursor + ec
		if next < cursor {
			// Saturate rather than overflow into a negative cursor.
			next = int64(^uint64(0) >> 1)
		}
		cursor = next
	}
	base[n] = cursor

	if cursor != int64(s.EdgeCount()) {
		return Offsets{}, errs.NewInvalidData("Inconsistent edge count",
			fmt.Sprintf("sum of node edge_count (%d) does not match edges.len()/edge_field_count (%d)", cursor, s.EdgeCount()), nil)
	}
	return Offsets{Base: base}, nil
}
