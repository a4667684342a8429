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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/heapsnap/pkg/errs"
)

func testMeta() Meta {
	return Meta{
		NodeFields: []string{"type", "name", "id", "self_size", "edge_count"},
		NodeTypes: []TypeSpec{
			{Enum: []string{"object", "string"}},
			{Scalar: "string"},
			{Scalar: "number"},
			{Scalar: "number"},
			{Scalar: "number"},
		},
		EdgeFields: []string{"type", "name_or_index", "to_node"},
		EdgeTypes: []TypeSpec{
			{Enum: []string{"property", "element"}},
			{Scalar: "string_or_number"},
			{Scalar: "node"},
		},
	}
}

func buildSnapshot(t *testing.T, nodes, edges []int64, strs []string) *Snapshot {
	t.Helper()
	idx, err := BuildIndex(testMeta())
	require.NoError(t, err)
	return &Snapshot{Meta: testMeta(), Index: idx, Nodes: nodes, Edges: edges, Strings: strs}
}

func TestOffsetsOfComputesCumulativeBase(t *testing.T) {
	// Two nodes: first has 2 edges, second has 1 edge; three edges total.
	nodes := []int64{
		0, 0, 1, 10, 2,
		0, 1, 2, 20, 1,
	}
	edges := make([]int64, 3*3)
	s := buildSnapshot(t, nodes, edges, []string{"a", "b"})

	off, err := OffsetsOf(s)
	require.NoError(t, err)
	assert.Equal(t, []int64{0, 2, 3}, off.Base)

	start, end := off.EdgeRange(0)
	assert.Equal(t, 0, start)
	assert.Equal(t, 2, end)

	start, end = off.EdgeRange(1)
	assert.Equal(t, 2, start)
	assert.Equal(t, 3, end)
}

func TestOffsetsOfDetectsMismatch(t *testing.T) {
	nodes := []int64{0, 0, 1, 10, 5} // claims 5 edges
	edges := make([]int64, 1*3)      // but only 1 edge present
	s := buildSnapshot(t, nodes, edges, nil)

	_, err := OffsetsOf(s)
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.InvalidData))
}

func TestOffsetsOfEmptySnapshot(t *testing.T) {
	s := buildSnapshot(t, nil, nil, nil)
	off, err := OffsetsOf(s)
	require.NoError(t, err)
	assert.Equal(t, []int64{0}, off.Base)
}
