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

package analysis

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/heapsnap/pkg/cancel"
	"github.com/kraklabs/heapsnap/pkg/snapshot"
)

const fixtureDocGrown = `{
  "snapshot": {
    "node_fields": ["type", "name", "id", "self_size", "edge_count"],
    "node_types": [["object", "string", "(GC roots)"], "string", "number", "number", "number"],
    "edge_fields": ["type", "name_or_index", "to_node"],
    "edge_types": [["property", "element"], "string_or_number", "node"]
  },
  "nodes": [
    2, 0, 1, 0,   1,
    0, 1, 2, 1000, 0,
    0, 1, 3, 2000, 0,
    0, 1, 6, 3000, 0
  ],
  "edges": [
    0, 4, 5
  ],
  "strings": ["GC roots", "Foo", "", "leaf"]
}`

func TestDiffComputesDeltas(t *testing.T) {
	a := mustDecode(t)
	b, err := snapshot.Decode(strings.NewReader(fixtureDocGrown), snapshot.DecodeOptions{})
	require.NoError(t, err)

	rows, err := Diff(a, b, DiffOptions{Top: 10}, cancel.None())
	require.NoError(t, err)

	var foo *DiffRow
	for i := range rows {
		if rows[i].Name == "Foo" {
			foo = &rows[i]
		}
	}
	require.NotNil(t, foo)
	assert.Equal(t, 2, foo.CountA)
	assert.Equal(t, 3, foo.CountB)
	assert.Equal(t, 1, foo.CountDelta)
	assert.Equal(t, int64(3000), foo.SelfSizeSumA)
	assert.Equal(t, int64(6000), foo.SelfSizeSumB)
	assert.Equal(t, int64(3000), foo.SelfSizeSumDelta)
}

func TestDiffOrdersByAbsoluteSizeDeltaDescending(t *testing.T) {
	a := mustDecode(t)
	b, err := snapshot.Decode(strings.NewReader(fixtureDocGrown), snapshot.DecodeOptions{})
	require.NoError(t, err)

	rows, err := Diff(a, b, DiffOptions{Top: 10}, cancel.None())
	require.NoError(t, err)
	for i := 1; i < len(rows); i++ {
		assert.GreaterOrEqual(t, absInt64(rows[i-1].SelfSizeSumDelta), absInt64(rows[i].SelfSizeSumDelta))
	}
}

func TestDiffFiltersByContains(t *testing.T) {
	a := mustDecode(t)
	b, err := snapshot.Decode(strings.NewReader(fixtureDocGrown), snapshot.DecodeOptions{})
	require.NoError(t, err)

	rows, err := Diff(a, b, DiffOptions{Top: 10, Contains: "Foo"}, cancel.None())
	require.NoError(t, err)
	for _, r := range rows {
		assert.Contains(t, r.Name, "Foo")
	}
}
