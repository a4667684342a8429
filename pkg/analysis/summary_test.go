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

const fixtureDoc = `{
  "snapshot": {
    "node_fields": ["type", "name", "id", "self_size", "edge_count"],
    "node_types": [["object", "string", "(GC roots)"], "string", "number", "number", "number"],
    "edge_fields": ["type", "name_or_index", "to_node"],
    "edge_types": [["property", "element"], "string_or_number", "node"]
  },
  "nodes": [
    2, 0, 1, 0,   2,
    0, 1, 2, 1000, 1,
    0, 1, 3, 2000, 1,
    0, 2, 4, 500, 0,
    1, 3, 5, 10, 0
  ],
  "edges": [
    0, 4, 5,
    0, 5, 10,
    0, 6, 15,
    0, 0, 20
  ],
  "strings": ["GC roots", "Foo", "", "leaf"]
}`

func mustDecode(t *testing.T) *snapshot.Snapshot {
	t.Helper()
	snap, err := snapshot.Decode(strings.NewReader(fixtureDoc), snapshot.DecodeOptions{})
	require.NoError(t, err)
	return snap
}

func TestSummaryOrdersBySelfSizeDescending(t *testing.T) {
	snap := mustDecode(t)
	res, err := Summary(snap, SummaryOptions{Top: 10}, cancel.None())
	require.NoError(t, err)
	require.NotEmpty(t, res.Rows)
	for i := 1; i < len(res.Rows); i++ {
		assert.GreaterOrEqual(t, res.Rows[i-1].SelfSizeSum, res.Rows[i].SelfSizeSum)
	}
}

func TestSummaryFiltersByContains(t *testing.T) {
	snap := mustDecode(t)
	res, err := Summary(snap, SummaryOptions{Top: 10, Contains: "Foo"}, cancel.None())
	require.NoError(t, err)
	for _, r := range res.Rows {
		assert.Contains(t, r.Name, "Foo")
	}
}

func TestSummaryTruncatesToTop(t *testing.T) {
	snap := mustDecode(t)
	res, err := Summary(snap, SummaryOptions{Top: 1}, cancel.None())
	require.NoError(t, err)
	assert.LessOrEqual(t, len(res.Rows), 1)
}

func TestSummaryBucketsAnonymousNodesByType(t *testing.T) {
	snap := mustDecode(t)
	res, err := Summary(snap, SummaryOptions{Top: 10}, cancel.None())
	require.NoError(t, err)
	assert.NotEmpty(t, res.ByNodeType)
}

func TestSummaryRespectsCancellation(t *testing.T) {
	snap := mustDecode(t)
	tok := cancel.New()
	tok.Cancel()
	_, err := Summary(snap, SummaryOptions{Top: 10}, tok)
	require.Error(t, err)
}
