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

package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

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
    2, 0, 1, 0,   1,
    0, 1, 2, 1000, 0
  ],
  "edges": [
    0, 4, 5
  ],
  "strings": ["GC roots", "Foo"]
}`

func mustDecodeFixture(t *testing.T) *snapshot.Snapshot {
	t.Helper()
	snap, err := snapshot.Decode(strings.NewReader(fixtureDoc), snapshot.DecodeOptions{})
	require.NoError(t, err)
	return snap
}

func TestParseFormatAcceptsKnownValues(t *testing.T) {
	for _, s := range []string{"", "md", "markdown", "json", "csv"} {
		f, err := parseFormat(s)
		require.NoError(t, err)
		assert.NotEmpty(t, f)
	}
}

func TestParseFormatRejectsUnknownValue(t *testing.T) {
	_, err := parseFormat("yaml")
	require.Error(t, err)
}

func TestViewOfResolvesNodeFields(t *testing.T) {
	snap := mustDecodeFixture(t)
	v := viewOf(snap, 1)
	assert.Equal(t, "Foo", v.Name)
	assert.Equal(t, int64(1000), v.SelfSize)
}

func TestNameAtReturnsNodeName(t *testing.T) {
	snap := mustDecodeFixture(t)
	assert.Equal(t, "GC roots", nameAt(snap, 0))
}
