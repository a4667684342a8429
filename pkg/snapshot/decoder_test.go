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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/heapsnap/pkg/cancel"
	"github.com/kraklabs/heapsnap/pkg/errs"
)

const sampleDoc = `{
  "snapshot": {
    "node_fields": ["type", "name", "id", "self_size", "edge_count"],
    "node_types": [["object", "string"], "string", "number", "number", "number"],
    "edge_fields": ["type", "name_or_index", "to_node"],
    "edge_types": [["property", "element"], "string_or_number", "node"]
  },
  "nodes": [0, 0, 1, 100, 1, 1, 1, 2, 40, 0],
  "edges": [0, 2, 5],
  "strings": ["GC roots", "leaf"]
}`

func TestDecodeHappyPath(t *testing.T) {
	snap, err := Decode(strings.NewReader(sampleDoc), DecodeOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, snap.NodeCount())
	assert.Equal(t, 1, snap.EdgeCount())

	n0 := snap.Node(0)
	name, ok := n0.Name()
	require.True(t, ok)
	assert.Equal(t, "GC roots", name)

	e0 := snap.Edge(0)
	target, ok := e0.ToNodeIndex()
	require.True(t, ok)
	assert.Equal(t, 1, target)
}

func TestDecodeSkipsUnknownTopLevelKeys(t *testing.T) {
	doc := `{"extra_field": {"nested": [1,2,3]}, ` + sampleDoc[1:]
	snap, err := Decode(strings.NewReader(doc), DecodeOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, snap.NodeCount())
}

func TestDecodeRejectsSyntaxError(t *testing.T) {
	_, err := Decode(strings.NewReader(`{"nodes": [1, 2,`), DecodeOptions{})
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.JSON))
}

func TestDecodeRequiresSnapshotKey(t *testing.T) {
	_, err := Decode(strings.NewReader(`{"nodes": [], "edges": [], "strings": []}`), DecodeOptions{})
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.MetaMismatch))
}

func TestDecodeRejectsMissingRequiredField(t *testing.T) {
	doc := `{
		"snapshot": {
			"node_fields": ["name", "id", "self_size", "edge_count"],
			"node_types": ["string", "number", "number", "number"],
			"edge_fields": ["type", "name_or_index", "to_node"],
			"edge_types": [["property"], "string_or_number", "node"]
		},
		"nodes": [], "edges": [], "strings": []
	}`
	_, err := Decode(strings.NewReader(doc), DecodeOptions{})
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.MetaMismatch))
}

func TestDecodeReportsCancellation(t *testing.T) {
	tok := cancel.New()
	tok.Cancel()
	_, err := Decode(strings.NewReader(sampleDoc), DecodeOptions{Token: tok})
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.Cancelled))
}

func TestDecodeInvokesProgressCallback(t *testing.T) {
	var lastSeen int64
	_, err := Decode(strings.NewReader(sampleDoc), DecodeOptions{
		OnProgress: func(n int64) { lastSeen = n },
	})
	require.NoError(t, err)
	assert.Greater(t, lastSeen, int64(0))
}

func TestDecodeRepairsLoneSurrogateInStrings(t *testing.T) {
	doc := `{
		"snapshot": {
			"node_fields": ["type", "name", "id", "self_size", "edge_count"],
			"node_types": [["object"], "string", "number", "number", "number"],
			"edge_fields": ["type", "name_or_index", "to_node"],
			"edge_types": [["property"], "string_or_number", "node"]
		},
		"nodes": [0, 0, 1, 0, 0],
		"edges": [],
		"strings": ["bad\uD800string"]
	}`
	snap, err := Decode(strings.NewReader(doc), DecodeOptions{})
	require.NoError(t, err)
	require.Len(t, snap.Strings, 1)
	assert.Equal(t, "bad�string", snap.Strings[0])
}
