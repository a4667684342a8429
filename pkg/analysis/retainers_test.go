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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/heapsnap/pkg/cancel"
)

func TestRetainersFindsPathFromRoot(t *testing.T) {
	snap := mustDecode(t)
	// node index 2 (id=3, "Foo") is reachable from node 0 ("GC roots").
	res, err := Retainers(snap, 2, RetainersOptions{MaxPaths: 10, MaxDepth: 10}, cancel.None())
	require.NoError(t, err)
	require.NotEmpty(t, res.Paths)
	first := res.Paths[0][0]
	assert.Equal(t, 0, first.NodeIndex)
}

func TestRetainersTargetIsRootYieldsEmptyPath(t *testing.T) {
	snap := mustDecode(t)
	res, err := Retainers(snap, 0, RetainersOptions{MaxPaths: 10, MaxDepth: 10}, cancel.None())
	require.NoError(t, err)
	require.Len(t, res.Paths, 1)
	assert.Empty(t, res.Paths[0])
}

func TestRetainersRespectsMaxPaths(t *testing.T) {
	snap := mustDecode(t)
	res, err := Retainers(snap, 2, RetainersOptions{MaxPaths: 0, MaxDepth: 10}, cancel.None())
	require.NoError(t, err)
	assert.Empty(t, res.Paths)
}

func TestResolveTargetByNamePicksLargest(t *testing.T) {
	snap := mustDecode(t)
	idx, err := ResolveTargetByName(snap, "Foo", Largest)
	require.NoError(t, err)
	id, ok := snap.Node(idx).ID()
	require.True(t, ok)
	assert.Equal(t, int64(3), id) // the larger "Foo" node, self_size 2000
}

func TestResolveTargetByNameNoMatch(t *testing.T) {
	snap := mustDecode(t)
	_, err := ResolveTargetByName(snap, "nonexistent", Largest)
	require.Error(t, err)
}
