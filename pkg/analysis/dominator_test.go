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

func TestDominatorChainStartsAtRoot(t *testing.T) {
	snap := mustDecode(t)
	res, err := Dominator(snap, 2, DominatorOptions{MaxDepth: 10}, cancel.None())
	require.NoError(t, err)
	require.NotEmpty(t, res.Chain)
	assert.Equal(t, 0, res.Chain[0])
	assert.Equal(t, 2, res.Chain[len(res.Chain)-1])
}

func TestDominatorRootDominatesItself(t *testing.T) {
	snap := mustDecode(t)
	res, err := Dominator(snap, 0, DominatorOptions{MaxDepth: 10}, cancel.None())
	require.NoError(t, err)
	assert.Equal(t, []int{0}, res.Chain)
}

func TestDominatorChainThroughMultipleHops(t *testing.T) {
	snap := mustDecode(t)
	res, err := Dominator(snap, 4, DominatorOptions{MaxDepth: 10}, cancel.None())
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2, 4}, res.Chain)
}

func TestDominatorUnreachableNodeIsInvalidData(t *testing.T) {
	snap := mustDecode(t)
	_, err := Dominator(snap, -1, DominatorOptions{MaxDepth: 10}, cancel.None())
	require.Error(t, err)
}

func TestDominatorRespectsMaxDepth(t *testing.T) {
	snap := mustDecode(t)
	res, err := Dominator(snap, 2, DominatorOptions{MaxDepth: 1}, cancel.None())
	require.NoError(t, err)
	assert.Len(t, res.Chain, 1)
	assert.Equal(t, 2, res.Chain[0])
}
