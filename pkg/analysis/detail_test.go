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

func TestDetailByNameAggregatesAndLimits(t *testing.T) {
	snap := mustDecode(t)
	res, err := Detail(snap, DetailOptions{Name: "Foo", Limit: 1}, cancel.None())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Count)
	assert.Equal(t, int64(3000), res.SelfSizeSum)
	assert.Len(t, res.Matches, 1)
	assert.Equal(t, 2, res.TotalMatches)
}

func TestDetailByNameSkipsMatches(t *testing.T) {
	snap := mustDecode(t)
	res, err := Detail(snap, DetailOptions{Name: "Foo", Skip: 1, Limit: 10}, cancel.None())
	require.NoError(t, err)
	assert.Len(t, res.Matches, 1)
}

func TestDetailByNameWithNoMatchesIsInvalidData(t *testing.T) {
	snap := mustDecode(t)
	_, err := Detail(snap, DetailOptions{Name: "does-not-exist"}, cancel.None())
	require.Error(t, err)
}

func TestDetailByIDFindsTargetAndRetainers(t *testing.T) {
	snap := mustDecode(t)
	res, err := Detail(snap, DetailOptions{HasID: true, ID: 3, TopRetainers: 5, TopEdges: 5}, cancel.None())
	require.NoError(t, err)
	require.True(t, res.HasTarget)
	assert.Equal(t, int64(3), res.Target.ID)
	assert.NotEmpty(t, res.Retainers)
}

func TestDetailByIDUnknownIsInvalidData(t *testing.T) {
	snap := mustDecode(t)
	_, err := Detail(snap, DetailOptions{HasID: true, ID: 999999}, cancel.None())
	require.Error(t, err)
}

func TestDetailHistogramBucketsShallowSizes(t *testing.T) {
	snap := mustDecode(t)
	res, err := Detail(snap, DetailOptions{HasID: true, ID: 2}, cancel.None())
	require.NoError(t, err)
	var total int
	for _, b := range res.Histogram {
		total += b.Count
	}
	assert.Equal(t, res.Count, total)
}
