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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveTargetByID(t *testing.T) {
	snap := mustDecodeFixture(t)
	idx, err := resolveTarget(snap, 2, true, "", "")
	require.NoError(t, err)
	assert.Equal(t, 1, idx)
}

func TestResolveTargetByUnknownID(t *testing.T) {
	snap := mustDecodeFixture(t)
	_, err := resolveTarget(snap, 999, true, "", "")
	require.Error(t, err)
}

func TestResolveTargetByName(t *testing.T) {
	snap := mustDecodeFixture(t)
	idx, err := resolveTarget(snap, 0, false, "Foo", "largest")
	require.NoError(t, err)
	assert.Equal(t, 1, idx)
}

func TestParseResolveStrategyDefaultsToLargest(t *testing.T) {
	s, err := parseResolveStrategy("")
	require.NoError(t, err)
	assert.Equal(t, 0, int(s))
}

func TestParseResolveStrategyRejectsUnknown(t *testing.T) {
	_, err := parseResolveStrategy("smallest")
	require.Error(t, err)
}
