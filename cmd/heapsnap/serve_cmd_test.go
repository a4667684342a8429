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
)

func TestIsLoopbackAcceptsLoopbackForms(t *testing.T) {
	for _, bind := range []string{"", "localhost", "127.0.0.1", "::1"} {
		assert.True(t, isLoopback(bind), "expected %q to be accepted as loopback", bind)
	}
}

func TestIsLoopbackRejectsNonLoopback(t *testing.T) {
	for _, bind := range []string{"0.0.0.0", "192.168.1.10", "::"} {
		assert.False(t, isLoopback(bind), "expected %q to be rejected", bind)
	}
}
