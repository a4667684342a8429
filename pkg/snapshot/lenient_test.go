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
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func filterAll(t *testing.T, in string) string {
	t.Helper()
	lr := NewLenientReader(strings.NewReader(in))
	out, err := io.ReadAll(lr)
	require.NoError(t, err)
	return string(out)
}

func TestLenientPassesAsciiUnchanged(t *testing.T) {
	in := `{"node_fields":["type","name","id","self_size","edge_count"]}`
	assert.Equal(t, in, filterAll(t, in))
}

func TestLenientPassesEscapesUnchanged(t *testing.T) {
	in := `"line1\nline2\ttab\\backslash\"quote"`
	assert.Equal(t, in, filterAll(t, in))
}

func TestLenientPassesValidSurrogatePairUnchanged(t *testing.T) {
	in := "\"\\uD83D\\uDE00\""
	assert.Equal(t, in, filterAll(t, in))
}

func TestLenientRewritesLoneHighSurrogate(t *testing.T) {
	in := `"\uD800"`
	assert.Equal(t, "\"\\uFFFD\"", filterAll(t, in))
}

func TestLenientRewritesLoneLowSurrogate(t *testing.T) {
	in := `"\uDC00"`
	assert.Equal(t, "\"\\uFFFD\"", filterAll(t, in))
}

func TestLenientHandlesMultipleLoneSurrogatesInOneString(t *testing.T) {
	in := `"\uD800x\uDC00"`
	assert.Equal(t, "\"\\uFFFDx\\uFFFD\"", filterAll(t, in))
}

func TestLenientLeavesNonSurrogateEscapeAlone(t *testing.T) {
	in := "\"\\u0041\""
	assert.Equal(t, "\"\\u0041\"", filterAll(t, in))
}

func TestLenientOnlyRewritesInsideStrings(t *testing.T) {
	// Outside a string, backslash-u never arises in valid JSON, but the
	// filter must still only track string boundaries via unescaped quotes.
	in := `{"a":"\uD800","b":1}`
	assert.Equal(t, "{\"a\":\"\\uFFFD\",\"b\":1}", filterAll(t, in))
}

func TestLenientReadWorksAcrossSmallBuffers(t *testing.T) {
	in := `"prefix\uD800suffix😀tail"`
	lr := NewLenientReader(strings.NewReader(in))
	var buf bytes.Buffer
	small := make([]byte, 3)
	for {
		n, err := lr.Read(small)
		buf.Write(small[:n])
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
	}
	assert.Equal(t, "\"prefix\\uFFFDsuffix😀tail\"", buf.String())
}
