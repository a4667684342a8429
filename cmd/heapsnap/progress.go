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
	"os"

	"github.com/schollz/progressbar/v3"
)

// NewParseProgressBar renders a byte-based progress bar for a decode of
// a snapshot of known total size. Callers wire it to
// snapshot.DecodeOptions.OnProgress.
func NewParseProgressBar(totalBytes int64, enabled bool) *progressbar.ProgressBar {
	if !enabled {
		return progressbar.DefaultBytesSilent(totalBytes)
	}
	return progressbar.NewOptions64(totalBytes,
		progressbar.OptionSetDescription("Parsing snapshot"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(30),
		progressbar.OptionThrottle(100),
		progressbar.OptionClearOnFinish(),
	)
}

// progressCallback adapts a *progressbar.ProgressBar to the
// snapshot.DecodeOptions.OnProgress shape (cumulative bytes read).
func progressCallback(bar *progressbar.ProgressBar) func(int64) {
	return func(n int64) {
		_ = bar.Set64(n)
	}
}
