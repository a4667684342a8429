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
	"log/slog"
	"os"

	"github.com/kraklabs/heapsnap/pkg/cancel"
	"github.com/kraklabs/heapsnap/pkg/errs"
	"github.com/kraklabs/heapsnap/pkg/snapshot"
)

// loadSnapshot opens path and decodes it, wiring a progress bar to
// stderr (when showProgress is true; stderr is not checked for being a
// terminal) and the process-wide
// cancellation token so Ctrl-C during a multi-gigabyte parse is
// observed within one buffer fill.
func loadSnapshot(path string, showProgress bool, tok cancel.Token, log *slog.Logger) (*snapshot.Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.NewIO("Cannot open snapshot file", err.Error(), err)
	}
	defer f.Close()

	var totalBytes int64
	if fi, statErr := f.Stat(); statErr == nil {
		totalBytes = fi.Size()
	}

	bar := NewParseProgressBar(totalBytes, showProgress)
	defer bar.Close()

	log.Debug("decoding snapshot", "path", path, "bytes", totalBytes)
	snap, err := snapshot.Decode(f, snapshot.DecodeOptions{
		Token:      tok,
		OnProgress: progressCallback(bar),
	})
	if err != nil {
		return nil, err
	}
	log.Debug("decoded snapshot", "nodes", snap.NodeCount(), "edges", snap.EdgeCount())
	return snap, nil
}

// newLogger builds the process-wide slog.Logger, backed by a text
// handler to stderr. The core engines never log directly; only this
// CLI layer does.
func newLogger(verbose int) *slog.Logger {
	level := slog.LevelWarn
	switch {
	case verbose >= 2:
		level = slog.LevelDebug
	case verbose == 1:
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
