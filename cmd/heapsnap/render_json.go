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
	"encoding/json"
	"io"

	"github.com/kraklabs/heapsnap/pkg/analysis"
	"github.com/kraklabs/heapsnap/pkg/snapshot"
)

func renderSummaryJSON(w io.Writer, r analysis.SummaryResult) error {
	return encodeJSON(w, r)
}

func renderDetailJSON(w io.Writer, r analysis.DetailResult) error {
	return encodeJSON(w, r)
}

func renderRetainersJSON(w io.Writer, s *snapshot.Snapshot, r analysis.RetainersResult) error {
	return encodeJSON(w, struct {
		Paths []pathView `json:"paths"`
	}{Paths: pathsView(s, r)})
}

func renderDominatorJSON(w io.Writer, s *snapshot.Snapshot, r analysis.DominatorResult) error {
	return encodeJSON(w, struct {
		Chain []nodeView `json:"chain"`
	}{Chain: chainView(s, r)})
}

func renderDiffJSON(w io.Writer, rows []analysis.DiffRow) error {
	return encodeJSON(w, struct {
		Rows []analysis.DiffRow `json:"rows"`
	}{Rows: rows})
}

func encodeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
