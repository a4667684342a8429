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
	"encoding/csv"
	"io"
	"strconv"

	"github.com/kraklabs/heapsnap/pkg/analysis"
	"github.com/kraklabs/heapsnap/pkg/snapshot"
)

func renderSummaryCSV(w io.Writer, r analysis.SummaryResult) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()
	if err := cw.Write([]string{"bucket", "name", "count", "self_size_sum"}); err != nil {
		return err
	}
	for _, row := range r.Rows {
		if err := cw.Write([]string{"name", row.Name, itoa(row.Count), i64toa(row.SelfSizeSum)}); err != nil {
			return err
		}
	}
	for _, row := range r.ByNodeType {
		if err := cw.Write([]string{"node_type", row.Name, itoa(row.Count), i64toa(row.SelfSizeSum)}); err != nil {
			return err
		}
	}
	return cw.Error()
}

// renderDetailCSV flattens the nested retainer/outgoing/histogram lists
// to one row per leaf record, with a "section" key column distinguishing
// which nested list the row came from.
func renderDetailCSV(w io.Writer, r analysis.DetailResult) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()
	if err := cw.Write([]string{"section", "col1", "col2", "col3", "col4"}); err != nil {
		return err
	}
	write := func(rec ...string) error { return cw.Write(rec) }

	if err := write("summary", r.Name, itoa(r.Count), i64toa(r.SelfSizeSum), ""); err != nil {
		return err
	}
	if r.HasTarget {
		if err := write("target", i64toa(r.Target.ID), r.Target.NodeType, i64toa(r.Target.SelfSize), ""); err != nil {
			return err
		}
		for _, ri := range r.Retainers {
			if err := write("retainer", i64toa(ri.Source.ID), ri.Source.NodeType, i64toa(ri.Source.SelfSize), ri.EdgeLabel); err != nil {
				return err
			}
		}
		for _, oi := range r.Outgoing {
			if err := write("outgoing", i64toa(oi.Target.ID), oi.Target.NodeType, i64toa(oi.Target.SelfSize), oi.EdgeLabel); err != nil {
				return err
			}
		}
		for _, b := range r.Histogram {
			if err := write("histogram", i64toa(b.Low), i64toa(b.High), itoa(b.Count), ""); err != nil {
				return err
			}
		}
	} else {
		for _, m := range r.Matches {
			if err := write("match", itoa(m.Index), i64toa(m.ID), m.NodeType, i64toa(m.SelfSize)); err != nil {
				return err
			}
		}
	}
	return cw.Error()
}

func renderRetainersCSV(w io.Writer, s *snapshot.Snapshot, r analysis.RetainersResult) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()
	if err := cw.Write([]string{"path", "step", "node_id", "node_name", "node_type", "self_size", "edge_label"}); err != nil {
		return err
	}
	for pi, p := range pathsView(s, r) {
		for si, st := range p.Steps {
			rec := []string{
				itoa(pi), itoa(si), i64toa(st.Node.ID), st.Node.Name, st.Node.NodeType,
				i64toa(st.Node.SelfSize), st.EdgeLabel,
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
	}
	return cw.Error()
}

func renderDominatorCSV(w io.Writer, s *snapshot.Snapshot, r analysis.DominatorResult) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()
	if err := cw.Write([]string{"depth", "node_id", "node_name", "node_type", "self_size"}); err != nil {
		return err
	}
	for i, nv := range chainView(s, r) {
		rec := []string{itoa(i), i64toa(nv.ID), nv.Name, nv.NodeType, i64toa(nv.SelfSize)}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	return cw.Error()
}

func renderDiffCSV(w io.Writer, rows []analysis.DiffRow) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()
	header := []string{"name", "count_a", "count_b", "count_delta", "self_size_a", "self_size_b", "self_size_delta"}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, row := range rows {
		rec := []string{
			row.Name, itoa(row.CountA), itoa(row.CountB), itoa(row.CountDelta),
			i64toa(row.SelfSizeSumA), i64toa(row.SelfSizeSumB), i64toa(row.SelfSizeSumDelta),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	return cw.Error()
}

func itoa(n int) string     { return strconv.Itoa(n) }
func i64toa(n int64) string { return strconv.FormatInt(n, 10) }
