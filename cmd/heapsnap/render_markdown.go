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
	"fmt"
	"io"

	"github.com/kraklabs/heapsnap/pkg/analysis"
	"github.com/kraklabs/heapsnap/pkg/snapshot"
)

func renderSummaryMarkdown(w io.Writer, r analysis.SummaryResult) {
	fmt.Fprintln(w, "# Summary")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "| Name | Count | Self Size |")
	fmt.Fprintln(w, "|---|---:|---:|")
	for _, row := range r.Rows {
		fmt.Fprintf(w, "| %s | %d | %d |\n", mdEscape(row.Name), row.Count, row.SelfSizeSum)
	}
	if len(r.ByNodeType) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "## Anonymous entries, by node type")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "| Node Type | Count | Self Size |")
		fmt.Fprintln(w, "|---|---:|---:|")
		for _, row := range r.ByNodeType {
			fmt.Fprintf(w, "| %s | %d | %d |\n", mdEscape(row.Name), row.Count, row.SelfSizeSum)
		}
	}
}

func renderDetailMarkdown(w io.Writer, r analysis.DetailResult) {
	fmt.Fprintf(w, "# Detail: %s\n\n", mdEscape(r.Name))
	fmt.Fprintf(w, "Count: %d  \nSelf size sum: %d\n\n", r.Count, r.SelfSizeSum)

	if r.HasTarget {
		fmt.Fprintf(w, "## Target\n\nindex=%d id=%d type=%s self_size=%d\n\n",
			r.Target.Index, r.Target.ID, r.Target.NodeType, r.Target.SelfSize)

		fmt.Fprintln(w, "## Top retainers")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "| Source | Edge |")
		fmt.Fprintln(w, "|---|---|")
		for _, ri := range r.Retainers {
			fmt.Fprintf(w, "| id=%d type=%s self_size=%d | %s |\n",
				ri.Source.ID, ri.Source.NodeType, ri.Source.SelfSize, mdEscape(ri.EdgeLabel))
		}

		fmt.Fprintln(w)
		fmt.Fprintln(w, "## Top outgoing edges")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "| Edge | Target |")
		fmt.Fprintln(w, "|---|---|")
		for _, oi := range r.Outgoing {
			fmt.Fprintf(w, "| %s | id=%d type=%s self_size=%d |\n",
				mdEscape(oi.EdgeLabel), oi.Target.ID, oi.Target.NodeType, oi.Target.SelfSize)
		}

		fmt.Fprintln(w)
		fmt.Fprintln(w, "## Shallow size histogram")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "| Range | Count |")
		fmt.Fprintln(w, "|---|---:|")
		for _, b := range r.Histogram {
			fmt.Fprintf(w, "| %s | %d |\n", histogramRangeLabel(b), b.Count)
		}
	} else {
		fmt.Fprintf(w, "## Matches (%d of %d)\n\n", len(r.Matches), r.TotalMatches)
		fmt.Fprintln(w, "| Index | ID | Type | Self Size |")
		fmt.Fprintln(w, "|---:|---:|---|---:|")
		for _, m := range r.Matches {
			fmt.Fprintf(w, "| %d | %d | %s | %d |\n", m.Index, m.ID, m.NodeType, m.SelfSize)
		}
	}
}

func renderRetainersMarkdown(w io.Writer, s *snapshot.Snapshot, r analysis.RetainersResult) {
	fmt.Fprintln(w, "# Retainers")
	fmt.Fprintln(w)
	paths := pathsView(s, r)
	if len(paths) == 0 {
		fmt.Fprintln(w, "No retaining path found.")
		return
	}
	for i, p := range paths {
		fmt.Fprintf(w, "## Path %d\n\n", i+1)
		if len(p.Steps) == 0 {
			fmt.Fprintln(w, "(target is itself a root)")
			fmt.Fprintln(w)
			continue
		}
		for _, st := range p.Steps {
			fmt.Fprintf(w, "- %s (id=%d, type=%s, self_size=%d) --[%s]-->\n",
				mdEscape(st.Node.Name), st.Node.ID, st.Node.NodeType, st.Node.SelfSize, mdEscape(st.EdgeLabel))
		}
		fmt.Fprintln(w)
	}
}

func renderDominatorMarkdown(w io.Writer, s *snapshot.Snapshot, r analysis.DominatorResult) {
	fmt.Fprintln(w, "# Dominator chain")
	fmt.Fprintln(w)
	chain := chainView(s, r)
	for i, nv := range chain {
		prefix := "  "
		if i == 0 {
			prefix = "root: "
		} else if i == len(chain)-1 {
			prefix = "target: "
		}
		fmt.Fprintf(w, "%s%s (id=%d, type=%s, self_size=%d)\n", prefix, mdEscape(nv.Name), nv.ID, nv.NodeType, nv.SelfSize)
	}
}

func renderDiffMarkdown(w io.Writer, rows []analysis.DiffRow) {
	fmt.Fprintln(w, "# Diff")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "| Name | Count A | Count B | Δ Count | Self Size A | Self Size B | Δ Self Size |")
	fmt.Fprintln(w, "|---|---:|---:|---:|---:|---:|---:|")
	for _, row := range rows {
		fmt.Fprintf(w, "| %s | %d | %d | %+d | %d | %d | %+d |\n",
			mdEscape(row.Name), row.CountA, row.CountB, row.CountDelta,
			row.SelfSizeSumA, row.SelfSizeSumB, row.SelfSizeSumDelta)
	}
}

func histogramRangeLabel(b analysis.HistogramBucket) string {
	if b.High < 0 {
		return fmt.Sprintf("[%d, +∞)", b.Low)
	}
	return fmt.Sprintf("[%d, %d]", b.Low, b.High)
}

func mdEscape(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '|' || c == '\n' || c == '\r' {
			out = append(out, ' ')
			continue
		}
		out = append(out, c)
	}
	return string(out)
}
