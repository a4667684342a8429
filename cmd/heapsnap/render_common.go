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

	"github.com/kraklabs/heapsnap/pkg/analysis"
	"github.com/kraklabs/heapsnap/pkg/errs"
	"github.com/kraklabs/heapsnap/pkg/snapshot"
)

// outputFormat is the shared --format value every report-producing
// subcommand accepts.
type outputFormat string

const (
	formatMarkdown outputFormat = "md"
	formatJSON     outputFormat = "json"
	formatCSV      outputFormat = "csv"
)

func parseFormat(s string) (outputFormat, error) {
	switch outputFormat(s) {
	case formatMarkdown, "markdown", "":
		return formatMarkdown, nil
	case formatJSON:
		return formatJSON, nil
	case formatCSV:
		return formatCSV, nil
	}
	return "", errs.NewInvalidData("Unknown output format",
		fmt.Sprintf("format %q is not one of md, json, csv", s), nil)
}

// nodeView is the resolved (name/id/type) shape every renderer uses
// in place of a bare node index, so output is self-describing without
// a second lookup against the snapshot.
type nodeView struct {
	Index    int    `json:"index"`
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	NodeType string `json:"node_type"`
	SelfSize int64  `json:"self_size"`
}

func viewOf(s *snapshot.Snapshot, idx int) nodeView {
	n := s.Node(idx)
	id, _ := n.ID()
	name, _ := n.Name()
	typeName, _ := n.NodeType()
	selfSize, _ := n.SelfSize()
	return nodeView{Index: idx, ID: id, Name: name, NodeType: typeName, SelfSize: selfSize}
}

func refView(s *snapshot.Snapshot, ref analysis.NodeRef) nodeView {
	return nodeView{Index: ref.Index, ID: ref.ID, Name: nameAt(s, ref.Index), NodeType: ref.NodeType, SelfSize: ref.SelfSize}
}

func nameAt(s *snapshot.Snapshot, idx int) string {
	name, _ := s.Node(idx).Name()
	return name
}

// pathView is a root-to-target retaining path with every node resolved.
type pathView struct {
	Steps []pathStepView `json:"steps"`
}

type pathStepView struct {
	Node      nodeView `json:"node"`
	EdgeLabel string   `json:"edge_label"`
}

func pathsView(s *snapshot.Snapshot, result analysis.RetainersResult) []pathView {
	out := make([]pathView, len(result.Paths))
	for i, p := range result.Paths {
		steps := make([]pathStepView, len(p))
		for j, st := range p {
			steps[j] = pathStepView{Node: viewOf(s, st.NodeIndex), EdgeLabel: st.EdgeLabel}
		}
		out[i] = pathView{Steps: steps}
	}
	return out
}

func chainView(s *snapshot.Snapshot, result analysis.DominatorResult) []nodeView {
	out := make([]nodeView, len(result.Chain))
	for i, idx := range result.Chain {
		out[i] = viewOf(s, idx)
	}
	return out
}
