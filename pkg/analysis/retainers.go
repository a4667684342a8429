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
	"sort"

	"github.com/kraklabs/heapsnap/pkg/cancel"
	"github.com/kraklabs/heapsnap/pkg/errs"
	"github.com/kraklabs/heapsnap/pkg/snapshot"
)

// RetainersOptions bounds the reverse BFS.
type RetainersOptions struct {
	MaxPaths int
	MaxDepth int
}

// RetainerStep is one hop of a retaining path: the node the path passes
// through and the label of the edge from this node to the next node on
// the path. The target itself is not a step; the last step's edge points
// at it.
type RetainerStep struct {
	NodeIndex int
	EdgeLabel string
}

// RetainersResult is the set of completed root-to-target paths.
type RetainersResult struct {
	Paths [][]RetainerStep
}

// incomingEdge is one entry of the lazily built predecessor index: an
// edge from Source into the node this entry is filed under.
type incomingEdge struct {
	Source    int
	EdgeIndex int
}

// incomingIndex is the lazy incoming-edge side table: built only for
// nodes the active BFS frontier actually needs, one full O(edges) scan
// per call to buildFor, skipping destinations already materialized.
type incomingIndex struct {
	s     *snapshot.Snapshot
	off   snapshot.Offsets
	built map[int]bool
	preds map[int][]incomingEdge
}

func newIncomingIndex(s *snapshot.Snapshot, off snapshot.Offsets) *incomingIndex {
	return &incomingIndex{s: s, off: off, built: make(map[int]bool), preds: make(map[int][]incomingEdge)}
}

func (ix *incomingIndex) buildFor(targets []int, tok cancel.Token) error {
	need := make(map[int]bool)
	for _, t := range targets {
		if !ix.built[t] {
			need[t] = true
		}
	}
	if len(need) == 0 {
		return nil
	}

	m := ix.s.EdgeCount()
	for j := 0; j < m; j++ {
		if j%4096 == 0 && tok.Cancelled() {
			return errs.NewCancelled("Retainers cancelled")
		}
		edge := ix.s.Edge(j)
		to, ok := edge.ToNodeIndex()
		if !ok || !need[to] {
			continue
		}
		from := sourceOfEdge(ix.off, j)
		if from < 0 {
			continue
		}
		ix.preds[to] = append(ix.preds[to], incomingEdge{Source: from, EdgeIndex: j})
	}
	for t := range need {
		ix.built[t] = true
	}
	return nil
}

type pathState struct {
	node    int
	edges   []int // edge indices taken so far, in reverse-traversal order
	visited map[int]bool
}

// Retainers runs a layered reverse BFS from targetIdx back to the
// GC-roots set (or node 0 if there is no such node), lazily
// materializing only the incoming edges the active frontier needs.
func Retainers(s *snapshot.Snapshot, targetIdx int, opts RetainersOptions, tok cancel.Token) (RetainersResult, error) {
	if s.NodeCount() == 0 {
		return RetainersResult{}, errs.NewInvalidData("Empty snapshot", "snapshot has no nodes", nil)
	}

	roots := gcRoots(s)
	if roots[targetIdx] {
		return RetainersResult{Paths: [][]RetainerStep{{}}}, nil
	}

	off, err := snapshot.OffsetsOf(s)
	if err != nil {
		return RetainersResult{}, err
	}
	ix := newIncomingIndex(s, off)

	layer := []pathState{{node: targetIdx, visited: map[int]bool{targetIdx: true}}}
	var completed [][]RetainerStep

	for depth := 0; len(layer) > 0 && depth < opts.MaxDepth && len(completed) < opts.MaxPaths; depth++ {
		if tok.Cancelled() {
			return RetainersResult{}, errs.NewCancelled("Retainers cancelled")
		}

		targets := distinctNodes(layer)
		if err := ix.buildFor(targets, tok); err != nil {
			return RetainersResult{}, err
		}

		var next []pathState
		for _, st := range layer {
			if len(completed) >= opts.MaxPaths {
				break
			}
			for _, pe := range ix.preds[st.node] {
				if st.visited[pe.Source] {
					continue
				}
				newVisited := make(map[int]bool, len(st.visited)+1)
				for k := range st.visited {
					newVisited[k] = true
				}
				newVisited[pe.Source] = true
				newEdges := append(append([]int(nil), st.edges...), pe.EdgeIndex)

				if roots[pe.Source] {
					completed = append(completed, renderPath(s, newEdges, pe.Source))
					if len(completed) >= opts.MaxPaths {
						break
					}
					continue
				}
				next = append(next, pathState{node: pe.Source, edges: newEdges, visited: newVisited})
			}
		}
		layer = next
	}

	return RetainersResult{Paths: completed}, nil
}

// renderPath turns a reverse-order edge-index list plus the root it
// terminated at into a root-first sequence of (node, outgoing-edge-label)
// steps whose last edge leads to the original target.
func renderPath(s *snapshot.Snapshot, edgesReverse []int, root int) []RetainerStep {
	steps := make([]RetainerStep, len(edgesReverse))
	node := root
	for i := len(edgesReverse) - 1; i >= 0; i-- {
		edgeIdx := edgesReverse[i]
		steps[len(edgesReverse)-1-i] = RetainerStep{NodeIndex: node, EdgeLabel: s.Edge(edgeIdx).EdgeLabel()}
		to, ok := s.Edge(edgeIdx).ToNodeIndex()
		if ok {
			node = to
		}
	}
	return steps
}

func distinctNodes(layer []pathState) []int {
	seen := make(map[int]bool, len(layer))
	out := make([]int, 0, len(layer))
	for _, st := range layer {
		if !seen[st.node] {
			seen[st.node] = true
			out = append(out, st.node)
		}
	}
	return out
}

// gcRoots is the set of nodes named "GC roots", falling back to {0} if
// none exists.
func gcRoots(s *snapshot.Snapshot) map[int]bool {
	roots := make(map[int]bool)
	n := s.NodeCount()
	for i := 0; i < n; i++ {
		name, ok := s.Node(i).Name()
		if ok && name == "GC roots" {
			roots[i] = true
		}
	}
	if len(roots) == 0 {
		roots[0] = true
	}
	return roots
}

// ResolveStrategy picks among several nodes whose name contains a
// substring.
type ResolveStrategy int

const (
	// Largest groups by sum of self sizes, then count, then name.
	Largest ResolveStrategy = iota
	// Count groups by count, then sum, then name.
	Count
)

// ResolveTargetByName finds the best node index matching a substring of
// its name, per the winning group under strategy, then returns the
// largest-self_size node within that group.
func ResolveTargetByName(s *snapshot.Snapshot, substr string, strategy ResolveStrategy) (int, error) {
	type group struct {
		name        string
		count       int
		selfSizeSum int64
		bestIdx     int
		bestSize    int64
	}
	groups := make(map[string]*group)

	n := s.NodeCount()
	for i := 0; i < n; i++ {
		node := s.Node(i)
		name, ok := node.Name()
		if !ok || !containsSubstring(name, substr) {
			continue
		}
		selfSize, _ := node.SelfSize()
		g := groups[name]
		if g == nil {
			g = &group{name: name, bestIdx: i, bestSize: selfSize}
			groups[name] = g
		}
		g.count++
		g.selfSizeSum += selfSize
		if selfSize > g.bestSize {
			g.bestSize = selfSize
			g.bestIdx = i
		}
	}

	if len(groups) == 0 {
		return 0, errs.NewInvalidData("No matching node", "no node name contains "+substr, nil)
	}

	list := make([]*group, 0, len(groups))
	for _, g := range groups {
		list = append(list, g)
	}
	sort.Slice(list, func(i, j int) bool {
		a, b := list[i], list[j]
		switch strategy {
		case Count:
			if a.count != b.count {
				return a.count > b.count
			}
			if a.selfSizeSum != b.selfSizeSum {
				return a.selfSizeSum > b.selfSizeSum
			}
		default:
			if a.selfSizeSum != b.selfSizeSum {
				return a.selfSizeSum > b.selfSizeSum
			}
			if a.count != b.count {
				return a.count > b.count
			}
		}
		return a.name < b.name
	})
	return list[0].bestIdx, nil
}
