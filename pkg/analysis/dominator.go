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
	"math"

	"github.com/kraklabs/heapsnap/pkg/cancel"
	"github.com/kraklabs/heapsnap/pkg/errs"
	"github.com/kraklabs/heapsnap/pkg/snapshot"
)

// DominatorOptions bounds the emitted chain.
type DominatorOptions struct {
	MaxDepth int
}

// DominatorResult is the root-first chain of immediate dominators ending
// at the requested target.
type DominatorResult struct {
	Chain []int
}

const unreached = -1

// Dominator runs the iterative Cooper/Harvey/Kennedy algorithm over
// the whole reachable subgraph, then walks the idom chain from target
// back to its root.
func Dominator(s *snapshot.Snapshot, targetIdx int, opts DominatorOptions, tok cancel.Token) (DominatorResult, error) {
	n := s.NodeCount()
	succs, preds, err := buildAdjacency(s, tok)
	if err != nil {
		return DominatorResult{}, err
	}
	roots := gcRoots(s)

	rpoIndex, rpoOrder := reversePostorder(n, roots, succs)

	idom := make([]int, n)
	for i := range idom {
		idom[i] = unreached
	}
	for r := range roots {
		idom[r] = r
	}

	changed := true
	for changed {
		if tok.Cancelled() {
			return DominatorResult{}, errs.NewCancelled("Dominator cancelled")
		}
		changed = false
		for _, node := range rpoOrder {
			if roots[node] {
				continue
			}
			newIdom := unreached
			for _, p := range preds[node] {
				if idom[p] == unreached {
					continue
				}
				if newIdom == unreached {
					newIdom = p
					continue
				}
				newIdom = intersect(newIdom, p, idom, rpoIndex)
			}
			if newIdom != unreached && newIdom != idom[node] {
				idom[node] = newIdom
				changed = true
			}
		}
	}

	return emitChain(idom, targetIdx, opts.MaxDepth)
}

func buildAdjacency(s *snapshot.Snapshot, tok cancel.Token) (succs, preds [][]int, err error) {
	n := s.NodeCount()
	succs = make([][]int, n)
	preds = make([][]int, n)

	off, err := snapshot.OffsetsOf(s)
	if err != nil {
		return nil, nil, err
	}

	m := s.EdgeCount()
	for j := 0; j < m; j++ {
		if j%4096 == 0 && tok.Cancelled() {
			return nil, nil, errs.NewCancelled("Dominator cancelled")
		}
		to, ok := s.Edge(j).ToNodeIndex()
		if !ok {
			continue
		}
		from := sourceOfEdge(off, j)
		if from < 0 {
			continue
		}
		succs[from] = append(succs[from], to)
		preds[to] = append(preds[to], from)
	}
	return succs, preds, nil
}

// reversePostorder runs an iterative DFS from every root, returning
// rpoIndex (node -> position, unreachable nodes at math.MaxInt32) and the
// node order itself.
func reversePostorder(n int, roots map[int]bool, succs [][]int) ([]int, []int) {
	rpoIndex := make([]int, n)
	for i := range rpoIndex {
		rpoIndex[i] = math.MaxInt32
	}

	visited := make([]bool, n)
	var postorder []int

	type frame struct {
		node    int
		childAt int
	}

	for r := range roots {
		if visited[r] {
			continue
		}
		stack := []frame{{node: r}}
		visited[r] = true
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			if top.childAt < len(succs[top.node]) {
				child := succs[top.node][top.childAt]
				top.childAt++
				if !visited[child] {
					visited[child] = true
					stack = append(stack, frame{node: child})
				}
				continue
			}
			postorder = append(postorder, top.node)
			stack = stack[:len(stack)-1]
		}
	}

	rpoOrder := make([]int, len(postorder))
	for i, node := range postorder {
		pos := len(postorder) - 1 - i
		rpoOrder[pos] = node
		rpoIndex[node] = pos
	}
	return rpoIndex, rpoOrder
}

// intersect is the two-finger walk that finds the nearest common
// ancestor of a and b in the dominator tree built so far, using rpoIndex
// to decide which finger to advance (lower rpoIndex = earlier = closer
// to the root).
func intersect(a, b int, idom, rpoIndex []int) int {
	for a != b {
		for rpoIndex[a] > rpoIndex[b] {
			a = idom[a]
		}
		for rpoIndex[b] > rpoIndex[a] {
			b = idom[b]
		}
	}
	return a
}

func emitChain(idom []int, targetIdx, maxDepth int) (DominatorResult, error) {
	if targetIdx < 0 || targetIdx >= len(idom) || idom[targetIdx] == unreached {
		return DominatorResult{}, errs.NewInvalidData("Unreachable node",
			"target has no computed dominator (unreachable from any root)", nil)
	}

	var chain []int
	current := targetIdx
	for depth := 0; depth < maxDepth; depth++ {
		chain = append(chain, current)
		if idom[current] == current {
			break
		}
		current = idom[current]
	}

	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return DominatorResult{Chain: chain}, nil
}
