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
	"fmt"
	"sort"

	"github.com/kraklabs/heapsnap/pkg/cancel"
	"github.com/kraklabs/heapsnap/pkg/errs"
	"github.com/kraklabs/heapsnap/pkg/snapshot"
)

// histogramBounds is the eight fixed shallow-size buckets,
// given by each bucket's lower bound; the final bucket is unbounded.
var histogramBounds = [8]int64{0, 1, 32, 128, 512, 2048, 8192, 32768}

// DetailOptions selects exactly one of ID/Name and bounds the by-name
// match list and, for an id lookup, the retainer/outgoing-edge lists.
type DetailOptions struct {
	ID           int64
	HasID        bool
	Name         string
	Skip         int
	Limit        int
	TopRetainers int
	TopEdges     int
}

// NodeRef is a lightweight reference to a matched node.
type NodeRef struct {
	Index    int
	ID       int64
	NodeType string
	SelfSize int64
}

// RetainerItem pairs a retaining source node with the edge it holds the
// target through.
type RetainerItem struct {
	Source    NodeRef
	EdgeLabel string
}

// OutgoingItem pairs an outgoing edge with the node it targets.
type OutgoingItem struct {
	Target    NodeRef
	EdgeLabel string
}

// HistogramBucket is one fixed shallow-size bucket and its population.
type HistogramBucket struct {
	Low, High int64 // High == -1 denotes the unbounded final bucket.
	Count     int
}

// DetailResult is the full per-constructor or per-id report.
type DetailResult struct {
	Name        string
	Count       int
	SelfSizeSum int64

	Matches      []NodeRef
	TotalMatches int

	Target    NodeRef
	HasTarget bool

	Retainers []RetainerItem
	Outgoing  []OutgoingItem
	Histogram []HistogramBucket
}

// Detail dispatches to a by-id or by-name lookup. Callers must set
// exactly one of opts.HasID or a non-empty opts.Name.
func Detail(s *snapshot.Snapshot, opts DetailOptions, tok cancel.Token) (DetailResult, error) {
	if opts.HasID {
		return detailByID(s, opts, tok)
	}
	return detailByName(s, opts, tok)
}

func detailByName(s *snapshot.Snapshot, opts DetailOptions, tok cancel.Token) (DetailResult, error) {
	var (
		count       int
		selfSizeSum int64
		matches     []NodeRef
		total       int
	)

	n := s.NodeCount()
	for i := 0; i < n; i++ {
		if i%4096 == 0 && tok.Cancelled() {
			return DetailResult{}, errs.NewCancelled("Detail cancelled")
		}
		node := s.Node(i)
		name, _ := node.Name()
		if name != opts.Name {
			continue
		}
		count++
		selfSize, _ := node.SelfSize()
		selfSizeSum += selfSize

		total++
		if total <= opts.Skip {
			continue
		}
		if opts.Limit <= 0 || len(matches) < opts.Limit {
			matches = append(matches, nodeRefOf(node, i))
		}
	}

	if count == 0 {
		return DetailResult{}, errs.NewInvalidData("No matching nodes",
			fmt.Sprintf("no node has name %q", opts.Name), nil)
	}

	return DetailResult{
		Name:         opts.Name,
		Count:        count,
		SelfSizeSum:  selfSizeSum,
		Matches:      matches,
		TotalMatches: total,
	}, nil
}

func detailByID(s *snapshot.Snapshot, opts DetailOptions, tok cancel.Token) (DetailResult, error) {
	targetIdx := -1
	n := s.NodeCount()
	for i := 0; i < n; i++ {
		if i%4096 == 0 && tok.Cancelled() {
			return DetailResult{}, errs.NewCancelled("Detail cancelled")
		}
		id, ok := s.Node(i).ID()
		if ok && id == opts.ID {
			targetIdx = i
			break
		}
	}
	if targetIdx < 0 {
		return DetailResult{}, errs.NewInvalidData("No matching node",
			fmt.Sprintf("no node has id %d", opts.ID), nil)
	}

	targetNode := s.Node(targetIdx)
	name, _ := targetNode.Name()

	byName, err := detailByName(s, DetailOptions{Name: name, Limit: 0}, tok)
	if err != nil {
		return DetailResult{}, err
	}
	byName.Matches = nil
	byName.TotalMatches = 0
	byName.Target = nodeRefOf(targetNode, targetIdx)
	byName.HasTarget = true

	retainers, err := topRetainers(s, targetIdx, opts.TopRetainers, tok)
	if err != nil {
		return DetailResult{}, err
	}
	byName.Retainers = retainers

	outgoing, err := topOutgoing(s, targetIdx, opts.TopEdges, tok)
	if err != nil {
		return DetailResult{}, err
	}
	byName.Outgoing = outgoing

	byName.Histogram = shallowSizeHistogram(s, name, tok)

	return byName, nil
}

func nodeRefOf(n snapshot.NodeView, idx int) NodeRef {
	id, _ := n.ID()
	typeName, _ := n.NodeType()
	selfSize, _ := n.SelfSize()
	return NodeRef{Index: idx, ID: id, NodeType: typeName, SelfSize: selfSize}
}

// topRetainers scans every edge for one whose target is targetIdx,
// sorting by source self_size desc then source index asc.
func topRetainers(s *snapshot.Snapshot, targetIdx, top int, tok cancel.Token) ([]RetainerItem, error) {
	type candidate struct {
		sourceIdx int
		item      RetainerItem
	}
	var cands []candidate

	m := s.EdgeCount()
	off, err := snapshot.OffsetsOf(s)
	if err != nil {
		return nil, err
	}
	for i := 0; i < m; i++ {
		if i%4096 == 0 && tok.Cancelled() {
			return nil, errs.NewCancelled("Detail cancelled")
		}
		edge := s.Edge(i)
		to, ok := edge.ToNodeIndex()
		if !ok || to != targetIdx {
			continue
		}
		srcIdx := sourceOfEdge(off, i)
		if srcIdx < 0 {
			continue
		}
		cands = append(cands, candidate{
			sourceIdx: srcIdx,
			item:      RetainerItem{Source: nodeRefOf(s.Node(srcIdx), srcIdx), EdgeLabel: edge.EdgeLabel()},
		})
	}

	sort.Slice(cands, func(i, j int) bool {
		a, b := cands[i], cands[j]
		if a.item.Source.SelfSize != b.item.Source.SelfSize {
			return a.item.Source.SelfSize > b.item.Source.SelfSize
		}
		return a.sourceIdx < b.sourceIdx
	})
	if top > 0 && len(cands) > top {
		cands = cands[:top]
	}

	out := make([]RetainerItem, len(cands))
	for i, c := range cands {
		out[i] = c.item
	}
	return out, nil
}

// sourceOfEdge resolves which node owns edge index j by binary search
// over the offset table.
func sourceOfEdge(off snapshot.Offsets, j int) int {
	lo, hi := 0, len(off.Base)-2
	for lo <= hi {
		mid := (lo + hi) / 2
		start, end := off.Base[mid], off.Base[mid+1]
		if int64(j) < start {
			hi = mid - 1
		} else if int64(j) >= end {
			lo = mid + 1
		} else {
			return mid
		}
	}
	return -1
}

// topOutgoing iterates target's own outgoing edges, sorted by
// destination self_size desc then edge index asc.
func topOutgoing(s *snapshot.Snapshot, targetIdx, top int, tok cancel.Token) ([]OutgoingItem, error) {
	off, err := snapshot.OffsetsOf(s)
	if err != nil {
		return nil, err
	}
	start, end := off.EdgeRange(targetIdx)

	type candidate struct {
		edgeIdx int
		item    OutgoingItem
	}
	var cands []candidate
	for j := start; j < end; j++ {
		if j%4096 == 0 && tok.Cancelled() {
			return nil, errs.NewCancelled("Detail cancelled")
		}
		edge := s.Edge(j)
		to, ok := edge.ToNodeIndex()
		var ref NodeRef
		if ok {
			ref = nodeRefOf(s.Node(to), to)
		}
		cands = append(cands, candidate{
			edgeIdx: j,
			item:    OutgoingItem{Target: ref, EdgeLabel: edge.EdgeLabel()},
		})
	}

	sort.Slice(cands, func(i, j int) bool {
		a, b := cands[i], cands[j]
		if a.item.Target.SelfSize != b.item.Target.SelfSize {
			return a.item.Target.SelfSize > b.item.Target.SelfSize
		}
		return a.edgeIdx < b.edgeIdx
	})
	if top > 0 && len(cands) > top {
		cands = cands[:top]
	}

	out := make([]OutgoingItem, len(cands))
	for i, c := range cands {
		out[i] = c.item
	}
	return out, nil
}

// shallowSizeHistogram buckets every node sharing name into the eight
// fixed self_size ranges.
func shallowSizeHistogram(s *snapshot.Snapshot, name string, tok cancel.Token) []HistogramBucket {
	buckets := make([]HistogramBucket, len(histogramBounds))
	for i, low := range histogramBounds {
		high := int64(-1)
		if i+1 < len(histogramBounds) {
			high = histogramBounds[i+1] - 1
		}
		buckets[i] = HistogramBucket{Low: low, High: high}
	}

	n := s.NodeCount()
	for i := 0; i < n; i++ {
		if i%4096 == 0 && tok.Cancelled() {
			break
		}
		node := s.Node(i)
		nodeName, _ := node.Name()
		if nodeName != name {
			continue
		}
		selfSize, _ := node.SelfSize()
		idx := bucketFor(selfSize)
		buckets[idx].Count++
	}
	return buckets
}

func bucketFor(selfSize int64) int {
	for i := len(histogramBounds) - 1; i >= 0; i-- {
		if selfSize >= histogramBounds[i] {
			return i
		}
	}
	return 0
}
