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

// Package analysis implements the five forensic engines that read a
// *snapshot.Snapshot: summary, detail, retainers, dominator, and diff.
// Every engine takes the snapshot, an options record, and a
// cancel.Token, and returns a plain result or a *errs.Error.
package analysis

import (
	"sort"
	"strings"

	"github.com/kraklabs/heapsnap/pkg/cancel"
	"github.com/kraklabs/heapsnap/pkg/errs"
	"github.com/kraklabs/heapsnap/pkg/snapshot"
)

// SummaryOptions bounds and filters a Summary run.
type SummaryOptions struct {
	Top      int
	Contains string
}

// SummaryRow is one constructor-name aggregate.
type SummaryRow struct {
	Name        string
	Count       int
	SelfSizeSum int64
}

// SummaryResult is the full report: the name-keyed rows plus the
// node-type sub-buckets accumulated for anonymous (empty-name) entries.
type SummaryResult struct {
	Rows       []SummaryRow
	ByNodeType []SummaryRow
}

type bucket struct {
	count       int
	selfSizeSum int64
}

// Summary walks every node once, grouping by name_index.
func Summary(s *snapshot.Snapshot, opts SummaryOptions, tok cancel.Token) (SummaryResult, error) {
	byName := make(map[int]*bucket)
	byType := make(map[string]*bucket)

	n := s.NodeCount()
	for i := 0; i < n; i++ {
		if i%4096 == 0 && tok.Cancelled() {
			return SummaryResult{}, errs.NewCancelled("Summary cancelled")
		}
		node := s.Node(i)
		selfSize, _ := node.SelfSize()

		nameIdx, hasName := node.NameIndex()
		key := -1
		if hasName {
			key = nameIdx
		}
		b := byName[key]
		if b == nil {
			b = &bucket{}
			byName[key] = b
		}
		b.count++
		b.selfSizeSum += selfSize

		name, _ := node.Name()
		if name == "" {
			typeName, _ := node.NodeType()
			tb := byType[typeName]
			if tb == nil {
				tb = &bucket{}
				byType[typeName] = tb
			}
			tb.count++
			tb.selfSizeSum += selfSize
		}
	}

	rows := make([]SummaryRow, 0, len(byName))
	for key, b := range byName {
		name := resolveName(s, key)
		if opts.Contains != "" && !containsSubstring(name, opts.Contains) {
			continue
		}
		rows = append(rows, SummaryRow{Name: name, Count: b.count, SelfSizeSum: b.selfSizeSum})
	}
	sortRows(rows)
	rows = truncate(rows, opts.Top)

	typeRows := make([]SummaryRow, 0, len(byType))
	for name, b := range byType {
		typeRows = append(typeRows, SummaryRow{Name: name, Count: b.count, SelfSizeSum: b.selfSizeSum})
	}
	sortRows(typeRows)
	typeRows = truncate(typeRows, opts.Top)

	return SummaryResult{Rows: rows, ByNodeType: typeRows}, nil
}

func resolveName(s *snapshot.Snapshot, nameIdx int) string {
	if nameIdx < 0 || nameIdx >= len(s.Strings) {
		return ""
	}
	return s.Strings[nameIdx]
}

// sortRows applies ordering: self_size_sum desc, count desc,
// name asc.
func sortRows(rows []SummaryRow) {
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.SelfSizeSum != b.SelfSizeSum {
			return a.SelfSizeSum > b.SelfSizeSum
		}
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Name < b.Name
	})
}

func truncate(rows []SummaryRow, top int) []SummaryRow {
	if top > 0 && len(rows) > top {
		return rows[:top]
	}
	return rows
}

func containsSubstring(s, substr string) bool {
	if substr == "" {
		return true
	}
	return strings.Contains(s, substr)
}
