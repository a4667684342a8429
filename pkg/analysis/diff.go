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
	"github.com/kraklabs/heapsnap/pkg/snapshot"
)

// DiffOptions bounds and filters a Diff run.
type DiffOptions struct {
	Top      int
	Contains string
}

// DiffRow is one constructor name's delta between two snapshots.
type DiffRow struct {
	Name             string
	CountA, CountB   int
	CountDelta       int
	SelfSizeSumA     int64
	SelfSizeSumB     int64
	SelfSizeSumDelta int64
}

// Diff summarizes both snapshots without truncation, unions their
// constructor names, and emits the delta for each.
func Diff(a, b *snapshot.Snapshot, opts DiffOptions, tok cancel.Token) ([]DiffRow, error) {
	sumA, err := Summary(a, SummaryOptions{}, tok)
	if err != nil {
		return nil, err
	}
	sumB, err := Summary(b, SummaryOptions{}, tok)
	if err != nil {
		return nil, err
	}

	byNameA := make(map[string]SummaryRow, len(sumA.Rows))
	for _, r := range sumA.Rows {
		byNameA[r.Name] = r
	}
	byNameB := make(map[string]SummaryRow, len(sumB.Rows))
	for _, r := range sumB.Rows {
		byNameB[r.Name] = r
	}

	names := make(map[string]bool, len(byNameA)+len(byNameB))
	for name := range byNameA {
		names[name] = true
	}
	for name := range byNameB {
		names[name] = true
	}

	rows := make([]DiffRow, 0, len(names))
	for name := range names {
		if opts.Contains != "" && !containsSubstring(name, opts.Contains) {
			continue
		}
		ra, hasA := byNameA[name]
		rb, hasB := byNameB[name]
		var countA, countB int
		var sizeA, sizeB int64
		if hasA {
			countA, sizeA = ra.Count, ra.SelfSizeSum
		}
		if hasB {
			countB, sizeB = rb.Count, rb.SelfSizeSum
		}
		rows = append(rows, DiffRow{
			Name:             name,
			CountA:           countA,
			CountB:           countB,
			CountDelta:       countB - countA,
			SelfSizeSumA:     sizeA,
			SelfSizeSumB:     sizeB,
			SelfSizeSumDelta: sizeB - sizeA,
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		da, db := absInt64(a.SelfSizeSumDelta), absInt64(b.SelfSizeSumDelta)
		if da != db {
			return da > db
		}
		ca, cb := absInt(a.CountDelta), absInt(b.CountDelta)
		if ca != cb {
			return ca > cb
		}
		return a.Name < b.Name
	})

	if opts.Top > 0 && len(rows) > opts.Top {
		rows = rows[:opts.Top]
	}
	return rows, nil
}

func absInt64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
