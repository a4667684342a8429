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

// resolveTarget turns a --id/--name pair into a node index, the shared
// entry point for retainers and dominator, both of which take a single
// target node rather than a name/id pair of result rows.
func resolveTarget(s *snapshot.Snapshot, id int64, hasID bool, name string, pick string) (int, error) {
	if hasID {
		return findNodeIndexByID(s, id)
	}
	strategy, err := parseResolveStrategy(pick)
	if err != nil {
		return 0, err
	}
	return analysis.ResolveTargetByName(s, name, strategy)
}

func findNodeIndexByID(s *snapshot.Snapshot, id int64) (int, error) {
	n := s.NodeCount()
	for i := 0; i < n; i++ {
		nid, ok := s.Node(i).ID()
		if ok && nid == id {
			return i, nil
		}
	}
	return 0, errs.NewInvalidData("No matching node", fmt.Sprintf("no node has id %d", id), nil)
}

func parseResolveStrategy(pick string) (analysis.ResolveStrategy, error) {
	switch pick {
	case "", "largest":
		return analysis.Largest, nil
	case "count":
		return analysis.Count, nil
	default:
		return 0, errs.NewInvalidData("Invalid --pick value", fmt.Sprintf("%q is not one of largest, count", pick), nil)
	}
}
