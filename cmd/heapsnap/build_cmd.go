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
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/heapsnap/internal/ui"
	"github.com/kraklabs/heapsnap/pkg/analysis"
	"github.com/kraklabs/heapsnap/pkg/errs"
)

const buildOutputVersion = "1"

// buildMeta is the persisted shape of meta.json: a schema fingerprint
// plus node/edge counts, enough for a caller to sanity-check a
// summary.json against the snapshot it came from without re-parsing it.
type buildMeta struct {
	Version    string   `json:"version"`
	NodeCount  int      `json:"node_count"`
	EdgeCount  int      `json:"edge_count"`
	NodeFields []string `json:"node_fields"`
	EdgeFields []string `json:"edge_fields"`
}

type buildSummary struct {
	Version string                 `json:"version"`
	Summary analysis.SummaryResult `json:"summary"`
}

// runBuild implements "heapsnap build <file> --outdir DIR [--top N]
// [--contains S]".
func runBuild(args []string, cfg *Config, globals GlobalFlags) {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	outdir := fs.String("outdir", "", "Output directory for summary.json and meta.json (required)")
	top := fs.Int("top", cfg.Top, "Maximum rows to retain")
	contains := fs.String("contains", "", "Case-sensitive substring filter on constructor name")

	fs.Usage = func() {
		fmt.Fprint(os.Stderr, `Usage: heapsnap build <file> --outdir DIR [options]

Write summary.json and meta.json for a snapshot.

Options:
`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(2)
	}
	if fs.NArg() != 1 {
		fatalf(globals.JSON, "build requires exactly one snapshot file argument")
	}
	if *outdir == "" {
		fatalf(globals.JSON, "build requires --outdir")
	}

	log := newLogger(globals.Verbose)
	tok := installSignalHandler()

	snap, err := loadSnapshot(fs.Arg(0), globals.Progress, tok, log)
	if err != nil {
		FatalError(err, globals.JSON)
	}

	result, err := analysis.Summary(snap, analysis.SummaryOptions{Top: *top, Contains: *contains}, tok)
	if err != nil {
		FatalError(err, globals.JSON)
	}

	if err := os.MkdirAll(*outdir, 0o755); err != nil {
		FatalError(errs.NewIO("Cannot create output directory", err.Error(), err), globals.JSON)
	}

	var sumBuf bytes.Buffer
	if err := encodeJSON(&sumBuf, buildSummary{Version: buildOutputVersion, Summary: result}); err != nil {
		FatalError(errs.NewIO("Cannot render summary.json", err.Error(), err), globals.JSON)
	}
	summaryPath := filepath.Join(*outdir, "summary.json")
	if err := writeFileAtomic(summaryPath, sumBuf.Bytes(), 0o644); err != nil {
		FatalError(err, globals.JSON)
	}

	meta := buildMeta{
		Version:    buildOutputVersion,
		NodeCount:  snap.NodeCount(),
		EdgeCount:  snap.EdgeCount(),
		NodeFields: snap.Meta.NodeFields,
		EdgeFields: snap.Meta.EdgeFields,
	}
	var metaBuf bytes.Buffer
	if err := encodeJSON(&metaBuf, meta); err != nil {
		FatalError(errs.NewIO("Cannot render meta.json", err.Error(), err), globals.JSON)
	}
	metaPath := filepath.Join(*outdir, "meta.json")
	if err := writeFileAtomic(metaPath, metaBuf.Bytes(), 0o644); err != nil {
		FatalError(err, globals.JSON)
	}

	ui.Header("Build Complete")
	fmt.Printf("%s %s\n", ui.Label("Summary:"), ui.DimText(summaryPath))
	fmt.Printf("%s    %s\n", ui.Label("Meta:"), ui.DimText(metaPath))
	ui.SubHeader("Snapshot:")
	fmt.Printf("  Nodes: %s\n", ui.CountText(meta.NodeCount))
	fmt.Printf("  Edges: %s\n", ui.CountText(meta.EdgeCount))
	fmt.Printf("  Rows:  %s\n", ui.CountText(len(result.Rows)))
	if *top > 0 && len(result.Rows) >= *top {
		ui.Warningf("summary.json may be truncated to the top %d rows; rerun with a larger --top to see more", *top)
	}
	ui.Success("Build succeeded.")
	ui.Successf("wrote %s and %s", summaryPath, metaPath)
}
