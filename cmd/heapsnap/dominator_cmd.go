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

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/heapsnap/pkg/analysis"
	"github.com/kraklabs/heapsnap/pkg/errs"
)

// runDominator implements "heapsnap dominator <file> (--id N | --name S)
// [--pick largest|count] [--max-depth N]".
func runDominator(args []string, cfg *Config, globals GlobalFlags) {
	fs := flag.NewFlagSet("dominator", flag.ExitOnError)
	id := fs.Int64("id", 0, "Target node id")
	name := fs.String("name", "", "Target constructor name substring")
	pick := fs.String("pick", "largest", "How to pick among name matches: largest or count")
	maxDepth := fs.Int("max-depth", 256, "Maximum chain length")
	format := fs.String("format", cfg.Format, "Output format: md, json, or csv")
	jsonPath := fs.String("json", "", "Additionally write the report as JSON to PATH")

	fs.Usage = func() {
		fmt.Fprint(os.Stderr, `Usage: heapsnap dominator <file> (--id N | --name S) [options]

Immediate-dominator chain from a GC root down to the target.

Options:
`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(2)
	}
	if fs.NArg() != 1 {
		fatalf(globals.JSON, "dominator requires exactly one snapshot file argument")
	}
	hasID := fs.Changed("id")
	if hasID == fs.Changed("name") {
		fatalf(globals.JSON, "dominator requires exactly one of --id or --name")
	}

	fmtOut, err := parseFormat(*format)
	if err != nil {
		FatalError(err, globals.JSON)
	}

	log := newLogger(globals.Verbose)
	tok := installSignalHandler()

	snap, err := loadSnapshot(fs.Arg(0), globals.Progress, tok, log)
	if err != nil {
		FatalError(err, globals.JSON)
	}

	targetIdx, err := resolveTarget(snap, *id, hasID, *name, *pick)
	if err != nil {
		FatalError(err, globals.JSON)
	}

	result, err := analysis.Dominator(snap, targetIdx, analysis.DominatorOptions{MaxDepth: *maxDepth}, tok)
	if err != nil {
		FatalError(err, globals.JSON)
	}

	if err := writeReport(os.Stdout, fmtOut, func(buf *bytes.Buffer, f outputFormat) error {
		switch f {
		case formatJSON:
			return renderDominatorJSON(buf, snap, result)
		case formatCSV:
			return renderDominatorCSV(buf, snap, result)
		default:
			renderDominatorMarkdown(buf, snap, result)
			return nil
		}
	}); err != nil {
		FatalError(err, globals.JSON)
	}

	if *jsonPath != "" {
		var buf bytes.Buffer
		if err := renderDominatorJSON(&buf, snap, result); err != nil {
			FatalError(errs.NewIO("Cannot render JSON", err.Error(), err), globals.JSON)
		}
		if err := writeFileAtomic(*jsonPath, buf.Bytes(), 0o644); err != nil {
			FatalError(err, globals.JSON)
		}
	}
}
