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

// runDetail implements "heapsnap detail <file> (--id N | --name S)
// [--skip N] [--limit N] [--top-retainers N] [--top-edges N]".
func runDetail(args []string, cfg *Config, globals GlobalFlags) {
	fs := flag.NewFlagSet("detail", flag.ExitOnError)
	id := fs.Int64("id", 0, "Target node id")
	name := fs.String("name", "", "Target constructor name")
	skip := fs.Int("skip", 0, "Skip this many matches before collecting")
	limit := fs.Int("limit", 50, "Maximum matches to return")
	topRetainers := fs.Int("top-retainers", cfg.Top, "Maximum retainers to return")
	topEdges := fs.Int("top-edges", cfg.Top, "Maximum outgoing edges to return")
	format := fs.String("format", cfg.Format, "Output format: md, json, or csv")
	jsonPath := fs.String("json", "", "Additionally write the report as JSON to PATH")

	fs.Usage = func() {
		fmt.Fprint(os.Stderr, `Usage: heapsnap detail <file> (--id N | --name S) [options]

Per-constructor or per-id deep report: aggregate counts, top retainers,
top outgoing edges, and a shallow-size histogram.

Options:
`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(2)
	}
	if fs.NArg() != 1 {
		fatalf(globals.JSON, "detail requires exactly one snapshot file argument")
	}

	hasID := fs.Changed("id")
	hasName := fs.Changed("name")
	if hasID == hasName {
		fatalf(globals.JSON, "detail requires exactly one of --id or --name")
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

	opts := analysis.DetailOptions{
		ID: *id, HasID: hasID, Name: *name,
		Skip: *skip, Limit: *limit,
		TopRetainers: *topRetainers, TopEdges: *topEdges,
	}
	result, err := analysis.Detail(snap, opts, tok)
	if err != nil {
		FatalError(err, globals.JSON)
	}

	if err := writeReport(os.Stdout, fmtOut, func(buf *bytes.Buffer, f outputFormat) error {
		switch f {
		case formatJSON:
			return renderDetailJSON(buf, result)
		case formatCSV:
			return renderDetailCSV(buf, result)
		default:
			renderDetailMarkdown(buf, result)
			return nil
		}
	}); err != nil {
		FatalError(err, globals.JSON)
	}

	if *jsonPath != "" {
		var buf bytes.Buffer
		if err := renderDetailJSON(&buf, result); err != nil {
			FatalError(errs.NewIO("Cannot render JSON", err.Error(), err), globals.JSON)
		}
		if err := writeFileAtomic(*jsonPath, buf.Bytes(), 0o644); err != nil {
			FatalError(err, globals.JSON)
		}
	}
}
