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

// runDiff implements "heapsnap diff <file-a> <file-b> [--top N]
// [--contains S]".
func runDiff(args []string, cfg *Config, globals GlobalFlags) {
	fs := flag.NewFlagSet("diff", flag.ExitOnError)
	top := fs.Int("top", cfg.Top, "Maximum rows to retain")
	contains := fs.String("contains", "", "Case-sensitive substring filter on constructor name")
	format := fs.String("format", cfg.Format, "Output format: md, json, or csv")
	jsonPath := fs.String("json", "", "Additionally write the report as JSON to PATH")

	fs.Usage = func() {
		fmt.Fprint(os.Stderr, `Usage: heapsnap diff <file-a> <file-b> [options]

Name-keyed delta of two snapshots' constructor summaries.

Options:
`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(2)
	}
	if fs.NArg() != 2 {
		fatalf(globals.JSON, "diff requires exactly two snapshot file arguments")
	}

	fmtOut, err := parseFormat(*format)
	if err != nil {
		FatalError(err, globals.JSON)
	}

	log := newLogger(globals.Verbose)
	tok := installSignalHandler()

	snapA, err := loadSnapshot(fs.Arg(0), globals.Progress, tok, log)
	if err != nil {
		FatalError(err, globals.JSON)
	}
	snapB, err := loadSnapshot(fs.Arg(1), globals.Progress, tok, log)
	if err != nil {
		FatalError(err, globals.JSON)
	}

	rows, err := analysis.Diff(snapA, snapB, analysis.DiffOptions{Top: *top, Contains: *contains}, tok)
	if err != nil {
		FatalError(err, globals.JSON)
	}

	if err := writeReport(os.Stdout, fmtOut, func(buf *bytes.Buffer, f outputFormat) error {
		switch f {
		case formatJSON:
			return renderDiffJSON(buf, rows)
		case formatCSV:
			return renderDiffCSV(buf, rows)
		default:
			renderDiffMarkdown(buf, rows)
			return nil
		}
	}); err != nil {
		FatalError(err, globals.JSON)
	}

	if *jsonPath != "" {
		var buf bytes.Buffer
		if err := renderDiffJSON(&buf, rows); err != nil {
			FatalError(errs.NewIO("Cannot render JSON", err.Error(), err), globals.JSON)
		}
		if err := writeFileAtomic(*jsonPath, buf.Bytes(), 0o644); err != nil {
			FatalError(err, globals.JSON)
		}
	}
}
