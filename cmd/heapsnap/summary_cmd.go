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

// runSummary implements "heapsnap summary <file> [--top N] [--search S]
// [--format md|json|csv] [--json PATH]".
func runSummary(args []string, cfg *Config, globals GlobalFlags) {
	fs := flag.NewFlagSet("summary", flag.ExitOnError)
	top := fs.Int("top", cfg.Top, "Maximum rows to retain")
	search := fs.String("search", "", "Case-sensitive substring filter on constructor name")
	format := fs.String("format", cfg.Format, "Output format: md, json, or csv")
	jsonPath := fs.String("json", "", "Additionally write the report as JSON to PATH")

	fs.Usage = func() {
		fmt.Fprint(os.Stderr, `Usage: heapsnap summary <file> [options]

Aggregate heap weight by constructor name.

Options:
`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(2)
	}
	if fs.NArg() != 1 {
		fatalf(globals.JSON, "summary requires exactly one snapshot file argument")
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

	result, err := analysis.Summary(snap, analysis.SummaryOptions{Top: *top, Contains: *search}, tok)
	if err != nil {
		FatalError(err, globals.JSON)
	}

	if err := writeReport(os.Stdout, fmtOut, func(buf *bytes.Buffer, f outputFormat) error {
		switch f {
		case formatJSON:
			return renderSummaryJSON(buf, result)
		case formatCSV:
			return renderSummaryCSV(buf, result)
		default:
			renderSummaryMarkdown(buf, result)
			return nil
		}
	}); err != nil {
		FatalError(err, globals.JSON)
	}

	if *jsonPath != "" {
		var buf bytes.Buffer
		if err := renderSummaryJSON(&buf, result); err != nil {
			FatalError(errs.NewIO("Cannot render JSON", err.Error(), err), globals.JSON)
		}
		if err := writeFileAtomic(*jsonPath, buf.Bytes(), 0o644); err != nil {
			FatalError(err, globals.JSON)
		}
	}
}

// writeReport renders via render into a buffer, then copies it to w in
// one write — so a renderer failure never leaves a half-written report
// on stdout.
func writeReport(w *os.File, f outputFormat, render func(*bytes.Buffer, outputFormat) error) error {
	var buf bytes.Buffer
	if err := render(&buf, f); err != nil {
		return errs.NewIO("Cannot render report", err.Error(), err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}
