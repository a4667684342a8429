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

// Package main implements the heapsnap CLI: a forensic reader for
// V8-style heap snapshot JSON documents.
//
// Usage:
//
//	heapsnap summary <file> [--top N] [--search S] [--format md|json|csv]
//	heapsnap detail <file> (--id N | --name S) [...]
//	heapsnap retainers <file> (--id N | --name S) [...]
//	heapsnap dominator <file> (--id N | --name S) [...]
//	heapsnap diff <file-a> <file-b> [--top N] [--contains S]
//	heapsnap build <file> --outdir DIR [--top N] [--contains S]
//	heapsnap serve <file> [--bind 127.0.0.1] [--port N]
package main

import (
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/heapsnap/internal/ui"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// GlobalFlags holds the CLI flags shared by every subcommand.
type GlobalFlags struct {
	JSON     bool
	NoColor  bool
	Verbose  int
	Progress bool
}

func main() {
	var (
		showVersion = flag.BoolP("version", "V", false, "Show version and exit")
		configPath  = flag.StringP("config", "c", "", "Path to .heapsnap.yaml (default: ./.heapsnap.yaml)")
		jsonOutput  = flag.Bool("json", false, "Report fatal errors as JSON instead of plain text")
		noColor     = flag.Bool("no-color", false, "Disable color output")
		verbose     = flag.CountP("verbose", "v", "Increase verbosity (-v for info, -vv for debug)")
		progress    = flag.Bool("progress", true, "Show a progress bar while parsing a snapshot")
	)

	flag.SetInterspersed(false)

	flag.Usage = func() {
		fmt.Fprint(os.Stderr, `heapsnap - offline forensic reader for V8-style heap snapshots

Usage:
  heapsnap <command> [options]

Commands:
  summary     Aggregate heap weight by constructor name
  detail      Per-constructor or per-id deep report
  retainers   Root-to-target retaining paths
  dominator   Immediate-dominator chain to a target
  diff        Name-keyed delta between two snapshots
  build       Write summary.json + meta.json for a snapshot
  serve       Loopback-only HTTP inspection UI

Global Options:
      --config string     Path to .heapsnap.yaml
      --json               Report fatal errors as JSON
      --no-color           Disable color output (respects NO_COLOR)
  -v, --verbose            Increase verbosity (-v info, -vv debug)
      --progress           Show a progress bar while parsing (default true)
  -V, --version            Show version and exit

For detailed command help: heapsnap <command> --help
`)
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("heapsnap version %s\ncommit: %s\nbuilt: %s\n", version, commit, date)
		os.Exit(0)
	}

	if os.Getenv("NO_COLOR") != "" {
		*noColor = true
	}
	ui.InitColors(*noColor)

	globals := GlobalFlags{
		JSON:     *jsonOutput,
		NoColor:  *noColor,
		Verbose:  *verbose,
		Progress: *progress,
	}

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(1)
	}

	command := args[0]
	cmdArgs := args[1:]

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		FatalError(err, globals.JSON)
	}

	switch command {
	case "summary":
		runSummary(cmdArgs, cfg, globals)
	case "detail":
		runDetail(cmdArgs, cfg, globals)
	case "retainers":
		runRetainers(cmdArgs, cfg, globals)
	case "dominator":
		runDominator(cmdArgs, cfg, globals)
	case "diff":
		runDiff(cmdArgs, cfg, globals)
	case "build":
		runBuild(cmdArgs, cfg, globals)
	case "serve":
		runServe(cmdArgs, cfg, globals)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		flag.Usage()
		os.Exit(1)
	}
}
