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

// Package ui renders colored terminal output for the heapsnap CLI: plain
// informational lines, warnings, section headers, and a small set of
// label/value helpers for the command layer's own direct-to-stdout
// summaries. The buffered report renderers stay uncolored, since their
// output can be HTML-escaped into an HTTP response by the serve command.
package ui

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Color palette for the CLI's direct terminal output.
var (
	Cyan   = color.New(color.FgCyan)
	Green  = color.New(color.FgGreen, color.Bold)
	Yellow = color.New(color.FgYellow)
	Red    = color.New(color.FgRed, color.Bold)
	Dim    = color.New(color.Faint)
)

// InitColors decides whether color.NoColor should be forced off, honoring
// an explicit --no-color flag, the NO_COLOR convention, and whether
// stdout is actually a terminal.
func InitColors(noColor bool) {
	if noColor || os.Getenv("NO_COLOR") != "" || !isatty.IsTerminal(os.Stdout.Fd()) {
		color.NoColor = true
	}
}

// Header prints a bold section title.
func Header(title string) {
	Green.Println(title)
}

// SubHeader prints a secondary section title, slightly dimmer than Header.
func SubHeader(title string) {
	Cyan.Println(title)
}

// Info prints an informational line to stdout.
func Info(msg string) {
	fmt.Println(msg)
}

// Infof is Info with formatting.
func Infof(format string, args ...interface{}) {
	fmt.Printf(format+"\n", args...)
}

// Success prints a green confirmation line.
func Success(msg string) {
	Green.Println(msg)
}

// Successf is Success with formatting.
func Successf(format string, args ...interface{}) {
	Green.Printf(format+"\n", args...)
}

// Warning prints a yellow warning line to stderr.
func Warning(msg string) {
	Yellow.Fprintln(os.Stderr, msg)
}

// Warningf is Warning with formatting.
func Warningf(format string, args ...interface{}) {
	Yellow.Fprintf(os.Stderr, format+"\n", args...)
}

// Label renders a field name for a "Label: value" line.
func Label(s string) string {
	return Dim.Sprint(s)
}

// DimText renders secondary, low-emphasis text inline.
func DimText(s string) string {
	return Dim.Sprint(s)
}

// CountText renders an integer count, the way it reads best inline in a
// summary table.
func CountText(n int) string {
	return Cyan.Sprintf("%d", n)
}
