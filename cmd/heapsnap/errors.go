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
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/kraklabs/heapsnap/internal/ui"
	"github.com/kraklabs/heapsnap/pkg/errs"
)

// jsonError is the machine-readable shape FatalError emits with --json,
// so a calling script sees a stable field set instead of a parsed
// stderr string.
type jsonError struct {
	Kind   string `json:"kind"`
	Title  string `json:"title"`
	Detail string `json:"detail,omitempty"`
}

// FatalError reports err (expected to be, or wrap, an *errs.Error) and
// terminates the process with the kind-derived exit code. It is the one
// place a subcommand is allowed to call os.Exit for an operation
// failure.
func FatalError(err error, jsonOut bool) {
	if err == nil {
		return
	}

	var e *errs.Error
	if !errors.As(err, &e) {
		e = errs.NewIO("Unexpected error", err.Error(), err)
	}

	if jsonOut {
		payload := jsonError{Kind: e.Kind.String(), Title: e.Title, Detail: e.Detail}
		enc := json.NewEncoder(os.Stderr)
		_ = enc.Encode(payload)
	} else {
		ui.Warning(e.Error())
	}
	os.Exit(errs.ExitCode(err))
}

// fatalf is a convenience for an ad hoc CLI-surface error (bad flag
// combination, missing file argument) that never touches the engines.
func fatalf(jsonOut bool, format string, args ...interface{}) {
	FatalError(errs.NewInvalidData("Invalid arguments", fmt.Sprintf(format, args...), nil), jsonOut)
}
