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
	"os"
	"os/signal"
	"syscall"

	"github.com/kraklabs/heapsnap/pkg/cancel"
)

// installSignalHandler publishes a single process-wide cancellation
// token and flips it on the first SIGINT/SIGTERM. The handler itself
// does only an atomic store; all the actual work of noticing
// cancellation happens on the invoking goroutine inside the decoder
// and the analysis engines.
func installSignalHandler() cancel.Token {
	tok := cancel.New()
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-ch
		tok.Cancel()
	}()
	return tok
}
