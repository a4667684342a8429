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

// Package cancel provides the single piece of shared mutable state in
// heapsnap: an atomic, cheaply-cloneable cancellation flag. Producers
// (a signal handler, the serve loop) publish with a sequentially
// consistent store; every long-running loop in the decoder and the
// analysis engines polls it with an atomic load at bounded intervals.
package cancel

import "sync/atomic"

// Token is a cheap-to-copy handle onto a shared cancellation flag.
// The zero value never reports cancellation and ignores Cancel;
// construct one with New to get a token that can be cancelled.
type Token struct {
	flag *atomic.Bool
}

// New returns a fresh, un-cancelled Token.
func New() Token {
	return Token{flag: new(atomic.Bool)}
}

// Cancel flips the flag. Safe to call from a signal handler or any
// goroutine; uses a sequentially consistent store so the flip is
// visible to every consumer's atomic load without further
// synchronization.
func (t Token) Cancel() {
	if t.flag == nil {
		return
	}
	t.flag.Store(true)
}

// Cancelled reports whether the token has been flipped. Consumers are
// expected to call this at bounded intervals inside long loops, never
// per-element, so the check itself never becomes the bottleneck.
func (t Token) Cancelled() bool {
	if t.flag == nil {
		return false
	}
	return t.flag.Load()
}

// None returns a Token that can never be cancelled — used by callers
// (tests, one-shot CLI invocations without signal handling) that have
// no cancellation source of their own.
func None() Token {
	return Token{}
}
