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

package snapshot

import (
	"errors"
	"io"

	"github.com/kraklabs/heapsnap/pkg/cancel"
)

// errInterrupted is the synthetic I/O error a ProgressReader returns once
// its cancellation token flips. Decode recognizes it and reports Cancelled
// instead of a Json failure.
var errInterrupted = errors.New("snapshot: read interrupted by cancellation")

// IsCancelled reports whether err is (or wraps) the interruption a
// ProgressReader produces after cancellation.
func IsCancelled(err error) bool {
	return errors.Is(err, errInterrupted)
}

// ProgressReader wraps a byte source, counting bytes read and polling a
// cancellation token on every call so long scans notice Ctrl-C without
// waiting for the whole document. The byte count feeds an
// optional callback so a caller can drive a progress bar; both the
// callback and the token are optional zero values.
type ProgressReader struct {
	src    io.Reader
	token  cancel.Token
	total  int64
	onRead func(n int64)
}

// NewProgressReader wraps src. tok may be cancel.None() to disable
// cancellation checks; onRead may be nil to disable progress callbacks.
func NewProgressReader(src io.Reader, tok cancel.Token, onRead func(n int64)) *ProgressReader {
	return &ProgressReader{src: src, token: tok, onRead: onRead}
}

// Read implements io.Reader. Cancellation is polled once per call, so
// responsiveness is bounded by how many bytes src returns per call;
// behind a LenientReader, as in Decode, that is one byte or one escape
// group per call.
func (r *ProgressReader) Read(p []byte) (int, error) {
	if r.token.Cancelled() {
		return 0, errInterrupted
	}
	n, err := r.src.Read(p)
	if n > 0 {
		r.total += int64(n)
		if r.onRead != nil {
			r.onRead(r.total)
		}
	}
	return n, err
}

// BytesRead returns the cumulative count of bytes returned by Read so far.
func (r *ProgressReader) BytesRead() int64 { return r.total }
