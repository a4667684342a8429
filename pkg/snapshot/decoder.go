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
	"encoding/json"
	"fmt"
	"io"

	"github.com/kraklabs/heapsnap/pkg/cancel"
	"github.com/kraklabs/heapsnap/pkg/errs"
)

// DecodeOptions configures a Decode call. The zero value decodes with no
// cancellation and no progress feedback.
type DecodeOptions struct {
	Token      cancel.Token
	OnProgress func(bytesRead int64)
}

// Decode consumes r — expected to be a V8-style heap snapshot JSON document
// — in a single pass: the lenient filter repairs lone surrogate escapes,
// a streaming json.Decoder walks the top-level object without buffering it
// whole, and the four meaningful keys (snapshot, nodes, edges, strings)
// populate a Snapshot's packed columns directly.
//
// Unknown top-level keys are skipped; key order is not assumed. After the
// document ends, the schema is validated and the MetaIndex computed; the
// column-length-multiple invariant is checked, but the edge_count sum
// (invariant 2) is left to OffsetsOf.
func Decode(r io.Reader, opts DecodeOptions) (*Snapshot, error) {
	pr := NewProgressReader(NewLenientReader(r), opts.Token, opts.OnProgress)
	dec := json.NewDecoder(pr)

	if err := expectDelim(dec, '{'); err != nil {
		return nil, wrapDecodeErr(err)
	}

	var (
		haveMeta bool
		meta     Meta
		nodes    []int64
		edges    []int64
		strs     []string
	)

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, wrapDecodeErr(err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, errs.NewJSON("Malformed snapshot document",
				fmt.Sprintf("expected a string key, got %v", keyTok), nil)
		}

		switch key {
		case "snapshot":
			meta, err = decodeMeta(dec)
			if err != nil {
				return nil, err
			}
			haveMeta = true
		case "nodes":
			nodes, err = decodeInt64Array(dec)
			if err != nil {
				return nil, err
			}
		case "edges":
			edges, err = decodeInt64Array(dec)
			if err != nil {
				return nil, err
			}
		case "strings":
			strs, err = decodeStringArray(dec)
			if err != nil {
				return nil, err
			}
		default:
			var discard any
			if err := dec.Decode(&discard); err != nil {
				return nil, wrapDecodeErr(err)
			}
		}
	}
	if err := expectDelim(dec, '}'); err != nil {
		return nil, wrapDecodeErr(err)
	}

	if !haveMeta {
		return nil, errs.NewMetaMismatch("Missing schema", `document has no top-level "snapshot" key`, nil)
	}

	idx, err := BuildIndex(meta)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{Meta: meta, Index: idx, Nodes: nodes, Edges: edges, Strings: strs}
	if err := snap.validate(); err != nil {
		return nil, err
	}
	return snap, nil
}

// rawMeta mirrors the on-the-wire schema fields; node_types/edge_types
// entries are deferred as json.RawMessage since each is either a bare
// string or a string array.
type rawMeta struct {
	NodeFields []string          `json:"node_fields"`
	NodeTypes  []json.RawMessage `json:"node_types"`
	EdgeFields []string          `json:"edge_fields"`
	EdgeTypes  []json.RawMessage `json:"edge_types"`
}

func decodeMeta(dec *json.Decoder) (Meta, error) {
	// The schema is read from snapshot.meta; a "snapshot" object that
	// carries the field lists directly is accepted as well.
	var wrapper struct {
		Meta *rawMeta `json:"meta"`
		rawMeta
	}
	if err := dec.Decode(&wrapper); err != nil {
		return Meta{}, wrapDecodeErr(err)
	}
	rm := wrapper.rawMeta
	if wrapper.Meta != nil {
		rm = *wrapper.Meta
	}
	nodeTypes, err := decodeTypeSpecs(rm.NodeTypes)
	if err != nil {
		return Meta{}, err
	}
	edgeTypes, err := decodeTypeSpecs(rm.EdgeTypes)
	if err != nil {
		return Meta{}, err
	}
	return Meta{
		NodeFields: rm.NodeFields,
		NodeTypes:  nodeTypes,
		EdgeFields: rm.EdgeFields,
		EdgeTypes:  edgeTypes,
	}, nil
}

func decodeTypeSpecs(raw []json.RawMessage) ([]TypeSpec, error) {
	out := make([]TypeSpec, len(raw))
	for i, r := range raw {
		var scalar string
		if err := json.Unmarshal(r, &scalar); err == nil {
			out[i] = TypeSpec{Scalar: scalar}
			continue
		}
		var enum []string
		if err := json.Unmarshal(r, &enum); err == nil {
			out[i] = TypeSpec{Enum: enum}
			continue
		}
		return nil, errs.NewMetaMismatch("Malformed schema",
			fmt.Sprintf("type entry %d is neither a string nor a string array", i), nil)
	}
	return out, nil
}

// decodeInt64Array streams a JSON array of numbers directly into a []int64
// without ever materializing a []float64 or []any intermediate.
func decodeInt64Array(dec *json.Decoder) ([]int64, error) {
	if err := expectDelim(dec, '['); err != nil {
		return nil, wrapDecodeErr(err)
	}
	var out []int64
	for dec.More() {
		var v int64
		if err := dec.Decode(&v); err != nil {
			return nil, wrapDecodeErr(err)
		}
		out = append(out, v)
	}
	if err := expectDelim(dec, ']'); err != nil {
		return nil, wrapDecodeErr(err)
	}
	return out, nil
}

func decodeStringArray(dec *json.Decoder) ([]string, error) {
	if err := expectDelim(dec, '['); err != nil {
		return nil, wrapDecodeErr(err)
	}
	var out []string
	for dec.More() {
		var v string
		if err := dec.Decode(&v); err != nil {
			return nil, wrapDecodeErr(err)
		}
		out = append(out, v)
	}
	if err := expectDelim(dec, ']'); err != nil {
		return nil, wrapDecodeErr(err)
	}
	return out, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	d, ok := tok.(json.Delim)
	if !ok || d != want {
		return errs.NewJSON("Malformed snapshot document",
			fmt.Sprintf("expected %q, got %v", want, tok), nil)
	}
	return nil
}

// wrapDecodeErr maps a cancellation interruption to Cancelled, a
// syntactic failure from the strict JSON layer to Json, and anything
// else — a bare error surfacing from the underlying byte source — to
// IO, since json.Decoder passes reader errors through unwrapped.
func wrapDecodeErr(err error) error {
	if err == nil {
		return nil
	}
	if IsCancelled(err) {
		return errs.NewCancelled("Read cancelled")
	}
	if _, ok := err.(*errs.Error); ok {
		return err
	}
	switch err.(type) {
	case *json.SyntaxError, *json.UnmarshalTypeError:
		return errs.NewJSON("Malformed snapshot document", err.Error(), err)
	}
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return errs.NewJSON("Malformed snapshot document", err.Error(), err)
	}
	return errs.NewIO("Cannot read snapshot", err.Error(), err)
}
