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
	"errors"
	"fmt"
	"html"
	"net"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	flag "github.com/spf13/pflag"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kraklabs/heapsnap/internal/ui"
	"github.com/kraklabs/heapsnap/pkg/analysis"
	"github.com/kraklabs/heapsnap/pkg/cancel"
	"github.com/kraklabs/heapsnap/pkg/errs"
	"github.com/kraklabs/heapsnap/pkg/snapshot"
)

// inspectServer holds the one already-loaded snapshot every request
// handler reads from; the core engines run fresh on every request, but
// the (potentially multi-gigabyte) decoded snapshot itself is parsed
// exactly once, at startup.
type inspectServer struct {
	snap    *snapshot.Snapshot
	metrics *serveMetrics
	mu      sync.Mutex // serializes request handling, per the synchronous-loop design
}

// runServe implements "heapsnap serve <file> [--bind 127.0.0.1]
// [--port N]": a loopback-only HTTP inspection UI over the already
// loaded snapshot.
func runServe(args []string, cfg *Config, globals GlobalFlags) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	bind := fs.String("bind", cfg.Serve.Bind, "Loopback bind address")
	port := fs.Int("port", cfg.Serve.Port, "Bind port")

	fs.Usage = func() {
		fmt.Fprint(os.Stderr, `Usage: heapsnap serve <file> [options]

Loopback-only HTTP inspection UI over a single snapshot.

Options:
`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(2)
	}
	if fs.NArg() != 1 {
		fatalf(globals.JSON, "serve requires exactly one snapshot file argument")
	}

	if !isLoopback(*bind) {
		fatalf(globals.JSON, "serve only accepts loopback binds, got %q", *bind)
	}
	if *bind == "" {
		// An empty host would listen on every interface.
		*bind = "127.0.0.1"
	}

	log := newLogger(globals.Verbose)
	tok := installSignalHandler()

	snap, err := loadSnapshot(fs.Arg(0), globals.Progress, tok, log)
	if err != nil {
		FatalError(err, globals.JSON)
	}

	reg := prometheus.NewRegistry()
	srv := &inspectServer{snap: snap, metrics: newServeMetrics(reg)}

	mux := http.NewServeMux()
	mux.HandleFunc("/", srv.handleIndex)
	mux.HandleFunc("/summary", srv.handleSummary)
	mux.HandleFunc("/detail", srv.handleDetail)
	mux.HandleFunc("/retainers", srv.handleRetainers)
	mux.HandleFunc("/dominator", srv.handleDominator)
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	addr := fmt.Sprintf("%s:%d", *bind, *port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		FatalError(errs.NewIO("Cannot bind listener", err.Error(), err), globals.JSON)
	}
	ui.Infof("Serving inspection UI at http://%s/", ln.Addr().String())
	log.Info("serving", "addr", ln.Addr().String())

	cln := &cancellableListener{Listener: ln, tok: tok}
	if err := http.Serve(cln, instrument(srv.metrics, mux)); err != nil && !errors.Is(err, errServeCancelled) {
		FatalError(errs.NewIO("Server stopped unexpectedly", err.Error(), err), globals.JSON)
	}
	ui.Info("Shutting down.")
}

// isLoopback rejects any bind address that doesn't resolve to a
// loopback address; any non-loopback bind is rejected before the
// listener is opened. An empty bind is accepted and runServe listens
// on 127.0.0.1 for it.
func isLoopback(bind string) bool {
	if bind == "" || bind == "localhost" {
		return true
	}
	ip := net.ParseIP(bind)
	return ip != nil && ip.IsLoopback()
}

var errServeCancelled = errors.New("serve: cancelled")

// cancellableListener wraps a net.Listener so Accept polls the shared
// cancellation token at a bounded interval instead of blocking forever:
// a non-blocking accept with a brief sleep between attempts.
type cancellableListener struct {
	net.Listener
	tok cancel.Token
}

func (l *cancellableListener) Accept() (net.Conn, error) {
	tcpLn, hasDeadline := l.Listener.(interface{ SetDeadline(time.Time) error })
	for {
		if l.tok.Cancelled() {
			return nil, errServeCancelled
		}
		if hasDeadline {
			_ = tcpLn.SetDeadline(time.Now().Add(200 * time.Millisecond))
		}
		conn, err := l.Listener.Accept()
		if err == nil {
			return conn, nil
		}
		var ne net.Error
		if errors.As(err, &ne) && ne.Timeout() {
			continue
		}
		return nil, err
	}
}

// instrument wraps h so every request increments serveMetrics' counters
// and histogram, labeled by route (the request path) and outcome.
func instrument(m *serveMetrics, h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		h.ServeHTTP(rec, r)
		m.observe(r.URL.Path, strconv.Itoa(rec.status), time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *inspectServer) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, `<!doctype html><html><head><title>heapsnap</title></head><body>
<h1>heapsnap inspector</h1>
<p>%d nodes, %d edges</p>
<ul>
<li><a href="/summary">Summary</a></li>
<li><a href="/detail?name=GC+roots">Detail by name</a> (query: <code>?name=</code> or <code>?id=</code>)</li>
<li><a href="/retainers?name=GC+roots">Retainers</a> (query: <code>?name=</code> or <code>?id=</code>)</li>
<li><a href="/dominator?name=GC+roots">Dominator chain</a> (query: <code>?name=</code> or <code>?id=</code>)</li>
<li><a href="/metrics">Metrics</a></li>
</ul>
</body></html>`, s.snap.NodeCount(), s.snap.EdgeCount())
}

func (s *inspectServer) handleSummary(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	top := queryInt(r, "top", 50)
	result, err := analysis.Summary(s.snap, analysis.SummaryOptions{Top: top, Contains: r.URL.Query().Get("contains")}, cancel.None())
	if err != nil {
		writeHTTPError(w, err)
		return
	}
	var buf bytes.Buffer
	renderSummaryMarkdown(&buf, result)
	writePreformatted(w, buf.String())
}

func (s *inspectServer) handleDetail(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q := r.URL.Query()
	opts := analysis.DetailOptions{
		Name: q.Get("name"), Limit: queryInt(r, "limit", 50), Skip: queryInt(r, "skip", 0),
		TopRetainers: queryInt(r, "top_retainers", 20), TopEdges: queryInt(r, "top_edges", 20),
	}
	if idStr := q.Get("id"); idStr != "" {
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			writeHTTPError(w, errs.NewInvalidData("Invalid id", err.Error(), err))
			return
		}
		opts.ID, opts.HasID = id, true
	}
	if opts.HasID == (opts.Name != "") {
		writeHTTPError(w, errs.NewInvalidData("Invalid query", "exactly one of ?id= or ?name= is required", nil))
		return
	}

	result, err := analysis.Detail(s.snap, opts, cancel.None())
	if err != nil {
		writeHTTPError(w, err)
		return
	}
	var buf bytes.Buffer
	renderDetailMarkdown(&buf, result)
	writePreformatted(w, buf.String())
}

func (s *inspectServer) handleRetainers(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	targetIdx, ok := s.resolveQueryTarget(w, r)
	if !ok {
		return
	}
	result, err := analysis.Retainers(s.snap, targetIdx,
		analysis.RetainersOptions{MaxPaths: queryInt(r, "paths", 10), MaxDepth: queryInt(r, "max_depth", 64)}, cancel.None())
	if err != nil {
		writeHTTPError(w, err)
		return
	}
	var buf bytes.Buffer
	renderRetainersMarkdown(&buf, s.snap, result)
	writePreformatted(w, buf.String())
}

func (s *inspectServer) handleDominator(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	targetIdx, ok := s.resolveQueryTarget(w, r)
	if !ok {
		return
	}
	result, err := analysis.Dominator(s.snap, targetIdx, analysis.DominatorOptions{MaxDepth: queryInt(r, "max_depth", 256)}, cancel.None())
	if err != nil {
		writeHTTPError(w, err)
		return
	}
	var buf bytes.Buffer
	renderDominatorMarkdown(&buf, s.snap, result)
	writePreformatted(w, buf.String())
}

func (s *inspectServer) resolveQueryTarget(w http.ResponseWriter, r *http.Request) (int, bool) {
	q := r.URL.Query()
	hasID := q.Get("id") != ""
	if hasID == (q.Get("name") != "") {
		writeHTTPError(w, errs.NewInvalidData("Invalid query", "exactly one of ?id= or ?name= is required", nil))
		return 0, false
	}
	var id int64
	if hasID {
		var err error
		id, err = strconv.ParseInt(q.Get("id"), 10, 64)
		if err != nil {
			writeHTTPError(w, errs.NewInvalidData("Invalid id", err.Error(), err))
			return 0, false
		}
	}
	idx, err := resolveTarget(s.snap, id, hasID, q.Get("name"), q.Get("pick"))
	if err != nil {
		writeHTTPError(w, err)
		return 0, false
	}
	return idx, true
}

func queryInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func writePreformatted(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, `<!doctype html><html><body><pre>%s</pre></body></html>`, html.EscapeString(body))
}

func writeHTTPError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if errs.Is(err, errs.InvalidData) {
		status = http.StatusBadRequest
	}
	w.WriteHeader(status)
	fmt.Fprintln(w, err.Error())
}
