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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// serveMetrics are the counters and histograms the inspection server
// exposes at /metrics: how many requests each route has handled and how
// long each took, split by route and response status.
type serveMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func newServeMetrics(reg *prometheus.Registry) *serveMetrics {
	m := &serveMetrics{
		requests: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: "heapsnap",
			Subsystem: "serve",
			Name:      "requests_total",
			Help:      "Total requests handled by the loopback inspection server, by route and status.",
		}, []string{"route", "status"}),
		duration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "heapsnap",
			Subsystem: "serve",
			Name:      "request_duration_seconds",
			Help:      "Request handling latency, by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}
	return m
}

func (m *serveMetrics) observe(route, status string, seconds float64) {
	m.requests.WithLabelValues(route, status).Inc()
	m.duration.WithLabelValues(route).Observe(seconds)
}
