// Copyright 2024 Tomas Machalek <tomas.machalek@gmail.com>
// Copyright 2024 Institute of the Czech National Corpus,
//                Faculty of Arts, Charles University
//   This file is part of SEMCTX.
//
//  SEMCTX is free software: you can redistribute it and/or modify
//  it under the terms of the GNU General Public License as published by
//  the Free Software Foundation, either version 3 of the License, or
//  (at your option) any later version.
//
//  SEMCTX is distributed in the hope that it will be useful,
//  but WITHOUT ANY WARRANTY; without even the implied warranty of
//  MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
//  GNU General Public License for more details.
//
//  You should have received a copy of the GNU General Public License
//  along with SEMCTX.  If not, see <https://www.gnu.org/licenses/>.

package monitoring

import (
	"context"
	"net/http"

	"semctx/occurrence"
	"semctx/results"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/push"
)

const (
	metricsNamespace = "semctx"
)

// Metrics holds Prometheus collectors of the service.
// Each instance uses its own registry.
type Metrics struct {
	registry      *prometheus.Registry
	jobs          *prometheus.CounterVec
	jobErrors     *prometheus.CounterVec
	jobDuration   *prometheus.HistogramVec
	sentences     prometheus.Counter
	occurrences   prometheus.Counter
	indexFailures prometheus.Counter
	apiRequests   *prometheus.CounterVec
}

func (m *Metrics) ObserveJob(rec results.JobLog) {
	m.jobs.WithLabelValues(rec.Func).Inc()
	if rec.Err != nil {
		m.jobErrors.WithLabelValues(rec.Func).Inc()
	}
	m.jobDuration.WithLabelValues(rec.Func).Observe(rec.TimeSpent().Seconds())
}

// ObserveIndexing adds results of an indexing run.
func (m *Metrics) ObserveIndexing(stats occurrence.Stats) {
	m.sentences.Add(float64(stats.Sentences))
	m.occurrences.Add(float64(stats.Occurrences))
	m.indexFailures.Add(float64(stats.Failures))
}

// ObserveRequest counts API requests by their outcome
// (e.g. "ok", "userError", "error").
func (m *Metrics) ObserveRequest(endpoint, outcome string) {
	m.apiRequests.WithLabelValues(endpoint, outcome).Inc()
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Push sends the current state of all the metrics to a Prometheus
// Pushgateway. It is intended for short-lived batch runs.
func (m *Metrics) Push(ctx context.Context, gatewayURL, job string) error {
	return push.New(gatewayURL, job).Gatherer(m.registry).PushContext(ctx)
}

func NewMetrics() *Metrics {
	ans := &Metrics{
		registry: prometheus.NewRegistry(),
		jobs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "jobs_total",
				Help:      "Number of processed jobs",
			},
			[]string{"func"},
		),
		jobErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "job_errors_total",
				Help:      "Number of jobs finished with an error",
			},
			[]string{"func"},
		),
		jobDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "job_duration_seconds",
				Help:      "Duration of processed jobs",
				Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
			},
			[]string{"func"},
		),
		sentences: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "indexed_sentences_total",
			Help:      "Number of sentences processed by indexing runs",
		}),
		occurrences: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "indexed_occurrences_total",
			Help:      "Number of concept occurrences recorded by indexing runs",
		}),
		indexFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "index_failures_total",
			Help:      "Number of sentences which failed to be indexed",
		}),
		apiRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "api_requests_total",
				Help:      "Number of API requests by endpoint and outcome",
			},
			[]string{"endpoint", "outcome"},
		),
	}
	ans.registry.MustRegister(
		collectors.NewGoCollector(),
		ans.jobs,
		ans.jobErrors,
		ans.jobDuration,
		ans.sentences,
		ans.occurrences,
		ans.indexFailures,
		ans.apiRequests,
	)
	return ans
}
