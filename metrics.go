package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"route-planner/pathfind"
)

// Metrics holds the service collectors
type Metrics struct {
	Registry *prometheus.Registry

	Searches      *prometheus.CounterVec
	Expanded      *prometheus.HistogramVec
	SearchLatency *prometheus.HistogramVec
	RoadmapNodes  prometheus.Gauge
	RoadmapEdges  prometheus.Gauge
	HTTPRequests  *prometheus.CounterVec
}

// NewMetrics creates and registers all collectors on a fresh registry
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		Searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "route_searches_total", Help: "Route searches by graph kind and outcome",
		}, []string{"graph", "outcome"}),
		Expanded: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: "route_search_expanded_nodes", Help: "Nodes expanded per search",
			Buckets: prometheus.ExponentialBuckets(1, 4, 10),
		}, []string{"graph"}),
		SearchLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: "route_search_latency_ms", Help: "Search latency",
			Buckets: prometheus.ExponentialBuckets(0.1, 3, 12),
		}, []string{"graph"}),
		RoadmapNodes: prometheus.NewGauge(prometheus.GaugeOpts{Name: "roadmap_nodes", Help: "Nodes in the active roadmap"}),
		RoadmapEdges: prometheus.NewGauge(prometheus.GaugeOpts{Name: "roadmap_edges", Help: "Edges in the active roadmap"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total", Help: "HTTP requests by path and status",
		}, []string{"path", "status"}),
	}
	m.Registry.MustRegister(
		m.Searches, m.Expanded, m.SearchLatency, m.RoadmapNodes, m.RoadmapEdges, m.HTTPRequests,
		collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveSearch records one finished search
func (m *Metrics) ObserveSearch(graph string, expanded int, elapsed time.Duration, err error) {
	m.Searches.WithLabelValues(graph, searchOutcome(err)).Inc()
	m.Expanded.WithLabelValues(graph).Observe(float64(expanded))
	m.SearchLatency.WithLabelValues(graph).Observe(float64(elapsed) / float64(time.Millisecond))
}

// ObserveRoadmap updates the roadmap size gauges
func (m *Metrics) ObserveRoadmap(rm *Roadmap) {
	m.RoadmapNodes.Set(float64(len(rm.Nodes)))
	m.RoadmapEdges.Set(float64(rm.EdgeCount()))
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

func searchOutcome(err error) string {
	switch {
	case err == nil:
		return "found"
	case errors.Is(err, pathfind.ErrNoRoute):
		return "no_route"
	case errors.Is(err, pathfind.ErrInvalidNode):
		return "invalid_node"
	case errors.Is(err, pathfind.ErrBudgetExceeded):
		return "budget_exceeded"
	case errors.Is(err, pathfind.ErrNegativeCost):
		return "negative_cost"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return "canceled"
	}
	return "error"
}
