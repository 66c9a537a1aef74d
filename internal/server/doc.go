// Package server exposes the HTTP boundary: session control endpoints, the
// websocket push channel, health checks and Prometheus metrics.
package server
