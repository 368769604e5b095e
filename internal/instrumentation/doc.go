// Package instrumentation wires OpenTelemetry metrics and tracing for
// the calproxy server.
//
// Metrics default to the Prometheus exporter, served by the dedicated
// metrics server; OTLP and stdout exporters are available for
// collector-based and development setups. Tracing is off by default.
package instrumentation
