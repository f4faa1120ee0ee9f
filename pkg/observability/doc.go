/*
Package observability provides tools for monitoring the Sluice engine.

It turns lifecycle hooks into Prometheus metrics and structured log lines, and
installs an OpenTelemetry tracer provider so that every recompute pass is
exported as a span.
*/
package observability
