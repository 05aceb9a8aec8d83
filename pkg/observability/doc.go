/*
Package observability turns playback lifecycle events into Prometheus metrics.

Metrics.Hooks returns a domain.LifecycleHooks value that can be combined with
other hooks (logging, SSE fan-out) through domain.CombineHooks.
*/
package observability
