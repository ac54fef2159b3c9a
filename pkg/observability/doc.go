/*
Package observability turns pen lifecycle hooks into logs and Prometheus metrics.

Both LoggingHooks and Metrics.Hooks return domain.LifecycleHooks, so they can be
combined with LifecycleHooks.Merge and passed to quill.WithLifecycleHooks.
*/
package observability
