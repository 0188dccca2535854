// Package logger configures the process-wide slog logger and carries
// request-scoped loggers through context.Context.
//
// Output is JSON on stdout. Components derive child loggers tagged with a
// "component" attribute; HTTP middleware stores a logger carrying the trace
// ID in the request context, which downstream code retrieves with
// [FromContext] or [FromContextOrDefault].
package logger
