// Package observability wires OpenTelemetry tracing and metrics for the SDK.
//
// Every platform exchange runs inside a "pokitdok.http.request" span and is
// counted by the instruments in Metrics. Without Init the global no-op
// providers are used and nothing is exported.
//
//	shutdown, err := observability.Init(ctx, cfg.Observability, "my-app")
//	if err != nil { ... }
//	defer shutdown(context.Background())
package observability
