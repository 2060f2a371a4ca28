// Package app wires the dashboard together and manages its lifecycle.
//
// NewApplication builds every component from a *config.Config: telemetry
// (OpenTelemetry with a Prometheus exporter on a private registry), the
// websocket hub, the dashboard and health services, and the chi router with
// its middleware chain. Nothing runs until Run or Serve is called.
//
// # Lifecycle
//
// Serve runs these concurrently under one errgroup:
//
//   - the websocket hub
//   - the HTTP server on the supplied listener
//   - the startup load of the configured source
//   - the source watcher, when data.watch is enabled
//
// A failed startup load is not fatal. The server keeps answering and the
// views return 503 until a reload succeeds.
//
// Cancelling the context passed to Serve shuts the server down within
// server.shutdown_timeout and flushes telemetry.
//
// # Usage
//
//	cfg, err := config.Load()
//	...
//	application, err := app.NewApplication(cfg, logger)
//	...
//	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
//	defer stop()
//	if err := application.Run(ctx); err != nil {
//	    ...
//	}
//
// The package never calls os.Exit; errors go back to the caller.
package app
