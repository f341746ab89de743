// Package app wires the factorstd HTTP service together and manages its
// lifecycle.
//
// # Initialization Flow
//
//	1. Load configuration from defaults, YAML file and environment
//	2. Initialize logging and OpenTelemetry
//	3. Initialize services with their dependencies
//	4. Set up HTTP handlers and middleware
//	5. Configure and start the HTTP server
//
// # Usage
//
//	application, err := app.NewApplication(cfg, logger, telemetry)
//	if err != nil {
//	    return err
//	}
//	return application.Run(ctx)
//
// # Graceful Shutdown
//
// Run returns after ctx is cancelled, typically by SIGINT or SIGTERM via
// signal.NotifyContext. In-flight requests get ShutdownTimeout to finish and
// the telemetry providers are flushed.
//
// The package never calls os.Exit, the main function controls the exit code.
package app
