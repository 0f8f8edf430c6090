package main

import (
	"github.com/gorilla/mux"
	"github.com/hightouchio/portmanager/api"
	"github.com/spf13/cobra"
)

func newServerCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "portmanager serve exposes the profile stores over an HTTP API.",
		Long: `serve exposes the profile and active connection stores over HTTP under /api.
It never launches the client. Listens on http.addr (default 127.0.0.1:8080).`,
		Args: cobra.NoArgs,
		RunE: runServer,
	}
}

// runServer boots the HTTP API and blocks until interrupted
func runServer(cmd *cobra.Command, args []string) error {
	app, err := newApplication(cmd)
	if err != nil {
		return err
	}

	return startApplication(cmd.Context(), app,
		// Run telemetry systems
		runTelemetry,

		// Report store health.
		registerHealthchecks,

		// Register profile HTTP routes.
		registerAPIRoutes,
	)
}

// registerAPIRoutes attaches the API routes to the router
func registerAPIRoutes(router *mux.Router, profileAPI api.API) {
	profileAPI.ConfigureWebRoutes(router.PathPrefix("/api").Subrouter())
}

func registerHealthchecks(healthchecks *healthcheckManager, profileAPI api.API) {
	healthchecks.AddCheck("stores", profileAPI.Healthy)
}
