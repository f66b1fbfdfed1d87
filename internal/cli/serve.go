package cli

import (
	"resumelens/internal/server"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start HTTP server for resume extraction and analysis",
	Long: `Start an HTTP server that serves the resume analysis UI and REST API.

Available endpoints:
- GET /: Web UI for uploading and analyzing resumes
- POST /api/upload: Upload a resume PDF and start a session
- POST /api/analyze: Run an analysis mode over an uploaded resume
- POST /api/ask: Ask a question about an uploaded resume
- POST /api/export: Export the session analyses as a PDF report
- GET /api/session/{id}: Inspect an active session
- GET /health: Health check endpoint
- GET /stats: Server statistics and rate limiting info`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringP("port", "p", "", "Port to listen on (default from config)")
	serveCmd.Flags().String("host", "", "Host to bind to (default from config)")

	// Bind flags to viper config keys
	bindFlag := func(key, flagName string) {
		if err := viper.BindPFlag(key, serveCmd.Flags().Lookup(flagName)); err != nil {
			panic(err)
		}
	}

	bindFlag("server.port", "port")
	bindFlag("server.host", "host")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	return server.NewServer(cfg, Version, logger).Start()
}
