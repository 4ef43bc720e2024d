package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/sonido-insight/profile"
	"github.com/RyanBlaney/sonido-insight/server"
)

func newServeCmd(a *app) *cobra.Command {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API and upload dashboard",
		Long: `Start the HTTP server.

Routes:
  GET  /health           liveness check
  POST /api/v1/analyze   multipart upload (file, sample_rate, duration, features) returning JSON
  GET  /                 upload dashboard
  POST /                 upload form, renders the analysis

Example:
  sonido-insight serve --address :9090`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runServe(cmd)
		},
	}

	serveCmd.Flags().String("address", ":8080", "listen address")
	serveCmd.Flags().String("temp-dir", os.TempDir(), "directory for uploaded files while they are analyzed")
	serveCmd.Flags().String("register", profile.RegisterCentroid, "vocal register strategy (centroid, random)")
	serveCmd.Flags().Int64("seed", 0, "seed for the random register strategy")
	serveCmd.Flags().String("ffmpeg", "ffmpeg", "ffmpeg binary used for FLAC and OGG")

	return serveCmd
}

func (a *app) runServe(cmd *cobra.Command) error {
	analyzer, err := profile.NewAnalyzer(a.config.AnalyzerConfig())
	if err != nil {
		return err
	}

	srv, err := server.New(a.config, analyzer)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.Run(ctx)
}
