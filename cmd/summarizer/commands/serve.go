// ABOUTME: Serve command starts the HTTP batch summary server
// ABOUTME: Builds models and the transcript index once, then serves until interrupted
package commands

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/harper/lecture-summarizer/internal/server"
)

// NewServeCmd creates the serve command
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP summary server",
		Long: `Start the HTTP summary server

Loads the embedding and generation models, indexes the transcript,
and serves POST /generate-summaries-batch plus the static front end.
A missing transcript is a warning; summaries are then generic.`,
		RunE: runServe,
		Example: `  # Serve on port 8080 using a local OpenAI-compatible server
  SUMMARIZER_LLM_BASE_URL=http://localhost:8000/v1 summarizer serve -p 8080`,
	}

	addPortFlag(cmd)

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, err := buildComponents(ctx, cfg)
	if err != nil {
		return err
	}
	defer c.Close()

	srv := server.New(c.orchestrator, server.Config{
		Port:       cfg.Port,
		StaticDir:  cfg.StaticDir,
		CORSOrigin: cfg.CORSOrigin,
	}, log.Default())

	return srv.ListenAndServe(ctx)
}
