// ABOUTME: Root command and global flags for the summarizer CLI
// ABOUTME: Running the root command with no subcommand starts the HTTP server
package commands

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"
)

var (
	verbose    bool
	quiet      bool
	configPath string
	port       int
)

// NewRootCmd creates the root command with all subcommands attached
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summarizer",
		Short: "Lecture-grounded topic explanations over HTTP",
		Long: `Lecture Summarizer

Indexes a lecture transcript once at startup and serves short
teaching-assistant explanations for batches of topics. Each
explanation is grounded in the transcript sentences most similar
to the topic, or falls back to a generic academic prompt when the
transcript has nothing to offer.

Run without a subcommand to start the HTTP server.`,
		SilenceUsage:      true,
		PersistentPreRunE: setupLogging,
		RunE:              runServe,
		Example: `  # Serve on the default port 5000
  summarizer

  # Serve on another port with a YAML config
  summarizer -p 8080 --config summarizer.yaml`,
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log rendered prompts and extra detail")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress informational logging; warnings and errors still reach stderr")
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Optional YAML config file (env vars override it)")
	addPortFlag(cmd)

	cmd.AddCommand(
		NewServeCmd(),
		NewMCPCmd(),
		NewIndexCmd(),
		NewVersionCmd(),
	)

	return cmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}

func addPortFlag(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&port, "port", "p", 5000, "Port to run the server on")
}

func setupLogging(cmd *cobra.Command, args []string) error {
	if verbose && quiet {
		return fmt.Errorf("--verbose and --quiet are mutually exclusive")
	}
	if quiet {
		log.SetOutput(problemsOnly{w: os.Stderr})
	}
	return nil
}

// problemsOnly passes through log lines that report a warning or an error and
// drops informational ones. The log package writes one line per call.
type problemsOnly struct {
	w io.Writer
}

func (p problemsOnly) Write(line []byte) (int, error) {
	if !bytes.Contains(line, []byte("Warning")) && !bytes.Contains(bytes.ToLower(line), []byte("error")) {
		return len(line), nil
	}
	if _, err := p.w.Write(line); err != nil {
		return 0, err
	}
	return len(line), nil
}
