// ABOUTME: Index command builds the transcript index and reports on it
// ABOUTME: Optionally runs a test query to show which sentences a topic retrieves
package commands

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/harper/lecture-summarizer/internal/core"
)

var (
	indexQuery string
	indexTopK  int
	indexJSON  bool
)

// IndexReport summarizes a built transcript index
type IndexReport struct {
	TranscriptPath string   `json:"transcript_path"`
	Status         string   `json:"status"`
	Reason         string   `json:"reason,omitempty"`
	Sentences      int      `json:"sentences"`
	Dimension      int      `json:"dimension,omitempty"`
	Query          string   `json:"query,omitempty"`
	Hits           []string `json:"hits,omitempty"`
}

// NewIndexCmd creates the index command
func NewIndexCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Index the transcript and report on it",
		Long: `Index the transcript and report on it

Splits the configured transcript into sentences, embeds them with the
configured embedder, and prints the sentence count and vector dimension.
With --query, also prints the top matching sentences for that topic.`,
		Args: cobra.NoArgs,
		RunE: runIndex,
		Example: `  summarizer index
  summarizer index --query "neural networks" --k 3
  summarizer index --json`,
	}

	cmd.Flags().StringVar(&indexQuery, "query", "", "Topic to retrieve context for")
	cmd.Flags().IntVar(&indexTopK, "k", core.DefaultTopK, "Number of sentences to retrieve for --query")
	cmd.Flags().BoolVar(&indexJSON, "json", false, "Print the report as JSON")

	return cmd
}

func runIndex(cmd *cobra.Command, args []string) error {
	if indexTopK <= 0 {
		return fmt.Errorf("k must be positive, got %d", indexTopK)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	c, err := buildIndex(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer c.Close()

	report := IndexReport{
		TranscriptPath: cfg.TranscriptPath,
		Sentences:      c.index.Len(),
		Query:          indexQuery,
	}

	switch idx := c.index.(type) {
	case *core.IndexBuilt:
		report.Status = "built"
		report.Dimension = idx.Dimension()
	case *core.IndexEmpty:
		report.Status = "empty"
		report.Reason = idx.Reason
	}

	if indexQuery != "" {
		hits, err := core.NewRetriever(c.index, c.embedder).Retrieve(cmd.Context(), indexQuery, indexTopK)
		if err != nil {
			return fmt.Errorf("retrieving context: %w", err)
		}
		report.Hits = hits
	}

	if indexJSON {
		jsonData, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonData)
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Transcript:\t%s\n", report.TranscriptPath)
	fmt.Fprintf(w, "Status:\t%s\n", report.Status)
	if report.Reason != "" {
		fmt.Fprintf(w, "Reason:\t%s\n", report.Reason)
	}
	fmt.Fprintf(w, "Sentences:\t%d\n", report.Sentences)
	if report.Dimension > 0 {
		fmt.Fprintf(w, "Dimension:\t%d\n", report.Dimension)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if indexQuery != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "\nTop %d for %q:\n", len(report.Hits), indexQuery)
		for i, hit := range report.Hits {
			fmt.Fprintf(cmd.OutOrStdout(), "  %d. %s\n", i+1, truncate(hit, 100))
		}
	}
	return nil
}

// truncate shortens a string to maxLen, adding "..." if truncated
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
