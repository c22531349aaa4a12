package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pdiddy/propverify/internal/caseload"
	"github.com/pdiddy/propverify/internal/render"
	"github.com/pdiddy/propverify/internal/summarize"
)

var renderCmd = &cobra.Command{
	Use:   "render <case-file>",
	Short: "Render the report pages as standalone HTML",
	Long: `Render writes the three report pages for a case as standalone HTML files
(page-1-order.html, page-2-property.html, page-3-risk.html) without capturing
them. Useful for checking layout and placeholders in a browser.

The conclusion is generated only when --summarize is given.`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func init() {
	renderCmd.Flags().String("dir", "output/pages", "directory for the rendered pages")
	renderCmd.Flags().Bool("summarize", false, "generate the risk conclusion with the configured summarizer")
	renderCmd.Flags().String("timestamp", "", "fixed generation time (RFC 3339)")

	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	dir, _ := cmd.Flags().GetString("dir")
	withSummary, _ := cmd.Flags().GetBool("summarize")
	ts, _ := cmd.Flags().GetString("timestamp")

	clock, err := clockFlag(ts)
	if err != nil {
		return err
	}

	c, err := caseload.Load(args[0])
	if err != nil {
		return err
	}

	var backend summarize.Backend
	if withSummary {
		backend, err = summarize.NewBackend(cmd.Context(), cfg.Summarizer, loadedSecrets, logger)
		if err != nil {
			return err
		}
	}
	report, err := summarize.Summarize(cmd.Context(), backend, summarize.RequestFor(c, caseload.CaseIssues(c)))
	if err != nil {
		return err
	}

	pages, err := render.Render(c, &report, clock())
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	for _, p := range pages {
		path := filepath.Join(dir, fmt.Sprintf("page-%d-%s.html", p.Number, p.Name))
		if err := os.WriteFile(path, p.HTML, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		fmt.Fprintf(os.Stdout, "  %s\n", path)
	}
	return nil
}
