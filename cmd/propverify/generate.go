package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/propverify/internal/assemble"
	"github.com/pdiddy/propverify/internal/capture"
	"github.com/pdiddy/propverify/internal/caseload"
	"github.com/pdiddy/propverify/internal/deliver"
	"github.com/pdiddy/propverify/internal/pipeline"
	"github.com/pdiddy/propverify/internal/summarize"
	"github.com/pdiddy/propverify/pkg/types"
)

var generateCmd = &cobra.Command{
	Use:   "generate <case-file>",
	Short: "Generate the PDF report for a case",
	Long: `Generate loads a case file (YAML or JSON, canonical or legacy schema),
optionally asks the configured model for a risk conclusion, renders the three
report pages, captures them with a headless browser, and assembles a paginated
A4 PDF saved as <case-id>-report.pdf in the output directory.

The saved report can then be previewed, printed, or uploaded. An upload failure
leaves the saved report in place.`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().String("output-dir", "", "directory for the generated report (default output)")
	generateCmd.Flags().String("summarizer", "", "summarizer backend: none, claude, or gemini")
	generateCmd.Flags().String("model", "", "model identifier for the summarizer")
	generateCmd.Flags().String("capture-backend", "", "browser driver: chromedp or rod")
	generateCmd.Flags().Int("workers", 0, "pages captured concurrently (default 1)")
	generateCmd.Flags().Float64("scale", 0, "device scale factor for capture (default 3)")
	generateCmd.Flags().String("timestamp", "", "fixed generation time (RFC 3339) for reproducible output")
	generateCmd.Flags().Bool("preview", false, "open the report after saving it")
	generateCmd.Flags().Bool("print", false, "send the report to the printer after saving it")
	generateCmd.Flags().Bool("upload", false, "upload the report after saving it")

	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	overrideString(flags, "output-dir", &cfg.Delivery.OutputDir)
	overrideString(flags, "model", &cfg.Summarizer.Model)
	if flags.Changed("summarizer") {
		v, _ := flags.GetString("summarizer")
		cfg.Summarizer.Backend = types.SummarizerBackend(v)
	}
	if flags.Changed("capture-backend") {
		v, _ := flags.GetString("capture-backend")
		cfg.Capture.Backend = types.CaptureBackend(v)
	}
	if flags.Changed("workers") {
		cfg.Capture.Workers, _ = flags.GetInt("workers")
	}
	if flags.Changed("scale") {
		cfg.Capture.Scale, _ = flags.GetFloat64("scale")
	}

	clock, err := clockFlag(flags.Lookup("timestamp").Value.String())
	if err != nil {
		return err
	}

	c, err := caseload.Load(args[0])
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, err := summarize.NewBackend(ctx, cfg.Summarizer, loadedSecrets, logger)
	if err != nil {
		return err
	}

	capturer, err := capture.New(ctx, cfg.Capture, logger.Named("capture"))
	if err != nil {
		return err
	}
	defer capturer.Close()

	p := &pipeline.Pipeline{
		Summarizer: backend,
		Capturer:   capturer,
		Workers:    cfg.Capture.Workers,
		Layout:     assemble.Layout{PageWidth: cfg.Document.PageWidth, PageHeight: cfg.Document.PageHeight},
		Title:      cfg.Document.Title,
		Author:     cfg.Document.Author,
		Clock:      clock,
		OnEvent:    printEvent(os.Stderr),
		Logger:     logger.Named("pipeline"),
	}

	res, err := p.Run(ctx, c)
	if err != nil {
		return err
	}

	path, err := deliver.Download(cfg.Delivery.OutputDir, c.ID, res.Document.PDF)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Saved %s (%d pages, %d bytes)\n", path, res.Document.Pages, len(res.Document.PDF))

	return deliverActions(ctx, cmd, c.ID, path, res.Document.PDF)
}

// deliverActions runs the optional actions on a saved report. Every action is
// attempted; the first failure is returned.
func deliverActions(ctx context.Context, cmd *cobra.Command, caseID, path string, doc []byte) error {
	var firstErr error
	record := func(err error) {
		if err != nil {
			fmt.Fprintf(os.Stderr, "  error: %v\n", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	if ok, _ := cmd.Flags().GetBool("preview"); ok {
		viewer, err := deliver.DetectOpener(cfg.Delivery.OpenCommand)
		if err == nil {
			err = deliver.Preview(ctx, viewer, path)
		}
		record(err)
	}
	if ok, _ := cmd.Flags().GetBool("print"); ok {
		printer, err := deliver.DetectPrinter(cfg.Delivery.PrintCommand)
		if err == nil {
			err = deliver.Print(ctx, printer, path)
		}
		record(err)
	}
	if ok, _ := cmd.Flags().GetBool("upload"); ok {
		client := &deliver.UploadClient{
			URL:    cfg.Delivery.UploadURL,
			Client: &http.Client{Timeout: cfg.Delivery.Timeout},
			Logger: logger.Named("deliver"),
		}
		ack, err := client.Upload(ctx, caseID, doc)
		if err == nil {
			fmt.Fprintf(os.Stdout, "Uploaded %s: %s\n", ack.OrderID, ack.URL)
		}
		record(err)
	}
	return firstErr
}

// printEvent writes pipeline events as progress lines.
func printEvent(w io.Writer) func(pipeline.Event) {
	return func(e pipeline.Event) {
		if e.Detail != "" {
			fmt.Fprintf(w, "[%s] %s: %s\n", e.Stage, e.Title, e.Detail)
			return
		}
		fmt.Fprintf(w, "[%s] %s\n", e.Stage, e.Title)
	}
}

// clockFlag returns a fixed clock for an RFC 3339 timestamp, or time.Now
// when none is given.
func clockFlag(ts string) (func() time.Time, error) {
	if ts == "" {
		return time.Now, nil
	}
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return nil, fmt.Errorf("parsing --timestamp: %w", err)
	}
	return func() time.Time { return t }, nil
}
