package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/propverify/internal/deliver"
)

var uploadCmd = &cobra.Command{
	Use:   "upload <report.pdf>",
	Short: "Upload a saved report to the upload server",
	Long: `Upload sends a previously generated report to the configured upload
endpoint. The order id defaults to the file name without its
"-report.pdf" suffix.`,
	Args: cobra.ExactArgs(1),
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().String("order-id", "", "order id to upload the report under")
	uploadCmd.Flags().String("url", "", "upload endpoint (overrides delivery.upload_url)")

	rootCmd.AddCommand(uploadCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	overrideString(cmd.Flags(), "url", &cfg.Delivery.UploadURL)

	orderID, _ := cmd.Flags().GetString("order-id")
	if orderID == "" {
		orderID = strings.TrimSuffix(filepath.Base(args[0]), "-report.pdf")
	}

	doc, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading report: %w", err)
	}

	client := &deliver.UploadClient{
		URL:    cfg.Delivery.UploadURL,
		Client: &http.Client{Timeout: cfg.Delivery.Timeout},
		Logger: logger.Named("deliver"),
	}
	ack, err := client.Upload(cmd.Context(), orderID, doc)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "%s (%s): %s\n", ack.Message, ack.OrderID, ack.URL)
	return nil
}
