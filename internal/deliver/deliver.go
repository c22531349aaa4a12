// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package deliver exposes an assembled report: saving it locally, opening it
// for preview, sending it to the printer, or handing it to the upload
// boundary. Only a complete document is ever delivered.
package deliver

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	// ErrMissingPayload is returned when there is no document to deliver.
	ErrMissingPayload = errors.New("no document payload")

	// ErrMissingIdentifier is returned when a document has no case or order id.
	ErrMissingIdentifier = errors.New("no document identifier")

	// ErrUpload wraps transport and processing failures of an upload.
	ErrUpload = errors.New("upload failed")
)

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// FileName is the artifact name for a case: "<caseID>-report.pdf", with
// characters that are unsafe in file names replaced.
func FileName(caseID string) string {
	id := strings.Trim(unsafeChars.ReplaceAllString(strings.TrimSpace(caseID), "_"), "._")
	return id + "-report.pdf"
}

// Download writes doc to dir under the case's artifact name and returns the
// path. The file appears complete or not at all.
func Download(dir, caseID string, doc []byte) (string, error) {
	if strings.TrimSpace(caseID) == "" {
		return "", ErrMissingIdentifier
	}
	if len(doc) == 0 {
		return "", ErrMissingPayload
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	path := filepath.Join(dir, FileName(caseID))
	tmp, err := os.CreateTemp(dir, ".report-*.pdf")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(doc); err != nil {
		tmp.Close()
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return "", fmt.Errorf("syncing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("closing %s: %w", path, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return "", fmt.Errorf("setting permissions on %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("saving %s: %w", path, err)
	}
	return path, nil
}

// Preview opens a saved document with the given viewer.
func Preview(ctx context.Context, viewer Command, path string) error {
	return runOn(ctx, viewer, path, "preview")
}

// Print sends a saved document to the given print command.
func Print(ctx context.Context, printer Command, path string) error {
	return runOn(ctx, printer, path, "print")
}

func runOn(ctx context.Context, c Command, path, action string) error {
	if c == nil {
		return fmt.Errorf("%s: no command configured", action)
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%s: %w", action, err)
	}
	if info.Size() == 0 {
		return fmt.Errorf("%s %s: %w", action, path, ErrMissingPayload)
	}
	if err := c.Run(ctx, path); err != nil {
		return fmt.Errorf("%s %s: %w", action, path, err)
	}
	return nil
}
