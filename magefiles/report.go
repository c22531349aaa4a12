//go:build mage

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// version returns the build version from PROPVERIFY_VERSION or git.
func version() string {
	if v := os.Getenv("PROPVERIFY_VERSION"); v != "" {
		return v
	}
	v, err := sh.Output("git", "describe", "--tags", "--always", "--dirty")
	if err != nil || strings.TrimSpace(v) == "" {
		return "dev"
	}
	return strings.TrimSpace(v)
}

// Test runs the unit tests with the race detector.
func Test() error {
	return sh.RunV("go", "test", "-race", "./...")
}

// Sample generates the report for cases/sample.yaml with a fixed timestamp.
func Sample() error {
	mg.Deps(Init, Build)
	const sample = "cases/sample.yaml"
	if _, err := os.Stat(sample); err != nil {
		return fmt.Errorf("missing %s: copy internal/caseload/testdata/case.yaml there first", sample)
	}
	return sh.RunV("bin/propverify", "generate", sample, "--timestamp", "2026-01-01T00:00:00Z")
}

// Serve builds the CLI and runs the upload server on the configured address.
func Serve() error {
	mg.Deps(Init, Build)
	return sh.RunV("bin/propverify", "serve")
}
