// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package caseload reads property verification cases from YAML or JSON files
// and adapts the historical schema variants to the canonical ReportCase.
// Rendering and assembly only ever see the canonical shape.
package caseload

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/propverify/pkg/types"
)

// Variant names the schema a case file was written in.
type Variant string

const (
	VariantCanonical Variant = "canonical"
	VariantLegacy    Variant = "legacy"
)

// ErrNoCaseID is returned when a case has no identifier to name its report after.
var ErrNoCaseID = errors.New("case has no id")

// legacyMarkers are top-level keys that only occur in the legacy schema.
var legacyMarkers = []string{"jaagaFetch", "SR_CODE", "STATE", "PTIN"}

// Load reads a case file and returns the canonical case.
func Load(path string) (*types.ReportCase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading case %s: %w", path, err)
	}
	c, _, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing case %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes data (YAML or JSON), detects its variant, and adapts it.
func Parse(data []byte) (*types.ReportCase, Variant, error) {
	var probe map[string]yaml.Node
	if err := yaml.Unmarshal(data, &probe); err != nil {
		return nil, "", fmt.Errorf("decoding case: %w", err)
	}

	variant := detect(probe)

	var c *types.ReportCase
	switch variant {
	case VariantLegacy:
		var lc legacyCase
		if err := yaml.Unmarshal(data, &lc); err != nil {
			return nil, variant, fmt.Errorf("decoding legacy case: %w", err)
		}
		c = lc.canonical()
	default:
		c = &types.ReportCase{}
		if err := yaml.Unmarshal(data, c); err != nil {
			return nil, variant, fmt.Errorf("decoding case: %w", err)
		}
	}

	if strings.TrimSpace(c.ID) == "" {
		return nil, variant, ErrNoCaseID
	}
	return c, variant, nil
}

func detect(probe map[string]yaml.Node) Variant {
	for _, k := range legacyMarkers {
		if _, ok := probe[k]; ok {
			return VariantLegacy
		}
	}
	return VariantCanonical
}

// IssuesFromObservations turns each non-blank observation into one issue,
// preserving order. The observation becomes the label; there is no comment
// and no cross-reference.
func IssuesFromObservations(observations []string) []types.RiskIssue {
	var issues []types.RiskIssue
	for _, o := range observations {
		o = strings.TrimSpace(o)
		if o == "" {
			continue
		}
		issues = append(issues, types.RiskIssue{Issue: o})
	}
	return issues
}

// CaseIssues returns the structured issues of c when it has any, and the
// issues derived from its observations otherwise.
func CaseIssues(c *types.ReportCase) []types.RiskIssue {
	if len(c.Issues) > 0 {
		return c.Issues
	}
	return IssuesFromObservations(c.Observations)
}
