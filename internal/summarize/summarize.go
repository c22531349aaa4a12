// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package summarize derives a conclusion paragraph from a list of risk issues.
// The issues themselves pass through untouched; only the conclusion is new.
package summarize

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pdiddy/propverify/pkg/types"
)

// ErrSummarization reports that the generation step was unreachable or
// rejected the input. No partial report accompanies it.
var ErrSummarization = errors.New("analysis failed")

// Request is the input to one summarization.
type Request struct {
	// Issues is the ordered issue list. It is returned verbatim.
	Issues []types.RiskIssue

	// Observations are the raw notes the issues were derived from, if any.
	Observations []string

	// Titles and Tax give the backend cross-reference context.
	Titles []types.TitleRecord
	Tax    *types.TaxDetails
}

// RequestFor builds a Request from a case and its issue list.
func RequestFor(c *types.ReportCase, issues []types.RiskIssue) Request {
	tax := c.Property.Tax
	return Request{
		Issues:       issues,
		Observations: c.Observations,
		Titles:       c.Property.Titles,
		Tax:          &tax,
	}
}

// Backend generates a conclusion for a set of issues. Implementations must
// not depend on being able to modify the issues they are given.
type Backend interface {
	Conclude(ctx context.Context, req Request) (string, error)
}

// Summarize returns req.Issues unchanged plus a generated conclusion.
// A nil backend selects pass-through mode: the report has no conclusion and
// HasConclusion is false.
func Summarize(ctx context.Context, backend Backend, req Request) (types.RiskReport, error) {
	if backend == nil {
		return types.RiskReport{Issues: cloneIssues(req.Issues)}, nil
	}

	// The backend sees a copy so the returned issues cannot be altered.
	view := req
	view.Issues = cloneIssues(req.Issues)

	conclusion, err := backend.Conclude(ctx, view)
	if err != nil {
		return types.RiskReport{}, fmt.Errorf("%w: %w", ErrSummarization, err)
	}

	conclusion = strings.TrimSpace(conclusion)
	if conclusion == "" {
		return types.RiskReport{}, fmt.Errorf("%w: backend returned an empty conclusion", ErrSummarization)
	}

	return types.RiskReport{
		Issues:        cloneIssues(req.Issues),
		Conclusion:    conclusion,
		HasConclusion: true,
	}, nil
}

func cloneIssues(in []types.RiskIssue) []types.RiskIssue {
	if in == nil {
		return nil
	}
	out := make([]types.RiskIssue, len(in))
	for i, issue := range in {
		out[i] = issue
		if issue.TitleRef != nil {
			out[i].TitleRef = types.StringRef(*issue.TitleRef)
		}
		if issue.TaxRef != nil {
			out[i].TaxRef = types.StringRef(*issue.TaxRef)
		}
	}
	return out
}
