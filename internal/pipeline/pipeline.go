// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs one report generation: summarize, render, capture,
// assemble. Each stage starts only after the previous stage's output is
// committed, and progress is reported as Event values rather than through a
// global notification channel.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/propverify/internal/assemble"
	"github.com/pdiddy/propverify/internal/capture"
	"github.com/pdiddy/propverify/internal/caseload"
	"github.com/pdiddy/propverify/internal/render"
	"github.com/pdiddy/propverify/internal/summarize"
	"github.com/pdiddy/propverify/pkg/types"
)

// ErrCancelled is returned when a run is cancelled before capture completes.
var ErrCancelled = errors.New("generation cancelled")

// StageError records which stage a run failed in.
type StageError struct {
	Stage State
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Pipeline holds the collaborators for report generation. A nil Summarizer
// runs the summarizer in pass-through mode.
type Pipeline struct {
	Summarizer summarize.Backend
	Capturer   capture.Capturer
	Workers    int
	Layout     assemble.Layout
	Title      string
	Author     string

	// Clock supplies the generation timestamp stamped into the pages and the
	// document metadata. Inject a fixed clock for reproducible output.
	Clock func() time.Time

	// OnEvent, when set, receives every event as it is emitted.
	OnEvent func(Event)

	Logger *zap.Logger
}

// Result is a completed run. It is only returned when the run reached Ready.
type Result struct {
	SessionID   string
	GeneratedAt time.Time
	Report      types.RiskReport
	Pages       []render.Page
	Document    *assemble.Document
	Events      []Event
}

// Run generates the report for c. On failure it returns a *StageError and no
// result; no partial document is ever exposed.
func (p *Pipeline) Run(ctx context.Context, c *types.ReportCase) (*Result, error) {
	res, _, err := p.run(ctx, c)
	return res, err
}

// RunSession is Run, also returning the session so callers can inspect the
// final state and events after a failure.
func (p *Pipeline) RunSession(ctx context.Context, c *types.ReportCase) (*Result, *Session, error) {
	return p.run(ctx, c)
}

func (p *Pipeline) run(ctx context.Context, c *types.ReportCase) (*Result, *Session, error) {
	clock := p.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	s := NewSession(clock, p.OnEvent)
	logger = logger.With(zap.String("session", s.ID))
	generatedAt := clock()

	fail := func(stage State, err error) (*Result, *Session, error) {
		if ctx.Err() != nil && !errors.Is(err, ErrCancelled) {
			err = fmt.Errorf("%w: %w", ErrCancelled, err)
		}
		_ = s.advance(Failed)
		title := "Generation failed"
		if errors.Is(err, ErrCancelled) {
			title = "Generation cancelled"
		} else if errors.Is(err, summarize.ErrSummarization) {
			title = "Analysis failed"
		}
		s.emit(LevelError, title, err.Error())
		logger.Error("report generation failed", zap.Stringer("stage", stage), zap.Error(err))
		return nil, s, &StageError{Stage: stage, Err: err}
	}
	checkCancel := func(stage State) error {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w before %s: %w", ErrCancelled, stage, err)
		}
		return nil
	}

	if c == nil {
		return fail(Idle, fmt.Errorf("no case loaded"))
	}

	// Summarize.
	if err := s.advance(Summarizing); err != nil {
		return fail(Summarizing, err)
	}
	if p.Summarizer != nil {
		s.emit(LevelInfo, "Generating analysis", fmt.Sprintf("case %s", c.ID))
	}
	issues := caseload.CaseIssues(c)
	report, err := summarize.Summarize(ctx, p.Summarizer, summarize.RequestFor(c, issues))
	if err != nil {
		return fail(Summarizing, err)
	}
	if report.HasConclusion {
		s.emit(LevelSuccess, "Analysis complete", fmt.Sprintf("%d issues summarized", len(report.Issues)))
	} else {
		s.emit(LevelInfo, "Analysis skipped", "no summarizer configured; conclusion omitted")
	}

	// Render. The report is committed to renderer input here, before capture.
	if err := checkCancel(Rendering); err != nil {
		return fail(Rendering, err)
	}
	if err := s.advance(Rendering); err != nil {
		return fail(Rendering, err)
	}
	pages, err := render.Render(c, &report, generatedAt)
	if err != nil {
		return fail(Rendering, err)
	}
	s.emit(LevelInfo, "Pages rendered", fmt.Sprintf("%d pages", len(pages)))

	// Capture.
	if err := checkCancel(Capturing); err != nil {
		return fail(Capturing, err)
	}
	if err := s.advance(Capturing); err != nil {
		return fail(Capturing, err)
	}
	if p.Capturer == nil {
		return fail(Capturing, fmt.Errorf("%w: no capturer configured", capture.ErrCapture))
	}
	s.emit(LevelInfo, "Generating PDF", "capturing pages")
	rasters, err := capture.CaptureAll(ctx, p.Capturer, pages, p.Workers, logger.Named("capture"))
	if err != nil {
		return fail(Capturing, err)
	}

	// Assemble.
	if err := s.advance(Assembling); err != nil {
		return fail(Assembling, err)
	}
	doc, err := assemble.Assemble(rasters, assemble.Options{
		Layout:    p.Layout,
		Timestamp: generatedAt,
		Title:     p.Title,
		Author:    p.Author,
	})
	if err != nil {
		return fail(Assembling, err)
	}

	if err := s.advance(Ready); err != nil {
		return fail(Ready, err)
	}
	s.emit(LevelSuccess, "PDF generated", fmt.Sprintf("%d pages, %d bytes", doc.Pages, len(doc.PDF)))
	logger.Info("report generated",
		zap.String("case", c.ID),
		zap.Int("pages", doc.Pages),
		zap.Int("bytes", len(doc.PDF)),
	)

	return &Result{
		SessionID:   s.ID,
		GeneratedAt: generatedAt,
		Report:      report,
		Pages:       pages,
		Document:    doc,
		Events:      s.Events(),
	}, s, nil
}
