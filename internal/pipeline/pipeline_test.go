// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"github.com/pdiddy/propverify/internal/capture"
	"github.com/pdiddy/propverify/internal/render"
	"github.com/pdiddy/propverify/internal/summarize"
	"github.com/pdiddy/propverify/pkg/types"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var fixedTime = time.Date(2026, time.March, 14, 9, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedTime }

type mockBackend struct {
	mock.Mock
}

func (m *mockBackend) Conclude(ctx context.Context, req summarize.Request) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

// recordingCapturer returns a page-sized gray surface for every page except
// the last, which is heightened to overflow onto extra physical pages.
type recordingCapturer struct {
	mu    sync.Mutex
	pages []render.Page
	err   error
}

func (r *recordingCapturer) Capture(_ context.Context, p render.Page) ([]byte, error) {
	r.mu.Lock()
	r.pages = append(r.pages, p)
	r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}

	h := capture.ViewportHeight
	if p.Number == render.PageCount {
		h = 2700
	}
	img := image.NewGray(image.Rect(0, 0, capture.ViewportWidth, h))
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (r *recordingCapturer) Close() error { return nil }

func (r *recordingCapturer) captured() []render.Page {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]render.Page(nil), r.pages...)
}

func testCase() *types.ReportCase {
	return &types.ReportCase{
		ID:     "case-0042",
		State:  "KARNATAKA",
		Office: types.RegistrationOffice{Name: "SHIVAJINAGAR", Code: "BNG-SJR"},
		Property: types.PropertyRecord{
			OwnerName: "Jane Smith",
			Titles:    []types.TitleRecord{{DeedNumber: "SJR-02-54321", DeedType: "Mortgage"}},
		},
		Issues: []types.RiskIssue{
			{Issue: "Active mortgage", Comment: "No recorded release.", TitleRef: types.StringRef("SJR-02-54321")},
			{Issue: "Tax dues clear", TaxRef: types.StringRef("0 INR")},
			{Issue: "Owner name mismatch"},
		},
	}
}

func eventTitles(events []Event) []string {
	var out []string
	for _, e := range events {
		out = append(out, e.Title)
	}
	return out
}

func TestRunPassThrough(t *testing.T) {
	capt := &recordingCapturer{}
	p := &Pipeline{Capturer: capt, Clock: fixedClock, Logger: zaptest.NewLogger(t)}

	res, s, err := p.RunSession(context.Background(), testCase())
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.Equal(t, Ready, s.State())
	assert.Equal(t, s.ID, res.SessionID)
	assert.False(t, res.Report.HasConclusion)
	assert.Len(t, res.Report.Issues, 3)
	assert.Len(t, res.Pages, render.PageCount)
	assert.Equal(t, 5, res.Document.Pages, "two single pages plus one overflowing onto three")
	assert.True(t, bytes.HasPrefix(res.Document.PDF, []byte("%PDF-")))
	assert.Equal(t, fixedTime, res.GeneratedAt)

	assert.Equal(t, []string{"Analysis skipped", "Pages rendered", "Generating PDF", "PDF generated"}, eventTitles(res.Events))
	assert.Equal(t, Ready, res.Events[len(res.Events)-1].Stage)
	assert.Contains(t, string(capt.captured()[0].HTML), "Generated on: 14 Mar 2026")
}

func TestRunSlicesOverflowingPage(t *testing.T) {
	p := &Pipeline{Capturer: &recordingCapturer{}, Clock: fixedClock, Logger: zaptest.NewLogger(t)}

	res, err := p.Run(context.Background(), testCase())
	require.NoError(t, err)

	type slice struct {
		Surface, Page int
		Y             float64
	}
	var got []slice
	for _, pl := range res.Document.Placements {
		got = append(got, slice{Surface: pl.Surface, Page: pl.Page, Y: math.Round(pl.Y)})
	}
	// The risk page is 2700px at 794px wide (675mm) and continues on two
	// more pages, each drawing the same image one page height higher.
	assert.Equal(t, []slice{
		{Surface: 0, Page: 1, Y: 0},
		{Surface: 1, Page: 2, Y: 0},
		{Surface: 2, Page: 3, Y: 0},
		{Surface: 2, Page: 4, Y: -297},
		{Surface: 2, Page: 5, Y: -594},
	}, got)
	assert.Equal(t, 5, bytes.Count(res.Document.PDF, []byte("<</Type /Page\n")))
}

func TestRunWithSummarizer(t *testing.T) {
	backend := &mockBackend{}
	backend.On("Conclude", mock.Anything, mock.MatchedBy(func(r summarize.Request) bool {
		return len(r.Issues) == 3 && r.Issues[0].Issue == "Active mortgage"
	})).Return("Title is marketable once the mortgage is released.", nil).Once()

	capt := &recordingCapturer{}
	p := &Pipeline{Summarizer: backend, Capturer: capt, Workers: 3, Clock: fixedClock}

	res, err := p.Run(context.Background(), testCase())
	require.NoError(t, err)
	backend.AssertExpectations(t)

	assert.True(t, res.Report.HasConclusion)
	assert.Equal(t, testCase().Issues, res.Report.Issues)

	var riskHTML string
	for _, pg := range capt.captured() {
		if pg.Number == render.PageCount {
			riskHTML = string(pg.HTML)
		}
	}
	assert.Contains(t, riskHTML, "Title is marketable once the mortgage is released.",
		"conclusion reaches the renderer before capture")
	assert.Equal(t, []string{"Generating analysis", "Analysis complete", "Pages rendered", "Generating PDF", "PDF generated"},
		eventTitles(res.Events))
}

func TestRunSummarizerFailure(t *testing.T) {
	backend := &mockBackend{}
	backend.On("Conclude", mock.Anything, mock.Anything).Return("", errors.New("503 from upstream")).Once()

	capt := &recordingCapturer{}
	p := &Pipeline{Summarizer: backend, Capturer: capt, Clock: fixedClock}

	res, s, err := p.RunSession(context.Background(), testCase())
	require.Error(t, err)
	assert.Nil(t, res)

	var se *StageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, Summarizing, se.Stage)
	assert.ErrorIs(t, err, summarize.ErrSummarization)

	assert.Equal(t, Failed, s.State())
	assert.Empty(t, capt.captured(), "pipeline halts before capture")

	events := s.Events()
	last := events[len(events)-1]
	assert.Equal(t, LevelError, last.Level)
	assert.Equal(t, "Analysis failed", last.Title)
}

func TestRunCancelledBeforeCapture(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	capt := &recordingCapturer{}
	p := &Pipeline{
		Capturer: capt,
		Clock:    fixedClock,
		OnEvent: func(e Event) {
			if e.Title == "Pages rendered" {
				cancel()
			}
		},
	}

	res, s, err := p.RunSession(ctx, testCase())
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrCancelled)
	assert.ErrorIs(t, err, context.Canceled)

	var se *StageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, Capturing, se.Stage)
	assert.Equal(t, Failed, s.State())
	assert.Empty(t, capt.captured())
	assert.Equal(t, "Generation cancelled", s.Events()[len(s.Events())-1].Title)
}

func TestRunCaptureFailure(t *testing.T) {
	capt := &recordingCapturer{err: errors.New("target crashed")}
	p := &Pipeline{Capturer: capt, Clock: fixedClock}

	res, err := p.Run(context.Background(), testCase())
	assert.Nil(t, res)
	assert.ErrorIs(t, err, capture.ErrCapture)

	var se *StageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, Capturing, se.Stage)
}

func TestRunNoCapturer(t *testing.T) {
	_, err := (&Pipeline{Clock: fixedClock}).Run(context.Background(), testCase())
	assert.ErrorIs(t, err, capture.ErrCapture)
}

func TestRunNoCase(t *testing.T) {
	_, err := (&Pipeline{Capturer: &recordingCapturer{}}).Run(context.Background(), nil)
	assert.Error(t, err)
}

func TestRunDeterministic(t *testing.T) {
	run := func() []byte {
		p := &Pipeline{Capturer: &recordingCapturer{}, Clock: fixedClock, Title: "Property Verification Report"}
		res, err := p.Run(context.Background(), testCase())
		require.NoError(t, err)
		return res.Document.PDF
	}
	assert.True(t, bytes.Equal(run(), run()))
}

func TestSessionAdvance(t *testing.T) {
	s := NewSession(fixedClock, nil)
	assert.Equal(t, Idle, s.State())
	assert.NotEmpty(t, s.ID)

	assert.ErrorIs(t, s.advance(Rendering), ErrInvalidTransition, "cannot skip a stage")
	require.NoError(t, s.advance(Summarizing))
	assert.ErrorIs(t, s.advance(Idle), ErrInvalidTransition, "cannot move backwards")
	assert.ErrorIs(t, s.advance(Summarizing), ErrInvalidTransition, "cannot repeat a stage")

	for _, next := range []State{Rendering, Capturing, Assembling, Ready} {
		require.NoError(t, s.advance(next))
	}
	assert.True(t, s.State().Terminal())
	assert.ErrorIs(t, s.advance(Failed), ErrInvalidTransition, "ready is terminal")
}

func TestSessionFailFromAnyStage(t *testing.T) {
	for _, stage := range []State{Idle, Summarizing, Rendering, Capturing, Assembling} {
		t.Run(stage.String(), func(t *testing.T) {
			s := NewSession(fixedClock, nil)
			for st := Summarizing; st <= stage; st++ {
				require.NoError(t, s.advance(st))
			}
			require.NoError(t, s.advance(Failed))
			assert.ErrorIs(t, s.advance(Failed), ErrInvalidTransition)
		})
	}
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "capturing", Capturing.String())
	assert.Equal(t, "state(42)", State(42).String())
}
