// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package capture

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/pdiddy/propverify/internal/render"
	"github.com/pdiddy/propverify/pkg/types"
)

// ChromeCapturer drives a headless Chrome through the DevTools protocol.
// One browser process serves every capture; each page gets its own tab.
type ChromeCapturer struct {
	browserCtx    context.Context
	cancelBrowser context.CancelFunc
	cancelAlloc   context.CancelFunc
	scale         float64
	timeout       time.Duration
	logger        *zap.Logger
}

// NewChromeCapturer launches the browser and waits until it responds.
func NewChromeCapturer(ctx context.Context, cfg types.CaptureConfig, logger *zap.Logger) (*ChromeCapturer, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("hide-scrollbars", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("font-render-hinting", "none"),
	)
	if cfg.ChromePath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ChromePath))
	}
	if runtime.GOOS == "linux" {
		opts = append(opts,
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

	if err := chromedp.Run(browserCtx); err != nil {
		cancelBrowser()
		cancelAlloc()
		return nil, fmt.Errorf("starting browser: %w", err)
	}

	logger.Info("browser started", zap.String("backend", string(types.CaptureChromedp)))

	return &ChromeCapturer{
		browserCtx:    browserCtx,
		cancelBrowser: cancelBrowser,
		cancelAlloc:   cancelAlloc,
		scale:         scaleOrDefault(cfg.Scale),
		timeout:       cfg.Timeout,
		logger:        logger,
	}, nil
}

// Capture loads the page HTML into a fresh tab and screenshots the page box.
func (c *ChromeCapturer) Capture(ctx context.Context, p render.Page) ([]byte, error) {
	tabCtx, cancel := chromedp.NewContext(c.browserCtx)
	defer cancel()
	if c.timeout > 0 {
		var cancelTimeout context.CancelFunc
		tabCtx, cancelTimeout = context.WithTimeout(tabCtx, c.timeout)
		defer cancelTimeout()
	}
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	var buf []byte
	err := chromedp.Run(tabCtx,
		chromedp.EmulateViewport(ViewportWidth, ViewportHeight, chromedp.EmulateScale(c.scale)),
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, string(p.HTML)).Do(ctx)
		}),
		chromedp.WaitVisible(".page", chromedp.ByQuery),
		chromedp.Screenshot(".page", &buf, chromedp.ByQuery),
	)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}
	return buf, nil
}

// Close shuts the browser down.
func (c *ChromeCapturer) Close() error {
	c.cancelBrowser()
	c.cancelAlloc()
	return nil
}

func scaleOrDefault(scale float64) float64 {
	if scale <= 0 {
		return 3
	}
	return scale
}
