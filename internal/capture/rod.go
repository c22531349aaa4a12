// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package capture

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"

	"github.com/pdiddy/propverify/internal/render"
	"github.com/pdiddy/propverify/pkg/types"
)

// RodCapturer drives a headless Chrome through go-rod.
type RodCapturer struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
	scale    float64
	timeout  time.Duration
	logger   *zap.Logger
}

// NewRodCapturer launches the browser and connects to it.
func NewRodCapturer(ctx context.Context, cfg types.CaptureConfig, logger *zap.Logger) (*RodCapturer, error) {
	l := launcher.New().Headless(true)
	if cfg.ChromePath != "" {
		l = l.Bin(cfg.ChromePath)
	}
	if runtime.GOOS == "linux" {
		l = l.NoSandbox(true)
	}

	controlURL, err := l.Context(ctx).Launch()
	if err != nil {
		return nil, fmt.Errorf("launching browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Cleanup()
		return nil, fmt.Errorf("connecting to browser: %w", err)
	}

	logger.Info("browser started", zap.String("backend", string(types.CaptureRod)))

	return &RodCapturer{
		launcher: l,
		browser:  browser,
		scale:    scaleOrDefault(cfg.Scale),
		timeout:  cfg.Timeout,
		logger:   logger,
	}, nil
}

// Capture loads the page HTML into a new target and screenshots the page box.
func (r *RodCapturer) Capture(ctx context.Context, p render.Page) ([]byte, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	pg, err := r.browser.Context(ctx).Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, fmt.Errorf("opening page: %w", err)
	}
	defer pg.Close()

	if err := pg.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             ViewportWidth,
		Height:            ViewportHeight,
		DeviceScaleFactor: r.scale,
	}); err != nil {
		return nil, fmt.Errorf("setting viewport: %w", err)
	}
	if err := pg.SetDocumentContent(string(p.HTML)); err != nil {
		return nil, fmt.Errorf("loading page: %w", err)
	}
	if err := pg.WaitLoad(); err != nil {
		return nil, fmt.Errorf("waiting for load: %w", err)
	}

	el, err := pg.Element(".page")
	if err != nil {
		return nil, fmt.Errorf("finding page box: %w", err)
	}
	return el.Screenshot(proto.PageCaptureScreenshotFormatPng, 0)
}

// Close disconnects and kills the browser process.
func (r *RodCapturer) Close() error {
	err := r.browser.Close()
	r.launcher.Cleanup()
	return err
}
