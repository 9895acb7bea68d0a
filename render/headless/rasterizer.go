// Package headless rasterizes artifact markup with a headless Chrome,
// used for the static export mode. The page is an isolated execution
// context: nothing the generated markup does can reach the host process.
package headless

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// Config configures the rasterizer.
type Config struct {
	// RemoteURL is the WebSocket URL of an external Chrome instance.
	// Empty = launch a local Chrome via launcher.
	RemoteURL string

	// RenderTimeout bounds one rasterization. Default: 15s.
	RenderTimeout time.Duration

	// DeviceScaleFactor sets the pixel density of screenshots. Default: 2.
	DeviceScaleFactor float64

	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.RenderTimeout <= 0 {
		c.RenderTimeout = 15 * time.Second
	}
	if c.DeviceScaleFactor <= 0 {
		c.DeviceScaleFactor = 2
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Rasterizer owns a Chrome instance and renders HTML documents to PNG.
type Rasterizer struct {
	cfg     Config
	mu      sync.Mutex
	browser *rod.Browser
	lnch    *launcher.Launcher
}

// New creates a Rasterizer. Call Start to launch Chrome.
func New(cfg Config) *Rasterizer {
	cfg.defaults()
	return &Rasterizer{cfg: cfg}
}

// Start launches or connects to Chrome.
func (r *Rasterizer) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.browser != nil {
		return nil
	}

	controlURL := r.cfg.RemoteURL
	if controlURL == "" {
		r.lnch = launcher.New().Headless(true)
		u, err := r.lnch.Launch()
		if err != nil {
			return fmt.Errorf("headless: launch chrome: %w", err)
		}
		controlURL = u
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return fmt.Errorf("headless: connect chrome: %w", err)
	}
	r.browser = browser
	r.cfg.Logger.Info("headless: chrome connected")
	return nil
}

// Close disconnects from Chrome and kills a locally launched instance.
func (r *Rasterizer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.browser == nil {
		return nil
	}
	err := r.browser.Close()
	if r.lnch != nil {
		r.lnch.Cleanup()
	}
	r.browser = nil
	return err
}

// RasterizeHTML loads doc into a fresh page sized width x height and
// screenshots it.
func (r *Rasterizer) RasterizeHTML(ctx context.Context, doc string, width, height int) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.RenderTimeout)
	defer cancel()

	page, err := r.openPage(ctx, width, height)
	if err != nil {
		return nil, err
	}
	defer page.Close()

	if err := page.SetDocumentContent(doc); err != nil {
		return nil, fmt.Errorf("headless: set content: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		r.cfg.Logger.Warn("headless: wait load", "error", err)
	}

	bin, err := page.Screenshot(false, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return nil, fmt.Errorf("headless: screenshot: %w", err)
	}
	return bin, nil
}

// MeasureNaturalSize loads doc and reports the document's scroll size, the
// same value the interactive frame posts back to the canvas layout.
func (r *Rasterizer) MeasureNaturalSize(ctx context.Context, doc string, width, height int) (w, h int, err error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.RenderTimeout)
	defer cancel()

	page, err := r.openPage(ctx, width, height)
	if err != nil {
		return 0, 0, err
	}
	defer page.Close()

	if err := page.SetDocumentContent(doc); err != nil {
		return 0, 0, fmt.Errorf("headless: set content: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		r.cfg.Logger.Warn("headless: wait load", "error", err)
	}

	res, err := page.Eval(`() => {
		const d = document.documentElement;
		return [Math.max(d.scrollWidth, d.offsetWidth), Math.max(d.scrollHeight, d.offsetHeight)];
	}`)
	if err != nil {
		return 0, 0, fmt.Errorf("headless: measure: %w", err)
	}
	arr := res.Value.Arr()
	if len(arr) != 2 {
		return 0, 0, fmt.Errorf("headless: unexpected measure result")
	}
	return int(arr[0].Int()), int(arr[1].Int()), nil
}

func (r *Rasterizer) openPage(ctx context.Context, width, height int) (*rod.Page, error) {
	r.mu.Lock()
	b := r.browser
	r.mu.Unlock()
	if b == nil {
		return nil, fmt.Errorf("headless: not started")
	}

	page, err := b.Page(proto.TargetCreateTarget{URL: ""})
	if err != nil {
		return nil, fmt.Errorf("headless: create page: %w", err)
	}

	page = page.Context(ctx)

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             width,
		Height:            height,
		DeviceScaleFactor: r.cfg.DeviceScaleFactor,
		Mobile:            false,
	}); err != nil {
		page.Close()
		return nil, fmt.Errorf("headless: set viewport: %w", err)
	}
	return page, nil
}
