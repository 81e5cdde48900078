package browser

import (
	"context"
	"errors"
	"fmt"

	"github.com/playwright-community/playwright-go"
	"github.com/vk/fixturegrid/internal/ctxlog"
)

// Input defines the arguments of the `fixture "browser"` block.
type Input struct {
	ExecutablePath string `cty:"executable_path"`
	Install        bool   `cty:"install"`
}

// Browser is a launched Chromium instance and the driver that owns it.
type Browser struct {
	pw      *playwright.Playwright
	browser playwright.Browser
}

// Launch starts the playwright driver and a Chromium instance.
func Launch(ctx context.Context, input *Input, headless bool) (*Browser, error) {
	logger := ctxlog.FromContext(ctx).With("fixture", BrowserFixture)

	if input.Install {
		logger.Info("Installing playwright browsers...")
		if err := playwright.Install(); err != nil {
			return nil, fmt.Errorf("installing playwright: %w", err)
		}
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("starting playwright: %w", err)
	}

	opts := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(headless),
	}
	if input.ExecutablePath != "" {
		opts.ExecutablePath = playwright.String(input.ExecutablePath)
	}
	b, err := pw.Chromium.Launch(opts)
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("launching chromium: %w", err)
	}
	logger.Info("Browser launched", "headless", headless, "version", b.Version())
	return &Browser{pw: pw, browser: b}, nil
}

// NewPage opens a page in a fresh browser context, so cookies and storage
// are never shared between pages.
func (b *Browser) NewPage() (playwright.Page, error) {
	bctx, err := b.browser.NewContext()
	if err != nil {
		return nil, fmt.Errorf("creating browser context: %w", err)
	}
	page, err := bctx.NewPage()
	if err != nil {
		_ = bctx.Close()
		return nil, fmt.Errorf("opening page: %w", err)
	}
	return page, nil
}

// Close shuts the browser and the driver down.
func (b *Browser) Close() error {
	return errors.Join(b.browser.Close(), b.pw.Stop())
}
