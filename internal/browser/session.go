// Package browser owns the single Chrome instance a run drives. It wraps
// chromedp so callers only see blocking, time-bounded page operations.
package browser

import (
	"context"
	"fmt"
	"strconv"
	"time"
	"unicode"

	"github.com/chromedp/chromedp"
)

type Options struct {
	Headless  bool
	UserAgent string
	Debugf    func(format string, args ...any)
}

// Session is an exclusively owned browser handle. Close must be called on
// every exit path; it is safe to call more than once.
type Session struct {
	ctx         context.Context
	cancel      context.CancelFunc
	cancelAlloc context.CancelFunc
}

func Start(ctx context.Context, opts Options) (*Session, error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.DisableGPU,
		chromedp.WindowSize(1920, 1080),
	)
	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)

	var ctxOpts []chromedp.ContextOption
	if opts.Debugf != nil {
		ctxOpts = append(ctxOpts, chromedp.WithErrorf(opts.Debugf))
	}
	chromeCtx, cancel := chromedp.NewContext(allocCtx, ctxOpts...)

	// An empty Run launches the browser.
	if err := chromedp.Run(chromeCtx); err != nil {
		cancel()
		cancelAlloc()
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	return &Session{ctx: chromeCtx, cancel: cancel, cancelAlloc: cancelAlloc}, nil
}

func (s *Session) Close() {
	if s == nil || s.cancel == nil {
		return
	}
	s.cancel()
	s.cancelAlloc()
	s.cancel = nil
}

// run executes actions on the session tab, stopping early when ctx ends.
func (s *Session) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(s.ctx)
	defer cancel()

	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(runCtx, actions...)
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

func (s *Session) Navigate(ctx context.Context, url string) error {
	if err := s.run(ctx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("navigate to %s: %w", url, err)
	}
	return nil
}

// WaitReady blocks until an element matching sel is present in the DOM or
// timeout elapses. A timeout is reported as context.DeadlineExceeded.
func (s *Session) WaitReady(ctx context.Context, sel string, timeout time.Duration) error {
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := s.run(waitCtx, chromedp.WaitReady(sel, chromedp.ByQuery))
	if err != nil && ctx.Err() == nil && waitCtx.Err() != nil {
		return fmt.Errorf("wait for %s: %w", sel, context.DeadlineExceeded)
	}
	if err != nil {
		return fmt.Errorf("wait for %s: %w", sel, err)
	}
	return nil
}

// Fill clears the field and writes value. Values that cannot be typed as
// key events are assigned through script, followed by input and change
// events so page handlers see the new value.
func (s *Session) Fill(ctx context.Context, sel, value string) error {
	if Typeable(value) {
		err := s.run(ctx,
			chromedp.Clear(sel, chromedp.ByQuery),
			chromedp.SendKeys(sel, value, chromedp.ByQuery),
		)
		if err == nil || ctx.Err() != nil {
			return err
		}
	}

	var dispatched bool
	err := s.run(ctx,
		chromedp.SetValue(sel, value, chromedp.ByQuery),
		chromedp.Evaluate(dispatchScript(sel), &dispatched),
	)
	if err != nil {
		return fmt.Errorf("fill %s: %w", sel, err)
	}
	return nil
}

func (s *Session) Click(ctx context.Context, sel string) error {
	if err := s.run(ctx, chromedp.Click(sel, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("click %s: %w", sel, err)
	}
	return nil
}

func (s *Session) PageSource(ctx context.Context) (string, error) {
	var src string
	if err := s.run(ctx, chromedp.OuterHTML("html", &src, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("read page source: %w", err)
	}
	return src, nil
}

// Typeable reports whether every rune in s can be sent as a literal key
// event. Tabs move focus and runes outside the BMP have no key mapping.
func Typeable(s string) bool {
	for _, r := range s {
		switch {
		case r == '\n':
		case r > 0xFFFF:
			return false
		case unicode.IsControl(r):
			return false
		case !unicode.IsPrint(r) && r != ' ':
			return false
		}
	}
	return true
}

func dispatchScript(sel string) string {
	q := strconv.Quote(sel)
	return `(function(){var el=document.querySelector(` + q + `);if(!el){return false;}` +
		`el.dispatchEvent(new Event('input',{bubbles:true}));` +
		`el.dispatchEvent(new Event('change',{bubbles:true}));return true;})()`
}
